package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestBusinessClient_Search_BearerTokenAndMapping(t *testing.T) {
	apiResp := map[string]interface{}{
		"businesses": []map[string]interface{}{
			{
				"url":       "https://www.yelp.com/biz/pike-place-chowder",
				"name":      "Pike Place Chowder",
				"rating":    4.5,
				"price":     "$$",
				"image_url": "https://s3-media.fl.yelpcdn.com/chowder.jpg",
			},
			{
				"url":    "https://www.yelp.com/biz/no-price",
				"name":   "No Price Tier",
				"rating": 4.0,
			},
		},
	}

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(apiResp)
	}))
	defer server.Close()

	client, err := NewBusinessClient("yelp-token", server.URL, 2*time.Second)
	if err != nil {
		t.Fatalf("NewBusinessClient() error: %v", err)
	}

	businesses, err := client.Search(context.Background(), 47.6, -122.3)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}

	if gotAuth != "Bearer yelp-token" {
		t.Errorf("Authorization = %q, want %q", gotAuth, "Bearer yelp-token")
	}
	if len(businesses) != 2 {
		t.Fatalf("len(businesses) = %d, want 2", len(businesses))
	}
	b := businesses[0]
	if b.Name != "Pike Place Chowder" || b.Rating != 4.5 || b.Price != "$$" {
		t.Errorf("first business mapped wrong: %+v", b)
	}
	// Missing price tier propagates as an empty string, not an error.
	if businesses[1].Price != "" {
		t.Errorf("businesses[1].Price = %q, want empty", businesses[1].Price)
	}
}
