package store

import (
	"reflect"
	"testing"
)

func TestParseAddrs(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"single", "localhost:11211", []string{"localhost:11211"}},
		{"multiple", "host1:11211,host2:11211", []string{"host1:11211", "host2:11211"}},
		{"whitespace", " host1:11211 , host2:11211 ", []string{"host1:11211", "host2:11211"}},
		{"empty entries", "host1:11211,,host2:11211,", []string{"host1:11211", "host2:11211"}},
		{"empty string", "", nil},
		{"only commas", ",,,", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseAddrs(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseAddrs(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestLocationCacheKey(t *testing.T) {
	c := &MemcachedLocationCache{}
	if got := c.key("seattle"); got != "location:seattle" {
		t.Errorf("key(seattle) = %q, want location:seattle", got)
	}
}
