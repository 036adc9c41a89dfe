package models

// Location is the anchor record. Its ID is assigned by the store on first
// resolution of a search query and every other record type references it.
type Location struct {
	ID             int64   `json:"id"`
	SearchQuery    string  `json:"search_query"`
	FormattedQuery string  `json:"formatted_query"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
}

// Forecast is one day of weather for a location. Time is a calendar date
// with no time-of-day component (e.g. "Mon Apr 01 2019").
type Forecast struct {
	Forecast   string `json:"forecast"`
	Time       string `json:"time"`
	LocationID int64  `json:"location_id"`
}

// Event is an upcoming event near a location.
type Event struct {
	Link         string `json:"link"`
	Name         string `json:"name"`
	CreationDate string `json:"creation_date"`
	Host         string `json:"host"`
	LocationID   int64  `json:"location_id"`
}

// Business is a reviewed business near a location. Price is the provider's
// text tier (e.g. "$$"), not a number.
type Business struct {
	URL        string  `json:"url"`
	Name       string  `json:"name"`
	Rating     float64 `json:"rating"`
	Price      string  `json:"price"`
	ImageURL   string  `json:"image_url"`
	LocationID int64   `json:"location_id"`
}

// Movie is a film associated with a location's search text.
type Movie struct {
	Title        string  `json:"title"`
	ReleasedOn   string  `json:"released_on"`
	TotalVotes   int     `json:"total_votes"`
	AverageVotes float64 `json:"average_votes"`
	Popularity   float64 `json:"popularity"`
	ImageURL     string  `json:"image_url"`
	Overview     string  `json:"overview"`
	LocationID   int64   `json:"location_id"`
}
