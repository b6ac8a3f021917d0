package models

import "time"

// WeatherData represents venue weather conditions in canonical form
type WeatherData struct {
	VenueID     string    `json:"venue_id"`
	Temperature float64   `json:"temperature"` // fahrenheit
	FeelsLike   float64   `json:"feels_like"`
	WindSpeed   float64   `json:"wind_speed"` // mph
	WindDir     string    `json:"wind_dir"`
	Humidity    int       `json:"humidity"` // percent
	Conditions  string    `json:"conditions"`
	Precip      float64   `json:"precip"` // probability 0..1
	FetchedAt   time.Time `json:"fetched_at"`
}
