package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go_sports_pipeline/models"

	"github.com/sirupsen/logrus"
)

// EndpointWeather is the rate-limit endpoint identifier for the
// weather provider.
const EndpointWeather = "weather:current"

// WeatherClient fetches venue weather conditions.
type WeatherClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewWeatherClient creates a weather provider adapter.
func NewWeatherClient(baseURL, apiKey string, logger *logrus.Logger) *WeatherClient {
	return &WeatherClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *WeatherClient) Name() string { return "weather" }

func (c *WeatherClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.Name(), c.baseURL)
}

// rawWeather is the raw current-conditions payload.
type rawWeather struct {
	VenueID string `json:"venue_id"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  int     `json:"humidity"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
		Dir   string  `json:"dir"`
	} `json:"wind"`
	Conditions []struct {
		Main string `json:"main"`
	} `json:"weather"`
	Precip float64 `json:"pop"`
}

// toWeather maps the raw payload into canonical form. The venue ID
// from the request wins when the payload omits its own.
func (raw *rawWeather) toWeather(source, venueID string) (*models.WeatherData, error) {
	id := raw.VenueID
	if id == "" {
		id = venueID
	}
	if id == "" {
		return nil, &TransformError{Source: source, Field: "venue_id", Reason: "missing"}
	}

	conditions := ""
	if len(raw.Conditions) > 0 {
		conditions = raw.Conditions[0].Main
	}

	return &models.WeatherData{
		VenueID:     id,
		Temperature: raw.Main.Temp,
		FeelsLike:   raw.Main.FeelsLike,
		WindSpeed:   raw.Wind.Speed,
		WindDir:     raw.Wind.Dir,
		Humidity:    raw.Main.Humidity,
		Conditions:  conditions,
		Precip:      raw.Precip,
		FetchedAt:   time.Now(),
	}, nil
}

// FetchCurrent retrieves current conditions for one venue.
func (c *WeatherClient) FetchCurrent(ctx context.Context, venueID string) (*models.WeatherData, error) {
	query := url.Values{}
	query.Set("venue", venueID)

	var raw rawWeather
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/current", query, c.apiKey, &raw); err != nil {
		return nil, err
	}

	weather, err := raw.toWeather(c.Name(), venueID)
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source":   c.Name(),
		"venue_id": weather.VenueID,
	}).Debug("Fetched weather")
	return weather, nil
}
