package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Port        string
	Environment string

	// Upstream API keys
	SportsDataAPIKey string
	OddsAPIKey       string
	PrizePicksAPIKey string
	InjuryAPIKey     string
	WeatherAPIKey    string

	// Upstream base URLs (overridable for tests and staging)
	SportsDataBaseURL string
	OddsBaseURL       string
	PrizePicksBaseURL string
	InjuryBaseURL     string
	WeatherBaseURL    string

	// Pipeline tuning
	CacheMaxSize     int
	QueuePacingMS    int
	OddsRefreshSec   int
	GamesRefreshSec  int
	InjuryRefreshMin int

	ProvidersFile string
}

// ProviderLimit is a static per-endpoint request budget.
type ProviderLimit struct {
	Endpoint string
	Limit    int
	Period   time.Duration
}

// UnmarshalYAML parses the period from a duration string ("60s").
func (l *ProviderLimit) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		Endpoint string `yaml:"endpoint"`
		Limit    int    `yaml:"limit"`
		Period   string `yaml:"period"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}

	period, err := time.ParseDuration(raw.Period)
	if err != nil {
		return fmt.Errorf("invalid period %q for endpoint %s: %w", raw.Period, raw.Endpoint, err)
	}

	l.Endpoint = raw.Endpoint
	l.Limit = raw.Limit
	l.Period = period
	return nil
}

// ProvidersConfig holds the static upstream rate-limit budgets.
type ProvidersConfig struct {
	Limits []ProviderLimit `yaml:"limits"`
}

var AppConfig *Config

// LoadConfig loads environment variables
func LoadConfig() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	config := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		SportsDataAPIKey: getEnv("SPORTSDATA_API_KEY", ""),
		OddsAPIKey:       getEnv("ODDS_API_KEY", ""),
		PrizePicksAPIKey: getEnv("PRIZEPICKS_API_KEY", ""),
		InjuryAPIKey:     getEnv("INJURY_API_KEY", ""),
		WeatherAPIKey:    getEnv("WEATHER_API_KEY", ""),

		SportsDataBaseURL: getEnv("SPORTSDATA_BASE_URL", "https://api.sportsdata.io/v3"),
		OddsBaseURL:       getEnv("ODDS_BASE_URL", "https://api.the-odds-api.com/v4"),
		PrizePicksBaseURL: getEnv("PRIZEPICKS_BASE_URL", "https://api.prizepicks.com"),
		InjuryBaseURL:     getEnv("INJURY_BASE_URL", "https://api.sportsdata.io/v3"),
		WeatherBaseURL:    getEnv("WEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),

		CacheMaxSize:     getEnvInt("CACHE_MAX_SIZE", 500),
		QueuePacingMS:    getEnvInt("QUEUE_PACING_MS", 100),
		OddsRefreshSec:   getEnvInt("ODDS_REFRESH_SEC", 30),
		GamesRefreshSec:  getEnvInt("GAMES_REFRESH_SEC", 15),
		InjuryRefreshMin: getEnvInt("INJURY_REFRESH_MIN", 30),

		ProvidersFile: getEnv("PROVIDERS_FILE", "config/providers.yaml"),
	}

	AppConfig = config
	return config, nil
}

// LoadProviders loads the static per-endpoint rate-limit budgets from
// the providers yaml file. A missing file is not an error: every
// endpoint simply runs unlimited.
func LoadProviders(path string) (*ProvidersConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("No providers file at %s, endpoints run without budgets", path)
			return &ProvidersConfig{}, nil
		}
		return nil, fmt.Errorf("failed to read providers file: %w", err)
	}

	var pc ProvidersConfig
	if err := yaml.Unmarshal(data, &pc); err != nil {
		return nil, fmt.Errorf("failed to parse providers file: %w", err)
	}

	return &pc, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt gets an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
