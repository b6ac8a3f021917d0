package providers

import (
	"context"
	"net/http"
	"time"

	"go_sports_pipeline/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EndpointProjections is the rate-limit endpoint identifier for the
// projections provider.
const EndpointProjections = "prizepicks:projections"

// PrizePicksClient fetches player stat projection lines.
type PrizePicksClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewPrizePicksClient creates a projections provider adapter.
func NewPrizePicksClient(baseURL, apiKey string, logger *logrus.Logger) *PrizePicksClient {
	return &PrizePicksClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *PrizePicksClient) Name() string { return "prizepicks" }

func (c *PrizePicksClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.Name(), c.baseURL)
}

// rawProjectionsResponse is the raw projections feed.
type rawProjectionsResponse struct {
	Data []rawProjection `json:"data"`
}

type rawProjection struct {
	ID         string  `json:"id"`
	Sport      string  `json:"sport"`
	PlayerID   string  `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	StatType   string  `json:"stat_type"`
	LineScore  float64 `json:"line_score"`
	GameID     string  `json:"game_id"`
	StartTime  string  `json:"start_time"`
}

// toProjection maps one raw line into canonical form. Lines without
// an ID or stat type are rejected.
func (raw *rawProjection) toProjection(source string) (*models.ProjectionData, error) {
	if raw.ID == "" {
		return nil, &TransformError{Source: source, Field: "id", Reason: "missing"}
	}
	if raw.StatType == "" {
		return nil, &TransformError{Source: source, Field: "stat_type", Reason: "missing"}
	}

	startTime, _ := time.Parse(time.RFC3339, raw.StartTime)

	return &models.ProjectionData{
		ID:         raw.ID,
		Sport:      raw.Sport,
		PlayerID:   raw.PlayerID,
		PlayerName: raw.PlayerName,
		TeamName:   raw.Team,
		StatType:   raw.StatType,
		Line:       decimal.NewFromFloat(raw.LineScore),
		GameID:     raw.GameID,
		StartTime:  startTime,
		FetchedAt:  time.Now(),
	}, nil
}

// FetchProjections retrieves the current projections board. Lines
// that fail to transform are skipped rather than failing the batch.
func (c *PrizePicksClient) FetchProjections(ctx context.Context) ([]models.ProjectionData, error) {
	var raw rawProjectionsResponse
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/projections", nil, c.apiKey, &raw); err != nil {
		return nil, err
	}

	projections := make([]models.ProjectionData, 0, len(raw.Data))
	skipped := 0
	for i := range raw.Data {
		p, err := raw.Data[i].toProjection(c.Name())
		if err != nil {
			skipped++
			continue
		}
		projections = append(projections, *p)
	}

	c.logger.WithFields(logrus.Fields{
		"source":  c.Name(),
		"lines":   len(projections),
		"skipped": skipped,
	}).Debug("Fetched projections")
	return projections, nil
}
