package providers

import (
	"context"
	"net/http"
	"time"

	"go_sports_pipeline/models"

	"github.com/sirupsen/logrus"
)

// EndpointInjuries is the rate-limit endpoint identifier for the
// injury provider.
const EndpointInjuries = "injuries:report"

// InjuryClient fetches league injury reports.
type InjuryClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewInjuryClient creates an injury provider adapter.
func NewInjuryClient(baseURL, apiKey string, logger *logrus.Logger) *InjuryClient {
	return &InjuryClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *InjuryClient) Name() string { return "injuries" }

func (c *InjuryClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.Name(), c.baseURL)
}

type rawInjury struct {
	InjuryID   string `json:"InjuryID"`
	PlayerID   string `json:"PlayerID"`
	PlayerName string `json:"Name"`
	TeamID     string `json:"TeamID"`
	Team       string `json:"Team"`
	Position   string `json:"Position"`
	Status     string `json:"Status"`
	BodyPart   string `json:"BodyPart"`
	Notes      string `json:"Notes"`
	Updated    string `json:"Updated"`
}

// toInjury maps one raw report entry into canonical form.
func (raw *rawInjury) toInjury(source, sport string) (*models.InjuryData, error) {
	if raw.InjuryID == "" {
		return nil, &TransformError{Source: source, Field: "InjuryID", Reason: "missing"}
	}

	updatedAt, _ := time.Parse(time.RFC3339, raw.Updated)

	return &models.InjuryData{
		ID:         raw.InjuryID,
		Sport:      sport,
		PlayerID:   raw.PlayerID,
		PlayerName: raw.PlayerName,
		TeamID:     raw.TeamID,
		TeamName:   raw.Team,
		Position:   raw.Position,
		Status:     raw.Status,
		BodyPart:   raw.BodyPart,
		Notes:      raw.Notes,
		UpdatedAt:  updatedAt,
		FetchedAt:  time.Now(),
	}, nil
}

// FetchInjuries retrieves the injury report for one sport. Entries
// that fail to transform are skipped rather than failing the batch.
func (c *InjuryClient) FetchInjuries(ctx context.Context, sport string) ([]models.InjuryData, error) {
	var raw []rawInjury
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/injuries/"+sport, nil, c.apiKey, &raw); err != nil {
		return nil, err
	}

	injuries := make([]models.InjuryData, 0, len(raw))
	skipped := 0
	for i := range raw {
		inj, err := raw[i].toInjury(c.Name(), sport)
		if err != nil {
			skipped++
			continue
		}
		injuries = append(injuries, *inj)
	}

	c.logger.WithFields(logrus.Fields{
		"source":  c.Name(),
		"sport":   sport,
		"entries": len(injuries),
		"skipped": skipped,
	}).Debug("Fetched injury report")
	return injuries, nil
}
