package providers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"go_sports_pipeline/models"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// EndpointOdds is the rate-limit endpoint identifier for the odds provider.
const EndpointOdds = "odds:live"

// OddsClient fetches live odds boards.
type OddsClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewOddsClient creates an odds provider adapter.
func NewOddsClient(baseURL, apiKey string, logger *logrus.Logger) *OddsClient {
	return &OddsClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *OddsClient) Name() string { return "odds" }

func (c *OddsClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.Name(), c.baseURL)
}

// rawOddsEvent is the raw odds board payload for one event.
type rawOddsEvent struct {
	ID         string `json:"id"`
	SportKey   string `json:"sport_key"`
	HomeTeam   string `json:"home_team"`
	AwayTeam   string `json:"away_team"`
	Bookmakers []struct {
		Title   string `json:"title"`
		Markets []struct {
			Key        string `json:"key"`
			LastUpdate string `json:"last_update"`
			Outcomes   []struct {
				Name  string   `json:"name"`
				Price float64  `json:"price"`
				Point *float64 `json:"point"`
			} `json:"outcomes"`
		} `json:"markets"`
	} `json:"bookmakers"`
}

// toOdds maps the raw board into canonical form. A board without an
// event ID is rejected; a book timestamp that fails to parse falls
// back to fetch time.
func (raw *rawOddsEvent) toOdds(source string) (*models.OddsData, error) {
	if raw.ID == "" {
		return nil, &TransformError{Source: source, Field: "id", Reason: "missing"}
	}

	now := time.Now()
	odds := &models.OddsData{
		EventID:   raw.ID,
		Sport:     raw.SportKey,
		HomeTeam:  raw.HomeTeam,
		AwayTeam:  raw.AwayTeam,
		FetchedAt: now,
	}

	for _, book := range raw.Bookmakers {
		for _, market := range book.Markets {
			lastSeen := now
			if t, err := time.Parse(time.RFC3339, market.LastUpdate); err == nil {
				lastSeen = t
			}

			m := models.MarketData{
				Key:      market.Key,
				BookName: book.Title,
				LastSeen: lastSeen,
			}
			for _, out := range market.Outcomes {
				outcome := models.OutcomeData{
					Name:  out.Name,
					Price: decimal.NewFromFloat(out.Price),
				}
				if out.Point != nil {
					point := decimal.NewFromFloat(*out.Point)
					outcome.Point = &point
				}
				m.Outcomes = append(m.Outcomes, outcome)
			}
			odds.Markets = append(odds.Markets, m)
		}
	}

	return odds, nil
}

// FetchLiveOdds retrieves the odds board for one event. An empty
// market requests every market the provider carries.
func (c *OddsClient) FetchLiveOdds(ctx context.Context, eventID, market string) (*models.OddsData, error) {
	query := url.Values{}
	if market != "" {
		query.Set("markets", market)
	}

	var raw rawOddsEvent
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/events/"+eventID+"/odds", query, c.apiKey, &raw); err != nil {
		return nil, err
	}

	odds, err := raw.toOdds(c.Name())
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source":   c.Name(),
		"event_id": odds.EventID,
		"markets":  len(odds.Markets),
	}).Debug("Fetched live odds")
	return odds, nil
}
