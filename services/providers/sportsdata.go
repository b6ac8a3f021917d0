package providers

import (
	"context"
	"net/http"
	"time"

	"go_sports_pipeline/models"

	"github.com/sirupsen/logrus"
)

// Rate-limit endpoint identifiers for the stats provider.
const (
	EndpointGames   = "sportsdata:games"
	EndpointPlayers = "sportsdata:players"
)

// SportsDataClient fetches game and player statistics.
type SportsDataClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *logrus.Logger
}

// NewSportsDataClient creates a stats provider adapter.
func NewSportsDataClient(baseURL, apiKey string, logger *logrus.Logger) *SportsDataClient {
	return &SportsDataClient{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		logger:     logger,
	}
}

func (c *SportsDataClient) Name() string { return "sportsdata" }

func (c *SportsDataClient) Ping(ctx context.Context) error {
	return ping(ctx, c.httpClient, c.Name(), c.baseURL)
}

// sportsDataGame is the raw game payload from the stats provider.
type sportsDataGame struct {
	GameID    string  `json:"GameID"`
	Sport     string  `json:"Sport"`
	League    string  `json:"League"`
	Status    string  `json:"Status"`
	DateTime  string  `json:"DateTime"`
	Period    int     `json:"Period"`
	Clock     string  `json:"TimeRemaining"`
	HomeScore int     `json:"HomeTeamScore"`
	AwayScore int     `json:"AwayTeamScore"`
	StadiumID string  `json:"StadiumID"`
	Stadium   string  `json:"Stadium"`
	Outdoor   bool    `json:"OutdoorVenue"`
	HomeTeam  rawTeam `json:"HomeTeam"`
	AwayTeam  rawTeam `json:"AwayTeam"`
}

type rawTeam struct {
	TeamID       string `json:"TeamID"`
	Name         string `json:"Name"`
	Abbreviation string `json:"Key"`
	City         string `json:"City"`
	Record       string `json:"Record"`
}

// sportsDataPlayer is the raw player payload from the stats provider.
type sportsDataPlayer struct {
	PlayerID string             `json:"PlayerID"`
	Name     string             `json:"Name"`
	Sport    string             `json:"Sport"`
	TeamID   string             `json:"TeamID"`
	Team     string             `json:"Team"`
	Position string             `json:"Position"`
	Jersey   string             `json:"Jersey"`
	Status   string             `json:"Status"`
	Stats    map[string]float64 `json:"SeasonStats"`
}

// toGame maps the raw game payload into canonical form. An empty
// GameID or an unparseable start time rejects the payload.
func (raw *sportsDataGame) toGame(source string) (*models.GameData, error) {
	if raw.GameID == "" {
		return nil, &TransformError{Source: source, Field: "GameID", Reason: "missing"}
	}

	startTime, err := time.Parse(time.RFC3339, raw.DateTime)
	if err != nil {
		return nil, &TransformError{Source: source, Field: "DateTime", Reason: err.Error()}
	}

	status := raw.Status
	if status == "" {
		status = "scheduled"
	}

	return &models.GameData{
		ID:        raw.GameID,
		Sport:     raw.Sport,
		League:    raw.League,
		HomeTeam:  raw.HomeTeam.toTeam(),
		AwayTeam:  raw.AwayTeam.toTeam(),
		StartTime: startTime,
		Status:    status,
		Period:    raw.Period,
		Clock:     raw.Clock,
		HomeScore: raw.HomeScore,
		AwayScore: raw.AwayScore,
		VenueID:   raw.StadiumID,
		VenueName: raw.Stadium,
		IsOutdoor: raw.Outdoor,
		FetchedAt: time.Now(),
	}, nil
}

func (raw *rawTeam) toTeam() models.TeamData {
	return models.TeamData{
		ID:           raw.TeamID,
		Name:         raw.Name,
		Abbreviation: raw.Abbreviation,
		City:         raw.City,
		Record:       raw.Record,
	}
}

// toPlayer maps the raw player payload into canonical form.
func (raw *sportsDataPlayer) toPlayer(source string) (*models.PlayerData, error) {
	if raw.PlayerID == "" {
		return nil, &TransformError{Source: source, Field: "PlayerID", Reason: "missing"}
	}

	stats := raw.Stats
	if stats == nil {
		stats = make(map[string]float64)
	}

	return &models.PlayerData{
		ID:        raw.PlayerID,
		Name:      raw.Name,
		Sport:     raw.Sport,
		TeamID:    raw.TeamID,
		TeamName:  raw.Team,
		Position:  raw.Position,
		Jersey:    raw.Jersey,
		Status:    raw.Status,
		Stats:     stats,
		FetchedAt: time.Now(),
	}, nil
}

// FetchGame retrieves one game by provider ID.
func (c *SportsDataClient) FetchGame(ctx context.Context, gameID string) (*models.GameData, error) {
	var raw sportsDataGame
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/games/"+gameID, nil, c.apiKey, &raw); err != nil {
		return nil, err
	}

	game, err := raw.toGame(c.Name())
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source":  c.Name(),
		"game_id": game.ID,
		"status":  game.Status,
	}).Debug("Fetched game")
	return game, nil
}

// FetchPlayer retrieves one player by provider ID.
func (c *SportsDataClient) FetchPlayer(ctx context.Context, playerID string) (*models.PlayerData, error) {
	var raw sportsDataPlayer
	if err := httpGetJSON(ctx, c.httpClient, c.Name(), c.baseURL, "/players/"+playerID, nil, c.apiKey, &raw); err != nil {
		return nil, err
	}

	player, err := raw.toPlayer(c.Name())
	if err != nil {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source":    c.Name(),
		"player_id": player.ID,
	}).Debug("Fetched player")
	return player, nil
}
