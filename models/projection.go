package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProjectionData represents a player stat projection line in canonical form
type ProjectionData struct {
	ID         string          `json:"id"`
	Sport      string          `json:"sport"`
	PlayerID   string          `json:"player_id"`
	PlayerName string          `json:"player_name"`
	TeamName   string          `json:"team_name"`
	StatType   string          `json:"stat_type"` // points, rebounds, assists, ...
	Line       decimal.Decimal `json:"line"`
	GameID     string          `json:"game_id"`
	StartTime  time.Time       `json:"start_time"`
	FetchedAt  time.Time       `json:"fetched_at"`
}
