package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OddsData represents the full odds board for one event in canonical form
type OddsData struct {
	EventID   string       `json:"event_id"`
	Sport     string       `json:"sport"`
	HomeTeam  string       `json:"home_team"`
	AwayTeam  string       `json:"away_team"`
	Markets   []MarketData `json:"markets"`
	FetchedAt time.Time    `json:"fetched_at"`
}

// MarketData represents a single betting market within an event
type MarketData struct {
	Key      string        `json:"key"` // h2h, spreads, totals, player_props
	BookName string        `json:"book_name"`
	Outcomes []OutcomeData `json:"outcomes"`
	LastSeen time.Time     `json:"last_seen"`
}

// OutcomeData represents one priced outcome within a market
type OutcomeData struct {
	Name  string           `json:"name"`
	Price decimal.Decimal  `json:"price"`          // decimal odds
	Point *decimal.Decimal `json:"point,omitempty"` // spread / total line
}

// Market returns the market with the given key, or nil when the board
// does not carry it.
func (o *OddsData) Market(key string) *MarketData {
	for i := range o.Markets {
		if o.Markets[i].Key == key {
			return &o.Markets[i]
		}
	}
	return nil
}
