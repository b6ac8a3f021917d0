package pipeline

import "go_sports_pipeline/models"

// DataUpdate is the payload of a data:updated event.
type DataUpdate struct {
	Type string      `json:"type"` // game, player, odds, projections, injuries, weather
	ID   string      `json:"id"`
	Data interface{} `json:"data"`
}

// ErrorEvent is the payload of an error event.
type ErrorEvent struct {
	Type    string `json:"type"` // stream, refresh
	Context string `json:"context"`
	Err     error  `json:"error"`
}

// ConnectionEvent is the payload of connection:established and
// connection:failed events.
type ConnectionEvent struct {
	Source string `json:"source"`
}

// OddsUpdate is the payload carried on the odds-only bus.
type OddsUpdate struct {
	EventID string           `json:"event_id"`
	Market  string           `json:"market"`
	Odds    *models.OddsData `json:"odds"`
}
