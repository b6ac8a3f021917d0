package models

import "time"

// PlayerData represents a player in canonical form
type PlayerData struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Sport     string            `json:"sport"`
	TeamID    string            `json:"team_id"`
	TeamName  string            `json:"team_name"`
	Position  string            `json:"position"`
	Jersey    string            `json:"jersey"`
	Status    string            `json:"status"` // active, inactive, injured
	Stats     map[string]float64 `json:"stats"` // season averages keyed by stat code
	FetchedAt time.Time         `json:"fetched_at"`
}
