package models

import "time"

// InjuryData represents an injury report entry in canonical form
type InjuryData struct {
	ID         string    `json:"id"`
	Sport      string    `json:"sport"`
	PlayerID   string    `json:"player_id"`
	PlayerName string    `json:"player_name"`
	TeamID     string    `json:"team_id"`
	TeamName   string    `json:"team_name"`
	Position   string    `json:"position"`
	Status     string    `json:"status"` // questionable, doubtful, out, day-to-day
	BodyPart   string    `json:"body_part"`
	Notes      string    `json:"notes"`
	UpdatedAt  time.Time `json:"updated_at"`
	FetchedAt  time.Time `json:"fetched_at"`
}
