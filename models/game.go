package models

import "time"

// GameData represents a scheduled or in-progress game in canonical form
type GameData struct {
	ID          string    `json:"id"`
	Sport       string    `json:"sport"` // nba, nfl, mlb, nhl
	League      string    `json:"league"`
	HomeTeam    TeamData  `json:"home_team"`
	AwayTeam    TeamData  `json:"away_team"`
	StartTime   time.Time `json:"start_time"`
	Status      string    `json:"status"` // scheduled, live, final, postponed
	Period      int       `json:"period"`
	Clock       string    `json:"clock"`
	HomeScore   int       `json:"home_score"`
	AwayScore   int       `json:"away_score"`
	VenueID     string    `json:"venue_id"`
	VenueName   string    `json:"venue_name"`
	IsOutdoor   bool      `json:"is_outdoor"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// TeamData represents a team in canonical form
type TeamData struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
	City         string `json:"city"`
	Record       string `json:"record"` // e.g. "41-21"
}

// IsLive reports whether the game is currently in progress.
func (g *GameData) IsLive() bool {
	return g.Status == "live"
}
