package pipeline

import "time"

// Cache lifetimes per data category. Odds move constantly and go
// stale in seconds; injury reports hold for hours.
const (
	TTLGame        = 5 * time.Minute
	TTLPlayer      = 10 * time.Minute
	TTLOdds        = 1 * time.Minute
	TTLProjections = 5 * time.Minute
	TTLInjuries    = 2 * time.Hour
	TTLWeather     = 30 * time.Minute
)

// Queue priorities per data category; lower runs first. Odds are the
// most time-sensitive category, weather the least.
const (
	PriorityOdds        = 1
	PriorityGame        = 5
	PriorityPlayer      = 5
	PriorityProjections = 5
	PriorityInjuries    = 5
	PriorityWeather     = 10
)
