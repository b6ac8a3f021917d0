package scheduler

// Package scheduler owns the background refresh loops for the sports
// data pipeline:
// - live odds boards (~30 seconds)
// - live game detail (~15 seconds)
// - injury reports (~30 minutes)
//
// Every job body is wrapped in error containment: a failing refresh
// becomes an error event on the pipeline bus and the schedule keeps
// running. The jobs are implemented in jobs.go
