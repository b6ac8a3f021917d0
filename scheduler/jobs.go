package scheduler

import (
	"fmt"
	"time"

	"go_sports_pipeline/config"
	"go_sports_pipeline/models"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"
)

// Pipeline is the slice of the orchestrator the refresh jobs drive.
type Pipeline interface {
	LiveGameIDs() []string
	TrackedSports() []string
	GetLiveOdds(eventID, market string) (*models.OddsData, error)
	GetGameData(gameID string) (*models.GameData, error)
	GetInjuries(sport string) ([]models.InjuryData, error)
	ReportStreamError(scope string, err error)
}

// Scheduler manages the background refresh jobs
type Scheduler struct {
	cron     *gocron.Scheduler
	pipeline Pipeline
	logger   *logrus.Logger

	oddsInterval   time.Duration
	gamesInterval  time.Duration
	injuryInterval time.Duration
}

// NewScheduler creates a new scheduler instance
func NewScheduler(p Pipeline, cfg *config.Config, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cron:           gocron.NewScheduler(time.UTC),
		pipeline:       p,
		logger:         logger,
		oddsInterval:   time.Duration(cfg.OddsRefreshSec) * time.Second,
		gamesInterval:  time.Duration(cfg.GamesRefreshSec) * time.Second,
		injuryInterval: time.Duration(cfg.InjuryRefreshMin) * time.Minute,
	}
}

// Start registers and starts all refresh jobs
func (s *Scheduler) Start() {
	s.logger.Info("Starting scheduler...")

	s.cron.Every(int(s.oddsInterval.Seconds())).Seconds().Do(func() {
		s.contain("odds_refresh", s.refreshOdds)
	})

	s.cron.Every(int(s.gamesInterval.Seconds())).Seconds().Do(func() {
		s.contain("live_games_refresh", s.refreshLiveGames)
	})

	s.cron.Every(int(s.injuryInterval.Minutes())).Minutes().Do(func() {
		s.contain("injuries_refresh", s.refreshInjuries)
	})

	s.cron.StartAsync()
	s.logger.WithFields(logrus.Fields{
		"odds_interval":   s.oddsInterval,
		"games_interval":  s.gamesInterval,
		"injury_interval": s.injuryInterval,
	}).Info("Scheduler started")
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.logger.Info("Scheduler stopped")
}

// contain runs one job body and turns any failure, panic included,
// into an error event instead of letting it escape the tick.
func (s *Scheduler) contain(scope string, job func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.pipeline.ReportStreamError(scope, fmt.Errorf("panic in refresh job: %v", r))
		}
	}()

	if err := job(); err != nil {
		s.pipeline.ReportStreamError(scope, err)
	}
}

// refreshOdds re-reads the odds board for every tracked live event.
// A failing event is reported and the loop moves on.
func (s *Scheduler) refreshOdds() error {
	ids := s.pipeline.LiveGameIDs()
	for _, id := range ids {
		if _, err := s.pipeline.GetLiveOdds(id, ""); err != nil {
			s.pipeline.ReportStreamError("odds_refresh", fmt.Errorf("event %s: %w", id, err))
		}
	}
	if len(ids) > 0 {
		s.logger.WithField("events", len(ids)).Debug("Odds refresh tick")
	}
	return nil
}

// refreshLiveGames re-reads detail for every tracked live game.
func (s *Scheduler) refreshLiveGames() error {
	ids := s.pipeline.LiveGameIDs()
	for _, id := range ids {
		if _, err := s.pipeline.GetGameData(id); err != nil {
			s.pipeline.ReportStreamError("live_games_refresh", fmt.Errorf("game %s: %w", id, err))
		}
	}
	return nil
}

// refreshInjuries re-reads the injury report for every tracked sport.
func (s *Scheduler) refreshInjuries() error {
	for _, sport := range s.pipeline.TrackedSports() {
		if _, err := s.pipeline.GetInjuries(sport); err != nil {
			s.pipeline.ReportStreamError("injuries_refresh", fmt.Errorf("sport %s: %w", sport, err))
		}
	}
	return nil
}
