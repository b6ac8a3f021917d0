package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go_sports_pipeline/config"
	"go_sports_pipeline/models"
	"go_sports_pipeline/services/cache"
	"go_sports_pipeline/services/eventbus"
	"go_sports_pipeline/services/metrics"
	"go_sports_pipeline/services/providers"
	"go_sports_pipeline/services/queue"
	"go_sports_pipeline/services/ratelimit"

	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

// Stopper is the slice of the background scheduler the pipeline needs
// for shutdown.
type Stopper interface {
	Stop()
}

// Stats is the management-surface snapshot of pipeline state.
type Stats struct {
	Cache      cache.Stats `json:"cache"`
	QueueDepth int         `json:"queue_depth"`
}

// Pipeline is the ingestion orchestrator. Every public read is
// cache-first: a hit returns immediately, a miss enqueues a fetch at
// the category's priority. The queue serializes all upstream calls,
// the rate limiter budgets them per endpoint, and every successful
// fetch lands in the cache and fires a data:updated event.
//
// Near-simultaneous misses for the same key are NOT collapsed: both
// callers enqueue their own fetch. The read path re-checks nothing
// between enqueue and execution.
type Pipeline struct {
	cfg    *config.Config
	logger *logrus.Logger

	cache   *cache.DataCache
	limiter *ratelimit.RateLimiter
	queue   *queue.RequestQueue
	events  *eventbus.Bus
	oddsBus *eventbus.Bus
	metrics *metrics.Metrics

	sportsData *providers.SportsDataClient
	oddsClient *providers.OddsClient
	prizePicks *providers.PrizePicksClient
	injuryFeed *providers.InjuryClient
	weather    *providers.WeatherClient
	sources    []providers.Provider

	scheduler Stopper

	mu            sync.RWMutex
	connections   map[string]bool
	liveGames     map[string]struct{}
	trackedSports map[string]struct{}
	isShutdown    bool
}

// New constructs a pipeline, wires the upstream adapters from config,
// installs the static rate-limit budgets, and probes every source
// once. The probe result is informational: a source recorded as down
// is still fetched from on demand.
func New(cfg *config.Config, providersCfg *config.ProvidersConfig, logger *logrus.Logger) *Pipeline {
	if logger == nil {
		logger = logrus.New()
	}

	budgets := make(map[string]ratelimit.Budget)
	if providersCfg != nil {
		for _, l := range providersCfg.Limits {
			budgets[l.Endpoint] = ratelimit.Budget{Limit: l.Limit, Period: l.Period}
		}
	}

	p := &Pipeline{
		cfg:           cfg,
		logger:        logger,
		cache:         cache.New(cfg.CacheMaxSize),
		limiter:       ratelimit.New(budgets),
		queue:         queue.New(time.Duration(cfg.QueuePacingMS) * time.Millisecond),
		events:        eventbus.New(),
		oddsBus:       eventbus.New(),
		metrics:       metrics.New(),
		connections:   make(map[string]bool),
		liveGames:     make(map[string]struct{}),
		trackedSports: make(map[string]struct{}),
	}

	p.sportsData = providers.NewSportsDataClient(cfg.SportsDataBaseURL, cfg.SportsDataAPIKey, logger)
	p.oddsClient = providers.NewOddsClient(cfg.OddsBaseURL, cfg.OddsAPIKey, logger)
	p.prizePicks = providers.NewPrizePicksClient(cfg.PrizePicksBaseURL, cfg.PrizePicksAPIKey, logger)
	p.injuryFeed = providers.NewInjuryClient(cfg.InjuryBaseURL, cfg.InjuryAPIKey, logger)
	p.weather = providers.NewWeatherClient(cfg.WeatherBaseURL, cfg.WeatherAPIKey, logger)
	p.sources = []providers.Provider{p.sportsData, p.oddsClient, p.prizePicks, p.injuryFeed, p.weather}

	p.probeConnections()
	return p
}

// SetScheduler hands the pipeline the background scheduler so
// Shutdown can stop it.
func (p *Pipeline) SetScheduler(s Stopper) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.scheduler = s
}

// Subscribe registers a handler on the pipeline event bus.
func (p *Pipeline) Subscribe(topic string, h eventbus.Handler) eventbus.Subscription {
	return p.events.Subscribe(topic, h)
}

// Unsubscribe removes a handler from the pipeline event bus.
func (p *Pipeline) Unsubscribe(sub eventbus.Subscription) {
	p.events.Unsubscribe(sub)
}

// SubscribeOdds registers a handler on the narrower odds-only bus.
func (p *Pipeline) SubscribeOdds(h eventbus.Handler) eventbus.Subscription {
	return p.oddsBus.Subscribe(eventbus.TopicOddsUpdated, h)
}

// UnsubscribeOdds removes a handler from the odds-only bus.
func (p *Pipeline) UnsubscribeOdds(sub eventbus.Subscription) {
	p.oddsBus.Unsubscribe(sub)
}

// GetGameData returns the game for an upstream ID, fetching on miss.
func (p *Pipeline) GetGameData(gameID string) (*models.GameData, error) {
	v, err := p.readThrough("game:"+gameID, providers.EndpointGames, PriorityGame, TTLGame,
		"game", gameID, nil,
		func(ctx context.Context) (interface{}, error) {
			return p.sportsData.FetchGame(ctx, gameID)
		})
	if err != nil {
		return nil, err
	}
	return v.(*models.GameData), nil
}

// GetPlayerData returns the player for an upstream ID, fetching on miss.
func (p *Pipeline) GetPlayerData(playerID string) (*models.PlayerData, error) {
	v, err := p.readThrough("player:"+playerID, providers.EndpointPlayers, PriorityPlayer, TTLPlayer,
		"player", playerID, nil,
		func(ctx context.Context) (interface{}, error) {
			return p.sportsData.FetchPlayer(ctx, playerID)
		})
	if err != nil {
		return nil, err
	}
	return v.(*models.PlayerData), nil
}

// GetLiveOdds returns the odds board for an event. An empty market
// requests all markets. Odds carry the most urgent queue priority,
// and successful fetches also fire on the odds-only bus.
func (p *Pipeline) GetLiveOdds(eventID, market string) (*models.OddsData, error) {
	marketKey := market
	if marketKey == "" {
		marketKey = "all"
	}
	cacheKey := fmt.Sprintf("odds:%s:%s", eventID, marketKey)

	announce := func(v interface{}) {
		odds, ok := v.(*models.OddsData)
		if !ok {
			return
		}
		p.oddsBus.Publish(eventbus.TopicOddsUpdated, OddsUpdate{
			EventID: eventID,
			Market:  marketKey,
			Odds:    odds,
		})
	}

	v, err := p.readThrough(cacheKey, providers.EndpointOdds, PriorityOdds, TTLOdds,
		"odds", eventID, announce,
		func(ctx context.Context) (interface{}, error) {
			return p.oddsClient.FetchLiveOdds(ctx, eventID, market)
		})
	if err != nil {
		return nil, err
	}
	return v.(*models.OddsData), nil
}

// GetPrizePicksProjections returns the current projections board.
func (p *Pipeline) GetPrizePicksProjections() ([]models.ProjectionData, error) {
	v, err := p.readThrough("projections:all", providers.EndpointProjections, PriorityProjections, TTLProjections,
		"projections", "all", nil,
		func(ctx context.Context) (interface{}, error) {
			return p.prizePicks.FetchProjections(ctx)
		})
	if err != nil {
		return nil, err
	}
	return v.([]models.ProjectionData), nil
}

// GetInjuries returns the injury report for one sport.
func (p *Pipeline) GetInjuries(sport string) ([]models.InjuryData, error) {
	v, err := p.readThrough("injuries:"+sport, providers.EndpointInjuries, PriorityInjuries, TTLInjuries,
		"injuries", sport, nil,
		func(ctx context.Context) (interface{}, error) {
			return p.injuryFeed.FetchInjuries(ctx, sport)
		})
	if err != nil {
		return nil, err
	}
	return v.([]models.InjuryData), nil
}

// GetWeatherData returns current conditions for one venue.
func (p *Pipeline) GetWeatherData(venueID string) (*models.WeatherData, error) {
	v, err := p.readThrough("weather:"+venueID, providers.EndpointWeather, PriorityWeather, TTLWeather,
		"weather", venueID, nil,
		func(ctx context.Context) (interface{}, error) {
			return p.weather.FetchCurrent(ctx, venueID)
		})
	if err != nil {
		return nil, err
	}
	return v.(*models.WeatherData), nil
}

// readThrough is the shared read path: cache lookup, on miss a queued
// fetch behind the endpoint budget, cache write, data:updated event.
// The call blocks until the queued task settles.
func (p *Pipeline) readThrough(cacheKey, endpoint string, priority int, ttl time.Duration,
	dataType, id string, announce func(interface{}), fetch func(context.Context) (interface{}, error)) (interface{}, error) {

	if v, ok := p.cache.Get(cacheKey); ok {
		p.metrics.CacheHits.Inc()
		return v, nil
	}
	p.metrics.CacheMisses.Inc()

	result := p.queue.Enqueue(cacheKey, priority, func() (interface{}, error) {
		if !p.limiter.CanMakeRequest(endpoint) {
			p.metrics.FetchesTotal.WithLabelValues(dataType, "rate_limited").Inc()
			return nil, &RateLimitError{Endpoint: endpoint}
		}
		p.limiter.RecordRequest(endpoint)

		start := time.Now()
		v, err := fetch(context.Background())
		p.metrics.FetchDuration.WithLabelValues(dataType).Observe(time.Since(start).Seconds())
		if err != nil {
			p.metrics.FetchesTotal.WithLabelValues(dataType, "error").Inc()
			p.logger.WithFields(logrus.Fields{
				"endpoint": endpoint,
				"key":      cacheKey,
			}).WithError(err).Warn("Fetch failed")
			return nil, err
		}
		p.metrics.FetchesTotal.WithLabelValues(dataType, "success").Inc()

		p.cache.Set(cacheKey, v, ttl)
		p.publish(eventbus.TopicDataUpdated, DataUpdate{Type: dataType, ID: id, Data: v})
		if announce != nil {
			announce(v)
		}
		return v, nil
	})
	p.metrics.QueueDepth.Set(float64(p.queue.Len()))

	res := <-result
	p.metrics.QueueDepth.Set(float64(p.queue.Len()))
	return res.Value, res.Err
}

// TrackLiveGame adds a game/event ID to the set the background
// schedulers keep warm.
func (p *Pipeline) TrackLiveGame(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.liveGames[id] = struct{}{}
}

// UntrackLiveGame removes a game/event ID from the refresh set.
func (p *Pipeline) UntrackLiveGame(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.liveGames, id)
}

// LiveGameIDs returns the tracked live game/event IDs.
func (p *Pipeline) LiveGameIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.liveGames))
	for id := range p.liveGames {
		ids = append(ids, id)
	}
	return ids
}

// TrackSport adds a sport to the injury refresh set.
func (p *Pipeline) TrackSport(sport string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.trackedSports[sport] = struct{}{}
}

// TrackedSports returns the sports whose injury reports are refreshed.
func (p *Pipeline) TrackedSports() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	sports := make([]string, 0, len(p.trackedSports))
	for s := range p.trackedSports {
		sports = append(sports, s)
	}
	return sports
}

// ReportStreamError converts a background refresh failure into an
// error event. Nothing rejects toward a caller; if nobody subscribes,
// the failure is dropped.
func (p *Pipeline) ReportStreamError(scope string, err error) {
	p.logger.WithField("context", scope).WithError(err).Warn("Background refresh error")
	p.publish(eventbus.TopicError, ErrorEvent{Type: "stream", Context: scope, Err: err})
}

// ClearCache empties the cache and announces it.
func (p *Pipeline) ClearCache() {
	p.cache.Clear()
	p.publish(eventbus.TopicCacheCleared, nil)
	p.logger.Info("Cache cleared")
}

// GetCacheStats returns the cache counters and current queue depth.
func (p *Pipeline) GetCacheStats() Stats {
	return Stats{
		Cache:      p.cache.GetStats(),
		QueueDepth: p.queue.Len(),
	}
}

// GetConnectionStatus returns the per-source reachability recorded by
// the startup probe.
func (p *Pipeline) GetConnectionStatus() map[string]bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	status := make(map[string]bool, len(p.connections))
	for source, up := range p.connections {
		status[source] = up
	}
	return status
}

// RefreshAllData clears the cache and eagerly re-fetches the critical
// categories: projections, injury reports for tracked sports, and
// odds for tracked live games. Per-category failures are collected;
// one bad source does not stop the rest.
func (p *Pipeline) RefreshAllData() error {
	p.publish(eventbus.TopicRefreshStarted, nil)
	p.ClearCache()

	var result *multierror.Error

	if _, err := p.GetPrizePicksProjections(); err != nil {
		result = multierror.Append(result, fmt.Errorf("projections: %w", err))
	}
	for _, sport := range p.TrackedSports() {
		if _, err := p.GetInjuries(sport); err != nil {
			result = multierror.Append(result, fmt.Errorf("injuries %s: %w", sport, err))
		}
	}
	for _, id := range p.LiveGameIDs() {
		if _, err := p.GetLiveOdds(id, ""); err != nil {
			result = multierror.Append(result, fmt.Errorf("odds %s: %w", id, err))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		p.publish(eventbus.TopicRefreshFailed, ErrorEvent{Type: "refresh", Context: "refresh_all", Err: err})
		return err
	}

	p.publish(eventbus.TopicRefreshCompleted, nil)
	p.logger.Info("Full refresh completed")
	return nil
}

// Shutdown stops the background scheduler, empties the cache, and
// resets connection state. Reads issued afterwards still work; they
// cold-start from an empty cache.
func (p *Pipeline) Shutdown() {
	p.mu.Lock()
	if p.isShutdown {
		p.mu.Unlock()
		return
	}
	p.isShutdown = true
	sched := p.scheduler
	p.connections = make(map[string]bool)
	p.mu.Unlock()

	if sched != nil {
		sched.Stop()
	}
	p.cache.Clear()
	p.publish(eventbus.TopicShutdown, nil)
	p.logger.Info("Pipeline shutdown complete")
}

// publish fans out on the main bus and counts the event.
func (p *Pipeline) publish(topic string, payload interface{}) {
	p.metrics.EventsTotal.WithLabelValues(topic).Inc()
	p.events.Publish(topic, payload)
}

// probeConnections checks every source once, concurrently, and
// records the result. The outcome never gates a later fetch.
func (p *Pipeline) probeConnections() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	var g errgroup.Group
	for _, source := range p.sources {
		source := source
		g.Go(func() error {
			err := source.Ping(ctx)

			p.mu.Lock()
			p.connections[source.Name()] = err == nil
			p.mu.Unlock()

			if err != nil {
				p.logger.WithField("source", source.Name()).WithError(err).Warn("Source unreachable")
				p.publish(eventbus.TopicConnectionFailed, ConnectionEvent{Source: source.Name()})
				return nil
			}
			p.publish(eventbus.TopicConnectionEstablished, ConnectionEvent{Source: source.Name()})
			return nil
		})
	}
	g.Wait()
}

// Metrics exposes the prometheus collectors for the router.
func (p *Pipeline) Metrics() *metrics.Metrics {
	return p.metrics
}
