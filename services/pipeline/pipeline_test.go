package pipeline

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go_sports_pipeline/config"
	"go_sports_pipeline/services/eventbus"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeUpstreams stands in for all five providers and counts hits.
type fakeUpstreams struct {
	sportsSrv *httptest.Server
	oddsSrv   *httptest.Server
	ppSrv     *httptest.Server
	injSrv    *httptest.Server
	wxSrv     *httptest.Server

	gameHits    atomic.Int64
	oddsHits    atomic.Int64
	projHits    atomic.Int64
	injuryHits  atomic.Int64
	weatherHits atomic.Int64

	gameDelay time.Duration
	failOdds  atomic.Bool
}

func newFakeUpstreams() *fakeUpstreams {
	f := &fakeUpstreams{}

	// The startup probe GETs the bare base URL; answer it without
	// counting a data fetch.
	probe := func(w http.ResponseWriter, r *http.Request) bool {
		if r.URL.Path == "/" {
			w.WriteHeader(http.StatusOK)
			return true
		}
		return false
	}

	f.sportsSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probe(w, r) {
			return
		}
		if f.gameDelay > 0 {
			time.Sleep(f.gameDelay)
		}
		f.gameHits.Add(1)
		w.Write([]byte(`{"GameID": "gm-1", "Sport": "nba", "Status": "live",
			"DateTime": "2026-03-01T19:00:00Z",
			"HomeTeam": {"TeamID": "t1"}, "AwayTeam": {"TeamID": "t2"},
			"PlayerID": "pl-1", "Name": "Player One"}`))
	}))

	f.oddsSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probe(w, r) {
			return
		}
		f.oddsHits.Add(1)
		if f.failOdds.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"id": "evt-1", "sport_key": "basketball_nba",
			"home_team": "Hawks", "away_team": "Bulls",
			"bookmakers": [{"title": "BookOne", "markets": [{"key": "h2h",
				"outcomes": [{"name": "Hawks", "price": 1.91}]}]}]}`))
	}))

	f.ppSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probe(w, r) {
			return
		}
		f.projHits.Add(1)
		w.Write([]byte(`{"data": [{"id": "pp-1", "stat_type": "points", "line_score": 25.5}]}`))
	}))

	f.injSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probe(w, r) {
			return
		}
		f.injuryHits.Add(1)
		w.Write([]byte(`[{"InjuryID": "inj-1", "Name": "A", "Status": "out"}]`))
	}))

	f.wxSrv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if probe(w, r) {
			return
		}
		f.weatherHits.Add(1)
		w.Write([]byte(`{"main": {"temp": 70}, "wind": {"speed": 5}, "weather": [{"main": "Clear"}]}`))
	}))

	return f
}

func (f *fakeUpstreams) Close() {
	f.sportsSrv.Close()
	f.oddsSrv.Close()
	f.ppSrv.Close()
	f.injSrv.Close()
	f.wxSrv.Close()
}

func (f *fakeUpstreams) config() *config.Config {
	return &config.Config{
		SportsDataBaseURL: f.sportsSrv.URL,
		OddsBaseURL:       f.oddsSrv.URL,
		PrizePicksBaseURL: f.ppSrv.URL,
		InjuryBaseURL:     f.injSrv.URL,
		WeatherBaseURL:    f.wxSrv.URL,
		CacheMaxSize:      50,
		QueuePacingMS:     1,
	}
}

func newTestPipeline(t *testing.T, f *fakeUpstreams, providersCfg *config.ProvidersConfig) *Pipeline {
	t.Helper()
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return New(f.config(), providersCfg, logger)
}

type fakeScheduler struct {
	stopped atomic.Bool
}

func (s *fakeScheduler) Stop() { s.stopped.Store(true) }

func TestLiveOddsPopulatesCacheAndFiresEvent(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	var mu sync.Mutex
	var updates []DataUpdate
	p.Subscribe(eventbus.TopicDataUpdated, func(payload interface{}) {
		mu.Lock()
		updates = append(updates, payload.(DataUpdate))
		mu.Unlock()
	})

	odds, err := p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", odds.EventID)

	// Cached under odds:<event>:all; a repeat read does not refetch.
	_, err = p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), f.oddsHits.Load())

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, updates, 1)
	assert.Equal(t, "odds", updates[0].Type)
	assert.Equal(t, "evt-1", updates[0].ID)
}

func TestOddsBusCarriesOddsOnly(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	var mu sync.Mutex
	var oddsUpdates []OddsUpdate
	p.SubscribeOdds(func(payload interface{}) {
		mu.Lock()
		oddsUpdates = append(oddsUpdates, payload.(OddsUpdate))
		mu.Unlock()
	})

	_, err := p.GetLiveOdds("evt-1", "h2h")
	require.NoError(t, err)
	_, err = p.GetWeatherData("ven-1")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, oddsUpdates, 1, "weather must not reach the odds bus")
	assert.Equal(t, "evt-1", oddsUpdates[0].EventID)
	assert.Equal(t, "h2h", oddsUpdates[0].Market)
}

func TestRateLimitRejectsThirdReadInWindow(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, &config.ProvidersConfig{
		Limits: []config.ProviderLimit{
			{Endpoint: "odds:live", Limit: 2, Period: time.Hour},
		},
	})

	_, err := p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)
	_, err = p.GetLiveOdds("evt-2", "")
	require.NoError(t, err)

	_, err = p.GetLiveOdds("evt-3", "")
	var rle *RateLimitError
	require.ErrorAs(t, err, &rle)
	assert.Equal(t, "odds:live", rle.Endpoint)

	// Only the two budgeted requests reached the upstream.
	assert.Equal(t, int64(2), f.oddsHits.Load())
}

func TestCacheHitSkipsRateLimit(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, &config.ProvidersConfig{
		Limits: []config.ProviderLimit{
			{Endpoint: "odds:live", Limit: 1, Period: time.Hour},
		},
	})

	_, err := p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)

	// Budget is exhausted, but the cached board still serves.
	odds, err := p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", odds.EventID)
}

func TestConcurrentMissesBothFetch(t *testing.T) {
	f := newFakeUpstreams()
	f.gameDelay = 30 * time.Millisecond
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	// Two reads for the same key racing ahead of the first cache
	// write: no single-flight collapse exists, both fetch upstream.
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := p.GetGameData("gm-1")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(2), f.gameHits.Load())
}

func TestUpstreamErrorSurfacesToCaller(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	f.failOdds.Store(true)
	_, err := p.GetLiveOdds("evt-1", "")
	require.Error(t, err)

	// Failure is terminal for that read; nothing was cached, so a
	// later read retries from scratch.
	f.failOdds.Store(false)
	odds, err := p.GetLiveOdds("evt-1", "")
	require.NoError(t, err)
	assert.Equal(t, "evt-1", odds.EventID)
	assert.Equal(t, int64(2), f.oddsHits.Load())
}

func TestConnectionProbeRecordsAllSources(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	status := p.GetConnectionStatus()
	require.Len(t, status, 5)
	for source, up := range status {
		assert.True(t, up, "source %s should be reachable", source)
	}
}

func TestProbeFailureDoesNotGateFetches(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()

	cfg := f.config()
	brokenSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	brokenSrv.Close() // unreachable from the start
	cfg.SportsDataBaseURL = brokenSrv.URL

	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	p := New(cfg, nil, logger)

	status := p.GetConnectionStatus()
	assert.False(t, status["sportsdata"])

	// Probe status is informational; odds still fetch normally.
	_, err := p.GetLiveOdds("evt-1", "")
	assert.NoError(t, err)
}

func TestRefreshAllData(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	p.TrackSport("nba")
	p.TrackLiveGame("evt-1")

	var mu sync.Mutex
	events := map[string]int{}
	for _, topic := range []string{
		eventbus.TopicRefreshStarted,
		eventbus.TopicRefreshCompleted,
		eventbus.TopicCacheCleared,
	} {
		topic := topic
		p.Subscribe(topic, func(interface{}) {
			mu.Lock()
			events[topic]++
			mu.Unlock()
		})
	}

	require.NoError(t, p.RefreshAllData())

	assert.Equal(t, int64(1), f.projHits.Load())
	assert.Equal(t, int64(1), f.injuryHits.Load())
	assert.Equal(t, int64(1), f.oddsHits.Load())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, events[eventbus.TopicRefreshStarted])
	assert.Equal(t, 1, events[eventbus.TopicRefreshCompleted])
	assert.Equal(t, 1, events[eventbus.TopicCacheCleared])
}

func TestRefreshAllDataAggregatesFailures(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	p.TrackLiveGame("evt-1")
	f.failOdds.Store(true)

	failed := false
	p.Subscribe(eventbus.TopicRefreshFailed, func(interface{}) { failed = true })

	err := p.RefreshAllData()
	require.Error(t, err)
	assert.True(t, failed)

	// Projections still refreshed despite the odds failure.
	assert.Equal(t, int64(1), f.projHits.Load())
}

func TestShutdown(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	sched := &fakeScheduler{}
	p.SetScheduler(sched)

	_, err := p.GetWeatherData("ven-1")
	require.NoError(t, err)
	require.Equal(t, 1, p.GetCacheStats().Cache.Size)

	shutdownFired := false
	p.Subscribe(eventbus.TopicShutdown, func(interface{}) { shutdownFired = true })

	p.Shutdown()

	assert.True(t, sched.stopped.Load())
	assert.Equal(t, 0, p.GetCacheStats().Cache.Size)
	assert.Empty(t, p.GetConnectionStatus())
	assert.True(t, shutdownFired)

	// Manual reads still work, cold-starting from the empty cache.
	_, err = p.GetWeatherData("ven-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), f.weatherHits.Load())

	// Second shutdown is a no-op.
	p.Shutdown()
}

func TestStreamErrorEvent(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	var got ErrorEvent
	p.Subscribe(eventbus.TopicError, func(payload interface{}) {
		got = payload.(ErrorEvent)
	})

	p.ReportStreamError("odds_refresh", assert.AnError)

	assert.Equal(t, "stream", got.Type)
	assert.Equal(t, "odds_refresh", got.Context)
	assert.ErrorIs(t, got.Err, assert.AnError)
}

func TestCacheStatsTracksHitRate(t *testing.T) {
	f := newFakeUpstreams()
	defer f.Close()
	p := newTestPipeline(t, f, nil)

	_, err := p.GetPlayerData("pl-1")
	require.NoError(t, err)
	_, err = p.GetPlayerData("pl-1")
	require.NoError(t, err)

	stats := p.GetCacheStats()
	assert.Equal(t, int64(1), stats.Cache.Hits)
	assert.Equal(t, int64(1), stats.Cache.Misses)
	assert.Equal(t, 0, stats.QueueDepth)
}
