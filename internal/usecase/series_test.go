package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/repository"
	"StockPulse/internal/service/ratelimit"
	pkgcache "StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
)

var fetchNow = time.Date(2025, 1, 10, 16, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu      sync.Mutex
	calls   int
	queries []drepo.SeriesQuery
	closes  []float64
	err     error
}

func (p *fakeProvider) Name() string { return "Fake" }

func (p *fakeProvider) FetchSeries(_ context.Context, q drepo.SeriesQuery) (*models.SeriesResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	p.queries = append(p.queries, q)
	if p.err != nil {
		return nil, p.err
	}
	points := make([]models.CanonicalPoint, len(p.closes))
	for i, c := range p.closes {
		points[i] = models.CanonicalPoint{Date: sampleDates[i], Close: models.Float(c)}
	}
	return models.NewSeriesResult(q.Symbol, p.Name(), points, q.Meta()), nil
}

type recordingPublisher struct {
	events []models.AlertEvent
}

func (r *recordingPublisher) PublishTriggered(_ context.Context, evs []models.AlertEvent) error {
	r.events = append(r.events, evs...)
	return nil
}

type recordingMetrics struct {
	nopMetrics
	fetches   map[string]int
	triggered int
	errs      []string
}

func (m *recordingMetrics) RecordFetch(_, outcome string) {
	if m.fetches == nil {
		m.fetches = map[string]int{}
	}
	m.fetches[outcome]++
}
func (m *recordingMetrics) RecordError(kind string)             { m.errs = append(m.errs, kind) }
func (m *recordingMetrics) RecordAlertTriggered(string, string) { m.triggered++ }

type memHistory struct {
	appended []*models.SeriesResult
}

func (h *memHistory) Append(_ context.Context, res *models.SeriesResult) error {
	h.appended = append(h.appended, res)
	return nil
}

func (h *memHistory) Query(context.Context, string, string, int) ([]models.CanonicalPoint, error) {
	return nil, nil
}

func newAlerts() *repository.AlertStore {
	return repository.NewAlertStore(repository.NewCacheKV(pkgcache.NewMemoryCache(), "test"), applogger.Nop())
}

func newSeries(p drepo.SeriesProvider, alerts drepo.AlertRepository, opts ...SeriesOption) *SeriesService {
	s := NewSeriesService(p, alerts, applogger.Nop(), opts...)
	s.now = func() time.Time { return fetchNow }
	return s
}

func TestBuildQueryPlansFromRange(t *testing.T) {
	s := newSeries(&fakeProvider{}, newAlerts())

	q, err := s.BuildQuery(SeriesInput{Symbol: " aapl ", Range: "1Y", Interval: "5m"})
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.False(t, q.Explicit)
	assert.Equal(t, fetchNow, q.PeriodEnd)
	assert.Equal(t, 30*24*time.Hour, q.PeriodEnd.Sub(q.PeriodStart))
	assert.NotEmpty(t, q.Note)
}

func TestBuildQueryExplicitWindow(t *testing.T) {
	s := newSeries(&fakeProvider{}, newAlerts())

	q, err := s.BuildQuery(SeriesInput{Symbol: "AAPL", Period1: "2024-12-01", Period2: "1735776000"})
	require.NoError(t, err)
	assert.True(t, q.Explicit)
	assert.Equal(t, "1d", q.Interval)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), q.PeriodStart)
	assert.Equal(t, time.Unix(1735776000, 0).UTC(), q.PeriodEnd)
	assert.Empty(t, q.Note)
}

func TestBuildQueryExplicitIntradayIsClamped(t *testing.T) {
	s := newSeries(&fakeProvider{}, newAlerts())

	q, err := s.BuildQuery(SeriesInput{Symbol: "AAPL", Interval: "15m", Period1: "2024-01-01", Period2: "2025-01-01"})
	require.NoError(t, err)
	assert.Equal(t, 30*24*time.Hour, q.PeriodEnd.Sub(q.PeriodStart))
	assert.Contains(t, q.Note, "clamped")
}

func TestBuildQueryRejectsBadInput(t *testing.T) {
	s := newSeries(&fakeProvider{}, newAlerts())

	cases := map[string]SeriesInput{
		"no symbol":      {Symbol: "  "},
		"bad period1":    {Symbol: "AAPL", Period1: "yesterday"},
		"bad period2":    {Symbol: "AAPL", Period2: "soon"},
		"inverted range": {Symbol: "AAPL", Period1: "2025-01-05", Period2: "2025-01-01"},
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.BuildQuery(in)
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestFetchEvaluatesAlertsAndPublishesRisingEdges(t *testing.T) {
	ctx := context.Background()
	alerts := newAlerts()
	above, err := alerts.Add(ctx, "AAPL", models.ConditionAbove, 190)
	require.NoError(t, err)
	_, err = alerts.Add(ctx, "AAPL", models.ConditionBelow, 150)
	require.NoError(t, err)
	_, err = alerts.Add(ctx, "MSFT", models.ConditionAbove, 1)
	require.NoError(t, err)

	pub := &recordingPublisher{}
	m := &recordingMetrics{}
	hist := &memHistory{}
	p := &fakeProvider{closes: []float64{186.21, 194.4}}
	s := newSeries(p, alerts, WithAlertPublisher(pub), WithMetrics(m), WithPointHistory(hist))

	q, err := s.BuildQuery(SeriesInput{Symbol: "AAPL", Range: "1M"})
	require.NoError(t, err)
	res, err := s.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 194.4, res.Latest.ClosePrice())

	require.Len(t, pub.events, 1)
	assert.Equal(t, models.AlertTriggeredEvent, pub.events[0].Type)
	assert.Equal(t, above.ID, pub.events[0].Alert.ID)
	assert.Equal(t, fetchNow, pub.events[0].At)
	assert.Equal(t, 1, m.triggered)
	assert.Equal(t, 1, m.fetches["success"])
	assert.Len(t, hist.appended, 1)

	stored, err := alerts.List(ctx)
	require.NoError(t, err)
	for _, a := range stored {
		switch a.Symbol {
		case "AAPL":
			require.NotNil(t, a.LastChecked)
			assert.Equal(t, 194.4, *a.LastPrice)
			assert.Equal(t, a.ID == above.ID, a.Triggered)
		case "MSFT":
			assert.Nil(t, a.LastChecked)
			assert.False(t, a.Triggered)
		}
	}

	// still above target: no second event
	_, err = s.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestFetchEmptyIsNoData(t *testing.T) {
	m := &recordingMetrics{}
	s := newSeries(&fakeProvider{}, newAlerts(), WithMetrics(m))

	q, err := s.BuildQuery(SeriesInput{Symbol: "ZZZZ"})
	require.NoError(t, err)
	_, err = s.Fetch(context.Background(), q)
	require.ErrorIs(t, err, domain.ErrNoData)
	assert.Equal(t, "No data returned for ZZZZ in the selected range.", ErrorMessage(err))
	assert.Equal(t, 1, m.fetches["empty"])

	_, ok := s.LastGood("ZZZZ")
	assert.False(t, ok)
}

func TestFetchErrorLeavesAlertsUntouched(t *testing.T) {
	ctx := context.Background()
	alerts := newAlerts()
	_, err := alerts.Add(ctx, "AAPL", models.ConditionAbove, 1)
	require.NoError(t, err)

	m := &recordingMetrics{}
	upstream := domain.NewProviderError("Fake", domain.ErrUpstreamUnavailable, "Fake request failed")
	s := newSeries(&fakeProvider{err: upstream}, alerts, WithMetrics(m))

	q, _ := s.BuildQuery(SeriesInput{Symbol: "AAPL"})
	_, err = s.Fetch(ctx, q)
	require.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	assert.Equal(t, []string{"upstream"}, m.errs)

	stored, _ := alerts.List(ctx)
	assert.Nil(t, stored[0].LastChecked)
	assert.False(t, stored[0].Triggered)
}

func TestFetchUsesCache(t *testing.T) {
	p := &fakeProvider{closes: []float64{1, 2}}
	cache := repository.NewSeriesCache(pkgcache.NewMemoryCache(), applogger.Nop())
	s := newSeries(p, newAlerts(), WithSeriesCache(cache, time.Minute))

	q, _ := s.BuildQuery(SeriesInput{Symbol: "AAPL"})
	_, err := s.Fetch(context.Background(), q)
	require.NoError(t, err)
	res, err := s.Fetch(context.Background(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 2.0, res.Latest.ClosePrice())
}

func TestFetchCacheHitEvaluatesNewAlerts(t *testing.T) {
	ctx := context.Background()
	p := &fakeProvider{closes: []float64{150, 160}}
	alerts := newAlerts()
	pub := &recordingPublisher{}
	cache := repository.NewSeriesCache(pkgcache.NewMemoryCache(), applogger.Nop())
	s := newSeries(p, alerts, WithSeriesCache(cache, time.Minute), WithAlertPublisher(pub))

	q, _ := s.BuildQuery(SeriesInput{Symbol: "TSLA"})
	_, err := s.Fetch(ctx, q)
	require.NoError(t, err)

	a, err := alerts.Add(ctx, "TSLA", models.ConditionAbove, 100)
	require.NoError(t, err)

	res, err := s.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 160.0, res.Latest.ClosePrice())

	list, err := alerts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)
	assert.True(t, list[0].Triggered)
	assert.NotNil(t, list[0].LastChecked)
	require.Len(t, pub.events, 1)

	// a second hit is not a new rising edge
	_, err = s.Fetch(ctx, q)
	require.NoError(t, err)
	assert.Len(t, pub.events, 1)
}

func TestFetchProviderBudget(t *testing.T) {
	p := &fakeProvider{closes: []float64{1}}
	s := newSeries(p, newAlerts(), WithProviderLimiter(ratelimit.New(1, 0)))

	q, _ := s.BuildQuery(SeriesInput{Symbol: "AAPL"})
	_, err := s.Fetch(context.Background(), q)
	require.NoError(t, err)
	_, err = s.Fetch(context.Background(), q)
	require.ErrorIs(t, err, domain.ErrRateLimited)
	assert.Equal(t, 1, p.calls)
}

type failingAlerts struct{ drepo.AlertRepository }

func (failingAlerts) Apply(context.Context, func(models.Alerts) models.Alerts) (models.Alerts, models.Alerts, error) {
	return nil, nil, errors.New("store offline")
}

func TestFetchSurvivesAlertStoreFailure(t *testing.T) {
	m := &recordingMetrics{}
	s := newSeries(&fakeProvider{closes: []float64{5}}, failingAlerts{}, WithMetrics(m))

	q, _ := s.BuildQuery(SeriesInput{Symbol: "AAPL"})
	res, err := s.Fetch(context.Background(), q)
	require.NoError(t, err)
	assert.NotNil(t, res)
	assert.Contains(t, m.errs, "alerts")

	last, ok := s.LastGood("aapl")
	require.True(t, ok)
	assert.Same(t, res, last)
}
