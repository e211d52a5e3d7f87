package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/ratelimit"
	pkgcache "StockPulse/pkg/cache"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

// SeriesInput is a caller's series request before planning.
type SeriesInput struct {
	Symbol     string
	Range      string
	Interval   string
	Period1    string
	Period2    string
	OutputSize string
}

// SeriesOption configures SeriesService.
type SeriesOption func(*SeriesService)

// WithSeriesCache caches successful results for ttl.
func WithSeriesCache(c drepo.SeriesCache, ttl time.Duration) SeriesOption {
	return func(s *SeriesService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithPointHistory appends every successful result to h.
func WithPointHistory(h drepo.PointHistory) SeriesOption {
	return func(s *SeriesService) { s.history = h }
}

// WithAlertPublisher sends rising edges to p.
func WithAlertPublisher(p drepo.AlertPublisher) SeriesOption {
	return func(s *SeriesService) { s.publisher = p }
}

// WithMetrics records fetch outcomes and alert triggers.
func WithMetrics(m drepo.Metrics) SeriesOption {
	return func(s *SeriesService) { s.metrics = m }
}

// WithProviderLimiter bounds upstream calls per provider.
func WithProviderLimiter(l *ratelimit.Limiter) SeriesOption {
	return func(s *SeriesService) { s.limiter = l }
}

// SeriesService fetches a series through the configured provider and runs alert evaluation
// on every successful fetch, before the updated alerts are persisted.
type SeriesService struct {
	provider  drepo.SeriesProvider
	alerts    drepo.AlertRepository
	cache     drepo.SeriesCache
	cacheTTL  time.Duration
	history   drepo.PointHistory
	publisher drepo.AlertPublisher
	metrics   drepo.Metrics
	limiter   *ratelimit.Limiter
	logger    *applogger.Logger
	now       func() time.Time

	mu       sync.RWMutex
	lastGood map[string]*models.SeriesResult
}

func NewSeriesService(provider drepo.SeriesProvider, alerts drepo.AlertRepository, logger *applogger.Logger, opts ...SeriesOption) *SeriesService {
	s := &SeriesService{
		provider: provider,
		alerts:   alerts,
		metrics:  nopMetrics{},
		logger:   logger,
		now:      time.Now,
		lastGood: make(map[string]*models.SeriesResult),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProviderName is the upstream's display name.
func (s *SeriesService) ProviderName() string {
	return s.provider.Name()
}

// BuildQuery resolves the window for in. Explicit period1/period2 win over the range label;
// either way intraday windows are clamped to MaxIntradayDays.
func (s *SeriesService) BuildQuery(in SeriesInput) (drepo.SeriesQuery, error) {
	symbol := models.NormalizeSymbol(in.Symbol)
	if symbol == "" {
		return drepo.SeriesQuery{}, domain.NewValidationError("symbol", "Missing required query param: symbol")
	}

	now := s.now().UTC()
	if in.Period1 == "" && in.Period2 == "" {
		plan := PlanFetch(symbol, in.Range, in.Interval, now)
		return drepo.SeriesQuery{
			Symbol:      plan.Symbol,
			Interval:    plan.QueryInterval,
			PeriodStart: plan.PeriodStart,
			PeriodEnd:   plan.PeriodEnd,
			OutputSize:  in.OutputSize,
			Note:        plan.Note,
		}, nil
	}

	interval := strings.TrimSpace(in.Interval)
	if interval == "" {
		interval = DefaultInterval
	}

	end := now
	if in.Period2 != "" {
		t, ok := util.ParseTime(in.Period2)
		if !ok {
			return drepo.SeriesQuery{}, domain.NewValidationError("period2", "period2 must be a unix timestamp or a date.")
		}
		end = t.UTC()
	}
	start := end.Add(-time.Duration(RangeDays(in.Range)) * 24 * time.Hour)
	if in.Period1 != "" {
		t, ok := util.ParseTime(in.Period1)
		if !ok {
			return drepo.SeriesQuery{}, domain.NewValidationError("period1", "period1 must be a unix timestamp or a date.")
		}
		start = t.UTC()
	}
	if !start.Before(end) {
		return drepo.SeriesQuery{}, domain.NewValidationError("period1", "period1 must be before period2.")
	}

	q := drepo.SeriesQuery{
		Symbol:      symbol,
		Interval:    interval,
		PeriodStart: start,
		PeriodEnd:   end,
		OutputSize:  in.OutputSize,
		Explicit:    true,
	}
	limit := time.Duration(MaxIntradayDays) * 24 * time.Hour
	if models.IsIntraday(interval) && end.Sub(start) > limit {
		requested := int(end.Sub(start).Hours() / 24)
		q.PeriodStart = end.Add(-limit)
		q.Note = fmt.Sprintf("Intraday interval %s is limited to %d days; range clamped from %d days.",
			interval, MaxIntradayDays, requested)
	}
	return q, nil
}

// Fetch returns the series for q. A result without points is reported as domain.ErrNoData.
func (s *SeriesService) Fetch(ctx context.Context, q drepo.SeriesQuery) (*models.SeriesResult, error) {
	key := s.cacheKey(q)
	if s.cache != nil {
		if res, ok := s.cache.Get(ctx, key); ok {
			// alerts added or reset since the entry was cached still need this price
			s.evaluateAlerts(ctx, res)
			return res, nil
		}
	}

	provider := s.provider.Name()
	if !s.limiter.Allow(provider) {
		s.metrics.RecordFetch(provider, string(models.OutcomeError))
		s.metrics.RecordError("provider_budget")
		return nil, domain.NewProviderError(provider, domain.ErrRateLimited, "Too many upstream requests. Try again shortly.")
	}

	start := time.Now()
	res, err := s.provider.FetchSeries(ctx, q)
	s.metrics.RecordLatency("fetch_series", time.Since(start).Seconds())

	outcome := ClassifyOutcome(q.Symbol, res, err)
	s.metrics.RecordFetch(provider, string(outcome.Kind))

	switch outcome.Kind {
	case models.OutcomeError:
		s.metrics.RecordError(errorKind(err))
		s.logger.Warn("Series fetch failed",
			applogger.String("symbol", q.Symbol),
			applogger.String("provider", provider),
			applogger.Error(err),
		)
		return nil, err
	case models.OutcomeEmpty:
		if err == nil {
			err = domain.NewProviderError(provider, domain.ErrNoData, outcome.Message)
		}
		return res, err
	}

	if res.Meta != nil && res.Meta.Note == "" {
		res.Meta.Note = q.Note
	}

	s.evaluateAlerts(ctx, res)
	s.metrics.RecordLastPrice(res.Symbol, res.Latest.ClosePrice())

	if s.cache != nil {
		s.cache.Set(ctx, key, res, s.cacheTTL)
	}
	if s.history != nil {
		if err := s.history.Append(ctx, res); err != nil {
			s.metrics.RecordError("history")
			s.logger.Warn("Point history append failed", applogger.String("symbol", res.Symbol), applogger.Error(err))
		}
	}

	s.mu.Lock()
	s.lastGood[res.Symbol] = res
	s.mu.Unlock()
	return res, nil
}

// LastGood returns the most recent successful result for symbol, if any.
func (s *SeriesService) LastGood(symbol string) (*models.SeriesResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.lastGood[models.NormalizeSymbol(symbol)]
	return res, ok
}

// evaluateAlerts applies the latest point to stored alerts and publishes rising edges.
// Failures are logged; they never fail the fetch.
func (s *SeriesService) evaluateAlerts(ctx context.Context, res *models.SeriesResult) {
	now := s.now().UTC()
	prev, next, err := s.alerts.Apply(ctx, func(as models.Alerts) models.Alerts {
		return EvaluateAlerts(as, res.Latest, res.Symbol, now)
	})
	if err != nil {
		s.metrics.RecordError("alerts")
		s.logger.Error("Alert evaluation not saved", applogger.String("symbol", res.Symbol), applogger.Error(err))
		return
	}

	edges := RisingEdges(prev, next)
	if len(edges) == 0 {
		return
	}
	events := make([]models.AlertEvent, 0, len(edges))
	for _, a := range edges {
		s.metrics.RecordAlertTriggered(a.Symbol, string(a.Condition))
		s.logger.Info("Alert triggered",
			applogger.String("id", a.ID),
			applogger.String("symbol", a.Symbol),
			applogger.String("condition", string(a.Condition)),
			applogger.Float64("target", a.Target),
			applogger.Float64("price", res.Latest.ClosePrice()),
		)
		events = append(events, models.AlertEvent{Type: models.AlertTriggeredEvent, Alert: a, At: now})
	}
	if s.publisher != nil {
		if err := s.publisher.PublishTriggered(ctx, events); err != nil {
			s.metrics.RecordError("publish")
		}
	}
}

func (s *SeriesService) cacheKey(q drepo.SeriesQuery) string {
	window := fmt.Sprintf("%dd", int(q.PeriodEnd.Sub(q.PeriodStart).Round(time.Hour).Hours()/24))
	if q.Explicit {
		window = fmt.Sprintf("%d-%d", q.PeriodStart.Unix(), q.PeriodEnd.Unix())
	}
	return pkgcache.GenerateKeyWithParams("series", s.provider.Name(), q.Symbol, q.Interval, window, q.OutputSize)
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, domain.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, domain.ErrProviderRejected):
		return "rejected"
	case errors.Is(err, domain.ErrMalformedPayload):
		return "malformed"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "upstream"
	default:
		return "unknown"
	}
}

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, string)          {}
func (nopMetrics) RecordError(string)                  {}
func (nopMetrics) RecordLastPrice(string, float64)     {}
func (nopMetrics) RecordAlertTriggered(string, string) {}
func (nopMetrics) RecordLatency(string, float64)       {}
