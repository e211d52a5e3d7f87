package usecase

import (
	"context"
	"time"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

const refreshLockKey = "stockpulse:refresh"

// RefreshConfig selects the window the background refresh fetches.
type RefreshConfig struct {
	Range    string
	Interval string
	LockTTL  time.Duration
}

// RefreshReport summarizes one refresh run.
type RefreshReport struct {
	Skipped   bool     `json:"skipped"`
	Symbols   []string `json:"symbols"`
	Succeeded int      `json:"succeeded"`
	Empty     int      `json:"empty"`
	Failed    int      `json:"failed"`
}

// RefreshJob fetches every watched symbol so alerts are evaluated without a client polling.
type RefreshJob struct {
	series    *SeriesService
	watchlist drepo.WatchlistRepository
	alerts    drepo.AlertRepository
	locker    drepo.Locker
	cfg       RefreshConfig
	logger    *applogger.Logger
}

func NewRefreshJob(series *SeriesService, watchlist drepo.WatchlistRepository, alerts drepo.AlertRepository,
	locker drepo.Locker, cfg RefreshConfig, logger *applogger.Logger) *RefreshJob {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 4 * time.Minute
	}
	return &RefreshJob{series: series, watchlist: watchlist, alerts: alerts, locker: locker, cfg: cfg, logger: logger}
}

// Symbols is the watchlist followed by alert symbols not already on it.
func (j *RefreshJob) Symbols(ctx context.Context) []string {
	var out models.Watchlist
	wl, err := j.watchlist.List(ctx)
	if err != nil {
		j.logger.Warn("Refresh could not read watchlist", applogger.Error(err))
	}
	for _, s := range wl {
		out = out.Add(s)
	}
	alerts, err := j.alerts.List(ctx)
	if err != nil {
		j.logger.Warn("Refresh could not read alerts", applogger.Error(err))
	}
	for _, s := range alerts.WatchingSymbols() {
		out = out.Add(s)
	}
	return out
}

// Run refreshes all symbols once. Overlapping runs are skipped when a Locker is set.
func (j *RefreshJob) Run(ctx context.Context) (RefreshReport, error) {
	if j.locker != nil {
		ok, err := j.locker.TryLock(ctx, refreshLockKey, j.cfg.LockTTL)
		if err != nil {
			return RefreshReport{}, err
		}
		if !ok {
			j.logger.Info("Refresh already running, skipping")
			return RefreshReport{Skipped: true}, nil
		}
		defer func() {
			if err := j.locker.Unlock(context.WithoutCancel(ctx), refreshLockKey); err != nil {
				j.logger.Warn("Refresh unlock failed", applogger.Error(err))
			}
		}()
	}

	start := time.Now()
	report := RefreshReport{Symbols: j.Symbols(ctx)}
	for _, sym := range report.Symbols {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		q, err := j.series.BuildQuery(SeriesInput{Symbol: sym, Range: j.cfg.Range, Interval: j.cfg.Interval})
		if err != nil {
			report.Failed++
			continue
		}
		res, err := j.series.Fetch(ctx, q)
		switch ClassifyOutcome(q.Symbol, res, err).Kind {
		case models.OutcomeSuccess:
			report.Succeeded++
		case models.OutcomeEmpty:
			report.Empty++
		default:
			report.Failed++
		}
	}

	j.logger.Info("Refresh finished",
		applogger.Int("symbols", len(report.Symbols)),
		applogger.Int("succeeded", report.Succeeded),
		applogger.Int("empty", report.Empty),
		applogger.Int("failed", report.Failed),
		applogger.Duration("took", time.Since(start)),
	)
	return report, nil
}
