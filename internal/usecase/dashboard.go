package usecase

import (
	"context"
	"errors"
	"fmt"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	applogger "StockPulse/pkg/logger"
)

// SampleSource labels the built-in fallback series.
const SampleSource = "Sample data"

var (
	sampleDates  = []string{"2025-01-02", "2025-01-03", "2025-01-04", "2025-01-05", "2025-01-06", "2025-01-07", "2025-01-08", "2025-01-09", "2025-01-10"}
	sampleCloses = []float64{186.21, 188.9, 187.45, 189.32, 190.11, 191.98, 190.42, 193.7, 194.4}
)

// SampleSeries is shown when a symbol has never loaded successfully.
func SampleSeries(symbol string) *models.SeriesResult {
	points := make([]models.CanonicalPoint, len(sampleDates))
	for i, d := range sampleDates {
		points[i] = models.CanonicalPoint{Date: d, Close: models.Float(sampleCloses[i])}
	}
	return models.NewSeriesResult(models.NormalizeSymbol(symbol), SampleSource, points, &models.SeriesMeta{Interval: DefaultInterval})
}

// LoadingMessage is what a client shows while provider is queried.
func LoadingMessage(provider string) string {
	return fmt.Sprintf("Fetching %s data...", provider)
}

// Dashboard builds the per-symbol view: live series when available, otherwise the last
// good series or the sample, with the classified message and the symbol's alerts.
type Dashboard struct {
	series *SeriesService
	alerts drepo.AlertRepository
	logger *applogger.Logger
}

func NewDashboard(series *SeriesService, alerts drepo.AlertRepository, logger *applogger.Logger) *Dashboard {
	return &Dashboard{series: series, alerts: alerts, logger: logger}
}

// Plan describes the query a fetch for in would run.
func (d *Dashboard) Plan(in SeriesInput) (models.PlanView, error) {
	q, err := d.series.BuildQuery(in)
	if err != nil {
		return models.PlanView{}, err
	}
	requested := RangeDays(in.Range)
	days := int(q.PeriodEnd.Sub(q.PeriodStart).Hours() / 24)
	return models.PlanView{
		FetchPlan: models.FetchPlan{
			Symbol:        q.Symbol,
			QueryInterval: q.Interval,
			RequestedDays: requested,
			Days:          days,
			Intraday:      models.IsIntraday(q.Interval),
			Clamped:       q.Note != "",
			Note:          q.Note,
			PeriodStart:   q.PeriodStart,
			PeriodEnd:     q.PeriodEnd,
		},
		Provider:       d.series.ProviderName(),
		LoadingMessage: LoadingMessage(d.series.ProviderName()),
	}, nil
}

// View fetches in and renders the result. Only invalid input is returned as an error.
func (d *Dashboard) View(ctx context.Context, in SeriesInput) (*models.SeriesView, error) {
	q, err := d.series.BuildQuery(in)
	if err != nil {
		return nil, err
	}

	res, err := d.series.Fetch(ctx, q)
	outcome := ClassifyOutcome(q.Symbol, res, err)
	view := &models.SeriesView{
		Symbol:  q.Symbol,
		Status:  outcome.Status(),
		Outcome: outcome.Kind,
		Message: outcome.Message,
		Series:  res,
	}

	if outcome.Kind != models.OutcomeSuccess {
		view.Fallback = true
		if last, ok := d.series.LastGood(q.Symbol); ok {
			view.Series = last
		} else {
			view.Series = SampleSeries(q.Symbol)
		}
	}
	view.Change = models.SeriesChange(view.Series.Points)

	alerts, err := d.alerts.List(ctx)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		d.logger.Warn("Alerts unavailable for dashboard", applogger.String("symbol", q.Symbol), applogger.Error(err))
	}
	view.Alerts = alerts.ForSymbol(q.Symbol)
	if view.Alerts == nil {
		view.Alerts = models.Alerts{}
	}
	return view, nil
}
