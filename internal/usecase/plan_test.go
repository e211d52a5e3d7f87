package usecase

import (
	"errors"
	"testing"
	"time"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
)

var planNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestRangeDays(t *testing.T) {
	cases := map[string]int{
		"1D": 1, "5D": 5, "1M": 30, "3M": 90, "6M": 180, "1Y": 365, "5Y": 1825,
		"1y": 365, "": DefaultRangeDays, "10Y": DefaultRangeDays, "MAX": DefaultRangeDays,
	}
	for label, want := range cases {
		assert.Equal(t, want, RangeDays(label), "label %q", label)
	}
}

func TestPlanFetchClampsIntraday(t *testing.T) {
	plan := PlanFetch("AAPL", "1Y", "5m", planNow)

	assert.True(t, plan.Intraday)
	assert.True(t, plan.Clamped)
	assert.Equal(t, 365, plan.RequestedDays)
	assert.Equal(t, 30, plan.Days)
	assert.NotEmpty(t, plan.Note)
	assert.Equal(t, planNow, plan.PeriodEnd)
	assert.Equal(t, 30*24*time.Hour, plan.PeriodEnd.Sub(plan.PeriodStart))
}

func TestPlanFetchDailyNotClamped(t *testing.T) {
	plan := PlanFetch("AAPL", "1Y", "1d", planNow)

	assert.False(t, plan.Intraday)
	assert.False(t, plan.Clamped)
	assert.Equal(t, 365, plan.Days)
	assert.Empty(t, plan.Note)
	assert.Equal(t, 365*24*time.Hour, plan.PeriodEnd.Sub(plan.PeriodStart))
}

func TestPlanFetchShortIntradayNotClamped(t *testing.T) {
	plan := PlanFetch("aapl", "5D", "1h", planNow)

	assert.Equal(t, "AAPL", plan.Symbol)
	assert.True(t, plan.Intraday)
	assert.False(t, plan.Clamped)
	assert.Equal(t, 5, plan.Days)
	assert.Empty(t, plan.Note)
}

func TestPlanFetchDefaults(t *testing.T) {
	plan := PlanFetch("AAPL", "bogus", "", planNow)

	assert.Equal(t, DefaultInterval, plan.QueryInterval)
	assert.Equal(t, DefaultRangeDays, plan.Days)
}

func TestPlanFetchMonthlyIsNotIntraday(t *testing.T) {
	plan := PlanFetch("AAPL", "5Y", "1mo", planNow)
	assert.False(t, plan.Intraday)
	assert.Equal(t, 1825, plan.Days)
}

func TestClassifyOutcome(t *testing.T) {
	ok := models.NewSeriesResult("AAPL", "Alpha Vantage", []models.CanonicalPoint{{Date: "2025-01-02", Close: models.Float(1)}}, nil)
	empty := models.NewSeriesResult("AAPL", "Alpha Vantage", nil, nil)

	out := ClassifyOutcome("AAPL", ok, nil)
	assert.Equal(t, models.OutcomeSuccess, out.Kind)
	assert.Equal(t, "Live data loaded from Alpha Vantage.", out.Message)

	out = ClassifyOutcome("AAPL", empty, nil)
	assert.Equal(t, models.OutcomeEmpty, out.Kind)
	assert.Contains(t, out.Message, "AAPL")

	out = ClassifyOutcome("AAPL", nil, domain.NewProviderError("Yahoo Finance", domain.ErrNoData, "delisted"))
	assert.Equal(t, models.OutcomeEmpty, out.Kind)

	out = ClassifyOutcome("AAPL", nil, domain.NewProviderError("Alpha Vantage", domain.ErrRateLimited, "slow down"))
	assert.Equal(t, models.OutcomeError, out.Kind)
	assert.Equal(t, "slow down", out.Message)

	out = ClassifyOutcome("AAPL", nil, errors.Join(domain.ErrUpstreamUnavailable, errors.New("eof")))
	assert.Equal(t, "Network error while loading stock data.", out.Message)

	out = ClassifyOutcome("AAPL", nil, errors.New("boom"))
	assert.Equal(t, "Failed to fetch stock data.", out.Message)
}
