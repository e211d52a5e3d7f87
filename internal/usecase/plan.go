package usecase

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
)

const (
	// DefaultRangeDays applies to unknown range labels.
	DefaultRangeDays = 30
	// MaxIntradayDays caps intraday windows.
	MaxIntradayDays = 30
	// DefaultInterval is used when the caller sends none.
	DefaultInterval = "1d"
)

var rangeDays = map[string]int{
	"1D": 1,
	"5D": 5,
	"1M": 30,
	"3M": 90,
	"6M": 180,
	"1Y": 365,
	"5Y": 1825,
}

// RangeDays maps a range label to a day count, falling back to DefaultRangeDays.
func RangeDays(label string) int {
	if d, ok := rangeDays[strings.ToUpper(strings.TrimSpace(label))]; ok {
		return d
	}
	return DefaultRangeDays
}

// PlanFetch turns a range and interval into a concrete query window.
// Intraday intervals never span more than MaxIntradayDays.
func PlanFetch(symbol, rangeLabel, intervalLabel string, now time.Time) models.FetchPlan {
	interval := strings.TrimSpace(intervalLabel)
	if interval == "" {
		interval = DefaultInterval
	}

	requested := RangeDays(rangeLabel)
	days := requested
	intraday := models.IsIntraday(interval)

	plan := models.FetchPlan{
		Symbol:        models.NormalizeSymbol(symbol),
		QueryInterval: interval,
		RequestedDays: requested,
		Intraday:      intraday,
	}
	if intraday && days > MaxIntradayDays {
		days = MaxIntradayDays
		plan.Clamped = true
		plan.Note = fmt.Sprintf("Intraday interval %s is limited to %d days; range clamped from %d days.",
			interval, MaxIntradayDays, requested)
	}

	plan.Days = days
	plan.PeriodEnd = now
	plan.PeriodStart = now.Add(-time.Duration(days) * 24 * time.Hour)
	return plan
}

// ClassifyOutcome labels a completed fetch as success, empty or error.
func ClassifyOutcome(symbol string, res *models.SeriesResult, err error) models.Outcome {
	switch {
	case err != nil && errors.Is(err, domain.ErrNoData):
		return models.Outcome{Kind: models.OutcomeEmpty, Message: emptyMessage(symbol)}
	case err != nil:
		return models.Outcome{Kind: models.OutcomeError, Message: ErrorMessage(err)}
	case res == nil || len(res.Points) == 0:
		return models.Outcome{Kind: models.OutcomeEmpty, Message: emptyMessage(symbol)}
	default:
		return models.Outcome{Kind: models.OutcomeSuccess, Message: fmt.Sprintf("Live data loaded from %s.", res.Source)}
	}
}

// ErrorMessage renders err for display.
func ErrorMessage(err error) string {
	var pe *domain.ProviderError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	if errors.Is(err, domain.ErrUpstreamUnavailable) {
		return "Network error while loading stock data."
	}
	return "Failed to fetch stock data."
}

func emptyMessage(symbol string) string {
	return fmt.Sprintf("No data returned for %s in the selected range.", symbol)
}
