package usecase

import (
	"strings"
	"time"

	"StockPulse/internal/domain/models"
)

// EvaluateAlerts applies the latest price to alerts watching symbol.
//
// Without a price or symbol the input is returned untouched. Matching alerts always get
// LastChecked and LastPrice refreshed; a Watching alert whose condition holds flips to
// Triggered and is stamped once. A triggered alert never re-arms here, only Reset does that.
// The returned slice is a copy in the same order; ID, Symbol, Condition and Target are never changed.
func EvaluateAlerts(alerts models.Alerts, latest *models.CanonicalPoint, symbol string, now time.Time) models.Alerts {
	if latest == nil || latest.Close == nil || strings.TrimSpace(symbol) == "" {
		return alerts
	}

	price := *latest.Close
	out := make(models.Alerts, len(alerts))
	for i, a := range alerts {
		if !strings.EqualFold(a.Symbol, strings.TrimSpace(symbol)) {
			out[i] = a
			continue
		}

		checked := now
		lastPrice := price
		a.LastChecked = &checked
		a.LastPrice = &lastPrice

		if !a.Triggered && a.Condition.Hit(price, a.Target) {
			triggeredAt := now
			a.Triggered = true
			a.TriggeredAt = &triggeredAt
		}
		out[i] = a
	}
	return out
}

// RisingEdges returns alerts that are triggered in next but were not in prev, matched by ID.
func RisingEdges(prev, next models.Alerts) models.Alerts {
	was := make(map[string]bool, len(prev))
	for _, a := range prev {
		was[a.ID] = a.Triggered
	}
	out := make(models.Alerts, 0)
	for _, a := range next {
		if a.Triggered && !was[a.ID] {
			out = append(out, a)
		}
	}
	return out
}
