package models

import (
	"strings"
	"time"
)

// AlertCondition selects the comparison direction.
type AlertCondition string

const (
	ConditionAbove AlertCondition = "above"
	ConditionBelow AlertCondition = "below"
)

// Valid reports whether c is a known condition.
func (c AlertCondition) Valid() bool {
	return c == ConditionAbove || c == ConditionBelow
}

// Hit reports whether price satisfies the condition against target.
func (c AlertCondition) Hit(price, target float64) bool {
	switch c {
	case ConditionAbove:
		return price >= target
	case ConditionBelow:
		return price <= target
	default:
		return false
	}
}

// Alert is a user-defined price threshold with trigger state.
type Alert struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	Condition   AlertCondition `json:"condition"`
	Target      float64        `json:"target"`
	CreatedAt   time.Time      `json:"createdAt"`
	Triggered   bool           `json:"triggered"`
	TriggeredAt *time.Time     `json:"triggeredAt"`
	LastChecked *time.Time     `json:"lastChecked"`
	LastPrice   *float64       `json:"lastPrice"`
}

// Reset returns the alert re-armed, identity preserved.
func (a Alert) Reset() Alert {
	a.Triggered = false
	a.TriggeredAt = nil
	return a
}

// Alerts is the persisted alert collection, newest first.
type Alerts []Alert

// Prepend returns a new collection with a in front.
func (as Alerts) Prepend(a Alert) Alerts {
	out := make(Alerts, 0, len(as)+1)
	out = append(out, a)
	return append(out, as...)
}

// Find returns the alert with id.
func (as Alerts) Find(id string) (Alert, bool) {
	for _, a := range as {
		if a.ID == id {
			return a, true
		}
	}
	return Alert{}, false
}

// Remove returns the collection without id and whether it was present.
func (as Alerts) Remove(id string) (Alerts, bool) {
	out := make(Alerts, 0, len(as))
	found := false
	for _, a := range as {
		if a.ID == id {
			found = true
			continue
		}
		out = append(out, a)
	}
	return out, found
}

// Update applies fn to the alert with id.
func (as Alerts) Update(id string, fn func(Alert) Alert) (Alerts, bool) {
	out := make(Alerts, len(as))
	found := false
	for i, a := range as {
		if a.ID == id {
			a = fn(a)
			found = true
		}
		out[i] = a
	}
	return out, found
}

// ForSymbol filters by symbol, case-insensitively. An empty symbol returns everything.
func (as Alerts) ForSymbol(symbol string) Alerts {
	if symbol == "" {
		return as
	}
	out := make(Alerts, 0, len(as))
	for _, a := range as {
		if strings.EqualFold(a.Symbol, symbol) {
			out = append(out, a)
		}
	}
	return out
}

// WatchingSymbols lists distinct symbols that still have an untriggered alert, in collection order.
func (as Alerts) WatchingSymbols() []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, a := range as {
		if a.Triggered {
			continue
		}
		if _, ok := seen[a.Symbol]; ok {
			continue
		}
		seen[a.Symbol] = struct{}{}
		out = append(out, a.Symbol)
	}
	return out
}

// AlertEvent is emitted when an alert transitions to triggered.
type AlertEvent struct {
	Type  string    `json:"type"`
	Alert Alert     `json:"alert"`
	At    time.Time `json:"at"`
}

// AlertTriggeredEvent is the event type for rising edges.
const AlertTriggeredEvent = "alert.triggered"
