package models

import "time"

// FetchStatus is the display state of a series request.
type FetchStatus string

const (
	StatusIdle    FetchStatus = "idle"
	StatusLoading FetchStatus = "loading"
	StatusError   FetchStatus = "error"
	StatusSuccess FetchStatus = "success"
)

// OutcomeKind classifies a completed fetch.
type OutcomeKind string

const (
	OutcomeSuccess OutcomeKind = "success"
	OutcomeEmpty   OutcomeKind = "empty"
	OutcomeError   OutcomeKind = "error"
)

// Outcome is a classified fetch response with a human-readable message.
type Outcome struct {
	Kind    OutcomeKind `json:"kind"`
	Message string      `json:"message"`
}

// Status maps the outcome onto the display state. Empty results display as errors.
func (o Outcome) Status() FetchStatus {
	if o.Kind == OutcomeSuccess {
		return StatusSuccess
	}
	return StatusError
}

// SeriesView is what a dashboard renders for one symbol.
type SeriesView struct {
	Symbol   string        `json:"symbol"`
	Status   FetchStatus   `json:"status"`
	Outcome  OutcomeKind   `json:"outcome"`
	Message  string        `json:"message"`
	Series   *SeriesResult `json:"series"`
	Fallback bool          `json:"fallback"`
	Change   Change        `json:"change"`
	Alerts   Alerts        `json:"alerts"`
}

// StockSummary is an entry of the static stock list.
type StockSummary struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	PercentChange float64 `json:"percentChange"`
}

// FetchPlan is the effective query derived from a range and interval.
type FetchPlan struct {
	Symbol        string    `json:"symbol"`
	QueryInterval string    `json:"queryInterval"`
	RequestedDays int       `json:"requestedDays"`
	Days          int       `json:"days"`
	Intraday      bool      `json:"intraday"`
	Clamped       bool      `json:"clamped"`
	Note          string    `json:"note,omitempty"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
}

// PlanView is a FetchPlan plus what a client shows while the fetch runs.
type PlanView struct {
	FetchPlan
	Provider       string `json:"provider"`
	LoadingMessage string `json:"loadingMessage"`
}
