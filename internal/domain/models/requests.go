package models

// Requests for the stock HTTP endpoints. Symbols are normalized before validation.

type TimeseriesRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Interval   string `query:"interval" json:"interval" default:"1d" validate:"interval"`
	Range      string `query:"range" json:"range" default:"1M"`
	Period1    string `query:"period1" json:"period1"`
	Period2    string `query:"period2" json:"period2"`
	OutputSize string `query:"outputsize" json:"outputsize" default:"compact" validate:"oneof=compact full"`
}

func (r *TimeseriesRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }

type PlanRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Range    string `query:"range" json:"range" default:"1M"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"interval"`
}

func (r *PlanRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }

type HistoryRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required,ticker"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"interval"`
	Limit    int    `query:"limit" json:"limit" default:"500" validate:"gte=1,lte=5000"`
}

func (r *HistoryRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }

type AddSymbolRequest struct {
	Symbol string `json:"symbol" validate:"required,ticker"`
}

func (r *AddSymbolRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }

type CreateAlertRequest struct {
	Symbol    string  `json:"symbol" validate:"required,ticker"`
	Condition string  `json:"condition" validate:"required,oneof=above below"`
	Target    float64 `json:"target" validate:"gt=0"`
}

func (r *CreateAlertRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }

type ListAlertsRequest struct {
	Symbol string `query:"symbol" json:"symbol"`
}

func (r *ListAlertsRequest) Normalize() { r.Symbol = NormalizeSymbol(r.Symbol) }
