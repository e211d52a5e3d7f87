package normalizer

import (
	"encoding/json"
	"time"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	"StockPulse/pkg/util"
)

// YahooSource is stamped on Yahoo Finance results.
const YahooSource = "Yahoo Finance"

// yahooChart mirrors the v8 chart payload. Quote arrays hold nulls for missing bars.
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol          string `json:"symbol"`
				GMTOffset       int64  `json:"gmtoffset"`
				DataGranularity string `json:"dataGranularity"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []any `json:"open"`
					High   []any `json:"high"`
					Low    []any `json:"low"`
					Close  []any `json:"close"`
					Volume []any `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []any `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// YahooAdapter decodes chart v8 payloads: parallel arrays indexed by timestamp.
type YahooAdapter struct{}

func (YahooAdapter) Source() string { return YahooSource }

func (YahooAdapter) Layout() Layout {
	return Layout{
		Open:   Field("open"),
		High:   Field("high"),
		Low:    Field("low"),
		Close:  FirstOf(Field("adjclose"), Field("close"), Field("open")),
		Volume: Field("volume"),
	}
}

func (a YahooAdapter) Decode(payload []byte) ([]RawRecord, error) {
	var chart yahooChart
	if err := json.Unmarshal(payload, &chart); err != nil {
		return nil, domain.NewProviderError(a.Source(), domain.ErrMalformedPayload, "Unexpected Yahoo Finance response.").
			WithError(err)
	}

	if e := chart.Chart.Error; e != nil {
		kind := domain.ErrUpstreamUnavailable
		if e.Code == "Not Found" {
			kind = domain.ErrNoData
		}
		msg := e.Description
		if msg == "" {
			msg = e.Code
		}
		return nil, domain.NewProviderError(a.Source(), kind, msg)
	}

	if len(chart.Chart.Result) == 0 {
		return []RawRecord{}, nil
	}
	res := chart.Chart.Result[0]
	if len(res.Timestamp) == 0 {
		return []RawRecord{}, nil
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, domain.NewProviderError(a.Source(), domain.ErrMalformedPayload, "Unexpected Yahoo Finance response.")
	}

	q := res.Indicators.Quote[0]
	var adj []any
	if len(res.Indicators.AdjClose) > 0 {
		adj = res.Indicators.AdjClose[0].AdjClose
	}
	intraday := models.IsIntraday(res.Meta.DataGranularity)

	records := make([]RawRecord, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		local := time.Unix(ts+res.Meta.GMTOffset, 0).UTC()
		records = append(records, RawRecord{
			Date: util.FormatPointDate(local, intraday),
			Fields: Fields{
				"open":     at(q.Open, i),
				"high":     at(q.High, i),
				"low":      at(q.Low, i),
				"close":    at(q.Close, i),
				"volume":   at(q.Volume, i),
				"adjclose": at(adj, i),
			},
		})
	}
	return records, nil
}

func at(values []any, i int) any {
	if i < len(values) {
		return values[i]
	}
	return nil
}
