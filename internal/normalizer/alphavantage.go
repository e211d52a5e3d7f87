package normalizer

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"StockPulse/internal/domain"
)

// AlphaVantageSource is stamped on Alpha Vantage results.
const AlphaVantageSource = "Alpha Vantage"

// AlphaVantageAdapter decodes "Time Series (...)" payloads: date -> field map of numeric strings.
type AlphaVantageAdapter struct{}

func (AlphaVantageAdapter) Source() string { return AlphaVantageSource }

func (AlphaVantageAdapter) Layout() Layout {
	return Layout{
		Open:   Field("1. open"),
		High:   Field("2. high"),
		Low:    Field("3. low"),
		Close:  FirstOf(Field("5. adjusted close"), Field("4. close"), Field("1. open")),
		Volume: FirstOf(Field("6. volume"), Field("5. volume")),
	}
}

func (a AlphaVantageAdapter) Decode(payload []byte) ([]RawRecord, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(payload, &top); err != nil {
		return nil, domain.NewProviderError(a.Source(), domain.ErrMalformedPayload, "Unexpected Alpha Vantage response.").
			WithError(err)
	}

	if msg := stringField(top, "Error Message"); msg != "" {
		return nil, domain.NewProviderError(a.Source(), domain.ErrProviderRejected, msg)
	}
	if msg := stringField(top, "Note"); msg != "" {
		return nil, domain.NewProviderError(a.Source(), domain.ErrRateLimited, msg)
	}
	if msg := stringField(top, "Information"); msg != "" {
		return nil, domain.NewProviderError(a.Source(), domain.ErrRateLimited, msg)
	}

	key, ok := seriesKey(top)
	if !ok {
		return nil, domain.NewProviderError(a.Source(), domain.ErrMalformedPayload, "Unexpected Alpha Vantage response.")
	}

	var series map[string]map[string]any
	if err := json.Unmarshal(top[key], &series); err != nil {
		return nil, domain.NewProviderError(a.Source(), domain.ErrMalformedPayload, "Unexpected Alpha Vantage response.").
			WithError(fmt.Errorf("decode %q: %w", key, err))
	}

	records := make([]RawRecord, 0, len(series))
	for date, values := range series {
		records = append(records, RawRecord{Date: date, Fields: values})
	}
	return records, nil
}

// seriesKey finds the first key (in sorted order) that mentions "time series".
func seriesKey(top map[string]json.RawMessage) (string, bool) {
	keys := make([]string, 0, len(top))
	for k := range top {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if strings.Contains(strings.ToLower(k), "time series") {
			return k, true
		}
	}
	return "", false
}

func stringField(top map[string]json.RawMessage, key string) string {
	raw, ok := top[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
