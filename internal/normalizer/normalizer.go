// Package normalizer turns provider payloads into ordered canonical price points.
// It performs no I/O.
package normalizer

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"

	"StockPulse/internal/domain/models"
)

// Fields is one raw record keyed by the provider's field names.
type Fields map[string]any

// RawRecord is a dated provider record before normalization.
type RawRecord struct {
	Date   string
	Fields Fields
}

// Extractor resolves one numeric value from a record, or nil.
type Extractor func(Fields) *float64

// Layout tells the normalizer where each canonical field lives.
type Layout struct {
	Open   Extractor
	High   Extractor
	Low    Extractor
	Close  Extractor
	Volume Extractor
}

// Adapter decodes one provider's payload shape.
type Adapter interface {
	// Source is the human-readable provider name stamped on results.
	Source() string
	// Decode parses the payload into raw records, or returns a taxonomy error
	// when the payload reports a provider-side failure.
	Decode(payload []byte) ([]RawRecord, error)
	Layout() Layout
}

// Normalize decodes payload with adapter and returns sorted canonical points.
func Normalize(payload []byte, adapter Adapter) ([]models.CanonicalPoint, error) {
	records, err := adapter.Decode(payload)
	if err != nil {
		return nil, err
	}
	return NormalizeRecords(records, adapter.Layout()), nil
}

// NormalizeRecords resolves fields, drops points without a close and sorts ascending by date.
// Equal dates keep the first-seen record only.
func NormalizeRecords(records []RawRecord, layout Layout) []models.CanonicalPoint {
	points := make([]models.CanonicalPoint, 0, len(records))
	for _, rec := range records {
		p := models.CanonicalPoint{
			Date:   rec.Date,
			Open:   apply(layout.Open, rec.Fields),
			High:   apply(layout.High, rec.Fields),
			Low:    apply(layout.Low, rec.Fields),
			Close:  apply(layout.Close, rec.Fields),
			Volume: apply(layout.Volume, rec.Fields),
		}
		if p.Close == nil {
			continue
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})

	out := points[:0]
	for i, p := range points {
		if i > 0 && p.Date == out[len(out)-1].Date {
			continue
		}
		out = append(out, p)
	}
	return out
}

func apply(ex Extractor, f Fields) *float64 {
	if ex == nil {
		return nil
	}
	return ex(f)
}

// Field extracts key from a record.
func Field(key string) Extractor {
	return func(f Fields) *float64 {
		v, ok := f[key]
		if !ok {
			return nil
		}
		return ToNumber(v)
	}
}

// FirstOf tries extractors in order and returns the first non-nil value.
func FirstOf(chain ...Extractor) Extractor {
	return func(f Fields) *float64 {
		for _, ex := range chain {
			if v := ex(f); v != nil {
				return v
			}
		}
		return nil
	}
}

// ToNumber parses v as a finite float. Anything else yields nil.
func ToNumber(v any) *float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case json.Number:
		parsed, err := x.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}
