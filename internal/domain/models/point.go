package models

import "time"

// CanonicalPoint is a normalized price record. Close is always set on retained points.
type CanonicalPoint struct {
	Date   string   `json:"date"`
	Open   *float64 `json:"open"`
	High   *float64 `json:"high"`
	Low    *float64 `json:"low"`
	Close  *float64 `json:"close"`
	Volume *float64 `json:"volume"`
}

// ClosePrice returns the close or 0 when absent.
func (p CanonicalPoint) ClosePrice() float64 {
	if p.Close == nil {
		return 0
	}
	return *p.Close
}

// HasOHLC reports whether all four prices are present, which a candlestick view needs.
func (p CanonicalPoint) HasOHLC() bool {
	return p.Open != nil && p.High != nil && p.Low != nil && p.Close != nil
}

// SeriesMeta describes the window a series was fetched for.
type SeriesMeta struct {
	Interval    string    `json:"interval"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`
	Note        string    `json:"note,omitempty"`
}

// SeriesResult is the normalized answer for one symbol.
type SeriesResult struct {
	Symbol string           `json:"symbol"`
	Points []CanonicalPoint `json:"points"`
	Latest *CanonicalPoint  `json:"latest"`
	Source string           `json:"source"`
	Meta   *SeriesMeta      `json:"meta"`
}

// NewSeriesResult builds a result whose Latest is the last point, or nil when empty.
func NewSeriesResult(symbol, source string, points []CanonicalPoint, meta *SeriesMeta) *SeriesResult {
	if points == nil {
		points = []CanonicalPoint{}
	}
	return &SeriesResult{
		Symbol: symbol,
		Points: points,
		Latest: LatestPoint(points),
		Source: source,
		Meta:   meta,
	}
}

// LatestPoint returns a copy of the last point or nil.
func LatestPoint(points []CanonicalPoint) *CanonicalPoint {
	if len(points) == 0 {
		return nil
	}
	p := points[len(points)-1]
	return &p
}

// Change is the absolute and percent move between the first and last close.
type Change struct {
	Absolute float64 `json:"absolute"`
	Percent  float64 `json:"percent"`
}

// SeriesChange computes the move across points. Percent is 0 when the first close is 0.
func SeriesChange(points []CanonicalPoint) Change {
	if len(points) < 2 {
		return Change{}
	}
	first := points[0].ClosePrice()
	last := points[len(points)-1].ClosePrice()
	ch := Change{Absolute: last - first}
	if first != 0 {
		ch.Percent = ch.Absolute / first * 100
	}
	return ch
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
