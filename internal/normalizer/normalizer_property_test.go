package normalizer

import (
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

var propertyLayout = Layout{Close: FirstOf(Field("adj"), Field("close"), Field("open"))}

// recordsFor builds one record per day offset. Offsets divisible by 4 have no usable close,
// offsets divisible by 3 expose only an opening price.
func recordsFor(days []int) []RawRecord {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	out := make([]RawRecord, 0, len(days))
	for _, d := range days {
		f := Fields{}
		price := strconv.FormatFloat(100+float64(d)/10, 'f', 2, 64)
		switch {
		case d%4 == 0:
			f["close"] = "n/a"
		case d%3 == 0:
			f["open"] = price
		default:
			f["close"] = price
		}
		out = append(out, RawRecord{Date: base.AddDate(0, 0, d).Format("2006-01-02"), Fields: f})
	}
	return out
}

func uniqueDays(days []int) []int {
	seen := make(map[int]struct{}, len(days))
	out := make([]int, 0, len(days))
	for _, d := range days {
		if _, ok := seen[d]; ok {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	return out
}

func TestProperty_NormalizedPoints(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	daysGen := gen.SliceOf(gen.IntRange(0, 720))

	properties.Property("every retained point has a close", prop.ForAll(
		func(days []int) bool {
			for _, p := range NormalizeRecords(recordsFor(days), propertyLayout) {
				if p.Close == nil {
					return false
				}
			}
			return true
		},
		daysGen,
	))

	properties.Property("dates are strictly ascending", prop.ForAll(
		func(days []int) bool {
			points := NormalizeRecords(recordsFor(days), propertyLayout)
			for i := 1; i < len(points); i++ {
				if points[i-1].Date >= points[i].Date {
					return false
				}
			}
			return true
		},
		daysGen,
	))

	properties.Property("output is independent of input order for unique dates", prop.ForAll(
		func(days []int) bool {
			days = uniqueDays(days)
			reversed := make([]int, len(days))
			for i, d := range days {
				reversed[len(days)-1-i] = d
			}
			a := NormalizeRecords(recordsFor(days), propertyLayout)
			b := NormalizeRecords(recordsFor(reversed), propertyLayout)
			return reflect.DeepEqual(a, b)
		},
		daysGen,
	))

	properties.Property("points without a resolvable close are absent", prop.ForAll(
		func(days []int) bool {
			days = uniqueDays(days)
			want := 0
			for _, d := range days {
				if d%4 != 0 {
					want++
				}
			}
			return len(NormalizeRecords(recordsFor(days), propertyLayout)) == want
		},
		daysGen,
	))

	properties.TestingRun(t)
}
