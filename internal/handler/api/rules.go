package api

import (
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"StockPulse/internal/domain/models"
	pkghttp "StockPulse/pkg/http"
)

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.\-^=]{1,15}$`)

func init() {
	pkghttp.RegisterRule("ticker", func(fl validator.FieldLevel) bool {
		return ValidTicker(fl.Field().String())
	})
	pkghttp.RegisterRule("interval", func(fl validator.FieldLevel) bool {
		return ValidInterval(fl.Field().String())
	})
}

// ValidTicker accepts normalized symbols such as AAPL, BRK.B, ^GSPC or EURUSD=X.
func ValidTicker(s string) bool {
	return tickerPattern.MatchString(s)
}

// ValidInterval accepts labels like 5m, 60min, 1h, 1d, 1wk or 1mo. Empty means the default.
func ValidInterval(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return true
	}
	unit := models.IntervalUnit(s)
	return len(s)-len(unit) <= 3 && models.UnitOf(unit) != models.UnitUnknown
}
