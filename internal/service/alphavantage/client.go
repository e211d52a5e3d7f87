// Package alphavantage fetches time series from the Alpha Vantage query API.
package alphavantage

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/normalizer"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
	"StockPulse/pkg/util"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"

	missingKeyMessage = "Missing Alpha Vantage API key"
	missingKeyHint    = "Set ALPHA_VANTAGE_API_KEY in your environment."
	requestFailed     = "Alpha Vantage request failed"
)

// Config holds Alpha Vantage settings.
type Config struct {
	APIKey     string
	BaseURL    string
	OutputSize string
}

// Client implements SeriesProvider for Alpha Vantage.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	adapter normalizer.AlphaVantageAdapter
	logger  *applogger.Logger
}

// New creates an Alpha Vantage provider. A missing key is reported per request, not here.
func New(cfg Config, httpClient *pkghttp.Client, logger *applogger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.OutputSize == "" {
		cfg.OutputSize = "compact"
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

var _ drepo.SeriesProvider = (*Client)(nil)

func (c *Client) Name() string { return normalizer.AlphaVantageSource }

func (c *Client) FetchSeries(ctx context.Context, q drepo.SeriesQuery) (*models.SeriesResult, error) {
	if models.IsIntraday(q.Interval) {
		if _, ok := IntradayInterval(q.Interval); !ok {
			return nil, domain.NewValidationError("interval",
				"Alpha Vantage intraday interval must be one of 1min, 5min, 15min, 30min or 60min.")
		}
	}
	if c.cfg.APIKey == "" {
		return nil, domain.NewProviderError(c.Name(), domain.ErrNotConfigured, missingKeyMessage).
			WithHint(missingKeyHint)
	}

	body, err := c.http.Get(ctx, pkghttp.Request{
		URL:   c.cfg.BaseURL,
		Query: c.queryParams(q),
	})
	if err != nil {
		return nil, c.transportError(q.Symbol, err)
	}

	points, err := normalizer.Normalize(body, c.adapter)
	if err != nil {
		return nil, err
	}
	meta := q.Meta()
	if q.Explicit {
		points = withinWindow(points, q)
	} else if len(points) > 0 {
		// planned fetches return whatever the output size holds; report the covered window
		if t, ok := util.ParsePointDate(points[0].Date); ok {
			meta.PeriodStart = t
		}
	}
	return models.NewSeriesResult(q.Symbol, c.Name(), points, meta), nil
}

func (c *Client) queryParams(q drepo.SeriesQuery) url.Values {
	outputSize := q.OutputSize
	if outputSize == "" {
		outputSize = c.cfg.OutputSize
	}
	params := url.Values{
		"function":   {Function(q.Interval)},
		"symbol":     {q.Symbol},
		"apikey":     {c.cfg.APIKey},
		"outputsize": {outputSize},
	}
	if models.IsIntraday(q.Interval) {
		iv, _ := IntradayInterval(q.Interval)
		params.Set("interval", iv)
	}
	return params
}

func (c *Client) transportError(symbol string, err error) error {
	var se *pkghttp.StatusError
	if errors.As(err, &se) {
		kind := domain.ErrUpstreamUnavailable
		if se.Code == http.StatusTooManyRequests {
			kind = domain.ErrRateLimited
		}
		c.logger.Warn("Alpha Vantage returned non-2xx",
			applogger.String("symbol", symbol),
			applogger.Int("status", se.Code),
		)
		return domain.NewProviderError(c.Name(), kind, requestFailed).WithStatus(se.Code).WithError(err)
	}
	c.logger.Warn("Alpha Vantage request error",
		applogger.String("symbol", symbol),
		applogger.Error(err),
	)
	return domain.NewProviderError(c.Name(), domain.ErrUpstreamUnavailable, requestFailed).WithError(err)
}

// Function picks the API function for an interval label.
func Function(interval string) string {
	if models.IsIntraday(interval) {
		return "TIME_SERIES_INTRADAY"
	}
	switch models.IntervalUnitOf(interval) {
	case models.UnitWeek:
		return "TIME_SERIES_WEEKLY_ADJUSTED"
	case models.UnitMonth:
		return "TIME_SERIES_MONTHLY_ADJUSTED"
	default:
		return "TIME_SERIES_DAILY_ADJUSTED"
	}
}

var intradayIntervals = map[string]bool{"1min": true, "5min": true, "15min": true, "30min": true, "60min": true}

// IntradayInterval maps labels like "5m" or "1h" to Alpha Vantage's "5min" and "60min".
// It reports false for intervals the intraday API does not serve, such as "2h" or "90m".
func IntradayInterval(interval string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(interval))
	unit := models.IntervalUnit(s)
	n := strings.TrimSuffix(s, unit)
	if n == "" {
		n = "1"
	}
	var iv string
	switch models.UnitOf(unit) {
	case models.UnitHour:
		if n != "1" {
			return "", false
		}
		iv = "60min"
	case models.UnitMinute:
		iv = strings.TrimLeft(n, "0") + "min"
	default:
		return "", false
	}
	return iv, intradayIntervals[iv]
}

// withinWindow keeps points dated inside [PeriodStart, PeriodEnd].
// Daily keys compare against the start day so the first day is kept.
func withinWindow(points []models.CanonicalPoint, q drepo.SeriesQuery) []models.CanonicalPoint {
	from := q.PeriodStart.UTC().Format(util.DateLayout)
	to := q.PeriodEnd.UTC().Format(util.DateTimeLayout)
	out := make([]models.CanonicalPoint, 0, len(points))
	for _, p := range points {
		if p.Date >= from && p.Date <= to {
			out = append(out, p)
		}
	}
	return out
}
