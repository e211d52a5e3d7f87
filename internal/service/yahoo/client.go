// Package yahoo fetches time series from the Yahoo Finance chart v8 API.
package yahoo

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/normalizer"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com/v8/finance/chart"
	DefaultUserAgent = "Mozilla/5.0"

	requestFailed = "Yahoo Finance request failed"
)

// Config holds Yahoo Finance settings.
type Config struct {
	BaseURL   string
	UserAgent string
}

// Client implements SeriesProvider for Yahoo Finance.
type Client struct {
	cfg     Config
	http    *pkghttp.Client
	adapter normalizer.YahooAdapter
	logger  *applogger.Logger
}

// New creates a Yahoo Finance provider. The http client should carry the configured User-Agent.
func New(cfg Config, httpClient *pkghttp.Client, logger *applogger.Logger) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

var _ drepo.SeriesProvider = (*Client)(nil)

func (c *Client) Name() string { return normalizer.YahooSource }

func (c *Client) FetchSeries(ctx context.Context, q drepo.SeriesQuery) (*models.SeriesResult, error) {
	body, err := c.http.Get(ctx, pkghttp.Request{
		URL:     strings.TrimRight(c.cfg.BaseURL, "/") + "/" + url.PathEscape(q.Symbol),
		Headers: map[string]string{"User-Agent": c.cfg.UserAgent},
		Query: url.Values{
			"period1":              {strconv.FormatInt(q.PeriodStart.Unix(), 10)},
			"period2":              {strconv.FormatInt(q.PeriodEnd.Unix(), 10)},
			"interval":             {Interval(q.Interval)},
			"includeAdjustedClose": {"true"},
		},
	})
	if err != nil {
		return nil, c.transportError(q.Symbol, err)
	}

	points, err := normalizer.Normalize(body, c.adapter)
	if err != nil {
		return nil, err
	}
	return models.NewSeriesResult(q.Symbol, c.Name(), points, q.Meta()), nil
}

// transportError classifies failed calls. Yahoo reports unknown symbols as a 404 whose body
// still carries a chart error, so that body is decoded before falling back to a generic 502.
func (c *Client) transportError(symbol string, err error) error {
	var se *pkghttp.StatusError
	if !errors.As(err, &se) {
		c.logger.Warn("Yahoo Finance request error",
			applogger.String("symbol", symbol),
			applogger.Error(err),
		)
		return domain.NewProviderError(c.Name(), domain.ErrUpstreamUnavailable, requestFailed).WithError(err)
	}

	c.logger.Warn("Yahoo Finance returned non-2xx",
		applogger.String("symbol", symbol),
		applogger.Int("status", se.Code),
	)
	if se.Code == http.StatusTooManyRequests {
		return domain.NewProviderError(c.Name(), domain.ErrRateLimited, "Yahoo Finance rate limit reached. Try again shortly.").
			WithStatus(se.Code)
	}

	var pe *domain.ProviderError
	if _, derr := normalizer.Normalize([]byte(se.Body), c.adapter); errors.As(derr, &pe) && !errors.Is(pe, domain.ErrMalformedPayload) {
		return pe.WithStatus(se.Code)
	}
	return domain.NewProviderError(c.Name(), domain.ErrUpstreamUnavailable, requestFailed).WithStatus(se.Code).WithError(err)
}

// Interval maps interval labels onto the values the chart API accepts.
func Interval(label string) string {
	s := strings.ToLower(strings.TrimSpace(label))
	if s == "" {
		return "1d"
	}
	unit := models.IntervalUnit(s)
	n := strings.TrimSuffix(s, unit)
	if n == "" {
		n = "1"
	}
	switch models.UnitOf(unit) {
	case models.UnitMinute:
		return n + "m"
	case models.UnitHour:
		return n + "h"
	case models.UnitDay:
		return n + "d"
	case models.UnitWeek:
		return n + "wk"
	case models.UnitMonth:
		return n + "mo"
	default:
		return s
	}
}
