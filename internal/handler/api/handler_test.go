package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/repository"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	pkgcache "StockPulse/pkg/cache"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

type stubProvider struct {
	closes []float64
	err    error
	last   drepo.SeriesQuery
}

func (p *stubProvider) Name() string { return "Stub" }

func (p *stubProvider) FetchSeries(_ context.Context, q drepo.SeriesQuery) (*models.SeriesResult, error) {
	p.last = q
	if p.err != nil {
		return nil, p.err
	}
	points := make([]models.CanonicalPoint, len(p.closes))
	for i, c := range p.closes {
		points[i] = models.CanonicalPoint{Date: "2025-01-0" + string(rune('2'+i)), Close: models.Float(c)}
	}
	return models.NewSeriesResult(q.Symbol, p.Name(), points, q.Meta()), nil
}

type stubHistory struct{}

func (stubHistory) Append(context.Context, *models.SeriesResult) error { return nil }
func (stubHistory) Query(_ context.Context, symbol, _ string, limit int) ([]models.CanonicalPoint, error) {
	return []models.CanonicalPoint{{Date: "2025-01-02", Close: models.Float(1)}}[:min(limit, 1)], nil
}

type fixture struct {
	srv      *pkghttp.Server
	provider *stubProvider
	alerts   *repository.AlertStore
}

type fixtureOpts struct {
	history drepo.PointHistory
	limiter *ratelimit.Limiter
}

func newFixture(t *testing.T, opts fixtureOpts) *fixture {
	t.Helper()
	mem := pkgcache.NewMemoryCache()
	kv := repository.NewCacheKV(mem, "test")
	alerts := repository.NewAlertStore(kv, applogger.Nop())
	watchlist := repository.NewWatchlistStore(kv, applogger.Nop())
	provider := &stubProvider{closes: []float64{100, 110}}

	series := usecase.NewSeriesService(provider, alerts, applogger.Nop())
	dashboard := usecase.NewDashboard(series, alerts, applogger.Nop())

	handlers := []pkghttp.Handler{
		NewStocksHandler(series, dashboard, opts.history, opts.limiter, applogger.Nop()),
		NewWatchlistHandler(watchlist, applogger.Nop()),
		NewAlertsHandler(alerts, applogger.Nop()),
		NewHealthHandler(kv, provider),
	}
	srv := pkghttp.NewServer(applogger.Nop(), handlers, pkghttp.WithMetrics(false, 0))
	return &fixture{srv: srv, provider: provider, alerts: alerts}
}

func (f *fixture) do(t *testing.T, method, target, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	f.srv.Echo().ServeHTTP(rec, req)

	var out map[string]interface{}
	if rec.Body.Len() > 0 && strings.HasPrefix(strings.TrimSpace(rec.Body.String()), "{") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	}
	return rec, out
}

func TestStockList(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, _ := f.do(t, http.MethodGet, "/api/stocks/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	var list []models.StockSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 2)
	assert.Equal(t, "AAPL", list[0].Symbol)
	assert.Equal(t, 145.09, list[0].Price)
	assert.Equal(t, "GOOGL", list[1].Symbol)
	assert.Equal(t, -0.46, list[1].PercentChange)
}

func TestTimeseriesSuccess(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=%20aapl%20&interval=1d", "")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Equal(t, "Stub", body["source"])
	assert.Len(t, body["points"], 2)
	latest := body["latest"].(map[string]interface{})
	assert.Equal(t, 110.0, latest["close"])
	meta := body["meta"].(map[string]interface{})
	assert.Equal(t, "1d", meta["interval"])
	assert.Equal(t, "AAPL", f.provider.last.Symbol)
}

func TestTimeseriesMissingSymbol(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/api/stocks/timeseries", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required query param: symbol", body["error"])
}

func TestTimeseriesInvalidInterval(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, _ := f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=AAPL&interval=fortnight", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimeseriesErrorTaxonomy(t *testing.T) {
	cases := map[string]struct {
		err    error
		closes []float64
		status int
		want   map[string]interface{}
	}{
		"no data": {
			status: http.StatusNotFound,
			want:   map[string]interface{}{"error": "No data returned for AAPL in the selected range.", "symbol": "AAPL"},
		},
		"rate limited": {
			err:    domain.NewProviderError("Stub", domain.ErrRateLimited, "Stub rate limit reached."),
			status: http.StatusTooManyRequests,
			want:   map[string]interface{}{"error": "Stub rate limit reached.", "provider": "Stub"},
		},
		"not configured": {
			err:    domain.NewProviderError("Stub", domain.ErrNotConfigured, "Missing Stub API key").WithHint("Set STUB_KEY."),
			status: http.StatusNotImplemented,
			want:   map[string]interface{}{"error": "Missing Stub API key", "hint": "Set STUB_KEY."},
		},
		"upstream": {
			err:    domain.NewProviderError("Stub", domain.ErrUpstreamUnavailable, "Stub request failed").WithStatus(503),
			status: http.StatusBadGateway,
			want:   map[string]interface{}{"error": "Stub request failed", "status": 503.0},
		},
		"malformed": {
			err:    domain.NewProviderError("Stub", domain.ErrMalformedPayload, "Unexpected Stub response."),
			status: http.StatusBadGateway,
			want:   map[string]interface{}{"error": "Unexpected Stub response."},
		},
		"rejected": {
			err:    domain.NewProviderError("Stub", domain.ErrProviderRejected, "Invalid API call."),
			status: http.StatusBadRequest,
			want:   map[string]interface{}{"error": "Invalid API call."},
		},
		"unexpected": {
			err:    assert.AnError,
			status: http.StatusInternalServerError,
			want:   map[string]interface{}{"error": FailedFetchMessage},
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture(t, fixtureOpts{})
			f.provider.err = tc.err
			f.provider.closes = tc.closes

			rec, body := f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=AAPL", "")
			require.Equal(t, tc.status, rec.Code, rec.Body.String())
			for k, v := range tc.want {
				assert.Equal(t, v, body[k], k)
			}
		})
	}
}

func TestTimeseriesClientRateLimit(t *testing.T) {
	f := newFixture(t, fixtureOpts{limiter: ratelimit.New(1, 0)})

	rec, _ := f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rec, body := f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=AAPL", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestPlanEndpoint(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/api/stocks/plan?symbol=msft&range=1Y&interval=5m", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MSFT", body["symbol"])
	assert.Equal(t, 365.0, body["requestedDays"])
	assert.Equal(t, 30.0, body["days"])
	assert.Equal(t, true, body["clamped"])
	assert.Equal(t, "Fetching Stub data...", body["loadingMessage"])
}

func TestDashboardEndpointFallsBack(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	f.provider.err = domain.NewProviderError("Stub", domain.ErrUpstreamUnavailable, "Stub request failed")

	rec, body := f.do(t, http.MethodGet, "/api/stocks/dashboard?symbol=AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Stub request failed", body["message"])
	assert.Equal(t, true, body["fallback"])
	series := body["series"].(map[string]interface{})
	assert.Equal(t, usecase.SampleSource, series["source"])
}

func TestHistoryDisabled(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/api/stocks/history?symbol=AAPL", "")
	require.Equal(t, http.StatusNotImplemented, rec.Code)
	assert.Equal(t, "Price history is not enabled.", body["error"])
}

func TestHistoryEnabled(t *testing.T) {
	f := newFixture(t, fixtureOpts{history: stubHistory{}})
	rec, body := f.do(t, http.MethodGet, "/api/stocks/history?symbol=AAPL&limit=10", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1.0, body["total"])
}

func TestWatchlistEndpoints(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	rec, body := f.do(t, http.MethodGet, "/api/watchlist", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["symbols"])

	rec, body = f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":" tsla "}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, []interface{}{"TSLA"}, body["symbols"])

	_, body = f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":"TSLA"}`)
	assert.Equal(t, []interface{}{"TSLA"}, body["symbols"])

	rec, body = f.do(t, http.MethodPost, "/api/watchlist", `{"symbol":""}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "symbol is required", body["error"])

	rec, body = f.do(t, http.MethodDelete, "/api/watchlist/tsla", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []interface{}{}, body["symbols"])
}

func TestAlertEndpoints(t *testing.T) {
	f := newFixture(t, fixtureOpts{})

	rec, body := f.do(t, http.MethodPost, "/api/alerts", `{"symbol":"aapl","condition":"above","target":105}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	id := body["id"].(string)
	assert.NotEmpty(t, id)
	assert.Equal(t, "AAPL", body["symbol"])
	assert.Equal(t, false, body["triggered"])

	rec, body = f.do(t, http.MethodPost, "/api/alerts", `{"symbol":"AAPL","condition":"sideways","target":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, body["error"], "condition")

	rec, _ = f.do(t, http.MethodPost, "/api/alerts", `{"symbol":"AAPL","condition":"below","target":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// a fetch above target triggers the alert
	rec, _ = f.do(t, http.MethodGet, "/api/stocks/timeseries?symbol=AAPL", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec, body = f.do(t, http.MethodGet, "/api/alerts?symbol=aapl", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, body["total"])
	row := body["rows"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, true, row["triggered"])
	assert.Equal(t, 110.0, row["lastPrice"])

	_, body = f.do(t, http.MethodGet, "/api/alerts?symbol=MSFT", "")
	assert.Equal(t, 0.0, body["total"])

	rec, body = f.do(t, http.MethodPost, "/api/alerts/"+id+"/reset", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["triggered"])

	rec, body = f.do(t, http.MethodPost, "/api/alerts/missing/reset", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Alert not found.", body["error"])

	rec, _ = f.do(t, http.MethodDelete, "/api/alerts/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec, _ = f.do(t, http.MethodDelete, "/api/alerts/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "Stub", body["provider"])
}

func TestUnknownRouteIsJSONError(t *testing.T) {
	f := newFixture(t, fixtureOpts{})
	rec, body := f.do(t, http.MethodGet, "/api/nope", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.NotEmpty(t, body["error"])
}

func TestValidators(t *testing.T) {
	for _, s := range []string{"AAPL", "BRK.B", "^GSPC", "EURUSD=X", "BF-B"} {
		assert.True(t, ValidTicker(s), s)
	}
	for _, s := range []string{"", "aapl", "TOO LONG", "ABCDEFGHIJKLMNOP", "A/B"} {
		assert.False(t, ValidTicker(s), s)
	}
	for _, s := range []string{"", "5m", "60min", "1h", "1d", "1wk", "1mo", "3mo", "2hrs", "1hours", "1minute", "15minutes"} {
		assert.True(t, ValidInterval(s), s)
	}
	for _, s := range []string{"fortnight", "1y", "10000m", "m5"} {
		assert.False(t, ValidInterval(s), s)
	}
}

func TestValidIntervalAgreesWithIntraday(t *testing.T) {
	for _, s := range []string{"5m", "5min", "5mins", "5minute", "5minutes", "1h", "1hr", "2hrs", "1hour", "3hours"} {
		assert.True(t, models.IsIntraday(s), s)
		assert.True(t, ValidInterval(s), s)
	}
	for _, s := range []string{"1mo", "1mon", "1month", "1d", "1wk"} {
		assert.False(t, models.IsIntraday(s), s)
		assert.True(t, ValidInterval(s), s)
	}
}
