package api

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	"StockPulse/internal/service/metrics"
	"StockPulse/internal/service/ratelimit"
	"StockPulse/internal/usecase"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// stockList is the static fixture served by GET /api/stocks/.
var stockList = []models.StockSummary{
	{Symbol: "AAPL", Name: "Apple Inc.", Price: 145.09, Change: 1.23, PercentChange: 0.85},
	{Symbol: "GOOGL", Name: "Alphabet Inc.", Price: 2750.33, Change: -12.67, PercentChange: -0.46},
}

// StocksHandler serves series, plan, dashboard and history endpoints.
type StocksHandler struct {
	series    *usecase.SeriesService
	dashboard *usecase.Dashboard
	history   drepo.PointHistory
	limiter   *ratelimit.Limiter
	logger    *applogger.Logger
}

// NewStocksHandler creates the handler. history may be nil when ClickHouse is disabled.
func NewStocksHandler(series *usecase.SeriesService, dashboard *usecase.Dashboard, history drepo.PointHistory,
	limiter *ratelimit.Limiter, logger *applogger.Logger) *StocksHandler {
	metrics.Register()
	return &StocksHandler{series: series, dashboard: dashboard, history: history, limiter: limiter, logger: logger}
}

func (h *StocksHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/stocks")
	g.GET("/", h.List)
	g.GET("/timeseries", h.Timeseries)
	g.GET("/plan", h.Plan)
	g.GET("/dashboard", h.Dashboard)
	g.GET("/history", h.History)
}

func (h *StocksHandler) List(c echo.Context) error {
	return pkghttp.SuccessResponse(c, stockList)
}

func (h *StocksHandler) Timeseries(c echo.Context) error {
	const endpoint = "timeseries"
	defer metrics.Observe(endpoint, time.Now())

	if !h.limiter.Allow(c.RealIP()) {
		return h.fail(c, endpoint, rateLimited(), "")
	}
	req := &models.TimeseriesRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, endpoint, err, "")
	}

	q, err := h.series.BuildQuery(usecase.SeriesInput{
		Symbol:     req.Symbol,
		Range:      req.Range,
		Interval:   req.Interval,
		Period1:    req.Period1,
		Period2:    req.Period2,
		OutputSize: req.OutputSize,
	})
	if err != nil {
		return h.fail(c, endpoint, err, req.Symbol)
	}
	res, err := h.series.Fetch(c.Request().Context(), q)
	if err != nil {
		return h.fail(c, endpoint, err, req.Symbol)
	}
	return pkghttp.SuccessResponse(c, res)
}

func (h *StocksHandler) Plan(c echo.Context) error {
	const endpoint = "plan"
	defer metrics.Observe(endpoint, time.Now())

	req := &models.PlanRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, endpoint, err, "")
	}
	plan, err := h.dashboard.Plan(usecase.SeriesInput{Symbol: req.Symbol, Range: req.Range, Interval: req.Interval})
	if err != nil {
		return h.fail(c, endpoint, err, req.Symbol)
	}
	return pkghttp.SuccessResponse(c, plan)
}

func (h *StocksHandler) Dashboard(c echo.Context) error {
	const endpoint = "dashboard"
	defer metrics.Observe(endpoint, time.Now())

	if !h.limiter.Allow(c.RealIP()) {
		return h.fail(c, endpoint, rateLimited(), "")
	}
	req := &models.PlanRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, endpoint, err, "")
	}
	view, err := h.dashboard.View(c.Request().Context(), usecase.SeriesInput{
		Symbol:   req.Symbol,
		Range:    req.Range,
		Interval: req.Interval,
	})
	if err != nil {
		return h.fail(c, endpoint, err, req.Symbol)
	}
	return pkghttp.SuccessResponse(c, view)
}

func (h *StocksHandler) History(c echo.Context) error {
	const endpoint = "history"
	defer metrics.Observe(endpoint, time.Now())

	if h.history == nil {
		return h.fail(c, endpoint, pkghttp.NotImplementedError("Price history is not enabled."), "")
	}
	req := &models.HistoryRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return h.fail(c, endpoint, err, "")
	}
	points, err := h.history.Query(c.Request().Context(), req.Symbol, req.Interval, req.Limit)
	if err != nil {
		return h.fail(c, endpoint, pkghttp.InternalError("Failed to read price history.").WithError(err), req.Symbol)
	}
	if points == nil {
		points = []models.CanonicalPoint{}
	}
	return pkghttp.ListResponse(c, points, len(points))
}

// fail maps err, counts it and returns it for the server's error handler to render.
func (h *StocksHandler) fail(c echo.Context, endpoint string, err error, symbol string) error {
	appErr := FromDomainError(err, symbol)
	metrics.ObserveError(endpoint, strconv.Itoa(appErr.Status))
	if appErr.Status >= 500 {
		h.logger.Error("Stock request failed",
			applogger.String("endpoint", endpoint),
			applogger.String("symbol", symbol),
			applogger.Int("status", appErr.Status),
			applogger.Error(err),
		)
	}
	return appErr
}

func rateLimited() error {
	return pkghttp.TooManyRequestsError("Too many requests. Try again shortly.")
}
