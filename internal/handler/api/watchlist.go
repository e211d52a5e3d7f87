package api

import (
	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

// WatchlistResponse is the body of every watchlist endpoint.
type WatchlistResponse struct {
	Symbols models.Watchlist `json:"symbols"`
}

type WatchlistHandler struct {
	store  drepo.WatchlistRepository
	logger *applogger.Logger
}

func NewWatchlistHandler(store drepo.WatchlistRepository, logger *applogger.Logger) *WatchlistHandler {
	return &WatchlistHandler{store: store, logger: logger}
}

func (h *WatchlistHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/watchlist")
	g.GET("", h.List)
	g.POST("", h.Add)
	g.DELETE("/:symbol", h.Remove)
}

func (h *WatchlistHandler) List(c echo.Context) error {
	wl, err := h.store.List(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	return h.respond(c, wl)
}

func (h *WatchlistHandler) Add(c echo.Context) error {
	req := &models.AddSymbolRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	wl, err := h.store.Add(c.Request().Context(), req.Symbol)
	if err != nil {
		return h.fail(err)
	}
	h.logger.Info("Watchlist symbol added", applogger.String("symbol", req.Symbol))
	return h.respond(c, wl)
}

func (h *WatchlistHandler) Remove(c echo.Context) error {
	symbol := models.NormalizeSymbol(c.Param("symbol"))
	wl, err := h.store.Remove(c.Request().Context(), symbol)
	if err != nil {
		return h.fail(err)
	}
	return h.respond(c, wl)
}

func (h *WatchlistHandler) respond(c echo.Context, wl models.Watchlist) error {
	if wl == nil {
		wl = models.Watchlist{}
	}
	return pkghttp.SuccessResponse(c, WatchlistResponse{Symbols: wl})
}

func (h *WatchlistHandler) fail(err error) error {
	appErr := FromDomainError(err, "")
	if appErr.Status >= 500 {
		h.logger.Error("Watchlist request failed", applogger.Error(err))
		appErr.Message = pkghttp.DefaultErrorMessage
	}
	return appErr
}
