package api

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	drepo "StockPulse/internal/domain/repository"
	pkghttp "StockPulse/pkg/http"
)

// HealthHandler reports store health and the active provider.
type HealthHandler struct {
	store    drepo.KVStore
	provider string
}

func NewHealthHandler(store drepo.KVStore, provider drepo.SeriesProvider) *HealthHandler {
	return &HealthHandler{store: store, provider: provider.Name()}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
}

func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Health(ctx); err != nil {
		return pkghttp.JSONResponse(c, http.StatusServiceUnavailable, map[string]interface{}{
			"error":    "Store unavailable.",
			"status":   "degraded",
			"provider": h.provider,
		})
	}
	return pkghttp.SuccessResponse(c, map[string]interface{}{
		"status":   "ok",
		"provider": h.provider,
	})
}
