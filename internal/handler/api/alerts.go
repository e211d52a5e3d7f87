package api

import (
	"errors"

	"github.com/labstack/echo/v4"

	"StockPulse/internal/domain"
	"StockPulse/internal/domain/models"
	drepo "StockPulse/internal/domain/repository"
	pkghttp "StockPulse/pkg/http"
	applogger "StockPulse/pkg/logger"
)

const alertNotFound = "Alert not found."

type AlertsHandler struct {
	store  drepo.AlertRepository
	logger *applogger.Logger
}

func NewAlertsHandler(store drepo.AlertRepository, logger *applogger.Logger) *AlertsHandler {
	return &AlertsHandler{store: store, logger: logger}
}

func (h *AlertsHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/alerts")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.POST("/:id/reset", h.Reset)
	g.DELETE("/:id", h.Remove)
}

func (h *AlertsHandler) List(c echo.Context) error {
	req := &models.ListAlertsRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	alerts, err := h.store.List(c.Request().Context())
	if err != nil {
		return h.fail(err)
	}
	rows := alerts.ForSymbol(req.Symbol)
	if rows == nil {
		rows = models.Alerts{}
	}
	return pkghttp.ListResponse(c, rows, len(rows))
}

func (h *AlertsHandler) Create(c echo.Context) error {
	req := &models.CreateAlertRequest{}
	if err := pkghttp.ReadAndValidateRequest(c, req); err != nil {
		return err
	}
	alert, err := h.store.Add(c.Request().Context(), req.Symbol, models.AlertCondition(req.Condition), req.Target)
	if err != nil {
		return h.fail(err)
	}
	h.logger.Info("Alert created",
		applogger.String("id", alert.ID),
		applogger.String("symbol", alert.Symbol),
		applogger.String("condition", string(alert.Condition)),
		applogger.Float64("target", alert.Target),
	)
	return pkghttp.CreatedResponse(c, alert)
}

func (h *AlertsHandler) Reset(c echo.Context) error {
	alert, err := h.store.Reset(c.Request().Context(), c.Param("id"))
	if err != nil {
		return h.fail(err)
	}
	return pkghttp.SuccessResponse(c, alert)
}

func (h *AlertsHandler) Remove(c echo.Context) error {
	if err := h.store.Remove(c.Request().Context(), c.Param("id")); err != nil {
		return h.fail(err)
	}
	return pkghttp.NoContentResponse(c)
}

func (h *AlertsHandler) fail(err error) error {
	if errors.Is(err, domain.ErrNotFound) {
		return pkghttp.NotFoundError(alertNotFound).WithError(err)
	}
	appErr := FromDomainError(err, "")
	if appErr.Status >= 500 {
		h.logger.Error("Alert request failed", applogger.Error(err))
		appErr.Message = pkghttp.DefaultErrorMessage
	}
	return appErr
}
