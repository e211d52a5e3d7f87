package api

import (
	"errors"
	"fmt"

	"StockPulse/internal/domain"
	pkghttp "StockPulse/pkg/http"
)

// FailedFetchMessage is the body of unclassified fetch failures.
const FailedFetchMessage = "Failed to fetch stock data."

// FromDomainError maps the domain error taxonomy onto HTTP errors. symbol, when set,
// is echoed on no-data responses.
func FromDomainError(err error, symbol string) *pkghttp.AppError {
	var appErr *pkghttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		e := pkghttp.BadRequestError(ve.Message).WithError(err)
		e.Field = ve.Field
		return e
	}

	var pe *domain.ProviderError
	if errors.As(err, &pe) {
		e := providerAppError(pe, symbol).WithError(err).WithParam("provider", pe.Provider)
		if pe.Status > 0 {
			e.WithParam("status", pe.Status)
		}
		if pe.Hint != "" {
			e.WithParam("hint", pe.Hint)
		}
		return e
	}

	switch {
	case errors.Is(err, domain.ErrNoData):
		return noData(symbol).WithError(err)
	case errors.Is(err, domain.ErrNotFound):
		return pkghttp.NotFoundError("Not found.").WithError(err)
	case errors.Is(err, domain.ErrRateLimited):
		return pkghttp.TooManyRequestsError("Too many requests. Try again shortly.").WithError(err)
	case errors.Is(err, domain.ErrUpstreamUnavailable), errors.Is(err, domain.ErrMalformedPayload):
		return pkghttp.BadGatewayError("Network error while loading stock data.").WithError(err)
	default:
		return pkghttp.InternalError(FailedFetchMessage).WithError(err)
	}
}

func providerAppError(pe *domain.ProviderError, symbol string) *pkghttp.AppError {
	switch {
	case errors.Is(pe, domain.ErrNoData):
		e := noData(symbol)
		if pe.Message != "" {
			e.Message = pe.Message
		}
		return e
	case errors.Is(pe, domain.ErrRateLimited):
		return pkghttp.TooManyRequestsError(pe.Message)
	case errors.Is(pe, domain.ErrNotConfigured):
		return pkghttp.NotImplementedError(pe.Message)
	case errors.Is(pe, domain.ErrProviderRejected):
		return pkghttp.BadRequestError(pe.Message)
	case errors.Is(pe, domain.ErrUpstreamUnavailable), errors.Is(pe, domain.ErrMalformedPayload):
		return pkghttp.BadGatewayError(pe.Message)
	default:
		return pkghttp.InternalError(FailedFetchMessage)
	}
}

func noData(symbol string) *pkghttp.AppError {
	e := pkghttp.NotFoundError(fmt.Sprintf("No data returned for %s in the selected range.", symbol))
	if symbol != "" {
		e.WithParam("symbol", symbol)
	}
	return e
}
