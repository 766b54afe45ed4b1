package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/domain"
	"github.com/shankarmishra/PLAYINDIA-sub002/internal/core/validation"
)

// errorResponse is the canonical error envelope for all API errors. It matches
// the backend's own {success:false, message} shape so the browser handles both alike.
type errorResponse struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Maps known domain errors to their appropriate HTTP status codes.
//   - Passes backend business errors through with the backend's status and message.
//   - Logs unexpected errors internally without leaking details to the client.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		code, body := resolveError(err, log, c)
		if c.Request().Method == http.MethodHead {
			_ = c.NoContent(code)
			return
		}
		_ = c.JSON(code, body)
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, errorResponse) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, errorResponse{Message: fmt.Sprintf("%v", he.Message)}
	}

	var fe validation.FieldErrors
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity, errorResponse{Message: "validation failed", Errors: fe}
	}

	if be, ok := domain.AsBackendError(err); ok {
		if be.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(be.RetryAfter.Seconds())))
		}
		return be.Status, errorResponse{Message: be.Message}
	}

	var se *domain.AccountStatusError
	if errors.As(err, &se) {
		return http.StatusForbidden, errorResponse{Message: se.Error()}
	}

	// Known domain errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrMissingFields),
		errors.Is(err, domain.ErrInvalidMobile):
		return http.StatusBadRequest, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrFormParseTimeout):
		return http.StatusRequestTimeout, errorResponse{Message: "Form parsing timed out"}
	case errors.Is(err, domain.ErrMissingToken),
		errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusUnauthorized, errorResponse{Message: domain.ErrUnauthorized.Error()}
	case errors.Is(err, domain.ErrRoleMismatch):
		return http.StatusForbidden, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrUnknownRole),
		errors.Is(err, domain.ErrUnknownEndpointGroup):
		return http.StatusNotFound, errorResponse{Message: err.Error()}
	case errors.Is(err, domain.ErrMalformedBackendReply):
		log.Warn().Err(err).Str("path", c.Path()).Msg("malformed backend reply")
		return http.StatusBadGateway, errorResponse{Message: domain.ErrMalformedBackendReply.Error()}
	case errors.Is(err, domain.ErrBackendUnreachable):
		log.Error().Err(err).Str("path", c.Path()).Msg("backend unreachable")
		return http.StatusInternalServerError, errorResponse{Message: domain.ErrBackendUnreachable.Error()}
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, errorResponse{Message: "internal server error"}
}
