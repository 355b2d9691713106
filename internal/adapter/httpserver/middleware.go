package httpserver

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/broadcast"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/domain"
	"github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/correlation"
	apperrors "github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/errors"
	"github.com/labstack/echo/v4"
)

// correlationMiddleware tags the request context with a correlation id (adopting
// a usable inbound X-Request-ID) and with the caller's real-time channel, if any.
func correlationMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		id := correlation.FromHeader(req.Header.Get(correlation.HeaderRequestID))
		ctx := correlation.WithID(req.Context(), id)
		if channelID := req.Header.Get(headerChannelID); channelID != "" {
			ctx = correlation.WithChannel(ctx, channelID)
		}
		c.SetRequest(req.WithContext(ctx))
		c.Response().Header().Set(correlation.HeaderRequestID, id)
		return next(c)
	}
}

func ErrorHandlingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			if err == nil {
				return nil
			}

			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return err
			}

			return HandleError(c, err)
		}
	}
}

// mapDomainError turns sentinel errors of the core into structured errors.
func mapDomainError(err error) error {
	switch {
	case errors.Is(err, domain.ErrCommentNotFound):
		return apperrors.NotFoundError("comment not found").WithCause(err)
	case errors.Is(err, domain.ErrNotificationNotFound):
		return apperrors.NotFoundError("notification not found").WithCause(err)
	case errors.Is(err, domain.ErrInvalidPatch):
		return apperrors.ValidationError(err.Error()).WithCause(err)
	case errors.Is(err, broadcast.ErrTooManyChannels), errors.Is(err, broadcast.ErrHubStopped):
		return apperrors.UnavailableError("real-time channel unavailable", err)
	default:
		return err
	}
}

func logError(c echo.Context, err *apperrors.Error) {
	attrs := []any{
		"error_type", err.Type,
		"message", err.Message,
		"path", c.Request().URL.Path,
		"method", c.Request().Method,
		"status", err.HTTPStatus(),
	}

	for k, v := range err.Context {
		attrs = append(attrs, k, v)
	}

	ctx := c.Request().Context()
	switch err.Type {
	case apperrors.TypeValidation:
		slog.InfoContext(ctx, "Validation error", attrs...)
	case apperrors.TypeNotFound:
		slog.InfoContext(ctx, "Not found", attrs...)
	case apperrors.TypeRateLimited:
		slog.InfoContext(ctx, "Rate limited", attrs...)
	case apperrors.TypeConflict:
		slog.WarnContext(ctx, "Conflict", attrs...)
	case apperrors.TypeUnavailable:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.WarnContext(ctx, "Unavailable", attrs...)
	case apperrors.TypeInternal:
		if err.Cause != nil {
			attrs = append(attrs, "cause", err.Cause)
		}
		slog.ErrorContext(ctx, "Internal error", attrs...)
	default:
		slog.ErrorContext(ctx, "Unknown error type", attrs...)
	}
}

func HandleError(c echo.Context, err error) error {
	if err == nil {
		return nil
	}

	structuredErr := apperrors.AsStructuredError(mapDomainError(err))
	logError(c, structuredErr)
	if err := c.JSON(structuredErr.HTTPStatus(), structuredErr.ToResponse()); err != nil {
		return fmt.Errorf("failed to write error response: %w", err)
	}
	return nil
}
