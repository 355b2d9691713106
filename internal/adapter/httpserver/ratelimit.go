package httpserver

import (
	"log/slog"
	"math"
	"strconv"
	"time"

	apperrors "github.com/ee-aadishbahati/ACI-Deployment-Tracker/internal/platform/errors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

const rateLimiterExpiry = 5 * time.Minute

// newRateLimiter throttles mutating API calls per client IP with a token bucket.
func newRateLimiter(ratePerSecond float64, burst int) echo.MiddlewareFunc {
	store := middleware.NewRateLimiterMemoryStoreWithConfig(
		middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(ratePerSecond),
			Burst:     burst,
			ExpiresIn: rateLimiterExpiry,
		},
	)
	retryAfter := strconv.Itoa(int(math.Ceil(1 / ratePerSecond)))

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		Store: store,
		DenyHandler: func(c echo.Context, identifier string, _ error) error {
			slog.InfoContext(c.Request().Context(), "Rate limit exceeded",
				"client", identifier,
				"path", c.Request().URL.Path)

			resp := apperrors.RateLimitedError("rate limit exceeded")
			c.Response().Header().Set("Retry-After", retryAfter)
			return c.JSON(resp.HTTPStatus(), resp.ToResponse())
		},
	})
}
