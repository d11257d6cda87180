package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/toolrent/rental-system/internal/api/handler"
	"github.com/toolrent/rental-system/internal/api/metrics"
	"github.com/toolrent/rental-system/internal/core/domain"
)

// TokenVerifier checks a session token and returns the embedded user id.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (int64, error)
}

// Auth reads the session token from the authorization header, verifies it
// and stores the caller's user id in the context. The header carries the
// raw token; a leading "Bearer " is accepted and stripped.
func Auth(verifier TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := tokenFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))

			userID, err := verifier.VerifyToken(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrMissingToken) {
					metrics.TokenVerificationsTotal.WithLabelValues("missing").Inc()
					return echo.NewHTTPError(http.StatusUnauthorized, handler.MsgMissingToken).SetInternal(err)
				}
				metrics.TokenVerificationsTotal.WithLabelValues("invalid").Inc()
				return echo.NewHTTPError(http.StatusUnauthorized, handler.MsgInvalidToken).SetInternal(err)
			}

			metrics.TokenVerificationsTotal.WithLabelValues("valid").Inc()
			c.Set(handler.UserIDKey, userID)
			return next(c)
		}
	}
}

func tokenFromHeader(v string) string {
	v = strings.TrimSpace(v)
	if len(v) > 7 && strings.EqualFold(v[:7], "bearer ") {
		return strings.TrimSpace(v[7:])
	}
	return v
}
