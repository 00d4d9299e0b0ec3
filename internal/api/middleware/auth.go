package middleware

import (
	"errors"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/agromarket/marketplace-api/internal/api/metrics"
	"github.com/agromarket/marketplace-api/internal/core/domain"
	"github.com/agromarket/marketplace-api/internal/core/ports"
	"github.com/agromarket/marketplace-api/internal/infrastructure/security"
)

const userKey = "user"

// Authenticate resolves the bearer token to an account and stores it in the
// request context. Every rejection returns domain.ErrUnauthenticated; the
// reason is only logged and counted.
func Authenticate(auth ports.AuthService, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, reason := bearerToken(c.Request().Header.Get(echo.HeaderAuthorization))
			if reason != "" {
				return reject(c, log, reason, nil)
			}

			user, err := auth.Authenticate(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthenticated) {
					return reject(c, log, rejectionReason(err), err)
				}
				return err
			}

			SetUser(c, user)
			return next(c)
		}
	}
}

// bearerToken extracts the credentials of an "Authorization: Bearer <token>"
// header. The scheme is case-insensitive. A non-empty reason means no token.
func bearerToken(header string) (token, reason string) {
	if header == "" {
		return "", "missing"
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", "malformed_header"
	}
	token = strings.TrimSpace(parts[1])
	if token == "" {
		return "", "malformed_header"
	}
	return token, ""
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, security.ErrTokenExpired):
		return "expired"
	case errors.Is(err, security.ErrTokenBadSignature):
		return "bad_signature"
	case errors.Is(err, security.ErrTokenMalformed):
		return "malformed"
	case errors.Is(err, domain.ErrUserNotFound):
		return "unknown_subject"
	default:
		return "malformed"
	}
}

func reject(c echo.Context, log zerolog.Logger, reason string, err error) error {
	metrics.TokenRejectionsTotal.WithLabelValues(reason).Inc()
	log.Debug().
		Err(err).
		Str("reason", reason).
		Str("path", c.Path()).
		Msg("bearer token rejected")
	return domain.ErrUnauthenticated
}

// SetUser attaches the resolved account to the request context.
func SetUser(c echo.Context, user *domain.User) {
	c.Set(userKey, user)
}

// UserFrom returns the account attached by Authenticate, or nil.
func UserFrom(c echo.Context) *domain.User {
	u, _ := c.Get(userKey).(*domain.User)
	return u
}
