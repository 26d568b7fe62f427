package middleware

import (
	"net/http"
	"strings"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"pulsedash/internal/common"
)

// IdentityAuth validates dashboard JWTs issued by the identity provider
// against its published JWKS.
type IdentityAuth struct {
	jwks *keyfunc.JWKS
}

func NewIdentityAuth(jwksURL string) (*IdentityAuth, error) {
	jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{})
	if err != nil {
		return nil, err
	}
	return &IdentityAuth{jwks: jwks}, nil
}

// Middleware authenticates the request and attaches the user and agency
// claims to the request context.
func (a *IdentityAuth) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token format")
			}

			token, err := jwt.Parse(tokenString, a.jwks.Keyfunc)
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing subject in token")
			}
			userID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid subject format")
			}

			agencyID := uuid.Nil
			if agencyClaim, ok := claims["agency_id"].(string); ok {
				if parsed, err := uuid.Parse(agencyClaim); err == nil {
					agencyID = parsed
				}
			}

			ctx := common.WithIdentity(c.Request().Context(), userID, agencyID)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}
