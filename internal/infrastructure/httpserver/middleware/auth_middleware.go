package middleware

import (
	"fmt"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/emberwatch/emberwatch/internal/core/domain/auth"
	"github.com/emberwatch/emberwatch/internal/infrastructure/httpserver/helpers"
)

// AuthMiddleware validates bearer tokens issued by the platform's auth
// service. Validation is stateless; the claims carry everything this
// service needs.
type AuthMiddleware struct {
	secret []byte
	logger *logrus.Logger
}

func NewAuthMiddleware(jwtSecret string, logger *logrus.Logger) *AuthMiddleware {
	return &AuthMiddleware{secret: []byte(jwtSecret), logger: logger}
}

// RequireToken creates middleware that validates the bearer token and sets
// the caller identity on the request context.
func (m *AuthMiddleware) RequireToken() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := helpers.GetBearerTokenFromContext(c)
			if err != nil {
				return err
			}

			claims, err := m.parseClaims(tokenString)
			if err != nil {
				if m.logger != nil {
					m.logger.WithFields(logrus.Fields{"ip": c.RealIP(), "path": c.Request().URL.Path, "error": err.Error()}).Warn("token validation failed")
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			helpers.SetUserID(c, claims.UserID)
			helpers.SetOrgID(c, claims.OrgID)
			helpers.SetUserEmail(c, claims.Email)

			if m.logger != nil {
				m.logger.WithFields(logrus.Fields{"user_id": claims.UserID, "org_id": claims.OrgID}).Debug("token validated and caller context set")
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) parseClaims(tokenString string) (*auth.Claims, error) {
	claims := &auth.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
