package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const userIDKey = "user_id"

// demo user for anonymous requests when no secret is configured
const demoUserID = "demo-user-001"

// Auth resolves the session user from a bearer token issued by the
// credential service. Token issuance is not this server's job; we only
// verify the HMAC signature and lift the subject claim into the request
// context. With no secret configured (local development) every request
// runs as the demo user.
func Auth(jwtSecret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if jwtSecret == "" {
				c.Set(userIDKey, demoUserID)
				return next(c)
			}

			header := c.Request().Header.Get(echo.HeaderAuthorization)
			tokenString, ok := strings.CutPrefix(header, "Bearer ")
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
			}

			token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
				return []byte(jwtSecret), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
			}

			subject, err := token.Claims.GetSubject()
			if err != nil || subject == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
			}

			c.Set(userIDKey, subject)
			return next(c)
		}
	}
}

// UserID returns the authenticated user for the request.
func UserID(c echo.Context) string {
	if id, ok := c.Get(userIDKey).(string); ok {
		return id
	}
	return ""
}
