package auth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// Middleware resolves the acting user from a bearer token. Optional never
// rejects: an absent or bad token just leaves the request anonymous, which is
// what checkout wants.
type Middleware struct {
	Issuer *TokenIssuer
}

func (m *Middleware) Optional(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := bearer(c); raw != "" {
			if id, role, err := m.Issuer.Parse(raw); err == nil {
				c.Set("user_id", id)
				c.Set("role", role)
			}
		}
		return next(c)
	}
}

func (m *Middleware) RequireUser(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := bearer(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		id, role, err := m.Issuer.Parse(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized")
		}
		c.Set("user_id", id)
		c.Set("role", role)
		return next(c)
	}
}

func (m *Middleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireUser(func(c echo.Context) error {
		if role, _ := c.Get("role").(string); role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	})
}

// UserID returns the resolved user, nil for anonymous requests.
func UserID(c echo.Context) *uint {
	if v, ok := c.Get("user_id").(uint); ok {
		return &v
	}
	return nil
}

func bearer(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
