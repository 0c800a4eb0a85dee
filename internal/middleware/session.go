package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/greenloop/ewaste-pickup/internal/utils"
)

// SessionCookieName is the cookie that carries the signed session
// token. The handlers that set and clear it use the same name.
const SessionCookieName = "auth"

// publicPrefixes lists the path prefixes admitted without a session.
// Everything else is protected by default. The auth endpoints must be
// public or nobody could ever log in; static assets and the health
// check are harmless.
var publicPrefixes = []string{
	"/healthz",
	"/v1/auth/",
	"/login",
	"/register",
	"/forgot-password",
	"/reset-password",
	"/static/",
	"/favicon.ico",
}

func isPublicPath(path string) bool {
	for _, p := range publicPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// wantsHTML reports whether a request came from a browser navigation
// rather than an API client, based on the Accept header. Browsers get
// redirected to the login page; API clients get a 401 body.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// SessionGate returns the request gate applied to every inbound call.
// Public paths pass through untouched. For everything else the gate
// requires a valid session cookie, verifies it against the signing
// secret and injects the claims into the request context under
// "user_id", "email" and "role" for handlers and downstream
// middleware.
func SessionGate(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if isPublicPath(c.Request().URL.Path) {
				return next(c)
			}
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return rejectUnauthenticated(c)
			}
			claims, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return rejectUnauthenticated(c)
			}
			c.Set("user_id", claims.UserID)
			c.Set("email", claims.Email)
			c.Set("role", claims.Role)
			return next(c)
		}
	}
}

func rejectUnauthenticated(c echo.Context) error {
	if wantsHTML(c.Request()) {
		return c.Redirect(http.StatusFound, "/login")
	}
	return c.JSON(http.StatusUnauthorized, echo.Map{"authenticated": false})
}
