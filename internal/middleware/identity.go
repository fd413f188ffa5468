package middleware

// identity.go defines helper functions shared across middleware files and
// handlers. The identity provider is treated as an oracle that answers one
// question: who is the caller. CallerEmail pulls the answer out of the
// request context populated by JWTAuth. When no token is present or the
// claim is missing, "" is returned and the caller is treated as anonymous.

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// CallerEmail extracts the authenticated caller's email from context.
// It returns "" when no user is authenticated. Emails are normalized
// to lowercase so allowlist lookups behave consistently.
func CallerEmail(c echo.Context) string {
	v := c.Get("email")
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return ""
}
