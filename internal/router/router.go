package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/live-waitlist/internal/config"
	"github.com/iliyamo/live-waitlist/internal/handler"
	"github.com/iliyamo/live-waitlist/internal/middleware"
)

// RegisterRoutes registers routes that do not require authentication
// on the provided Echo instance. Currently it exposes only a health
// check. Load balancers and monitoring systems use this endpoint to
// verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes and their
// middleware. Unauthenticated operations live under /v1/auth, while
// the protected identity endpoint lives under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	// Logout does not require JWT authentication: the handler accepts
	// a JSON body containing a `refresh_token` and invalidates it.
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterQueue registers the entrant-facing queue surface: join,
// the redacted waiting list, per-entry position and the live
// websocket. None of these require a session token; the live
// endpoint optionally reads one from the handshake to upgrade the
// connection to the staff projection.
//
// The join endpoint sits behind the Redis token bucket so a single
// client cannot hammer code verification; the list endpoint sits
// behind the response cache because every kiosk in the room polls it.
func RegisterQueue(e *echo.Echo, j *handler.JoinHandler, v *handler.QueueViewHandler, l *handler.LiveHandler,
	limit echo.MiddlewareFunc, cache echo.MiddlewareFunc) {
	e.POST("/v1/queue/join", j.Join, limit)
	e.GET("/v1/queue", v.List, cache)
	e.GET("/v1/queue/position/:id", v.Position)
	e.GET("/v1/queue/live", l.Serve)
}

// RegisterStaff registers the privileged surface under /v1/staff.
// JWTAuth proves who the caller is, RequireRole rejects tokens that
// were never issued to an allowlisted email, and the handlers
// themselves re-check the allowlist on every request, so a staff member
// revoked mid-session still holds a STAFF token but every action is
// refused. A user allowlisted after sign-in picks the role up on the
// next token refresh.
func RegisterStaff(e *echo.Echo, s *handler.StaffHandler, cfg config.Config) {
	g := e.Group("/v1/staff")
	g.Use(middleware.JWTAuth(cfg.JWTSecret))
	g.Use(middleware.RequireRole(handler.RoleStaff))
	g.GET("/entries", s.List)
	g.POST("/entries/:id/serve", s.Serve)
	g.POST("/entries/:id/return", s.Return)
	g.DELETE("/entries/:id", s.Remove)
	g.GET("/access-code", s.GetAccessCode)
	g.PUT("/access-code", s.SetAccessCode)
}
