package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/mageytel/mageypack-service/internal/handler"
)

// RegisterRoutes registers the routes that bypass the session guard.
// Currently that is the health check only; even read endpoints in this
// domain require a session.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints.  Login is the
// only credential-bearing route and carries the rate limiter;
// check-session performs its own cookie resolution so the guard is not
// applied here.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, loginLimiter echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/login", a.Login, loginLimiter)
	g.POST("/logout", a.Logout)
	g.GET("/check-session", a.CheckSession)
}

// RegisterAPI registers every data endpoint behind the session guard.
// The response cache applies to the full listing only: single-row
// reads are cheap and the variants listing feeds the edit workflow,
// which must never see stale rows.
func RegisterAPI(e *echo.Echo, guard, cache echo.MiddlewareFunc,
	rn *handler.RecnoHandler, rh *handler.RecommendationHandler, ph *handler.PackageHandler) {

	api := e.Group("", guard)

	api.GET("/recno", rn.Next)

	api.GET("/recommendations", rh.List, cache)
	api.POST("/recommendations", rh.Create)
	api.GET("/recommendations/:id", rh.Get)
	api.PUT("/recommendations/:id", rh.Update)
	api.DELETE("/recommendations/:id", rh.Delete)

	api.POST("/packages", ph.Create)
	api.POST("/packages/:id/diff", ph.Diff)
	api.PUT("/packages/:id/apply", ph.Apply)
}
