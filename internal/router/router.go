// Package router wires handlers and middleware onto an Echo instance.
package router

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/handler"
	"github.com/iliyamo/artisanedge/internal/middleware"
	"github.com/iliyamo/artisanedge/internal/session"
)

// Options carries what the storage-origin routes need.
type Options struct {
	Sessions     *session.Factory
	OriginSecret string
	OriginTTL    time.Duration
	// Limiter guards signup and login; nil means unlimited.
	Limiter echo.MiddlewareFunc
}

// RegisterRoutes registers routes that need no storage origin.
func RegisterRoutes(e *echo.Echo, h handler.Health) {
	e.GET("/healthz", h.Handle)
}

// RegisterAuth registers the session API and the guarded pages under /v1.
// Every /v1 request is bound to a storage origin first.
func RegisterAuth(e *echo.Echo, o Options, a *handler.AuthHandler, p *handler.PageHandler) {
	v1 := e.Group("/v1", middleware.Origin(o.OriginSecret, o.OriginTTL), middleware.Session(o.Sessions))

	limited := []echo.MiddlewareFunc{}
	if o.Limiter != nil {
		limited = append(limited, o.Limiter)
	}

	g := v1.Group("/auth")
	g.POST("/signup", a.Signup, limited...)
	g.POST("/login", a.Login, limited...)
	g.POST("/logout", a.Logout)
	g.GET("/session", a.Session)
	g.GET("/roles/:role", a.HasRole)
	g.PUT("/redirect", a.SetRedirect)
	g.GET("/redirect", a.TakeRedirect)

	v1.GET("/nav", a.Nav)

	pages := v1.Group("/pages", middleware.RedirectIfLoggedIn())
	pages.GET("/signin", p.AuthPage("signin"))
	pages.GET("/signup", p.AuthPage("signup"))

	login := middleware.RequireLogin()
	v1.GET("/me", p.Me, login)
	v1.GET("/artisan/dashboard", p.Dashboard(session.RoleArtisan), login, middleware.RequireRole(session.RoleArtisan))
	v1.GET("/influencer/dashboard", p.Dashboard(session.RoleInfluencer), login, middleware.RequireRole(session.RoleInfluencer))
	v1.GET("/customer/dashboard", p.Dashboard(session.RoleCustomer), login, middleware.RequireRole(session.RoleCustomer))
}
