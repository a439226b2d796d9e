package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/middleware"
	"github.com/iliyamo/artisanedge/internal/session"
)

// PageHandler answers the guarded storefront pages. Guards run as
// middleware; by the time these execute the caller is allowed in.
type PageHandler struct{}

func NewPageHandler() *PageHandler { return &PageHandler{} }

// AuthPage serves the sign-in or sign-up page to signed-out callers.
func (p *PageHandler) AuthPage(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"page": name})
	}
}

// Me returns the signed-in user.
func (p *PageHandler) Me(c echo.Context) error {
	ctx, cancel := opCtx(c)
	defer cancel()
	s := middleware.SessionFrom(c)
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return failure(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user})
}

// Dashboard serves the role-specific landing page.
func (p *PageHandler) Dashboard(role session.Role) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := opCtx(c)
		defer cancel()
		user, err := middleware.SessionFrom(c).CurrentUser(ctx)
		if err != nil {
			return failure(c, err)
		}
		return c.JSON(http.StatusOK, echo.Map{"dashboard": role, "user": user})
	}
}
