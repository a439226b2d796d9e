package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/session"
)

// RequireLogin bounces signed-out clients to the sign-in page with 303 and
// remembers the page they asked for.
func RequireLogin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ok, err := SessionFrom(c).RequireLogin(c.Request().Context(), c.Request().URL.RequestURI())
			if err != nil {
				c.Logger().Errorf("require login: %v", err)
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": session.Message(err)})
			}
			if !ok {
				return c.Redirect(http.StatusSeeOther, OutcomeFrom(c).Redirect)
			}
			return next(c)
		}
	}
}

// RequireRole rejects signed-in users whose role is not one of roles with
// 403. Put it after RequireLogin.
func RequireRole(roles ...session.Role) echo.MiddlewareFunc {
	names := make([]string, 0, len(roles))
	for _, r := range roles {
		names = append(names, string(r)+"s")
	}
	msg := "Access restricted: This page is only for " + strings.Join(names, " and ") + "."

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			s := SessionFrom(c)
			for _, r := range roles {
				ok, err := s.HasRole(c.Request().Context(), r)
				if err != nil {
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": session.Message(err)})
				}
				if ok {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, echo.Map{"error": msg})
		}
	}
}

// RedirectIfLoggedIn keeps signed-in users off the sign-in and sign-up pages.
func RedirectIfLoggedIn() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			moved, err := SessionFrom(c).RedirectIfLoggedIn(c.Request().Context())
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": session.Message(err)})
			}
			if moved {
				return c.Redirect(http.StatusSeeOther, OutcomeFrom(c).Redirect)
			}
			return next(c)
		}
	}
}
