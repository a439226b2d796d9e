package middleware

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/utils"
)

const (
	OriginCookie = "artisanedge_origin"
	originKey    = "origin"
)

// Origin assigns every client a storage origin, the server-side stand-in
// for a browser's local storage. The id travels in a signed cookie; a
// missing, forged or expired cookie gets a brand new origin.
func Origin(secret string, ttl time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(OriginCookie); err == nil {
				if id, err := utils.ParseOrigin(secret, ck.Value); err == nil {
					c.Set(originKey, id)
					return next(c)
				}
			}
			tok, err := utils.NewOrigin(secret, ttl)
			if err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue origin failed"})
			}
			c.SetCookie(&http.Cookie{
				Name:     OriginCookie,
				Value:    tok.Token,
				Path:     "/",
				Expires:  tok.Exp,
				HttpOnly: true,
				Secure:   c.IsTLS(),
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(originKey, tok.ID)
			return next(c)
		}
	}
}

// OriginID returns the storage origin set by Origin, or "" outside it.
func OriginID(c echo.Context) string {
	if s, ok := c.Get(originKey).(string); ok {
		return s
	}
	return ""
}
