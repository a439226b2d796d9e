package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/artisanedge/internal/session"
)

const (
	sessionKey = "session"
	outcomeKey = "session_outcome"
)

// Outcome collects what the session asked to show or where it asked to
// navigate during one request.
type Outcome struct {
	Notices  []string
	Redirect string
}

// Session builds the request's session.Store for its storage origin. It
// must run after Origin.
func Session(f *session.Factory) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := OriginID(c)
			if origin == "" {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "no storage origin"})
			}
			out := &Outcome{}
			s := f.For(origin,
				session.WithNotifier(session.NotifierFunc(func(_ context.Context, msg string) {
					out.Notices = append(out.Notices, msg)
				})),
				session.WithNavigator(session.NavigatorFunc(func(_ context.Context, url string) {
					out.Redirect = url
				})),
			)
			c.Set(sessionKey, s)
			c.Set(outcomeKey, out)
			return next(c)
		}
	}
}

// SessionFrom returns the Store installed by Session.
func SessionFrom(c echo.Context) *session.Store {
	s, _ := c.Get(sessionKey).(*session.Store)
	return s
}

// OutcomeFrom returns the Outcome installed by Session.
func OutcomeFrom(c echo.Context) *Outcome {
	if o, ok := c.Get(outcomeKey).(*Outcome); ok {
		return o
	}
	return &Outcome{}
}
