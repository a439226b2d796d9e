package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports liveness and, when Check is set, whether the session
// backend answers. A failing backend yields 503 so load balancers drain the
// instance.
type Health struct {
	Backend string
	Check   func(ctx context.Context) error
}

func (h Health) Handle(c echo.Context) error {
	if h.Check == nil {
		return c.String(http.StatusOK, "ok")
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.Check(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "degraded", "backend": h.Backend, "error": err.Error()})
	}
	return c.String(http.StatusOK, "ok")
}
