package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger is anything the health check can probe: a Redis client wrapper,
// a *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc adapts a plain function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// HealthHandler reports liveness plus the state of optional backends.  A
// failing backend degrades the report but never fails the check: the
// booking flow still works against the authority without them.
type HealthHandler struct {
	Checks   map[string]Pinger
	Sessions func() int
}

// Health answers 200 with {"status":"ok"} and one entry per backend.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	backends := make(map[string]string, len(h.Checks))
	for name, p := range h.Checks {
		if err := p.PingContext(ctx); err != nil {
			backends[name] = err.Error()
			status = "degraded"
			continue
		}
		backends[name] = "ok"
	}
	out := echo.Map{"status": status, "backends": backends}
	if h.Sessions != nil {
		out["sessions"] = h.Sessions()
	}
	return c.JSON(http.StatusOK, out)
}
