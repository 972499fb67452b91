package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the root and health endpoints.
type HealthHandler struct {
	name    string
	version string
	store   Pinger
}

// NewHealthHandler creates a health handler.
func NewHealthHandler(name, version string, store Pinger) *HealthHandler {
	return &HealthHandler{name: name, version: version, store: store}
}

// Root godoc
// @Summary Service banner
// @Tags meta
// @Produce json
// @Success 200 {object} Response{data=map[string]string}
// @Router / [get]
func (h *HealthHandler) Root(c echo.Context) error {
	return respond(c, http.StatusOK, map[string]string{
		"message": "Welcome to " + h.name,
		"version": h.version,
		"docs":    "/swagger/index.html",
	})
}

// Health godoc
// @Summary Liveness and store reachability
// @Tags meta
// @Produce json
// @Success 200 {object} Response{data=map[string]string}
// @Failure 503 {object} errors.ErrorResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.store.Ping(ctx); err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unreachable")
	}
	return respond(c, http.StatusOK, map[string]string{"status": "healthy"})
}
