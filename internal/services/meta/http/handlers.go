// Package http provides the health, readiness and version endpoints every binary serves
package http

import (
	"context"
	"net/http"
	"time"

	"contextual/internal/core/version"
	"contextual/internal/modkit/httpkit"
	perr "contextual/internal/platform/errors"
)

// Pinger is satisfied by stores and queue clients that expose Ping
type Pinger interface {
	Ping(context.Context) error
}

// Check is a named readiness check; a nil Pinger reports skipped
type Check struct {
	Name   string
	Pinger Pinger
}

// Deps are the handler dependencies
type Deps struct {
	ServiceName string
	StartedAt   time.Time
	Checks      []Check
	Timeout     time.Duration
}

type handlers struct {
	deps Deps
}

// Register mounts /health at the root and /meta/ready, /meta/version beneath it
func Register(r httpkit.Router, d Deps) {
	if d.Timeout <= 0 {
		d.Timeout = 2 * time.Second
	}
	h := &handlers{deps: d}

	httpkit.Get(r, "/health", h.health)
	r.Route("/meta", func(m httpkit.Router) {
		m.Get("/ready", httpkit.Handle(h.ready))
		httpkit.Get(m, "/version", h.version)
	})
}

// HealthResponse is the liveness payload
type HealthResponse struct {
	OK      bool   `json:"ok"`
	Service string `json:"service,omitempty"`
}

// ReadyCheck describes a single dependency check
type ReadyCheck struct {
	Name   string `json:"name"`
	Status string `json:"status"` // ok fail skipped
	Error  string `json:"error,omitempty"`
}

// ReadyResponse summarizes readiness
type ReadyResponse struct {
	Status string       `json:"status"` // ok fail
	Checks []ReadyCheck `json:"checks"`
	Uptime int64        `json:"uptime_s"`
}

// swagger:route GET /health Meta health
// @Summary Liveness
// @Tags Meta
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *handlers) health(_ *http.Request) (any, error) {
	return HealthResponse{OK: true, Service: h.deps.ServiceName}, nil
}

// ready answers 503 with the same body when any check fails
//
// swagger:route GET /meta/ready Meta ready
// @Summary Readiness of backing stores and the queue
// @Tags Meta
// @Produce json
// @Success 200 {object} ReadyResponse
// @Failure 503 {object} ReadyResponse
// @Router /meta/ready [get]
func (h *handlers) ready(r *http.Request) httpkit.Response {
	ctx, cancel := context.WithTimeout(r.Context(), h.deps.Timeout)
	defer cancel()

	out := ReadyResponse{
		Status: "ok",
		Checks: make([]ReadyCheck, 0, len(h.deps.Checks)),
		Uptime: int64(time.Since(h.deps.StartedAt) / time.Second),
	}
	for _, c := range h.deps.Checks {
		rc := ReadyCheck{Name: c.Name, Status: "ok"}
		switch {
		case c.Pinger == nil:
			rc.Status = "skipped"
		default:
			if err := c.Pinger.Ping(ctx); err != nil {
				rc.Status, rc.Error = "fail", perr.Root(err).Error()
				out.Status = "fail"
			}
		}
		out.Checks = append(out.Checks, rc)
	}

	resp := httpkit.Bare(out)
	if out.Status != "ok" {
		resp.Status = http.StatusServiceUnavailable
	}
	return resp
}

// swagger:route GET /meta/version Meta version
// @Summary Build information
// @Tags Meta
// @Produce json
// @Success 200 {object} version.BuildInfo
// @Router /meta/version [get]
func (h *handlers) version(_ *http.Request) (any, error) {
	return version.Info(h.deps.ServiceName), nil
}
