// Package module wires the meta endpoints as a modkit module
package module

import (
	"time"

	modkit "contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"

	metahttp "contextual/internal/services/meta/http"
)

// Module implements modkit.Module
type Module struct {
	b    modkit.Built
	deps metahttp.Deps
}

// New builds the meta module for service; checks are run by /meta/ready
func New(_ modkit.Deps, service string, checks []metahttp.Check, opts ...modkit.Option) *Module {
	return &Module{
		b: modkit.Build("meta", opts...),
		deps: metahttp.Deps{
			ServiceName: service,
			StartedAt:   time.Now(),
			Checks:      checks,
		},
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { metahttp.Register(r, m.deps) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports implements modkit.Module
func (m *Module) Ports() any { return nil }
