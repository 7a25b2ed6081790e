// Package module provides the backfill module implementation
package module

import (
	"contextual/internal/adapters/embedding"
	"contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"

	"contextual/internal/services/backfill/domain"
	"contextual/internal/services/backfill/repo"
	"contextual/internal/services/backfill/service"
)

// Ports declares what the module needs injected
type Ports struct {
	Embedder embedding.Embedder
	Dim      int
}

// Module implements the backfill module
type Module struct {
	b      modkit.Built
	runner domain.RunnerPort
}

// New constructs the backfill module; postgres and an Embedder are required.
// It mounts no routes, the operator CLI drives it through Runner
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("backfill", opts...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	svc := service.New(deps.RequirePG("backfill"), repo.NewPG(), injected.Embedder, injected.Dim, FromConfig(deps.Cfg))
	return &Module{b: b, runner: svc}
}

// Name returns the module name
func (m *Module) Name() string { return m.b.Name }

// Ports returns the module ports
func (m *Module) Ports() any { return m.runner }

// MountRoutes is a no-op as backfill has no routes
func (m *Module) MountRoutes(httpkit.Router) {}
