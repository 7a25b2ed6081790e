// Package module wires the feedback reconciler into a binary using modkit
package module

import (
	"time"

	modkit "contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/modkit/repokit"
	"contextual/internal/platform/config"

	fhttp "contextual/internal/services/feedback/http"
	frepo "contextual/internal/services/feedback/repo"
	fsvc "contextual/internal/services/feedback/service"
)

// Options bound the reconciler transaction
type Options struct {
	StatementTimeout time.Duration
	LockTimeout      time.Duration
}

// FromConfig reads CALLBACK_* values
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CALLBACK_")
	return Options{
		StatementTimeout: c.MayDuration("STMT_TIMEOUT", 5*time.Second),
		LockTimeout:      c.MayDuration("LOCK_TIMEOUT", 2*time.Second),
	}
}

// Module implements modkit.Module
type Module struct {
	b   modkit.Built
	svc fsvc.Service
}

// New builds the module; postgres is required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("feedback", opts...)
	o := FromConfig(deps.Cfg)

	db := repokit.WithBeginHooks(deps.RequirePG("feedback"),
		repokit.StatementTimeout(o.StatementTimeout),
		repokit.LockTimeout(o.LockTimeout),
	)
	return &Module{b: b, svc: fsvc.New(db, frepo.NewPG())}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) { fhttp.Register(r, m.svc) })
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports exposes the service
func (m *Module) Ports() any { return m.svc }
