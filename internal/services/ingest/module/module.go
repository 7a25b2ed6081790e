// Package module wires the ingestor into a binary using modkit
package module

import (
	modkit "contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/platform/config"
	"contextual/internal/platform/queue"

	ihttp "contextual/internal/services/ingest/http"
	isvc "contextual/internal/services/ingest/service"
)

// Ports declares what the module needs injected
type Ports struct {
	Publisher queue.Publisher
}

// Options is the INGEST_* configuration
type Options struct {
	Secret   string
	TenantID string
	MaxBody  int64
}

// FromConfig reads INGEST_* values; the webhook secret is required
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("INGEST_")
	return Options{
		Secret:   c.MustString("WEBHOOK_SECRET"),
		TenantID: c.MayString("TENANT_ID", "tenant-demo"),
		MaxBody:  int64(c.MayInt("MAX_BODY", 5<<20)),
	}
}

// Module implements modkit.Module
type Module struct {
	b   modkit.Built
	opt Options
	svc isvc.Service
}

// New builds the module; the Publisher port is required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("ingest", opts...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}
	if injected.Publisher == nil {
		panic("ingest module requires a Publisher port")
	}

	opt := FromConfig(deps.Cfg)
	return &Module{
		b:   b,
		opt: opt,
		svc: isvc.New(injected.Publisher, isvc.Options{TenantID: opt.TenantID}),
	}
}

// MountRoutes implements modkit.Module
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) {
		ihttp.Register(r, m.svc, ihttp.Options{Secret: []byte(m.opt.Secret), MaxBody: m.opt.MaxBody})
	})
}

// Name implements modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports exposes the service for other modules
func (m *Module) Ports() any { return m.svc }
