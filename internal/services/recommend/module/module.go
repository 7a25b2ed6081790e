// Package module wires the recommendation consumer into a binary using modkit
package module

import (
	"net/http"

	"contextual/internal/adapters/dedupe"
	"contextual/internal/adapters/dingtalk"
	"contextual/internal/adapters/embedding"
	"contextual/internal/core/policy"
	modkit "contextual/internal/modkit"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/platform/config"
	"contextual/internal/platform/queue"

	"contextual/internal/services/recommend/domain"
	rrepo "contextual/internal/services/recommend/repo"
	rsvc "contextual/internal/services/recommend/service"
)

// Ports declares what the module needs injected; Dedupe may be nil
type Ports struct {
	Source   queue.Source
	Embedder embedding.Embedder
	Notifier dingtalk.Sender
	Dedupe   dedupe.Set
}

// FromConfig reads RECO_*, DINGTALK_KEYWORD and PUBLIC_BASE_URL
func FromConfig(cfg config.Conf) domain.Config {
	rc := cfg.Prefix("RECO_")
	return domain.Config{
		ProjectKey: rc.MayString("PROJECT_KEY", "SCRUM"),
		TopK:       rc.MayInt("TOPK", 3),
		DefaultKey: rc.MayString("DEFAULT_KEY", "DEMO-1"),
		TenantID:   rc.MayString("TENANT_ID", "tenant-demo"),
		Gate: policy.Gate{
			Min: rc.MayFloat64("MIN_SCORE", 0.70),
			Low: rc.MayFloat64("LOW_SCORE", 0.80),
		},
		Card: dingtalk.CardOptions{
			CallbackBase: cfg.MayURL("PUBLIC_BASE_URL", "http://localhost:8003"),
			Provider:     "dingtalk",
			Keyword:      cfg.Prefix("DINGTALK_").MayString("KEYWORD", ""),
			WarnScore:    rc.MayFloat64("LOW_SCORE", 0.80),
		},
	}
}

// Module implements modkit.Module
type Module struct {
	b      modkit.Built
	cfg    domain.Config
	worker *rsvc.Worker
}

// New builds the module; postgres and the Source, Embedder and Notifier ports are required
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("recommend", opts...)

	var injected Ports
	if p, ok := b.Ports.(Ports); ok {
		injected = p
	}

	repo := rrepo.NewPG().Bind(deps.RequirePG("recommend"))
	cfg := FromConfig(deps.Cfg)
	w := rsvc.New(rsvc.Deps{
		Source:   injected.Source,
		Embedder: injected.Embedder,
		Searcher: repo,
		Notifier: injected.Notifier,
		Store:    repo,
		Dedupe:   injected.Dedupe,
	}, cfg)
	return &Module{b: b, cfg: cfg, worker: w}
}

// Worker returns the consumer to run
func (m *Module) Worker() *rsvc.Worker { return m.worker }

// Config returns the resolved configuration
func (m *Module) Config() domain.Config { return m.cfg }

// MountRoutes implements modkit.Module; it serves the outcome counters
func (m *Module) MountRoutes(r httpkit.Router) {
	m.b.Mount(r, func(r httpkit.Router) {
		httpkit.Get(r, "/reco/stats", m.stats)
	})
}

// swagger:route GET /reco/stats Recommend recoStats
// @Summary Consumer outcome counters since process start
// @Tags Recommend
// @Produce json
// @Success 200 {object} domain.Stats
// @Router /reco/stats [get]
func (m *Module) stats(*http.Request) (any, error) { return m.worker.Stats(), nil }

// Name implements modkit.Module
func (m *Module) Name() string { return m.b.Name }

// Ports exposes the worker
func (m *Module) Ports() any { return m.worker }
