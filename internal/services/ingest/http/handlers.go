// Package http provides http transport for the ingestor
package http

import (
	"net/http"

	gh "contextual/internal/adapters/ingest/github"
	"contextual/internal/modkit/httpkit"
	"contextual/internal/platform/net/middleware"
	"contextual/internal/services/ingest/domain"
)

// Options carry the transport knobs
type Options struct {
	Secret  []byte
	MaxBody int64
}

type handlers struct {
	svc     domain.ServicePort
	maxBody int64
}

// Register mounts POST /ingest/git behind the signature check; a bad signature
// is answered before the body is parsed
func Register(r httpkit.Router, s domain.ServicePort, opt Options) {
	h := &handlers{svc: s, maxBody: opt.MaxBody}
	r.Group(func(g httpkit.Router) {
		g.Use(middleware.SignedBody(gh.SignatureHeader, opt.MaxBody, gh.Verifier(opt.Secret)))
		g.Post("/ingest/git", httpkit.Handle(h.ingest))
	})
}

// swagger:route POST /ingest/git Ingest ingestGit
// @Summary GitHub push webhook
// @Description Checks X-Hub-Signature-256 over the raw body, then queues one event per commit
// @Tags Ingest
// @Accept json
// @Produce json
// @Param X-Hub-Signature-256 header string true "sha256=<hex hmac of the raw body>"
// @Param X-GitHub-Event header string false "push when absent; other events are accepted and skipped"
// @Param payload body gh.PushEvent true "Push payload"
// @Success 200 {object} domain.Ack "accepted"
// @Failure 401 "missing or bad signature"
// @Failure 503 "queue unavailable"
// @Router /ingest/git [post]
func (h *handlers) ingest(r *http.Request) httpkit.Response {
	body, err := httpkit.ParseJSON[gh.PushEvent](r, httpkit.JSONOptions{MaxBytes: h.maxBody})
	if err != nil {
		return httpkit.Error(err)
	}
	res, err := h.svc.Ingest(r.Context(), domain.Push{Event: r.Header.Get(gh.EventHeader), Body: body})
	if err != nil {
		return httpkit.Error(err)
	}
	return httpkit.Bare(res)
}
