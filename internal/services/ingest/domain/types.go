// Package domain holds the webhook ingestor contract
package domain

import (
	"context"

	gh "contextual/internal/adapters/ingest/github"
)

// DefaultRepo names pushes that carry no repository block
const DefaultRepo = "unknown/repo"

// Ack is the POST /ingest/git response body
type Ack struct {
	Accepted  bool `json:"accepted"`
	Published int  `json:"published"`
}

// Push is a verified push delivery
type Push struct {
	// Event is the X-GitHub-Event header, push when absent
	Event string
	Body  gh.PushEvent
}

// ServicePort is implemented by the ingest service
type ServicePort interface {
	Ingest(ctx context.Context, in Push) (Ack, error)
}
