// Package domain holds the recommendation consumer types
package domain

import (
	"context"

	"contextual/internal/adapters/dingtalk"
	"contextual/internal/core/policy"
)

// Candidate is an issue ranked by similarity; Score is 1 - cosine distance
type Candidate struct {
	Key   string
	Score float64
}

// Recommendation is what the consumer decided to present
type Recommendation struct {
	Top1 string
	// Score is nil when the result degraded to the default key
	Score      *float64
	Candidates []Candidate
	// Degraded names why no score exists: embed, search or empty
	Degraded string
}

// Notification is one dispatched card, keyed by the queue message id
type Notification struct {
	MessageID      string
	TraceID        string
	TenantID       string
	CommitHash     string
	RecommendedKey string
	Confidence     *float64
}

// Outcome is what Process decided for a message
type Outcome uint8

const (
	// OutcomeNotified means a card went out and the row was written; ack
	OutcomeNotified Outcome = iota
	// OutcomeDropped means the score fell below the gate; ack
	OutcomeDropped
	// OutcomeDuplicate means the trace id was already notified; ack
	OutcomeDuplicate
	// OutcomeRetry means dispatch or persistence failed; nack with requeue
	OutcomeRetry
	// OutcomeRejected means the body could not be decoded; nack without requeue
	OutcomeRejected
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNotified:
		return "notified"
	case OutcomeDropped:
		return "dropped"
	case OutcomeDuplicate:
		return "duplicate"
	case OutcomeRetry:
		return "retry"
	case OutcomeRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Ack reports whether the outcome acknowledges the message
func (o Outcome) Ack() bool { return o <= OutcomeDuplicate }

// Config is the consumer configuration
type Config struct {
	ProjectKey string
	TopK       int
	DefaultKey string
	// TenantID is used when an event carries none
	TenantID string
	Gate     policy.Gate
	Card     dingtalk.CardOptions
}

// Searcher ranks issues of a project by similarity to vec
type Searcher interface {
	Search(ctx context.Context, project string, vec []float32, k int) ([]Candidate, error)
}

// NotificationStore persists dispatched cards
type NotificationStore interface {
	SaveNotification(ctx context.Context, n Notification) error
}

// Stats counts outcomes since start
type Stats struct {
	Processed uint64 `json:"processed"`
	Notified  uint64 `json:"notified"`
	Dropped   uint64 `json:"dropped"`
	Duplicate uint64 `json:"duplicate"`
	Retried   uint64 `json:"retried"`
	Rejected  uint64 `json:"rejected"`
}
