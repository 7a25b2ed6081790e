// Package event defines the canonical commit event carried on the queue
package event

import (
	"encoding/json"
	"strings"

	perr "contextual/internal/platform/errors"
)

const (
	// SchemaVersion is stamped on every envelope the ingestor writes
	SchemaVersion = "1.0"

	// TypeGitCommitRaw is the only event type on the topic today
	TypeGitCommitRaw = "git_commit_raw"

	// ShortHashLen is the length of commit_hash
	ShortHashLen = 12

	// MaxFiles bounds the paths carried per commit
	MaxFiles = 10
)

// Envelope is the queue message body
type Envelope struct {
	SchemaVersion string  `json:"schema_version"`
	TraceID       string  `json:"trace_id"`
	TenantID      string  `json:"tenant_id"`
	EventType     string  `json:"event_type"`
	Payload       Payload `json:"payload"`
}

// Payload is the commit body. The ingestor fills the first block; the rest are
// alternate shapes older producers sent and the parser falls back to
type Payload struct {
	Repo         string   `json:"repo,omitempty"`
	CommitHash   string   `json:"commit_hash,omitempty"`
	AuthorEmail  string   `json:"author_email,omitempty"`
	Message      string   `json:"message,omitempty"`
	FilesChanged int      `json:"files_changed"`
	Files        []string `json:"files,omitempty"`

	CommitMessage string      `json:"commit_message,omitempty"`
	Repository    *Repository `json:"repository,omitempty"`
	HeadCommit    *RawCommit  `json:"head_commit,omitempty"`
	Commits       []RawCommit `json:"commits,omitempty"`
}

// Repository is the provider repository block
type Repository struct {
	FullName string `json:"full_name"`
}

// RawCommit is a provider commit entry
type RawCommit struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Added    []string `json:"added,omitempty"`
	Modified []string `json:"modified,omitempty"`
	Removed  []string `json:"removed,omitempty"`
}

// CommitEvent is the resolved view the consumer works with
type CommitEvent struct {
	TraceID      string
	TenantID     string
	Repo         string
	CommitHash   string
	AuthorEmail  string
	Message      string
	FilesChanged int
	Files        []string

	// Payload is kept for query building, which reads the alternate shapes too
	Payload Payload
}

// Commit is the ingestor's input for one commit
type Commit struct {
	ID          string
	Repo        string
	AuthorEmail string
	Message     string
	Changed     int
	Files       []string
}

// New builds the envelope for one pushed commit. trace_id is the commit id
func New(tenantID string, c Commit) Envelope {
	files := c.Files
	if len(files) > MaxFiles {
		files = files[:MaxFiles]
	}
	return Envelope{
		SchemaVersion: SchemaVersion,
		TraceID:       c.ID,
		TenantID:      tenantID,
		EventType:     TypeGitCommitRaw,
		Payload: Payload{
			Repo:         c.Repo,
			CommitHash:   ShortHash(c.ID),
			AuthorEmail:  c.AuthorEmail,
			Message:      c.Message,
			FilesChanged: c.Changed,
			Files:        files,
		},
	}
}

// ShortHash returns the first ShortHashLen bytes of id
func ShortHash(id string) string {
	if len(id) > ShortHashLen {
		return id[:ShortHashLen]
	}
	return id
}

// Parse decodes a queue body and resolves the optional fields:
//
//	repo        payload.repo, then payload.repository.full_name
//	commit_hash payload.commit_hash, then head_commit.id, then trace_id (shortened)
//	trace_id    envelope trace_id, then head_commit.id
//
// A body that is not JSON, or that yields no trace id, is rejected
func Parse(body []byte) (CommitEvent, error) {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return CommitEvent{}, perr.Wrap(err, perr.ErrorCodeJSON, "decode commit event")
	}
	p := env.Payload

	trace := strings.TrimSpace(env.TraceID)
	if trace == "" && p.HeadCommit != nil {
		trace = p.HeadCommit.ID
	}
	if trace == "" {
		return CommitEvent{}, perr.WithField(perr.Validationf("commit event has no trace id"), "trace_id")
	}

	ev := CommitEvent{
		TraceID:      trace,
		TenantID:     env.TenantID,
		Repo:         ResolveRepo(p),
		CommitHash:   p.CommitHash,
		AuthorEmail:  p.AuthorEmail,
		Message:      p.Message,
		FilesChanged: p.FilesChanged,
		Files:        p.Files,
		Payload:      p,
	}
	if ev.CommitHash == "" && p.HeadCommit != nil {
		ev.CommitHash = ShortHash(p.HeadCommit.ID)
	}
	if ev.CommitHash == "" {
		ev.CommitHash = ShortHash(trace)
	}
	return ev, nil
}

// ResolveRepo returns payload.repo, then repository.full_name, else ""
func ResolveRepo(p Payload) string {
	if p.Repo != "" {
		return p.Repo
	}
	if p.Repository != nil {
		return p.Repository.FullName
	}
	return ""
}
