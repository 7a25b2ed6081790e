// Package domain holds the feedback reconciler rules
package domain

import (
	"context"
	"strings"
)

// CallbackQuery is the query string of GET /callback/{provider}
// jira is the legacy single key; top1 and selected are newer and optional
type CallbackQuery struct {
	TraceID  string  `query:"trace_id" validate:"required,max=200"`
	Commit   string  `query:"commit" validate:"required,max=64"`
	Jira     string  `query:"jira" validate:"required,max=100"`
	Feedback *bool   `query:"feedback" validate:"required"`
	Top1     *string `query:"top1" validate:"omitempty,max=100"`
	Selected *string `query:"selected" validate:"omitempty,max=100"`
}

// Resolved is the callback after legacy fallbacks are applied
type Resolved struct {
	TraceID     string
	Commit      string
	Jira        string
	Feedback    bool
	Recommended string
	Selected    string
	// Corrected is Selected when the user confirmed a key other than Recommended
	Corrected *string
	Provider  string
}

// Resolve applies the fallbacks: recommended is top1 else jira, selected is
// selected else jira, corrected is selected only on a confirmed change
func Resolve(q CallbackQuery) Resolved {
	r := Resolved{
		TraceID:     q.TraceID,
		Commit:      q.Commit,
		Jira:        q.Jira,
		Feedback:    q.Feedback != nil && *q.Feedback,
		Recommended: orElse(q.Top1, q.Jira),
		Selected:    orElse(q.Selected, q.Jira),
	}
	if r.Feedback && r.Selected != r.Recommended {
		c := r.Selected
		r.Corrected = &c
	}
	return r
}

func orElse(p *string, def string) string {
	if p != nil && *p != "" {
		return *p
	}
	return def
}

// ProjectKey returns the text before the first "-" of key, nil when there is none
func ProjectKey(key string) *string {
	i := strings.IndexByte(key, '-')
	if i <= 0 {
		return nil
	}
	p := key[:i]
	return &p
}

// Interaction is one row of interaction_log
type Interaction struct {
	TraceID     string
	Commit      string
	Recommended string
	Feedback    bool
	Corrected   *string
}

// Link is the commit_links row written on confirmed feedback
type Link struct {
	Commit     string
	JiraKey    string
	ProjectKey *string
	Confidence *float64
	TraceID    string
}

// Result is the callback response body
type Result struct {
	OK        bool    `json:"ok"`
	TraceID   string  `json:"trace_id"`
	Commit    string  `json:"commit"`
	Jira      string  `json:"jira"`
	Feedback  bool    `json:"feedback"`
	Top1      string  `json:"top1"`
	Selected  string  `json:"selected"`
	Corrected *string `json:"corrected"`
	Linked    bool    `json:"linked"`
}

// ServicePort is implemented by the feedback service
type ServicePort interface {
	Reconcile(ctx context.Context, in Resolved) (Result, error)
}
