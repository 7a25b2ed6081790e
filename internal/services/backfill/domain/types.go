// Package domain holds the types for the issue embedding backfill
package domain

import (
	"context"
	"time"
)

// Issue is one indexed ticket still missing its embedding
type Issue struct {
	ID          int64
	Key         string
	Title       string
	Description string
}

// Vector is one embedding ready to be written back
type Vector struct {
	ID        int64
	Embedding []float32
}

// Hit is a ranked search result as printed by the operator search
type Hit struct {
	Key       string     `json:"jira_key"`
	Title     string     `json:"title"`
	Status    string     `json:"status"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	Score     float64    `json:"score"`
}

// Request scopes one backfill run
type Request struct {
	Project string
	Batch   int
	Limit   int
}

// Report summarizes a finished run
type Report struct {
	Embedded int    `json:"embedded"`
	Batches  int    `json:"batches"`
	Last     string `json:"last,omitempty"`
}

// RunnerPort is the public port the operator CLI calls
type RunnerPort interface {
	Run(ctx context.Context, req Request) (Report, error)
	Search(ctx context.Context, project, text string, k int) ([]Hit, error)
}
