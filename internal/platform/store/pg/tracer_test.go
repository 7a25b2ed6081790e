package pg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"contextual/internal/platform/logger"

	"github.com/pgvector/pgvector-go"
	"github.com/rs/zerolog"
)

func TestCompact(t *testing.T) {
	cases := map[string]string{
		"select 1":                           "select 1",
		"  select   1  ":                     " select 1 ",
		"SELECT\t*\nFROM\r\tt WHERE  a =  1": "SELECT * FROM t WHERE a = 1",
		"":                                   "",
	}
	for in, want := range cases {
		if got := compact(in); got != want {
			t.Fatalf("compact(%q) = %q, want %q", in, got, want)
		}
	}
}

type logLine struct {
	Level     string  `json:"level"`
	ElapsedMS float64 `json:"elapsed_ms"`
	Slow      bool    `json:"slow"`
	SQL       string  `json:"sql"`
	Args      []any   `json:"args"`
	Error     string  `json:"error"`
	Component string  `json:"component"`
	TraceID   string  `json:"trace_id"`
}

func TestTracerLevelsAndFields(t *testing.T) {
	var buf bytes.Buffer
	tr := Tracer(zerolog.New(&buf))

	ctx := logger.WithEvent(context.Background(), "trace-1", "abc123")
	ev := QueryEvent{
		SQL:       "SELECT jira_key\n FROM  jira_issues",
		Args:      []any{pgvector.NewVector([]float32{0.1, 0.2, 0.3}), "SCRUM", 3},
		ElapsedUS: 12345,
		Err:       errors.New("boom"),
	}
	tr.OnQuery(ctx, ev)

	var line logLine
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal: %v raw=%s", err, buf.String())
	}
	if line.Level != "info" || line.Slow || line.Component != "pg" {
		t.Fatalf("unexpected header fields: %+v", line)
	}
	if line.SQL != "SELECT jira_key FROM jira_issues" {
		t.Fatalf("sql = %q", line.SQL)
	}
	if line.Args[0] != "vector(3)" || line.Args[1] != "SCRUM" {
		t.Fatalf("args = %#v", line.Args)
	}
	if line.Error != "boom" || line.TraceID != "trace-1" {
		t.Fatalf("error/trace mismatch: %+v", line)
	}
	if line.ElapsedMS < 12.34 || line.ElapsedMS > 12.35 {
		t.Fatalf("elapsed_ms = %v", line.ElapsedMS)
	}

	buf.Reset()
	ev.Slow = true
	tr.OnQuery(context.Background(), ev)
	line = logLine{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("unmarshal slow: %v", err)
	}
	if line.Level != "warn" || !line.Slow || line.TraceID != "" {
		t.Fatalf("slow line mismatch: %+v", line)
	}
}
