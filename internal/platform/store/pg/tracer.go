package pg

import (
	"context"
	"fmt"
	"strings"

	"contextual/internal/platform/logger"

	"github.com/rs/zerolog"
)

// QueryEvent is one statement as seen by the sql adapter
type QueryEvent struct {
	SQL       string
	Args      []any
	ElapsedUS int64
	Err       error
	Slow      bool
}

// QueryTracer receives every statement when SQL logging is on
type QueryTracer interface {
	OnQuery(ctx context.Context, ev QueryEvent)
}

// Tracer logs statements at info (warn when slow) regardless of the root level
func Tracer(root logger.Logger) QueryTracer {
	return &zlTracer{log: root.Level(zerolog.DebugLevel).With().Str("component", "pg").Logger()}
}

type zlTracer struct{ log logger.Logger }

func (z *zlTracer) OnQuery(ctx context.Context, ev QueryEvent) {
	evt := z.log.Info()
	if ev.Slow {
		evt = z.log.Warn()
	}
	if id := logger.TraceID(ctx); id != "" {
		evt = evt.Str("trace_id", id)
	}
	evt.Float64("elapsed_ms", float64(ev.ElapsedUS)/1000.0).
		Bool("slow", ev.Slow).
		Str("sql", compact(ev.SQL)).
		Interface("args", summarize(ev.Args)).
		Err(ev.Err).
		Msg("pg query")
}

// vectorish matches pgvector.Vector without importing it here
type vectorish interface{ Slice() []float32 }

// summarize replaces embedding arguments with their dimension so logs stay readable
func summarize(args []any) []any {
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case vectorish:
			out[i] = fmt.Sprintf("vector(%d)", len(v.Slice()))
		case []float32:
			out[i] = fmt.Sprintf("vector(%d)", len(v))
		default:
			out[i] = a
		}
	}
	return out
}

// compact folds runs of whitespace into one space
func compact(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\n', '\t', '\r':
			if !space {
				b.WriteByte(' ')
				space = true
			}
		default:
			space = false
			b.WriteRune(r)
		}
	}
	return b.String()
}
