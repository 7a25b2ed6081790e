package dial

import (
	"context"
	"testing"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/queue"
	"contextual/internal/platform/queue/pgq"
	"contextual/internal/platform/store"
)

type nopDB struct{ store.TxRunner }

func TestOpen(t *testing.T) {
	ctx := context.Background()
	if _, err := Open(ctx, queue.Config{Driver: queue.DriverPG}, nil); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("pg without db: %v", err)
	}
	if _, err := Open(ctx, queue.Config{Driver: "sqs"}, nil); err == nil {
		t.Fatalf("unknown driver accepted")
	}
	q, err := Open(ctx, queue.Config{Driver: queue.DriverPG}, nopDB{})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := q.(*pgq.Queue); !ok {
		t.Fatalf("got %T", q)
	}
}
