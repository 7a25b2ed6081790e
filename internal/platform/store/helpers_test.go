package store

import (
	"context"
	"errors"
	"testing"

	perr "contextual/internal/platform/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeQ struct {
	tag     pgconn.CommandTag
	execErr error
	rowErr  error
	rowVal  any
	rows    *fakeRows
}

func (f *fakeQ) Exec(context.Context, string, ...any) (CommandTag, error) { return f.tag, f.execErr }
func (f *fakeQ) Query(context.Context, string, ...any) (Rows, error) {
	if f.rows == nil {
		return nil, errors.New("no rows configured")
	}
	return f.rows, nil
}
func (f *fakeQ) QueryRow(context.Context, string, ...any) Row { return fakeRow{f} }

type fakeRow struct{ f *fakeQ }

func (r fakeRow) Scan(dst ...any) error {
	if r.f.rowErr != nil {
		return r.f.rowErr
	}
	switch p := dst[0].(type) {
	case *int64:
		*p = r.f.rowVal.(int64)
	case *string:
		*p = r.f.rowVal.(string)
	}
	return nil
}

type fakeRows struct {
	vals   []string
	i      int
	closed bool
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.vals) }
func (r *fakeRows) Scan(dst ...any) error {
	*(dst[0].(*string)) = r.vals[r.i-1]
	return nil
}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     { r.closed = true }

func TestExecOne(t *testing.T) {
	ctx := context.Background()
	if err := ExecOne(ctx, &fakeQ{tag: pgconn.NewCommandTag("UPDATE 1")}, "x"); err != nil {
		t.Fatalf("UPDATE 1 should pass: %v", err)
	}
	if err := ExecOne(ctx, &fakeQ{tag: pgconn.NewCommandTag("UPDATE 0")}, "x"); err == nil {
		t.Fatalf("UPDATE 0 should fail")
	}
	// "UPDATE 11" contains a 1 but is not one row
	if err := ExecOne(ctx, &fakeQ{tag: pgconn.NewCommandTag("UPDATE 11")}, "x"); err == nil {
		t.Fatalf("UPDATE 11 should fail")
	}
	boom := errors.New("boom")
	if err := ExecOne(ctx, &fakeQ{execErr: boom}, "x"); !errors.Is(err, boom) {
		t.Fatalf("exec error not propagated: %v", err)
	}
}

func TestScalar(t *testing.T) {
	ctx := context.Background()
	n, err := Scalar[int64](ctx, &fakeQ{rowVal: int64(7)}, "select count(*)")
	if err != nil || n != 7 {
		t.Fatalf("Scalar = %d, %v", n, err)
	}
	_, err = Scalar[string](ctx, &fakeQ{rowErr: pgx.ErrNoRows}, "select")
	if !perr.IsNotFound(err) {
		t.Fatalf("no rows should map to not found, got %v", err)
	}
}

func TestMany(t *testing.T) {
	rs := &fakeRows{vals: []string{"SCRUM-1", "SCRUM-2"}}
	got, err := Many(context.Background(), &fakeQ{rows: rs}, func(r Row) (string, error) {
		var s string
		return s, r.Scan(&s)
	}, "select jira_key")
	if err != nil || len(got) != 2 || got[1] != "SCRUM-2" {
		t.Fatalf("Many = %v, %v", got, err)
	}
	if !rs.closed {
		t.Fatalf("rows not closed")
	}
}

func TestOpenWithoutBackends(t *testing.T) {
	s, err := Open(context.Background(), Config{})
	if err != nil || s.PG != nil {
		t.Fatalf("Open(empty) = %+v, %v", s, err)
	}
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping with no backends: %v", err)
	}
	if err := s.Close(context.Background()); err != nil {
		t.Fatalf("Close: %v", err)
	}
	var nilStore *Store
	if nilStore.Ping(context.Background()) == nil {
		t.Fatalf("nil store should fail ping")
	}
}
