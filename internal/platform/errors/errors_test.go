package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatusCodeMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeNotFound, http.StatusNotFound},
		{ErrorCodeInvalidArgument, http.StatusUnprocessableEntity},
		{ErrorCodeDuplicateKey, http.StatusConflict},
		{ErrorCodeValidation, http.StatusBadRequest},
		{ErrorCodeJSON, http.StatusBadRequest},
		{ErrorCodeUnauthorized, http.StatusUnauthorized},
		{ErrorCodeUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeDimensionMismatch, http.StatusInternalServerError},
		{ErrorCodeDB, http.StatusInternalServerError},
		{9999, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestCodeNames(t *testing.T) {
	if ErrorCodeUpstream.String() != "upstream" {
		t.Fatalf("upstream name = %q", ErrorCodeUpstream.String())
	}
	if ErrorCode(999).String() != "code_999" {
		t.Fatalf("fallback name = %q", ErrorCode(999).String())
	}
}

func TestWrapAndUnwrap(t *testing.T) {
	var e *Error
	if e.Error() != "<nil>" {
		t.Fatalf("nil *Error render = %q", e.Error())
	}

	src := stderrs.New("root")
	w := Wrapf(src, ErrorCodeUpstream, "dingtalk %s", "send")
	if w.Error() != "dingtalk send: root" {
		t.Fatalf("Wrapf().Error = %q", w.Error())
	}
	if !stderrs.Is(w, src) {
		t.Fatalf("wrapped cause lost")
	}
	if wf := WireFrom(w); wf.Message != "dingtalk send" || wf.Code != ErrorCodeUpstream {
		t.Fatalf("WireFrom leaked cause or code: %+v", wf)
	}
	if wf := WireFrom(src); wf.Code != ErrorCodeUnknown || wf.Message != "root" {
		t.Fatalf("WireFrom(foreign) = %+v", wf)
	}
	if WireFrom(nil) != (Wire{}) {
		t.Fatalf("WireFrom(nil) not zero")
	}
	if WrapIf(nil, ErrorCodeDB, "x") != nil {
		t.Fatalf("WrapIf(nil) should be nil")
	}

	deep := fmt.Errorf("l2: %w", fmt.Errorf("l1: %w", src))
	if Root(deep) != src {
		t.Fatalf("Root() = %v", Root(deep))
	}
}

func TestCopyOnWriteMutators(t *testing.T) {
	base := New(ErrorCodeValidation, "bad")
	f := WithField(base, "trace_id")
	o := WithOp(f, "callback.bind")

	if fe, _ := As(f); fe.Field() != "trace_id" {
		t.Fatalf("WithField failed")
	}
	if oe, _ := As(o); oe.Op() != "callback.bind" || oe.Field() != "trace_id" {
		t.Fatalf("WithOp failed")
	}
	if be, _ := As(base); be.Field() != "" || be.Op() != "" {
		t.Fatalf("original mutated")
	}
	foreign := stderrs.New("x")
	if WithOp(foreign, "op") != foreign {
		t.Fatalf("foreign error should pass through")
	}
}

func TestChainPredicates(t *testing.T) {
	dim := DimensionMismatch(768, 1024)
	if !IsDimensionMismatch(dim) {
		t.Fatalf("DimensionMismatch not detected")
	}
	if dim.Error() != "embedding dimension 768, expected 1024" {
		t.Fatalf("msg = %q", dim.Error())
	}

	// inner code is visible through an outer wrapper with a different code
	outer := Wrap(Upstreamf("status 500"), ErrorCodeUnknown, "embed")
	if !IsUpstream(outer) {
		t.Fatalf("IsUpstream should walk the chain")
	}
	if IsCode(outer, ErrorCodeUpstream) {
		t.Fatalf("IsCode looks at the outermost code only")
	}
	if !IsNotFound(fmt.Errorf("search: %w", ErrNotFound)) {
		t.Fatalf("IsNotFound through fmt wrap")
	}
	if !IsUnauthorized(Unauthorizedf("bad sig")) {
		t.Fatalf("IsUnauthorized")
	}
	if IsCode(nil, ErrorCodeUnknown) {
		t.Fatalf("nil must not match any code")
	}
}

func TestHTTPHelper(t *testing.T) {
	if st, w := HTTP(nil); st != http.StatusOK || w != (Wire{}) {
		t.Fatalf("HTTP(nil) = %d %+v", st, w)
	}
	st, w := HTTP(Unavailablef("queue down"))
	if st != http.StatusServiceUnavailable || w.Code != ErrorCodeUnavailable {
		t.Fatalf("HTTP(err) = %d %+v", st, w)
	}
}
