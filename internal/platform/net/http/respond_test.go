package http

import (
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"

	perr "contextual/internal/platform/errors"
	pnet "contextual/internal/platform/net"
)

func TestRespondError_Envelope(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r = r.WithContext(pnet.WithRequest(r.Context(), "req-1", ""))
	w := httptest.NewRecorder()

	RespondError(w, r, perr.Unauthorizedf("signature mismatch"))

	if w.Code != stdhttp.StatusUnauthorized {
		t.Fatalf("status = %d", w.Code)
	}
	var env Envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatal(err)
	}
	if env.Code != perr.ErrorCodeUnauthorized || env.Error != "signature mismatch" || env.RequestID != "req-1" {
		t.Fatalf("envelope = %+v", env)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/json") {
		t.Fatalf("content type = %q", ct)
	}
}

func TestHandle_BareAndEnveloped(t *testing.T) {
	bare := Handle(func(*stdhttp.Request) Response { return Bare(map[string]bool{"ok": true}) })
	w := httptest.NewRecorder()
	bare(w, httptest.NewRequest("GET", "/", nil))
	if strings.TrimSpace(w.Body.String()) != `{"ok":true}` {
		t.Fatalf("bare body = %s", w.Body.String())
	}

	wrapped := Handle(func(*stdhttp.Request) Response { return OK("hi") })
	w = httptest.NewRecorder()
	wrapped(w, httptest.NewRequest("GET", "/", nil))
	var env Envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	if env.StatusCode != 200 || env.Data != "hi" {
		t.Fatalf("envelope = %+v", env)
	}

	failing := Handle(func(*stdhttp.Request) Response { return Error(perr.Upstreamf("down")) })
	w = httptest.NewRecorder()
	failing(w, httptest.NewRequest("GET", "/", nil))
	if w.Code != stdhttp.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRespondOK(t *testing.T) {
	w := httptest.NewRecorder()
	RespondOK(w, httptest.NewRequest("GET", "/", nil), []int{1})
	if w.Code != 200 || !strings.Contains(w.Body.String(), `"data":[1]`) {
		t.Fatalf("got %d %s", w.Code, w.Body.String())
	}
}
