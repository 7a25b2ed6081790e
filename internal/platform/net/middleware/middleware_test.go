package middleware_test

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	"contextual/internal/platform/net/middleware"
)

func TestAccessLogPassThrough(t *testing.T) {
	mw := middleware.AccessLogZerolog(middleware.AccessLogOptions{Slow: time.Nanosecond, Skip: []string{"/health"}})
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("a"))
		_, _ = w.Write([]byte("b"))
	})
	for _, path := range []string{"/ingest/git", "/health"} {
		rr := httptest.NewRecorder()
		mw(next).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusAccepted || rr.Body.String() != "ab" {
			t.Fatalf("%s: status=%d body=%q", path, rr.Code, rr.Body.String())
		}
	}
}

func TestRecoverJSON(t *testing.T) {
	h := middleware.RecoverJSON(http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rr.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("body not json: %v", err)
	}
	if body["error"] != "panic recovered" || body["code"] != float64(perr.ErrorCodePanic) {
		t.Fatalf("body = %v", body)
	}
}

func TestSignedBodyRejectsBeforeHandler(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })
	verify := func(sig string, body []byte) error {
		if sig != "good" {
			return perr.Unauthorizedf("bad signature")
		}
		return nil
	}
	h := middleware.SignedBody("X-Sig", 1<<10, verify)(next)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/ingest/git", strings.NewReader(`{"ok":true}`))
	req.Header.Set("X-Sig", "bad")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized || called {
		t.Fatalf("status=%d called=%v", rr.Code, called)
	}
}

func TestSignedBodyReplaysBody(t *testing.T) {
	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		got = string(b)
	})
	h := middleware.SignedBody("X-Sig", 1<<10, func(string, []byte) error { return nil })(next)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/", strings.NewReader("payload")))
	if got != "payload" {
		t.Fatalf("body not replayed: %q", got)
	}
}

func TestSignedBodyTooLarge(t *testing.T) {
	h := middleware.SignedBody("X-Sig", 4, func(string, []byte) error { return errors.New("unreached") })(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) { t.Fatalf("handler must not run") }))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("0123456789")))
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rr.Code)
	}
}

func TestCorrelateCarriesRequestID(t *testing.T) {
	var seen string
	stack := middleware.RequestID()(middleware.Correlate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Request-Id")
		logger.C(r.Context()).Debug().Msg("inside")
	})))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	stack.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "rid-1" {
		t.Fatalf("request id header lost: %q", seen)
	}
}

func TestCORSPreflight(t *testing.T) {
	h := middleware.CORS(middleware.CORSOptions{AllowedOrigins: []string{"https://oapi.dingtalk.com"}})(
		http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	req := httptest.NewRequest(http.MethodOptions, "/callback/dingtalk", nil)
	req.Header.Set("Origin", "https://oapi.dingtalk.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Header().Get("Access-Control-Allow-Origin") != "https://oapi.dingtalk.com" {
		t.Fatalf("allow-origin = %q", rr.Header().Get("Access-Control-Allow-Origin"))
	}
}

func TestDefaultsNonEmpty(t *testing.T) {
	if len(middleware.Defaults(time.Second)) != 6 {
		t.Fatalf("unexpected defaults length")
	}
}
