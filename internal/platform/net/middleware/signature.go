package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	perr "contextual/internal/platform/errors"
	"contextual/internal/platform/logger"
	pnet "contextual/internal/platform/net"
)

// BodyVerifier checks a signature header against the raw request body
type BodyVerifier func(signature string, body []byte) error

// SignedBody reads the body (bounded by maxBytes), checks header with verify and
// replays the body to next. Nothing downstream runs on a failed check
func SignedBody(header string, maxBytes int64, verify BodyVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBytes))
			_ = r.Body.Close()
			if err != nil {
				writeErr(w, r, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "request body unreadable or too large"))
				return
			}
			if err := verify(r.Header.Get(header), body); err != nil {
				logger.C(r.Context()).Warn().Err(err).Str("header", header).Msg("signature rejected")
				writeErr(w, r, err)
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))
			r.ContentLength = int64(len(body))
			next.ServeHTTP(w, r)
		})
	}
}

// writeErr mirrors the envelope of the http package without importing it
func writeErr(w http.ResponseWriter, r *http.Request, err error) {
	status, wire := perr.HTTP(err)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"status_code": status,
		"status":      http.StatusText(status),
		"code":        wire.Code,
		"error":       wire.Message,
		"request_id":  pnet.RequestID(r.Context()),
	})
}
