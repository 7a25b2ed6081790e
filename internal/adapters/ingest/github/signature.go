package github

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	perr "contextual/internal/platform/errors"
)

const sigPrefix = "sha256="

// Sign returns the header value GitHub would send for body
func Sign(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return sigPrefix + hex.EncodeToString(mac.Sum(nil))
}

// Verify checks header against the HMAC-SHA256 of body in constant time
// A missing, malformed or mismatched signature is unauthorized
func Verify(secret []byte, header string, body []byte) error {
	if header == "" {
		return perr.Unauthorizedf("missing signature")
	}
	if !strings.HasPrefix(header, sigPrefix) {
		return perr.Unauthorizedf("malformed signature")
	}
	got, err := hex.DecodeString(strings.TrimPrefix(header, sigPrefix))
	if err != nil || len(got) != sha256.Size {
		return perr.Unauthorizedf("malformed signature")
	}
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return perr.Unauthorizedf("signature mismatch")
	}
	return nil
}

// Verifier adapts Verify to the signed-body middleware
func Verifier(secret []byte) func(signature string, body []byte) error {
	return func(signature string, body []byte) error { return Verify(secret, signature, body) }
}
