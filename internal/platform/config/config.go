// Package config reads service configuration from prefixed environment variables
package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"contextual/internal/platform/logger"
)

// Conf is a namespaced view over the environment, e.g. New().Prefix("RECO_")
type Conf struct{ prefix string }

// New creates a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix creates a child Conf with an additional prefix
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// Key returns the fully-qualified env var name for k
func (c Conf) Key(k string) string { return c.prefix + k }

func (c Conf) get(k string) string { return strings.TrimSpace(os.Getenv(c.Key(k))) }

// must returns the raw value or panics when it is empty
func (c Conf) must(k string) string {
	v := c.get(k)
	if v == "" {
		logger.Get().Panic().Str("key", c.Key(k)).Msg("missing required env")
	}
	return v
}

// mustParse parses a required value, panicking with hint on failure
func mustParse[T any](c Conf, k, hint string, parse func(string) (T, error)) T {
	s := c.must(k)
	v, err := parse(s)
	if err != nil {
		logger.Get().Panic().Str("key", c.Key(k)).Str("value", s).Msg(hint)
	}
	return v
}

// mayParse parses an optional value; a bad value is logged and def is used
func mayParse[T any](c Conf, k string, def T, parse func(string) (T, error)) T {
	s := c.get(k)
	if s == "" {
		return def
	}
	v, err := parse(s)
	if err != nil {
		logger.Get().Warn().Str("key", c.Key(k)).Str("value", s).Interface("default", def).
			Msg("invalid value; using default")
		return def
	}
	return v
}

// MustString panics if the key is missing or empty
func (c Conf) MustString(key string) string { return c.must(key) }

// MustInt panics if the key is missing or not an int
func (c Conf) MustInt(key string) int { return mustParse(c, key, "invalid int value", strconv.Atoi) }

// MustBool panics if the key is missing or not a bool
func (c Conf) MustBool(key string) bool {
	return mustParse(c, key, "invalid bool value", strconv.ParseBool)
}

// MustDuration panics if the key is missing or not a Go duration
func (c Conf) MustDuration(key string) time.Duration {
	return mustParse(c, key, "invalid duration (e.g., 250ms, 2s, 1h)", time.ParseDuration)
}

// MustURL panics if the key is missing or not an absolute URL
func (c Conf) MustURL(key string) *url.URL {
	return mustParse(c, key, "invalid absolute URL", parseAbsURL)
}

// MustPort returns a listen addr like ":8001" after validating 1..65535
func (c Conf) MustPort(key string) string {
	return mustParse(c, key, "invalid TCP port; expected 1..65535", parseAddr)
}

// Require panics on the first missing key
func (c Conf) Require(keys ...string) {
	for _, k := range keys {
		c.must(k)
	}
}

// MayString returns the value or def
func (c Conf) MayString(key, def string) string {
	if v := c.get(key); v != "" {
		return v
	}
	return def
}

// MayInt returns the value or def
func (c Conf) MayInt(key string, def int) int { return mayParse(c, key, def, strconv.Atoi) }

// MayFloat64 returns the value or def
func (c Conf) MayFloat64(key string, def float64) float64 {
	return mayParse(c, key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}

// MayBool returns the value or def
func (c Conf) MayBool(key string, def bool) bool { return mayParse(c, key, def, strconv.ParseBool) }

// MayDuration returns the value or def
func (c Conf) MayDuration(key string, def time.Duration) time.Duration {
	return mayParse(c, key, def, time.ParseDuration)
}

// MayURL returns the value or def; def is not validated
func (c Conf) MayURL(key, def string) string {
	u := mayParse(c, key, (*url.URL)(nil), parseAbsURL)
	if u == nil {
		return def
	}
	return strings.TrimRight(u.String(), "/")
}

// MayPort returns a listen addr for the key or def. Accepts "8001" or ":8001"
func (c Conf) MayPort(key, def string) string { return mayParse(c, key, def, parseAddr) }

// MayCSV splits a comma-separated value, dropping blanks
func (c Conf) MayCSV(key string, def []string) []string {
	var out []string
	for _, p := range strings.Split(c.get(key), ",") {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}

// MayEnum returns the value when it is one of allowed (case-insensitive, lowered), def when empty.
// Anything else panics
func (c Conf) MayEnum(key, def string, allowed ...string) string {
	v := c.MayString(key, def)
	if v == "" {
		return v
	}
	for _, a := range allowed {
		if strings.EqualFold(v, a) {
			return strings.ToLower(a)
		}
	}
	logger.Get().Panic().Str("key", c.Key(key)).Str("value", v).Strs("allowed", allowed).Msg("invalid enum value")
	return ""
}

func parseAbsURL(s string) (*url.URL, error) {
	u, err := url.Parse(s)
	if err != nil {
		return nil, err
	}
	if !u.IsAbs() {
		return nil, strconv.ErrSyntax
	}
	return u, nil
}

func parseAddr(s string) (string, error) {
	p, err := strconv.Atoi(strings.TrimPrefix(s, ":"))
	if err != nil {
		return "", err
	}
	if p < 1 || p > 65535 {
		return "", strconv.ErrRange
	}
	return ":" + strconv.Itoa(p), nil
}
