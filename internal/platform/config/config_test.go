package config

import (
	"testing"
	"time"

	kit "contextual/internal/platform/testkit"
)

func TestPrefixAndKey(t *testing.T) {
	reco := New().Prefix("RECO_")
	if got := reco.Key("TOPK"); got != "RECO_TOPK" {
		t.Fatalf("Key() = %q", got)
	}
	if got := reco.Prefix("AMQP_").Key("URL"); got != "RECO_AMQP_URL" {
		t.Fatalf("nested Key() = %q", got)
	}
}

func TestMustFamily(t *testing.T) {
	c := New().Prefix("M_")
	t.Setenv("M_NAME", "  contextual ")
	t.Setenv("M_N", " 8 ")
	t.Setenv("M_ON", "true")
	t.Setenv("M_WAIT", "250ms")
	t.Setenv("M_BASE", "http://localhost:8003")
	t.Setenv("M_PORT", "8001")

	if c.MustString("NAME") != "contextual" {
		t.Fatalf("MustString trim failed")
	}
	if c.MustInt("N") != 8 || !c.MustBool("ON") || c.MustDuration("WAIT") != 250*time.Millisecond {
		t.Fatalf("Must parse mismatch")
	}
	if c.MustURL("BASE").Host != "localhost:8003" {
		t.Fatalf("MustURL host mismatch")
	}
	if c.MustPort("PORT") != ":8001" {
		t.Fatalf("MustPort = %q", c.MustPort("PORT"))
	}

	kit.MustPanic(t, func() { _ = c.MustString("MISSING") })
	t.Setenv("M_BAD", "x")
	kit.MustPanic(t, func() { _ = c.MustInt("BAD") })
	kit.MustPanic(t, func() { _ = c.MustBool("BAD") })
	kit.MustPanic(t, func() { _ = c.MustDuration("BAD") })
	t.Setenv("M_REL", "/relative")
	kit.MustPanic(t, func() { _ = c.MustURL("REL") })
	t.Setenv("M_OOB", "70000")
	kit.MustPanic(t, func() { _ = c.MustPort("OOB") })
}

func TestRequire(t *testing.T) {
	c := New().Prefix("REQ_")
	t.Setenv("REQ_A", "x")
	t.Setenv("REQ_WS", "   ")
	c.Require("A")
	kit.MustPanic(t, func() { c.Require("A", "C") })
	kit.MustPanic(t, func() { c.Require("WS") })
}

func TestMayFamily(t *testing.T) {
	c := New().Prefix("Y_")
	if c.MayString("MISS", "def") != "def" || c.MayInt("MISS", 9) != 9 || !c.MayBool("MISS", true) {
		t.Fatalf("defaults not used")
	}

	t.Setenv("Y_SCORE", "0.75")
	t.Setenv("Y_BADF", "high")
	if c.MayFloat64("SCORE", 0) != 0.75 || c.MayFloat64("BADF", 0.7) != 0.7 {
		t.Fatalf("MayFloat64 mismatch")
	}

	t.Setenv("Y_DUR", "150ms")
	t.Setenv("Y_BADD", "soon")
	if c.MayDuration("DUR", time.Second) != 150*time.Millisecond || c.MayDuration("BADD", time.Minute) != time.Minute {
		t.Fatalf("MayDuration mismatch")
	}

	t.Setenv("Y_BADI", "x")
	if c.MayInt("BADI", 3) != 3 {
		t.Fatalf("MayInt bad value should fall back")
	}
}

func TestMayURLAndPort(t *testing.T) {
	c := New().Prefix("NET_")
	t.Setenv("NET_BASE", "http://callback.local:8003/")
	if got := c.MayURL("BASE", "x"); got != "http://callback.local:8003" {
		t.Fatalf("MayURL trims trailing slash, got %q", got)
	}
	t.Setenv("NET_REL", "callback")
	if got := c.MayURL("REL", "http://localhost:8003"); got != "http://localhost:8003" {
		t.Fatalf("relative URL should fall back, got %q", got)
	}

	if got := c.MayPort("MISS", ":8002"); got != ":8002" {
		t.Fatalf("MayPort default = %q", got)
	}
	t.Setenv("NET_P1", ":9001")
	t.Setenv("NET_P2", "9002")
	t.Setenv("NET_P3", "0")
	if c.MayPort("P1", "") != ":9001" || c.MayPort("P2", "") != ":9002" || c.MayPort("P3", ":1") != ":1" {
		t.Fatalf("MayPort parse mismatch")
	}
}

func TestMayCSV(t *testing.T) {
	c := New().Prefix("CSV_")
	t.Setenv("CSV_VALS", " one, two , ,three ,, ")
	got := c.MayCSV("VALS", nil)
	if len(got) != 3 || got[0] != "one" || got[2] != "three" {
		t.Fatalf("MayCSV = %#v", got)
	}
	t.Setenv("CSV_EMPTY", " , ,")
	if got := c.MayCSV("EMPTY", []string{"fallback"}); len(got) != 1 || got[0] != "fallback" {
		t.Fatalf("all-blank should fall back: %#v", got)
	}
}

func TestMayEnum(t *testing.T) {
	c := New().Prefix("QUEUE_")
	if got := c.MayEnum("DRIVER", "amqp", "amqp", "pg"); got != "amqp" {
		t.Fatalf("default = %q", got)
	}
	t.Setenv("QUEUE_DRIVER", "PG")
	if got := c.MayEnum("DRIVER", "amqp", "amqp", "pg"); got != "pg" {
		t.Fatalf("case folded value = %q", got)
	}
	t.Setenv("QUEUE_DRIVER", "kafka")
	kit.MustPanic(t, func() { _ = c.MayEnum("DRIVER", "amqp", "amqp", "pg") })
}
