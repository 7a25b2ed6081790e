package net_test

import (
	"context"
	"testing"

	pnet "contextual/internal/platform/net"
)

func TestWithRequest(t *testing.T) {
	ctx := pnet.WithRequest(context.Background(), "req-123", "tenant-demo")
	if pnet.RequestID(ctx) != "req-123" || pnet.TenantID(ctx) != "tenant-demo" {
		t.Fatalf("ids not stored")
	}

	only := pnet.WithRequest(context.Background(), "r-only", "")
	if pnet.RequestID(only) != "r-only" || pnet.TenantID(only) != "" {
		t.Fatalf("request-only ctx mismatch")
	}

	if pnet.RequestID(context.Background()) != "" || pnet.TenantID(context.Background()) != "" {
		t.Fatalf("bare ctx should be empty")
	}
}
