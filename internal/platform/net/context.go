// Package net holds transport-neutral request context helpers
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type ctxKey uint8

const keyTenantID ctxKey = iota

// WithRequest annotates ctx with the request id (readable by chi) and tenant
func WithRequest(ctx context.Context, reqID, tenantID string) context.Context {
	if reqID != "" {
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	if tenantID != "" {
		ctx = context.WithValue(ctx, keyTenantID, tenantID)
	}
	return ctx
}

// RequestID returns the request id, "" when absent
func RequestID(ctx context.Context) string { return chimw.GetReqID(ctx) }

// TenantID returns the tenant id, "" when absent
func TenantID(ctx context.Context) string {
	s, _ := ctx.Value(keyTenantID).(string)
	return s
}
