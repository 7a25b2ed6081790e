// Package httpkit re-exports the platform http helpers modules need
// modules import this instead of internal/platform/net/http directly
package httpkit

import (
	"net/http"

	phttp "contextual/internal/platform/net/http"
	"contextual/internal/platform/net/http/bind"
)

type (
	// Response is the HTTP response type
	Response = phttp.Response

	// Handler is the platform handler type
	Handler = phttp.Handler

	// Router is the platform router seam
	Router = phttp.Router

	// JSONOptions controls body binding
	JSONOptions = bind.JSONOptions
)

// OK returns an enveloped 200
func OK(data any) Response { return phttp.OK(data) }

// Bare returns a 200 with data as the whole body
func Bare(data any) Response { return phttp.Bare(data) }

// Error returns a response that maps err to status and envelope
func Error(err error) Response { return phttp.Error(err) }

// Handle adapts a Response-returning handler
func Handle(fn func(*http.Request) Response) Handler { return phttp.Handle(fn) }

// URLParam reads a path parameter
func URLParam(r *http.Request, name string) string { return phttp.URLParam(r, name) }

// ParseJSON binds and validates the request body into T
func ParseJSON[T any](r *http.Request, opts ...JSONOptions) (T, error) {
	return bind.ParseJSON[T](r, opts...)
}

// BindQuery binds and validates the query string into T
func BindQuery[T any](r *http.Request) (T, error) { return bind.Query[T](r) }
