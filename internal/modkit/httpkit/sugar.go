package httpkit

import (
	"net/http"

	phttp "contextual/internal/platform/net/http"
)

// Get mounts a body-less handler whose result is written as-is
func Get(r Router, path string, h func(*http.Request) (any, error)) {
	phttp.GetJSON(r, path, h)
}

// GetQuery mounts a handler with its query string bound into T
func GetQuery[T any](r Router, path string, h func(*http.Request, T) (any, error)) {
	phttp.GetQuery(r, path, h)
}

// PostJSON mounts a handler with its body bound into T
func PostJSON[T any](r Router, path string, h func(*http.Request, T) (any, error), opts ...JSONOptions) {
	phttp.PostJSON(r, path, h, opts...)
}
