package http

import (
	stdhttp "net/http"

	"contextual/internal/platform/net/http/bind"
)

// GetJSON mounts fn for GET; the result is written as-is
func GetJSON(r Router, path string, fn func(*stdhttp.Request) (any, error)) {
	r.Get(path, NoBodyHandler(fn))
}

// GetQuery mounts fn for GET with query binding into T
func GetQuery[T any](r Router, path string, fn func(*stdhttp.Request, T) (any, error)) {
	r.Get(path, QueryHandler(fn))
}

// PostJSON mounts fn for POST with body binding into T
func PostJSON[T any](r Router, path string, fn func(*stdhttp.Request, T) (any, error), opts ...bind.JSONOptions) {
	r.Post(path, JSONHandler(fn, opts...))
}
