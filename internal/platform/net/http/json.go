package http

import (
	stdhttp "net/http"

	"contextual/internal/platform/net/http/bind"
)

// JSONHandler binds the body into T and wraps fn's result in the envelope
func JSONHandler[T any](fn func(*stdhttp.Request, T) (any, error), opts ...bind.JSONOptions) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		in, err := bind.ParseJSON[T](r, opts...)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return OK(out)
	})
}

// QueryHandler binds the query string into T and writes fn's result without an envelope
func QueryHandler[T any](fn func(*stdhttp.Request, T) (any, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		in, err := bind.Query[T](r)
		if err != nil {
			return Error(err)
		}
		out, err := fn(r, in)
		if err != nil {
			return Error(err)
		}
		return Bare(out)
	})
}

// NoBodyHandler calls fn and writes its result without an envelope
func NoBodyHandler(fn func(*stdhttp.Request) (any, error)) Handler {
	return Handle(func(r *stdhttp.Request) Response {
		out, err := fn(r)
		if err != nil {
			return Error(err)
		}
		return Bare(out)
	})
}
