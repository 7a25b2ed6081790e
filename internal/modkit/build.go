package modkit

import (
	"net/http"

	"contextual/internal/modkit/httpkit"
)

// Built is the resolved option set a module keeps
type Built struct {
	Name   string
	Prefix string
	Mw     []func(http.Handler) http.Handler
	Ports  any
}

// Build applies opts over the given default name
func Build(name string, opts ...Option) Built {
	c := buildCfg{name: name}
	for _, o := range opts {
		o(&c)
	}
	return Built{
		Name:   c.name,
		Prefix: c.prefix,
		Mw:     append([]func(http.Handler) http.Handler(nil), c.mw...),
		Ports:  c.ports,
	}
}

// Mount registers routes through mount, under the prefix and middleware when set
func (b Built) Mount(r httpkit.Router, mount func(httpkit.Router)) {
	if b.Prefix == "" {
		if len(b.Mw) == 0 {
			mount(r)
			return
		}
		r.Group(func(g httpkit.Router) {
			g.Use(b.Mw...)
			mount(g)
		})
		return
	}
	httpkit.MountUnder(r, b.Prefix, b.Mw, mount)
}
