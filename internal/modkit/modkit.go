package modkit

import (
	"contextual/internal/modkit/module"
)

// Module is the common surface for service modules that mount routes and expose ports
type Module = module.Module

// Builder constructs a Module from shared deps and options
type Builder func(Deps, ...Option) Module

// Mount mounts every module on r in order; nil entries are skipped
func Mount(r module.Router, mods ...Module) {
	for _, m := range mods {
		if m == nil {
			continue
		}
		m.MountRoutes(r)
	}
}
