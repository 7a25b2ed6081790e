// Package modkit provides module wiring and core deps
package modkit

import (
	"contextual/internal/modkit/repokit"
	"contextual/internal/platform/config"
	"contextual/internal/platform/logger"
)

// Deps holds core dependencies passed to modules
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	// PG is nil for binaries that never touch postgres
	PG repokit.TxRunner
}

// RequirePG panics with the module name when PG is missing
func (d Deps) RequirePG(module string) repokit.TxRunner {
	if d.PG == nil {
		panic(module + ": postgres is required")
	}
	return d.PG
}
