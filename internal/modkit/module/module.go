// Package module defines the minimal contract for a modkit module
package module

import (
	phttp "contextual/internal/platform/net/http"
)

// Router is the platform router seam
type Router = phttp.Router

// Module is what each service package hands to main
type Module interface {
	MountRoutes(r Router)
	Ports() any
	Name() string
}
