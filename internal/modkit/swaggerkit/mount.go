// Package swaggerkit provides helpers to mount Swagger UI and JSON doc
package swaggerkit

import (
	"net/http"

	phttp "contextual/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount the Swagger UI and JSON doc if enabled
// prefixes limit the document to the routes this binary serves
func Mount(r phttp.Router, enabled bool, prefixes ...string) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(prefixes))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName("contextual"),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
