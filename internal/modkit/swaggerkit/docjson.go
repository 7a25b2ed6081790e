//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http"

	docs "contextual/internal/docs"
)

// docReader is a seam so tests can inject invalid JSON without patching swagger
var docReader = func() string { return docs.SwaggerInfo.ReadDoc() }

// serveDocJSON serves the generated document shaped by Shape
func serveDocJSON(prefixes []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var doc map[string]any
		if err := json.Unmarshal([]byte(docReader()), &doc); err != nil {
			http.Error(w, "doc parse error", http.StatusInternalServerError)
			return
		}
		Shape(doc, prefixes...)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(doc)
	}
}
