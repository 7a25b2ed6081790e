//go:build swag

package swaggerkit

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"contextual/internal/platform/testkit"
)

func TestServeDocJSON_GeneratedDoc(t *testing.T) {
	w := httptest.NewRecorder()
	serveDocJSON([]string{"/callback", "/health"})(w, httptest.NewRequest("GET", "/api/docs/doc.json", nil))
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var doc map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &doc); err != nil {
		t.Fatal(err)
	}
	paths := doc["paths"].(map[string]any)
	if _, ok := paths["/callback/{provider}"]; !ok {
		t.Fatalf("callback path missing: %v", paths)
	}
	if _, ok := paths["/ingest/git"]; ok {
		t.Fatalf("ingest path should be filtered")
	}
	if info := doc["info"].(map[string]any); info["title"] != "Contextual API" {
		t.Fatalf("info = %v", info)
	}
}

func TestServeDocJSON_BadDoc(t *testing.T) {
	testkit.Swap(t, &docReader, func() string { return "{" })
	w := httptest.NewRecorder()
	serveDocJSON(nil)(w, httptest.NewRequest("GET", "/api/docs/doc.json", nil))
	if w.Code != 500 {
		t.Fatalf("status = %d", w.Code)
	}
}
