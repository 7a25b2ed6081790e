package swaggerkit

import (
	"strconv"
	"strings"
)

// Shape adapts a generated document for the UI and for one binary:
// OAS 3.0.3, a servers entry, only paths under prefixes (all when empty),
// and the error envelope on every 4xx/5xx response plus default 400 and 500
func Shape(doc map[string]any, prefixes ...string) {
	ensureServers(doc, "/")
	filterPaths(doc, prefixes)
	ensureErrorResponseDefinition(doc)
	eachOperation(doc, func(responses map[string]any) {
		for _, code := range []string{"400", "500"} {
			if _, ok := responses[code]; !ok {
				responses[code] = map[string]any{"description": httpText(code)}
			}
		}
		for code, r := range responses {
			n, err := strconv.Atoi(code)
			if err != nil || n < 400 {
				continue
			}
			resp, ok := r.(map[string]any)
			if !ok {
				continue
			}
			if _, has := resp["content"]; !has {
				resp["content"] = errorContent()
			}
		}
	})
}

// ensureServers makes sure the doc is OAS3 and has a servers array
// swagger http ui can't support 3.1 at the moment, so downconvert if needed
func ensureServers(doc map[string]any, url string) {
	if _, hasSwagger := doc["swagger"]; hasSwagger {
		doc["openapi"] = "3.0.3"
		delete(doc, "swagger")
	}
	if v, ok := doc["openapi"].(string); !ok || strings.HasPrefix(v, "3.1") {
		doc["openapi"] = "3.0.3"
	}
	if _, ok := doc["servers"]; !ok {
		doc["servers"] = []any{map[string]any{"url": url}}
	}
}

func filterPaths(doc map[string]any, prefixes []string) {
	if len(prefixes) == 0 {
		return
	}
	paths, _ := doc["paths"].(map[string]any)
	kept := map[string]any{}
	for p, v := range paths {
		for _, pre := range prefixes {
			if strings.HasPrefix(p, pre) {
				kept[p] = v
				break
			}
		}
	}
	doc["paths"] = kept
}

// ensureErrorResponseDefinition creates the error envelope model if missing
// kept minimal so it does not drift from the runtime wire
func ensureErrorResponseDefinition(doc map[string]any) {
	comps, ok := doc["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		doc["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"error":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

func errorContent() map[string]any {
	return map[string]any{
		"application/json": map[string]any{
			"schema": map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
		},
	}
}

func httpText(code string) string {
	if code == "400" {
		return "Bad Request"
	}
	return "Internal Server Error"
}

// eachOperation calls fn with the responses map of every operation, creating it when absent
func eachOperation(doc map[string]any, fn func(responses map[string]any)) {
	paths, ok := doc["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			responses, ok := op["responses"].(map[string]any)
			if !ok {
				responses = map[string]any{}
				op["responses"] = responses
			}
			fn(responses)
		}
	}
}
