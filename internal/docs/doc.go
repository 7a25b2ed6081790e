// @title         Contextual API
// @version       0.1.0
// @description   Commit to Jira issue linking: webhook intake, consumer stats and chat callbacks

// Package docs holds the generated OpenAPI document for every contextual binary
// Regenerate with go generate ./internal/docs after changing a handler annotation
package docs

//go:generate swag init --v3.1 -g doc.go -d ./,../services,../adapters/ingest/github,../core/version -o . --ot go --packageName docs
