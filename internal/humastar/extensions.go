// extensions.go — Injects x-datastar extensions into OpenAPI schemas.
//
// At server startup, InjectExtensions walks registered schemas and adds:
//   - x-datastar (per-schema): signal prefix and SSE stream path
//   - x-signal, x-sse (per-property): from Go struct tags
//
// These extensions make the OpenAPI document carry all Datastar metadata,
// so downstream consumers read signal names from it instead of re-walking
// struct tags.
package humastar

import (
	"reflect"

	"github.com/danielgtaylor/huma/v2"
)

// DatastarSchema defines per-schema Datastar metadata.
// This is injected as the "x-datastar" extension on OpenAPI schemas.
type DatastarSchema struct {
	Prefix string `json:"prefix"` // Signal prefix (e.g. "panel")
	Stream string `json:"stream"` // SSE stream path template (e.g. "/api/v1/panel/sessions/{id}/stream")
}

// DatastarSchemaConfig registers a Go type for Datastar extension injection.
type DatastarSchemaConfig struct {
	Type   reflect.Type
	Prefix string // Signal prefix (e.g. "panel")
	Stream string // SSE stream path template
}

// InjectExtensions walks the OpenAPI schema registry and adds x-datastar
// and x-signal/x-sse extensions from Go struct tags.
// Call after all routes are registered so schemas exist.
func InjectExtensions(api huma.API, configs []DatastarSchemaConfig) {
	schemas := api.OpenAPI().Components.Schemas.Map()

	for _, cfg := range configs {
		name := cfg.Type.Name()
		schema, ok := schemas[name]
		if !ok {
			continue
		}

		// Per-schema extension
		if schema.Extensions == nil {
			schema.Extensions = map[string]any{}
		}
		schema.Extensions["x-datastar"] = DatastarSchema{
			Prefix: cfg.Prefix,
			Stream: cfg.Stream,
		}

		// Per-property extensions from struct tags
		injectPropertyExtensions(schema, cfg.Type)
	}
}

func injectPropertyExtensions(schema *huma.Schema, t reflect.Type) {
	for i := range t.NumField() {
		sf := t.Field(i)

		// Find the matching property in the schema
		jsonName := sf.Tag.Get("json")
		if idx := indexOf(jsonName, ','); idx >= 0 {
			jsonName = jsonName[:idx]
		}
		if jsonName == "" || jsonName == "-" {
			continue
		}

		prop, ok := schema.Properties[jsonName]
		if !ok {
			continue
		}

		// Collect custom tags
		ext := map[string]any{}

		if sig := sf.Tag.Get("signal"); sig != "" {
			ext["x-signal"] = sig
		}
		if sse := sf.Tag.Get("sse"); sse != "" {
			ext["x-sse"] = sse
		}

		if len(ext) > 0 {
			if prop.Extensions == nil {
				prop.Extensions = map[string]any{}
			}
			for k, v := range ext {
				prop.Extensions[k] = v
			}
		}
	}
}

func indexOf(s string, c byte) int {
	for i := range len(s) {
		if s[i] == c {
			return i
		}
	}
	return -1
}
