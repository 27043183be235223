package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// schemaDocument is a representative configuration schema: plain parameters,
// a nested group, an activatable group, a nullable json parameter.
func schemaDocument() map[string]any {
	return map[string]any{
		"title": "Configuration",
		"type":  "object",
		"properties": map[string]any{
			"cluster_name": map[string]any{"title": "Cluster Name", "type": "string"},
			"workers":      map[string]any{"title": "Workers", "type": "integer", "default": float64(4)},
			"extra": map[string]any{
				"oneOf": []any{
					map[string]any{"title": "Extra", "type": "string", "format": "json", "default": nil},
					map[string]any{"type": "null"},
				},
			},
			"logging": map[string]any{
				"title":                "Logging",
				"type":                 "object",
				"additionalProperties": false,
				"properties": map[string]any{
					"level": map[string]any{"title": "Level", "type": "string", "default": "info"},
					"output": map[string]any{
						"title":                "Output",
						"type":                 "object",
						"additionalProperties": false,
						"properties": map[string]any{
							"path": map[string]any{"title": "Path", "type": "string", "default": "/var/log/app.log"},
						},
					},
				},
			},
			"advanced": map[string]any{
				"title":                "Advanced",
				"type":                 "object",
				"additionalProperties": false,
				"adcmMeta":             map[string]any{"activation": map[string]any{"isAllowChange": true}},
				"properties": map[string]any{
					"threshold": map[string]any{"title": "Threshold", "type": "number", "default": 0.5},
					"limit":     map[string]any{"title": "Limit", "type": "integer", "default": float64(10)},
				},
			},
		},
	}
}

func newTestSchema(t *testing.T) *Schema {
	t.Helper()
	schema, err := NewSchema(schemaDocument())
	require.NoError(t, err)
	return schema
}

// configValues holds the json parameter in decoded form, the way sessions see
// it after the wire decode.
func configValues() map[string]any {
	return map[string]any{
		"cluster_name": "main",
		"workers":      float64(4),
		"extra":        map[string]any{"mode": "fast"},
		"logging": map[string]any{
			"level":  "info",
			"output": map[string]any{"path": "/var/log/app.log"},
		},
		"advanced": nil,
	}
}

func configAttributes() map[string]map[string]any {
	return map[string]map[string]any{
		"/advanced": {"isActive": false},
	}
}

func newTestData(id int64) *ConfigData {
	return NewConfigData(id, "initial", configValues(), configAttributes())
}

// newHostGroupData adds the per-parameter sync bundles a config host group
// snapshot carries.
func newHostGroupData(id int64) *ConfigData {
	attributes := map[string]map[string]any{
		"/workers":  {"isSynced": true},
		"/advanced": {"isActive": false, "isSynced": true},
	}
	return NewConfigData(id, "initial", configValues(), attributes)
}
