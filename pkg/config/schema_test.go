package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaClassification(t *testing.T) {
	schema := newTestSchema(t)

	assert.True(t, schema.IsGroup(Path{"logging"}))
	assert.True(t, schema.IsGroup(Path{"logging", "output"}))
	assert.True(t, schema.IsGroup(Path{"advanced"}))
	assert.False(t, schema.IsGroup(Path{"workers"}))
	assert.False(t, schema.IsGroup(Path{"extra"}))

	assert.True(t, schema.IsActivatableGroup(Path{"advanced"}))
	assert.False(t, schema.IsActivatableGroup(Path{"logging"}))

	assert.True(t, schema.IsJSON(Path{"extra"}))
	assert.False(t, schema.IsJSON(Path{"cluster_name"}))

	assert.True(t, schema.Contains(Path{"logging", "output", "path"}))
	assert.False(t, schema.Contains(Path{"logging", "missing"}))
}

func TestSchemaJSONFields(t *testing.T) {
	schema := newTestSchema(t)

	fields := schema.JSONFields()
	require.Len(t, fields, 1)
	assert.True(t, fields[0].Equal(Path{"extra"}))
}

func TestSchemaTechnicalName(t *testing.T) {
	schema := newTestSchema(t)

	name, ok := schema.TechnicalName(Path{}, "Cluster Name")
	require.True(t, ok)
	assert.Equal(t, "cluster_name", name)

	name, ok = schema.TechnicalName(Path{"logging"}, "Level")
	require.True(t, ok)
	assert.Equal(t, "level", name)

	// titles resolve only within their own group scope
	_, ok = schema.TechnicalName(Path{}, "Level")
	assert.False(t, ok)

	// the nullable json parameter keeps the title of its non-null branch
	name, ok = schema.TechnicalName(Path{}, "Extra")
	require.True(t, ok)
	assert.Equal(t, "extra", name)
}

func TestSchemaDefault(t *testing.T) {
	schema := newTestSchema(t)

	value, err := schema.Default(Path{"workers"})
	require.NoError(t, err)
	assert.Equal(t, float64(4), value)

	value, err = schema.Default(Path{"advanced"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"threshold": 0.5, "limit": float64(10)}, value)

	// group defaults assemble recursively
	value, err = schema.Default(Path{"logging"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"level":  "info",
		"output": map[string]any{"path": "/var/log/app.log"},
	}, value)

	_, err = schema.Default(Path{"missing"})
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

func TestSchemaEqual(t *testing.T) {
	schema := newTestSchema(t)
	same := newTestSchema(t)

	assert.True(t, schema.Equal(same))
	assert.False(t, schema.Equal(nil))

	t.Run("changed parameter type", func(t *testing.T) {
		document := schemaDocument()
		properties := document["properties"].(map[string]any)
		properties["workers"].(map[string]any)["type"] = "string"
		other, err := NewSchema(document)
		require.NoError(t, err)

		assert.False(t, schema.Equal(other))
	})

	t.Run("extra parameter", func(t *testing.T) {
		document := schemaDocument()
		properties := document["properties"].(map[string]any)
		properties["added"] = map[string]any{"title": "Added", "type": "string"}
		other, err := NewSchema(document)
		require.NoError(t, err)

		assert.False(t, schema.Equal(other))
	})

	t.Run("untyped parameters compare as enums", func(t *testing.T) {
		document := map[string]any{
			"properties": map[string]any{
				"mode": map[string]any{"title": "Mode", "enum": []any{"a", "b"}},
			},
		}
		left, err := NewSchema(document)
		require.NoError(t, err)
		right, err := NewSchema(document)
		require.NoError(t, err)

		assert.True(t, left.Equal(right))
	})
}

func TestSchemaMalformedDocuments(t *testing.T) {
	tests := []struct {
		name     string
		document map[string]any
	}{
		{
			name:     "no properties at root",
			document: map[string]any{"title": "Configuration"},
		},
		{
			name: "parameter without title",
			document: map[string]any{
				"properties": map[string]any{
					"workers": map[string]any{"type": "integer"},
				},
			},
		},
		{
			name: "union with only null branches",
			document: map[string]any{
				"properties": map[string]any{
					"broken": map[string]any{
						"oneOf": []any{map[string]any{"type": "null"}},
					},
				},
			},
		},
		{
			name: "group without properties",
			document: map[string]any{
				"properties": map[string]any{
					"group": map[string]any{
						"title":                "Group",
						"type":                 "object",
						"additionalProperties": false,
					},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSchema(tt.document)
			assert.ErrorIs(t, err, ErrSchema)
		})
	}
}

func TestParsePath(t *testing.T) {
	assert.True(t, ParsePath("/logging/level").Equal(Path{"logging", "level"}))
	assert.True(t, ParsePath("logging/level").Equal(Path{"logging", "level"}))
	assert.Empty(t, ParsePath("/"))
	assert.Equal(t, "/logging/level", Path{"logging", "level"}.String())
}
