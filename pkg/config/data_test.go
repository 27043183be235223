package config

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigDataFromRecord(t *testing.T) {
	record := map[string]any{
		"id":          float64(12),
		"description": "tuned",
		"config":      configValues(),
		"adcmMeta": map[string]any{
			"/advanced": map[string]any{"isActive": true},
		},
	}

	data, err := ConfigDataFromRecord(record)
	require.NoError(t, err)

	assert.Equal(t, int64(12), data.ID)
	assert.Equal(t, "tuned", data.Description)

	value, err := data.Value(Path{"logging", "level"})
	require.NoError(t, err)
	assert.Equal(t, "info", value)

	active, err := data.Attribute(Path{"advanced"}, "isActive")
	require.NoError(t, err)
	assert.Equal(t, true, active)
}

func TestConfigDataFromRecordMalformed(t *testing.T) {
	tests := []struct {
		name   string
		record map[string]any
	}{
		{
			name:   "no id",
			record: map[string]any{"config": map[string]any{}},
		},
		{
			name:   "no config object",
			record: map[string]any{"id": float64(1)},
		},
		{
			name: "malformed attribute bundle",
			record: map[string]any{
				"id":       float64(1),
				"config":   map[string]any{},
				"adcmMeta": map[string]any{"/advanced": "on"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ConfigDataFromRecord(tt.record)
			assert.Error(t, err)
		})
	}
}

func TestConfigDataValues(t *testing.T) {
	data := newTestData(1)

	require.NoError(t, data.SetValue(Path{"logging", "output", "path"}, "/tmp/app.log"))
	value, err := data.Value(Path{"logging", "output", "path"})
	require.NoError(t, err)
	assert.Equal(t, "/tmp/app.log", value)

	_, err = data.Value(Path{"logging", "missing"})
	assert.ErrorIs(t, err, ErrParameterNotFound)

	_, err = data.Value(Path{"missing", "level"})
	assert.ErrorIs(t, err, ErrParameterNotFound)

	// a path through a scalar is not navigable
	_, err = data.Value(Path{"workers", "level"})
	assert.ErrorIs(t, err, ErrParameterNotFound)

	// parent containers are never auto-created
	err = data.SetValue(Path{"missing", "level"}, "debug")
	assert.ErrorIs(t, err, ErrParameterNotFound)

	_, err = data.Value(Path{})
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

func TestConfigDataAttributes(t *testing.T) {
	data := newTestData(1)

	require.NoError(t, data.SetAttribute(Path{"advanced"}, "isActive", true))
	value, err := data.Attribute(Path{"advanced"}, "isActive")
	require.NoError(t, err)
	assert.Equal(t, true, value)

	_, err = data.Attribute(Path{"advanced"}, "isSynced")
	assert.ErrorIs(t, err, ErrParameterNotFound)

	// bundles come from the server payload and are never created locally
	err = data.SetAttribute(Path{"logging"}, "isActive", true)
	assert.ErrorIs(t, err, ErrParameterNotFound)
}

func TestConfigDataDeepCopy(t *testing.T) {
	original := newTestData(1)
	copied := original.DeepCopy()

	require.NoError(t, copied.SetValue(Path{"logging", "level"}, "debug"))
	require.NoError(t, copied.SetAttribute(Path{"advanced"}, "isActive", true))

	value, err := original.Value(Path{"logging", "level"})
	require.NoError(t, err)
	assert.Equal(t, "info", value)

	active, err := original.Attribute(Path{"advanced"}, "isActive")
	require.NoError(t, err)
	assert.Equal(t, false, active)
}

func TestJSONFieldRoundTrip(t *testing.T) {
	schema := newTestSchema(t)

	values := configValues()
	values["extra"] = `{"mode":"fast","retries":3}`
	data := NewConfigData(1, "", values, configAttributes())

	require.NoError(t, decodeJSONFields(data, schema))
	decoded, err := data.Value(Path{"extra"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mode": "fast", "retries": float64(3)}, decoded)

	// decoding is idempotent: an already-decoded value passes through
	require.NoError(t, decodeJSONFields(data, schema))
	again, err := data.Value(Path{"extra"})
	require.NoError(t, err)
	assert.Equal(t, decoded, again)

	require.NoError(t, encodeJSONFields(data, schema))
	wire, err := data.Value(Path{"extra"})
	require.NoError(t, err)
	wireString, ok := wire.(string)
	require.True(t, ok)

	var reparsed any
	require.NoError(t, json.Unmarshal([]byte(wireString), &reparsed))
	assert.Equal(t, decoded, reparsed)
}

func TestJSONFieldNullPassesThrough(t *testing.T) {
	schema := newTestSchema(t)

	values := configValues()
	values["extra"] = nil
	data := NewConfigData(1, "", values, configAttributes())

	require.NoError(t, decodeJSONFields(data, schema))
	require.NoError(t, encodeJSONFields(data, schema))

	value, err := data.Value(Path{"extra"})
	require.NoError(t, err)
	assert.Nil(t, value)
}

func TestJSONFieldMalformedWireString(t *testing.T) {
	schema := newTestSchema(t)

	values := configValues()
	values["extra"] = `{not json`
	data := NewConfigData(1, "", values, configAttributes())

	assert.Error(t, decodeJSONFields(data, schema))
}

func TestToPayload(t *testing.T) {
	schema := newTestSchema(t)
	data := newTestData(1)

	payload, err := data.ToPayload(schema)
	require.NoError(t, err)

	values, ok := payload["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, `{"mode":"fast"}`, values["extra"])

	attributes, ok := payload["adcmMeta"].(map[string]map[string]any)
	require.True(t, ok)
	assert.Equal(t, map[string]any{"isActive": false}, attributes["/advanced"])

	// the snapshot itself keeps the decoded form
	value, err := data.Value(Path{"extra"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"mode": "fast"}, value)

	// and the payload is detached from the snapshot
	values["cluster_name"] = "other"
	name, err := data.Value(Path{"cluster_name"})
	require.NoError(t, err)
	assert.Equal(t, "main", name)
}
