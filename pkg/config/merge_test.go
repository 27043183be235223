package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func value(t *testing.T, data *ConfigData, path ...string) any {
	t.Helper()
	v, err := data.Value(path)
	require.NoError(t, err)
	return v
}

func TestMergeUnchangedRemote(t *testing.T) {
	schema := newTestSchema(t)

	for name, strategy := range map[string]RefreshStrategy{
		"local":  ApplyLocalChanges,
		"remote": ApplyRemoteChanges,
	} {
		t.Run(name, func(t *testing.T) {
			local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}
			require.NoError(t, local.Changed.SetValue(Path{"workers"}, float64(16)))

			// same revision id means nobody saved in between, local edits
			// survive untouched regardless of strategy
			merged, err := strategy(local, newTestData(1), schema)
			require.NoError(t, err)

			assert.Same(t, local.Changed, merged)
			assert.Equal(t, float64(16), value(t, merged, "workers"))
		})
	}
}

func TestMergeNoLocalEdits(t *testing.T) {
	schema := newTestSchema(t)

	for name, strategy := range map[string]RefreshStrategy{
		"local":  ApplyLocalChanges,
		"remote": ApplyRemoteChanges,
	} {
		t.Run(name, func(t *testing.T) {
			local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}

			remote := newTestData(2)
			require.NoError(t, remote.SetValue(Path{"workers"}, float64(32)))

			merged, err := strategy(local, remote, schema)
			require.NoError(t, err)

			assert.Same(t, remote, merged)
		})
	}
}

func TestApplyLocalChangesConflict(t *testing.T) {
	schema := newTestSchema(t)

	local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}
	require.NoError(t, local.Changed.SetValue(Path{"workers"}, float64(16)))
	require.NoError(t, local.Changed.SetAttribute(Path{"advanced"}, "isActive", true))

	remote := newTestData(2)
	require.NoError(t, remote.SetValue(Path{"workers"}, float64(32)))
	require.NoError(t, remote.SetValue(Path{"cluster_name"}, "renamed"))

	merged, err := ApplyLocalChanges(local, remote, schema)
	require.NoError(t, err)

	// local wins the conflict, the unrelated remote edit survives
	assert.Equal(t, float64(16), value(t, merged, "workers"))
	assert.Equal(t, "renamed", value(t, merged, "cluster_name"))

	active, err := merged.Attribute(Path{"advanced"}, "isActive")
	require.NoError(t, err)
	assert.Equal(t, true, active)
}

func TestApplyRemoteChangesConflict(t *testing.T) {
	schema := newTestSchema(t)

	local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}
	require.NoError(t, local.Changed.SetValue(Path{"workers"}, float64(16)))
	require.NoError(t, local.Changed.SetValue(Path{"logging", "level"}, "debug"))

	remote := newTestData(2)
	require.NoError(t, remote.SetValue(Path{"workers"}, float64(32)))

	merged, err := ApplyRemoteChanges(local, remote, schema)
	require.NoError(t, err)

	// remote wins the conflict, the exclusive local edit is carried over
	assert.Equal(t, float64(32), value(t, merged, "workers"))
	assert.Equal(t, "debug", value(t, merged, "logging", "level"))
}

func TestApplyRemoteChangesAttributeConflict(t *testing.T) {
	schema := newTestSchema(t)

	local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}
	require.NoError(t, local.Changed.SetAttribute(Path{"advanced"}, "isActive", true))
	require.NoError(t, local.Changed.SetValue(Path{"cluster_name"}, "renamed"))

	remote := newTestData(2)
	require.NoError(t, remote.SetAttribute(Path{"advanced"}, "isActive", false))
	// the bundle differs from the session's initial state once any attribute
	// in it changed remotely
	require.NoError(t, remote.SetAttribute(Path{"advanced"}, "isSynced", true))

	merged, err := ApplyRemoteChanges(local, remote, schema)
	require.NoError(t, err)

	active, err := merged.Attribute(Path{"advanced"}, "isActive")
	require.NoError(t, err)
	assert.Equal(t, false, active)
	assert.Equal(t, "renamed", value(t, merged, "cluster_name"))
}

func TestApplyRemoteChangesAttributeConflictFails(t *testing.T) {
	// SetAttribute on a path the remote never declared surfaces as an error
	// instead of silently creating a bundle
	schema := newTestSchema(t)

	local := LocalConfigs{Initial: newTestData(1), Changed: newTestData(1)}
	require.NoError(t, local.Changed.SetAttribute(Path{"advanced"}, "isActive", true))

	remote := NewConfigData(2, "", configValues(), nil)
	require.NoError(t, remote.SetValue(Path{"workers"}, float64(32)))

	_, err := ApplyLocalChanges(local, remote, schema)
	assert.ErrorIs(t, err, ErrParameterNotFound)
}
