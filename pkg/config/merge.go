package config

import "fmt"

// LocalConfigs is one editing session's view: the snapshot fetched at
// session start and the live edited snapshot.
type LocalConfigs struct {
	Initial *ConfigData
	Changed *ConfigData
}

// RefreshStrategy reconciles local edits with a freshly fetched remote
// snapshot. The remote snapshot may be mutated by the strategy, so callers
// must not pass a copy they intend to keep pristine.
type RefreshStrategy func(local LocalConfigs, remote *ConfigData, schema *Schema) (*ConfigData, error)

// ApplyLocalChanges carries every local edit onto the remote snapshot,
// overwriting remote edits on conflicting parameters ("local wins").
func ApplyLocalChanges(local LocalConfigs, remote *ConfigData, schema *Schema) (*ConfigData, error) {
	if local.Initial.ID == remote.ID {
		// nobody changed the configuration since the session started
		return local.Changed, nil
	}

	localDiff := FindDifference(local.Initial, local.Changed, schema)
	if localDiff.IsEmpty() {
		return remote, nil
	}

	if err := applyChanges(remote, localDiff.Values, localDiff.Attributes); err != nil {
		return nil, err
	}

	return remote, nil
}

// ApplyRemoteChanges keeps the remote value for every parameter changed on
// both sides and carries non-conflicting local edits onto the remote
// snapshot ("remote wins on conflict, local wins elsewhere").
func ApplyRemoteChanges(local LocalConfigs, remote *ConfigData, schema *Schema) (*ConfigData, error) {
	if local.Initial.ID == remote.ID {
		return local.Changed, nil
	}

	localDiff := FindDifference(local.Initial, local.Changed, schema)
	if localDiff.IsEmpty() {
		return remote, nil
	}

	remoteDiff := FindDifference(local.Initial, remote, schema)

	// conflicting parameters already hold the remote value in remote, so
	// only the locally-exclusive part of the diff is applied
	values := map[string]ValueChange{}
	for full, change := range localDiff.Values {
		if _, conflicting := remoteDiff.Values[full]; !conflicting {
			values[full] = change
		}
	}

	attributes := map[string]ValueChange{}
	for full, change := range localDiff.Attributes {
		if _, conflicting := remoteDiff.Attributes[full]; !conflicting {
			attributes[full] = change
		}
	}

	if err := applyChanges(remote, values, attributes); err != nil {
		return nil, err
	}

	return remote, nil
}

func applyChanges(data *ConfigData, values, attributes map[string]ValueChange) error {
	for full, change := range values {
		if err := data.SetValue(ParsePath(full), change.Current); err != nil {
			return fmt.Errorf("apply value change at %q: %w", full, err)
		}
	}

	for full, change := range attributes {
		bundle, ok := change.Current.(map[string]any)
		if !ok {
			return fmt.Errorf("cannot apply attribute change of type %T at %q, expected an attribute bundle", change.Current, full)
		}
		path := ParsePath(full)
		for name, value := range bundle {
			if err := data.SetAttribute(path, name, value); err != nil {
				return fmt.Errorf("apply attribute change at %q: %w", full, err)
			}
		}
	}

	return nil
}
