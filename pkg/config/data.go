package config

import (
	"encoding/json"
	"fmt"
)

// ConfigData is one revision of an object's configuration: a nested values
// tree plus a flat attribute map keyed by absolute "/"-joined paths
// (activation and sync flags). Snapshots are immutable by convention: editing
// sessions work on deep copies and never touch the fetched original.
type ConfigData struct {
	// ID is assigned by the server; two revisions with equal content still
	// carry distinct ids.
	ID          int64
	Description string

	values     map[string]any
	attributes map[string]map[string]any
}

// NewConfigData assembles a snapshot from already-decoded values and
// attributes.
func NewConfigData(id int64, description string, values map[string]any, attributes map[string]map[string]any) *ConfigData {
	if values == nil {
		values = map[string]any{}
	}
	if attributes == nil {
		attributes = map[string]map[string]any{}
	}
	return &ConfigData{ID: id, Description: description, values: values, attributes: attributes}
}

// ConfigDataFromRecord builds a snapshot from a v2 API configuration record
// of the shape {id, description, config, adcmMeta}.
func ConfigDataFromRecord(record map[string]any) (*ConfigData, error) {
	id, err := asInt64(record["id"])
	if err != nil {
		return nil, fmt.Errorf("configuration record has no usable id: %w", err)
	}

	description, _ := record["description"].(string)

	values, ok := record["config"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("configuration record %d carries no config object", id)
	}

	attributes := map[string]map[string]any{}
	if rawMeta, ok := record["adcmMeta"].(map[string]any); ok {
		for full, rawBundle := range rawMeta {
			bundle, ok := rawBundle.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("configuration record %d carries a malformed attribute bundle at %q", id, full)
			}
			attributes[full] = bundle
		}
	}

	return NewConfigData(id, description, values, attributes), nil
}

// Values exposes the raw nested values tree.
func (d *ConfigData) Values() map[string]any {
	return d.values
}

// Attributes exposes the flat attribute map.
func (d *ConfigData) Attributes() map[string]map[string]any {
	return d.attributes
}

// Value reads the value at path. Every segment must exist; a miss anywhere
// along the path is ErrParameterNotFound.
func (d *ConfigData) Value(path Path) (any, error) {
	parent, name, err := d.parentOf(path)
	if err != nil {
		return nil, err
	}
	value, ok := parent[name]
	if !ok {
		return nil, fmt.Errorf("%w: no value at %q", ErrParameterNotFound, path)
	}
	return value, nil
}

// SetValue creates or overwrites the value at path. Parent containers must
// already exist; there is no auto-vivification.
func (d *ConfigData) SetValue(path Path, value any) error {
	parent, name, err := d.parentOf(path)
	if err != nil {
		return err
	}
	parent[name] = value
	return nil
}

// changeValue rewrites the value at path through fn.
func (d *ConfigData) changeValue(path Path, fn func(any) (any, error)) error {
	parent, name, err := d.parentOf(path)
	if err != nil {
		return err
	}
	value, ok := parent[name]
	if !ok {
		return fmt.Errorf("%w: no value at %q", ErrParameterNotFound, path)
	}
	changed, err := fn(value)
	if err != nil {
		return err
	}
	parent[name] = changed
	return nil
}

func (d *ConfigData) parentOf(path Path) (map[string]any, string, error) {
	if len(path) == 0 {
		return nil, "", fmt.Errorf("%w: empty parameter path", ErrParameterNotFound)
	}

	level := d.values
	for i, name := range path[:len(path)-1] {
		child, ok := level[name]
		if !ok {
			return nil, "", fmt.Errorf("%w: no group at %q", ErrParameterNotFound, path[:i+1])
		}
		group, ok := child.(map[string]any)
		if !ok {
			return nil, "", fmt.Errorf("%w: %q is not a group", ErrParameterNotFound, path[:i+1])
		}
		level = group
	}

	return level, path[len(path)-1], nil
}

// Attribute reads one attribute (e.g. "isActive") of the bundle at path.
func (d *ConfigData) Attribute(path Path, name string) (any, error) {
	bundle, ok := d.attributes[path.String()]
	if !ok {
		return nil, fmt.Errorf("%w: no attributes at %q", ErrParameterNotFound, path)
	}
	value, ok := bundle[name]
	if !ok {
		return nil, fmt.Errorf("%w: no attribute %q at %q", ErrParameterNotFound, name, path)
	}
	return value, nil
}

// SetAttribute writes one attribute of the bundle at path. The bundle must
// have been declared by the server payload: the schema dictates which paths
// carry attributes, so absence is a data-integrity error rather than a
// reason to silently create one.
func (d *ConfigData) SetAttribute(path Path, name string, value any) error {
	bundle, ok := d.attributes[path.String()]
	if !ok {
		return fmt.Errorf("%w: no attributes at %q", ErrParameterNotFound, path)
	}
	bundle[name] = value
	return nil
}

// DeepCopy clones the snapshot so that edits on the copy never reach the
// original.
func (d *ConfigData) DeepCopy() *ConfigData {
	attributes := make(map[string]map[string]any, len(d.attributes))
	for full, bundle := range d.attributes {
		copied := make(map[string]any, len(bundle))
		for name, value := range bundle {
			copied[name] = deepCopyValue(value)
		}
		attributes[full] = copied
	}

	return &ConfigData{
		ID:          d.ID,
		Description: d.Description,
		values:      deepCopyTree(d.values),
		attributes:  attributes,
	}
}

// ToPayload re-encodes all JSON-declared parameters and returns the
// {config, adcmMeta} pair ready for upload. It operates on a deep copy, so
// the snapshot it is called on stays untouched.
func (d *ConfigData) ToPayload(schema *Schema) (map[string]any, error) {
	copied := d.DeepCopy()
	if err := encodeJSONFields(copied, schema); err != nil {
		return nil, err
	}
	return map[string]any{"config": copied.values, "adcmMeta": copied.attributes}, nil
}

// decodeJSONFields parses every schema-declared JSON parameter whose current
// value is still a wire string, in place. Nulls pass through unchanged.
func decodeJSONFields(data *ConfigData, schema *Schema) error {
	for _, path := range schema.JSONFields() {
		err := data.changeValue(path, func(value any) (any, error) {
			wire, ok := value.(string)
			if !ok {
				return value, nil
			}
			var decoded any
			if err := json.Unmarshal([]byte(wire), &decoded); err != nil {
				return nil, fmt.Errorf("decode json parameter %q: %w", path, err)
			}
			return decoded, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// encodeJSONFields serializes every non-null JSON parameter back to its wire
// string form, in place.
func encodeJSONFields(data *ConfigData, schema *Schema) error {
	for _, path := range schema.JSONFields() {
		err := data.changeValue(path, func(value any) (any, error) {
			if value == nil {
				return nil, nil
			}
			encoded, err := json.Marshal(value)
			if err != nil {
				return nil, fmt.Errorf("encode json parameter %q: %w", path, err)
			}
			return string(encoded), nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func deepCopyTree(tree map[string]any) map[string]any {
	copied := make(map[string]any, len(tree))
	for name, value := range tree {
		copied[name] = deepCopyValue(value)
	}
	return copied
}

func deepCopyValue(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		return deepCopyTree(typed)
	case []any:
		copied := make([]any, len(typed))
		for i, element := range typed {
			copied[i] = deepCopyValue(element)
		}
		return copied
	default:
		return typed
	}
}

func asInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case int64:
		return typed, nil
	case int:
		return int64(typed), nil
	case float64:
		return int64(typed), nil
	case json.Number:
		return typed.Int64()
	default:
		return 0, fmt.Errorf("cannot read %T as an integer id", value)
	}
}
