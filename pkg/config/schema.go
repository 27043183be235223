package config

import (
	"fmt"
)

type displayNameKey struct {
	group string
	title string
}

// Schema is the analyzed form of an object's configuration schema document.
// It is built once per document and answers classification questions for the
// wrapper tree, the difference engine and the merge strategies.
//
// Every parameter path belongs to at most one of: plain parameter, group,
// JSON parameter.
type Schema struct {
	raw map[string]any

	groups       map[string]struct{}
	activatable  map[string]struct{}
	jsonFields   map[string]struct{}
	displayNames map[displayNameKey]string
	params       map[string]map[string]any
}

// NewSchema analyzes a JSON-Schema-like document with a root "properties"
// mapping. Group nodes are object-typed nodes that forbid additional
// properties; activatable groups carry the adcmMeta activation flag; JSON
// parameters declare the json-as-string wire format. Nullable "oneOf"
// declarations are normalized to their first non-null branch before
// classification.
//
// A malformed document (missing "properties" or "title") fails with ErrSchema.
func NewSchema(document map[string]any) (*Schema, error) {
	s := &Schema{
		raw:          document,
		groups:       map[string]struct{}{},
		activatable:  map[string]struct{}{},
		jsonFields:   map[string]struct{}{},
		displayNames: map[displayNameKey]string{},
		params:       map[string]map[string]any{},
	}

	if err := s.analyze(Path{}, document); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Schema) analyze(prefix Path, node map[string]any) error {
	properties, ok := node["properties"].(map[string]any)
	if !ok {
		return fmt.Errorf("%w: node %q has no properties", ErrSchema, prefix)
	}

	for name, rawSpec := range properties {
		spec, ok := unwrapNullable(rawSpec)
		if !ok {
			return fmt.Errorf("%w: parameter %q has an invalid declaration", ErrSchema, prefix.Child(name))
		}

		title, ok := spec["title"].(string)
		if !ok {
			return fmt.Errorf("%w: parameter %q has no title", ErrSchema, prefix.Child(name))
		}

		path := prefix.Child(name)
		full := path.String()

		s.displayNames[displayNameKey{group: prefix.String(), title: title}] = name
		s.params[full] = spec

		switch {
		case isGroupNode(spec):
			s.groups[full] = struct{}{}
			if isActivatableNode(spec) {
				s.activatable[full] = struct{}{}
			}
			if err := s.analyze(path, spec); err != nil {
				return err
			}
		case isJSONNode(spec):
			s.jsonFields[full] = struct{}{}
		}
	}

	return nil
}

// IsGroup reports whether the parameter at path is a nested group.
func (s *Schema) IsGroup(path Path) bool {
	_, ok := s.groups[path.String()]
	return ok
}

// IsActivatableGroup reports whether the parameter at path is a group with a
// user-togglable activation state.
func (s *Schema) IsActivatableGroup(path Path) bool {
	_, ok := s.activatable[path.String()]
	return ok
}

// IsJSON reports whether the parameter at path carries its value as a
// serialized JSON string on the wire.
func (s *Schema) IsJSON(path Path) bool {
	_, ok := s.jsonFields[path.String()]
	return ok
}

// Contains reports whether path names a declared parameter.
func (s *Schema) Contains(path Path) bool {
	_, ok := s.params[path.String()]
	return ok
}

// JSONFields returns the paths of all JSON-as-string parameters.
func (s *Schema) JSONFields() []Path {
	paths := make([]Path, 0, len(s.jsonFields))
	for full := range s.jsonFields {
		paths = append(paths, ParsePath(full))
	}
	return paths
}

// TechnicalName resolves a display title to the technical parameter name
// within the scope of one group (the root scope is the empty path).
func (s *Schema) TechnicalName(group Path, title string) (string, bool) {
	name, ok := s.displayNames[displayNameKey{group: group.String(), title: title}]
	return name, ok
}

// Default returns the declared default for the parameter at path. For groups
// it assembles the defaults of all child parameters recursively.
func (s *Schema) Default(path Path) (any, error) {
	spec, ok := s.params[path.String()]
	if !ok {
		return nil, fmt.Errorf("%w: %q is not declared in the schema", ErrParameterNotFound, path)
	}

	if !s.IsGroup(path) {
		return spec["default"], nil
	}

	properties, _ := spec["properties"].(map[string]any)
	defaults := make(map[string]any, len(properties))
	for child := range properties {
		value, err := s.Default(path.Child(child))
		if err != nil {
			return nil, err
		}
		defaults[child] = value
	}

	return defaults, nil
}

// Equal reports whether two schemas declare the same parameters with the
// same types. It is the guard used before diffing or merging configurations
// of potentially different versions.
func (s *Schema) Equal(other *Schema) bool {
	if other == nil || len(s.params) != len(other.params) {
		return false
	}
	for full, spec := range s.params {
		otherSpec, ok := other.params[full]
		if !ok || declaredType(spec) != declaredType(otherSpec) {
			return false
		}
	}
	return true
}

func declaredType(spec map[string]any) string {
	if t, ok := spec["type"].(string); ok {
		return t
	}
	// enum parameters carry no "type" in ADCM schemas
	return "enum"
}

// unwrapNullable normalizes an optional parameter declared as a
// "this-or-null" union to its first non-null branch.
func unwrapNullable(rawSpec any) (map[string]any, bool) {
	spec, ok := rawSpec.(map[string]any)
	if !ok {
		return nil, false
	}

	branches, ok := spec["oneOf"].([]any)
	if !ok {
		return spec, true
	}

	for _, rawBranch := range branches {
		branch, ok := rawBranch.(map[string]any)
		if !ok {
			continue
		}
		if t, _ := branch["type"].(string); t != "null" {
			return branch, true
		}
	}

	return nil, false
}

func isGroupNode(spec map[string]any) bool {
	// group-like structures are almost impossible to tell apart from groups,
	// the additionalProperties check is what the server guarantees
	allowsExtra, ok := spec["additionalProperties"].(bool)
	return spec["type"] == "object" && ok && !allowsExtra
}

func isActivatableNode(spec map[string]any) bool {
	meta, _ := spec["adcmMeta"].(map[string]any)
	activation, _ := meta["activation"].(map[string]any)
	allowed, _ := activation["isAllowChange"].(bool)
	return allowed
}

func isJSONNode(spec map[string]any) bool {
	return spec["format"] == "json"
}
