package config

import "errors"

// ErrSchema is returned when a configuration schema document is malformed
// (missing "properties" on a group node, missing "title" on a parameter).
var ErrSchema = errors.New("malformed configuration schema")

// ErrParameterNotFound is returned when a lookup by path or display name
// matches no parameter in the schema or no value slot in the snapshot.
var ErrParameterNotFound = errors.New("parameter not found")

// ErrParameterType is returned when a typed group lookup resolves to an
// entry of a different kind than requested.
var ErrParameterType = errors.New("unexpected parameter kind")

// ErrParameterValueType is returned when the inner value of a parameter
// does not match the asserted type.
var ErrParameterValueType = errors.New("unexpected parameter value type")

// ErrConfigComparison is returned when two configurations with different
// schemas are diffed or merged (typically after an upgrade changed the
// object's configuration layout).
var ErrConfigComparison = errors.New("configuration schemas do not match")
