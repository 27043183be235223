package config

import (
	"errors"
	"fmt"
)

// ConfigEntry is the closed union of wrapper kinds handed out by group
// lookups: *Parameter, *ParameterGroup, *ActivatableParameterGroup and their
// host-group counterparts *ParameterHG, *ParameterGroupHG,
// *ActivatableParameterGroupHG.
//
// Wrappers hold path coordinates plus a reference to the snapshot they were
// built over; they never alias the nested containers themselves. After a
// session swaps its snapshot (reset, save, refresh) all previously obtained
// wrappers are bound to the abandoned snapshot and must be re-acquired.
type ConfigEntry interface {
	// ParameterPath is the full path of the wrapped parameter.
	ParameterPath() Path
}

type node struct {
	path   Path
	data   *ConfigData
	schema *Schema
}

func (n *node) ParameterPath() Path {
	return n.path
}

func (n *node) setSynced(synced bool) error {
	return n.data.SetAttribute(n.path, "isSynced", synced)
}

// Parameter is the read/write view over one non-group parameter.
type Parameter struct {
	node
}

// Value reads the current value through the snapshot.
func (p *Parameter) Value() (any, error) {
	return p.data.Value(p.path)
}

// Set writes a new value through the snapshot.
//
// When the write fails because an enclosing group is present but null (not
// yet materialized), the first such ancestor is populated with the schema's
// declared defaults and the write is retried once. Any other failure is
// returned unchanged.
func (p *Parameter) Set(value any) error {
	err := p.data.SetValue(p.path, value)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrParameterNotFound) {
		return err
	}

	if !p.materializeNilAncestor() {
		return err
	}

	return p.data.SetValue(p.path, value)
}

// materializeNilAncestor fills the first null ancestor group along the
// parameter's path with its schema defaults. Reports whether a retry makes
// sense.
func (p *Parameter) materializeNilAncestor() bool {
	for i := 1; i < len(p.path); i++ {
		prefix := p.path[:i]
		value, err := p.data.Value(prefix)
		if err != nil {
			return false
		}
		if value != nil || !p.schema.IsGroup(prefix) {
			continue
		}

		defaults, err := p.schema.Default(prefix)
		if err != nil {
			return false
		}
		if p.data.SetValue(prefix, defaults) != nil {
			return false
		}
		return true
	}
	return false
}

// ParameterValue reads a parameter's value and asserts its inner type,
// failing with ErrParameterValueType on a mismatch or a null value.
func ParameterValue[T any](p *Parameter) (T, error) {
	var zero T

	value, err := p.Value()
	if err != nil {
		return zero, err
	}

	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("%w: value of %q is %T, expected %T", ErrParameterValueType, p.path, value, zero)
	}

	return typed, nil
}

// ParameterHG is a parameter inside a host-group-owned configuration. Every
// write marks the parameter as diverged from the owning object's base
// configuration.
type ParameterHG struct {
	Parameter
}

// Set writes a new value and desyncs the parameter.
func (p *ParameterHG) Set(value any) error {
	if err := p.Parameter.Set(value); err != nil {
		return err
	}
	return p.Desync()
}

// Sync marks the parameter as following its base value again. The value
// itself is left untouched.
func (p *ParameterHG) Sync() error {
	return p.setSynced(true)
}

// Desync marks the parameter as diverged from its base value.
func (p *ParameterHG) Desync() error {
	return p.setSynced(false)
}

// ParameterGroup is the structural view over one schema group. Lookups
// accept technical names and display titles, memoize resolved wrappers per
// group and dispatch the wrapper kind from the schema.
type ParameterGroup struct {
	node
	hostGroup bool
	cache     map[string]ConfigEntry
}

func newParameterGroup(path Path, data *ConfigData, schema *Schema, hostGroup bool) *ParameterGroup {
	return &ParameterGroup{
		node:      node{path: path, data: data, schema: schema},
		hostGroup: hostGroup,
		cache:     map[string]ConfigEntry{},
	}
}

// Get resolves a child entry by technical name or display title. Repeated
// lookups of the same parameter return the identical wrapper instance.
func (g *ParameterGroup) Get(name string) (ConfigEntry, error) {
	technicalName, ok := g.schema.TechnicalName(g.path, name)
	if !ok {
		technicalName = name
	}

	if entry, ok := g.cache[technicalName]; ok {
		return entry, nil
	}

	path := g.path.Child(technicalName)
	if !g.schema.Contains(path) {
		return nil, fmt.Errorf("%w: no parameter %q in group %q", ErrParameterNotFound, name, g.path)
	}

	entry := g.newChild(path)
	g.cache[technicalName] = entry

	return entry, nil
}

func (g *ParameterGroup) newChild(path Path) ConfigEntry {
	switch {
	case g.schema.IsActivatableGroup(path):
		if g.hostGroup {
			return &ActivatableParameterGroupHG{
				ParameterGroupHG: ParameterGroupHG{ParameterGroup: *newParameterGroup(path, g.data, g.schema, true)},
			}
		}
		return &ActivatableParameterGroup{ParameterGroup: *newParameterGroup(path, g.data, g.schema, false)}
	case g.schema.IsGroup(path):
		if g.hostGroup {
			return &ParameterGroupHG{ParameterGroup: *newParameterGroup(path, g.data, g.schema, true)}
		}
		return newParameterGroup(path, g.data, g.schema, false)
	default:
		parameter := Parameter{node: node{path: path, data: g.data, schema: g.schema}}
		if g.hostGroup {
			return &ParameterHG{Parameter: parameter}
		}
		return &parameter
	}
}

// Parameter resolves a child entry and requires it to be a plain parameter.
func (g *ParameterGroup) Parameter(name string) (*Parameter, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	switch typed := entry.(type) {
	case *Parameter:
		return typed, nil
	case *ParameterHG:
		return &typed.Parameter, nil
	default:
		return nil, fmt.Errorf("%w: %q is a %T, expected a parameter", ErrParameterType, name, entry)
	}
}

// Group resolves a child entry and requires it to be a group. Activatable
// groups satisfy the request.
func (g *ParameterGroup) Group(name string) (*ParameterGroup, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	switch typed := entry.(type) {
	case *ParameterGroup:
		return typed, nil
	case *ActivatableParameterGroup:
		return &typed.ParameterGroup, nil
	case *ParameterGroupHG:
		return &typed.ParameterGroup, nil
	case *ActivatableParameterGroupHG:
		return &typed.ParameterGroup, nil
	default:
		return nil, fmt.Errorf("%w: %q is a %T, expected a group", ErrParameterType, name, entry)
	}
}

// ActivatableGroup resolves a child entry and requires it to be an
// activatable group.
func (g *ParameterGroup) ActivatableGroup(name string) (*ActivatableParameterGroup, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	typed, ok := entry.(*ActivatableParameterGroup)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %T, expected an activatable group", ErrParameterType, name, entry)
	}
	return typed, nil
}

// ActivatableParameterGroup is a group with an on/off state independent of
// its contents.
type ActivatableParameterGroup struct {
	ParameterGroup
}

// Activate turns the group on by setting its isActive attribute.
func (g *ActivatableParameterGroup) Activate() error {
	return g.data.SetAttribute(g.path, "isActive", true)
}

// Deactivate turns the group off.
func (g *ActivatableParameterGroup) Deactivate() error {
	return g.data.SetAttribute(g.path, "isActive", false)
}

// ParameterGroupHG is a group inside a host-group-owned configuration. Its
// lookups hand out the host-group wrapper kinds.
type ParameterGroupHG struct {
	ParameterGroup
}

// Parameter resolves a child entry and requires it to be a plain parameter.
func (g *ParameterGroupHG) Parameter(name string) (*ParameterHG, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	typed, ok := entry.(*ParameterHG)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %T, expected a parameter", ErrParameterType, name, entry)
	}
	return typed, nil
}

// Group resolves a child entry and requires it to be a group. Activatable
// groups satisfy the request.
func (g *ParameterGroupHG) Group(name string) (*ParameterGroupHG, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	switch typed := entry.(type) {
	case *ParameterGroupHG:
		return typed, nil
	case *ActivatableParameterGroupHG:
		return &typed.ParameterGroupHG, nil
	default:
		return nil, fmt.Errorf("%w: %q is a %T, expected a group", ErrParameterType, name, entry)
	}
}

// ActivatableGroup resolves a child entry and requires it to be an
// activatable group.
func (g *ParameterGroupHG) ActivatableGroup(name string) (*ActivatableParameterGroupHG, error) {
	entry, err := g.Get(name)
	if err != nil {
		return nil, err
	}
	typed, ok := entry.(*ActivatableParameterGroupHG)
	if !ok {
		return nil, fmt.Errorf("%w: %q is a %T, expected an activatable group", ErrParameterType, name, entry)
	}
	return typed, nil
}

// ActivatableParameterGroupHG is an activatable group inside a
// host-group-owned configuration; toggling it also desyncs the group.
type ActivatableParameterGroupHG struct {
	ParameterGroupHG
}

// Activate turns the group on and desyncs it.
func (g *ActivatableParameterGroupHG) Activate() error {
	if err := g.data.SetAttribute(g.path, "isActive", true); err != nil {
		return err
	}
	return g.Desync()
}

// Deactivate turns the group off and desyncs it.
func (g *ActivatableParameterGroupHG) Deactivate() error {
	if err := g.data.SetAttribute(g.path, "isActive", false); err != nil {
		return err
	}
	return g.Desync()
}

// Sync marks the group as following its base state again.
func (g *ActivatableParameterGroupHG) Sync() error {
	return g.setSynced(true)
}

// Desync marks the group as diverged from its base state.
func (g *ActivatableParameterGroupHG) Desync() error {
	return g.setSynced(false)
}
