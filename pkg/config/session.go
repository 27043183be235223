package config

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arenadata/adcm-go-client/pkg/client"
)

// Owner is the resource a configuration belongs to: it knows its own API
// path and carries the requester used to reach the server.
type Owner interface {
	Requester() client.Requester
	Path() []string
}

// configBase holds one configuration editing lifecycle: the analyzed schema,
// the pristine snapshot fetched at session start and the working snapshot
// all edits land in. A session is single-writer; concurrent edits through
// the same session must be serialized by the caller.
type configBase struct {
	schema  *Schema
	initial *ConfigData
	current *ConfigData
	owner   Owner
	log     *slog.Logger
}

func newConfigBase(data *ConfigData, schema *Schema, owner Owner, log *slog.Logger) (configBase, error) {
	if log == nil {
		log = slog.Default()
	}
	if err := decodeJSONFields(data, schema); err != nil {
		return configBase{}, err
	}
	return configBase{
		schema:  schema,
		initial: data,
		current: data.DeepCopy(),
		owner:   owner,
		log:     log,
	}, nil
}

// ID is the revision id of the snapshot the session started from.
func (b *configBase) ID() int64 {
	return b.initial.ID
}

// Description of the fetched revision.
func (b *configBase) Description() string {
	return b.initial.Description
}

// Schema of this configuration.
func (b *configBase) Schema() *Schema {
	return b.schema
}

// Data is the live working snapshot all wrapper edits land in.
func (b *configBase) Data() *ConfigData {
	return b.current
}

func (b *configBase) reset() {
	b.current = b.initial.DeepCopy()
}

func (b *configBase) difference(other *configBase, otherIsPrevious bool) (*Difference, error) {
	if !b.schema.Equal(other.schema) {
		return nil, fmt.Errorf("%w: configuration %d cannot be compared with %d", ErrConfigComparison, other.ID(), b.ID())
	}

	previous, current := other, b
	if !otherIsPrevious {
		previous, current = b, other
	}

	return FindDifference(previous.current, current.current, b.schema), nil
}

// save uploads the working snapshot as a new revision. On success the fresh
// server record becomes the new initial snapshot. On failure the working
// snapshot is left exactly as it was, so the session stays usable for a
// retry, and the transport error propagates unchanged.
func (b *configBase) save(ctx context.Context, description string) error {
	payload, err := b.current.ToPayload(b.schema)
	if err != nil {
		return err
	}
	payload["description"] = description

	response, err := b.owner.Requester().Post(ctx, append(b.owner.Path(), "configs"), payload)
	if err != nil {
		return err
	}

	record, err := response.AsObject()
	if err != nil {
		return err
	}
	saved, err := ConfigDataFromRecord(record)
	if err != nil {
		return err
	}
	if err := decodeJSONFields(saved, b.schema); err != nil {
		return err
	}

	b.initial = saved
	b.reset()

	b.log.DebugContext(ctx, "configuration saved", "id", saved.ID, "description", description)

	return nil
}

// refresh reconciles the session with the configuration currently active on
// the server. Nothing is swapped until both the schema and the full remote
// snapshot have been received and merged, so a failed or cancelled fetch
// leaves the session untouched.
func (b *configBase) refresh(ctx context.Context, strategy RefreshStrategy) error {
	remote, remoteSchema, err := fetchCurrentState(ctx, b.owner)
	if err != nil {
		return err
	}

	if !b.schema.Equal(remoteSchema) {
		return fmt.Errorf("%w: cannot refresh after an upgrade changed the schema", ErrConfigComparison)
	}

	pristine := remote.DeepCopy()

	merged, err := strategy(LocalConfigs{Initial: b.initial, Changed: b.current}, remote, b.schema)
	if err != nil {
		return err
	}

	b.initial = pristine
	b.current = merged

	b.log.DebugContext(ctx, "configuration refreshed", "id", pristine.ID)

	return nil
}

// ObjectConfig is the editing session over a cluster, service, component,
// host or host provider configuration.
type ObjectConfig struct {
	configBase
	root *ParameterGroup
}

// NewObjectConfig starts an editing session over an already-fetched snapshot
// and schema. JSON-declared wire strings are decoded in place before any
// wrapper sees them.
func NewObjectConfig(data *ConfigData, schema *Schema, owner Owner, log *slog.Logger) (*ObjectConfig, error) {
	base, err := newConfigBase(data, schema, owner, log)
	if err != nil {
		return nil, err
	}
	c := &ObjectConfig{configBase: base}
	c.rebuild()
	return c, nil
}

// rebuild replaces the root wrapper, invalidating every cached wrapper in
// one stroke. Called after each snapshot swap.
func (c *ObjectConfig) rebuild() {
	c.root = newParameterGroup(Path{}, c.current, c.schema, false)
}

// Get resolves a root-level entry by technical name or display title.
func (c *ObjectConfig) Get(name string) (ConfigEntry, error) {
	return c.root.Get(name)
}

// Parameter resolves a root-level plain parameter.
func (c *ObjectConfig) Parameter(name string) (*Parameter, error) {
	return c.root.Parameter(name)
}

// Group resolves a root-level group.
func (c *ObjectConfig) Group(name string) (*ParameterGroup, error) {
	return c.root.Group(name)
}

// ActivatableGroup resolves a root-level activatable group.
func (c *ObjectConfig) ActivatableGroup(name string) (*ActivatableParameterGroup, error) {
	return c.root.ActivatableGroup(name)
}

// Reset discards all local edits, returning the working snapshot to the
// initial revision.
func (c *ObjectConfig) Reset() {
	c.reset()
	c.rebuild()
}

// Difference computes the structural diff against another session of the
// same schema, treating the other session as the previous state.
func (c *ObjectConfig) Difference(other *ObjectConfig) (*Difference, error) {
	return c.difference(&other.configBase, true)
}

// Save uploads the working snapshot as a new revision.
func (c *ObjectConfig) Save(ctx context.Context, description string) error {
	if err := c.save(ctx, description); err != nil {
		return err
	}
	c.rebuild()
	return nil
}

// Refresh reconciles local edits with the configuration currently active on
// the server under the given strategy.
func (c *ObjectConfig) Refresh(ctx context.Context, strategy RefreshStrategy) error {
	if err := c.refresh(ctx, strategy); err != nil {
		return err
	}
	c.rebuild()
	return nil
}

// HostGroupConfig is the editing session over a config host group's
// configuration; its wrappers carry the desync semantics.
type HostGroupConfig struct {
	configBase
	root *ParameterGroupHG
}

// NewHostGroupConfig starts an editing session over a host group snapshot.
func NewHostGroupConfig(data *ConfigData, schema *Schema, owner Owner, log *slog.Logger) (*HostGroupConfig, error) {
	base, err := newConfigBase(data, schema, owner, log)
	if err != nil {
		return nil, err
	}
	c := &HostGroupConfig{configBase: base}
	c.rebuild()
	return c, nil
}

func (c *HostGroupConfig) rebuild() {
	c.root = &ParameterGroupHG{ParameterGroup: *newParameterGroup(Path{}, c.current, c.schema, true)}
}

// Get resolves a root-level entry by technical name or display title.
func (c *HostGroupConfig) Get(name string) (ConfigEntry, error) {
	return c.root.Get(name)
}

// Parameter resolves a root-level plain parameter.
func (c *HostGroupConfig) Parameter(name string) (*ParameterHG, error) {
	return c.root.Parameter(name)
}

// Group resolves a root-level group.
func (c *HostGroupConfig) Group(name string) (*ParameterGroupHG, error) {
	return c.root.Group(name)
}

// ActivatableGroup resolves a root-level activatable group.
func (c *HostGroupConfig) ActivatableGroup(name string) (*ActivatableParameterGroupHG, error) {
	return c.root.ActivatableGroup(name)
}

// Reset discards all local edits.
func (c *HostGroupConfig) Reset() {
	c.reset()
	c.rebuild()
}

// Difference computes the structural diff against another session of the
// same schema, treating the other session as the previous state.
func (c *HostGroupConfig) Difference(other *HostGroupConfig) (*Difference, error) {
	return c.difference(&other.configBase, true)
}

// Save uploads the working snapshot as a new revision.
func (c *HostGroupConfig) Save(ctx context.Context, description string) error {
	if err := c.save(ctx, description); err != nil {
		return err
	}
	c.rebuild()
	return nil
}

// Refresh reconciles local edits with the configuration currently active on
// the server under the given strategy.
func (c *HostGroupConfig) Refresh(ctx context.Context, strategy RefreshStrategy) error {
	if err := c.refresh(ctx, strategy); err != nil {
		return err
	}
	c.rebuild()
	return nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
