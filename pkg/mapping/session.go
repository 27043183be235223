package mapping

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/arenadata/adcm-go-client/pkg/client"
)

// Owner is the cluster the mapping belongs to.
type Owner interface {
	Requester() client.Requester
	Path() []string
}

// ClusterMapping is one mapping editing session. Like a configuration
// session it is single-writer: one goroutine owns it at a time.
type ClusterMapping struct {
	owner   Owner
	log     *slog.Logger
	initial Data
	current Data
}

// NewClusterMapping fetches the cluster's current mapping and opens an
// editing session over it.
func NewClusterMapping(ctx context.Context, owner Owner, log *slog.Logger) (*ClusterMapping, error) {
	if log == nil {
		log = slog.Default()
	}

	remote, err := fetchMapping(ctx, owner)
	if err != nil {
		return nil, err
	}

	return &ClusterMapping{
		owner:   owner,
		log:     log,
		initial: remote,
		current: remote.Clone(),
	}, nil
}

// Add associates hosts with components. Already-present pairs are kept.
func (m *ClusterMapping) Add(entries ...Entry) {
	m.current.Append(entries...)
}

// Remove drops associations; absent pairs are ignored.
func (m *ClusterMapping) Remove(entries ...Entry) {
	m.current.RemoveAll(entries...)
}

// Empty drops every association.
func (m *ClusterMapping) Empty() {
	m.current.Clear()
}

// Contains reports whether the pair is currently mapped.
func (m *ClusterMapping) Contains(entry Entry) bool {
	return m.current.Contains(entry)
}

// All lists the current associations in a stable order.
func (m *ClusterMapping) All() []Entry {
	entries := m.current.ToSlice()
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].HostID != entries[j].HostID {
			return entries[i].HostID < entries[j].HostID
		}
		return entries[i].ComponentID < entries[j].ComponentID
	})
	return entries
}

// Save uploads the current mapping; on success it becomes the new baseline.
func (m *ClusterMapping) Save(ctx context.Context) error {
	payload := make([]map[string]any, 0, m.current.Cardinality())
	for _, entry := range m.All() {
		payload = append(payload, map[string]any{"hostId": entry.HostID, "componentId": entry.ComponentID})
	}

	if _, err := m.owner.Requester().Post(ctx, append(m.owner.Path(), "mapping"), payload); err != nil {
		return err
	}

	m.initial = m.current.Clone()

	m.log.DebugContext(ctx, "cluster mapping saved", "entries", m.current.Cardinality())

	return nil
}

// Refresh fetches the mapping currently stored on the server and reconciles
// it with local edits under the given strategy. The merge result becomes
// both the new baseline and the new working set.
func (m *ClusterMapping) Refresh(ctx context.Context, strategy RefreshStrategy) error {
	remote, err := fetchMapping(ctx, m.owner)
	if err != nil {
		return err
	}

	merged := strategy(Local{Initial: m.initial, Current: m.current}, remote)

	m.initial = merged.Clone()
	m.current = merged.Clone()

	return nil
}

func fetchMapping(ctx context.Context, owner Owner) (Data, error) {
	response, err := owner.Requester().Get(ctx, append(owner.Path(), "mapping"), nil)
	if err != nil {
		return nil, err
	}

	rawEntries, err := response.AsArray()
	if err != nil {
		return nil, err
	}

	remote := mapset.NewSet[Entry]()
	for _, raw := range rawEntries {
		record, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("malformed mapping entry %v", raw)
		}
		hostID, err := asInt64(record["hostId"])
		if err != nil {
			return nil, fmt.Errorf("mapping entry has no usable hostId: %w", err)
		}
		componentID, err := asInt64(record["componentId"])
		if err != nil {
			return nil, fmt.Errorf("mapping entry has no usable componentId: %w", err)
		}
		remote.Add(Entry{HostID: hostID, ComponentID: componentID})
	}

	return remote, nil
}

func asInt64(value any) (int64, error) {
	switch typed := value.(type) {
	case int64:
		return typed, nil
	case int:
		return int64(typed), nil
	case float64:
		return int64(typed), nil
	default:
		return 0, fmt.Errorf("cannot read %T as an integer id", value)
	}
}
