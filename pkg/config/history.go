package config

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// historyCore resolves configuration revisions of one owner. The analyzed
// schema is fetched once and reused for every revision resolved through the
// same node.
type historyCore struct {
	owner  Owner
	log    *slog.Logger
	schema *Schema
}

func newHistoryCore(owner Owner, log *slog.Logger) historyCore {
	if log == nil {
		log = slog.Default()
	}
	return historyCore{owner: owner, log: log}
}

func (h *historyCore) ensureSchema(ctx context.Context) (*Schema, error) {
	if h.schema != nil {
		return h.schema, nil
	}

	schema, err := fetchSchema(ctx, h.owner)
	if err != nil {
		return nil, err
	}
	h.schema = schema

	return schema, nil
}

// fetch resolves one configuration record plus the schema. The two are
// independent server resources, so they are requested concurrently; the
// caller gets both or neither.
func (h *historyCore) fetch(ctx context.Context, query url.Values, pick func([]any) (map[string]any, error)) (*ConfigData, *Schema, error) {
	var (
		schema *Schema
		data   *ConfigData
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		schema, err = h.ensureSchema(groupCtx)
		return err
	})
	group.Go(func() error {
		var err error
		data, err = fetchConfigRecord(groupCtx, h.owner, query, pick)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	return data, schema, nil
}

// ConfigHistoryNode resolves the configuration revisions of a cluster,
// service, component, host or host provider into editing sessions.
type ConfigHistoryNode struct {
	historyCore
}

// NewConfigHistoryNode builds a history node for one owner.
func NewConfigHistoryNode(owner Owner, log *slog.Logger) *ConfigHistoryNode {
	return &ConfigHistoryNode{historyCore: newHistoryCore(owner, log)}
}

// Current starts an editing session over the revision the server flags as
// current.
func (n *ConfigHistoryNode) Current(ctx context.Context) (*ObjectConfig, error) {
	data, schema, err := n.fetch(ctx, currentQuery(), pickCurrent)
	if err != nil {
		return nil, err
	}
	return NewObjectConfig(data, schema, n.owner, n.log)
}

// At starts an editing session over the revision at the given history
// position. Revisions are ordered by id; negative positions count from the
// most recent one, so -1 is the latest revision.
func (n *ConfigHistoryNode) At(ctx context.Context, position int) (*ObjectConfig, error) {
	data, schema, err := n.fetch(ctx, positionQuery(position), pickFirst)
	if err != nil {
		return nil, err
	}
	return NewObjectConfig(data, schema, n.owner, n.log)
}

// HostGroupConfigHistoryNode is the history node of a config host group.
type HostGroupConfigHistoryNode struct {
	historyCore
}

// NewHostGroupConfigHistoryNode builds a history node for one config host
// group.
func NewHostGroupConfigHistoryNode(owner Owner, log *slog.Logger) *HostGroupConfigHistoryNode {
	return &HostGroupConfigHistoryNode{historyCore: newHistoryCore(owner, log)}
}

// Current starts an editing session over the revision the server flags as
// current.
func (n *HostGroupConfigHistoryNode) Current(ctx context.Context) (*HostGroupConfig, error) {
	data, schema, err := n.fetch(ctx, currentQuery(), pickCurrent)
	if err != nil {
		return nil, err
	}
	return NewHostGroupConfig(data, schema, n.owner, n.log)
}

// At starts an editing session over the revision at the given history
// position.
func (n *HostGroupConfigHistoryNode) At(ctx context.Context, position int) (*HostGroupConfig, error) {
	data, schema, err := n.fetch(ctx, positionQuery(position), pickFirst)
	if err != nil {
		return nil, err
	}
	return NewHostGroupConfig(data, schema, n.owner, n.log)
}

// currentQuery relies on the current revision being among the most recently
// created ones.
func currentQuery() url.Values {
	return url.Values{"ordering": {"-id"}, "limit": {"10"}, "offset": {"0"}}
}

func positionQuery(position int) url.Values {
	ordering := "id"
	offset := position
	if position < 0 {
		// -1 is the same as 0 in reverse order
		ordering = "-id"
		offset = -position - 1
	}
	return url.Values{"ordering": {ordering}, "limit": {"1"}, "offset": {strconv.Itoa(offset)}}
}

func fetchSchema(ctx context.Context, owner Owner) (*Schema, error) {
	response, err := owner.Requester().Get(ctx, append(owner.Path(), "config-schema"), nil)
	if err != nil {
		return nil, err
	}
	document, err := response.AsObject()
	if err != nil {
		return nil, err
	}
	return NewSchema(document)
}

// fetchCurrentState retrieves the schema and the currently active snapshot
// of one owner, with JSON-declared parameters already decoded.
func fetchCurrentState(ctx context.Context, owner Owner) (*ConfigData, *Schema, error) {
	var (
		schema *Schema
		data   *ConfigData
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		schema, err = fetchSchema(groupCtx, owner)
		return err
	})
	group.Go(func() error {
		var err error
		data, err = fetchConfigRecord(groupCtx, owner, currentQuery(), pickCurrent)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	if err := decodeJSONFields(data, schema); err != nil {
		return nil, nil, err
	}

	return data, schema, nil
}

func fetchConfigRecord(ctx context.Context, owner Owner, query url.Values, pick func([]any) (map[string]any, error)) (*ConfigData, error) {
	configsPath := append(owner.Path(), "configs")

	listResponse, err := owner.Requester().Get(ctx, configsPath, query)
	if err != nil {
		return nil, err
	}
	listBody, err := listResponse.AsObject()
	if err != nil {
		return nil, err
	}
	results, ok := listBody["results"].([]any)
	if !ok {
		return nil, fmt.Errorf("configuration list response carries no results")
	}

	summary, err := pick(results)
	if err != nil {
		return nil, err
	}
	id, err := asInt64(summary["id"])
	if err != nil {
		return nil, fmt.Errorf("configuration summary has no usable id: %w", err)
	}

	fullResponse, err := owner.Requester().Get(ctx, append(configsPath, formatID(id)), nil)
	if err != nil {
		return nil, err
	}
	record, err := fullResponse.AsObject()
	if err != nil {
		return nil, err
	}

	return ConfigDataFromRecord(record)
}

func pickCurrent(results []any) (map[string]any, error) {
	for _, raw := range results {
		record, ok := raw.(map[string]any)
		if !ok {
			continue
		}
		if isCurrent, _ := record["isCurrent"].(bool); isCurrent {
			return record, nil
		}
	}
	return nil, fmt.Errorf("failed to determine the current configuration")
}

func pickFirst(results []any) (map[string]any, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("configuration not found at the requested position")
	}
	record, ok := results[0].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("malformed configuration summary")
	}
	return record, nil
}
