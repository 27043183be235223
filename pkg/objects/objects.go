// Package objects exposes ADCM resources as thin local handles: each handle
// knows its API path and requester, which is all the configuration and
// mapping subsystems need from it.
package objects

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/arenadata/adcm-go-client/pkg/client"
	"github.com/arenadata/adcm-go-client/pkg/config"
	"github.com/arenadata/adcm-go-client/pkg/mapping"
)

type base struct {
	id        int64
	name      string
	requester client.Requester
	log       *slog.Logger
}

// ID of the resource on the server.
func (b *base) ID() int64 { return b.id }

// Name of the resource.
func (b *base) Name() string { return b.name }

// Requester carries the transport the handle was fetched through.
func (b *base) Requester() client.Requester { return b.requester }

// Cluster is a handle to one cluster.
type Cluster struct {
	base
}

// GetCluster fetches a cluster handle by id.
func GetCluster(ctx context.Context, requester client.Requester, id int64, log *slog.Logger) (*Cluster, error) {
	b, err := fetch(ctx, requester, log, []string{"clusters", formatID(id)})
	if err != nil {
		return nil, err
	}
	return &Cluster{base: b}, nil
}

// Path of the cluster under the API root.
func (c *Cluster) Path() []string {
	return []string{"clusters", formatID(c.id)}
}

// Config resolves the cluster's configuration history.
func (c *Cluster) Config() *config.ConfigHistoryNode {
	return config.NewConfigHistoryNode(c, c.log)
}

// Mapping opens an editing session over the cluster's host/component
// mapping.
func (c *Cluster) Mapping(ctx context.Context) (*mapping.ClusterMapping, error) {
	return mapping.NewClusterMapping(ctx, c, c.log)
}

// Service fetches a service handle of this cluster by id.
func (c *Cluster) Service(ctx context.Context, id int64) (*Service, error) {
	path := append(c.Path(), "services", formatID(id))
	b, err := fetch(ctx, c.requester, c.log, path)
	if err != nil {
		return nil, err
	}
	return &Service{base: b, cluster: c}, nil
}

// ConfigGroup fetches a config host group of this cluster by id.
func (c *Cluster) ConfigGroup(ctx context.Context, id int64) (*ConfigHostGroup, error) {
	return getConfigGroup(ctx, c.requester, c.log, c.Path(), id)
}

// Service is a handle to one service of a cluster.
type Service struct {
	base
	cluster *Cluster
}

// Cluster this service belongs to.
func (s *Service) Cluster() *Cluster { return s.cluster }

// Path of the service under the API root.
func (s *Service) Path() []string {
	return append(s.cluster.Path(), "services", formatID(s.id))
}

// Config resolves the service's configuration history.
func (s *Service) Config() *config.ConfigHistoryNode {
	return config.NewConfigHistoryNode(s, s.log)
}

// Component fetches a component handle of this service by id.
func (s *Service) Component(ctx context.Context, id int64) (*Component, error) {
	path := append(s.Path(), "components", formatID(id))
	b, err := fetch(ctx, s.requester, s.log, path)
	if err != nil {
		return nil, err
	}
	return &Component{base: b, service: s}, nil
}

// ConfigGroup fetches a config host group of this service by id.
func (s *Service) ConfigGroup(ctx context.Context, id int64) (*ConfigHostGroup, error) {
	return getConfigGroup(ctx, s.requester, s.log, s.Path(), id)
}

// Component is a handle to one component of a service.
type Component struct {
	base
	service *Service
}

// Service this component belongs to.
func (c *Component) Service() *Service { return c.service }

// Path of the component under the API root.
func (c *Component) Path() []string {
	return append(c.service.Path(), "components", formatID(c.id))
}

// Config resolves the component's configuration history.
func (c *Component) Config() *config.ConfigHistoryNode {
	return config.NewConfigHistoryNode(c, c.log)
}

// ConfigGroup fetches a config host group of this component by id.
func (c *Component) ConfigGroup(ctx context.Context, id int64) (*ConfigHostGroup, error) {
	return getConfigGroup(ctx, c.requester, c.log, c.Path(), id)
}

// Host is a handle to one host.
type Host struct {
	base
}

// GetHost fetches a host handle by id.
func GetHost(ctx context.Context, requester client.Requester, id int64, log *slog.Logger) (*Host, error) {
	b, err := fetch(ctx, requester, log, []string{"hosts", formatID(id)})
	if err != nil {
		return nil, err
	}
	return &Host{base: b}, nil
}

// Path of the host under the API root.
func (h *Host) Path() []string {
	return []string{"hosts", formatID(h.id)}
}

// Config resolves the host's configuration history.
func (h *Host) Config() *config.ConfigHistoryNode {
	return config.NewConfigHistoryNode(h, h.log)
}

// HostProvider is a handle to one host provider.
type HostProvider struct {
	base
}

// GetHostProvider fetches a host provider handle by id.
func GetHostProvider(ctx context.Context, requester client.Requester, id int64, log *slog.Logger) (*HostProvider, error) {
	b, err := fetch(ctx, requester, log, []string{"hostproviders", formatID(id)})
	if err != nil {
		return nil, err
	}
	return &HostProvider{base: b}, nil
}

// Path of the host provider under the API root.
func (p *HostProvider) Path() []string {
	return []string{"hostproviders", formatID(p.id)}
}

// Config resolves the host provider's configuration history.
func (p *HostProvider) Config() *config.ConfigHistoryNode {
	return config.NewConfigHistoryNode(p, p.log)
}

// ConfigGroup fetches a config host group of this provider by id.
func (p *HostProvider) ConfigGroup(ctx context.Context, id int64) (*ConfigHostGroup, error) {
	return getConfigGroup(ctx, p.requester, p.log, p.Path(), id)
}

// ConfigHostGroup is a handle to a config host group: a subset of an
// object's hosts carrying configuration overrides.
type ConfigHostGroup struct {
	base
	ownerPath []string
}

// Path of the group under its owning object.
func (g *ConfigHostGroup) Path() []string {
	return append(append([]string{}, g.ownerPath...), "config-groups", formatID(g.id))
}

// Config resolves the group's configuration history with host-group (desync)
// semantics.
func (g *ConfigHostGroup) Config() *config.HostGroupConfigHistoryNode {
	return config.NewHostGroupConfigHistoryNode(g, g.log)
}

func getConfigGroup(ctx context.Context, requester client.Requester, log *slog.Logger, ownerPath []string, id int64) (*ConfigHostGroup, error) {
	path := append(append([]string{}, ownerPath...), "config-groups", formatID(id))
	b, err := fetch(ctx, requester, log, path)
	if err != nil {
		return nil, err
	}
	return &ConfigHostGroup{base: b, ownerPath: ownerPath}, nil
}

func fetch(ctx context.Context, requester client.Requester, log *slog.Logger, path []string) (base, error) {
	if log == nil {
		log = slog.Default()
	}

	response, err := requester.Get(ctx, path, nil)
	if err != nil {
		return base{}, err
	}
	record, err := response.AsObject()
	if err != nil {
		return base{}, err
	}

	id, err := asInt64(record["id"])
	if err != nil {
		return base{}, fmt.Errorf("resource record has no usable id: %w", err)
	}
	name, _ := record["name"].(string)

	return base{id: id, name: name, requester: requester, log: log}, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
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
