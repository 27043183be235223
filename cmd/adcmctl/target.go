package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arenadata/adcm-go-client/pkg/config"
	"github.com/arenadata/adcm-go-client/pkg/objects"
)

// Object selection flags shared by the config commands. Exactly one root
// object must be chosen; --service, --component and --config-group narrow it.
var (
	clusterID      int64
	serviceID      int64
	componentID    int64
	hostID         int64
	hostProviderID int64
	configGroupID  int64
)

// configSession is the part of an editing session the CLI needs regardless of
// whether the target is a plain object or a config host group.
type configSession interface {
	ID() int64
	Description() string
	Schema() *config.Schema
	Data() *config.ConfigData
	Save(ctx context.Context, description string) error
}

// resolveTarget turns the selection flags into the owning resource handle.
func resolveTarget(ctx context.Context) (any, error) {
	requester, err := newRequester()
	if err != nil {
		return nil, err
	}
	log := newLogger()

	selected := 0
	for _, id := range []int64{clusterID, hostID, hostProviderID} {
		if id != 0 {
			selected++
		}
	}
	if selected != 1 {
		return nil, fmt.Errorf("select exactly one of --cluster, --host, --hostprovider")
	}

	switch {
	case hostID != 0:
		return objects.GetHost(ctx, requester, hostID, log)
	case hostProviderID != 0:
		provider, err := objects.GetHostProvider(ctx, requester, hostProviderID, log)
		if err != nil {
			return nil, err
		}
		if configGroupID != 0 {
			return provider.ConfigGroup(ctx, configGroupID)
		}
		return provider, nil
	default:
		cluster, err := objects.GetCluster(ctx, requester, clusterID, log)
		if err != nil {
			return nil, err
		}
		if serviceID == 0 {
			if componentID != 0 {
				return nil, fmt.Errorf("--component requires --service")
			}
			if configGroupID != 0 {
				return cluster.ConfigGroup(ctx, configGroupID)
			}
			return cluster, nil
		}
		service, err := cluster.Service(ctx, serviceID)
		if err != nil {
			return nil, err
		}
		if componentID == 0 {
			if configGroupID != 0 {
				return service.ConfigGroup(ctx, configGroupID)
			}
			return service, nil
		}
		component, err := service.Component(ctx, componentID)
		if err != nil {
			return nil, err
		}
		if configGroupID != 0 {
			return component.ConfigGroup(ctx, configGroupID)
		}
		return component, nil
	}
}

type objectWithConfig interface {
	Config() *config.ConfigHistoryNode
}

// resolveSession opens an editing session over the target's configuration at
// the given history position; nil means the current revision.
func resolveSession(ctx context.Context, position *int) (configSession, error) {
	target, err := resolveTarget(ctx)
	if err != nil {
		return nil, err
	}

	switch typed := target.(type) {
	case *objects.ConfigHostGroup:
		node := typed.Config()
		if position == nil {
			return node.Current(ctx)
		}
		return node.At(ctx, *position)
	case objectWithConfig:
		node := typed.Config()
		if position == nil {
			return node.Current(ctx)
		}
		return node.At(ctx, *position)
	default:
		return nil, fmt.Errorf("selected object carries no configuration")
	}
}

func registerTargetFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().Int64Var(&clusterID, "cluster", 0, "Cluster id")
	cmd.PersistentFlags().Int64Var(&serviceID, "service", 0, "Service id (requires --cluster)")
	cmd.PersistentFlags().Int64Var(&componentID, "component", 0, "Component id (requires --service)")
	cmd.PersistentFlags().Int64Var(&hostID, "host", 0, "Host id")
	cmd.PersistentFlags().Int64Var(&hostProviderID, "hostprovider", 0, "Host provider id")
	cmd.PersistentFlags().Int64Var(&configGroupID, "config-group", 0, "Config host group id under the selected object")
}
