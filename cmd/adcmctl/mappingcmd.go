package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/arenadata/adcm-go-client/pkg/mapping"
	"github.com/arenadata/adcm-go-client/pkg/objects"
)

var (
	mappingClusterID   int64
	mappingHostID      int64
	mappingComponentID int64
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Inspect and edit the host/component mapping of a cluster",
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current mapping",
	RunE:  runMappingShow,
}

var mappingAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Map a host onto a component and save",
	RunE:  runMappingAdd,
}

var mappingRemoveCmd = &cobra.Command{
	Use:   "remove",
	Short: "Unmap a host from a component and save",
	RunE:  runMappingRemove,
}

func init() {
	mappingCmd.PersistentFlags().Int64Var(&mappingClusterID, "cluster", 0, "Cluster id")
	mappingCmd.MarkPersistentFlagRequired("cluster")

	for _, cmd := range []*cobra.Command{mappingAddCmd, mappingRemoveCmd} {
		cmd.Flags().Int64Var(&mappingHostID, "host", 0, "Host id")
		cmd.Flags().Int64Var(&mappingComponentID, "component", 0, "Component id")
		cmd.MarkFlagRequired("host")
		cmd.MarkFlagRequired("component")
	}

	mappingCmd.AddCommand(mappingShowCmd)
	mappingCmd.AddCommand(mappingAddCmd)
	mappingCmd.AddCommand(mappingRemoveCmd)
}

func openMapping(ctx context.Context) (*mapping.ClusterMapping, error) {
	requester, err := newRequester()
	if err != nil {
		return nil, err
	}
	cluster, err := objects.GetCluster(ctx, requester, mappingClusterID, newLogger())
	if err != nil {
		return nil, err
	}
	return cluster.Mapping(ctx)
}

func runMappingShow(cmd *cobra.Command, args []string) error {
	session, err := openMapping(cmd.Context())
	if err != nil {
		return err
	}

	entries := session.All()

	if resolvedOutput() == "json" || resolvedOutput() == "yaml" {
		out := make([]map[string]int64, 0, len(entries))
		for _, entry := range entries {
			out = append(out, map[string]int64{"hostId": entry.HostID, "componentId": entry.ComponentID})
		}
		return printOutput(out)
	}

	headers := []string{"Host", "Component"}
	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		rows = append(rows, []string{
			strconv.FormatInt(entry.HostID, 10),
			strconv.FormatInt(entry.ComponentID, 10),
		})
	}
	printTable(headers, rows)
	return nil
}

func runMappingAdd(cmd *cobra.Command, args []string) error {
	session, err := openMapping(cmd.Context())
	if err != nil {
		return err
	}

	session.Add(mapping.Entry{HostID: mappingHostID, ComponentID: mappingComponentID})
	if err := session.Save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Mapped host %d onto component %d\n", mappingHostID, mappingComponentID)
	return nil
}

func runMappingRemove(cmd *cobra.Command, args []string) error {
	session, err := openMapping(cmd.Context())
	if err != nil {
		return err
	}

	entry := mapping.Entry{HostID: mappingHostID, ComponentID: mappingComponentID}
	if !session.Contains(entry) {
		return fmt.Errorf("host %d is not mapped onto component %d", mappingHostID, mappingComponentID)
	}

	session.Remove(entry)
	if err := session.Save(cmd.Context()); err != nil {
		return err
	}

	fmt.Printf("Unmapped host %d from component %d\n", mappingHostID, mappingComponentID)
	return nil
}
