package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arenadata/adcm-go-client/pkg/config"
	"github.com/arenadata/adcm-go-client/pkg/objects"
)

var (
	historyPosition int
	setDescription  string
	diffFrom        int
	diffTo          int
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit object configurations",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the current configuration of an object",
	RunE:  runConfigShow,
}

var configHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "Show a configuration revision at a history position",
	Long: `Show the configuration revision at the given history position.

Revisions are ordered by creation; negative positions count from the most
recent one, so --position -1 is the latest revision.`,
	RunE: runConfigHistory,
}

var configSetCmd = &cobra.Command{
	Use:   "set path=value [path=value ...]",
	Short: "Set configuration values and save a new revision",
	Long: `Set configuration values by parameter path and save a new revision.

Paths address parameters by technical name, with "/" separating nested group
levels. Values are parsed as JSON; anything that does not parse is taken as a
plain string.

Example:
  adcmctl config set --cluster 2 logging/level='"debug"' workers=8`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigSet,
}

var configDiffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Compare two configuration revisions",
	RunE:  runConfigDiff,
}

func init() {
	registerTargetFlags(configCmd)

	configHistoryCmd.Flags().IntVar(&historyPosition, "position", -1, "History position, negative counts from the latest")
	configSetCmd.Flags().StringVar(&setDescription, "description", "", "Description of the new revision")
	configDiffCmd.Flags().IntVar(&diffFrom, "from", -2, "History position of the older revision")
	configDiffCmd.Flags().IntVar(&diffTo, "to", -1, "History position of the newer revision")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configHistoryCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDiffCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	session, err := resolveSession(cmd.Context(), nil)
	if err != nil {
		return err
	}
	return printSession(session)
}

func runConfigHistory(cmd *cobra.Command, args []string) error {
	session, err := resolveSession(cmd.Context(), &historyPosition)
	if err != nil {
		return err
	}
	return printSession(session)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	session, err := resolveSession(cmd.Context(), nil)
	if err != nil {
		return err
	}

	for _, arg := range args {
		name, rawValue, found := strings.Cut(arg, "=")
		if !found {
			return fmt.Errorf("malformed assignment %q, want path=value", arg)
		}

		var value any
		if err := json.Unmarshal([]byte(rawValue), &value); err != nil {
			value = rawValue
		}

		if err := session.Data().SetValue(config.ParsePath(name), value); err != nil {
			return err
		}
	}

	if err := session.Save(cmd.Context(), setDescription); err != nil {
		return err
	}

	fmt.Printf("Saved revision %d\n", session.ID())
	return nil
}

func runConfigDiff(cmd *cobra.Command, args []string) error {
	target, err := resolveTarget(cmd.Context())
	if err != nil {
		return err
	}

	var diff *config.Difference
	switch typed := target.(type) {
	case *objects.ConfigHostGroup:
		node := typed.Config()
		older, err := node.At(cmd.Context(), diffFrom)
		if err != nil {
			return err
		}
		newer, err := node.At(cmd.Context(), diffTo)
		if err != nil {
			return err
		}
		diff, err = newer.Difference(older)
		if err != nil {
			return err
		}
	case objectWithConfig:
		node := typed.Config()
		older, err := node.At(cmd.Context(), diffFrom)
		if err != nil {
			return err
		}
		newer, err := node.At(cmd.Context(), diffTo)
		if err != nil {
			return err
		}
		diff, err = newer.Difference(older)
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("selected object carries no configuration")
	}

	if resolvedOutput() == "json" || resolvedOutput() == "yaml" {
		return printOutput(diff)
	}

	if diff.IsEmpty() {
		fmt.Println("No differences")
		return nil
	}
	fmt.Println(diff.String())
	return nil
}

func printSession(session configSession) error {
	payload, err := session.Data().ToPayload(session.Schema())
	if err != nil {
		return err
	}

	if resolvedOutput() == "json" || resolvedOutput() == "yaml" {
		return printOutput(map[string]any{
			"id":          session.ID(),
			"description": session.Description(),
			"config":      payload["config"],
			"adcmMeta":    payload["adcmMeta"],
		})
	}

	values, _ := payload["config"].(map[string]any)
	headers := []string{"Parameter", "Value"}
	var rows [][]string
	flattenValues(nil, values, &rows)
	sort.Slice(rows, func(i, j int) bool { return rows[i][0] < rows[j][0] })

	fmt.Printf("Revision %d %q\n", session.ID(), session.Description())
	printTable(headers, rows)
	return nil
}

// flattenValues renders nested config values one leaf per row, joining group
// levels with "/".
func flattenValues(prefix []string, values map[string]any, rows *[][]string) {
	for name, value := range values {
		path := append(append([]string{}, prefix...), name)
		if nested, ok := value.(map[string]any); ok {
			flattenValues(path, nested, rows)
			continue
		}
		rendered, err := json.Marshal(value)
		if err != nil {
			rendered = []byte(fmt.Sprintf("%v", value))
		}
		*rows = append(*rows, []string{strings.Join(path, "/"), string(rendered)})
	}
}
