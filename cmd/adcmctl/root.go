package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arenadata/adcm-go-client/pkg/client"
)

var (
	serverURL string
	token     string
	outputFmt string
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "adcmctl",
	Short: "CLI for ADCM configuration and mapping management",
	Long: `adcmctl talks to an Arenadata Cluster Manager (ADCM) server.

It inspects and edits object configurations (clusters, services, components,
hosts, host providers and config host groups) and the host/component mapping
of a cluster.

The server URL and the authentication token can also come from the
ADCM_SERVER and ADCM_TOKEN environment variables.`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8000", "ADCM server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "ADCM API token")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json, yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	viper.SetEnvPrefix("ADCM")
	viper.AutomaticEnv()
	viper.BindPFlag("server", rootCmd.PersistentFlags().Lookup("server"))
	viper.BindPFlag("token", rootCmd.PersistentFlags().Lookup("token"))
	viper.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(mappingCmd)
}

func newRequester() (*client.HTTPRequester, error) {
	opts := []client.Option{
		client.WithTimeout(30 * time.Second),
		client.WithLogger(newLogger()),
	}
	if t := viper.GetString("token"); t != "" {
		opts = append(opts, client.WithToken(t))
	}
	return client.New(viper.GetString("server"), opts...)
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func resolvedOutput() string {
	return viper.GetString("output")
}
