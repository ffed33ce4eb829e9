package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/cli"
	"datacrunch-hq/relay/pkg/config"
)

var (
	// Global flags
	cfgFile      string
	verbose      bool
	outputFormat string
)

var rootCmd = &cobra.Command{
	Use:   "relay",
	Short: "Relay - provider-agnostic LLM gateway",
	Long: `Relay is an HTTP gateway that sends text-generation requests to one of
several LLM providers behind a single request and response shape.

It provides:
  - One API for Gemini, OpenAI, Claude, DeepSeek and Vertex AI
  - A uniform error taxonomy with retry hints
  - Automatic blocking of providers that run out of quota
  - A model catalogue with token limits and cost estimates
  - A usage ledger and Prometheus metrics

Configuration is read from an optional YAML file (--config), a .env file and
the environment.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and exits with the code cli.ExitCode
// assigns to its error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCode(err))
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (defaults and environment only when empty)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, csv)")
}

// loadConfig reads configuration for the inspection commands. Only run
// stores it as the process-wide instance.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		return nil, cli.NewConfigError("", err.Error())
	}
	return cfg, nil
}

// printOutput writes data in the format selected with --output.
func printOutput(cmd *cobra.Command, data any) error {
	format, err := cli.ParseOutputFormat(outputFormat)
	if err != nil {
		return err
	}
	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), data)
}
