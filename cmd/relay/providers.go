package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/cli"
	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/dispatch"
	"datacrunch-hq/relay/pkg/providers"
	"datacrunch-hq/relay/pkg/proxy/handlers"
)

var serverFlags struct {
	address string
	timeout time.Duration
}

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List supported providers and their configuration",
	Long: `List every supported provider with whether its credentials are present
in the loaded configuration and the model it uses by default.

Missing credentials do not stop the server from starting; requests to that
provider fail with missing_api_key.`,
	RunE: listProviders,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show blocked and available providers of a running server",
	Long: `Query a running relay server for the block state of every provider.

Examples:
  relay status
  relay status --server http://relay.internal:8000 --output json`,
	RunE: showStatus,
}

var unblockCmd = &cobra.Command{
	Use:   "unblock <provider>",
	Short: "Lift the quota block of a provider on a running server",
	Args:  cobra.ExactArgs(1),
	RunE:  unblockProvider,
}

func init() {
	rootCmd.AddCommand(providersCmd, statusCmd, unblockCmd)

	for _, c := range []*cobra.Command{statusCmd, unblockCmd} {
		c.Flags().StringVarP(&serverFlags.address, "server", "s", "http://"+config.DefaultListenAddress, "relay server address")
		c.Flags().DurationVar(&serverFlags.timeout, "timeout", 10*time.Second, "request timeout")
	}
}

// providerCredentials reports whether each provider has what it needs to
// authenticate. Vertex AI can fall back to application default credentials,
// so a project id is enough.
func providerCredentials(p *config.ProvidersConfig) map[string]bool {
	return map[string]bool{
		providers.Gemini:   p.Gemini.APIKey != "",
		providers.OpenAI:   p.OpenAI.APIKey != "",
		providers.Claude:   p.Claude.APIKey != "",
		providers.DeepSeek: p.DeepSeek.APIKey != "",
		providers.VertexAI: p.VertexAI.ProjectID != "",
	}
}

func defaultModels(p *config.ProvidersConfig) map[string]string {
	return map[string]string{
		providers.Gemini:   p.Gemini.DefaultModel,
		providers.OpenAI:   p.OpenAI.DefaultModel,
		providers.Claude:   p.Claude.DefaultModel,
		providers.DeepSeek: p.DeepSeek.DefaultModel,
		providers.VertexAI: p.VertexAI.DefaultModel,
	}
}

// describeProviders summarises credential presence for the run banner.
func describeProviders(cfg *config.Config) string {
	creds := providerCredentials(&cfg.Providers)
	parts := make([]string, 0, len(providers.Names))
	for _, name := range providers.Names {
		mark := "-"
		if creds[name] {
			mark = "+"
		}
		parts = append(parts, mark+name)
	}
	return strings.Join(parts, " ")
}

func listProviders(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	creds := providerCredentials(&cfg.Providers)
	models := defaultModels(&cfg.Providers)

	table := &cli.Table{Headers: []string{"PROVIDER", "CREDENTIALS", "DEFAULT_MODEL"}}
	for _, name := range providers.Names {
		state := "missing"
		if creds[name] {
			state = "set"
		}
		table.Append(name, state, models[name])
	}
	return printOutput(cmd, table)
}

func serverClient() *cli.Client {
	return cli.NewClient(serverFlags.address, serverFlags.timeout)
}

func showStatus(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), serverFlags.timeout)
	defer cancel()

	var status dispatch.Status
	if err := serverClient().Get(ctx, "/api/v1/ai/status", &status); err != nil {
		return cli.NewCommandError("status", err)
	}

	table := &cli.Table{Headers: []string{"PROVIDER", "STATUS", "BLOCKED_UNTIL"}}
	for _, name := range status.Providers {
		if until, ok := status.BlockedProviders[name]; ok {
			table.Append(name, "blocked", until)
		} else {
			table.Append(name, "available", "")
		}
	}
	return printOutput(cmd, table)
}

func unblockProvider(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), serverFlags.timeout)
	defer cancel()

	var resp handlers.UnblockResponse
	if err := serverClient().Post(ctx, "/api/v1/ai/unblock/"+args[0], &resp); err != nil {
		return cli.NewCommandError("unblock", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ %s\n", resp.Message)
	return nil
}
