package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/cli"
	"datacrunch-hq/relay/pkg/ledger"
	"datacrunch-hq/relay/pkg/proxy/handlers"
)

var usageFlags struct {
	since    string
	provider string
	recent   int
}

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarise recorded usage",
	Long: `Summarise the usage ledger per provider, read directly from the
configured database.

--since accepts an RFC 3339 timestamp or a duration counted back from now.

Examples:
  relay usage
  relay usage --since 24h
  relay usage --recent 20 --provider openai --output json`,
	RunE: showUsage,
}

var usagePruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete entries older than the retention period now",
	RunE:  pruneUsage,
}

func init() {
	rootCmd.AddCommand(usageCmd)
	usageCmd.AddCommand(usagePruneCmd)

	usageCmd.Flags().StringVar(&usageFlags.since, "since", "", "only entries since this time or duration")
	usageCmd.Flags().StringVarP(&usageFlags.provider, "provider", "p", "", "only this provider (with --recent)")
	usageCmd.Flags().IntVar(&usageFlags.recent, "recent", 0, "list the newest N entries instead of the summary")
}

func openConfiguredLedger() (*ledger.SQLiteStorage, int, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, 0, err
	}
	storage, err := openLedger(&cfg.Ledger)
	if err != nil {
		return nil, 0, err
	}
	return storage, cfg.Ledger.Retention.Days, nil
}

func showUsage(cmd *cobra.Command, args []string) error {
	since, err := handlers.ParseSince(usageFlags.since, time.Now())
	if err != nil {
		return err
	}

	storage, _, err := openConfiguredLedger()
	if err != nil {
		return cli.NewCommandError("usage", err)
	}
	defer storage.Close()

	ctx := cmd.Context()
	if usageFlags.recent > 0 {
		entries, err := storage.Query(ctx, &ledger.Query{
			Provider: usageFlags.provider,
			Since:    since,
			Limit:    usageFlags.recent,
		})
		if err != nil {
			return cli.NewCommandError("usage", err)
		}
		return printOutput(cmd, entriesTable(entries))
	}

	usage, err := storage.Summary(ctx, since)
	if err != nil {
		return cli.NewCommandError("usage", err)
	}

	total := decimal.Zero
	table := &cli.Table{Headers: []string{"PROVIDER", "REQUESTS", "SUCCESSES", "FAILURES", "TOKENS", "COST_USD"}}
	for _, u := range usage {
		table.Append(u.Provider, u.Requests, u.Successes, u.Failures, u.TotalTokens, u.Cost.StringFixed(6))
		total = total.Add(u.Cost)
	}
	if err := printOutput(cmd, table); err != nil {
		return err
	}
	if outputFormat == "" || outputFormat == "text" {
		fmt.Fprintf(cmd.OutOrStdout(), "\nTotal cost: $%s\n", total.StringFixed(6))
	}
	return nil
}

func entriesTable(entries []*ledger.Entry) *cli.Table {
	table := &cli.Table{Headers: []string{"TIME", "PROVIDER", "MODEL", "OUTCOME", "STATUS", "TOKENS", "COST_USD", "DURATION"}}
	for _, e := range entries {
		table.Append(e.CreatedAt.UTC().Format(time.RFC3339), e.Provider, e.Model, e.Outcome,
			e.Status, e.TotalTokens, e.Cost.StringFixed(6), e.Duration.Round(time.Millisecond))
	}
	return table
}

func pruneUsage(cmd *cobra.Command, args []string) error {
	storage, days, err := openConfiguredLedger()
	if err != nil {
		return cli.NewCommandError("usage prune", err)
	}
	defer storage.Close()

	if days <= 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Retention is disabled (ledger.retention.days = 0); nothing to prune")
		return nil
	}

	pruner := ledger.NewPruner(storage, days)
	n, err := pruner.Prune(cmd.Context())
	if err != nil {
		return cli.NewCommandError("usage prune", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Pruned %d entries older than %s\n", n, pruner.Cutoff().Format(time.RFC3339))
	return nil
}
