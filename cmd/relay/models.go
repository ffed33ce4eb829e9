package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/cli"
)

var modelsFlags struct {
	provider   string
	capability string
	summary    bool
}

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the model catalogue",
	Long: `List the built-in model catalogue, including the overlay file named in
the configuration.

Examples:
  relay models
  relay models --provider claude
  relay models --capability vision
  relay models --summary`,
	RunE: listModels,
}

func init() {
	rootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().StringVarP(&modelsFlags.provider, "provider", "p", "", "only models of this provider")
	modelsCmd.Flags().StringVar(&modelsFlags.capability, "capability", "", "only models with this capability")
	modelsCmd.Flags().BoolVar(&modelsFlags.summary, "summary", false, "aggregate per provider")
}

func listModels(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := catalogue.NewWithOverlay(cfg.Catalogue.OverlayPath)
	if err != nil {
		return cli.NewConfigError("catalogue.overlay_path", err.Error())
	}

	if modelsFlags.summary {
		return printOutput(cmd, summaryTable(cat))
	}

	var specs []catalogue.ModelSpec
	switch {
	case modelsFlags.provider != "":
		specs = cat.ByProvider(modelsFlags.provider)
	case modelsFlags.capability != "":
		specs = cat.ByCapability(catalogue.Capability(modelsFlags.capability))
	default:
		specs = cat.All()
	}
	if modelsFlags.provider != "" && modelsFlags.capability != "" {
		filtered := specs[:0]
		for _, s := range specs {
			if s.Has(catalogue.Capability(modelsFlags.capability)) {
				filtered = append(filtered, s)
			}
		}
		specs = filtered
	}

	table := &cli.Table{Headers: []string{"MODEL", "PROVIDER", "CONTEXT", "MAX_OUTPUT", "INPUT_PER_1K", "OUTPUT_PER_1K"}}
	for _, s := range specs {
		table.Append(s.ID, s.Provider, s.ContextWindow, s.MaxOutputTokens,
			"$"+s.CostPer1KInput.String(), "$"+s.CostPer1KOutput.String())
	}
	return printOutput(cmd, table)
}

func summaryTable(cat *catalogue.Catalogue) *cli.Table {
	summary := cat.Summary()
	table := &cli.Table{Headers: []string{"PROVIDER", "MODELS", "MIN_CONTEXT", "MAX_CONTEXT", "AVG_INPUT_PER_1K"}}
	for _, name := range sortedKeys(summary) {
		s := summary[name]
		table.Append(name, strconv.Itoa(s.ModelCount), s.MinContext, s.MaxContext,
			fmt.Sprintf("$%s", s.AvgCostPer1KInput.StringFixed(6)))
	}
	return table
}
