package main

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/cli"
	"datacrunch-hq/relay/pkg/prompts"
)

var promptsFlags struct {
	extra string
}

var promptsCmd = &cobra.Command{
	Use:   "prompts",
	Short: "List prompt templates",
	Long: `List the prompt templates a request can select with template_id,
including those from the configured template file.`,
	RunE: listPrompts,
}

var promptsShowCmd = &cobra.Command{
	Use:   "show <template>",
	Short: "Print the instruction a template produces",
	Long: `Print the instruction text a template produces, optionally with extra
instructions appended the way the server appends instruction_prompt.

Examples:
  relay prompts show data_analysis
  relay prompts show sentiment_analysis --extra "Answer in French"`,
	Args: cobra.ExactArgs(1),
	RunE: showPrompt,
}

func init() {
	rootCmd.AddCommand(promptsCmd)
	promptsCmd.AddCommand(promptsShowCmd)

	promptsShowCmd.Flags().StringVar(&promptsFlags.extra, "extra", "", "extra instructions to append")
}

func loadTemplates() (*prompts.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	store, err := prompts.NewStoreFromFile(cfg.Prompts.Path)
	if err != nil {
		return nil, cli.NewConfigError("prompts.path", err.Error())
	}
	return store, nil
}

func listPrompts(cmd *cobra.Command, args []string) error {
	store, err := loadTemplates()
	if err != nil {
		return err
	}

	list := store.List()
	table := &cli.Table{Headers: []string{"TEMPLATE", "DESCRIPTION"}}
	for _, id := range sortedKeys(list) {
		table.Append(id, list[id])
	}
	return printOutput(cmd, table)
}

func showPrompt(cmd *cobra.Command, args []string) error {
	store, err := loadTemplates()
	if err != nil {
		return err
	}

	id := args[0]
	if id != prompts.Custom && !store.Has(id) {
		return fmt.Errorf("unknown prompt template %q", id)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), store.Get(id, promptsFlags.extra))
	return err
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
