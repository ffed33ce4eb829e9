package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"datacrunch-hq/relay/pkg/catalogue"
	"datacrunch-hq/relay/pkg/config"
	"datacrunch-hq/relay/pkg/prompts"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and referenced files",
	Long: `Load the configuration the same way run does and report every problem:
invalid fields, an unreadable catalogue overlay or prompt template file.

Examples:
  relay validate --config config.yaml`,
	RunE: validateConfig,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func validateConfig(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		var verr config.ValidationError
		if errors.As(err, &verr) {
			for _, fe := range verr.Errors {
				fmt.Fprintf(out, "✗ %s: %s\n", fe.Field, fe.Message)
			}
			return fmt.Errorf("configuration has %d error(s)", len(verr.Errors))
		}
		return err
	}
	fmt.Fprintln(out, "✓ Configuration valid")

	var problems int
	if cfg.Catalogue.OverlayPath != "" {
		if _, err := catalogue.LoadOverlay(cfg.Catalogue.OverlayPath); err != nil {
			fmt.Fprintf(out, "✗ catalogue.overlay_path: %v\n", err)
			problems++
		} else {
			fmt.Fprintf(out, "✓ Catalogue overlay %s\n", cfg.Catalogue.OverlayPath)
		}
	}
	if cfg.Prompts.Path != "" {
		if _, err := prompts.LoadFile(cfg.Prompts.Path); err != nil {
			fmt.Fprintf(out, "✗ prompts.path: %v\n", err)
			problems++
		} else {
			fmt.Fprintf(out, "✓ Prompt templates %s\n", cfg.Prompts.Path)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%d referenced file(s) could not be loaded", problems)
	}
	return nil
}
