package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Print the effective rules",
	Long: `Print the rules file with built-in defaults filled in and environment
overrides applied, as YAML.`,
	Example: `  apigate rules -c rules.yaml
  apigate rules > rules.yaml`,
	RunE: runRules,
}

func init() {
	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	data, err := cfg.MarshalYAML()
	if err != nil {
		return fmt.Errorf("encoding rules: %w", err)
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
