package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tkingovr/apigate/internal/config"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "apigate",
	Short: "apigate: allowlist gate for trusted API integrations",
	Long: `apigate sits in front of a web application and recognises requests
from trusted integrations (shipping, merchant and blog-companion services).
Recognised requests get permissive CORS headers and bypass the WAF and bot
checks; everything else is checked as usual. CORS preflights are answered
directly.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		}))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "rules config file (YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads --config, or the built-in rules when it is not set.
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadDefault()
}
