package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tkingovr/apigate/internal/gate"
	"github.com/tkingovr/apigate/internal/metrics"
)

var (
	serveListen   string
	serveUpstream string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the gate in front of an upstream application",
	Long: `Start an HTTP reverse proxy that classifies every request, answers
CORS preflights, runs the security checks on untrusted requests and forwards
the rest to the upstream application. Metrics are served on the metrics path
and health on /healthz.`,
	Example: `  apigate serve -c rules.yaml --listen :8080 --upstream http://app:80
  APIGATE_UPSTREAM=http://app:80 apigate serve`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "listen address (overrides settings.listen)")
	serveCmd.Flags().StringVar(&serveUpstream, "upstream", "", "upstream URL (overrides settings.upstream)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveListen != "" {
		cfg.Settings.Listen = serveListen
	}
	if serveUpstream != "" {
		cfg.Settings.Upstream = serveUpstream
	}
	if cfg.Settings.Upstream == "" {
		return fmt.Errorf("upstream is required (--upstream, settings.upstream or APIGATE_UPSTREAM)")
	}

	m := metrics.New()
	chain, err := buildChain(cfg, m, logger)
	if err != nil {
		return err
	}

	proxy, err := gate.NewProxy(cfg.Settings.Upstream, logger)
	if err != nil {
		return err
	}

	srv := gate.NewServer(gate.ServerConfig{
		Listen:      cfg.Settings.Listen,
		MetricsPath: cfg.Settings.MetricsPath,
		Metrics:     m.Handler(),
		Gate:        gate.New(chain, logger),
		Upstream:    proxy,
		Logger:      logger,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	logger.Info("starting serve mode",
		slog.String("upstream", cfg.Settings.Upstream),
		slog.String("engine", cfg.Settings.Engine),
		slog.Any("chain", chain.Names()),
	)

	return srv.ListenAndServe(ctx)
}
