package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	notifier "github.com/goliatone/go-access-notifier"
	promadapter "github.com/goliatone/go-access-notifier/adapters/prometheus"
	"github.com/goliatone/go-access-notifier/core"
)

const shutdownGrace = 15 * time.Second

var (
	// configPath to an optional JSON configuration file.
	configPath string
	// listenAddr overrides server.addr from the configuration.
	listenAddr string

	rootCmd = &cobra.Command{
		Use:   "notifier",
		Short: "Run the access-control notifier server.",
		Long: `Starts the access notifier: a webhook intake that verifies signed
access-control events, correlates unlocks with door openings, broadcasts SMS
alerts, and serves the operator dashboard with its event log.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()
			return run(ctx)
		},
	}
)

// Execute runs the notifier CLI and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to JSON configuration file")
	rootCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "listen address override (e.g. :3000)")
}

func run(ctx context.Context) error {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	if listenAddr != "" {
		cfg.Server.Addr = listenAddr
	}

	metrics := promadapter.NewRecorder()
	app, err := notifier.Setup(ctx, cfg,
		notifier.WithMetrics(metrics),
		notifier.WithMetricsHandler(metrics.Handler()),
	)
	if err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.Run(ctx)
	}()

	select {
	case err := <-errCh:
		shutdown(app)
		return err
	case <-ctx.Done():
		shutdown(app)
		return nil
	}
}

func shutdown(app *notifier.App) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := app.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
	}
}

func loadConfig(ctx context.Context) (core.Config, error) {
	if configPath == "" {
		return core.DefaultConfig(), nil
	}

	raw, err := os.ReadFile(configPath)
	if err != nil {
		return core.Config{}, fmt.Errorf("read config %s: %w", configPath, err)
	}
	values := map[string]any{}
	if err := json.Unmarshal(raw, &values); err != nil {
		return core.Config{}, fmt.Errorf("parse config %s: %w", configPath, err)
	}

	provider := core.NewCfgxConfigProvider(core.NewStaticRawConfigLoader(values))
	return provider.Load(ctx, core.DefaultConfig())
}
