package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/events/handlers"
	"storefront/internal/logging"
	"storefront/internal/replay"
	analyticsrepo "storefront/internal/repository/analytics"
	"storefront/internal/sdk"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	sinkName      string
	storefrontURL string
	verbose       bool
)

var rootCmd = &cobra.Command{
	Use:   "replay [events.jsonl]",
	Short: "Replay recorded storefront events through the analytics collector",
	Long: `Reads one JSON event per line ({"type": "...", "payload": {...}}) and
dispatches each through the same handlers the API uses. Published SDK
events go to the log, to Postgres, or to both.`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	rootCmd.Flags().StringVar(&sinkName, "sink", config.SinkLog, "where published events go: log, postgres or both")
	rootCmd.Flags().StringVar(&storefrontURL, "storefront-url", "", "base URL for canonical product links (defaults to config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}
	logger, err := logging.New(logging.Options{Level: level})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("replay")

	if storefrontURL == "" {
		storefrontURL = cfg.StorefrontURL
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sink, closeSink, err := buildSink(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSink()

	collector, err := events.NewCollector(logger.Named("collector"), nil,
		handlers.Default(handlers.Options{StorefrontURL: storefrontURL})...)
	if err != nil {
		return err
	}
	client := sdk.NewClient(sink, logger.Named("sdk"), 5*time.Second)

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("open events file: %w", err)
	}
	defer f.Close()

	res, err := replay.Run(ctx, f, collector, client.SDK())
	if err != nil {
		return err
	}
	logger.Info("replay finished",
		zap.Int("lines", res.Lines),
		zap.Int("handled", res.Handled),
		zap.Int("skipped", res.Skipped),
		zap.Int("invalid", res.Invalid),
	)
	return json.NewEncoder(cmd.OutOrStdout()).Encode(res)
}

func buildSink(ctx context.Context, cfg config.Config, logger *zap.Logger) (sdk.Sink, func(), error) {
	logSink := sdk.NewLogSink(logger.Named("analytics"))
	switch sinkName {
	case config.SinkLog:
		return logSink, func() {}, nil
	case config.SinkPostgres, config.SinkBoth:
		pool, err := db.Connect(ctx, cfg.DBConnString, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("connect db: %w", err)
		}
		var sink sdk.Sink = analyticsrepo.NewSink(pool)
		if sinkName == config.SinkBoth {
			sink = sdk.MultiSink{logSink, sink}
		}
		return sink, pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown sink %q", sinkName)
	}
}
