package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/logging"
	"storefront/internal/migrate"

	"go.uber.org/zap"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of applying")
	showVersion := flag.Bool("version", false, "print the current schema version and exit")
	flag.Parse()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(logging.Options{Level: cfg.LogLevel})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	switch {
	case *showVersion:
		st, err := migrate.Version(ctx, pool)
		if err != nil {
			logger.Fatal("read version", zap.Error(err))
		}
		latest, err := migrate.Latest()
		if err != nil {
			logger.Fatal("read embedded migrations", zap.Error(err))
		}
		logger.Info("schema version",
			zap.Uint("version", st.Version),
			zap.Bool("dirty", st.Dirty),
			zap.Bool("applied", st.Applied),
			zap.Uint("latest", latest),
		)
	case *down > 0:
		if err := migrate.Rollback(ctx, pool, *down); err != nil {
			logger.Fatal("roll back migrations", zap.Error(err))
		}
		logger.Info("migrations rolled back", zap.Int("steps", *down))
	default:
		if err := migrate.Apply(ctx, pool); err != nil {
			logger.Fatal("apply migrations", zap.Error(err))
		}
		logger.Info("migrations applied")
	}
}
