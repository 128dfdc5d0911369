package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/importer"
	"storefront/internal/logging"
	"storefront/internal/repository/product"

	"go.uber.org/zap"
)

func main() {
	var (
		filePath string
		lenient  bool
	)
	flag.StringVar(&filePath, "file", "", "Path to catalog product CSV export")
	flag.BoolVar(&lenient, "lenient", false, "Skip invalid rows instead of aborting")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}

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
	logger = logger.Named("importer")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	imp := importer.NewCSVImporter(f, product.NewPostgres(pool, logger), importer.Options{
		Logger:  logger,
		Lenient: lenient,
	})

	start := time.Now()
	res, err := imp.Run(ctx)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err), zap.Int("imported", res.Imported))
	}

	logger.Info("products imported",
		zap.Int("rows", res.Rows),
		zap.Int("imported", res.Imported),
		zap.Int("images", res.Images),
		zap.Int("rejected", res.Rejected),
		zap.Duration("elapsed", time.Since(start).Truncate(time.Millisecond)),
	)
}
