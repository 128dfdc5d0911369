package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/db"
	"storefront/internal/events"
	"storefront/internal/events/handlers"
	"storefront/internal/httpserver"
	"storefront/internal/logging"
	"storefront/internal/observability"
	analyticsrepo "storefront/internal/repository/analytics"
	cartrepo "storefront/internal/repository/cart"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/sdk"
	cartsvc "storefront/internal/service/cart"
	productsvc "storefront/internal/service/product"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(logging.Options{
		Level:       cfg.LogLevel,
		File:        cfg.LogFile,
		Development: cfg.Strict(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.Named("api")

	if err := run(cfg, logger); err != nil {
		logger.Fatal("api stopped", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	dbpool, err := db.Connect(ctx, cfg.DBConnString, logger)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer dbpool.Close()

	eventMetrics := observability.Events()
	stream := events.NewStream(cfg.EventBuffer, logger.Named("stream"), eventMetrics)
	defer stream.Close()

	collector, err := events.NewCollector(logger.Named("collector"), eventMetrics,
		handlers.Default(handlers.Options{StorefrontURL: cfg.StorefrontURL})...)
	if err != nil {
		return fmt.Errorf("init collector: %w", err)
	}
	loader := sdk.NewLoader(sdkLoader(cfg, logger, dbpool))

	productRepo := productrepo.NewPostgres(dbpool, logger.Named("product-repo"))
	cartRepo := cartrepo.NewPostgres(dbpool, logger.Named("cart-repo"))
	cartService := cartsvc.New(cartRepo, productRepo, cartsvc.Options{
		Events:  stream,
		Logger:  logger.Named("cart"),
		Metrics: observability.Cart(),
		Strict:  cfg.Strict(),
		TTL:     cfg.SessionTTL,
	})

	srv, err := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		CartSvc:       cartService,
		ProductSvc:    productsvc.New(productRepo),
		Events:        stream,
		Metrics:       eventMetrics,
		CORSOrigins:   cfg.CORSOrigins,
		IngestRate:    rate.Limit(cfg.IngestRate),
		IngestBurst:   cfg.IngestBurst,
		SecureCookies: !cfg.Strict(),
		Analytics:     loader,
	})
	if err != nil {
		return fmt.Errorf("init server: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return collector.Run(gctx, loader, stream)
	})
	g.Go(func() error {
		return cartService.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown failed", zap.Error(err))
			return err
		}
		logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}

// sdkLoader builds the analytics client once its sink is reachable.
func sdkLoader(cfg config.Config, logger *zap.Logger, pool *pgxpool.Pool) sdk.LoadFunc {
	return func(ctx context.Context) (sdk.SDK, error) {
		var sink sdk.Sink
		logSink := sdk.NewLogSink(logger.Named("analytics"))
		switch cfg.SDKSink {
		case config.SinkLog:
			sink = logSink
		case config.SinkPostgres, config.SinkBoth:
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
			if err := pool.Ping(pingCtx); err != nil {
				return sdk.SDK{}, fmt.Errorf("analytics sink unreachable: %w", err)
			}
			sink = analyticsrepo.NewSink(pool)
			if cfg.SDKSink == config.SinkBoth {
				sink = sdk.MultiSink{logSink, sink}
			}
		default:
			return sdk.SDK{}, fmt.Errorf("unknown sdk sink %q", cfg.SDKSink)
		}
		return sdk.NewClient(sink, logger.Named("sdk"), 5*time.Second).SDK(), nil
	}
}
