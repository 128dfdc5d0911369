package httpserver

import (
	"context"
	"errors"

	cartstate "storefront/internal/cart"
	"storefront/internal/domain"
	"storefront/internal/events"
	"storefront/internal/observability"
	cartsvc "storefront/internal/service/cart"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

type cartService interface {
	Open(ctx context.Context, currency string) (domain.CartRef, error)
	Resume(ctx context.Context, ref domain.CartRef) error
	Session(ref domain.CartRef) *cartstate.Store
	Close(ref domain.CartRef) bool
	Refresh(ctx context.Context, cartID string) (cartstate.State, error)
	AddItems(ctx context.Context, cartID string, items []cartsvc.ItemInput) (cartstate.State, error)
	UpdateItemQuantity(ctx context.Context, cartID, itemID string, quantity int) (cartstate.State, error)
	RemoveItem(ctx context.Context, cartID, itemID string) (cartstate.State, error)
	AddCoupon(ctx context.Context, cartID, couponCode string) (cartstate.State, error)
	RemoveCoupon(ctx context.Context, cartID string) (cartstate.State, error)
	Dispatch(cartID string, action cartstate.Action) (cartstate.State, error)
}

type analyticsLoader interface {
	Err() error
}

// Deps are the services the router exposes.
type Deps struct {
	CartSvc     cartService
	ProductSvc  productService
	Events      events.Emitter
	Metrics     *observability.EventMetrics
	CORSOrigins []string
	// IngestRate and IngestBurst bound event ingestion per client.
	IngestRate  rate.Limit
	IngestBurst int
	// SecureCookies marks the cart cookie Secure.
	SecureCookies bool
	// Analytics, when set, adds the SDK load state to readiness as a degraded component.
	Analytics analyticsLoader
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*gin.Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if deps.CartSvc == nil {
		return nil, errors.New("cart service required")
	}
	if deps.Events == nil {
		return nil, errors.New("event emitter required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger.Named("http")).Writer()), gin.Recovery())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			AllowCredentials: true,
		}))
	}

	router.GET("/healthz", healthHandler)
	checks := []readyCheck{dbCheck(db)}
	if deps.Analytics != nil {
		checks = append(checks, analyticsCheck(deps.Analytics))
	}
	router.GET("/readyz", readyHandler(checks...))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	carts := &cartHandlers{svc: deps.CartSvc, logger: logger.Named("cart"), secure: deps.SecureCookies}
	router.POST("/cart", carts.create)

	router.DELETE("/cart/session", cookieMiddleware(), carts.closeSession)

	scoped := router.Group("/cart", cookieMiddleware(), carts.resume())
	scoped.GET("", carts.get)
	scoped.POST("/items", carts.addItems)
	scoped.PATCH("/items/:itemId", carts.updateItem)
	scoped.DELETE("/items/:itemId", carts.removeItem)
	scoped.POST("/coupon", carts.addCoupon)
	scoped.DELETE("/coupon", carts.removeCoupon)
	scoped.POST("/dispatch", carts.dispatch)

	if deps.ProductSvc != nil {
		products := &productHandlers{svc: deps.ProductSvc, logger: logger.Named("product")}
		router.GET("/products", products.list)
		router.GET("/products/:sku", products.get)
	}

	ingest := &eventHandlers{
		emitter: deps.Events,
		metrics: deps.Metrics,
		logger:  logger.Named("events"),
		limits:  newClientLimiter(deps.IngestRate, deps.IngestBurst),
		origins: deps.CORSOrigins,
	}
	router.POST("/events", ingest.limitMiddleware(), ingest.post)
	router.GET("/events/ws", ingest.limitMiddleware(), ingest.stream)

	return router, nil
}
