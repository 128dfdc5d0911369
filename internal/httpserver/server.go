package httpserver

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// Server owns the HTTP listener. Long-lived websocket ingestion streams are
// tied to the server's base context and end when Shutdown starts.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	cancel     context.CancelFunc
}

// New builds a Server with the storefront routes.
func New(addr string, logger *zap.Logger, db *pgxpool.Pool, deps Deps) (*Server, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	router, err := buildRouter(logger, db, deps)
	if err != nil {
		return nil, err
	}

	baseCtx, cancel := context.WithCancel(context.Background())
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ErrorLog:          zap.NewStdLog(logger.Named("net/http")),
	}
	// Shutdown does not wait for hijacked connections.
	httpSrv.RegisterOnShutdown(cancel)

	return &Server{
		httpServer: httpSrv,
		logger:     logger,
		cancel:     cancel,
	}, nil
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the HTTP server and closes open event streams.
func (s *Server) Shutdown(ctx context.Context) error {
	defer s.cancel()
	s.logger.Info("http shutdown", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyCheck returns a non-empty reason when its component is not ready.
// Optional components are reported but never fail readiness.
type readyCheck struct {
	name     string
	optional bool
	check    func(ctx context.Context) string
}

func dbCheck(db *pgxpool.Pool) readyCheck {
	return readyCheck{name: "db", check: func(ctx context.Context) string {
		if db == nil {
			return "db not configured"
		}
		if err := db.Ping(ctx); err != nil {
			return "db not reachable"
		}
		return ""
	}}
}

func analyticsCheck(loader analyticsLoader) readyCheck {
	return readyCheck{name: "analytics", optional: true, check: func(context.Context) string {
		if err := loader.Err(); err != nil {
			return err.Error()
		}
		return ""
	}}
}

func readyHandler(checks ...readyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		failed := gin.H{}
		degraded := gin.H{}
		for _, rc := range checks {
			reason := rc.check(ctx)
			switch {
			case reason == "":
			case rc.optional:
				degraded[rc.name] = reason
			default:
				failed[rc.name] = reason
			}
		}
		body := gin.H{"status": "ready"}
		if len(degraded) > 0 {
			body["degraded"] = degraded
		}
		if len(failed) > 0 {
			body["status"] = "unavailable"
			body["reasons"] = failed
			c.JSON(http.StatusServiceUnavailable, body)
			return
		}
		c.JSON(http.StatusOK, body)
	}
}
