package httpserver

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"storefront/internal/events"
	"storefront/internal/observability"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	transportHTTP      = "http"
	transportWebsocket = "websocket"

	wsReadLimit    = 64 << 10
	wsWriteTimeout = 5 * time.Second
)

type eventHandlers struct {
	emitter events.Emitter
	metrics *observability.EventMetrics
	logger  *zap.Logger
	limits  *clientLimiter
	origins []string
}

type wsReply struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *eventHandlers) limitMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !h.limits.Allow(c.ClientIP()) {
			h.metrics.Ingested(transportHTTP, "throttled")
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "too many events"})
			return
		}
		c.Next()
	}
}

func (h *eventHandlers) post(c *gin.Context) {
	var ev events.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		h.metrics.Ingested(transportHTTP, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body"})
		return
	}
	if err := ev.Validate(); err != nil {
		h.metrics.Ingested(transportHTTP, "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}
	h.emitter.Emit(ev)
	h.metrics.Ingested(transportHTTP, "ok")
	c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})
}

// stream reads one JSON event per websocket message and acknowledges each.
func (h *eventHandlers) stream(c *gin.Context) {
	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns: originPatterns(h.origins),
	})
	if err != nil {
		h.logger.Debug("websocket accept failed", zap.Error(err))
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")
	conn.SetReadLimit(wsReadLimit)

	ctx := c.Request.Context()
	client := c.ClientIP()
	for {
		var ev events.Event
		err := wsjson.Read(ctx, conn, &ev)
		if err != nil {
			if websocket.CloseStatus(err) == -1 && !errors.Is(err, context.Canceled) {
				h.logger.Debug("websocket read failed", zap.String("client", client), zap.Error(err))
				_ = conn.Close(websocket.StatusUnsupportedData, "invalid event")
			}
			return
		}

		reply := wsReply{Status: "accepted"}
		if !h.limits.Allow(client) {
			h.metrics.Ingested(transportWebsocket, "throttled")
			reply = wsReply{Status: "throttled", Message: "too many events"}
		} else if verr := ev.Validate(); verr != nil {
			h.metrics.Ingested(transportWebsocket, "invalid")
			reply = wsReply{Status: "rejected", Message: verr.Error()}
		} else {
			h.emitter.Emit(ev)
			h.metrics.Ingested(transportWebsocket, "ok")
		}

		writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
		err = wsjson.Write(writeCtx, conn, reply)
		cancel()
		if err != nil {
			h.logger.Debug("websocket write failed", zap.String("client", client), zap.Error(err))
			return
		}
	}
}

// originPatterns turns configured CORS origins into host patterns.
func originPatterns(origins []string) []string {
	var out []string
	for _, origin := range origins {
		if origin == "*" {
			return []string{"*"}
		}
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, u.Host)
	}
	return out
}
