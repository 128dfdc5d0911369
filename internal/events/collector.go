package events

import (
	"context"
	"fmt"
	"sync/atomic"

	"storefront/internal/observability"
	"storefront/internal/sdk"

	"go.uber.org/zap"
)

const (
	outcomeHandled   = "handled"
	outcomeUnmatched = "unmatched"
	outcomeFailed    = "failed"
)

// Collector routes events to the handler registered for their type.
type Collector struct {
	handlers   map[Type]Handler
	logger     *zap.Logger
	metrics    *observability.EventMetrics
	subscribed atomic.Bool
}

// NewCollector indexes handlers by event type. Two handlers claiming the same
// type is an error.
func NewCollector(logger *zap.Logger, metrics *observability.EventMetrics, handlers ...Handler) (*Collector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	index := make(map[Type]Handler)
	for _, h := range handlers {
		if h == nil {
			continue
		}
		for _, t := range h.EventTypes() {
			if _, dup := index[t]; dup {
				return nil, fmt.Errorf("event collector: duplicate handler for %s", t)
			}
			index[t] = h
		}
	}
	return &Collector{handlers: index, logger: logger, metrics: metrics}, nil
}

// Handle dispatches ev and reports whether a handler accepted it. Unmatched
// events are dropped; handler failures are logged and never propagated.
func (c *Collector) Handle(s sdk.SDK, ev Event) (handled bool) {
	h, ok := c.handlers[ev.Type]
	if !ok || !h.CanHandle(ev) {
		c.logger.Debug("event collector: no handler", zap.String("type", string(ev.Type)))
		c.metrics.Dispatched(string(ev.Type), outcomeUnmatched)
		return false
	}

	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("event collector: handler panic", zap.String("type", string(ev.Type)), zap.Any("panic", r))
			c.metrics.Dispatched(string(ev.Type), outcomeFailed)
			handled = false
		}
	}()

	if err := h.Handle(s, ev); err != nil {
		c.logger.Warn("event collector: handler failed", zap.String("type", string(ev.Type)), zap.Error(err))
		c.metrics.Dispatched(string(ev.Type), outcomeFailed)
		return false
	}
	c.metrics.Dispatched(string(ev.Type), outcomeHandled)
	return true
}

// Run waits for the SDK, then consumes the stream until ctx is done or the
// stream is closed. If the SDK never loads the subscription is never made
// and Run returns nil.
func (c *Collector) Run(ctx context.Context, loader *sdk.Loader, stream *Stream) error {
	s, err := loader.Wait(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		c.logger.Warn("event collector: sdk unavailable, analytics disabled", zap.Error(err))
		return nil
	}

	events, unsubscribe := stream.Subscribe()
	c.subscribed.Store(true)
	c.logger.Info("event collector: subscribed", zap.Int("handlers", len(c.handlers)))
	defer func() {
		unsubscribe()
		c.subscribed.Store(false)
		c.logger.Info("event collector: unsubscribed")
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			c.Handle(s, ev)
		}
	}
}

// Subscribed reports whether Run is currently consuming the stream.
func (c *Collector) Subscribed() bool {
	return c.subscribed.Load()
}

// Types lists the event types with a registered handler.
func (c *Collector) Types() []Type {
	out := make([]Type, 0, len(c.handlers))
	for t := range c.handlers {
		out = append(out, t)
	}
	return out
}
