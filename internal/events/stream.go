package events

import (
	"sync"

	"storefront/internal/observability"

	"go.uber.org/zap"
)

// Stream is an in-process observable: every subscriber gets every event
// emitted after it subscribed. Emit never blocks; a full subscriber buffer
// drops the event for that subscriber.
type Stream struct {
	mu      sync.RWMutex
	subs    map[int]chan Event
	nextID  int
	buffer  int
	closed  bool
	logger  *zap.Logger
	metrics *observability.EventMetrics
}

func NewStream(buffer int, logger *zap.Logger, metrics *observability.EventMetrics) *Stream {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Stream{
		subs:    make(map[int]chan Event),
		buffer:  buffer,
		logger:  logger,
		metrics: metrics,
	}
}

func (s *Stream) Emit(ev Event) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
			s.logger.Debug("event stream: subscriber full, dropping event", zap.String("type", string(ev.Type)))
			s.metrics.Dropped(string(ev.Type))
		}
	}
}

// Subscribe returns a channel of events and a cancel func that closes it.
// Subscribing to a closed stream yields an already-closed channel.
func (s *Stream) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, s.buffer)
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Close closes every subscriber channel; later emits are ignored.
func (s *Stream) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

// Subscribers reports the number of live subscriptions.
func (s *Stream) Subscribers() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}
