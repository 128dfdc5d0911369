package cart

import (
	"errors"
	"sync"

	"storefront/internal/observability"

	"go.uber.org/zap"
)

// Store is a state container mutated only through Dispatch. Dispatches are
// serialized together with their notifications, so listeners see states in
// dispatch order. Listeners may read State but must not Dispatch.
type Store struct {
	// notifyMu is held from reduce until the last listener returns.
	notifyMu  sync.Mutex
	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
	strict    bool
	logger    *zap.Logger
	metrics   *observability.CartMetrics
}

type Option func(*Store)

// WithStrict makes Dispatch return ErrUnknownAction instead of ignoring it.
func WithStrict(strict bool) Option {
	return func(s *Store) { s.strict = strict }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMetrics(m *observability.CartMetrics) Option {
	return func(s *Store) { s.metrics = m }
}

func NewStore(initial State, opts ...Option) *Store {
	s := &Store{
		state:     initial,
		listeners: make(map[int]func(State)),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dispatch applies a to the current state and notifies listeners.
func (s *Store) Dispatch(a Action) error {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	next, err := Reduce(s.state, a)
	if err != nil {
		s.mu.Unlock()
		if errors.Is(err, ErrUnknownAction) && !s.strict {
			s.logger.Debug("cart store: ignoring action", zap.String("action", string(a.Type)))
			s.metrics.Action(string(a.Type), "ignored")
			return nil
		}
		s.logger.Warn("cart store: rejected action", zap.String("action", string(a.Type)), zap.Error(err))
		s.metrics.Action(string(a.Type), "rejected")
		return err
	}
	s.state = next
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	s.metrics.Action(string(a.Type), "ok")
	for _, fn := range listeners {
		fn(next)
	}
	return nil
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for state changes and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(State)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}
