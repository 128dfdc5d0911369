package sdk

import (
	"context"
	"errors"
	"sync"
)

var ErrNotLoaded = errors.New("sdk not loaded")

type LoadFunc func(ctx context.Context) (SDK, error)

// Loader resolves the SDK at most once; every waiter sees the same result.
type Loader struct {
	load LoadFunc
	once sync.Once
	done chan struct{}
	sdk  SDK
	err  error
}

func NewLoader(load LoadFunc) *Loader {
	return &Loader{load: load, done: make(chan struct{})}
}

// Resolved returns a loader that is already settled with s.
func Resolved(s SDK) *Loader {
	l := NewLoader(func(context.Context) (SDK, error) { return s, nil })
	l.Start(context.Background())
	<-l.done
	return l
}

// Start kicks off loading in the background. Cancelling ctx later does not
// abort a load in progress.
func (l *Loader) Start(ctx context.Context) {
	l.once.Do(func() {
		loadCtx := context.WithoutCancel(ctx)
		go func() {
			defer close(l.done)
			if l.load == nil {
				l.err = ErrNotLoaded
				return
			}
			s, err := l.load(loadCtx)
			if err == nil && !s.Valid() {
				err = ErrNotLoaded
			}
			l.sdk, l.err = s, err
		}()
	})
}

// Wait starts loading if needed and blocks until it settles or ctx is done.
func (l *Loader) Wait(ctx context.Context) (SDK, error) {
	l.Start(ctx)
	select {
	case <-l.done:
		return l.sdk, l.err
	case <-ctx.Done():
		return SDK{}, ctx.Err()
	}
}

// Err reports the load outcome without blocking: ErrNotLoaded while loading
// is still pending, otherwise the settled error.
func (l *Loader) Err() error {
	select {
	case <-l.done:
		return l.err
	default:
		return ErrNotLoaded
	}
}
