package classifier

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Factory builds a backend. It may be slow (model download, warm-up calls).
type Factory func(ctx context.Context) (Classifier, error)

// Loader lazily builds a backend on first use and memoises it. Callers that
// arrive while a load is in flight wait for that load instead of starting
// another. A failed load is not memoised; the next call tries again.
type Loader struct {
	factory Factory
	group   singleflight.Group

	mu       sync.RWMutex
	instance Classifier
	loads    int
}

func NewLoader(factory Factory) *Loader {
	return &Loader{factory: factory}
}

// Get returns the loaded backend, loading it if needed.
func (l *Loader) Get(ctx context.Context) (Classifier, error) {
	if c := l.current(); c != nil {
		return c, nil
	}

	ch := l.group.DoChan("load", func() (interface{}, error) {
		if c := l.current(); c != nil {
			return c, nil
		}

		// The load outlives the caller that happened to trigger it.
		c, err := l.factory(context.WithoutCancel(ctx))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrModelLoad, err)
		}

		l.mu.Lock()
		l.instance = c
		l.loads++
		l.mu.Unlock()
		return c, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(Classifier), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: waiting for model: %v", ErrTimeout, ctx.Err())
	}
}

// Classify loads the backend if needed and delegates to it.
func (l *Loader) Classify(ctx context.Context, text string, labels []string) (Result, error) {
	c, err := l.Get(ctx)
	if err != nil {
		return Result{}, err
	}
	return c.Classify(ctx, text, labels)
}

// Loaded reports whether a backend is memoised.
func (l *Loader) Loaded() bool {
	return l.current() != nil
}

// Loads counts successful loads since construction.
func (l *Loader) Loads() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loads
}

// Reset drops the memoised backend so the next call loads afresh.
func (l *Loader) Reset() {
	l.mu.Lock()
	l.instance = nil
	l.mu.Unlock()
}

func (l *Loader) current() Classifier {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.instance
}
