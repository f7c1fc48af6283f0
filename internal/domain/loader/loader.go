// Package loader coordinates overlapping loads of the same resource.
//
// A Loader owns the only state shared between requests for a panel: whether a
// load is running and, under Supersede, how to cancel it. Under Collapse,
// callers that arrive while a load runs wait for it and share its result, so
// the load function (fetch and render) runs once. Under Supersede, a new call
// cancels the running one and the old caller gets ErrSuperseded.
package loader

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Policy decides what happens to overlapping loads.
type Policy string

const (
	Collapse  Policy = "collapse"
	Supersede Policy = "supersede"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case Collapse, Supersede:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
	}
}

// Func loads and renders one value.
type Func[T any] func(ctx context.Context) (T, error)

// Result is what a caller of Load receives.
type Result[T any] struct {
	Value T
	// Shared is true when the value came from a load another caller started.
	Shared bool
}

// Loader runs Func under a Policy.
type Loader[T any] struct {
	policy Policy
	fn     Func[T]
	hooks  hooks

	group    singleflight.Group
	inflight atomic.Int32

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelCauseFunc
}

const flightKey = "load"

// New creates a Loader. An empty policy means Collapse.
func New[T any](policy Policy, fn Func[T], opts ...Option) *Loader[T] {
	if policy == "" {
		policy = Collapse
	}
	l := &Loader[T]{policy: policy, fn: fn}
	for _, opt := range opts {
		opt(&l.hooks)
	}
	return l
}

// Policy returns the policy the loader was built with.
func (l *Loader[T]) Policy() Policy {
	return l.policy
}

// Loading reports whether a load is running.
func (l *Loader[T]) Loading() bool {
	return l.inflight.Load() > 0
}

// Load runs or joins a load according to the policy.
func (l *Loader[T]) Load(ctx context.Context) (Result[T], error) {
	if l.policy == Supersede {
		return l.supersede(ctx)
	}
	return l.collapse(ctx)
}

func (l *Loader[T]) collapse(ctx context.Context) (Result[T], error) {
	// The shared load must not die with whichever caller happened to start it.
	runCtx := context.WithoutCancel(ctx)
	started := false

	ch := l.group.DoChan(flightKey, func() (v any, err error) {
		started = true
		l.inflight.Add(1)
		defer l.inflight.Add(-1)
		// DoChan runs this on its own goroutine, where a panic would take the process down.
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%w: %v", ErrPanicked, p)
			}
		}()
		call(l.hooks.onStart)
		return l.fn(runCtx)
	})

	select {
	case <-ctx.Done():
		var zero Result[T]
		return zero, ctx.Err()
	case res := <-ch:
		shared := res.Shared && !started
		if shared {
			call(l.hooks.onCollapsed)
		}
		if res.Err != nil {
			return Result[T]{Shared: shared}, res.Err
		}
		v, _ := res.Val.(T)
		return Result[T]{Value: v, Shared: shared}, nil
	}
}

func (l *Loader[T]) supersede(ctx context.Context) (Result[T], error) {
	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	l.mu.Lock()
	if l.cancel != nil {
		l.cancel(ErrSuperseded)
	}
	l.gen++
	gen := l.gen
	l.cancel = cancel
	l.mu.Unlock()

	v, err := func() (T, error) {
		l.inflight.Add(1)
		defer l.inflight.Add(-1)
		call(l.hooks.onStart)
		return l.fn(runCtx)
	}()

	l.mu.Lock()
	current := gen == l.gen
	if current {
		l.cancel = nil
	}
	l.mu.Unlock()

	if !current {
		call(l.hooks.onSuperseded)
		var zero Result[T]
		return zero, ErrSuperseded
	}
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Value: v}, nil
}
