// Package loader is the request/cache/error/loading state container behind
// every data view. A loader owns one logical fetch: on Get it exposes the
// cached value immediately (when one exists) while the real fetch runs,
// then replaces it with the fresh value and writes it back to the cache.
// A failed fetch surfaces an error message but never blanks out data that
// was already on display.
package loader

import (
	"context"
	"sync"

	"marketdash/internal/cachestore"
)

// State is the lifecycle phase of a loader.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	}
	return "unknown"
}

// Snapshot is one observable point of a loader's state. Data is nil until
// either the cache or a fetch has produced a value; Stale marks data that
// came from the cache and has not been confirmed by a fresh fetch yet.
type Snapshot[T any] struct {
	State State
	Data  *T
	Stale bool
	Err   string
}

// Gate blocks a fetch until it is allowed to proceed. It throttles rapid
// refetches the way debounced input does upstream of the original design.
type Gate interface {
	Wait(ctx context.Context) error
}

// FetchFunc produces a fresh value, typically through a fallback chain.
type FetchFunc[T any] func(ctx context.Context) (T, error)

// Loader runs the idle -> loading -> success|error machine for one cache
// key. Safe for concurrent use; a Get superseded by a newer Get has its
// result discarded.
type Loader[T any] struct {
	cache    *cachestore.Store
	key      string
	fetch    FetchFunc[T]
	gate     Gate
	onChange func(Snapshot[T])

	mu   sync.Mutex
	gen  int
	snap Snapshot[T]
}

// Option configures a Loader.
type Option[T any] func(*Loader[T])

// WithGate throttles fetches through g.
func WithGate[T any](g Gate) Option[T] {
	return func(l *Loader[T]) { l.gate = g }
}

// WithOnChange registers a callback fired after every state transition.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(l *Loader[T]) { l.onChange = fn }
}

func New[T any](cache *cachestore.Store, key string, fetch FetchFunc[T], opts ...Option[T]) *Loader[T] {
	l := &Loader[T]{cache: cache, key: key, fetch: fetch}
	l.snap.State = StateIdle
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Snapshot returns the current observable state.
func (l *Loader[T]) Snapshot() Snapshot[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snap
}

// Get runs the full sequence: enter loading, expose any cached value,
// fetch, then commit the result. It returns the snapshot as of this call's
// completion; if a newer Get superseded this one, the newer state wins and
// this call's fetch result is dropped.
func (l *Loader[T]) Get(ctx context.Context) Snapshot[T] {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	l.snap.State = StateLoading
	if l.snap.Data == nil {
		if cached := cachestore.Get[*T](l.cache, l.key, nil); cached != nil {
			l.snap.Data = cached
			l.snap.Stale = true
		}
	}
	snap := l.snap
	l.mu.Unlock()
	l.notify(snap)

	if l.gate != nil {
		if err := l.gate.Wait(ctx); err != nil {
			return l.commit(gen, nil, err)
		}
	}
	v, err := l.fetch(ctx)
	if err != nil {
		return l.commit(gen, nil, err)
	}
	return l.commit(gen, &v, nil)
}

// Refetch re-runs the same sequence.
func (l *Loader[T]) Refetch(ctx context.Context) Snapshot[T] {
	return l.Get(ctx)
}

func (l *Loader[T]) commit(gen int, v *T, err error) Snapshot[T] {
	l.mu.Lock()
	if gen != l.gen {
		// Superseded by a newer Get; discard this result.
		snap := l.snap
		l.mu.Unlock()
		return snap
	}
	if err != nil {
		l.snap.State = StateError
		l.snap.Err = err.Error()
		// Previously displayed data stays visible alongside the error.
	} else {
		l.snap.State = StateSuccess
		l.snap.Data = v
		l.snap.Stale = false
		l.snap.Err = ""
	}
	snap := l.snap
	l.mu.Unlock()
	if err == nil && v != nil {
		l.cache.Set(l.key, *v)
	}
	l.notify(snap)
	return snap
}

func (l *Loader[T]) notify(s Snapshot[T]) {
	if l.onChange != nil {
		l.onChange(s)
	}
}
