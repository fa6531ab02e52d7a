// Package memo gives a retrieval function its own keyed, TTL-expiring cache.
//
// Each Func owns a private table; nothing is shared between wrapped functions.
// Failures are never cached and never disturb a previously stored value.
// Concurrent misses on the same key may each invoke the wrapped function.
package memo

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wonny/watchlist/pkg/logger"
)

// Clock returns the current time
type Clock func() time.Time

type entry[V any] struct {
	value      V
	computedAt time.Time
}

// Func memoizes fn per argument tuple A for ttl.
// A is usually a small struct whose named fields are the call's arguments,
// so two calls with the same arguments always produce the same key.
// ⭐ SSOT: 외부 호출 캐싱은 이 구조체에서만
type Func[A comparable, V any] struct {
	name   string
	fn     func(ctx context.Context, args A) (V, error)
	ttl    time.Duration
	now    Clock
	logger *logger.Logger

	mu      sync.Mutex
	entries map[A]entry[V]

	hits     atomic.Int64
	misses   atomic.Int64
	failures atomic.Int64
}

type settings struct {
	now    Clock
	logger *logger.Logger
}

// Option configures a Func
type Option func(*settings)

// WithClock overrides time.Now (tests)
func WithClock(c Clock) Option {
	return func(s *settings) { s.now = c }
}

// WithLogger enables debug logging of hits and misses
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// New wraps fn with a TTL cache
func New[A comparable, V any](name string, ttl time.Duration, fn func(context.Context, A) (V, error), opts ...Option) *Func[A, V] {
	s := settings{now: time.Now, logger: logger.Nop()}
	for _, opt := range opts {
		opt(&s)
	}

	return &Func[A, V]{
		name:    name,
		fn:      fn,
		ttl:     ttl,
		now:     s.now,
		logger:  s.logger.WithField("memo", name),
		entries: make(map[A]entry[V]),
	}
}

// Get returns the cached value for args when younger than the TTL,
// otherwise invokes the wrapped function and stores its result.
// Expiry depends only on elapsed time, so zero or empty values are cached too.
func (f *Func[A, V]) Get(ctx context.Context, args A) (V, error) {
	now := f.now()

	f.mu.Lock()
	e, ok := f.entries[args]
	f.mu.Unlock()

	if ok && now.Sub(e.computedAt) < f.ttl {
		f.hits.Add(1)
		f.logger.Debug("cache hit")
		return e.value, nil
	}

	f.misses.Add(1)
	return f.compute(ctx, args, now)
}

// Refresh invokes the wrapped function regardless of the cached entry's age
func (f *Func[A, V]) Refresh(ctx context.Context, args A) (V, error) {
	return f.compute(ctx, args, f.now())
}

func (f *Func[A, V]) compute(ctx context.Context, args A, startedAt time.Time) (V, error) {
	value, err := f.fn(ctx, args)
	if err != nil {
		f.failures.Add(1)
		f.logger.WithError(err).Debug("call failed, not cached")
		var zero V
		return zero, err
	}

	f.mu.Lock()
	// A slower concurrent call must not replace a fresher entry
	if cur, ok := f.entries[args]; !ok || !cur.computedAt.After(startedAt) {
		f.entries[args] = entry[V]{value: value, computedAt: startedAt}
	}
	f.mu.Unlock()

	f.logger.Debug("cache miss, stored")
	return value, nil
}

// Name returns the wrapped function's name
func (f *Func[A, V]) Name() string {
	return f.name
}

// TTL returns the freshness window
func (f *Func[A, V]) TTL() time.Duration {
	return f.ttl
}

// Stats returns counters for this function's cache
func (f *Func[A, V]) Stats() Stats {
	f.mu.Lock()
	n := len(f.entries)
	f.mu.Unlock()

	return Stats{
		Name:     f.name,
		TTL:      f.ttl.String(),
		Entries:  n,
		Hits:     f.hits.Load(),
		Misses:   f.misses.Load(),
		Failures: f.failures.Load(),
	}
}

// Stats represents cache statistics for one memoized function
type Stats struct {
	Name     string `json:"name"`
	TTL      string `json:"ttl"`
	Entries  int    `json:"entries"`
	Hits     int64  `json:"hits"`
	Misses   int64  `json:"misses"`
	Failures int64  `json:"failures"`
}

// Reporter is implemented by every *Func
type Reporter interface {
	Stats() Stats
}

// Collect gathers stats from several memoized functions
func Collect(reporters ...Reporter) []Stats {
	out := make([]Stats, 0, len(reporters))
	for _, r := range reporters {
		out = append(out, r.Stats())
	}
	return out
}
