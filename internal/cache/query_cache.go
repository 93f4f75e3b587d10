package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/on-par/vemorable-sub000/internal/pkg/logger"

	"golang.org/x/sync/singleflight"
)

const queryNamespace = "query"

// QueryCache layers memoization, request batching and prefetching on top
// of a CacheManager. Read-through semantics: a failed call is never
// cached, so the next call retries the underlying dependency.
type QueryCache struct {
	manager *CacheManager
	group   singleflight.Group
	logger  logger.ILogger
}

func NewQueryCache(manager *CacheManager, log logger.ILogger) *QueryCache {
	return &QueryCache{
		manager: manager,
		logger:  log,
	}
}

func (q *QueryCache) Manager() *CacheManager {
	return q.manager
}

// BuildKey serializes args into a stable memoization key under prefix.
func BuildKey(prefix string, args interface{}) string {
	encoded, err := json.Marshal(args)
	if err != nil {
		return prefix + ":" + fmt.Sprintf("%+v", args)
	}
	return prefix + ":" + string(encoded)
}

// Cached memoizes fn keyed by prefix + serialized args. Concurrent calls
// for the same key are collapsed into one in-flight invocation. Errors
// propagate to every caller and leave the cache untouched.
func Cached[T any](ctx context.Context, q *QueryCache, prefix string, args interface{}, ttl time.Duration, fn func(context.Context) (T, error), tags ...Tag) (T, error) {
	key := BuildKey(prefix, args)

	if v, ok := q.manager.Get(queryNamespace, key); ok {
		if typed, ok := v.(T); ok {
			return typed, nil
		}
	}

	v, err, _ := q.group.Do(key, func() (interface{}, error) {
		versions := q.manager.TagVersions(tags...)
		res, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		// An invalidation that landed while fn was in flight makes this
		// result a pre-mutation snapshot. The caller still gets it, but
		// it must not be written back, or readers would see stale data
		// until TTL.
		q.manager.SetWithTagsVersioned(queryNamespace, key, res, ttl, versions, tags...)
		return res, nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// PrefetchMode selects when the warming function runs.
type PrefetchMode int

const (
	// PrefetchImmediate runs synchronously in the caller.
	PrefetchImmediate PrefetchMode = iota
	// PrefetchDeferred schedules the warm-up after the current unit of
	// work, on its own goroutine.
	PrefetchDeferred
)

// PrefetchOptions gates and routes a prefetch.
type PrefetchOptions struct {
	Mode      PrefetchMode
	Condition func() bool
	Tags      []Tag
}

// Prefetch runs fn ahead of demand and seeds the cache under
// prefix+args. Failures are logged, never surfaced: prefetching is an
// optimization, not a dependency.
func Prefetch[T any](ctx context.Context, q *QueryCache, prefix string, args interface{}, ttl time.Duration, fn func(context.Context) (T, error), opts PrefetchOptions) {
	if opts.Condition != nil && !opts.Condition() {
		return
	}

	run := func() {
		res, err := fn(ctx)
		if err != nil {
			q.logger.Warn("query_cache", "prefetch failed", map[string]interface{}{
				"prefix": prefix,
				"error":  err.Error(),
			})
			return
		}
		key := BuildKey(prefix, args)
		q.manager.SetWithTags(queryNamespace, key, res, ttl, opts.Tags...)
	}

	if opts.Mode == PrefetchDeferred {
		go run()
		return
	}
	run()
}

// BatchOptions bounds a micro-batch queue.
type BatchOptions struct {
	Size   int           // flush when this many callers are pending
	Window time.Duration // flush when the oldest caller has waited this long
	Clock  Clock
}

type batchOutcome[R any] struct {
	result R
	err    error
}

type batchWaiter[A any, R any] struct {
	arg A
	ch  chan batchOutcome[R]
}

// Batcher coalesces concurrent calls into one batchFn invocation
// receiving all pending argument sets. Caller i resolves from result i;
// a missing slice rejects that caller individually. An individual caller
// cannot cancel independently of the batch.
type Batcher[A any, R any] struct {
	fn   func(ctx context.Context, args []A) ([]R, error)
	opts BatchOptions

	mu        sync.Mutex
	pending   []*batchWaiter[A, R]
	stopTimer func() bool
}

func NewBatcher[A any, R any](fn func(ctx context.Context, args []A) ([]R, error), opts BatchOptions) *Batcher[A, R] {
	if opts.Size <= 0 {
		opts.Size = 10
	}
	if opts.Window <= 0 {
		opts.Window = 10 * time.Millisecond
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}
	return &Batcher[A, R]{
		fn:   fn,
		opts: opts,
	}
}

// Do enqueues arg and blocks until the batch it joined resolves.
func (b *Batcher[A, R]) Do(ctx context.Context, arg A) (R, error) {
	w := &batchWaiter[A, R]{
		arg: arg,
		ch:  make(chan batchOutcome[R], 1),
	}

	b.mu.Lock()
	b.pending = append(b.pending, w)
	if len(b.pending) >= b.opts.Size {
		b.flushLocked(ctx)
	} else if len(b.pending) == 1 {
		b.stopTimer = b.opts.Clock.AfterFunc(b.opts.Window, func() {
			b.mu.Lock()
			b.flushLocked(context.Background())
			b.mu.Unlock()
		})
	}
	b.mu.Unlock()

	out := <-w.ch
	return out.result, out.err
}

// caller must hold b.mu
func (b *Batcher[A, R]) flushLocked(ctx context.Context) {
	if len(b.pending) == 0 {
		return
	}
	if b.stopTimer != nil {
		b.stopTimer()
		b.stopTimer = nil
	}
	batch := b.pending
	b.pending = nil

	go b.run(ctx, batch)
}

func (b *Batcher[A, R]) run(ctx context.Context, batch []*batchWaiter[A, R]) {
	args := make([]A, len(batch))
	for i, w := range batch {
		args[i] = w.arg
	}

	results, err := b.fn(ctx, args)
	for i, w := range batch {
		switch {
		case err != nil:
			w.ch <- batchOutcome[R]{err: err}
		case i >= len(results):
			w.ch <- batchOutcome[R]{err: fmt.Errorf("batch result missing for argument %d", i)}
		default:
			w.ch <- batchOutcome[R]{result: results[i]}
		}
	}
}
