// Package dispatch serializes outgoing translation calls: at most one
// in-flight provider call exists per cache key, and concurrent callers for
// the same key share its outcome.
package dispatch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/innkeep/localize/internal/cache"
)

// DefaultWorkers bounds concurrent provider calls when unconfigured.
const DefaultWorkers = 4

// PerformFunc issues the actual provider call for one key.
type PerformFunc func(ctx context.Context) (string, error)

// Stats is a snapshot of dispatcher load.
type Stats struct {
	// Pending counts in-flight calls, including those waiting for a worker.
	Pending int `json:"pending"`
	// Queued counts calls waiting for a free dispatch slot.
	Queued int `json:"queued"`
}

type pendingCall struct {
	done        chan struct{}
	value       string
	err         error
	subscribers int
}

// Dispatcher runs provider calls on a bounded worker pool with a
// singleflight guarantee per key. Successful results are written to the
// cache supplied by the orchestrator before subscribers are released;
// failures leave the cache untouched so a later call can retry.
type Dispatcher struct {
	mu      sync.Mutex
	pool    *ants.Pool
	store   *cache.Cache
	pending map[cache.Key]*pendingCall
}

// New builds a dispatcher with the given number of dispatch slots, writing
// completed translations into store.
func New(workers int, store *cache.Cache) (*Dispatcher, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("create dispatch pool: %w", err)
	}
	return &Dispatcher{
		pool:    pool,
		store:   store,
		pending: make(map[cache.Key]*pendingCall),
	}, nil
}

// Request returns the translation for key, issuing perform at most once per
// key at any time. Callers arriving while a call is in flight attach to it
// and receive the same value or error. A caller whose context expires stops
// waiting, but the in-flight call keeps running so its result still lands in
// the cache.
func (d *Dispatcher) Request(ctx context.Context, key cache.Key, perform PerformFunc) (string, error) {
	if perform == nil {
		return "", fmt.Errorf("perform func is required")
	}

	d.mu.Lock()
	if call, exists := d.pending[key]; exists {
		call.subscribers++
		d.mu.Unlock()
		return d.await(ctx, call)
	}

	call := &pendingCall{
		done:        make(chan struct{}),
		subscribers: 1,
	}
	d.pending[key] = call
	d.mu.Unlock()

	// Submission happens off the caller goroutine: Submit blocks while all
	// dispatch slots are busy, and the caller must stay selectable on ctx.
	go d.submit(key, call, perform)

	return d.await(ctx, call)
}

func (d *Dispatcher) submit(key cache.Key, call *pendingCall, perform PerformFunc) {
	err := d.pool.Submit(func() {
		// In-flight calls are never cancelled by departing subscribers.
		value, performErr := perform(context.Background())
		if performErr == nil && d.store != nil {
			d.store.Set(key, value)
		}
		d.settle(key, call, value, performErr)
	})
	if err != nil {
		d.settle(key, call, "", fmt.Errorf("submit translation call: %w", err))
	}
}

func (d *Dispatcher) settle(key cache.Key, call *pendingCall, value string, err error) {
	d.mu.Lock()
	if current, exists := d.pending[key]; exists && current == call {
		delete(d.pending, key)
	}
	call.value = value
	call.err = err
	d.mu.Unlock()

	close(call.done)
}

func (d *Dispatcher) await(ctx context.Context, call *pendingCall) (string, error) {
	select {
	case <-call.done:
		return call.value, call.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Subscribers returns how many callers are attached to the in-flight call
// for key, zero when none is pending.
func (d *Dispatcher) Subscribers(key cache.Key) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	call, exists := d.pending[key]
	if !exists {
		return 0
	}
	return call.subscribers
}

// Stats returns a snapshot of dispatcher load.
func (d *Dispatcher) Stats() Stats {
	d.mu.Lock()
	pending := len(d.pending)
	d.mu.Unlock()

	return Stats{
		Pending: pending,
		Queued:  d.pool.Waiting(),
	}
}

// Close releases the worker pool. Pending calls that have not yet reached a
// worker fail with a submit error.
func (d *Dispatcher) Close() {
	d.pool.Release()
}
