// Package catalog composes a persistent entry store with an optional
// eviction policy. Without a policy the catalog is an unbounded view of the
// store. With one, every mutation that grows the working set is coupled to
// the policy: on overflow the victim is deleted from the store itself, so
// the policy governs the database's actual retained working set.
//
// A catalog is a single-owner structure. Operations run synchronously to
// completion; callers that share a catalog across goroutines must serialize
// access externally, because the policy state and the store must change
// together.
package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"entry-catalog/catalog/policy"
	"entry-catalog/entry"
	"entry-catalog/observability"
	"entry-catalog/sqlstore"
)

// Catalog is a bounded-or-unbounded collection of entries.
type Catalog struct {
	store  entry.Store
	policy policy.Policy
	log    *slog.Logger

	// pending holds entries added but not yet persisted, in add order.
	pending []*entry.Entry
	// tracked indexes every entry this catalog has seen, by pointer
	// identity, pending or persisted.
	tracked map[*entry.Entry]struct{}
	// live resolves a persisted identity to the caller's entry pointer.
	live map[int64]*entry.Entry
}

// Option configures a Catalog at construction time.
type Option func(*Catalog)

// WithPolicy bounds the catalog with an eviction policy. The policy's
// capacity caps the number of entries retained in the store.
func WithPolicy(p policy.Policy) Option {
	return func(c *Catalog) { c.policy = p }
}

// WithLogger sets the logger for flush and eviction events. The default
// discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(c *Catalog) { c.log = l }
}

// New creates a catalog over the given store.
func New(store entry.Store, opts ...Option) (*Catalog, error) {
	c := &Catalog{
		store:   store,
		log:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracked: make(map[*entry.Entry]struct{}),
		live:    make(map[int64]*entry.Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.policy != nil && c.policy.Capacity() < 1 {
		return nil, fmt.Errorf("eviction policy capacity must be positive, got %d", c.policy.Capacity())
	}
	return c, nil
}

// Open creates a catalog over a SQLite store at dsn (":memory:" or a file
// path).
func Open(dsn string, opts ...Option) (*Catalog, error) {
	s, err := sqlstore.Open(dsn)
	if err != nil {
		return nil, err
	}
	c, err := New(s, opts...)
	if err != nil {
		s.Close()
		return nil, err
	}
	return c, nil
}

// CreateTables initializes the store's schema. Whether a repeated call is
// an error or a no-op is store-delegated. When a policy is configured, any
// entries already persisted are adopted into the policy in identity order,
// evicting on overflow, so an existing database immediately honors the
// capacity bound.
func (c *Catalog) CreateTables(ctx context.Context) error {
	if err := c.store.CreateSchema(ctx); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	if c.policy == nil {
		return nil
	}
	entries, err := c.store.SelectAll(ctx)
	if err != nil {
		return fmt.Errorf("adopt entries: %w", err)
	}
	for _, e := range entries {
		c.register(e)
		c.policy.RecordInsert(e.ID)
		if err := c.enforceCapacity(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the backing store.
func (c *Catalog) Close() error {
	return c.store.Close()
}

// register indexes a persisted entry, preferring an already-live pointer
// for the same identity so repeated reads hand back the entry the caller
// added.
func (c *Catalog) register(e *entry.Entry) *entry.Entry {
	if cur, ok := c.live[e.ID]; ok {
		return cur
	}
	c.live[e.ID] = e
	c.tracked[e] = struct{}{}
	return e
}

// flush persists pending entries in add order. Each insert assigns the
// entry's identity; under a policy the identity is recorded and the
// capacity bound enforced before the next entry is flushed.
func (c *Catalog) flush(ctx context.Context) error {
	for len(c.pending) > 0 {
		e := c.pending[0]
		if err := c.store.Insert(ctx, e); err != nil {
			return fmt.Errorf("flush entry: %w", err)
		}
		c.pending = c.pending[1:]
		c.live[e.ID] = e
		c.log.Debug("entry persisted", "id", e.ID)
		if c.policy != nil {
			c.policy.RecordInsert(e.ID)
			if err := c.enforceCapacity(ctx); err != nil {
				return err
			}
		}
	}
	return nil
}

// enforceCapacity evicts until the policy is back under its bound. Eviction
// deletes the victim from the store: the policy decides what the database
// retains, not just what stays cached.
func (c *Catalog) enforceCapacity(ctx context.Context) error {
	for c.policy.Size() > c.policy.Capacity() {
		id, ok := c.policy.Evict()
		if !ok {
			return nil
		}
		victim, ok := c.live[id]
		if !ok {
			victim = &entry.Entry{ID: id}
		}
		if err := c.store.Delete(ctx, victim); err != nil {
			// The policy already dropped the victim but the store
			// still holds it. No compensation protocol exists, so
			// surface the invariant breach to the caller.
			return fmt.Errorf("evict entry %d: %w", id, err)
		}
		delete(c.live, id)
		delete(c.tracked, victim)
		observability.EvictionsTotal.WithLabelValues(c.policy.Name()).Inc()
		c.log.Debug("entry evicted", "id", id, "policy", c.policy.Name())
	}
	return nil
}

// instrument records the outcome and latency of a mutation operation.
func (c *Catalog) instrument(op string, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	observability.MutationsTotal.WithLabelValues(op, status).Inc()
	observability.MutationDurationSeconds.WithLabelValues(op).Observe(time.Since(start).Seconds())
}
