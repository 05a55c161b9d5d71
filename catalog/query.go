package catalog

import (
	"context"
	"errors"
	"fmt"

	"entry-catalog/entry"
	"entry-catalog/observability"
)

// GetEntryByID resolves an identity to its entry, flushing pending adds
// first. A hit counts as an access against the eviction policy; this is the
// only read path that perturbs recency/frequency state. Identities the
// policy does not track are left alone.
func (c *Catalog) GetEntryByID(ctx context.Context, id int64) (*entry.Entry, error) {
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	e, ok := c.live[id]
	if !ok {
		loaded, err := c.store.SelectByID(ctx, id)
		if err != nil {
			if errors.Is(err, entry.ErrNoSuchEntry) {
				observability.LookupMissesTotal.Inc()
			}
			return nil, fmt.Errorf("get entry %d: %w", id, err)
		}
		e = c.register(loaded)
	}
	observability.LookupHitsTotal.Inc()
	if c.policy != nil {
		c.policy.RecordAccess(id)
	}
	return e, nil
}

// All returns every persisted entry in insertion order. Under a policy the
// store itself is kept within capacity by the eviction coupling, so no
// filtering is needed here.
func (c *Catalog) All(ctx context.Context) ([]*entry.Entry, error) {
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	rows, err := c.store.SelectAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return c.resolve(rows), nil
}

// Count returns the number of persisted entries.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	if err := c.flush(ctx); err != nil {
		return 0, err
	}
	n, err := c.store.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count entries: %w", err)
	}
	return n, nil
}

// GetStarred returns all starred entries in store iteration order.
func (c *Catalog) GetStarred(ctx context.Context) ([]*entry.Entry, error) {
	starred := true
	return c.Find(ctx, entry.Filter{Starred: &starred})
}

// Find returns the entries matching the filter, in store iteration order.
func (c *Catalog) Find(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	rows, err := c.store.Select(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("find entries: %w", err)
	}
	return c.resolve(rows), nil
}

// Tags returns the entry's tag names, sorted.
func (c *Catalog) Tags(ctx context.Context, e *entry.Entry) ([]string, error) {
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	if e.ID == 0 {
		return nil, fmt.Errorf("tags of entry: %w", entry.ErrNoSuchEntry)
	}
	names, err := c.store.TagsOf(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("tags of entry %d: %w", e.ID, err)
	}
	return names, nil
}

// TagNames returns every tag name associated with at least one entry,
// sorted.
func (c *Catalog) TagNames(ctx context.Context) ([]string, error) {
	if err := c.flush(ctx); err != nil {
		return nil, err
	}
	names, err := c.store.TagNames(ctx)
	if err != nil {
		return nil, fmt.Errorf("tag names: %w", err)
	}
	return names, nil
}

// resolve maps store rows onto the catalog's live pointers so callers keep
// seeing the entries they added.
func (c *Catalog) resolve(rows []*entry.Entry) []*entry.Entry {
	out := make([]*entry.Entry, len(rows))
	for i, r := range rows {
		out[i] = c.register(r)
	}
	return out
}
