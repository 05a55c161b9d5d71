package catalog

import (
	"context"
	"fmt"
	"time"

	"entry-catalog/entry"
)

// Add stages an entry for persistence. Fails with ErrEntryAlreadyAdded when
// the same entry (by pointer identity) is already tracked, pending or
// persisted.
//
// Without a policy the entry stays pending until Commit or the next
// flushing operation. With a policy it is persisted immediately — the
// policy tracks committed identities only — and an overflow evicts the
// policy's victim from the store before Add returns.
func (c *Catalog) Add(ctx context.Context, e *entry.Entry) (err error) {
	start := time.Now()
	defer func() { c.instrument("add", start, err) }()

	if _, ok := c.tracked[e]; ok {
		return fmt.Errorf("add entry: %w", entry.ErrEntryAlreadyAdded)
	}
	c.tracked[e] = struct{}{}
	c.pending = append(c.pending, e)
	if c.policy != nil {
		return c.flush(ctx)
	}
	return nil
}

// Commit persists every pending entry, assigning identities in add order.
// With a policy configured Add already flushes, so Commit is a no-op.
func (c *Catalog) Commit(ctx context.Context) error {
	return c.flush(ctx)
}

// Edit applies attribute changes to a persisted entry, in the store and on
// the struct. Changes may reassign the identity; the catalog re-keys its
// own index and the policy so eviction keeps following the entry.
func (c *Catalog) Edit(ctx context.Context, e *entry.Entry, changes ...entry.Change) (err error) {
	start := time.Now()
	defer func() { c.instrument("edit", start, err) }()

	if err := c.flush(ctx); err != nil {
		return err
	}
	if e.ID == 0 {
		return fmt.Errorf("edit entry: %w", entry.ErrNoSuchEntry)
	}
	oldID := e.ID
	if err := c.store.Update(ctx, e, changes...); err != nil {
		return fmt.Errorf("edit entry %d: %w", oldID, err)
	}
	for _, ch := range changes {
		ch.Apply(e)
	}
	if e.ID != oldID {
		delete(c.live, oldID)
		c.live[e.ID] = e
		if c.policy != nil {
			c.policy.Rekey(oldID, e.ID)
		}
		c.log.Debug("entry identity reassigned", "old", oldID, "new", e.ID)
	}
	return nil
}

// Remove deletes a persisted entry from the store. Fails with
// ErrNoSuchEntry when the entry is not present. Under a policy the identity
// is untracked without inducing an eviction.
func (c *Catalog) Remove(ctx context.Context, e *entry.Entry) (err error) {
	start := time.Now()
	defer func() { c.instrument("remove", start, err) }()

	if err := c.flush(ctx); err != nil {
		return err
	}
	if e.ID == 0 {
		return fmt.Errorf("remove entry: %w", entry.ErrNoSuchEntry)
	}
	if err := c.store.Delete(ctx, e); err != nil {
		return fmt.Errorf("remove entry %d: %w", e.ID, err)
	}
	delete(c.tracked, e)
	delete(c.live, e.ID)
	if c.policy != nil {
		c.policy.Forget(e.ID)
	}
	return nil
}

// Star sets the starred flag. Not idempotent: starring an already-starred
// entry fails with ErrEntryAlreadyStarred. A pending entry only has its
// struct flag flipped; the next flush persists the final value.
func (c *Catalog) Star(ctx context.Context, e *entry.Entry) (err error) {
	start := time.Now()
	defer func() { c.instrument("star", start, err) }()

	if e.Starred {
		return fmt.Errorf("star entry: %w", entry.ErrEntryAlreadyStarred)
	}
	if e.ID != 0 {
		if err := c.store.Update(ctx, e, entry.SetStarred(true)); err != nil {
			return fmt.Errorf("star entry %d: %w", e.ID, err)
		}
	}
	e.Starred = true
	return nil
}

// Unstar clears the starred flag, mirroring Star's precondition: unstarring
// an unstarred entry fails with ErrEntryAlreadyUnstarred.
func (c *Catalog) Unstar(ctx context.Context, e *entry.Entry) (err error) {
	start := time.Now()
	defer func() { c.instrument("unstar", start, err) }()

	if !e.Starred {
		return fmt.Errorf("unstar entry: %w", entry.ErrEntryAlreadyUnstarred)
	}
	if e.ID != 0 {
		if err := c.store.Update(ctx, e, entry.SetStarred(false)); err != nil {
			return fmt.Errorf("unstar entry %d: %w", e.ID, err)
		}
	}
	e.Starred = false
	return nil
}

// Tag associates a tag name with a persisted entry, creating the tag on
// first use. Fails with ErrEntryAlreadyTagged on a duplicate association.
// Tag associations die with the entry on remove or eviction.
func (c *Catalog) Tag(ctx context.Context, e *entry.Entry, name string) (err error) {
	start := time.Now()
	defer func() { c.instrument("tag", start, err) }()

	if err := c.flush(ctx); err != nil {
		return err
	}
	if e.ID == 0 {
		return fmt.Errorf("tag entry: %w", entry.ErrNoSuchEntry)
	}
	if err := c.store.AddTag(ctx, e, name); err != nil {
		return fmt.Errorf("tag entry %d: %w", e.ID, err)
	}
	return nil
}

// Untag drops a tag association. Fails with ErrNoSuchTag when the
// association does not exist.
func (c *Catalog) Untag(ctx context.Context, e *entry.Entry, name string) (err error) {
	start := time.Now()
	defer func() { c.instrument("untag", start, err) }()

	if err := c.flush(ctx); err != nil {
		return err
	}
	if e.ID == 0 {
		return fmt.Errorf("untag entry: %w", entry.ErrNoSuchEntry)
	}
	if err := c.store.RemoveTag(ctx, e, name); err != nil {
		return fmt.Errorf("untag entry %d: %w", e.ID, err)
	}
	return nil
}
