// Package memstore provides an ephemeral in-memory entry store. It
// implements the same contract and error semantics as the SQLite store but
// holds everything in maps, which keeps unit tests off the filesystem.
package memstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"sync"

	"entry-catalog/entry"
)

// ensure implementation
var _ entry.Store = (*Store)(nil)

// Store is a thread-safe in-memory entry store. Identities are assigned
// from a monotonic counter and never reused after deletes.
type Store struct {
	mu      sync.RWMutex
	nextID  int64
	entries map[int64]*entry.Entry
	tags    map[string]map[int64]struct{}
}

// New creates a new Store.
func New() *Store {
	return &Store{
		entries: make(map[int64]*entry.Entry),
		tags:    make(map[string]map[int64]struct{}),
	}
}

// CreateSchema is a no-op; the maps exist from construction.
func (s *Store) CreateSchema(ctx context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

// Insert stores a copy of the entry and writes the assigned identity back
// into e.ID.
func (s *Store) Insert(ctx context.Context, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	e.ID = s.nextID
	cp := *e
	s.entries[e.ID] = &cp
	return nil
}

// Update applies the changes to the stored copy. An identity change re-keys
// the entry and its tag associations.
func (s *Store) Update(ctx context.Context, e *entry.Entry, changes ...entry.Change) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.entries[e.ID]
	if !ok {
		return fmt.Errorf("update entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	oldID := cur.ID
	for _, ch := range changes {
		ch.Apply(cur)
	}
	if cur.ID != oldID {
		if _, taken := s.entries[cur.ID]; taken {
			newID := cur.ID
			cur.ID = oldID
			return fmt.Errorf("update entry %d: identity %d already in use", oldID, newID)
		}
		delete(s.entries, oldID)
		s.entries[cur.ID] = cur
		for _, ids := range s.tags {
			if _, ok := ids[oldID]; ok {
				delete(ids, oldID)
				ids[cur.ID] = struct{}{}
			}
		}
		// keep identities monotonic past manual reassignments
		if cur.ID > s.nextID {
			s.nextID = cur.ID
		}
	}
	return nil
}

// Delete removes a persisted entry and cascades its tag associations.
func (s *Store) Delete(ctx context.Context, e *entry.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; !ok {
		return fmt.Errorf("delete entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	delete(s.entries, e.ID)
	for name, ids := range s.tags {
		delete(ids, e.ID)
		if len(ids) == 0 {
			delete(s.tags, name)
		}
	}
	return nil
}

// SelectByID resolves an identity to a copy of its entry.
func (s *Store) SelectByID(ctx context.Context, id int64) (*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, fmt.Errorf("entry %d: %w", id, entry.ErrNoSuchEntry)
	}
	cp := *e
	return &cp, nil
}

// SelectAll returns copies of every entry in id (insertion) order.
func (s *Store) SelectAll(ctx context.Context) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(*entry.Entry) bool { return true }), nil
}

// Select returns copies of the entries matching f, in id order.
func (s *Store) Select(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collect(func(e *entry.Entry) bool {
		if !f.Match(e) {
			return false
		}
		if f.Tag != "" {
			if _, ok := s.tags[f.Tag][e.ID]; !ok {
				return false
			}
		}
		return true
	}), nil
}

// Count returns the number of stored entries.
func (s *Store) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// AddTag associates a tag name with a stored entry.
func (s *Store) AddTag(ctx context.Context, e *entry.Entry, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[e.ID]; !ok {
		return fmt.Errorf("tag entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	ids, ok := s.tags[name]
	if !ok {
		ids = make(map[int64]struct{})
		s.tags[name] = ids
	}
	if _, dup := ids[e.ID]; dup {
		return fmt.Errorf("tag %q: %w", name, entry.ErrEntryAlreadyTagged)
	}
	ids[e.ID] = struct{}{}
	return nil
}

// RemoveTag drops a tag association.
func (s *Store) RemoveTag(ctx context.Context, e *entry.Entry, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, ok := s.tags[name]
	if !ok {
		return fmt.Errorf("tag %q: %w", name, entry.ErrNoSuchTag)
	}
	if _, ok := ids[e.ID]; !ok {
		return fmt.Errorf("tag %q: %w", name, entry.ErrNoSuchTag)
	}
	delete(ids, e.ID)
	if len(ids) == 0 {
		delete(s.tags, name)
	}
	return nil
}

// TagsOf returns the entry's tag names, sorted.
func (s *Store) TagsOf(ctx context.Context, e *entry.Entry) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.entries[e.ID]; !ok {
		return nil, fmt.Errorf("tags of entry %d: %w", e.ID, entry.ErrNoSuchEntry)
	}
	var names []string
	for name, ids := range s.tags {
		if _, ok := ids[e.ID]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// TagNames returns every tag name with at least one association, sorted.
func (s *Store) TagNames(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.tags))
	for name := range s.tags {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// collect gathers copies of matching entries in ascending id order.
// Callers must hold at least the read lock.
func (s *Store) collect(match func(*entry.Entry) bool) []*entry.Entry {
	ids := make([]int64, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var out []*entry.Entry
	for _, id := range ids {
		if e := s.entries[id]; match(e) {
			cp := *e
			out = append(out, &cp)
		}
	}
	return out
}

// snapshot is the serialized form of the store.
type snapshot struct {
	NextID  int64                  `json:"next_id"`
	Entries map[int64]*entry.Entry `json:"entries"`
	Tags    map[string][]int64     `json:"tags"`
}

// Snapshot writes the entire store to w.
func (s *Store) Snapshot(w io.Writer) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := snapshot{
		NextID:  s.nextID,
		Entries: s.entries,
		Tags:    make(map[string][]int64, len(s.tags)),
	}
	for name, ids := range s.tags {
		list := make([]int64, 0, len(ids))
		for id := range ids {
			list = append(list, id)
		}
		sort.Slice(list, func(i, j int) bool { return list[i] < list[j] })
		snap.Tags[name] = list
	}
	return json.NewEncoder(w).Encode(snap)
}

// Restore reads the store from r, replacing its contents.
func (s *Store) Restore(r io.Reader) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var snap snapshot
	if err := json.NewDecoder(r).Decode(&snap); err != nil {
		return err
	}
	s.nextID = snap.NextID
	s.entries = snap.Entries
	if s.entries == nil {
		s.entries = make(map[int64]*entry.Entry)
	}
	s.tags = make(map[string]map[int64]struct{}, len(snap.Tags))
	for name, list := range snap.Tags {
		ids := make(map[int64]struct{}, len(list))
		for _, id := range list {
			ids[id] = struct{}{}
		}
		s.tags[name] = ids
	}
	return nil
}
