package entry

import "context"

// Store is the persistent backend contract the catalog composes over.
//
// Insert assigns the entry's identity immediately; staging of uncommitted
// entries is owned by the catalog, not the store. Identities are unique and
// monotonically increasing per store instance, never reused after deletes.
//
// Multi-row results are returned in insertion order, which by the identity
// rule is ascending id order.
type Store interface {
	// CreateSchema initializes the backing schema. Whether a second call
	// is an error or a no-op is store-owned.
	CreateSchema(ctx context.Context) error

	// Insert persists a new entry and writes the assigned identity back
	// into e.ID.
	Insert(ctx context.Context, e *Entry) error

	// Update mutates the listed columns of a persisted entry. Returns
	// ErrNoSuchEntry when e cannot be resolved.
	Update(ctx context.Context, e *Entry, changes ...Change) error

	// Delete removes a persisted entry and cascades its tag associations.
	// Returns ErrNoSuchEntry when e is not present.
	Delete(ctx context.Context, e *Entry) error

	// SelectByID resolves an identity to its entry, ErrNoSuchEntry on miss.
	SelectByID(ctx context.Context, id int64) (*Entry, error)

	// SelectAll returns every entry in insertion order.
	SelectAll(ctx context.Context) ([]*Entry, error)

	// Select returns the entries matching f, in insertion order.
	Select(ctx context.Context, f Filter) ([]*Entry, error)

	// Count returns the number of persisted entries.
	Count(ctx context.Context) (int, error)

	// AddTag associates a tag name with a persisted entry, creating the
	// tag on first use. ErrEntryAlreadyTagged on a duplicate association,
	// ErrNoSuchEntry when the entry is not persisted.
	AddTag(ctx context.Context, e *Entry, name string) error

	// RemoveTag drops a tag association. ErrNoSuchTag when the
	// association does not exist.
	RemoveTag(ctx context.Context, e *Entry, name string) error

	// TagsOf returns the entry's tag names, sorted.
	TagsOf(ctx context.Context, e *Entry) ([]string, error)

	// TagNames returns every tag name currently associated with at least
	// one entry, sorted.
	TagNames(ctx context.Context) ([]string, error)

	Close() error
}
