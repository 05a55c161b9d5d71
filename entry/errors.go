package entry

import "errors"

// Failure kinds raised by catalog and store operations. All of them signal
// caller-precondition violations, never transient faults; callers match them
// with errors.Is.
var (
	// ErrEntryAlreadyAdded is returned by Add when the same entry (by
	// pointer identity) is already tracked by the catalog, pending or
	// persisted.
	ErrEntryAlreadyAdded = errors.New("entry already added")

	// ErrEntryAlreadyStarred is returned by Star when the starred flag is
	// already set.
	ErrEntryAlreadyStarred = errors.New("entry already starred")

	// ErrEntryAlreadyUnstarred is returned by Unstar when the starred flag
	// is already clear.
	ErrEntryAlreadyUnstarred = errors.New("entry already unstarred")

	// ErrNoSuchEntry is returned when the target entry cannot be resolved
	// in the store.
	ErrNoSuchEntry = errors.New("no such entry")

	// ErrEntryAlreadyTagged is returned by Tag when the entry already
	// carries the tag.
	ErrEntryAlreadyTagged = errors.New("entry already tagged")

	// ErrNoSuchTag is returned by Untag when the tag association does not
	// exist.
	ErrNoSuchTag = errors.New("no such tag")
)
