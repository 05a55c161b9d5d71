// Package policy implements the eviction strategies a bounded catalog can
// be constructed with. Policies track entry identities only; resolving an
// identity back to an entry is the catalog's job.
//
// Policies are not safe for concurrent use. The catalog is a single-owner
// structure; callers that share one must serialize access externally.
package policy

// Policy decides which tracked identity to discard when the catalog's
// capacity is exceeded. Implementations allow the catalog to decouple
// capacity management from storage logic.
type Policy interface {
	// RecordInsert is called when a newly persisted identity enters the
	// working set. Insertion counts as a use.
	RecordInsert(id int64)

	// RecordAccess is called when an identity is read through the catalog.
	// Identities the policy does not track are ignored.
	RecordAccess(id int64)

	// Evict returns the next victim identity and removes it from
	// tracking. The second result is false when nothing is tracked.
	Evict() (int64, bool)

	// Forget drops an identity from tracking without eviction semantics,
	// e.g. after an explicit remove. Unknown identities are ignored.
	Forget(id int64)

	// Rekey moves tracking state from one identity to another after an
	// identity edit. Unknown old identities are ignored.
	Rekey(oldID, newID int64)

	// Contains reports whether the identity is tracked.
	Contains(id int64) bool

	// Size returns the number of tracked identities.
	Size() int

	// Capacity returns the fixed bound the policy was constructed with.
	Capacity() int

	// Name identifies the strategy, e.g. for metric labels.
	Name() string
}
