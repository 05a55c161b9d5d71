// Package entry defines the catalog's data model and the contracts its
// storage backends implement.
package entry

import "time"

// Entry is a single catalogued record. ID is zero until the entry has been
// persisted; the backing store assigns identities monotonically starting at 1.
type Entry struct {
	ID      int64 `json:"id"`
	Starred bool  `json:"starred"`

	// Archive attributes. The catalog core never inspects these beyond
	// carrying them through storage.
	Source       string    `json:"source"`
	Provider     string    `json:"provider"`
	FileID       string    `json:"file_id"`
	Instrument   string    `json:"instrument"`
	Path         string    `json:"path"`
	Size         int64     `json:"size"`
	ObservedAt   time.Time `json:"observed_at"`
	DownloadedAt time.Time `json:"downloaded_at"`
}

// Persisted reports whether the entry has been committed to a store.
func (e *Entry) Persisted() bool {
	return e.ID != 0
}
