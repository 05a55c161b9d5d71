package entry

import "time"

// Column names shared by the stores. Change constructors are the only
// producers, so stores may splice Column() into statements directly.
const (
	ColID           = "id"
	ColStarred      = "starred"
	ColSource       = "source"
	ColProvider     = "provider"
	ColFileID       = "file_id"
	ColInstrument   = "instrument"
	ColPath         = "path"
	ColSize         = "size"
	ColObservedAt   = "observed_at"
	ColDownloadedAt = "downloaded_at"
)

// Change is a single typed field mutation, consumed by Store.Update and
// applied to the in-memory struct once the store accepts it.
type Change struct {
	column string
	value  any
}

// Column returns the storage column the change targets.
func (c Change) Column() string { return c.column }

// Value returns the new value for the column.
func (c Change) Value() any { return c.value }

// Apply writes the change into the struct.
func (c Change) Apply(e *Entry) {
	switch c.column {
	case ColID:
		e.ID = c.value.(int64)
	case ColStarred:
		e.Starred = c.value.(bool)
	case ColSource:
		e.Source = c.value.(string)
	case ColProvider:
		e.Provider = c.value.(string)
	case ColFileID:
		e.FileID = c.value.(string)
	case ColInstrument:
		e.Instrument = c.value.(string)
	case ColPath:
		e.Path = c.value.(string)
	case ColSize:
		e.Size = c.value.(int64)
	case ColObservedAt:
		e.ObservedAt = c.value.(time.Time)
	case ColDownloadedAt:
		e.DownloadedAt = c.value.(time.Time)
	}
}

// SetIdentity reassigns the entry's identity. Edit is generic attribute
// mutation, so this is allowed; the catalog re-keys its tracking when it
// sees the identity move.
func SetIdentity(id int64) Change { return Change{column: ColID, value: id} }

func SetStarred(v bool) Change          { return Change{column: ColStarred, value: v} }
func SetSource(v string) Change         { return Change{column: ColSource, value: v} }
func SetProvider(v string) Change       { return Change{column: ColProvider, value: v} }
func SetFileID(v string) Change         { return Change{column: ColFileID, value: v} }
func SetInstrument(v string) Change     { return Change{column: ColInstrument, value: v} }
func SetPath(v string) Change           { return Change{column: ColPath, value: v} }
func SetSize(v int64) Change            { return Change{column: ColSize, value: v} }
func SetObservedAt(t time.Time) Change  { return Change{column: ColObservedAt, value: t} }
func SetDownloadedAt(t time.Time) Change { return Change{column: ColDownloadedAt, value: t} }
