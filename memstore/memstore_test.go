package memstore

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"entry-catalog/entry"
)

func TestInsert_MonotonicIdentities(t *testing.T) {
	s := New()
	ctx := context.Background()

	e1 := &entry.Entry{Source: "SDO"}
	e2 := &entry.Entry{Source: "SOHO"}
	require.NoError(t, s.Insert(ctx, e1))
	require.NoError(t, s.Insert(ctx, e2))
	assert.Equal(t, int64(1), e1.ID)
	assert.Equal(t, int64(2), e2.ID)

	// Identities are never reused, even after a delete
	require.NoError(t, s.Delete(ctx, e2))
	e3 := &entry.Entry{Source: "STEREO_A"}
	require.NoError(t, s.Insert(ctx, e3))
	assert.Equal(t, int64(3), e3.ID)
}

func TestSelect_CopiesNotAliases(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := &entry.Entry{Source: "SDO"}
	require.NoError(t, s.Insert(ctx, e))

	// Mutating the caller's struct must not leak into the store
	e.Source = "mutated"
	got, err := s.SelectByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "SDO", got.Source)
}

func TestUpdate(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := &entry.Entry{Source: "SDO", Instrument: "AIA"}
	require.NoError(t, s.Insert(ctx, e))

	require.NoError(t, s.Update(ctx, e, entry.SetInstrument("HMI")))
	got, err := s.SelectByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, "HMI", got.Instrument)

	err = s.Update(ctx, &entry.Entry{ID: 99}, entry.SetStarred(true))
	assert.ErrorIs(t, err, entry.ErrNoSuchEntry)
}

func TestUpdate_IdentityReassignment(t *testing.T) {
	s := New()
	ctx := context.Background()

	e1 := &entry.Entry{Source: "SDO"}
	e2 := &entry.Entry{Source: "SOHO"}
	require.NoError(t, s.Insert(ctx, e1))
	require.NoError(t, s.Insert(ctx, e2))
	require.NoError(t, s.AddTag(ctx, e1, "euv"))

	// Reassigning to a taken identity fails
	err := s.Update(ctx, e1, entry.SetIdentity(e2.ID))
	assert.Error(t, err)

	// A free identity re-keys the entry and its tag associations
	require.NoError(t, s.Update(ctx, e1, entry.SetIdentity(10)))
	got, err := s.SelectByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "SDO", got.Source)
	names, err := s.TagsOf(ctx, &entry.Entry{ID: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"euv"}, names)

	// Later inserts stay monotonic past the reassignment
	e3 := &entry.Entry{Source: "STEREO_A"}
	require.NoError(t, s.Insert(ctx, e3))
	assert.Equal(t, int64(11), e3.ID)
}

func TestDelete_CascadesTags(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := &entry.Entry{Source: "SDO"}
	require.NoError(t, s.Insert(ctx, e))
	require.NoError(t, s.AddTag(ctx, e, "euv"))

	require.NoError(t, s.Delete(ctx, e))
	names, err := s.TagNames(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	err = s.Delete(ctx, e)
	assert.ErrorIs(t, err, entry.ErrNoSuchEntry)
}

func TestSelect_FilterWithTag(t *testing.T) {
	s := New()
	ctx := context.Background()

	e1 := &entry.Entry{Source: "SDO", Instrument: "AIA"}
	e2 := &entry.Entry{Source: "SDO", Instrument: "HMI"}
	require.NoError(t, s.Insert(ctx, e1))
	require.NoError(t, s.Insert(ctx, e2))
	require.NoError(t, s.AddTag(ctx, e1, "euv"))

	got, err := s.Select(ctx, entry.Filter{Source: "SDO", Tag: "euv"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, e1.ID, got[0].ID)
}

func TestTags_Errors(t *testing.T) {
	s := New()
	ctx := context.Background()

	e := &entry.Entry{Source: "SDO"}
	require.NoError(t, s.Insert(ctx, e))
	require.NoError(t, s.AddTag(ctx, e, "euv"))

	err := s.AddTag(ctx, e, "euv")
	assert.ErrorIs(t, err, entry.ErrEntryAlreadyTagged)

	err = s.AddTag(ctx, &entry.Entry{ID: 99}, "euv")
	assert.ErrorIs(t, err, entry.ErrNoSuchEntry)

	err = s.RemoveTag(ctx, e, "nonexistent")
	assert.ErrorIs(t, err, entry.ErrNoSuchTag)
}

func TestSnapshotRestore(t *testing.T) {
	s := New()
	ctx := context.Background()

	e1 := &entry.Entry{Source: "SDO", Starred: true}
	e2 := &entry.Entry{Source: "SOHO"}
	require.NoError(t, s.Insert(ctx, e1))
	require.NoError(t, s.Insert(ctx, e2))
	require.NoError(t, s.AddTag(ctx, e1, "euv"))
	require.NoError(t, s.Delete(ctx, e2))

	var buf bytes.Buffer
	require.NoError(t, s.Snapshot(&buf))

	restored := New()
	require.NoError(t, restored.Restore(&buf))

	all, err := restored.SelectAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, e1.ID, all[0].ID)
	assert.True(t, all[0].Starred)

	names, err := restored.TagsOf(ctx, e1)
	require.NoError(t, err)
	assert.Equal(t, []string{"euv"}, names)

	// The identity counter survives the round trip
	e3 := &entry.Entry{Source: "STEREO_A"}
	require.NoError(t, restored.Insert(ctx, e3))
	assert.Equal(t, int64(3), e3.ID)
}
