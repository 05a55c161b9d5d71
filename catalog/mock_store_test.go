package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"entry-catalog/catalog/policy"
	"entry-catalog/entry"
)

// MockStore is a mock implementation of entry.Store
type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateSchema(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockStore) Insert(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStore) Update(ctx context.Context, e *entry.Entry, changes ...entry.Change) error {
	args := m.Called(ctx, e, changes)
	return args.Error(0)
}

func (m *MockStore) Delete(ctx context.Context, e *entry.Entry) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockStore) SelectByID(ctx context.Context, id int64) (*entry.Entry, error) {
	args := m.Called(ctx, id)
	if e := args.Get(0); e != nil {
		return e.(*entry.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) SelectAll(ctx context.Context) ([]*entry.Entry, error) {
	args := m.Called(ctx)
	if e := args.Get(0); e != nil {
		return e.([]*entry.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Select(ctx context.Context, f entry.Filter) ([]*entry.Entry, error) {
	args := m.Called(ctx, f)
	if e := args.Get(0); e != nil {
		return e.([]*entry.Entry), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockStore) AddTag(ctx context.Context, e *entry.Entry, name string) error {
	args := m.Called(ctx, e, name)
	return args.Error(0)
}

func (m *MockStore) RemoveTag(ctx context.Context, e *entry.Entry, name string) error {
	args := m.Called(ctx, e, name)
	return args.Error(0)
}

func (m *MockStore) TagsOf(ctx context.Context, e *entry.Entry) ([]string, error) {
	args := m.Called(ctx, e)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) TagNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if names := args.Get(0); names != nil {
		return names.([]string), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// expectInserts makes Insert assign sequential identities like a real store.
func expectInserts(m *MockStore) {
	var nextID int64
	m.On("Insert", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		e := args.Get(1).(*entry.Entry)
		nextID++
		e.ID = nextID
	}).Return(nil)
}

func TestCatalog_EvictionDeleteFailureIsFatal(t *testing.T) {
	mockStore := new(MockStore)
	c, err := New(mockStore, WithPolicy(policy.NewRecency(1)))
	require.NoError(t, err)
	ctx := context.Background()

	expectInserts(mockStore)
	boom := errors.New("disk failure")
	mockStore.On("Delete", mock.Anything, mock.Anything).Return(boom)

	require.NoError(t, c.Add(ctx, &entry.Entry{}))

	// The second add overflows; the eviction delete fails and the error
	// surfaces unchanged, with no compensating rollback
	err = c.Add(ctx, &entry.Entry{})
	assert.ErrorIs(t, err, boom)
	mockStore.AssertExpectations(t)
}

func TestCatalog_InsertFailurePropagates(t *testing.T) {
	mockStore := new(MockStore)
	c, err := New(mockStore)
	require.NoError(t, err)
	ctx := context.Background()

	boom := errors.New("database is locked")
	mockStore.On("Insert", mock.Anything, mock.Anything).Return(boom)

	require.NoError(t, c.Add(ctx, &entry.Entry{}))
	err = c.Commit(ctx)
	assert.ErrorIs(t, err, boom)
	mockStore.AssertExpectations(t)
}

func TestCatalog_EvictionDeletesVictimFromStore(t *testing.T) {
	mockStore := new(MockStore)
	c, err := New(mockStore, WithPolicy(policy.NewRecency(2)))
	require.NoError(t, err)
	ctx := context.Background()

	expectInserts(mockStore)
	mockStore.On("Delete", mock.Anything, mock.MatchedBy(func(e *entry.Entry) bool {
		return e.ID == 1
	})).Return(nil).Once()

	// Three adds against capacity 2: the oldest identity is deleted
	require.NoError(t, c.Add(ctx, &entry.Entry{}))
	require.NoError(t, c.Add(ctx, &entry.Entry{}))
	require.NoError(t, c.Add(ctx, &entry.Entry{}))

	mockStore.AssertExpectations(t)
}
