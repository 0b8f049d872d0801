package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEntry struct {
	ID   string
	Body string
}

func (e testEntry) EntryID() string { return e.ID }

func TestReconcileReplacesWholesale(t *testing.T) {
	f := New[testEntry]()
	f.Reconcile([]testEntry{{ID: "1"}, {ID: "2"}})
	assert.Equal(t, 2, f.Len())

	f.Reconcile([]testEntry{{ID: "3"}})
	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "3", entries[0].EntryID())
}

func TestOptimisticAppend(t *testing.T) {
	f := New[testEntry]()
	f.Reconcile([]testEntry{{ID: "1"}, {ID: "2"}})

	f.Append(testEntry{ID: NewLocalID(), Body: "optimistic"})
	entries := f.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "optimistic", entries[2].Body)
}

func TestReconcileDiscardsUnconfirmedOptimistic(t *testing.T) {
	f := New[testEntry]()
	f.Reconcile([]testEntry{{ID: "1"}})
	f.Append(testEntry{ID: NewLocalID(), Body: "pending"})
	require.Equal(t, 2, f.Len())

	// the server has not caught up: the optimistic entry disappears,
	// full-replace semantics, not a bug
	f.Reconcile([]testEntry{{ID: "1"}})
	entries := f.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].EntryID())
}

func TestLastWriteWins(t *testing.T) {
	f := New[testEntry]()

	// a stale fetch resolving after a newer one overwrites it
	newer := []testEntry{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	stale := []testEntry{{ID: "1"}}
	f.Reconcile(newer)
	rev := f.Revision()
	f.Reconcile(stale)

	assert.Equal(t, 1, f.Len())
	assert.Greater(t, f.Revision(), rev)
}

func TestSubscribe(t *testing.T) {
	f := New[testEntry]()
	ch, unsubscribe := f.Subscribe()
	defer unsubscribe()

	f.Reconcile([]testEntry{{ID: "1"}})
	change := <-ch
	assert.Equal(t, ReasonReconcile, change.Reason)
	assert.Equal(t, uint64(1), change.Revision)

	f.Append(testEntry{ID: "local"})
	change = <-ch
	assert.Equal(t, ReasonAppend, change.Reason)
	assert.Equal(t, uint64(2), change.Revision)
}

func TestSubscribeDoesNotBlock(t *testing.T) {
	f := New[testEntry]()
	_, unsubscribe := f.Subscribe()
	defer unsubscribe()

	// a subscriber that never drains must not block the feed
	for i := 0; i < 10; i++ {
		f.Append(testEntry{ID: NewLocalID()})
	}
	assert.Equal(t, 10, f.Len())
}

func TestUnsubscribe(t *testing.T) {
	f := New[testEntry]()
	ch, unsubscribe := f.Subscribe()
	unsubscribe()

	f.Reconcile([]testEntry{{ID: "1"}})
	_, open := <-ch
	assert.False(t, open)
}

func TestNewLocalIDOrdered(t *testing.T) {
	a := NewLocalID()
	b := NewLocalID()
	assert.NotEqual(t, a, b)
	assert.LessOrEqual(t, a, b)
}

func TestComposer(t *testing.T) {
	var c Composer
	c.Set("hello advisor")

	draft := c.Take()
	assert.Equal(t, "hello advisor", draft)
	assert.Empty(t, c.Draft())

	// submit failed: the text goes back so the user can retry
	c.Restore(draft)
	assert.Equal(t, "hello advisor", c.Draft())
}
