// Package feed implements the optimistic list synchronization pattern
// shared by the chat and notification screens: a server-owned list that is
// fully replaced on every reconciling fetch, with locally constructed
// entries appended optimistically after a successful submit.
//
// Reconciliation is a wholesale replace, never a merge. An optimistic
// entry the server has not caught up with yet disappears on the next
// reconcile; that inconsistency window is part of the contract. When two
// fetches overlap, the later Reconcile wins regardless of dispatch order
// (last-write-wins); the revision counter lets callers detect supersession
// but no ordering is imposed.
package feed

import (
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Entry is an element of a synchronized list.
type Entry interface {
	EntryID() string
}

// Reason classifies a feed change for subscribers.
type Reason int

const (
	// ReasonReconcile is a full replace from server state.
	ReasonReconcile Reason = iota
	// ReasonAppend is an optimistic local append.
	ReasonAppend
)

// Change notifies a subscriber that the feed's contents moved.
type Change struct {
	Revision uint64
	Reason   Reason
}

// Feed holds an ordered sequence of entries, oldest first.
type Feed[T Entry] struct {
	mu       sync.Mutex
	entries  []T
	revision uint64
	subs     map[int]chan Change
	nextSub  int
}

// New creates an empty feed.
func New[T Entry]() *Feed[T] {
	return &Feed[T]{subs: make(map[int]chan Change)}
}

// Reconcile replaces the entire list with server state. Optimistic entries
// not present in the server list are discarded.
func (f *Feed[T]) Reconcile(entries []T) {
	f.mu.Lock()
	f.entries = append([]T(nil), entries...)
	f.revision++
	change := Change{Revision: f.revision, Reason: ReasonReconcile}
	f.mu.Unlock()

	f.publish(change)
}

// Append inserts an optimistic entry at the tail, ahead of server
// confirmation. Called only after the submit succeeded.
func (f *Feed[T]) Append(entry T) {
	f.mu.Lock()
	f.entries = append(f.entries, entry)
	f.revision++
	change := Change{Revision: f.revision, Reason: ReasonAppend}
	f.mu.Unlock()

	f.publish(change)
}

// Entries returns a snapshot copy of the list, oldest first.
func (f *Feed[T]) Entries() []T {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]T(nil), f.entries...)
}

// Len returns the current number of entries.
func (f *Feed[T]) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}

// Revision returns the current change counter. It increases on every
// Reconcile and Append.
func (f *Feed[T]) Revision() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.revision
}

// Subscribe returns a channel that receives a Change whenever the feed
// moves, and a function to unsubscribe. Delivery is best-effort: a slow
// subscriber misses intermediate changes rather than blocking the feed.
// The view-side auto-scroll hangs off this.
func (f *Feed[T]) Subscribe() (<-chan Change, func()) {
	f.mu.Lock()
	defer f.mu.Unlock()

	id := f.nextSub
	f.nextSub++
	ch := make(chan Change, 1)
	f.subs[id] = ch

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if c, ok := f.subs[id]; ok {
			delete(f.subs, id)
			close(c)
		}
	}
	return ch, unsubscribe
}

func (f *Feed[T]) publish(change Change) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ch := range f.subs {
		select {
		case ch <- change:
		default:
		}
	}
}

var entropy = struct {
	sync.Mutex
	r *ulid.MonotonicEntropy
}{r: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)}

// NewLocalID generates a locally unique, timestamp-ordered identifier for
// an optimistic entry. The entry keeps this ID only until the next
// reconcile replaces it with server truth.
func NewLocalID() string {
	entropy.Lock()
	defer entropy.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy.r).String()
}
