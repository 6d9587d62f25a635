// Package history tracks recently viewed entities as a de-duplicated,
// recency-ordered sequence.
//
// The sequence is a doubly linked list whose nodes live in an arena slice and
// link to each other by integer handle. An index from entity id to handle
// makes Record and Forget O(1). Freed slots are reused.
package history

import "github.com/mesh-intelligence/tracker/pkg/types"

// nilHandle marks the absence of a neighbor or an empty end of the list.
const nilHandle = -1

type node struct {
	entity types.Entity
	prev   int
	next   int
}

// Tracker holds the view history. The zero value is not usable; call New.
// Tracker is not safe for concurrent use.
type Tracker struct {
	nodes []node
	free  []int
	index map[int]int // entity id -> handle
	head  int
	tail  int
}

// New returns an empty Tracker.
func New() *Tracker {
	return &Tracker{
		index: make(map[int]int),
		head:  nilHandle,
		tail:  nilHandle,
	}
}

// Record marks entity as the most recently viewed. An existing entry for the
// same id is unlinked first, so each id appears at most once. A nil entity is
// ignored.
func (t *Tracker) Record(entity types.Entity) {
	if entity == nil {
		return
	}
	t.Forget(entity.Base().ID)
	t.linkLast(entity)
}

// Append links entity at the tail without promotion semantics. It is used to
// replay a persisted sequence that is already unique. It reports false and
// leaves the tracker unchanged when the id is already present.
func (t *Tracker) Append(entity types.Entity) bool {
	if entity == nil {
		return false
	}
	if _, ok := t.index[entity.Base().ID]; ok {
		return false
	}
	t.linkLast(entity)
	return true
}

// Forget removes the entry for id. No-op if absent.
func (t *Tracker) Forget(id int) {
	h, ok := t.index[id]
	if !ok {
		return
	}
	t.unlink(h)
	delete(t.index, id)
}

// Snapshot returns the entities oldest first. The returned slice is owned by
// the caller; the entities are the tracked references.
func (t *Tracker) Snapshot() []types.Entity {
	out := make([]types.Entity, 0, len(t.index))
	for h := t.head; h != nilHandle; h = t.nodes[h].next {
		out = append(out, t.nodes[h].entity)
	}
	return out
}

// IDs returns the tracked ids oldest first.
func (t *Tracker) IDs() []int {
	out := make([]int, 0, len(t.index))
	for h := t.head; h != nilHandle; h = t.nodes[h].next {
		out = append(out, t.nodes[h].entity.Base().ID)
	}
	return out
}

func (t *Tracker) linkLast(entity types.Entity) {
	h := t.alloc(node{entity: entity, prev: t.tail, next: nilHandle})
	if t.tail == nilHandle {
		t.head = h
	} else {
		t.nodes[t.tail].next = h
	}
	t.tail = h
	t.index[entity.Base().ID] = h
}

func (t *Tracker) unlink(h int) {
	n := t.nodes[h]
	if n.prev != nilHandle {
		t.nodes[n.prev].next = n.next
	} else {
		t.head = n.next
	}
	if n.next != nilHandle {
		t.nodes[n.next].prev = n.prev
	} else {
		t.tail = n.prev
	}
	t.nodes[h] = node{prev: nilHandle, next: nilHandle}
	t.free = append(t.free, h)
}

func (t *Tracker) alloc(n node) int {
	if k := len(t.free); k > 0 {
		h := t.free[k-1]
		t.free = t.free[:k-1]
		t.nodes[h] = n
		return h
	}
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}
