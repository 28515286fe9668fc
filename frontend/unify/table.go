// Package unify implements the union-find table backing inference variables.
//
// A Table is owned by a single inference pass and is not safe for concurrent use.
package unify

import (
	"errors"
	"fmt"
)

var ErrBothKnown = errors.New("cannot merge two variables which both have known values")

type cell[K ~uint32, V any] struct {
	parent K
	rank   uint32
	value  V
	known  bool
}

type undoEntry[K ~uint32, V any] struct {
	key K
	old cell[K, V]
	// newKey marks an allocation: undoing it pops the key
	newKey bool
}

// Table is a union-find forest over keys of type K, where every equivalence class
// may have been resolved to a value of type V
type Table[K ~uint32, V any] struct {
	cells []cell[K, V]

	undoLog       []undoEntry[K, V]
	openSnapshots int
}

func NewTable[K ~uint32, V any]() *Table[K, V] {
	return &Table[K, V]{}
}

// Len is the number of keys allocated so far
func (t *Table[K, V]) Len() int {
	return len(t.cells)
}

// NewKey allocates a key in its own class
func (t *Table[K, V]) NewKey(value V, known bool) K {
	key := K(len(t.cells))
	t.cells = append(t.cells, cell[K, V]{parent: key, value: value, known: known})
	if t.openSnapshots > 0 {
		t.undoLog = append(t.undoLog, undoEntry[K, V]{key: key, newKey: true})
	}
	return key
}

func (t *Table[K, V]) cell(key K) *cell[K, V] {
	if int(key) >= len(t.cells) {
		panic(fmt.Sprintf("unify: key %d out of range (table has %d keys)", key, len(t.cells)))
	}
	return &t.cells[key]
}

func (t *Table[K, V]) set(key K, c cell[K, V]) {
	if t.openSnapshots > 0 {
		t.undoLog = append(t.undoLog, undoEntry[K, V]{key: key, old: t.cells[key]})
	}
	t.cells[key] = c
}

// Find returns the representative of key's class.
// Lookups compress the path they walk, which is why Find needs a mutable table.
func (t *Table[K, V]) Find(key K) K {
	parent := t.cell(key).parent
	if parent == key {
		return key
	}
	root := t.Find(parent)
	if root != parent {
		c := t.cells[key]
		c.parent = root
		t.set(key, c)
	}
	return root
}

// ProbeValue returns the value of key's class, if it has been resolved
func (t *Table[K, V]) ProbeValue(key K) (V, bool) {
	c := t.cells[t.Find(key)]
	return c.value, c.known
}

// Union merges the classes of a and b, using rank to keep trees shallow.
//
// If exactly one of the classes is known, the merged class takes its value.
// If both are, the table is left untouched and ErrBothKnown is returned.
func (t *Table[K, V]) Union(a, b K) error {
	rootA, rootB := t.Find(a), t.Find(b)
	if rootA == rootB {
		return nil
	}
	cellA, cellB := t.cells[rootA], t.cells[rootB]
	if cellA.known && cellB.known {
		return ErrBothKnown
	}
	value, known := cellA.value, cellA.known
	if cellB.known {
		value, known = cellB.value, true
	}

	newRoot, redirected := rootA, rootB
	rank := cellA.rank
	switch {
	case cellA.rank < cellB.rank:
		newRoot, redirected = rootB, rootA
		rank = cellB.rank
	case cellA.rank == cellB.rank:
		rank++
	}

	child := t.cells[redirected]
	child.parent = newRoot
	t.set(redirected, child)

	root := t.cells[newRoot]
	root.rank, root.value, root.known = rank, value, known
	t.set(newRoot, root)
	return nil
}

// Assign resolves the class of key to value.
// Assigning to an already resolved class returns ErrBothKnown.
func (t *Table[K, V]) Assign(key K, value V) error {
	root := t.Find(key)
	c := t.cells[root]
	if c.known {
		return ErrBothKnown
	}
	c.value, c.known = value, true
	t.set(root, c)
	return nil
}

// Snapshot marks a point the table can be rolled back to.
// Snapshots nest, and must be either rolled back or committed in LIFO order.
type Snapshot struct {
	undoLen int
	depth   int
}

func (t *Table[K, V]) Snapshot() Snapshot {
	t.openSnapshots++
	return Snapshot{undoLen: len(t.undoLog), depth: t.openSnapshots}
}

func (t *Table[K, V]) assertOpen(s Snapshot) {
	if s.depth != t.openSnapshots || s.undoLen > len(t.undoLog) {
		panic(fmt.Sprintf("unify: snapshot at depth %d used while %d are open", s.depth, t.openSnapshots))
	}
}

// RollbackTo undoes every change made since s was taken, including allocations
func (t *Table[K, V]) RollbackTo(s Snapshot) {
	t.assertOpen(s)
	for i := len(t.undoLog) - 1; i >= s.undoLen; i-- {
		entry := t.undoLog[i]
		if entry.newKey {
			t.cells = t.cells[:entry.key]
			continue
		}
		t.cells[entry.key] = entry.old
	}
	t.undoLog = t.undoLog[:s.undoLen]
	t.closeSnapshot()
}

// Commit keeps the changes made since s was taken
func (t *Table[K, V]) Commit(s Snapshot) {
	t.assertOpen(s)
	if t.openSnapshots == 1 {
		// nothing left that could roll back
		t.undoLog = t.undoLog[:0]
	}
	t.closeSnapshot()
}

func (t *Table[K, V]) closeSnapshot() {
	t.openSnapshots--
}
