// pkg/nbset/nbset.go
//
// Package nbset implements a non-blocking, leaf-oriented binary
// search tree set over int64 keys. Membership queries, insertions and
// removals may run concurrently from any number of goroutines without
// locks: every structural change is published as a single CAS on a
// tagged update descriptor, and threads that observe an in-flight
// change cooperatively complete it before proceeding.
//
// Each internal node additionally carries an immutable version record
// summarizing the number of live keys in its subtree. The summaries
// are propagated upward lazily after every insert and remove, so the total
// cardinality is observable without blocking; it is eventually
// consistent with the set contents and exact at quiescence.
//
// The tree is unbalanced; its depth depends on insertion order. There
// is no iteration, no range query and no rebalancing.
//
// Design principles:
//   - Reads are wait-free: a search performs no CAS and never retries
//   - Writes publish intent with one CAS, then complete themselves
//   - A failed CAS is a signal, not an error: help the winner, retry
//   - Unlinked nodes are retired through epoch-based reclamation
package nbset

import "sync/atomic"

// Tree is a concurrent set of int64 keys. The zero value is not
// usable; construct with New.
type Tree struct {
	// root is a permanent internal node with key +inf bounding the
	// keyspace together with the two sentinel leaves. It is never
	// replaced, so the field needs no atomics.
	root *node

	// epoch manages retirement of unlinked nodes.
	epoch *EpochManager

	// stats tracks operation counters atomically.
	stats TreeStats
}

// TreeStats holds cumulative operation counters.
type TreeStats struct {
	ContainsCount int64 // membership queries
	AddCount      int64 // insert attempts (not retries)
	RemoveCount   int64 // remove attempts (not retries)
	HelpCount     int64 // completions of other operations
	RetryCount    int64 // restarted insert/remove rounds
	RefreshCount  int64 // version refresh attempts
}

// New creates an empty tree: the permanent root with the two sentinel
// leaves as children. The sentinels carry zero-sum versions so they
// stay invisible to cardinality queries.
func New() *Tree {
	left := newLeafWithSum(negInf, 0)
	right := newLeafWithSum(posInf, 0)

	root := newInternal(posInf)
	root.left.Store(left)
	root.right.Store(right)
	root.version.Store(&version{
		key: posInf,
		l:   left.version.Load(),
		r:   right.version.Load(),
		sum: 0,
	})

	return &Tree{
		root:  root,
		epoch: NewEpochManager(),
	}
}

// Contains reports whether key is in the set. It is linearized at the
// moment the search reads the leaf's key. Boundary keys are reserved
// for the sentinels and are never present.
func (t *Tree) Contains(key int64) bool {
	atomic.AddInt64(&t.stats.ContainsCount, 1)
	if key == negInf || key == posInf {
		return false
	}

	guard := t.epoch.Enter()
	defer guard.Leave()

	var res searchResult
	t.search(key, &res, nil)
	return res.l.key == key
}

// Add inserts key into the set. Returns true if the key was newly
// inserted, false if it was already present. The operation is
// linearized at the CAS that publishes the insert on the parent.
func (t *Tree) Add(key int64) bool {
	atomic.AddInt64(&t.stats.AddCount, 1)
	if key == negInf || key == posInf {
		return false
	}

	guard := t.epoch.Enter()
	defer guard.Leave()

	newNode := newLeaf(key)
	path := make([]*node, 0, 16)

	for {
		path = path[:0]
		var res searchResult
		t.search(key, &res, &path)

		if res.l.key == key {
			t.propagate(path)
			return false
		}
		if res.pupdate.tag != clean {
			t.help(res.pupdate)
			atomic.AddInt64(&t.stats.RetryCount, 1)
			continue
		}

		// Build the replacement subtree: a fresh internal node over
		// the new leaf and a copy of the old one, smaller key on the
		// left. The copy inherits the old leaf's summary so sentinel
		// leaves keep contributing zero.
		sibling := newLeafWithSum(res.l.key, res.l.version.Load().sum)
		newInt := newInternal(max64(key, res.l.key))
		var lc, rc *node
		if newNode.key <= sibling.key {
			lc, rc = newNode, sibling
		} else {
			lc, rc = sibling, newNode
		}
		newInt.left.Store(lc)
		newInt.right.Store(rc)
		lv, rv := lc.version.Load(), rc.version.Load()
		newInt.version.Store(&version{
			key: newInt.key,
			l:   lv,
			r:   rv,
			sum: lv.sum + rv.sum,
		})

		op := &opInfo{p: res.p, newInternal: newInt, l: res.l}
		if res.p.update.CompareAndSwap(res.pupdate, &update{tag: iflag, info: op}) {
			t.helpInsert(op)
			t.propagate(path)
			return true
		}
		t.help(res.p.update.Load())
		atomic.AddInt64(&t.stats.RetryCount, 1)
	}
}

// Remove deletes key from the set. Returns true if the key was
// present. The operation is linearized at the CAS that marks the
// parent inside helpDelete.
func (t *Tree) Remove(key int64) bool {
	atomic.AddInt64(&t.stats.RemoveCount, 1)
	if key == negInf || key == posInf {
		return false
	}

	guard := t.epoch.Enter()
	defer guard.Leave()

	path := make([]*node, 0, 16)

	for {
		path = path[:0]
		var res searchResult
		t.search(key, &res, &path)

		if res.l.key != key {
			t.propagate(path)
			return false
		}
		if res.gp == nil {
			// A leaf directly under the root is a sentinel; user
			// leaves always sit at depth two or more.
			t.propagate(path)
			return false
		}
		if res.gpupdate.tag != clean {
			t.help(res.gpupdate)
			atomic.AddInt64(&t.stats.RetryCount, 1)
			continue
		}
		if res.pupdate.tag != clean {
			t.help(res.pupdate)
			atomic.AddInt64(&t.stats.RetryCount, 1)
			continue
		}

		op := &opInfo{gp: res.gp, p: res.p, l: res.l, pupdate: res.pupdate}
		if res.gp.update.CompareAndSwap(res.gpupdate, &update{tag: dflag, info: op}) {
			if t.helpDelete(op) {
				t.propagate(path)
				return true
			}
		} else {
			t.help(res.gp.update.Load())
		}
		atomic.AddInt64(&t.stats.RetryCount, 1)
	}
}

// Size returns the eventually consistent cardinality of the set: the
// live-key sum of some recent version of the root. It converges to
// the exact count once concurrent operations quiesce.
func (t *Tree) Size() int64 {
	v := t.root.version.Load()
	if v == nil {
		return 0
	}
	return v.sum
}

// Stats returns a snapshot of the operation counters.
func (t *Tree) Stats() TreeStats {
	return TreeStats{
		ContainsCount: atomic.LoadInt64(&t.stats.ContainsCount),
		AddCount:      atomic.LoadInt64(&t.stats.AddCount),
		RemoveCount:   atomic.LoadInt64(&t.stats.RemoveCount),
		HelpCount:     atomic.LoadInt64(&t.stats.HelpCount),
		RetryCount:    atomic.LoadInt64(&t.stats.RetryCount),
		RefreshCount:  atomic.LoadInt64(&t.stats.RefreshCount),
	}
}

// Reclamation returns the epoch manager so callers can inspect or
// drive reclamation of retired nodes.
func (t *Tree) Reclamation() *EpochManager {
	return t.epoch
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
