// pkg/nbset/version.go
package nbset

import "sync/atomic"

// version is an immutable snapshot of a subtree summary: the node's
// key at snapshot time, the child versions it was built from, and the
// number of live keys under it. Versions are never mutated after they
// are linked; each refresh installs a fresh record. The records form
// a DAG mirroring the tree, so a child version may be shared by
// several parents; reclamation of version records is left to the
// garbage collector.
type version struct {
	key int64
	l   *version
	r   *version
	sum int64
}

// refresh attempts to install a new version for internal node x,
// built from a consistent snapshot of both child versions. Each child
// pointer is read twice around the version read; if the pointer moved
// in between, the pair is discarded and re-read. Returns whether the
// installing CAS succeeded.
func (t *Tree) refresh(x *node) bool {
	old := x.version.Load()

	var vr, vl *version
	for {
		xr := x.right.Load()
		vr = xr.version.Load()
		if x.right.Load() == xr {
			break
		}
	}
	for {
		xl := x.left.Load()
		vl = xl.version.Load()
		if x.left.Load() == xl {
			break
		}
	}

	nv := &version{key: x.key, l: vl, r: vr, sum: vl.sum + vr.sum}
	atomic.AddInt64(&t.stats.RefreshCount, 1)
	return x.version.CompareAndSwap(old, nv)
}

// propagate refreshes the summaries along the descent path recorded
// by search, from the leaf's parent up to the root. A failed refresh
// is retried exactly once: the second attempt (or the competing
// refresh that caused the failure) reads child versions written after
// this operation's change, so the contribution is never lost while
// progress stays obstruction-free.
func (t *Tree) propagate(path []*node) {
	for i := len(path) - 2; i >= 0; i-- {
		x := path[i]
		if !t.refresh(x) {
			t.refresh(x)
		}
	}
}
