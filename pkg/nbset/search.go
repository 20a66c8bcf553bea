// pkg/nbset/search.go
package nbset

// searchResult is the window a mutator needs to plan an operation:
// the leaf reached, its parent and grandparent, and the update
// descriptors captured on each while descending. The captured
// descriptors are snapshots; the publishing CAS re-validates them.
type searchResult struct {
	gp *node
	p  *node
	l  *node

	pupdate  *update
	gpupdate *update
}

// search walks from the root to the leaf for key, sliding the
// (gp, p) window as it goes. The update snapshot of each node is
// captured after the window slides onto it and before its children
// are read, so the snapshot corresponds to a pre-image consistent
// with the observed descent.
//
// search is wait-free: it performs no CAS and never retries. The
// returned pointers may already be unlinked by the time the caller
// looks at them; the mutation protocol detects that through the
// captured descriptors.
//
// If path is non-nil, every node visited (root through leaf) is
// appended to it for later version propagation.
func (t *Tree) search(key int64, res *searchResult, path *[]*node) {
	l := t.root
	if path != nil {
		*path = append(*path, l)
	}
	for l.internal {
		res.gp = res.p
		res.gpupdate = res.pupdate
		res.p = l
		res.pupdate = l.update.Load()

		if key < l.key {
			l = l.left.Load()
		} else {
			l = l.right.Load()
		}
		if path != nil {
			*path = append(*path, l)
		}
	}
	res.l = l
}
