// pkg/nbset/help.go
package nbset

import "sync/atomic"

// help completes the modification described by an observed update
// descriptor. Any thread that finds a non-clean descriptor in its way
// finishes that operation before retrying its own, so a stalled
// mutator can never block others. Every helper is idempotent: racing
// helpers produce the same net structure as a single execution.
func (t *Tree) help(u *update) {
	if u == nil || u.tag == clean {
		return
	}
	atomic.AddInt64(&t.stats.HelpCount, 1)
	switch u.tag {
	case iflag:
		t.helpInsert(u.info)
	case mark:
		t.helpMarked(u.info)
	case dflag:
		t.helpDelete(u.info)
	}
}

// helpInsert finishes a published insert: swing the parent's child
// pointer from the old leaf to the new subtree, then return the
// parent to clean. At most one of the racing child CASes succeeds;
// the winner retires the unlinked leaf.
func (t *Tree) helpInsert(op *opInfo) {
	if t.casChild(op.p, op.l, op.newInternal) {
		t.epoch.Retire(op.l)
	}
	if cur := op.p.update.Load(); cur.tag == iflag && cur.info == op {
		op.p.update.CompareAndSwap(cur, &update{tag: clean, info: op})
	}
}

// helpDelete tries to commit a planned delete by marking the parent.
// Success, or finding the parent already marked for this operation,
// means the delete will complete; either way the splice is carried
// out by helpMarked. If a conflicting operation holds the parent, it
// is helped instead, the delete flag on the grandparent is retreated
// to clean so the planner can retry, and false is returned.
func (t *Tree) helpDelete(op *opInfo) bool {
	if op.p.update.CompareAndSwap(op.pupdate, &update{tag: mark, info: op}) {
		t.helpMarked(op)
		return true
	}
	cur := op.p.update.Load()
	if cur.tag == mark && cur.info == op {
		// Another helper marked the parent for us.
		t.helpMarked(op)
		return true
	}
	t.help(cur)
	if cur := op.gp.update.Load(); cur.tag == dflag && cur.info == op {
		op.gp.update.CompareAndSwap(cur, &update{tag: clean, info: op})
	}
	return false
}

// helpMarked splices the marked parent out by replacing it with the
// sibling of the deleted leaf, then returns the grandparent to clean.
// The winner of the child CAS retires the two unlinked nodes.
func (t *Tree) helpMarked(op *opInfo) {
	var other *node
	if op.p.right.Load() == op.l {
		other = op.p.left.Load()
	} else {
		other = op.p.right.Load()
	}
	if t.casChild(op.gp, op.p, other) {
		t.epoch.Retire(op.p)
		t.epoch.Retire(op.l)
	}
	if cur := op.gp.update.Load(); cur.tag == dflag && cur.info == op {
		op.gp.update.CompareAndSwap(cur, &update{tag: clean, info: op})
	}
}

// casChild swings one child pointer of parent from old to n, choosing
// the side by comparing keys the same way search descends. Failure is
// silent: a concurrent helper already performed the swap.
func (t *Tree) casChild(parent, old, n *node) bool {
	if n.key < parent.key {
		return parent.left.CompareAndSwap(old, n)
	}
	return parent.right.CompareAndSwap(old, n)
}
