// pkg/nbset/node.go
package nbset

import (
	"math"
	"sync/atomic"
)

// Keys at the boundary of the int64 range are reserved for the two
// permanent sentinel leaves. Add, Remove and Contains treat them as
// never present.
const (
	negInf = math.MinInt64
	posInf = math.MaxInt64
)

// updateTag is the 2-bit state carried by an update descriptor.
// It tells observers whether a structural modification is in flight
// at a node and, if so, which phase it is in.
type updateTag uint8

const (
	// clean means no modification is pending at the node.
	clean updateTag = iota
	// dflag means a delete has been planned at the grandparent.
	dflag
	// iflag means an insert is pending at the parent.
	iflag
	// mark means a delete has been committed at the parent; the
	// parent is permanently frozen and about to be spliced out.
	mark
)

func (s updateTag) String() string {
	switch s {
	case clean:
		return "CLEAN"
	case dflag:
		return "DFLAG"
	case iflag:
		return "IFLAG"
	case mark:
		return "MARK"
	}
	return "UNKNOWN"
}

// update is the Go rendition of a tagged update pointer: an immutable
// descriptor pairing a state tag with the operation record it refers
// to. A node's update slot holds one of these behind an
// atomic.Pointer, and every protocol transition installs a freshly
// allocated descriptor. Because descriptors are never reused, pointer
// identity implies value identity and the CAS-based state machine is
// immune to ABA.
type update struct {
	tag  updateTag
	info *opInfo
}

// opInfo describes one in-flight structural modification. Which
// fields are populated depends on the kind: an insert fills p,
// newInternal and l; a delete fills gp, p, l and pupdate. Fields are
// written once, before the descriptor referencing the record is
// published.
type opInfo struct {
	gp          *node
	p           *node
	newInternal *node
	l           *node

	// pupdate is the descriptor observed on p when the delete was
	// planned. The commit CAS uses it as the expected value, so a
	// concurrent change to p is detected as a CAS failure.
	pupdate *update
}

// node is a single tree vertex. All user keys live in leaves;
// internal nodes exist only to route searches. For an internal node
// every key in the left subtree is below the node's key and every key
// in the right subtree is at or above it. left and right are
// non-nil exactly when internal is true. Shared fields are mutated
// only through CAS after the node is published.
type node struct {
	internal bool
	key      int64

	update  atomic.Pointer[update]
	left    atomic.Pointer[node]
	right   atomic.Pointer[node]
	version atomic.Pointer[version]
}

// newLeaf returns a fresh leaf carrying key with a version summing to
// one live key.
func newLeaf(key int64) *node {
	n := &node{key: key}
	n.update.Store(&update{tag: clean})
	n.version.Store(&version{key: key, sum: 1})
	return n
}

// newLeafWithSum returns a fresh leaf whose version carries an
// explicit sum. Used when copying an existing leaf so its summary
// contribution is preserved, and for the zero-sum sentinels.
func newLeafWithSum(key, sum int64) *node {
	n := &node{key: key}
	n.update.Store(&update{tag: clean})
	n.version.Store(&version{key: key, sum: sum})
	return n
}

// newInternal returns a fresh internal routing node. Children and the
// version summary are filled in by the caller before the node is
// linked into the tree.
func newInternal(key int64) *node {
	n := &node{internal: true, key: key}
	n.update.Store(&update{tag: clean})
	return n
}
