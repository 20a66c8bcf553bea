// pkg/nbset/dump.go
package nbset

import (
	"bytes"
	"fmt"
	"strings"
)

// Dump returns an indented textual rendering of the tree for
// debugging. Each line shows the node kind, its key and its version
// sum; internal node lines also show the tag of the node's update
// descriptor. The picture is only stable
// when no operations run concurrently.
//
// For a tree holding {3, 5} it looks like:
//
//	─── internal key=+inf CLEAN sum=2
//	    ├── internal key=5 CLEAN sum=2
//	    │   ├── internal key=3 CLEAN sum=1
//	    │   │   ├── leaf key=-inf sum=0
//	    │   │   └── leaf key=3 sum=1
//	    │   └── leaf key=5 sum=1
//	    └── leaf key=+inf sum=0
func (t *Tree) Dump() string {
	var buf bytes.Buffer
	dumpNode(&buf, t.root, nil)
	return buf.String()
}

func dumpNode(buf *bytes.Buffer, n *node, ancestors []bool) {
	head := "───"
	if len(ancestors) > 0 {
		var pad strings.Builder
		pad.WriteString("    ")
		for _, more := range ancestors[:len(ancestors)-1] {
			if more {
				pad.WriteString("│   ")
			} else {
				pad.WriteString("    ")
			}
		}
		if ancestors[len(ancestors)-1] {
			head = pad.String() + "├──"
		} else {
			head = pad.String() + "└──"
		}
	}

	if n.internal {
		fmt.Fprintf(buf, "%s internal key=%s %s sum=%d\n",
			head, keyString(n.key), n.update.Load().tag, versionSum(n))
		dumpNode(buf, n.left.Load(), append(ancestors, true))
		dumpNode(buf, n.right.Load(), append(ancestors, false))
		return
	}
	fmt.Fprintf(buf, "%s leaf key=%s sum=%d\n", head, keyString(n.key), versionSum(n))
}

func versionSum(n *node) int64 {
	if v := n.version.Load(); v != nil {
		return v.sum
	}
	return 0
}

func keyString(key int64) string {
	switch key {
	case negInf:
		return "-inf"
	case posInf:
		return "+inf"
	}
	return fmt.Sprintf("%d", key)
}
