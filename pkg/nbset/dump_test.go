// pkg/nbset/dump_test.go
package nbset

import (
	"strings"
	"testing"
)

func TestDumpEmptyTree(t *testing.T) {
	tr := New()

	out := tr.Dump()
	if !strings.Contains(out, "internal key=+inf") {
		t.Errorf("missing root line:\n%s", out)
	}
	if !strings.Contains(out, "leaf key=-inf sum=0") {
		t.Errorf("missing minus sentinel:\n%s", out)
	}
	if !strings.Contains(out, "leaf key=+inf sum=0") {
		t.Errorf("missing plus sentinel:\n%s", out)
	}
}

func TestDumpShowsKeysAndSums(t *testing.T) {
	tr := New()
	tr.Add(5)
	tr.Add(3)

	out := tr.Dump()
	for _, want := range []string{
		"leaf key=3 sum=1",
		"leaf key=5 sum=1",
		"CLEAN",
		"sum=2",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dump missing %q:\n%s", want, out)
		}
	}

	lines := strings.Count(out, "\n")
	// Two user keys: root + two internal routers + four leaves.
	if lines != 7 {
		t.Errorf("dump lines: got %d, want 7", lines)
	}
}
