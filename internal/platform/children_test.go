package platform_test

import (
	"testing"

	"github.com/mj1618/ui-inspector/internal/fixture"
	"github.com/mj1618/ui-inspector/internal/platform"
)

func names(t *testing.T, els []platform.Element) []string {
	t.Helper()
	out := make([]string, len(els))
	for i, el := range els {
		n, err := el.Name()
		if err != nil {
			t.Fatalf("Name: %v", err)
		}
		out[i] = n
	}
	return out
}

func TestChildren_RootEndIncludesSentinel(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	root, _ := d.Root()
	kids, err := platform.Children(d, root, platform.RootEnd)
	if err != nil {
		t.Fatal(err)
	}
	got := names(t, kids)
	if len(got) != 4 || got[3] != "Program Manager" {
		t.Errorf("expected 4 top-level windows ending with the sentinel, got %v", got)
	}
	if !platform.IsDesktopSentinel(kids[3]) {
		t.Error("last child should be recognised as the sentinel")
	}
}

func TestChildren_RootEndStopsEarly(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	// A window after the sentinel must never be visited.
	root, _ := d.Root()
	rootID, _ := root.RuntimeID()
	if _, err := d.Insert(rootID, 99, fixture.NodeSpec{Name: "After", ControlType: "Window"}); err != nil {
		t.Fatal(err)
	}
	kids, err := platform.Children(d, root, platform.RootEnd)
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 4 {
		t.Errorf("expected enumeration to stop at the sentinel, got %d children", len(kids))
	}
	all, err := platform.Children(d, root, platform.EndOfSiblings)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 5 {
		t.Errorf("end-of-siblings should see all 5 children, got %d", len(all))
	}
}

func TestChildren_TaskbarEndExcludesMarker(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	toolbar, err := d.ElementAt(60, 1050)
	if err != nil {
		t.Fatal(err)
	}
	parent, err := d.Parent(toolbar)
	if err != nil {
		t.Fatal(err)
	}
	kids, err := platform.Children(d, parent, platform.TaskbarEnd)
	if err != nil {
		t.Fatal(err)
	}
	got := names(t, kids)
	if len(got) != 2 || got[0] != "Calculator" || got[1] != "Untitled - Notepad" {
		t.Errorf("unexpected taskbar entries: %v", got)
	}
}

func TestChildren_LastChildIncludesLast(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	el, err := d.ElementAt(700, 140)
	if err != nil {
		t.Fatal(err)
	}
	notepad, err := d.Parent(el)
	if err != nil {
		t.Fatal(err)
	}
	kids, err := platform.Children(d, notepad, platform.LastChild)
	if err != nil {
		t.Fatal(err)
	}
	if len(kids) != 3 {
		t.Errorf("expected 3 children, got %d", len(kids))
	}
}

func TestChildren_NoChildren(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	leaf, err := d.ElementAt(190, 550)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range []platform.StopPolicy{platform.EndOfSiblings, platform.LastChild} {
		kids, err := platform.Children(d, leaf, p)
		if err != nil || len(kids) != 0 {
			t.Errorf("%s: expected no children, got %d, %v", p, len(kids), err)
		}
	}
}

func TestChildren_SiblingFailureReturnsPartial(t *testing.T) {
	d, err := fixture.Default()
	if err != nil {
		t.Fatal(err)
	}
	root, _ := d.Root()
	rid, _ := d.RuntimeIDOf("Untitled - Notepad")
	if err := d.Fail(rid, "next_sibling"); err != nil {
		t.Fatal(err)
	}
	kids, err := platform.Children(d, root, platform.EndOfSiblings)
	if err == nil {
		t.Fatal("expected an error from the failing sibling walk")
	}
	if len(kids) != 2 {
		t.Errorf("expected the 2 children before the failure, got %d", len(kids))
	}
}
