package fixture

import (
	"errors"
	"testing"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

const smallDesktop = `
desktop:
  name: Desktop
  control_type: Pane
  bounds: [0, 0, 1000, 1000]
  children:
    - name: Window
      control_type: Window
      runtime: "[7]"
      bounds: [10, 10, 500, 500]
      children:
        - {name: OK, control_type: Button, bounds: [20, 20, 50, 20]}
        - {name: Broken, control_type: Button, fail: [name], bounds: [80, 20, 50, 20]}
    - {name: Program Manager, class: Progman, control_type: Pane, bounds: [0, 0, 1000, 1000]}
`

func mustParse(t *testing.T, doc string) *Desktop {
	t.Helper()
	d, err := Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return d
}

func TestParse_RuntimeIDs(t *testing.T) {
	d := mustParse(t, smallDesktop)
	rid, ok := d.RuntimeIDOf("Window")
	if !ok || !rid.Equal(model.RuntimeID{7}) {
		t.Errorf("explicit runtime id not kept: %v", rid)
	}
	ok1, _ := d.RuntimeIDOf("OK")
	broken, _ := d.RuntimeIDOf("Broken")
	if ok1.Equal(broken) || ok1.IsZero() {
		t.Errorf("generated ids should be unique, got %s and %s", ok1, broken)
	}
}

func TestParse_DuplicateRuntimeID(t *testing.T) {
	doc := `
desktop:
  name: D
  runtime: "[1]"
  children:
    - {name: A, runtime: "[1]"}
`
	if _, err := Parse([]byte(doc)); err == nil {
		t.Error("expected duplicate runtime id error")
	}
}

func TestDesktop_Navigation(t *testing.T) {
	d := mustParse(t, smallDesktop)
	root, _ := d.Root()
	if _, err := d.Parent(root); !errors.Is(err, platform.ErrNoElement) {
		t.Errorf("root parent: expected ErrNoElement, got %v", err)
	}
	win, err := d.FirstChild(root)
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := win.Name(); name != "Window" {
		t.Errorf("first child = %q", name)
	}
	pm, err := d.NextSibling(win)
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := pm.Name(); name != "Program Manager" {
		t.Errorf("next sibling = %q", name)
	}
	if _, err := d.NextSibling(pm); !errors.Is(err, platform.ErrNoElement) {
		t.Errorf("expected ErrNoElement past last sibling, got %v", err)
	}
	last, err := d.LastChild(root)
	if err != nil {
		t.Fatal(err)
	}
	if rid, _ := last.RuntimeID(); rid.Equal(model.RuntimeID{7}) {
		t.Error("last child should be the sentinel, not the window")
	}
}

func TestDesktop_ElementAt(t *testing.T) {
	d := mustParse(t, smallDesktop)
	el, err := d.ElementAt(25, 25)
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := el.Name(); name != "OK" {
		t.Errorf("ElementAt = %q, want OK", name)
	}
	el, _ = d.ElementAt(700, 700)
	if name, _ := el.Name(); name != "Program Manager" {
		t.Errorf("ElementAt = %q, want Program Manager", name)
	}
}

func TestDesktop_FailingProperty(t *testing.T) {
	d := mustParse(t, smallDesktop)
	el, _ := d.ElementAt(90, 25)
	if _, err := el.Name(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("expected ErrDestroyed, got %v", err)
	}
	if ct, err := el.ControlType(); err != nil || ct != "Button" {
		t.Errorf("other properties should still work: %q, %v", ct, err)
	}
}

func TestDesktop_RemoveInvalidatesHandles(t *testing.T) {
	d := mustParse(t, smallDesktop)
	el, _ := d.ElementAt(25, 25)
	rid, _ := el.RuntimeID()
	if err := d.Remove(model.RuntimeID{7}); err != nil {
		t.Fatal(err)
	}
	if _, err := el.Name(); !errors.Is(err, ErrDestroyed) {
		t.Errorf("removed descendant should fail, got %v", err)
	}
	if err := d.Remove(rid); err == nil {
		t.Error("removing twice should fail")
	}
	root, _ := d.Root()
	first, _ := d.FirstChild(root)
	if name, _ := first.Name(); name != "Program Manager" {
		t.Errorf("sibling should shift down, got %q", name)
	}
}

func TestDesktop_Insert(t *testing.T) {
	d := mustParse(t, smallDesktop)
	rid, err := d.Insert(model.RuntimeID{7}, 0, NodeSpec{Name: "New", ControlType: "Button"})
	if err != nil {
		t.Fatal(err)
	}
	root, _ := d.Root()
	win, _ := d.FirstChild(root)
	first, _ := d.FirstChild(win)
	got, _ := first.RuntimeID()
	if !got.Equal(rid) {
		t.Errorf("inserted node should be first, got %s want %s", got, rid)
	}
}

func TestDesktop_Click(t *testing.T) {
	d := mustParse(t, smallDesktop)
	el, _ := d.ElementAt(25, 25)
	if err := d.Click(el, platform.MouseRight); err != nil {
		t.Fatal(err)
	}
	clicks := d.Clicks()
	if len(clicks) != 1 || clicks[0].Name != "OK" || clicks[0].Button != platform.MouseRight {
		t.Errorf("unexpected clicks: %+v", clicks)
	}
}

func TestDefault_Loads(t *testing.T) {
	d, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	el, err := d.ElementAt(190, 550)
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := el.Name(); name != "Zero" {
		t.Errorf("ElementAt over the zero key = %q", name)
	}
}
