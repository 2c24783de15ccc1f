package model

import "testing"

func sampleTree() Node {
	button := Node{Name: "OK", ControlType: "Button", Bounds: [4]int{20, 20, 40, 20}, DrillID: Child(0, 0), RuntimeID: RuntimeID{3}}
	window := Node{Name: "Dialog", ControlType: "Window", Bounds: [4]int{0, 0, 200, 100}, DrillID: Child(0), RuntimeID: RuntimeID{2}}
	window.SetChildren([]Node{button})
	pane := Node{Name: "Pane", ControlType: "Pane", Bounds: [4]int{0, 0, 0, 0}, DrillID: Child(1), RuntimeID: RuntimeID{4}}
	root := Node{Name: "Desktop", ControlType: "Pane", Bounds: [4]int{0, 0, 1920, 1080}, DrillID: Root(), RuntimeID: RuntimeID{1}}
	root.SetChildren([]Node{window, pane})
	return root
}

func TestNode_SetChildren(t *testing.T) {
	var n Node
	n.SetChildren(nil)
	if !n.Expanded || n.Children == nil || len(n.Children) != 0 {
		t.Errorf("gathered-empty should be expanded with an empty slice, got %+v", n)
	}
	n.ClearChildren()
	if n.Expanded || n.Children != nil {
		t.Errorf("ClearChildren should reset to not gathered, got %+v", n)
	}
}

func TestNode_Descendants(t *testing.T) {
	root := sampleTree()
	got := root.Descendants()
	if len(got) != 3 {
		t.Fatalf("expected 3 descendants, got %d", len(got))
	}
	if got[0].Name != "Dialog" || got[1].Name != "OK" || got[2].Name != "Pane" {
		t.Errorf("unexpected depth-first order: %s, %s, %s", got[0].Name, got[1].Name, got[2].Name)
	}
}

func TestNode_Lookup(t *testing.T) {
	root := sampleTree()
	tests := []struct {
		id   DrillID
		want string
	}{
		{Root(), "Desktop"},
		{Child(0), "Dialog"},
		{Child(0, 0), "OK"},
		{Child(1), "Pane"},
	}
	for _, tt := range tests {
		n := root.Lookup(tt.id)
		if n == nil {
			t.Errorf("Lookup(%s) = nil, want %s", tt.id, tt.want)
			continue
		}
		if n.Name != tt.want {
			t.Errorf("Lookup(%s) = %s, want %s", tt.id, n.Name, tt.want)
		}
	}
	if n := root.Lookup(Child(0, 5)); n != nil {
		t.Errorf("expected nil for missing path, got %s", n.Name)
	}
	if n := root.Lookup(Unknown()); n != nil {
		t.Error("unknown should not resolve")
	}
}

func TestNode_LookupWithOmittedSibling(t *testing.T) {
	// Child 0 failed to gather, so the first recorded child is index 1.
	root := Node{DrillID: Root()}
	root.SetChildren([]Node{
		{Name: "second", DrillID: Child(1)},
		{Name: "third", DrillID: Child(2)},
	})
	if n := root.Lookup(Child(1)); n == nil || n.Name != "second" {
		t.Errorf("expected second, got %v", n)
	}
	if n := root.Lookup(Child(0)); n != nil {
		t.Errorf("omitted child should not resolve, got %s", n.Name)
	}
}

func TestNode_FindByRuntimeID(t *testing.T) {
	root := sampleTree()
	if n := root.FindByRuntimeID(RuntimeID{3}); n == nil || n.Name != "OK" {
		t.Errorf("expected OK, got %v", n)
	}
	if n := root.FindByRuntimeID(RuntimeID{1}); n == nil || n.Name != "Desktop" {
		t.Errorf("search should include the root, got %v", n)
	}
	if n := root.FindByRuntimeID(RuntimeID{99}); n != nil {
		t.Errorf("expected nil, got %s", n.Name)
	}
}

func TestNode_DeepestAt(t *testing.T) {
	root := sampleTree()
	if n := root.DeepestAt(25, 25); n == nil || n.Name != "OK" {
		t.Errorf("expected OK, got %v", n)
	}
	if n := root.DeepestAt(150, 80); n == nil || n.Name != "Dialog" {
		t.Errorf("expected Dialog, got %v", n)
	}
	// The zero-size pane at the origin must never be picked.
	if n := root.DeepestAt(0, 0); n == nil || n.Name != "Dialog" {
		t.Errorf("expected Dialog, got %v", n)
	}
	if n := root.DeepestAt(1000, 1000); n != nil {
		t.Errorf("expected no match, got %s", n.Name)
	}
}

func TestNode_ExpandedIDs(t *testing.T) {
	root := sampleTree()
	ids := root.ExpandedIDs()
	if len(ids) != 2 || !ids[0].IsRoot() || !ids[1].Equal(Child(0)) {
		t.Errorf("unexpected expanded ids: %v", ids)
	}
}

func TestNode_Splice(t *testing.T) {
	root := sampleTree()
	ok := root.Splice(Child(1), []Node{{Name: "Edit", DrillID: Child(0)}, {Name: "Go", DrillID: Child(1)}})
	if !ok {
		t.Fatal("Splice reported missing target")
	}
	pane := root.Lookup(Child(1))
	if !pane.Expanded || len(pane.Children) != 2 {
		t.Fatalf("pane not expanded: %+v", pane)
	}
	if !pane.Children[1].DrillID.Equal(Child(1, 1)) {
		t.Errorf("spliced child not rebased: %s", pane.Children[1].DrillID)
	}
	if root.Splice(Child(7), nil) {
		t.Error("expected false for missing target")
	}
}

func TestNode_Replace(t *testing.T) {
	root := sampleTree()
	patch := Node{Name: "Dialog (renamed)", DrillID: Child(0), RuntimeID: RuntimeID{2}}
	patch.SetChildren(nil)
	if !root.Replace(patch) {
		t.Fatal("Replace reported missing target")
	}
	if got := root.Lookup(Child(0)); got.Name != "Dialog (renamed)" || len(got.Children) != 0 {
		t.Errorf("unexpected node after replace: %+v", got)
	}
}
