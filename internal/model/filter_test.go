package model

import "testing"

func TestFilterNodes_NoFilters(t *testing.T) {
	nodes := []Node{{ControlType: "Button"}, {ControlType: "Text"}}
	if result := FilterNodes(nodes, nil, nil); len(result) != 2 {
		t.Errorf("expected 2 nodes, got %d", len(result))
	}
}

func TestFilterNodes_TypeFilterPromotesDescendants(t *testing.T) {
	root := sampleTree()
	result := FilterNodes([]Node{root}, []string{"button"}, nil)
	if len(result) != 1 {
		t.Fatalf("expected 1 node, got %d", len(result))
	}
	if result[0].Name != "OK" || !result[0].DrillID.Equal(Child(0, 0)) {
		t.Errorf("unexpected node: %s at %s", result[0].Name, result[0].DrillID)
	}
}

func TestFilterNodes_BBoxFilter(t *testing.T) {
	nodes := []Node{
		{Name: "in", Bounds: [4]int{10, 10, 50, 30}},
		{Name: "out", Bounds: [4]int{200, 200, 50, 30}},
		{Name: "overlap", Bounds: [4]int{90, 90, 50, 30}},
	}
	bbox := [4]int{0, 0, 100, 100}
	result := FilterNodes(nodes, nil, &bbox)
	if len(result) != 2 {
		t.Errorf("expected 2 nodes (inside + overlapping), got %d", len(result))
	}
}

func TestFilterByText(t *testing.T) {
	root := sampleTree()
	result := FilterByText([]Node{root}, "ok")
	if len(result) != 1 {
		t.Fatalf("expected the root to be kept, got %d", len(result))
	}
	if len(result[0].Children) != 1 || result[0].Children[0].Name != "Dialog" {
		t.Fatalf("expected the dialog ancestor, got %+v", result[0].Children)
	}
	if got := result[0].Children[0].Children; len(got) != 1 || got[0].Name != "OK" {
		t.Errorf("expected OK leaf, got %+v", got)
	}
	if result := FilterByText([]Node{root}, "nothing"); len(result) != 0 {
		t.Errorf("expected no matches, got %d", len(result))
	}
}
