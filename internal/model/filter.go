package model

import "strings"

// FilterNodes keeps nodes whose control type is in types and whose bounds
// intersect bbox. A nil or empty filter matches everything. Nodes that do
// not match but have matching descendants are replaced by those
// descendants, so addresses of everything returned are left intact.
func FilterNodes(nodes []Node, types []string, bbox *[4]int) []Node {
	if len(types) == 0 && bbox == nil {
		return nodes
	}

	typeSet := make(map[string]bool, len(types))
	for _, t := range types {
		typeSet[strings.ToLower(t)] = true
	}

	var result []Node
	for _, n := range nodes {
		var filteredChildren []Node
		if len(n.Children) > 0 {
			filteredChildren = FilterNodes(n.Children, types, bbox)
		}

		typeMatch := len(typeSet) == 0 || typeSet[strings.ToLower(n.ControlType)]
		bboxMatch := bbox == nil || boundsIntersect(n.Bounds, *bbox)

		if typeMatch && bboxMatch {
			filtered := n
			filtered.Children = filteredChildren
			result = append(result, filtered)
		} else if len(filteredChildren) > 0 {
			result = append(result, filteredChildren...)
		}
	}
	return result
}

// FilterByText keeps nodes whose name, class name or automation id contains
// text (case-insensitive), along with the ancestors leading to them.
func FilterByText(nodes []Node, text string) []Node {
	if text == "" {
		return nodes
	}
	textLower := strings.ToLower(text)
	var result []Node
	for _, n := range nodes {
		matched := textMatchesNode(n, textLower)
		childMatches := FilterByText(n.Children, text)

		if matched || len(childMatches) > 0 {
			filtered := n
			filtered.Children = childMatches
			result = append(result, filtered)
		}
	}
	return result
}

func textMatchesNode(n Node, textLower string) bool {
	return strings.Contains(strings.ToLower(n.Name), textLower) ||
		strings.Contains(strings.ToLower(n.ClassName), textLower) ||
		strings.Contains(strings.ToLower(n.AutomationID), textLower)
}

// boundsIntersect checks if two [x, y, width, height] rectangles overlap.
func boundsIntersect(a, b [4]int) bool {
	ax1, ay1, ax2, ay2 := a[0], a[1], a[0]+a[2], a[1]+a[3]
	bx1, by1, bx2, by2 := b[0], b[1], b[0]+b[2], b[1]+b[3]
	return ax1 < bx2 && ax2 > bx1 && ay1 < by2 && ay2 > by1
}
