package model

import "strings"

// TypeGroups maps group names accepted wherever control types are filtered
// to the control types they expand to.
var TypeGroups = map[string][]string{
	"interactive": {
		"Button", "SplitButton", "CheckBox", "RadioButton", "ComboBox", "Edit",
		"Hyperlink", "ListItem", "MenuItem", "TabItem", "TreeItem", "Slider", "Spinner",
	},
	"containers": {"Window", "Pane", "Group", "List", "Tree", "Tab", "ToolBar", "MenuBar", "Document"},
	"text":       {"Text", "Edit", "Document"},
}

// ExpandTypes expands any group names in types to their concrete control
// types. Other names pass through unchanged. Matching is case-insensitive
// and duplicates are removed.
func ExpandTypes(types []string) []string {
	seen := make(map[string]bool, len(types))
	var expanded []string
	add := func(t string) {
		key := strings.ToLower(t)
		if !seen[key] {
			seen[key] = true
			expanded = append(expanded, t)
		}
	}
	for _, t := range types {
		if concrete, ok := TypeGroups[strings.ToLower(t)]; ok {
			for _, c := range concrete {
				add(c)
			}
		} else {
			add(t)
		}
	}
	return expanded
}
