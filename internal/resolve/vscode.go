package resolve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/ui-inspector/internal/action"
	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// ErrBadStructure means a window matched but its layout was not the one
// the resolver knows.
var ErrBadStructure = errors.New("unexpected window structure")

// Paths below the editor window.
var (
	vscodeSideNav    = []int{1, 0}
	vscodeEditorArea = []int{1, 1}
	vscodeFooter     = []int{2}
)

const (
	vscodeEditorAreaID = "workbench.parts.editor"
	vscodeSelectionID  = "status.editor.selection"
)

// VSCode recognises a Visual Studio Code window and extracts its side
// navigation tabs, open editor tabs and cursor position.
func VSCode() Resolver {
	return Resolver{
		Name: "vscode",
		Rank: 30,
		Match: func(w model.Node) bool {
			return strings.HasSuffix(w.Name, "Visual Studio Code")
		},
		Extract: extractVSCode,
	}
}

type vscodeResolver struct {
	acc    platform.Accessibility
	g      *gather.Gatherer
	el     platform.Element
	window model.Node
	app    App
}

func extractVSCode(acc platform.Accessibility, el platform.Element, window model.Node) (App, error) {
	r := &vscodeResolver{
		acc:    acc,
		g:      gather.New(acc, nil),
		el:     el,
		window: window,
		app: App{
			Kind:   "vscode",
			Name:   window.Name,
			Window: window,
			Values: make(map[string]string),
		},
	}
	// The side navigation keeps reporting siblings past its last tab.
	if err := r.collect("side-tab", vscodeSideNav, platform.LastChild, "TabItem"); err != nil {
		return App{}, fmt.Errorf("side navigation: %w", err)
	}
	if err := r.editorTabs(); err != nil {
		return App{}, fmt.Errorf("editor area: %w", err)
	}
	if err := r.cursor(); err != nil {
		return App{}, fmt.Errorf("footer: %w", err)
	}
	return r.app, nil
}

func (r *vscodeResolver) drill(path []int) (platform.Element, model.DrillID, error) {
	rel := model.Child(path...)
	el, err := action.Drill(r.acc, r.el, rel)
	if err != nil {
		return nil, model.Unknown(), err
	}
	return el, r.window.DrillID.Concat(rel), nil
}

// collect adds the children of the node at path with the given control
// type as controls of role.
func (r *vscodeResolver) collect(role string, path []int, policy platform.StopPolicy, controlType string) error {
	parent, parentID, err := r.drill(path)
	if err != nil {
		return err
	}
	kids, err := platform.Children(r.acc, parent, policy)
	if err != nil {
		return err
	}
	for i, kid := range kids {
		n, err := r.g.Describe(kid)
		if err != nil || n.ControlType != controlType {
			continue
		}
		n.DrillID = parentID.Append(i)
		r.app.Controls = append(r.app.Controls, Control{Role: role, Node: n})
	}
	return nil
}

func (r *vscodeResolver) editorTabs() error {
	area, _, err := r.drill(vscodeEditorArea)
	if err != nil {
		return err
	}
	id, err := area.AutomationID()
	if err != nil {
		return err
	}
	if id != vscodeEditorAreaID {
		return fmt.Errorf("%w: editor area has automation id %q", ErrBadStructure, id)
	}
	before := len(r.app.Controls)
	if err := r.collect("editor-tab", append(append([]int(nil), vscodeEditorArea...), 0), platform.EndOfSiblings, "TabItem"); err != nil {
		return err
	}
	r.app.Values["editor_tabs"] = strconv.Itoa(len(r.app.Controls) - before)
	return nil
}

func (r *vscodeResolver) cursor() error {
	footer, footerID, err := r.drill(vscodeFooter)
	if err != nil {
		return err
	}
	kids, err := platform.Children(r.acc, footer, platform.EndOfSiblings)
	if err != nil {
		return err
	}
	for i, kid := range kids {
		id, err := kid.AutomationID()
		if err != nil || id != vscodeSelectionID {
			continue
		}
		n, err := r.g.Describe(kid)
		if err != nil {
			return err
		}
		line, col, err := parseCursor(n.Name)
		if err != nil {
			return err
		}
		n.DrillID = footerID.Append(i)
		r.app.Controls = append(r.app.Controls, Control{Role: "cursor", Node: n})
		r.app.Values["line"] = strconv.Itoa(line)
		r.app.Values["column"] = strconv.Itoa(col)
		return nil
	}
	return fmt.Errorf("%w: no %s item", ErrBadStructure, vscodeSelectionID)
}

// parseCursor reads a status bar position such as "Ln 218, Col 5".
func parseCursor(s string) (line, col int, err error) {
	parts := strings.Split(s, ", ")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: bad cursor position %q", ErrBadStructure, s)
	}
	nums := make([]int, 2)
	for i, p := range parts {
		fields := strings.Fields(p)
		if len(fields) == 0 {
			return 0, 0, fmt.Errorf("%w: bad cursor position %q", ErrBadStructure, s)
		}
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return 0, 0, fmt.Errorf("%w: bad cursor position %q", ErrBadStructure, s)
		}
		nums[i] = n
	}
	return nums[0], nums[1], nil
}
