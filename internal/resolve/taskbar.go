package resolve

import (
	"fmt"
	"strconv"

	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

const (
	taskbarClass  = "Shell_TrayWnd"
	taskListClass = "MSTaskListWClass"
)

// Taskbar recognises the shell taskbar and lists its running application
// buttons. Entries after the taskbar end marker are not applications.
func Taskbar() Resolver {
	return Resolver{
		Name: "taskbar",
		Rank: 20,
		Match: func(w model.Node) bool {
			return w.ClassName == taskbarClass
		},
		Extract: extractTaskbar,
	}
}

func extractTaskbar(acc platform.Accessibility, el platform.Element, window model.Node) (App, error) {
	g := gather.New(acc, nil)
	kids, err := platform.Children(acc, el, platform.EndOfSiblings)
	if err != nil {
		return App{}, fmt.Errorf("taskbar children: %w", err)
	}
	for i, kid := range kids {
		list, err := g.Describe(kid)
		if err != nil || list.ClassName != taskListClass || list.ControlType != "ToolBar" {
			continue
		}
		entries, err := platform.Children(acc, kid, platform.TaskbarEnd)
		if err != nil {
			return App{}, fmt.Errorf("task list: %w", err)
		}
		app := App{
			Kind:   "taskbar",
			Name:   window.Name,
			Window: window,
			Values: make(map[string]string),
		}
		listID := window.DrillID.Append(i)
		for j, entry := range entries {
			n, err := g.Describe(entry)
			if err != nil {
				continue
			}
			n.DrillID = listID.Append(j)
			app.Controls = append(app.Controls, Control{Role: "entry", Node: n})
		}
		app.Values["entries"] = strconv.Itoa(len(app.Controls))
		return app, nil
	}
	return App{}, fmt.Errorf("%w: no %s toolbar", ErrNoMatch, taskListClass)
}
