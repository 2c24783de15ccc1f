package resolve

import (
	"fmt"
	"strings"

	"github.com/mj1618/ui-inspector/internal/action"
	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// calculatorBody is the path from the calculator window to the container
// holding the display and keypad.
var calculatorBody = []int{1, 2, 1}

// calculatorControls maps roles to paths below calculatorBody.
var calculatorControls = []struct {
	role string
	path []int
}{
	{"expression", []int{0}},
	{"display", []int{1, 0}},
	{"clear", []int{9, 0}},
	{"divide", []int{18, 0}},
	{"multiply", []int{18, 1}},
	{"minus", []int{18, 2}},
	{"plus", []int{18, 3}},
	{"equals", []int{18, 4}},
	{"negate", []int{19}},
	{"0", []int{20, 0}},
	{"1", []int{20, 1}},
	{"2", []int{20, 2}},
	{"3", []int{20, 3}},
	{"4", []int{20, 4}},
	{"5", []int{20, 5}},
	{"6", []int{20, 6}},
	{"7", []int{20, 7}},
	{"8", []int{20, 8}},
	{"9", []int{20, 9}},
}

// Calculator recognises the Windows calculator and extracts its display
// and keys.
func Calculator() Resolver {
	return Resolver{
		Name: "calculator",
		Rank: 10,
		Match: func(w model.Node) bool {
			return w.Name == "Calculator" && w.ClassName == "ApplicationFrameWindow"
		},
		Extract: extractCalculator,
	}
}

func extractCalculator(acc platform.Accessibility, el platform.Element, window model.Node) (App, error) {
	g := gather.New(acc, nil)
	app := App{
		Kind:   "calculator",
		Name:   window.Name,
		Window: window,
		Values: make(map[string]string),
	}
	for _, c := range calculatorControls {
		rel := model.Child(calculatorBody...).Append(c.path...)
		target, err := action.Drill(acc, el, rel)
		if err != nil {
			return App{}, fmt.Errorf("%s: %w", c.role, err)
		}
		n, err := g.Describe(target)
		if err != nil {
			return App{}, fmt.Errorf("%s: %w", c.role, err)
		}
		n.DrillID = window.DrillID.Concat(rel)
		app.Controls = append(app.Controls, Control{Role: c.role, Node: n})
	}
	if n, ok := app.Control("display"); ok {
		app.Values["display"] = strings.TrimSpace(strings.TrimPrefix(n.Name, "Display is"))
	}
	if n, ok := app.Control("expression"); ok {
		app.Values["expression"] = strings.TrimSpace(strings.TrimPrefix(n.Name, "Expression is"))
	}
	return app, nil
}
