// Package resolve recognises known applications among the desktop's
// top-level windows and extracts their interesting controls.
package resolve

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// ErrNoMatch tells the registry to try the next resolver.
var ErrNoMatch = errors.New("no resolver matched")

// Control is one named control inside an application window, addressed
// from the desktop root.
type Control struct {
	Role string     `yaml:"role" json:"role"`
	Node model.Node `yaml:"node" json:"node"`
}

// App is a resolved top-level window.
type App struct {
	Kind     string            `yaml:"kind"               json:"kind"`
	Name     string            `yaml:"name"               json:"name"`
	Window   model.Node        `yaml:"window"             json:"window"`
	Values   map[string]string `yaml:"values,omitempty"   json:"values,omitempty"`
	Controls []Control         `yaml:"controls,omitempty" json:"controls,omitempty"`
}

// Control returns the control with the given role.
func (a App) Control(role string) (model.Node, bool) {
	for _, c := range a.Controls {
		if c.Role == role {
			return c.Node, true
		}
	}
	return model.Node{}, false
}

// Resolver recognises one kind of application. Lower ranks are tried
// first.
type Resolver struct {
	Name  string
	Rank  int
	Match func(window model.Node) bool
	// Extract builds the App for a matching window. Returning ErrNoMatch
	// hands the window on to the next resolver.
	Extract func(acc platform.Accessibility, el platform.Element, window model.Node) (App, error)
}

// Registry holds resolvers in rank order.
type Registry struct {
	resolvers []Resolver
	log       *zap.Logger
}

// NewRegistry returns a registry holding the given resolvers.
func NewRegistry(log *zap.Logger, resolvers ...Resolver) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Registry{log: log}
	for _, res := range resolvers {
		r.Add(res)
	}
	return r
}

// Default returns the registry with every built-in resolver.
func Default(log *zap.Logger) *Registry {
	return NewRegistry(log, Calculator(), Taskbar(), VSCode(), Window())
}

// Add inserts a resolver, keeping rank order. Equal ranks keep insertion
// order.
func (r *Registry) Add(res Resolver) {
	r.resolvers = append(r.resolvers, res)
	sort.SliceStable(r.resolvers, func(i, j int) bool {
		return r.resolvers[i].Rank < r.resolvers[j].Rank
	})
}

// Names lists resolvers in the order they are tried.
func (r *Registry) Names() []string {
	names := make([]string, len(r.resolvers))
	for i, res := range r.resolvers {
		names[i] = res.Name
	}
	return names
}

// Resolve runs the resolvers against one window. A resolver that fails
// with anything other than ErrNoMatch is logged and skipped.
func (r *Registry) Resolve(acc platform.Accessibility, el platform.Element, window model.Node) (App, error) {
	for _, res := range r.resolvers {
		if res.Match != nil && !res.Match(window) {
			continue
		}
		app, err := res.Extract(acc, el, window)
		if err == nil {
			return app, nil
		}
		if !errors.Is(err, ErrNoMatch) {
			r.log.Warn("resolver failed",
				zap.String("resolver", res.Name),
				zap.String("window", window.Name),
				zap.Error(err))
		}
	}
	return App{}, fmt.Errorf("window %q: %w", window.Name, ErrNoMatch)
}

// Snapshot resolves every top-level window of the desktop, skipping the
// desktop sentinel. Windows no resolver accepts are left out.
func (r *Registry) Snapshot(acc platform.Accessibility) ([]App, error) {
	root, err := acc.Root()
	if err != nil {
		return nil, fmt.Errorf("desktop root: %w", err)
	}
	windows, err := platform.Children(acc, root, platform.RootEnd)
	if err != nil {
		r.log.Debug("desktop walk ended early", zap.Int("count", len(windows)), zap.Error(err))
	}
	g := gather.New(acc, r.log)
	var apps []App
	for i, el := range windows {
		if platform.IsDesktopSentinel(el) {
			continue
		}
		window, err := g.Describe(el)
		if err != nil {
			r.log.Debug("skipping window", zap.Int("index", i), zap.Error(err))
			continue
		}
		window.DrillID = model.Child(i)
		app, err := r.Resolve(acc, el, window)
		if err != nil {
			r.log.Debug("unresolved window", zap.String("window", window.Name))
			continue
		}
		apps = append(apps, app)
	}
	return apps, nil
}

// Window is the fallback resolver: any top-level window becomes an App of
// kind "window" with no controls.
func Window() Resolver {
	return Resolver{
		Name: "window",
		Rank: 1000,
		Extract: func(_ platform.Accessibility, _ platform.Element, window model.Node) (App, error) {
			return App{Kind: "window", Name: window.Name, Window: window}, nil
		},
	}
}
