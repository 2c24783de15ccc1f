package action

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// ErrUnsupportedButton is returned for buttons the dispatcher does not
// synthesize. Callers treat it as a no-op.
var ErrUnsupportedButton = errors.New("unsupported mouse button")

// Dispatcher replays input against addressed nodes.
type Dispatcher struct {
	acc platform.Accessibility
	log *zap.Logger
}

// NewDispatcher returns a Dispatcher. A nil logger is replaced by a no-op
// one.
func NewDispatcher(acc platform.Accessibility, log *zap.Logger) *Dispatcher {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dispatcher{acc: acc, log: log}
}

// Click resolves id the way Resolve does and clicks it. A non-empty expect
// guards against the address having moved to a different node.
func (d *Dispatcher) Click(id model.DrillID, button platform.MouseButton, expect model.RuntimeID) error {
	el, err := Resolve(d.acc, id, expect)
	if err != nil {
		return err
	}
	return d.click(el, button, zap.Stringer("drill", id))
}

// ClickAt clicks the element under a screen point.
func (d *Dispatcher) ClickAt(x, y int, button platform.MouseButton) error {
	el, err := d.acc.ElementAt(x, y)
	if err != nil {
		return fmt.Errorf("element at %d,%d: %w", x, y, err)
	}
	return d.click(el, button, zap.Int("x", x), zap.Int("y", y))
}

func (d *Dispatcher) click(el platform.Element, button platform.MouseButton, fields ...zap.Field) error {
	switch button {
	case platform.MouseLeft, platform.MouseRight:
	default:
		d.log.Warn("ignoring click with unsupported button", append(fields, zap.Stringer("button", button))...)
		return ErrUnsupportedButton
	}
	if err := d.acc.Click(el, button); err != nil {
		return fmt.Errorf("click: %w", err)
	}
	d.log.Debug("clicked", append(fields, zap.Stringer("button", button))...)
	return nil
}
