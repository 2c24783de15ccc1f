package fixture

import _ "embed"

//go:embed desktop.yaml
var defaultDesktop []byte

// Default returns a fresh copy of the built-in sample desktop: a scientific
// calculator, a notepad window, the taskbar and the desktop sentinel.
func Default() (*Desktop, error) {
	return Parse(defaultDesktop)
}
