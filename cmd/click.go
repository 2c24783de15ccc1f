package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/output"
	"github.com/mj1618/ui-inspector/internal/platform"
)

var clickCmd = &cobra.Command{
	Use:   "click",
	Short: "Click an addressed node or a screen point",
	Long: `Re-resolve the node at --drill from the desktop root and click it, or click
whatever is under --x/--y.

The middle button is accepted but ignored; the result reports it as
unsupported.

Examples:
  ui-inspector click --drill 0,0,3,2
  ui-inspector click --drill 0,0,3,2 --runtime "[2A,10]" --button right
  ui-inspector click --x 190 --y 550`,
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addAddressFlags(clickCmd, "")
	addPointFlags(clickCmd)
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
}

func runClick(cmd *cobra.Command, args []string) error {
	s, _ := cmd.Flags().GetString("button")
	button, err := platform.ParseMouseButton(s)
	if err != nil {
		return err
	}

	result := output.ClickResult{Action: "click", Button: button.String()}
	var req bridge.Request
	if cmd.Flags().Changed("drill") {
		drill, rid, err := addressFlags(cmd)
		if err != nil {
			return err
		}
		req = bridge.Click{DrillID: drill, RuntimeID: rid, Button: button}
		result.Target = drill.String()
	} else {
		x, y, ok, err := pointFlags(cmd)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("either --drill or --x and --y are required")
		}
		req = bridge.ClickAt{X: x, Y: y, Button: button}
		result.Target = fmt.Sprintf("%d,%d", x, y)
	}

	ack, err := call[bridge.ClickAck](cmd.Context(), req)
	if err != nil {
		return err
	}
	result.OK = !ack.Unsupported
	result.Unsupported = ack.Unsupported
	return output.Print(result)
}
