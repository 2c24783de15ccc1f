package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/output"
	"github.com/mj1618/ui-inspector/internal/platform"
)

var captureCmd = &cobra.Command{
	Use:   "capture",
	Short: "Capture the tree around the element under a screen point",
	Long: `Capture the ancestry-filtered tree around the element under a screen point.

Every ancestor of the focal element is expanded; siblings along the way are
listed without their children. Use "children" to expand them later.

Examples:
  ui-inspector capture --x 190 --y 550
  ui-inspector capture --at 190,550 --text display`,
	RunE: runCapture,
}

func init() {
	rootCmd.AddCommand(captureCmd)
	addPointFlags(captureCmd)
	captureCmd.Flags().String("text", "", "Only keep nodes whose name, class or automation id contains this text")
}

func addPointFlags(cmd *cobra.Command) {
	cmd.Flags().Int("x", 0, "Screen X coordinate")
	cmd.Flags().Int("y", 0, "Screen Y coordinate")
	cmd.Flags().String("at", "", `Screen point as "x,y"`)
}

// pointFlags reads --at or --x/--y. ok is false when neither was given.
func pointFlags(cmd *cobra.Command) (x, y int, ok bool, err error) {
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		x, y, err = platform.ParsePoint(at)
		return x, y, err == nil, err
	}
	if !cmd.Flags().Changed("x") || !cmd.Flags().Changed("y") {
		return 0, 0, false, nil
	}
	x, _ = cmd.Flags().GetInt("x")
	y, _ = cmd.Flags().GetInt("y")
	return x, y, true, nil
}

func runCapture(cmd *cobra.Command, args []string) error {
	x, y, ok, err := pointFlags(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("--x and --y (or --at) are required")
	}

	captured, err := call[bridge.TreeCaptured](cmd.Context(), bridge.CaptureTreeAt{X: x, Y: y})
	if err != nil {
		return err
	}

	tree := captured.Tree
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		kept := model.FilterByText([]model.Node{tree}, text)
		if len(kept) == 0 {
			return fmt.Errorf("no nodes match %q", text)
		}
		tree = kept[0]
	}
	return output.Print(output.CaptureResult{
		TS: output.Now(), X: x, Y: y, Focal: captured.Focal, Tree: tree,
	})
}
