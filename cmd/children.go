package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/output"
)

var childrenCmd = &cobra.Command{
	Use:   "children",
	Short: "Gather the direct children of an addressed node",
	Long: `Gather one level below the node at --drill. With --runtime, the node must
still carry that runtime id or the gather fails as stale.

Examples:
  ui-inspector children --drill 0,1
  ui-inspector children --drill 0,1 --runtime "[2A,10]"`,
	RunE: runChildren,
}

func init() {
	rootCmd.AddCommand(childrenCmd)
	addAddressFlags(childrenCmd, "")
}

func runChildren(cmd *cobra.Command, args []string) error {
	drill, rid, err := addressFlags(cmd)
	if err != nil {
		return err
	}
	gathered, err := call[bridge.ChildrenGathered](cmd.Context(), bridge.GatherChildren{DrillID: drill, RuntimeID: rid})
	if err != nil {
		return err
	}
	return output.Print(output.ChildrenResult{
		TS: output.Now(), DrillID: gathered.DrillID, RuntimeID: gathered.RuntimeID, Children: gathered.Children,
	})
}
