package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/output"
)

var appsCmd = &cobra.Command{
	Use:   "apps",
	Short: "List top-level windows with their resolved app details",
	Long: `Resolve every top-level window on the desktop. Windows a specific resolver
recognises (e.g. the calculator) report their key controls and values;
others are listed by name and bounds.`,
	RunE: runApps,
}

func init() {
	rootCmd.AddCommand(appsCmd)
}

func runApps(cmd *cobra.Command, args []string) error {
	resolved, err := call[bridge.AppsResolved](cmd.Context(), bridge.ResolveApps{})
	if err != nil {
		return err
	}
	return output.Print(output.AppsResult{TS: output.Now(), Apps: resolved.Apps})
}
