package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/output"
	"github.com/mj1618/ui-inspector/internal/platform"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the full subtree below an addressed node",
	Long: `Gather every descendant of the node at --drill (the desktop root by default).

Filters are applied after the gather. Filtered nodes are replaced by their
matching descendants, so every printed node keeps its drill id.

Examples:
  ui-inspector export --drill 0 --flat
  ui-inspector export --drill 0,1 --types button,text --clipboard
  ui-inspector export --bbox 0,0,800,600 --max-depth 4
  ui-inspector export --drill 0 --save before.json
  ui-inspector export --drill 0 --diff before.json`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addAddressFlags(exportCmd, "root")
	exportCmd.Flags().Bool("clipboard", false, "Also copy the subtree's text form to the clipboard")
	exportCmd.Flags().Bool("flat", false, "Print a flat list with path breadcrumbs instead of a tree")
	exportCmd.Flags().StringSlice("types", nil, "Only keep these control types or groups: interactive, containers, text (comma-separated)")
	exportCmd.Flags().String("bbox", "", `Only keep nodes intersecting "x,y,w,h"`)
	exportCmd.Flags().String("text", "", "Only keep nodes whose name, class or automation id contains this text")
	exportCmd.Flags().Int("max-depth", 0, "Limit gather depth (0 = config max_depth)")
	exportCmd.Flags().String("save", "", "Also save the filtered nodes as a snapshot file")
	exportCmd.Flags().String("diff", "", "Print changes since a saved snapshot instead of the nodes")
}

func runExport(cmd *cobra.Command, args []string) error {
	drill, rid, err := addressFlags(cmd)
	if err != nil {
		return err
	}

	var bbox *[4]int
	if s, _ := cmd.Flags().GetString("bbox"); s != "" {
		b, err := platform.ParseBBox(s)
		if err != nil {
			return err
		}
		arr := b.Array()
		bbox = &arr
	}
	if depth, _ := cmd.Flags().GetInt("max-depth"); depth > 0 {
		cfg.MaxDepth = depth
	}
	clip, _ := cmd.Flags().GetBool("clipboard")

	exported, err := call[bridge.TreeExported](cmd.Context(), bridge.ExportTree{
		DrillID: drill, RuntimeID: rid, Clipboard: clip,
	})
	if err != nil {
		return err
	}

	nodes := []model.Node{exported.Tree}
	types, _ := cmd.Flags().GetStringSlice("types")
	nodes = model.FilterNodes(nodes, model.ExpandTypes(types), bbox)
	if text, _ := cmd.Flags().GetString("text"); text != "" {
		nodes = model.FilterByText(nodes, text)
	}
	if len(nodes) == 0 {
		return fmt.Errorf("no nodes below %s match the filters", drill)
	}

	flatNodes := model.FlattenNodes(nodes)
	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := model.SaveSnapshot(path, model.Snapshot{TS: output.Now(), Root: drill, Nodes: flatNodes}); err != nil {
			return err
		}
	}
	if path, _ := cmd.Flags().GetString("diff"); path != "" {
		snap, err := model.LoadSnapshot(path)
		if err != nil {
			return err
		}
		if !snap.Root.Equal(drill) {
			return fmt.Errorf("snapshot %s was taken at %s, not %s", path, snap.Root, drill)
		}
		return output.Print(output.DiffResult{
			TS: output.Now(), Since: snap.TS, Changes: model.DiffNodes(snap.Nodes, flatNodes),
		})
	}

	if flat, _ := cmd.Flags().GetBool("flat"); flat || len(nodes) != 1 {
		return output.Print(output.FlatResult{TS: output.Now(), Nodes: flatNodes})
	}
	return output.Print(output.TreeResult{TS: output.Now(), Tree: nodes[0]})
}
