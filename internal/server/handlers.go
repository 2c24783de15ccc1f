package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/gather"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/output"
	"github.com/mj1618/ui-inspector/internal/platform"
)

// toText serializes a result to YAML for the MCP response.
func toText(v interface{}) string {
	b, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func toolError(err error) *mcp.CallToolResult {
	return mcp.NewToolResultError(err.Error())
}

// address reads the drill and optional runtime parameters.
func address(params map[string]interface{}) (model.DrillID, model.RuntimeID, error) {
	drill, err := model.ParseDrillID(stringParam(params, "drill", ""))
	if err != nil {
		return drill, nil, err
	}
	if drill.IsUnknown() {
		return drill, nil, errors.New("drill is required")
	}
	rid, err := model.ParseRuntimeID(stringParam(params, "runtime", ""))
	if err != nil {
		return drill, nil, err
	}
	return drill, rid, nil
}

func (s *Server) handleCapture(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	x, y, err := requirePoint(params)
	if err != nil {
		return toolError(err), nil
	}

	res, hit, err := s.cache.Capture(x, y, func() (gather.Result, error) {
		captured, err := bridge.CallAs[bridge.TreeCaptured](ctx, s.caller, bridge.CaptureTreeAt{X: x, Y: y})
		if err != nil {
			return gather.Result{}, err
		}
		return gather.Result{Tree: captured.Tree, Focal: captured.Focal}, nil
	})
	if err != nil {
		return toolError(err), nil
	}
	s.log.Debug("capture_tree", zap.Int("x", x), zap.Int("y", y), zap.Bool("cached", hit))

	tree := res.Tree
	if text := stringParam(params, "text", ""); text != "" {
		kept := model.FilterByText([]model.Node{tree}, text)
		if len(kept) == 0 {
			return mcp.NewToolResultText(fmt.Sprintf("no nodes match %q", text)), nil
		}
		tree = kept[0]
	}
	return mcp.NewToolResultText(toText(output.CaptureResult{
		TS: output.Now(), X: x, Y: y, Focal: res.Focal, Tree: tree,
	})), nil
}

func (s *Server) handleChildren(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	drill, rid, err := address(request.GetArguments())
	if err != nil {
		return toolError(err), nil
	}
	gathered, err := bridge.CallAs[bridge.ChildrenGathered](ctx, s.caller, bridge.GatherChildren{DrillID: drill, RuntimeID: rid})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(toText(output.ChildrenResult{
		TS: output.Now(), DrillID: drill, RuntimeID: rid, Children: gathered.Children,
	})), nil
}

func (s *Server) handleExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	drill, rid, err := address(params)
	if err != nil {
		return toolError(err), nil
	}
	exported, err := bridge.CallAs[bridge.TreeExported](ctx, s.caller, bridge.ExportTree{
		DrillID: drill, RuntimeID: rid, Clipboard: boolParam(params, "clipboard", false),
	})
	if err != nil {
		return toolError(err), nil
	}

	nodes := []model.Node{exported.Tree}
	if types := listParam(params, "types"); len(types) > 0 {
		nodes = model.FilterNodes(nodes, model.ExpandTypes(types), nil)
	}
	if boolParam(params, "flat", false) || len(nodes) != 1 {
		return mcp.NewToolResultText(toText(output.FlatResult{TS: output.Now(), Nodes: model.FlattenNodes(nodes)})), nil
	}
	return mcp.NewToolResultText(toText(output.TreeResult{TS: output.Now(), Tree: nodes[0]})), nil
}

func (s *Server) handleClick(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	button, err := platform.ParseMouseButton(stringParam(params, "button", "left"))
	if err != nil {
		return toolError(err), nil
	}

	result := output.ClickResult{Action: "click", Button: button.String()}
	var req bridge.Request
	if hasParam(params, "drill") {
		drill, rid, err := address(params)
		if err != nil {
			return toolError(err), nil
		}
		req = bridge.Click{DrillID: drill, RuntimeID: rid, Button: button}
		result.Target = drill.String()
	} else {
		x, y, err := requirePoint(params)
		if err != nil {
			return toolError(errors.New("either drill or x and y are required")), nil
		}
		req = bridge.ClickAt{X: x, Y: y, Button: button}
		result.Target = fmt.Sprintf("%d,%d", x, y)
	}

	ack, err := bridge.CallAs[bridge.ClickAck](ctx, s.caller, req)
	if err != nil {
		result.Error = err.Error()
		return mcp.NewToolResultError(toText(result)), nil
	}
	result.OK = !ack.Unsupported
	result.Unsupported = ack.Unsupported
	if !ack.Unsupported {
		s.cache.InvalidateAll()
	}
	return mcp.NewToolResultText(toText(result)), nil
}

func (s *Server) handleListApps(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	resolved, err := bridge.CallAs[bridge.AppsResolved](ctx, s.caller, bridge.ResolveApps{})
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(toText(output.AppsResult{TS: output.Now(), Apps: resolved.Apps})), nil
}
