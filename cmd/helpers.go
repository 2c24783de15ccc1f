package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mj1618/ui-inspector/internal/bridge"
	"github.com/mj1618/ui-inspector/internal/model"
)

// workerOptions are passed to every worker the commands start. Tests use
// it to replace the system clipboard.
var workerOptions []bridge.WorkerOption

// startBridge opens the configured backend on a new worker.
func startBridge(ctx context.Context) (*bridge.Bridge, error) {
	factory, err := backends.Factory(cfg.Backend)
	if err != nil {
		return nil, fmt.Errorf("%w (available: %s)", err, strings.Join(backends.Names(), ", "))
	}
	b := bridge.New(bridge.Options{
		ThreadboundCapacity: cfg.ThreadboundCapacity,
		GameboundCapacity:   cfg.GameboundCapacity,
		WorkerSleep:         cfg.WorkerSleep,
		MaxDepth:            cfg.MaxDepth,
	}, logger.Named("bridge"))
	b.Start(ctx, factory, workerOptions...)
	return b, nil
}

// stopBridge closes b and waits for its worker to exit.
func stopBridge(b *bridge.Bridge) {
	b.Close()
	<-b.Done()
}

// call runs a single request on a short-lived worker.
func call[T bridge.Reply](ctx context.Context, req bridge.Request) (T, error) {
	var zero T
	b, err := startBridge(ctx)
	if err != nil {
		return zero, err
	}
	defer stopBridge(b)
	return bridge.CallAs[T](ctx, b, req)
}

func addAddressFlags(cmd *cobra.Command, drillDefault string) {
	cmd.Flags().String("drill", drillDefault, `Drill id of the node, e.g. "0,2,1" or "root"`)
	cmd.Flags().String("runtime", "", `Runtime id the node must still have, e.g. "[2A,10]"`)
}

// addressFlags reads --drill and --runtime. An unknown drill id is an
// error.
func addressFlags(cmd *cobra.Command) (model.DrillID, model.RuntimeID, error) {
	s, _ := cmd.Flags().GetString("drill")
	drill, err := model.ParseDrillID(s)
	if err != nil {
		return drill, nil, err
	}
	if drill.IsUnknown() {
		return drill, nil, fmt.Errorf("--drill is required")
	}
	r, _ := cmd.Flags().GetString("runtime")
	rid, err := model.ParseRuntimeID(r)
	if err != nil {
		return drill, nil, err
	}
	return drill, rid, nil
}
