package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mj1618/ui-inspector/internal/config"
	"github.com/mj1618/ui-inspector/internal/inspector"
	"github.com/mj1618/ui-inspector/internal/logging"
	"github.com/mj1618/ui-inspector/internal/tui"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Browse the tree under a virtual pointer interactively",
	Long: `Open the interactive inspector. The tree around the pointer is captured
again every cooldown; nodes expand lazily as you open them.

Logs go to --log-file so they do not garble the screen. Edits to the config
file's cooldown apply while the inspector runs.

Examples:
  ui-inspector inspect --at 190,550
  ui-inspector inspect --cooldown 500ms --fixture desktop.yaml`,
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	addPointFlags(inspectCmd)
	inspectCmd.Flags().Duration("cooldown", 0, "Capture cooldown (default config cooldown)")
	inspectCmd.Flags().Duration("tick", 0, "Update interval (default config tick)")
	inspectCmd.Flags().String("log-file", filepath.Join(os.TempDir(), "ui-inspector.log"), "Log file")
	inspectCmd.Flags().Bool("watch", true, "Apply config file edits while running")
}

func runInspect(cmd *cobra.Command, args []string) error {
	logFile, _ := cmd.Flags().GetString("log-file")
	log, err := logging.New(cfg.LogLevel, false, logFile)
	if err != nil {
		return err
	}
	logger = log

	x, y, _, err := pointFlags(cmd)
	if err != nil {
		return err
	}
	if d, _ := cmd.Flags().GetDuration("cooldown"); d > 0 {
		cfg.Cooldown = d
	}
	if d, _ := cmd.Flags().GetDuration("tick"); d > 0 {
		cfg.Tick = d
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := startBridge(ctx)
	if err != nil {
		return err
	}
	defer stopBridge(b)

	in := inspector.New(b, cfg.Cooldown, logger.Named("inspector"))
	m := tui.New(in, tui.Options{
		Tick:      cfg.Tick,
		Pointer:   inspector.Point{X: x, Y: y},
		WorkerErr: b.Err,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(runCtx)

	g.Go(func() error {
		defer cancel()
		if _, err := p.Run(); err != nil {
			return err
		}
		return m.Err()
	})
	g.Go(func() error {
		<-gctx.Done()
		p.Quit()
		return nil
	})
	if watch, _ := cmd.Flags().GetBool("watch"); watch {
		if path, _ := configPath(); path != "" {
			if _, err := os.Stat(path); err == nil {
				g.Go(func() error {
					return config.Watch(gctx, path, logger.Named("config"), func(c config.Config) {
						p.Send(tui.CooldownMsg(c.Cooldown))
					})
				})
			}
		}
	}

	err = g.Wait()
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	logger.Info("inspector stopped", zap.Error(err), zap.Duration("cooldown", in.Cooldown()))
	return err
}
