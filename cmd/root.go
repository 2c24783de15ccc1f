package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mj1618/ui-inspector/internal/config"
	"github.com/mj1618/ui-inspector/internal/fixture"
	"github.com/mj1618/ui-inspector/internal/logging"
	"github.com/mj1618/ui-inspector/internal/model"
	"github.com/mj1618/ui-inspector/internal/output"
	"github.com/mj1618/ui-inspector/internal/platform"
	"github.com/mj1618/ui-inspector/internal/version"
)

var (
	cfg    = config.Default()
	logger = zap.NewNop()

	// backends holds the accessibility providers this binary can open.
	backends = platform.NewRegistry()
)

var rootCmd = &cobra.Command{
	Use:   "ui-inspector",
	Short: "Inspect and drive the accessibility tree of desktop UIs",
	Long: `Capture the accessibility tree around a screen point, expand it lazily,
export subtrees and replay clicks against addressed nodes.

Nodes are addressed by their drill id, the child indices leading to them
from the capture root (e.g. "0,2,1"), optionally guarded by the runtime id
the provider reported for them (e.g. "[2A,10]").`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)

	flags := rootCmd.PersistentFlags()
	flags.String("format", "", "Output format: yaml, json")
	flags.Bool("pretty", false, "Pretty-print JSON output")
	flags.String("config", "", "Config file (default $XDG_CONFIG_HOME/ui-inspector/config.yaml)")
	flags.String("fixture", "", "Desktop fixture file for the fixture backend (default: built-in sample)")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("backend", "", "Accessibility backend")

	if err := backends.Register(fixture.BackendName, func() (platform.Accessibility, error) {
		return fixture.Factory(cfg.Fixture)()
	}); err != nil {
		panic(err)
	}

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}

		log, err := logging.New(cfg.LogLevel, false)
		if err != nil {
			return err
		}
		logger = log
		model.RelativeToMismatch = func(id, ancestor model.DrillID) {
			logger.Debug("drill id is not below ancestor",
				zap.Stringer("drill", id), zap.Stringer("ancestor", ancestor))
		}

		format, _ := flags.GetString("format")
		f, err := output.ParseFormat(format)
		if err != nil {
			return err
		}
		output.OutputFormat = f
		output.PrettyOutput, _ = flags.GetBool("pretty")
		return nil
	}
	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	}
}

// configPath returns the --config value or the per-user default. The
// second result reports whether the file was asked for explicitly.
func configPath() (string, bool) {
	if path, _ := rootCmd.PersistentFlags().GetString("config"); path != "" {
		return path, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "ui-inspector", "config.yaml"), false
}

// loadConfig reads the config file into cfg and applies the persistent
// flag overrides.
func loadConfig() error {
	path, explicit := configPath()
	loaded, err := config.Load(path, !explicit)
	if err != nil {
		return err
	}

	flags := rootCmd.PersistentFlags()
	if v, _ := flags.GetString("backend"); v != "" {
		loaded.Backend = v
	}
	if v, _ := flags.GetString("fixture"); v != "" {
		loaded.Fixture = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		loaded.LogLevel = v
	}
	if err := loaded.Validate(); err != nil {
		return err
	}
	cfg = loaded
	return nil
}
