package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/mj1618/ui-inspector/internal/bridge"
)

func TestMain(m *testing.M) {
	workerOptions = []bridge.WorkerOption{bridge.WithClipboard(func(string) error { return nil })}
	goleak.VerifyTestMain(m)
}

// resetFlags puts every flag of c and its subcommands back to its default
// so one test's arguments do not leak into the next.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args against a fast, empty config and
// returns what it printed to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Cleanup(func() { resetFlags(rootCmd) })

	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("worker_sleep: 0s\n"), 0o644))
	rootCmd.SetArgs(append(args, "--config", cfgPath))

	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	var buf bytes.Buffer
	copied := make(chan struct{})
	go func() {
		_, _ = io.Copy(&buf, r)
		close(copied)
	}()

	runErr := rootCmd.ExecuteContext(context.Background())
	w.Close()
	os.Stdout = old
	<-copied
	r.Close()
	return buf.String(), runErr
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := []string{"capture", "children", "export", "click", "apps", "serve", "inspect"}
	commands := rootCmd.Commands()

	found := make(map[string]bool)
	for _, c := range commands {
		found[c.Name()] = true
	}

	for _, name := range expected {
		if !found[name] {
			t.Errorf("expected subcommand %q not found", name)
		}
	}
}

func TestRootCommand_Version(t *testing.T) {
	if rootCmd.Version == "" {
		t.Error("root command version should be set")
	}
}

func TestCommands_Flags(t *testing.T) {
	tests := []struct {
		cmd      *cobra.Command
		name     string
		flagType string
	}{
		{captureCmd, "x", "int"},
		{captureCmd, "y", "int"},
		{captureCmd, "at", "string"},
		{captureCmd, "text", "string"},
		{childrenCmd, "drill", "string"},
		{childrenCmd, "runtime", "string"},
		{exportCmd, "clipboard", "bool"},
		{exportCmd, "flat", "bool"},
		{exportCmd, "types", "stringSlice"},
		{exportCmd, "bbox", "string"},
		{exportCmd, "max-depth", "int"},
		{clickCmd, "button", "string"},
		{clickCmd, "drill", "string"},
		{serveCmd, "transport", "string"},
		{serveCmd, "port", "int"},
		{serveCmd, "cache-ttl", "int"},
		{inspectCmd, "cooldown", "duration"},
		{inspectCmd, "log-file", "string"},
		{rootCmd, "format", "string"},
		{rootCmd, "config", "string"},
		{rootCmd, "fixture", "string"},
		{rootCmd, "backend", "string"},
	}

	for _, tt := range tests {
		f := tt.cmd.Flags().Lookup(tt.name)
		if f == nil {
			f = tt.cmd.PersistentFlags().Lookup(tt.name)
		}
		if f == nil {
			t.Errorf("%s: expected flag %q not found", tt.cmd.Name(), tt.name)
			continue
		}
		if f.Value.Type() != tt.flagType {
			t.Errorf("%s --%s: expected type %q, got %q", tt.cmd.Name(), tt.name, tt.flagType, f.Value.Type())
		}
	}
}

func TestRootCommand_UnknownBackend(t *testing.T) {
	_, err := execute(t, "apps", "--backend", "uia")
	require.Error(t, err)
	require.Contains(t, err.Error(), "uia")
	require.Contains(t, err.Error(), "available: fixture")
}

func TestRootCommand_BadFormat(t *testing.T) {
	_, err := execute(t, "apps", "--format", "xml")
	require.Error(t, err)
}

func TestServe_UnknownTransport(t *testing.T) {
	_, err := execute(t, "serve", "--transport", "carrier-pigeon")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported transport")
}
