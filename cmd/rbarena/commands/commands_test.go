package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbarena/pkg/config"
)

// testConfig writes a config file that keeps output deterministic.
func testConfig(t *testing.T, extra string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "rbarena.yaml")
	content := "output:\n  color: false\nlogging:\n  level: error\n" + extra
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

// execute runs cmd with args and returns stdout, stderr and the error.
func execute(ctx context.Context, cmd *cobra.Command, args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer

	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)

	return stdout.String(), stderr.String(), err
}

func mustLoadConfig(t *testing.T, path string) *config.Config {
	t.Helper()

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	return cfg
}
