package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbarena/internal/script"
	"github.com/Sumatoshi-tech/rbarena/pkg/config"
)

const failingScript = `
name: broken
steps:
  - op: insert
    values: [3, 1, 2]
  - op: in_order
    expect: [1, 2, 4]
`

func TestRunCommand_DefaultDemo(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "post_order")
	assert.Contains(t, out, "[11 30 20 50 45 60 70 55 40]")
	assert.NotContains(t, out, "FAIL")
}

func TestRunCommand_JSON(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd, "--format", "json")
	require.NoError(t, err)

	var report script.Report

	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "demo", report.Name)
	assert.Zero(t, report.Failures)
	assert.Equal(t, 9, report.Stats.Live)
}

func TestRunCommand_FormatFromConfig(t *testing.T) {
	t.Parallel()

	cfgPath := writeFile(t, "plain.yaml", "output:\n  format: plain\n  color: false\nlogging:\n  level: error\n")
	cmd := NewRunCommand(&Globals{ConfigPath: cfgPath})

	out, _, err := execute(context.Background(), cmd)
	require.NoError(t, err)

	assert.Contains(t, out, "in_order: [11 20 30 40 45 50 55 60 70]")
}

func TestRunCommand_FailingScript(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "broken.yaml", failingScript)
	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd, path)
	require.ErrorIs(t, err, ErrScriptFailed)

	assert.Contains(t, out, "FAIL")
	assert.Contains(t, out, "broken")
}

func TestRunCommand_InvalidScriptFile(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "bad.yaml", "steps:\n  - op: jump\n")
	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	_, _, err := execute(context.Background(), cmd, path)
	require.ErrorIs(t, err, script.ErrInvalidScript)
}

func TestRunCommand_MissingScriptFile(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	_, _, err := execute(context.Background(), cmd, filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestRunCommand_ShowTree(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd, "--format", "plain", "--show-tree", "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "40 B")
	assert.Contains(t, out, "└──")
}

func TestRunCommand_Plot(t *testing.T) {
	t.Parallel()

	plotPath := filepath.Join(t.TempDir(), "tree.html")
	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	_, _, err := execute(context.Background(), cmd, "--plot", plotPath)
	require.NoError(t, err)

	data, err := os.ReadFile(plotPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "echarts")
	assert.Contains(t, string(data), "demo")
}

func TestRunCommand_Hibernate(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "tree:\n  hibernate: true\n")})

	out, _, err := execute(context.Background(), cmd, "--format", "json")
	require.NoError(t, err)

	var report script.Report

	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Positive(t, report.HibernatedBytes)
	assert.Equal(t, 9, report.Stats.Live)
}

func TestRunCommand_Quiet(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, ""), Quiet: true})

	out, _, err := execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestRunCommand_BadConfig(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "tree:\n  capacity: -4\n")})

	_, _, err := execute(context.Background(), cmd)
	require.Error(t, err)
}

func TestRunCommand_UnknownFormat(t *testing.T) {
	t.Parallel()

	cmd := NewRunCommand(&Globals{ConfigPath: testConfig(t, "")})

	out, _, err := execute(context.Background(), cmd, "--format", "csv")
	require.ErrorIs(t, err, config.ErrInvalidOutputFormat)
	assert.Empty(t, out)
}
