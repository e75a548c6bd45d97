package script_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/rbarena/internal/script"
)

func TestParse(t *testing.T) {
	t.Parallel()

	parsed, err := script.Parse([]byte(`
name: small
capacity: 8
steps:
  - op: insert
    values: [3, 1, 2]
  - op: contains
    value: 2
    expect: true
  - op: in_order
    expect: [1, 2, 3]
  - op: pre_order
    expect: []
  - op: validate
`))
	require.NoError(t, err)

	assert.Equal(t, "small", parsed.Name)
	assert.Equal(t, 8, parsed.Capacity)
	require.Len(t, parsed.Steps, 5)

	assert.Equal(t, script.OpInsert, parsed.Steps[0].Op)
	assert.Equal(t, []int{3, 1, 2}, parsed.Steps[0].Inputs())
	assert.Nil(t, parsed.Steps[0].Expect)

	assert.Equal(t, []int{2}, parsed.Steps[1].Inputs())
	require.NotNil(t, parsed.Steps[1].Expect.Hit)
	assert.True(t, *parsed.Steps[1].Expect.Hit)

	assert.Equal(t, []int{1, 2, 3}, parsed.Steps[2].Expect.Values)
	assert.NotNil(t, parsed.Steps[3].Expect.Values)
	assert.Empty(t, parsed.Steps[3].Expect.Values)
}

func TestParseRejectsSchemaViolations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		doc  string
	}{
		{"empty document", ""},
		{"no steps", "name: x\n"},
		{"empty steps", "steps: []\n"},
		{"unknown op", "steps:\n  - op: rotate\n"},
		{"unknown field", "steps:\n  - op: validate\n    extra: 1\n"},
		{"insert without value", "steps:\n  - op: insert\n"},
		{"insert with both", "steps:\n  - op: insert\n    value: 1\n    values: [2]\n"},
		{"insert expects list", "steps:\n  - op: insert\n    value: 1\n    expect: [1]\n"},
		{"traversal with value", "steps:\n  - op: in_order\n    value: 1\n"},
		{"traversal expects bool", "steps:\n  - op: in_order\n    expect: true\n"},
		{"validate with expect", "steps:\n  - op: validate\n    expect: true\n"},
		{"negative capacity", "capacity: -1\nsteps:\n  - op: validate\n"},
		{"non integer value", "steps:\n  - op: insert\n    value: abc\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := script.Parse([]byte(tt.doc))
			require.ErrorIs(t, err, script.ErrInvalidScript)

			var schemaErr *script.SchemaError
			require.ErrorAs(t, err, &schemaErr)
			assert.NotEmpty(t, schemaErr.Problems)
		})
	}
}

func TestParseRejectsBadYAML(t *testing.T) {
	t.Parallel()

	_, err := script.Parse([]byte("steps: [\n"))
	require.ErrorIs(t, err, script.ErrSyntax)
}

func TestParseFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "s.yaml")
	require.NoError(t, os.WriteFile(path, []byte("steps:\n  - op: validate\n"), 0o600))

	parsed, err := script.ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, parsed.Steps, 1)

	_, err = script.ParseFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestDefault(t *testing.T) {
	t.Parallel()

	demo := script.Default()

	assert.Equal(t, "demo", demo.Name)
	assert.Equal(t, 100, demo.Capacity)
	assert.Equal(t, []int{40, 10, 20, 30, 50, 45, 11, 55, 60, 65, 70, 66}, demo.Steps[0].Inputs())
}
