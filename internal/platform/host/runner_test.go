package host

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancherup/rancherup/internal/audit"
)

func TestRunDryRunSkipsExecution(t *testing.T) {
	var buf bytes.Buffer
	r := NewRunner(audit.NewConsoleWriter(&buf), true)

	// A command that would fail loudly if it actually ran.
	err := r.Run(context.Background(), "/nonexistent/binary", "--flag")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "dry-run: would run: /nonexistent/binary --flag")
}

func TestRunReportsFailure(t *testing.T) {
	r := NewRunner(audit.NewConsoleWriter(&bytes.Buffer{}), false)

	err := r.Run(context.Background(), "false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "false")
}

func TestOutputExecutesUnderDryRun(t *testing.T) {
	r := NewRunner(audit.NewConsoleWriter(&bytes.Buffer{}), true)

	out, err := r.Output(context.Background(), "echo", "ok")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestLookPath(t *testing.T) {
	r := NewRunner(audit.NewConsoleWriter(&bytes.Buffer{}), false)

	_, found := r.LookPath("sh")
	assert.True(t, found)

	_, found = r.LookPath("definitely-not-a-binary-name")
	assert.False(t, found)
}
