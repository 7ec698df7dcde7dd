package audit

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopCloser struct {
	*bytes.Buffer
}

func (nopCloser) Close() error { return nil }

func TestFileLoggerWritesBothSinks(t *testing.T) {
	file := nopCloser{&bytes.Buffer{}}
	errw := &bytes.Buffer{}

	l := NewWithWriters(file, errw)
	l.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	l.Infof("installing %s", "cert-manager")
	l.Errorf("rollout timed out after %ds", 300)

	lines := strings.Split(strings.TrimSpace(file.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "2026-03-01T12:00:00Z [INFO] installing cert-manager", lines[0])
	assert.Equal(t, "2026-03-01T12:00:00Z [ERROR] rollout timed out after 300s", lines[1])

	// Stderr mirror carries the same content without timestamps.
	assert.Contains(t, errw.String(), "[INFO] installing cert-manager")
	assert.Contains(t, errw.String(), "[ERROR] rollout timed out after 300s")
}

func TestFileLoggerWarningsUseErrorPrefix(t *testing.T) {
	file := nopCloser{&bytes.Buffer{}}
	l := NewWithWriters(file, &bytes.Buffer{})

	l.Warnf("helm uninstall failed: %v", "release not found")

	assert.Contains(t, file.String(), "[ERROR] warning: helm uninstall failed: release not found")
}

func TestConsoleLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewConsoleWriter(&buf)

	l.Infof("skipping %s, already present", "rke2")
	l.Warnf("ignoring %s", "stale marker")

	assert.Contains(t, buf.String(), "[INFO] skipping rke2, already present")
	assert.Contains(t, buf.String(), "[ERROR] warning: ignoring stale marker")
}
