// Package host executes commands on the local host.
//
// Everything the tool does to the machine outside the cluster (package
// installs, the RKE2 installer script, systemctl, clusterctl) goes through
// the Runner interface so dry-run handling and test fakes live in one place.
package host

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rancherup/rancherup/internal/audit"
)

// Runner abstracts host command execution.
//
// Run is for mutating commands and is suppressed under dry-run.
// Output is for read-only queries and always executes.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) error
	Output(ctx context.Context, name string, args ...string) (string, error)
	LookPath(name string) (string, bool)
}

// ExecRunner runs commands via os/exec.
type ExecRunner struct {
	DryRun bool
	Log    audit.Logger
}

// NewRunner creates an ExecRunner.
func NewRunner(log audit.Logger, dryRun bool) *ExecRunner {
	return &ExecRunner{DryRun: dryRun, Log: log}
}

// Run executes a mutating command. Under dry-run the command is logged and
// skipped.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) error {
	if r.DryRun {
		r.Log.Infof("dry-run: would run: %s %s", name, strings.Join(args, " "))
		return nil
	}

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s %s: %w: %s", name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Output executes a read-only command and returns its combined stdout.
func (r *ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", fmt.Errorf("%s %s: %w", name, strings.Join(args, " "), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// LookPath reports whether a binary is present on PATH.
func (r *ExecRunner) LookPath(name string) (string, bool) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", false
	}
	return path, true
}
