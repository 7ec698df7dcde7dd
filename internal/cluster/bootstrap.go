// Package cluster bootstraps the single-node RKE2 management cluster.
//
// The bootstrapper is a small state machine:
//
//	not-installed -> installing -> waiting-for-api -> ready
//
// The transition into installing is skipped when an existing cluster already
// answers API queries and force-reinstall was not requested. The
// waiting-for-api phase is the only bounded wait with its own interval and
// ceiling; exceeding the ceiling is fatal.
package cluster

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/k8s"
	"github.com/rancherup/rancherup/internal/platform/host"
)

// KubeconfigPath is where the RKE2 server writes its admin kubeconfig.
const KubeconfigPath = "/etc/rancher/rke2/rke2.yaml"

// installScriptURL is the upstream RKE2 installer.
const installScriptURL = "https://get.rke2.io"

// Phase is a bootstrapper state.
type Phase string

const (
	PhaseNotInstalled  Phase = "not-installed"
	PhaseInstalling    Phase = "installing"
	PhaseWaitingForAPI Phase = "waiting-for-api"
	PhaseReady         Phase = "ready"
)

// Bootstrapper installs RKE2 and waits for the API server.
type Bootstrapper struct {
	Runner host.Runner
	Log    audit.Logger

	// KubeconfigPath is probed for existence during the API wait.
	KubeconfigPath string

	// PollInterval and WaitCeiling bound the waiting-for-api phase.
	PollInterval time.Duration
	WaitCeiling  time.Duration

	// APIReady probes the API server. The default builds a fresh client
	// from KubeconfigPath on every probe so nothing is cached between
	// checks. Tests inject their own.
	APIReady func(ctx context.Context) bool

	phase Phase
}

// New creates a Bootstrapper with the given wait bounds.
func New(runner host.Runner, log audit.Logger, pollInterval, waitCeiling time.Duration) *Bootstrapper {
	b := &Bootstrapper{
		Runner:         runner,
		Log:            log,
		KubeconfigPath: KubeconfigPath,
		PollInterval:   pollInterval,
		WaitCeiling:    waitCeiling,
		phase:          PhaseNotInstalled,
	}
	b.APIReady = b.probeAPI
	return b
}

// Phase returns the current state.
func (b *Bootstrapper) Phase() Phase {
	return b.phase
}

// Ensure makes sure a ready RKE2 cluster exists. It returns true when this
// run installed RKE2, false when a cluster was already answering.
func (b *Bootstrapper) Ensure(ctx context.Context, force bool) (bool, error) {
	if !force && b.kubeconfigReadable() && b.APIReady(ctx) {
		b.Log.Infof("existing cluster is answering API queries, skipping RKE2 install")
		b.phase = PhaseReady
		return false, nil
	}

	b.phase = PhaseInstalling
	b.Log.Infof("installing RKE2 server")

	if err := b.Runner.Run(ctx, "sh", "-c",
		fmt.Sprintf("curl -sfL %s | INSTALL_RKE2_TYPE=server sh -", installScriptURL)); err != nil {
		return false, fmt.Errorf("RKE2 install script failed: %w", err)
	}
	if err := b.Runner.Run(ctx, "systemctl", "enable", "--now", "rke2-server"); err != nil {
		return false, fmt.Errorf("failed to start rke2-server: %w", err)
	}

	b.phase = PhaseWaitingForAPI
	if err := b.WaitForAPI(ctx); err != nil {
		return false, err
	}

	b.phase = PhaseReady
	b.Log.Infof("RKE2 cluster is ready")
	return true, nil
}

// WaitForAPI polls for kubeconfig existence and API reachability every
// PollInterval until WaitCeiling elapses. Exceeding the ceiling is a fatal
// error, not a retry-forever loop.
func (b *Bootstrapper) WaitForAPI(ctx context.Context) error {
	deadline := time.Now().Add(b.WaitCeiling)

	for {
		if b.kubeconfigReadable() && b.APIReady(ctx) {
			return nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return fmt.Errorf(
				"API server did not become ready within %s; check `systemctl status rke2-server` and `journalctl -u rke2-server`",
				b.WaitCeiling)
		}

		// Shorten the last sleep so the final probe lands on the deadline
		// instead of giving up an interval early.
		sleep := b.PollInterval
		if remaining < sleep {
			sleep = remaining
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait for API server interrupted: %w", ctx.Err())
		case <-time.After(sleep):
		}
	}
}

func (b *Bootstrapper) kubeconfigReadable() bool {
	_, err := os.Stat(b.KubeconfigPath)
	return err == nil
}

// probeAPI builds a fresh client each time; readiness is never cached
// beyond a single check.
func (b *Bootstrapper) probeAPI(ctx context.Context) bool {
	client, err := k8s.NewFromKubeconfigFile(b.KubeconfigPath)
	if err != nil {
		return false
	}
	return client.Reachable(ctx)
}
