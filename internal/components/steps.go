// Package components installs the cluster-resident stack on top of RKE2:
// cert-manager, the ingress controller, Rancher, and the Cluster API
// provider. Every component follows the same idempotency pattern (probe,
// install, bounded rollout wait), expressed once as a Step and run by a
// single runner so logging, dry-run and timeout handling never diverge
// between components.
package components

import (
	"context"
	"fmt"
	"time"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/helm"
)

// HelmInstaller is the subset of the helm client steps need.
type HelmInstaller interface {
	InstallOrUpgrade(ctx context.Context, spec helm.ChartSpec, values map[string]any, timeout time.Duration) error
}

// ClusterProbe is the subset of the k8s client steps need. Satisfied by
// *k8s.Client; tests use a fake.
type ClusterProbe interface {
	NamespaceExists(ctx context.Context, name string) (bool, error)
	DeploymentReady(ctx context.Context, namespace, name string, minAvailable int32) (bool, error)
	DaemonSetReady(ctx context.Context, namespace, name string) (bool, error)
	WaitForDeployment(ctx context.Context, namespace, name string, minAvailable int32, interval, timeout time.Duration) error
	WaitForDaemonSet(ctx context.Context, namespace, name string, interval, timeout time.Duration) error
}

// Step is one idempotent install unit.
type Step struct {
	// Name identifies the component in logs and errors.
	Name string

	// Probe reports whether the component is already present and
	// adequately replicated. A true result short-circuits the install.
	Probe func(ctx context.Context) (bool, error)

	// Apply performs the install.
	Apply func(ctx context.Context) error

	// Wait blocks until the component's rollout completes or its bounded
	// timeout elapses.
	Wait func(ctx context.Context) error
}

// Runner executes steps in order with uniform logging and dry-run handling.
type Runner struct {
	Log    audit.Logger
	DryRun bool
}

// Run walks the steps. Each step either skips with a log line or fully
// installs; a failed apply or wait is fatal and stops the chain. The
// returned names are the steps this run actually applied, so callers can
// record provenance for components that were not already present.
func (r *Runner) Run(ctx context.Context, steps []Step) ([]string, error) {
	var applied []string
	for _, step := range steps {
		present, err := step.Probe(ctx)
		if err != nil {
			return applied, fmt.Errorf("%s: readiness probe failed: %w", step.Name, err)
		}
		if present {
			r.Log.Infof("%s already installed and ready, skipping", step.Name)
			continue
		}

		if r.DryRun {
			r.Log.Infof("dry-run: would install %s", step.Name)
			continue
		}

		r.Log.Infof("installing %s", step.Name)
		if err := step.Apply(ctx); err != nil {
			return applied, fmt.Errorf("%s: install failed: %w", step.Name, err)
		}

		if err := step.Wait(ctx); err != nil {
			return applied, fmt.Errorf("%s: %w", step.Name, err)
		}
		applied = append(applied, step.Name)
		r.Log.Infof("%s is ready", step.Name)
	}
	return applied, nil
}
