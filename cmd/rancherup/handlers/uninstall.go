package handlers

import (
	"context"
	"os"

	"github.com/rancherup/rancherup/internal/cluster"
	"github.com/rancherup/rancherup/internal/helm"
	"github.com/rancherup/rancherup/internal/uninstall"
)

// newUninstallHelm builds a namespace-scoped Helm client for teardown.
// Replaced in tests.
var newUninstallHelm = func(namespace string) (uninstall.HelmUninstaller, error) {
	kubeconfig, err := os.ReadFile(cluster.KubeconfigPath)
	if err != nil {
		return nil, err
	}
	return helm.NewClient(kubeconfig, namespace)
}

// Uninstall tears down everything a previous install run put in place.
//
// The install record is the sole source of truth for what this tool owns; a
// missing record aborts before anything is removed. Past that gate every
// removal failure is a warning and teardown continues.
func Uninstall(ctx context.Context, dryRun bool) error {
	if !dryRun && geteuid() != 0 {
		return errNotRoot("uninstall")
	}

	log, closeLog, err := installLogger(dryRun)
	if err != nil {
		return err
	}
	defer closeLog()

	timeouts := loadTimeouts()

	u := &uninstall.Uninstaller{
		Store:          newStore(),
		Runner:         newRunner(log, dryRun),
		Log:            log,
		NewHelm:        newUninstallHelm,
		HelmTimeout:    timeouts.HelmInstall,
		KubeconfigPath: cluster.KubeconfigPath,
		DryRun:         dryRun,
	}
	if err := u.Run(ctx); err != nil {
		return fail(log, err)
	}
	return nil
}
