// Package uninstall tears down everything the install run put in place, in
// reverse dependency order.
//
// The Install Record is the one fatal precondition: without it the tool
// cannot know what it owns, and refusing to guess is what keeps teardown
// from removing infrastructure it did not provision. Past that gate every
// step is best-effort: a failed removal is a warning, never an abort.
//
// Cluster-resident components are removed unconditionally: they live inside
// the cluster being torn down. Host-level binaries are removed only when
// their recorded flag says this tool installed them; a pre-existing helm or
// clusterctl is left untouched.
package uninstall

import (
	"context"
	"fmt"
	"time"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/platform/host"
	"github.com/rancherup/rancherup/internal/state"
)

// HelmUninstaller is the subset of the helm client teardown needs.
type HelmUninstaller interface {
	Uninstall(releaseName string, timeout time.Duration) error
	ReleaseExists(releaseName string) (bool, error)
}

// helmRelease pairs a release with its namespace, in removal order.
type helmRelease struct {
	name      string
	namespace string
}

// clusterReleases are removed unconditionally, newest dependency first.
var clusterReleases = []helmRelease{
	{"rancher", "cattle-system"},
	{"ingress-nginx", "ingress-nginx"},
	{"cert-manager", "cert-manager"},
}

// Uninstaller walks the teardown.
type Uninstaller struct {
	Store  *state.Store
	Runner host.Runner
	Log    audit.Logger

	// NewHelm builds a namespace-scoped helm client. Injectable for tests.
	NewHelm func(namespace string) (HelmUninstaller, error)

	// HelmTimeout bounds each release uninstall.
	HelmTimeout time.Duration

	KubeconfigPath string
	DryRun         bool
}

// Run executes the teardown. Only a missing or unreadable Install Record is
// fatal; every removal failure is logged and skipped.
func (u *Uninstaller) Run(ctx context.Context) error {
	rec, err := u.Store.Read()
	if err != nil {
		return fmt.Errorf("refusing to uninstall: %w", err)
	}

	u.Log.Infof("uninstalling components recorded by %s version %s (%s)",
		rec.InstalledBy, rec.Version, rec.Date.Format("2006-01-02"))

	// Cluster-resident components first, while the cluster still answers.
	u.removeCAPI(ctx)
	u.removeReleases()

	// Host-level binaries, only when this tool installed them.
	if rec.RKE2 {
		u.removeRKE2(ctx)
	} else {
		u.Log.Infof("rke2 was pre-existing, leaving it in place")
	}
	u.removeBinary(ctx, "kubectl", rec.Kubectl)
	u.removeBinary(ctx, "helm", rec.Helm)
	u.removeBinary(ctx, "clusterctl", rec.Clusterctl)

	if u.DryRun {
		u.Log.Infof("dry-run: would delete install record")
		return nil
	}
	if err := u.Store.Delete(); err != nil {
		return err
	}

	u.Log.Infof("uninstall complete")
	return nil
}

func (u *Uninstaller) removeCAPI(ctx context.Context) {
	err := u.Runner.Run(ctx, "clusterctl", "delete",
		"--kubeconfig", u.KubeconfigPath, "--all")
	if err != nil {
		u.Log.Warnf("failed to delete Cluster API providers: %v", err)
	}
}

func (u *Uninstaller) removeReleases() {
	for _, rel := range clusterReleases {
		client, err := u.NewHelm(rel.namespace)
		if err != nil {
			u.Log.Warnf("failed to create helm client for %s: %v", rel.namespace, err)
			continue
		}

		exists, err := client.ReleaseExists(rel.name)
		if err != nil || !exists {
			u.Log.Infof("release %s not found, nothing to remove", rel.name)
			continue
		}

		if u.DryRun {
			u.Log.Infof("dry-run: would uninstall release %s", rel.name)
			continue
		}

		if err := client.Uninstall(rel.name, u.HelmTimeout); err != nil {
			u.Log.Warnf("failed to uninstall release %s: %v", rel.name, err)
			continue
		}
		u.Log.Infof("removed release %s", rel.name)
	}
}

func (u *Uninstaller) removeRKE2(ctx context.Context) {
	// The RKE2 installer ships its own uninstall script.
	if err := u.Runner.Run(ctx, "sh", "-c", "/usr/local/bin/rke2-uninstall.sh"); err != nil {
		u.Log.Warnf("rke2 uninstall script failed: %v", err)
		return
	}
	u.Log.Infof("removed rke2")
}

func (u *Uninstaller) removeBinary(ctx context.Context, name string, installedByUs bool) {
	if !installedByUs {
		u.Log.Infof("%s was pre-existing, leaving it in place", name)
		return
	}

	if err := u.Runner.Run(ctx, "rm", "-f", "/usr/local/bin/"+name); err != nil {
		u.Log.Warnf("failed to remove %s: %v", name, err)
		return
	}
	u.Log.Infof("removed %s", name)
}
