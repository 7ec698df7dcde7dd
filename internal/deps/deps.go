// Package deps idempotently ensures the host tools the installer shells out
// to: curl, kubectl, helm, and clusterctl. Each tool is probed on PATH first;
// only an absent tool is installed, and the fact that this run installed it
// is the sole state distinguishing "pre-existing" from "installed here".
package deps

import (
	"context"
	"fmt"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/platform/host"
	"github.com/rancherup/rancherup/internal/sysinfo"
)

// Pinned tool versions. kubectl tracks the RKE2 minor; the others are the
// latest releases verified against this install flow.
const (
	KubectlVersion    = "v1.33.4"
	ClusterctlVersion = "v1.10.4"
)

// BinDir is where downloaded binaries are placed.
const BinDir = "/usr/local/bin"

// Installed aggregates the installed-by-this-run flags for host tools.
type Installed struct {
	Curl       bool
	Kubectl    bool
	Helm       bool
	Clusterctl bool
}

// Ensurer installs missing host tools.
type Ensurer struct {
	Runner host.Runner
	Log    audit.Logger
	OS     *sysinfo.OS
	Arch   string
}

// EnsureAll checks and installs every required tool in order. curl comes
// first because the other installers download through it.
func (e *Ensurer) EnsureAll(ctx context.Context) (*Installed, error) {
	result := &Installed{}

	steps := []struct {
		name    string
		flag    *bool
		install func(context.Context) error
	}{
		{"curl", &result.Curl, e.installCurl},
		{"kubectl", &result.Kubectl, e.installKubectl},
		{"helm", &result.Helm, e.installHelm},
		{"clusterctl", &result.Clusterctl, e.installClusterctl},
	}

	for _, s := range steps {
		if path, ok := e.Runner.LookPath(s.name); ok {
			e.Log.Infof("%s already present at %s, skipping", s.name, path)
			continue
		}

		e.Log.Infof("installing %s", s.name)
		if err := s.install(ctx); err != nil {
			return result, fmt.Errorf("failed to install %s: %w", s.name, err)
		}
		*s.flag = true
	}

	return result, nil
}

func (e *Ensurer) installCurl(ctx context.Context) error {
	if err := e.Runner.Run(ctx, e.OS.PkgMgr.Refresh[0], e.OS.PkgMgr.Refresh[1:]...); err != nil {
		return err
	}
	args := append(e.OS.PkgMgr.Install[1:], "curl")
	return e.Runner.Run(ctx, e.OS.PkgMgr.Install[0], args...)
}

func (e *Ensurer) installKubectl(ctx context.Context) error {
	url := fmt.Sprintf("https://dl.k8s.io/release/%s/bin/linux/%s/kubectl", KubectlVersion, e.Arch)
	dest := BinDir + "/kubectl"

	if err := e.Runner.Run(ctx, "curl", "-fsSL", "-o", dest, url); err != nil {
		return err
	}
	return e.Runner.Run(ctx, "chmod", "0755", dest)
}

func (e *Ensurer) installHelm(ctx context.Context) error {
	// The upstream installer script handles architecture and checksum
	// verification itself.
	return e.Runner.Run(ctx, "sh", "-c",
		"curl -fsSL https://raw.githubusercontent.com/helm/helm/main/scripts/get-helm-3 | sh")
}

func (e *Ensurer) installClusterctl(ctx context.Context) error {
	url := fmt.Sprintf(
		"https://github.com/kubernetes-sigs/cluster-api/releases/download/%s/clusterctl-linux-%s",
		ClusterctlVersion, e.Arch)
	dest := BinDir + "/clusterctl"

	if err := e.Runner.Run(ctx, "curl", "-fsSL", "-o", dest, url); err != nil {
		return err
	}
	return e.Runner.Run(ctx, "chmod", "0755", dest)
}
