// Package sysinfo detects the host environment: distribution, package
// manager, and CPU architecture. All queries are read-only; the one
// side-effecting operation is DisableConflictingServices, a fixed
// precondition for the cluster runtime on some distribution families.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/platform/host"
)

// osReleasePath is the standard OS identity descriptor.
const osReleasePath = "/etc/os-release"

// Family groups distributions by package-manager lineage.
type Family string

const (
	FamilyDebian Family = "debian"
	FamilyRHEL   Family = "rhel"
	FamilySUSE   Family = "suse"
)

// PackageManager is the command triple used to install host packages.
type PackageManager struct {
	// Name is the package manager binary (apt-get, dnf, yum, zypper).
	Name string

	// Refresh updates the package index.
	Refresh []string

	// Install installs a package non-interactively; the package name is
	// appended by the caller.
	Install []string
}

// OS describes the detected distribution.
type OS struct {
	ID         string
	PrettyName string
	Family     Family
	PkgMgr     PackageManager
}

// Detect reads the OS identity from /etc/os-release. A missing descriptor or
// an unrecognized distribution is a fatal environment error.
func Detect() (*OS, error) {
	data, err := os.ReadFile(osReleasePath)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", osReleasePath, err)
	}
	return parseOSRelease(string(data))
}

// parseOSRelease resolves an os-release document to a supported OS.
func parseOSRelease(data string) (*OS, error) {
	fields := map[string]string{}
	for _, line := range strings.Split(data, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		fields[key] = strings.Trim(value, `"`)
	}

	id := fields["ID"]
	if id == "" {
		return nil, fmt.Errorf("os-release has no ID field")
	}

	info := &OS{ID: id, PrettyName: fields["PRETTY_NAME"]}

	candidates := append([]string{id}, strings.Fields(fields["ID_LIKE"])...)
	for _, c := range candidates {
		switch c {
		case "ubuntu", "debian":
			info.Family = FamilyDebian
			info.PkgMgr = PackageManager{
				Name:    "apt-get",
				Refresh: []string{"apt-get", "update"},
				Install: []string{"apt-get", "install", "-y"},
			}
			return info, nil
		case "fedora", "rhel", "rocky", "almalinux":
			info.Family = FamilyRHEL
			info.PkgMgr = PackageManager{
				Name:    "dnf",
				Refresh: []string{"dnf", "makecache"},
				Install: []string{"dnf", "install", "-y"},
			}
			return info, nil
		case "centos", "amzn":
			info.Family = FamilyRHEL
			info.PkgMgr = PackageManager{
				Name:    "yum",
				Refresh: []string{"yum", "makecache"},
				Install: []string{"yum", "install", "-y"},
			}
			return info, nil
		case "opensuse", "opensuse-leap", "opensuse-tumbleweed", "sles", "suse":
			info.Family = FamilySUSE
			info.PkgMgr = PackageManager{
				Name:    "zypper",
				Refresh: []string{"zypper", "refresh"},
				Install: []string{"zypper", "--non-interactive", "install"},
			}
			return info, nil
		}
	}

	return nil, fmt.Errorf("unsupported distribution %q", id)
}

// goArch allows tests to exercise the unsupported-architecture path.
var goArch = runtime.GOARCH

// DetectArch maps the machine architecture to the canonical two-value
// enumeration used for artifact downloads. Anything else is fatal.
func DetectArch() (string, error) {
	switch goArch {
	case "amd64", "arm64":
		return goArch, nil
	default:
		return "", fmt.Errorf("unsupported architecture %q: only amd64 and arm64 are supported", goArch)
	}
}

// DisableConflictingServices turns off OS services known to interfere with
// the RKE2 network stack. This is a fixed one-time action on RHEL-family
// hosts, not an idempotency-checked step.
func DisableConflictingServices(ctx context.Context, os *OS, runner host.Runner, log audit.Logger) error {
	if os.Family != FamilyRHEL {
		return nil
	}

	for _, unit := range []string{"nm-cloud-setup.service", "nm-cloud-setup.timer", "firewalld"} {
		if err := runner.Run(ctx, "systemctl", "disable", "--now", unit); err != nil {
			// Units that are not installed are fine; anything else still
			// only warrants a warning, the install may succeed regardless.
			log.Warnf("could not disable %s: %v", unit, err)
		} else {
			log.Infof("disabled %s", unit)
		}
	}
	return nil
}
