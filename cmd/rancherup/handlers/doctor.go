package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/rancherup/rancherup/internal/components"
)

// DoctorStatus is the full diagnostic report.
type DoctorStatus struct {
	OS            string `json:"os,omitempty"`
	OSSupported   bool   `json:"osSupported"`
	Arch          string `json:"arch,omitempty"`
	ArchSupported bool   `json:"archSupported"`

	Tools map[string]bool `json:"tools"`

	RecordPresent       bool     `json:"recordPresent"`
	InstalledComponents []string `json:"installedComponents,omitempty"`

	APIReachable bool                       `json:"apiReachable"`
	Components   map[string]ComponentHealth `json:"components,omitempty"`
}

// ComponentHealth is one cluster component's probe result.
type ComponentHealth struct {
	Installed bool `json:"installed"`
	Ready     bool `json:"ready"`
}

// doctorTools are the host binaries probed on PATH.
var doctorTools = []string{"curl", "kubectl", "helm", "clusterctl"}

// lookPath probes PATH for a binary. Replaced in tests.
var lookPath = exec.LookPath

// Doctor collects the diagnostic report and renders it.
//
// Nothing here mutates the host: every check is a read-only probe, and a
// failed probe is reported rather than returned as an error.
func Doctor(ctx context.Context, jsonOutput bool) error {
	status := collectStatus(ctx)

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	if isInteractiveTTY() {
		renderStyled(status)
		return nil
	}

	renderPlain(status)
	return nil
}

func collectStatus(ctx context.Context) *DoctorStatus {
	status := &DoctorStatus{
		Tools:      map[string]bool{},
		Components: map[string]ComponentHealth{},
	}

	if osInfo, err := detectOS(); err == nil {
		status.OS = osInfo.PrettyName
		status.OSSupported = true
	}
	if arch, err := detectArch(); err == nil {
		status.Arch = arch
		status.ArchSupported = true
	}

	for _, tool := range doctorTools {
		_, err := lookPath(tool)
		status.Tools[tool] = err == nil
	}

	store := newStore()
	if rec, err := store.Read(); err == nil {
		status.RecordPresent = true
		status.InstalledComponents = rec.InstalledComponents()
	}

	kubeconfig, err := readKubeconfig()
	if err != nil {
		return status
	}
	probe, err := newClusterProbe(kubeconfig)
	if err != nil {
		return status
	}

	client, ok := probe.(interface {
		Reachable(ctx context.Context) bool
	})
	if !ok || !client.Reachable(ctx) {
		return status
	}
	status.APIReachable = true

	status.Components["cert-manager"] = probeComponent(ctx, probe, "cert-manager", func() (bool, error) {
		return probe.DeploymentReady(ctx, "cert-manager", "cert-manager", 1)
	})
	status.Components["ingress-nginx"] = probeComponent(ctx, probe, "ingress-nginx", func() (bool, error) {
		// The controller runs as a DaemonSet or a Deployment depending on
		// the configured ingress mode; either counts as ready.
		if ready, err := probe.DaemonSetReady(ctx, "ingress-nginx", "ingress-nginx-controller"); err == nil && ready {
			return true, nil
		}
		return probe.DeploymentReady(ctx, "ingress-nginx", "ingress-nginx-controller", 1)
	})
	status.Components["rancher"] = probeComponent(ctx, probe, components.RancherNamespace, func() (bool, error) {
		return probe.DeploymentReady(ctx, components.RancherNamespace, components.RancherDeployment, components.RancherMinReplicas)
	})
	status.Components["cluster-api"] = probeComponent(ctx, probe, "capi-system", func() (bool, error) {
		return probe.DeploymentReady(ctx, "capi-system", "capi-controller-manager", 1)
	})

	return status
}

func probeComponent(ctx context.Context, probe components.ClusterProbe, namespace string, ready func() (bool, error)) ComponentHealth {
	var h ComponentHealth

	exists, err := probe.NamespaceExists(ctx, namespace)
	if err != nil || !exists {
		return h
	}
	h.Installed = true

	if ok, err := ready(); err == nil && ok {
		h.Ready = true
	}
	return h
}

func isInteractiveTTY() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

var (
	doctorTitleStyle = lipgloss.NewStyle().Bold(true)
	doctorSection    = lipgloss.NewStyle().Bold(true).
				Foreground(lipgloss.Color("#3b82f6")).MarginTop(1)
	doctorOK   = lipgloss.NewStyle().Foreground(lipgloss.Color("#22c55e"))
	doctorFail = lipgloss.NewStyle().Foreground(lipgloss.Color("#ef4444"))
	doctorDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6b7280"))
)

const (
	checkMark = "[OK]"
	crossMark = "[!!]"
	dashMark  = "[--]"
)

func renderStyled(status *DoctorStatus) {
	mark := func(ok bool) string {
		if ok {
			return doctorOK.Render(checkMark)
		}
		return doctorFail.Render(crossMark)
	}

	fmt.Println(doctorTitleStyle.Render("rancherup doctor"))

	fmt.Println(doctorSection.Render("Host"))
	fmt.Printf("  %s OS: %s\n", mark(status.OSSupported), orUnknown(status.OS))
	fmt.Printf("  %s Architecture: %s\n", mark(status.ArchSupported), orUnknown(status.Arch))

	fmt.Println(doctorSection.Render("Tools"))
	for _, tool := range doctorTools {
		fmt.Printf("  %s %s\n", mark(status.Tools[tool]), tool)
	}

	fmt.Println(doctorSection.Render("Install record"))
	if status.RecordPresent {
		fmt.Printf("  %s present: %v\n", doctorOK.Render(checkMark), status.InstalledComponents)
	} else {
		fmt.Printf("  %s not installed\n", doctorDim.Render(dashMark))
	}

	fmt.Println(doctorSection.Render("Cluster"))
	if !status.APIReachable {
		fmt.Printf("  %s API server not reachable\n", doctorDim.Render(dashMark))
		return
	}
	fmt.Printf("  %s API server reachable\n", doctorOK.Render(checkMark))
	for _, name := range componentNames {
		h := status.Components[name]
		switch {
		case h.Ready:
			fmt.Printf("  %s %s\n", doctorOK.Render(checkMark), name)
		case h.Installed:
			fmt.Printf("  %s %s (installed, not ready)\n", doctorFail.Render(crossMark), name)
		default:
			fmt.Printf("  %s %s (not installed)\n", doctorDim.Render(dashMark), name)
		}
	}
}

func renderPlain(status *DoctorStatus) {
	mark := func(ok bool) string {
		if ok {
			return checkMark
		}
		return crossMark
	}

	fmt.Println("rancherup doctor")
	fmt.Printf("%s OS: %s\n", mark(status.OSSupported), orUnknown(status.OS))
	fmt.Printf("%s Architecture: %s\n", mark(status.ArchSupported), orUnknown(status.Arch))
	for _, tool := range doctorTools {
		fmt.Printf("%s %s\n", mark(status.Tools[tool]), tool)
	}
	if status.RecordPresent {
		fmt.Printf("%s install record: %v\n", checkMark, status.InstalledComponents)
	} else {
		fmt.Printf("%s install record: absent\n", dashMark)
	}
	if !status.APIReachable {
		fmt.Printf("%s API server not reachable\n", dashMark)
		return
	}
	fmt.Printf("%s API server reachable\n", checkMark)
	for _, name := range componentNames {
		h := status.Components[name]
		switch {
		case h.Ready:
			fmt.Printf("%s %s\n", checkMark, name)
		case h.Installed:
			fmt.Printf("%s %s (installed, not ready)\n", crossMark, name)
		default:
			fmt.Printf("%s %s (not installed)\n", dashMark, name)
		}
	}
}

func orUnknown(s string) string {
	if s == "" {
		return "unsupported or unknown"
	}
	return s
}
