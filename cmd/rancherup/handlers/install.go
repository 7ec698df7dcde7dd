// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command
// definitions in the commands package. Handlers are framework-agnostic and
// can be tested independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/cluster"
	"github.com/rancherup/rancherup/internal/components"
	"github.com/rancherup/rancherup/internal/config"
	"github.com/rancherup/rancherup/internal/deps"
	"github.com/rancherup/rancherup/internal/helm"
	"github.com/rancherup/rancherup/internal/k8s"
	"github.com/rancherup/rancherup/internal/platform/host"
	"github.com/rancherup/rancherup/internal/state"
	"github.com/rancherup/rancherup/internal/sysinfo"
)

// toolVersion is recorded in the install record. Set from main via
// SetVersion.
var toolVersion = "dev"

// SetVersion sets the version stamped into install records.
func SetVersion(v string) {
	toolVersion = v
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// geteuid reports the effective UID; install refuses to run unprivileged.
	geteuid = os.Geteuid

	// detectOS resolves the host distribution.
	detectOS = sysinfo.Detect

	// detectArch resolves the host architecture.
	detectArch = sysinfo.DetectArch

	// newStore opens the install record store.
	newStore = state.NewStore

	// openAuditLog opens the on-disk audit log.
	openAuditLog = func() (audit.Logger, func(), error) {
		l, err := audit.Open(audit.DefaultLogPath)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Close() }, nil
	}

	// newRunner builds the host command runner.
	newRunner = func(log audit.Logger, dryRun bool) host.Runner {
		return host.NewRunner(log, dryRun)
	}

	// newBootstrapper builds the RKE2 bootstrapper.
	newBootstrapper = func(runner host.Runner, log audit.Logger, t *config.Timeouts) *cluster.Bootstrapper {
		return cluster.New(runner, log, t.APIPollInterval, t.APIWait)
	}

	// readKubeconfig loads the RKE2 admin kubeconfig.
	readKubeconfig = func() ([]byte, error) {
		return os.ReadFile(cluster.KubeconfigPath)
	}

	// newHelmClient builds a namespace-scoped in-process Helm client.
	newHelmClient = func(kubeconfig []byte, namespace string) (components.HelmInstaller, error) {
		return helm.NewClient(kubeconfig, namespace)
	}

	// newClusterProbe builds the readiness probe client.
	newClusterProbe = func(kubeconfig []byte) (components.ClusterProbe, error) {
		return k8s.NewFromKubeconfig(kubeconfig)
	}

	// writeWorkloadManifest renders and writes the workload cluster manifest.
	writeWorkloadManifest = components.WriteWorkloadManifest

	// loadTimeouts loads the bounded-wait configuration.
	loadTimeouts = config.LoadTimeouts

	// timeNow stamps the install record.
	timeNow = time.Now
)

// componentNames is the fixed install order, used for dry-run planning.
var componentNames = []string{"cert-manager", "ingress-nginx", "rancher", "cluster-api"}

// Install bootstraps the management cluster on the local host.
//
// The workflow, in order:
//  1. Resolve and validate configuration (flags over file over defaults);
//     any invalid enumerated value aborts before anything is installed
//  2. Exit cleanly if a previous run's install record exists, unless --force
//  3. Detect OS family and architecture; unsupported hosts are fatal
//  4. Install missing host tools (curl, kubectl, helm, clusterctl)
//  5. Install RKE2 and wait for the API server, bounded by a deadline
//  6. Install cert-manager, ingress-nginx, Rancher and the Cluster API
//     provider, each with a probe, install, bounded rollout wait
//  7. Write the workload cluster manifest and the install record
//
// Under --dry-run every mutating action is logged instead of executed and
// no record is written.
func Install(ctx context.Context, configPath string, flagCfg *config.Config, flagChanged func(string) bool) error {
	cfg, err := resolveConfig(configPath, flagCfg, flagChanged)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if !cfg.DryRun && geteuid() != 0 {
		return errNotRoot("install")
	}

	log, closeLog, err := installLogger(cfg.DryRun)
	if err != nil {
		return err
	}
	defer closeLog()

	store := newStore()
	if store.Exists() && !cfg.Force {
		log.Infof("install record found at %s; nothing to do (use --force to reinstall)", store.Path)
		return nil
	}

	osInfo, err := detectOS()
	if err != nil {
		return fail(log, err)
	}
	arch, err := detectArch()
	if err != nil {
		return fail(log, err)
	}
	log.Infof("detected %s (%s family) on %s", osInfo.PrettyName, osInfo.Family, arch)

	runner := newRunner(log, cfg.DryRun)
	if err := sysinfo.DisableConflictingServices(ctx, osInfo, runner, log); err != nil {
		return fail(log, err)
	}

	ensurer := &deps.Ensurer{Runner: runner, Log: log, OS: osInfo, Arch: arch}
	installed, err := ensurer.EnsureAll(ctx)
	if err != nil {
		return fail(log, err)
	}

	timeouts := loadTimeouts()
	boot := newBootstrapper(runner, log, timeouts)

	// In dry-run with no answering cluster there is nothing to probe; log
	// the remaining plan and stop before touching the API.
	if cfg.DryRun && !boot.APIReady(ctx) {
		logDryRunPlan(log, store, timeouts)
		return nil
	}

	rke2Installed, err := boot.Ensure(ctx, cfg.Force)
	if err != nil {
		return fail(log, err)
	}

	applied, err := installComponents(ctx, cfg, runner, log, timeouts)
	if err != nil {
		return fail(log, err)
	}

	if cfg.DryRun {
		log.Infof("dry-run: would write workload cluster manifest to %s", components.WorkloadManifestPath)
		log.Infof("dry-run: would write install record to %s", store.Path)
		return nil
	}

	if err := writeWorkloadManifest(cfg, components.WorkloadManifestPath); err != nil {
		return fail(log, err)
	}

	rec := &state.Record{
		InstalledBy: "rancherup",
		Version:     toolVersion,
		Arch:        arch,
		Date:        timeNow(),
		RKE2:        rke2Installed,
		Curl:        installed.Curl,
		Kubectl:     installed.Kubectl,
		Helm:        installed.Helm,
		Clusterctl:  installed.Clusterctl,
		Rancher:     appliedRancher(applied),
	}
	if err := store.Write(rec); err != nil {
		return fail(log, fmt.Errorf("failed to write install record: %w", err))
	}

	log.Infof("install complete; Rancher is available at https://%s", cfg.Hostname)
	return nil
}

// resolveConfig merges flag values over an optional config file over
// defaults. A flag the user set explicitly always wins.
func resolveConfig(configPath string, flagCfg *config.Config, flagChanged func(string) bool) (*config.Config, error) {
	if configPath == "" {
		return flagCfg, nil
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Force = flagCfg.Force
	cfg.DryRun = flagCfg.DryRun
	if flagChanged("hostname") {
		cfg.Hostname = flagCfg.Hostname
	}
	if flagChanged("bootstrap-password") {
		cfg.BootstrapPassword = flagCfg.BootstrapPassword
	}
	if flagChanged("email") {
		cfg.Email = flagCfg.Email
	}
	if flagChanged("cert-type") {
		cfg.CertType = flagCfg.CertType
	}
	if flagChanged("ingress-mode") {
		cfg.IngressMode = flagCfg.IngressMode
	}
	if flagChanged("capi-provider") {
		cfg.CAPIProvider = flagCfg.CAPIProvider
	}
	return cfg, nil
}

func errNotRoot(op string) error {
	return fmt.Errorf("%s must run as root", op)
}

// fail writes the error to the audit log before handing it back up. The
// file logger mirrors every line to standard error, so a fatal error leaves
// the same trail in both places.
func fail(log audit.Logger, err error) error {
	log.Errorf("%v", err)
	return err
}

// installLogger opens the audit log, or a console-only logger for dry-run
// where writing /var/log is itself a mutation.
func installLogger(dryRun bool) (audit.Logger, func(), error) {
	if dryRun {
		return audit.NewConsole(), func() {}, nil
	}
	return openAuditLog()
}

// installComponents runs the fixed component chain on the now-ready cluster
// and returns the names of the steps that actually installed something.
func installComponents(ctx context.Context, cfg *config.Config, runner host.Runner, log audit.Logger, timeouts *config.Timeouts) ([]string, error) {
	kubeconfig, err := readKubeconfig()
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig: %w", err)
	}

	probe, err := newClusterProbe(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}

	helmFor := func(namespace string) (components.HelmInstaller, error) {
		return newHelmClient(kubeconfig, namespace)
	}

	certManagerHelm, err := helmFor("cert-manager")
	if err != nil {
		return nil, err
	}
	ingressHelm, err := helmFor("ingress-nginx")
	if err != nil {
		return nil, err
	}
	rancherHelm, err := helmFor(components.RancherNamespace)
	if err != nil {
		return nil, err
	}

	steps := []components.Step{
		components.CertManagerStep(certManagerHelm, probe, timeouts),
		components.IngressNginxStep(ingressHelm, probe, cfg, timeouts),
		components.RancherStep(rancherHelm, probe, cfg, timeouts),
		components.CAPIStep(runner, probe, cfg, timeouts, cluster.KubeconfigPath),
	}

	stepRunner := &components.Runner{Log: log, DryRun: cfg.DryRun}
	return stepRunner.Run(ctx, steps)
}

// appliedRancher reports whether the rancher step was among the applied ones.
func appliedRancher(applied []string) bool {
	for _, name := range applied {
		if name == "rancher" {
			return true
		}
	}
	return false
}

// logDryRunPlan prints the remaining plan when no cluster exists to probe.
func logDryRunPlan(log audit.Logger, store *state.Store, timeouts *config.Timeouts) {
	log.Infof("dry-run: would install RKE2 server and wait up to %s for the API", timeouts.APIWait)
	for _, name := range componentNames {
		log.Infof("dry-run: would install %s", name)
	}
	log.Infof("dry-run: would write workload cluster manifest to %s", components.WorkloadManifestPath)
	log.Infof("dry-run: would write install record to %s", store.Path)
}
