package commands

import (
	"github.com/spf13/cobra"

	"github.com/rancherup/rancherup/cmd/rancherup/handlers"
	"github.com/rancherup/rancherup/internal/config"
)

// Install returns the command for bootstrapping the management cluster.
//
// The install runs end to end on the local host: OS and architecture
// detection, host tool installation, RKE2 bootstrap, then cert-manager,
// ingress-nginx, Rancher and the Cluster API provider in order. Every phase
// is idempotent, so a failed run can be re-executed from the start.
//
// Optional flags:
//
//	--config, -c: Path to a configuration YAML written by `rancherup init`
//	--force: Reinstall even when a previous run completed
//	--dry-run: Log what would be done without changing the host
func Install() *cobra.Command {
	var configPath string
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:   "install",
		Short: "Install RKE2, Rancher and a Cluster API provider on this host",
		Long: `Install bootstraps a single-node Rancher management cluster.

The host must run a supported Linux distribution (Debian, RHEL or SUSE
family) on amd64 or arm64, and the command must run as root.

Phases, in order:
  1. Detect OS family and architecture
  2. Install missing host tools (curl, kubectl, helm, clusterctl)
  3. Install RKE2 and wait for the API server
  4. Install cert-manager, ingress-nginx and Rancher
  5. Initialize the Cluster API provider

Each phase skips work that is already done. An install record is written
on success; a later install run with the record present exits cleanly
unless --force is given.

Examples:
  # Install with defaults (self-signed certs, hostport ingress, k3k)
  rancherup install

  # Publicly reachable Rancher with Let's Encrypt
  rancherup install --hostname rancher.example.com \
    --cert-type letsencrypt --email admin@example.com

  # Preview without changing the host
  rancherup install --dry-run`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Install(cmd.Context(), configPath, cfg, cmd.Flags().Changed)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: none)")
	cmd.Flags().BoolVar(&cfg.Force, "force", false, "Reinstall even when a previous run completed")
	cmd.Flags().BoolVar(&cfg.DryRun, "dry-run", false, "Log actions without executing them")
	cmd.Flags().StringVar(&cfg.Hostname, "hostname", cfg.Hostname, "Hostname the Rancher UI is served on")
	cmd.Flags().StringVar(&cfg.BootstrapPassword, "bootstrap-password", cfg.BootstrapPassword, "Initial Rancher admin password")
	cmd.Flags().StringVar(&cfg.Email, "email", "", "Registration email for Let's Encrypt")
	cmd.Flags().StringVar((*string)(&cfg.CertType), "cert-type", string(cfg.CertType), "Certificate source: self-signed or letsencrypt")
	cmd.Flags().StringVar((*string)(&cfg.IngressMode), "ingress-mode", string(cfg.IngressMode), "Ingress topology: hostport or nodeport")
	cmd.Flags().StringVar((*string)(&cfg.CAPIProvider), "capi-provider", string(cfg.CAPIProvider), "Cluster API provider: k3k, vcluster or aws")

	return cmd
}
