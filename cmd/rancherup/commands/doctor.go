package commands

import (
	"github.com/spf13/cobra"

	"github.com/rancherup/rancherup/cmd/rancherup/handlers"
)

// Doctor returns the command for diagnosing host and cluster status.
//
// This command never mutates anything: it probes the host tools, the install
// record, the RKE2 API server and the installed components, and renders the
// result as a styled report on interactive terminals or JSON with --json.
func Doctor() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose host and management cluster status",
		Long: `Diagnose the state of this host and its management cluster.

Checks, in order:
  - OS family and architecture support
  - Host tools on PATH (curl, kubectl, helm, clusterctl)
  - Install record presence and contents
  - RKE2 API server reachability
  - Component health (cert-manager, ingress-nginx, Rancher, Cluster API)

Examples:
  # Human-readable report
  rancherup doctor

  # Machine-readable report
  rancherup doctor --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Doctor(cmd.Context(), jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	return cmd
}
