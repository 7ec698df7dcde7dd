package commands

import (
	"github.com/spf13/cobra"

	"github.com/rancherup/rancherup/cmd/rancherup/handlers"
)

// Uninstall returns the uninstall command.
//
// Teardown is driven by the install record written by a previous install
// run. Cluster-resident components are removed unconditionally; host-level
// tools only when the record says this tool installed them.
func Uninstall() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "uninstall",
		Short: "Remove everything a previous install run put in place",
		Long: `Uninstall tears down the management cluster in reverse order.

Removed unconditionally (they live inside the cluster being torn down):
  - Cluster API providers
  - Rancher
  - ingress-nginx
  - cert-manager

Removed only when the install record marks them as installed by this tool:
  - RKE2 (via its own uninstall script)
  - helm and clusterctl binaries

A missing install record is a hard error: without it the tool cannot know
what it owns and refuses to guess. Individual removal failures are logged
as warnings and teardown continues.

Example:
  rancherup uninstall

WARNING: This operation is irreversible. All cluster data will be lost.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Uninstall(cmd.Context(), dryRun)
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Log removals without executing them")

	return cmd
}
