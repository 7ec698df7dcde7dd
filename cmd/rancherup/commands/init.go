package commands

import (
	"github.com/spf13/cobra"

	"github.com/rancherup/rancherup/cmd/rancherup/handlers"
)

// Init returns the command for interactively creating a configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a configuration file interactively",
		Long: `Init walks through the installation options and writes them to a
configuration file for later use with 'rancherup install -c'.

Example:
  rancherup init
  rancherup install -c rancherup.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "rancherup.yaml", "Path to write the configuration file")

	return cmd
}
