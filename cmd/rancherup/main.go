// Package main is the entry point for the rancherup CLI.
//
// rancherup bootstraps a single-node Rancher management cluster on the local
// host: it installs RKE2, layers cert-manager, ingress-nginx and Rancher on
// top, and initializes a Cluster API provider for workload clusters.
//
// Commands: install, uninstall, doctor, init.
//
// For detailed usage information, run:
//
//	rancherup --help
package main

import (
	"fmt"
	"os"

	"github.com/rancherup/rancherup/cmd/rancherup/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
