package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/rancherup/rancherup/internal/config"
)

// Factory function variables for init - can be replaced in tests.
var (
	// fileExists checks if a file exists.
	fileExists = func(path string) bool {
		_, err := os.Stat(path)
		return err == nil
	}

	// runWizard runs the interactive configuration form.
	runWizard = config.RunWizard

	// writeConfigFile writes the config to a file.
	writeConfigFile = config.WriteFile
)

// Init runs the configuration wizard and writes the result to a file.
func Init(ctx context.Context, outputPath string) error {
	if fileExists(outputPath) {
		fmt.Printf("Warning: %s already exists and will be overwritten.\n\n", outputPath)
	}

	printWelcome()

	cfg, err := runWizard(ctx)
	if err != nil {
		return err
	}

	if err := writeConfigFile(outputPath, cfg); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	printInitSuccess(outputPath, cfg)
	return nil
}

func printWelcome() {
	fmt.Println()
	fmt.Println("rancherup - Rancher on a single node")
	fmt.Println("====================================")
	fmt.Println()
	fmt.Println("This wizard creates an install configuration with sensible defaults.")
	fmt.Println()
}

func printInitSuccess(outputPath string, cfg *config.Config) {
	fmt.Println()
	fmt.Println("Configuration saved!")
	fmt.Println()
	fmt.Printf("  File: %s\n", outputPath)
	fmt.Println()

	fmt.Println("Install Summary")
	fmt.Println("---------------")
	fmt.Printf("  Hostname:      %s\n", cfg.Hostname)
	fmt.Printf("  Certificates:  %s\n", cfg.CertType)
	if cfg.Email != "" {
		fmt.Printf("  Email:         %s\n", cfg.Email)
	}
	fmt.Printf("  Ingress mode:  %s\n", cfg.IngressMode)
	fmt.Printf("  CAPI provider: %s\n", cfg.CAPIProvider)
	fmt.Println()

	fmt.Println("Next Steps")
	fmt.Println("----------")
	fmt.Printf("  1. Review %s\n", outputPath)
	fmt.Printf("  2. Run: sudo rancherup install -c %s\n", outputPath)
	fmt.Println()
}
