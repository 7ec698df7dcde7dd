package config

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
)

// RunWizard walks the user through the interactive configuration form and
// returns a validated Config. Defaults match Default().
func RunWizard(ctx context.Context) (*Config, error) {
	cfg := Default()

	form := huh.NewForm(
		// Rancher identity
		huh.NewGroup(
			huh.NewInput().
				Title("Rancher hostname").
				Description("The hostname the Rancher UI will be served on").
				Placeholder("rancher.local").
				Value(&cfg.Hostname).
				Validate(validateHostname),

			huh.NewInput().
				Title("Bootstrap password").
				Description("Initial admin password for the Rancher UI").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.BootstrapPassword).
				Validate(validatePassword),
		),

		// TLS
		huh.NewGroup(
			huh.NewSelect[CertType]().
				Title("Certificate type").
				Description("self-signed works everywhere | letsencrypt needs a public hostname").
				Options(
					huh.NewOption("Self-signed certificate", CertTypeSelfSigned),
					huh.NewOption("Let's Encrypt", CertTypeLetsEncrypt),
				).
				Value(&cfg.CertType),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Email").
				Description("Registration email for Let's Encrypt").
				Placeholder("admin@example.com").
				Value(&cfg.Email).
				Validate(validateEmail),
		).WithHideFunc(func() bool {
			return cfg.CertType != CertTypeLetsEncrypt
		}),

		// Ingress topology
		huh.NewGroup(
			huh.NewSelect[IngressMode]().
				Title("Ingress mode").
				Description("hostport: DaemonSet on host ports 80/443 | nodeport: Deployment behind a NodePort service").
				Options(
					huh.NewOption("Host port (DaemonSet)", IngressModeHostPort),
					huh.NewOption("Node port (Deployment + NodePort)", IngressModeNodePort),
				).
				Value(&cfg.IngressMode),
		),

		// Workload cluster provider
		huh.NewGroup(
			huh.NewSelect[CAPIProvider]().
				Title("Cluster API provider").
				Description("Infrastructure provider for workload clusters").
				Options(
					huh.NewOption("k3k (in-cluster virtual clusters)", ProviderK3k),
					huh.NewOption("vcluster (in-cluster virtual clusters)", ProviderVCluster),
					huh.NewOption("AWS (CAPA, needs AWS credentials)", ProviderAWS),
				).
				Value(&cfg.CAPIProvider),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateHostname(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("hostname must not be empty")
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("hostname must not contain whitespace")
	}
	return nil
}

func validatePassword(s string) error {
	if s == "" {
		return fmt.Errorf("password must not be empty")
	}
	return nil
}

func validateEmail(s string) error {
	if s == "" {
		return fmt.Errorf("email is required for Let's Encrypt")
	}
	if !strings.Contains(s, "@") {
		return fmt.Errorf("email must contain @")
	}
	return nil
}
