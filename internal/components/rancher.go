package components

import (
	"context"

	"github.com/rancherup/rancherup/internal/config"
	"github.com/rancherup/rancherup/internal/helm"
)

const (
	// RancherNamespace is where the Rancher deployment lives.
	RancherNamespace = "cattle-system"

	// RancherDeployment is the Rancher server deployment name.
	RancherDeployment = "rancher"

	// RancherMinReplicas is the availability threshold for Rancher to
	// count as ready. Existence alone is not enough: a Rancher with fewer
	// available replicas is treated as needing (re)install.
	RancherMinReplicas = 3

	rancherRelease = "rancher"
	rancherRepo    = "https://releases.rancher.com/server-charts/stable"
	rancherChart   = "rancher"
	rancherVersion = "2.11.3"
)

// RancherStep installs the Rancher server behind the ingress controller.
func RancherStep(h HelmInstaller, probe ClusterProbe, cfg *config.Config, timeouts *config.Timeouts) Step {
	return Step{
		Name: "rancher",
		Probe: func(ctx context.Context) (bool, error) {
			exists, err := probe.NamespaceExists(ctx, RancherNamespace)
			if err != nil || !exists {
				return false, err
			}
			return probe.DeploymentReady(ctx, RancherNamespace, RancherDeployment, RancherMinReplicas)
		},
		Apply: func(ctx context.Context) error {
			return h.InstallOrUpgrade(ctx, helm.ChartSpec{
				ReleaseName: rancherRelease,
				RepoURL:     rancherRepo,
				ChartName:   rancherChart,
				Version:     rancherVersion,
				Namespace:   RancherNamespace,
			}, buildRancherValues(cfg), timeouts.HelmInstall)
		},
		Wait: func(ctx context.Context) error {
			return probe.WaitForDeployment(ctx, RancherNamespace, RancherDeployment, RancherMinReplicas,
				timeouts.RolloutPollInterval, timeouts.RancherRollout)
		},
	}
}

func buildRancherValues(cfg *config.Config) helm.Values {
	values := helm.Values{
		"hostname":          cfg.Hostname,
		"replicas":          RancherMinReplicas,
		"bootstrapPassword": cfg.BootstrapPassword,
		"ingress": helm.Values{
			"ingressClassName": "nginx",
			"tls": helm.Values{
				"source": tlsSource(cfg.CertType),
			},
		},
	}

	if cfg.CertType == config.CertTypeLetsEncrypt {
		values["letsEncrypt"] = helm.Values{
			"email":       cfg.Email,
			"environment": "production",
			"ingress": helm.Values{
				"class": "nginx",
			},
		}
	}

	return values
}

// tlsSource maps the certificate type to the chart's TLS source value.
func tlsSource(certType config.CertType) string {
	if certType == config.CertTypeLetsEncrypt {
		return "letsEncrypt"
	}
	return "secret"
}
