package components

import (
	"context"

	"github.com/rancherup/rancherup/internal/config"
	"github.com/rancherup/rancherup/internal/helm"
)

const (
	certManagerNamespace  = "cert-manager"
	certManagerDeployment = "cert-manager"
	certManagerRelease    = "cert-manager"
	certManagerRepo       = "https://charts.jetstack.io"
	certManagerChart      = "cert-manager"
	certManagerVersion    = "v1.16.2"
)

// CertManagerStep installs cert-manager, which Rancher requires for its
// serving certificate regardless of the certificate source.
func CertManagerStep(h HelmInstaller, probe ClusterProbe, timeouts *config.Timeouts) Step {
	return Step{
		Name: "cert-manager",
		Probe: func(ctx context.Context) (bool, error) {
			exists, err := probe.NamespaceExists(ctx, certManagerNamespace)
			if err != nil || !exists {
				return false, err
			}
			return probe.DeploymentReady(ctx, certManagerNamespace, certManagerDeployment, 1)
		},
		Apply: func(ctx context.Context) error {
			return h.InstallOrUpgrade(ctx, helm.ChartSpec{
				ReleaseName: certManagerRelease,
				RepoURL:     certManagerRepo,
				ChartName:   certManagerChart,
				Version:     certManagerVersion,
				Namespace:   certManagerNamespace,
			}, buildCertManagerValues(), timeouts.HelmInstall)
		},
		Wait: func(ctx context.Context) error {
			return probe.WaitForDeployment(ctx, certManagerNamespace, certManagerDeployment, 1,
				timeouts.RolloutPollInterval, timeouts.CertManagerRollout)
		},
	}
}

func buildCertManagerValues() helm.Values {
	return helm.Values{
		"crds": helm.Values{"enabled": true},
		// The startup API check job races the webhook rollout on a
		// single-node cluster.
		"startupapicheck": helm.Values{"enabled": false},
	}
}
