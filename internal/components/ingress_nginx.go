package components

import (
	"context"

	"github.com/rancherup/rancherup/internal/config"
	"github.com/rancherup/rancherup/internal/helm"
)

const (
	ingressNamespace      = "ingress-nginx"
	ingressControllerName = "ingress-nginx-controller"
	ingressRelease        = "ingress-nginx"
	ingressRepo           = "https://kubernetes.github.io/ingress-nginx"
	ingressChart          = "ingress-nginx"
	ingressVersion        = "4.12.1"
)

// IngressNginxStep installs the NGINX ingress controller in the topology
// selected by the ingress mode: a host-network DaemonSet for hostport, a
// Deployment behind a NodePort service for nodeport. The mode is validated
// before any step runs; by the time this step executes only the two legal
// values are possible.
func IngressNginxStep(h HelmInstaller, probe ClusterProbe, cfg *config.Config, timeouts *config.Timeouts) Step {
	return Step{
		Name: "ingress-nginx",
		Probe: func(ctx context.Context) (bool, error) {
			exists, err := probe.NamespaceExists(ctx, ingressNamespace)
			if err != nil || !exists {
				return false, err
			}
			if cfg.IngressMode == config.IngressModeHostPort {
				return probe.DaemonSetReady(ctx, ingressNamespace, ingressControllerName)
			}
			return probe.DeploymentReady(ctx, ingressNamespace, ingressControllerName, 1)
		},
		Apply: func(ctx context.Context) error {
			return h.InstallOrUpgrade(ctx, helm.ChartSpec{
				ReleaseName: ingressRelease,
				RepoURL:     ingressRepo,
				ChartName:   ingressChart,
				Version:     ingressVersion,
				Namespace:   ingressNamespace,
			}, buildIngressValues(cfg.IngressMode), timeouts.HelmInstall)
		},
		Wait: func(ctx context.Context) error {
			if cfg.IngressMode == config.IngressModeHostPort {
				return probe.WaitForDaemonSet(ctx, ingressNamespace, ingressControllerName,
					timeouts.RolloutPollInterval, timeouts.IngressRollout)
			}
			return probe.WaitForDeployment(ctx, ingressNamespace, ingressControllerName, 1,
				timeouts.RolloutPollInterval, timeouts.IngressRollout)
		},
	}
}

func buildIngressValues(mode config.IngressMode) helm.Values {
	base := helm.Values{
		"ingressClassResource": helm.Values{
			"name":    "nginx",
			"default": true,
		},
		// Rancher's ingress carries large websocket payloads.
		"allowSnippetAnnotations": true,
	}

	var topology helm.Values
	if mode == config.IngressModeHostPort {
		topology = helm.Values{
			"kind":        "DaemonSet",
			"hostNetwork": true,
			"hostPort":    helm.Values{"enabled": true},
			"dnsPolicy":   "ClusterFirstWithHostNet",
			"service":     helm.Values{"enabled": false},
		}
	} else {
		topology = helm.Values{
			"kind": "Deployment",
			"service": helm.Values{
				"enabled": true,
				"type":    "NodePort",
			},
		}
	}

	return helm.Values{"controller": helm.Merge(base, topology)}
}
