package components

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"

	"github.com/rancherup/rancherup/internal/config"
	"github.com/rancherup/rancherup/internal/platform/host"
)

const (
	capiNamespace  = "capi-system"
	capiController = "capi-controller-manager"
)

// providerNamespaces maps each infrastructure provider to the namespace its
// controller is installed into. Used as the existence probe.
var providerNamespaces = map[config.CAPIProvider]string{
	config.ProviderK3k:      "capi-k3k-system",
	config.ProviderVCluster: "cluster-api-provider-vcluster-system",
	config.ProviderAWS:      "capa-system",
}

// awsCredentialsCheck verifies AWS credentials resolve before CAPA is
// initialized. Overridable in tests.
var awsCredentialsCheck = func(ctx context.Context) error {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load AWS configuration: %w", err)
	}
	if _, err := awsCfg.Credentials.Retrieve(ctx); err != nil {
		return fmt.Errorf("AWS credentials did not resolve: %w", err)
	}
	return nil
}

// CAPIStep initializes Cluster API with the selected infrastructure
// provider via clusterctl. The provider enum is validated with the rest of
// the configuration before any step runs.
func CAPIStep(runner host.Runner, probe ClusterProbe, cfg *config.Config, timeouts *config.Timeouts, kubeconfigPath string) Step {
	return Step{
		Name: fmt.Sprintf("cluster-api (%s)", cfg.CAPIProvider),
		Probe: func(ctx context.Context) (bool, error) {
			exists, err := probe.NamespaceExists(ctx, capiNamespace)
			if err != nil || !exists {
				return false, err
			}
			return probe.NamespaceExists(ctx, providerNamespaces[cfg.CAPIProvider])
		},
		Apply: func(ctx context.Context) error {
			if cfg.CAPIProvider == config.ProviderAWS {
				if err := awsCredentialsCheck(ctx); err != nil {
					return err
				}
			}
			return runner.Run(ctx, "clusterctl", "init",
				"--kubeconfig", kubeconfigPath,
				"--infrastructure", string(cfg.CAPIProvider))
		},
		Wait: func(ctx context.Context) error {
			return probe.WaitForDeployment(ctx, capiNamespace, capiController, 1,
				timeouts.RolloutPollInterval, timeouts.CAPIRollout)
		},
	}
}
