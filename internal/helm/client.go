// Package helm installs charts in-process through the Helm v3 action API.
package helm

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"helm.sh/helm/v3/pkg/action"
	"helm.sh/helm/v3/pkg/chart"
	"helm.sh/helm/v3/pkg/chart/loader"
	"helm.sh/helm/v3/pkg/cli"
	"helm.sh/helm/v3/pkg/getter"
	"helm.sh/helm/v3/pkg/registry"
	"helm.sh/helm/v3/pkg/repo"
)

// ChartSpec identifies a chart release.
type ChartSpec struct {
	ReleaseName string
	RepoURL     string
	ChartName   string
	Version     string
	Namespace   string
}

// Client performs Helm operations against one namespace.
type Client struct {
	kubeconfig   []byte
	namespace    string
	actionConfig *action.Configuration
}

// NewClient creates a Helm client from kubeconfig bytes scoped to a namespace.
func NewClient(kubeconfig []byte, namespace string) (*Client, error) {
	c := &Client{
		kubeconfig: kubeconfig,
		namespace:  namespace,
	}

	actionConfig := new(action.Configuration)
	restGetter := NewInMemoryRESTClientGetter(kubeconfig, namespace)

	// No-op logger: helm debug output has no place in the audit log.
	if err := actionConfig.Init(restGetter, namespace, "secret", func(format string, v ...interface{}) {}); err != nil {
		return nil, fmt.Errorf("failed to initialize helm action config: %w", err)
	}

	c.actionConfig = actionConfig
	return c, nil
}

// InstallOrUpgrade installs the chart, or upgrades it if the release exists.
func (c *Client) InstallOrUpgrade(ctx context.Context, spec ChartSpec, values map[string]any, timeout time.Duration) error {
	exists, err := c.ReleaseExists(spec.ReleaseName)
	if err != nil {
		return err
	}

	ch, err := c.loadChart(spec)
	if err != nil {
		return fmt.Errorf("failed to load chart %s: %w", spec.ChartName, err)
	}

	if exists {
		upgradeClient := action.NewUpgrade(c.actionConfig)
		upgradeClient.Namespace = spec.Namespace
		upgradeClient.Version = spec.Version
		upgradeClient.Wait = true
		upgradeClient.Timeout = timeout
		upgradeClient.ReuseValues = false

		_, err = upgradeClient.RunWithContext(ctx, spec.ReleaseName, ch, values)
		if err != nil {
			return fmt.Errorf("failed to upgrade release %s: %w", spec.ReleaseName, err)
		}
		return nil
	}

	installClient := action.NewInstall(c.actionConfig)
	installClient.ReleaseName = spec.ReleaseName
	installClient.Namespace = spec.Namespace
	installClient.CreateNamespace = true
	installClient.Version = spec.Version
	installClient.Wait = true
	installClient.Timeout = timeout

	_, err = installClient.RunWithContext(ctx, ch, values)
	if err != nil {
		return fmt.Errorf("failed to install release %s: %w", spec.ReleaseName, err)
	}
	return nil
}

// Uninstall removes a release. A missing release is reported as an error by
// helm; callers decide whether that is fatal.
func (c *Client) Uninstall(releaseName string, timeout time.Duration) error {
	uninstallClient := action.NewUninstall(c.actionConfig)
	uninstallClient.Wait = true
	uninstallClient.Timeout = timeout

	_, err := uninstallClient.Run(releaseName)
	if err != nil {
		return fmt.Errorf("failed to uninstall release %s: %w", releaseName, err)
	}
	return nil
}

// ReleaseExists reports whether the release has any history.
func (c *Client) ReleaseExists(releaseName string) (bool, error) {
	histClient := action.NewHistory(c.actionConfig)
	histClient.Max = 1
	if _, err := histClient.Run(releaseName); err != nil {
		return false, nil
	}
	return true, nil
}

func (c *Client) loadChart(spec ChartSpec) (*chart.Chart, error) {
	settings := cli.New()

	registryClient, err := registry.NewClient(
		registry.ClientOptDebug(false),
		registry.ClientOptWriter(io.Discard),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create registry client: %w", err)
	}
	_ = registryClient

	chartPath, err := repo.FindChartInRepoURL(
		spec.RepoURL,
		spec.ChartName,
		spec.Version,
		"", "", "",
		getter.All(settings),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find chart %s in repo %s: %w", spec.ChartName, spec.RepoURL, err)
	}

	defer func() {
		_ = os.Remove(chartPath)
	}()

	return loader.Load(chartPath)
}
