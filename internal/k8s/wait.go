package k8s

import (
	"context"
	"fmt"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"
)

// WaitForDeployment polls until the deployment has minAvailable available
// replicas or the timeout elapses. Poll-until-deadline, no backoff.
func (c *Client) WaitForDeployment(ctx context.Context, namespace, name string, minAvailable int32, interval, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(ctx context.Context) (bool, error) {
			ready, err := c.DeploymentReady(ctx, namespace, name, minAvailable)
			if err != nil {
				// Transient API errors just mean "not ready yet".
				return false, nil
			}
			return ready, nil
		})
	if err != nil {
		return fmt.Errorf("deployment %s/%s did not reach %d available replicas within %s: %w",
			namespace, name, minAvailable, timeout, err)
	}
	return nil
}

// WaitForDaemonSet polls until the daemonset has all desired pods available
// or the timeout elapses.
func (c *Client) WaitForDaemonSet(ctx context.Context, namespace, name string, interval, timeout time.Duration) error {
	err := wait.PollUntilContextTimeout(ctx, interval, timeout, true,
		func(ctx context.Context) (bool, error) {
			ready, err := c.DaemonSetReady(ctx, namespace, name)
			if err != nil {
				return false, nil
			}
			return ready, nil
		})
	if err != nil {
		return fmt.Errorf("daemonset %s/%s did not become available within %s: %w",
			namespace, name, timeout, err)
	}
	return nil
}
