// Package k8s wraps the client-go queries used to decide idempotency.
//
// Every readiness signal is derived from the live cluster at the moment it
// is needed; nothing is cached beyond a single check.
package k8s

import (
	"context"
	"fmt"
	"os"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/tools/clientcmd"
)

// Client provides cluster readiness queries for installer steps.
type Client struct {
	clientset kubernetes.Interface
}

// NewFromKubeconfigFile creates a Client from a kubeconfig path.
func NewFromKubeconfigFile(path string) (*Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read kubeconfig %s: %w", path, err)
	}
	return NewFromKubeconfig(data)
}

// NewFromKubeconfig creates a Client from kubeconfig bytes.
func NewFromKubeconfig(kubeconfig []byte) (*Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	return &Client{clientset: clientset}, nil
}

// NewFromClientset creates a Client from a pre-built clientset. Used by
// tests with the fake clientset.
func NewFromClientset(clientset kubernetes.Interface) *Client {
	return &Client{clientset: clientset}
}

// Reachable reports whether the API server answers at all.
func (c *Client) Reachable(ctx context.Context) bool {
	_, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{Limit: 1})
	return err == nil
}

// NodesReady reports whether at least one node has the Ready condition true.
func (c *Client) NodesReady(ctx context.Context) (bool, error) {
	nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to list nodes: %w", err)
	}

	for _, node := range nodes.Items {
		for _, cond := range node.Status.Conditions {
			if cond.Type == "Ready" && cond.Status == "True" {
				return true, nil
			}
		}
	}
	return false, nil
}

// NamespaceExists reports whether the namespace is present.
func (c *Client) NamespaceExists(ctx context.Context, name string) (bool, error) {
	_, err := c.clientset.CoreV1().Namespaces().Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get namespace %s: %w", name, err)
	}
	return true, nil
}

// DeploymentReady reports whether a deployment has at least minAvailable
// available replicas. A missing deployment is simply not ready.
func (c *Client) DeploymentReady(ctx context.Context, namespace, name string, minAvailable int32) (bool, error) {
	dep, err := c.clientset.AppsV1().Deployments(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get deployment %s/%s: %w", namespace, name, err)
	}
	return dep.Status.AvailableReplicas >= minAvailable, nil
}

// DaemonSetReady reports whether a daemonset has all desired pods available.
func (c *Client) DaemonSetReady(ctx context.Context, namespace, name string) (bool, error) {
	ds, err := c.clientset.AppsV1().DaemonSets(namespace).Get(ctx, name, metav1.GetOptions{})
	if apierrors.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get daemonset %s/%s: %w", namespace, name, err)
	}
	return ds.Status.DesiredNumberScheduled > 0 &&
		ds.Status.NumberAvailable >= ds.Status.DesiredNumberScheduled, nil
}
