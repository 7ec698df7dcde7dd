package k8s

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes/fake"
)

func namespace(name string) *corev1.Namespace {
	return &corev1.Namespace{ObjectMeta: metav1.ObjectMeta{Name: name}}
}

func deployment(ns, name string, available int32) *appsv1.Deployment {
	return &appsv1.Deployment{
		ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name},
		Status:     appsv1.DeploymentStatus{AvailableReplicas: available},
	}
}

func daemonset(ns, name string, desired, available int32) *appsv1.DaemonSet {
	return &appsv1.DaemonSet{
		ObjectMeta: metav1.ObjectMeta{Namespace: ns, Name: name},
		Status: appsv1.DaemonSetStatus{
			DesiredNumberScheduled: desired,
			NumberAvailable:        available,
		},
	}
}

func readyNode(name string) *corev1.Node {
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeReady, Status: corev1.ConditionTrue},
			},
		},
	}
}

func TestNamespaceExists(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(namespace("cattle-system")))

	exists, err := c.NamespaceExists(context.Background(), "cattle-system")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = c.NamespaceExists(context.Background(), "cert-manager")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeploymentReadyThreshold(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(deployment("cattle-system", "rancher", 2)))

	// Two available replicas satisfy a threshold of one but not of three.
	ready, err := c.DeploymentReady(context.Background(), "cattle-system", "rancher", 1)
	require.NoError(t, err)
	assert.True(t, ready)

	ready, err = c.DeploymentReady(context.Background(), "cattle-system", "rancher", 3)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestDeploymentReadyMissingIsNotReady(t *testing.T) {
	c := NewFromClientset(fake.NewClientset())

	ready, err := c.DeploymentReady(context.Background(), "cattle-system", "rancher", 1)
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestDaemonSetReady(t *testing.T) {
	tests := []struct {
		name      string
		desired   int32
		available int32
		want      bool
	}{
		{"all available", 1, 1, true},
		{"partially available", 3, 2, false},
		{"nothing scheduled yet", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewFromClientset(fake.NewClientset(
				daemonset("ingress-nginx", "ingress-nginx-controller", tt.desired, tt.available)))

			ready, err := c.DaemonSetReady(context.Background(), "ingress-nginx", "ingress-nginx-controller")
			require.NoError(t, err)
			assert.Equal(t, tt.want, ready)
		})
	}
}

func TestNodesReady(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(readyNode("node1")))
	ready, err := c.NodesReady(context.Background())
	require.NoError(t, err)
	assert.True(t, ready)

	c = NewFromClientset(fake.NewClientset())
	ready, err = c.NodesReady(context.Background())
	require.NoError(t, err)
	assert.False(t, ready)
}

func TestReachable(t *testing.T) {
	c := NewFromClientset(fake.NewClientset())
	assert.True(t, c.Reachable(context.Background()))
}

func TestWaitForDeploymentSucceedsWhenReady(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(deployment("cert-manager", "cert-manager", 1)))

	err := c.WaitForDeployment(context.Background(), "cert-manager", "cert-manager", 1,
		5*time.Millisecond, 100*time.Millisecond)
	assert.NoError(t, err)
}

func TestWaitForDeploymentTimesOut(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(deployment("cattle-system", "rancher", 1)))

	err := c.WaitForDeployment(context.Background(), "cattle-system", "rancher", 3,
		5*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not reach 3 available replicas")
}

func TestWaitForDaemonSetTimesOut(t *testing.T) {
	c := NewFromClientset(fake.NewClientset(daemonset("ingress-nginx", "ingress-nginx-controller", 1, 0)))

	err := c.WaitForDaemonSet(context.Background(), "ingress-nginx", "ingress-nginx-controller",
		5*time.Millisecond, 50*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "did not become available")
}
