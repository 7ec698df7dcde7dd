package handlers

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancherup/rancherup/internal/components"
	"github.com/rancherup/rancherup/internal/state"
)

// reachableProbe wraps fakeProbe with the Reachable method doctor sniffs for.
type reachableProbe struct {
	fakeProbe
	reachable bool
}

func (r *reachableProbe) Reachable(context.Context) bool { return r.reachable }

func TestCollectStatusNoCluster(t *testing.T) {
	env := setupInstallEnv(t)
	_ = env

	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })
	lookPath = func(name string) (string, error) {
		if name == "curl" || name == "helm" {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}

	readKubeconfig = func() ([]byte, error) { return nil, errors.New("no kubeconfig") }

	status := collectStatus(context.Background())

	assert.True(t, status.OSSupported)
	assert.Equal(t, "amd64", status.Arch)
	assert.True(t, status.Tools["curl"])
	assert.True(t, status.Tools["helm"])
	assert.False(t, status.Tools["kubectl"])
	assert.False(t, status.Tools["clusterctl"])
	assert.False(t, status.RecordPresent)
	assert.False(t, status.APIReachable)
	assert.Empty(t, status.Components)
}

func TestCollectStatusWithClusterAndRecord(t *testing.T) {
	env := setupInstallEnv(t)
	require.NoError(t, env.store.Write(&state.Record{
		InstalledBy: "rancherup",
		Version:     "0.1.0",
		Arch:        "amd64",
		Date:        time.Now(),
		RKE2:        true,
		Rancher:     true,
	}))

	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })
	lookPath = func(string) (string, error) { return "/usr/bin/tool", nil }

	probe := &reachableProbe{reachable: true}
	probe.everythingReady = true
	newClusterProbe = func([]byte) (components.ClusterProbe, error) { return probe, nil }

	status := collectStatus(context.Background())

	assert.True(t, status.RecordPresent)
	assert.Contains(t, status.InstalledComponents, "rke2")
	assert.True(t, status.APIReachable)
	for _, name := range componentNames {
		assert.True(t, status.Components[name].Installed, name)
		assert.True(t, status.Components[name].Ready, name)
	}
}

func TestCollectStatusUnreachableAPI(t *testing.T) {
	env := setupInstallEnv(t)
	_ = env

	origLookPath := lookPath
	t.Cleanup(func() { lookPath = origLookPath })
	lookPath = func(string) (string, error) { return "", errors.New("not found") }

	probe := &reachableProbe{reachable: false}
	newClusterProbe = func([]byte) (components.ClusterProbe, error) { return probe, nil }

	status := collectStatus(context.Background())

	assert.False(t, status.APIReachable)
	assert.Empty(t, status.Components)
}
