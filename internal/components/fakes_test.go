package components

import (
	"context"
	"time"

	"github.com/rancherup/rancherup/internal/helm"
)

// fakeHelm records chart installs.
type fakeHelm struct {
	installs []helm.ChartSpec
	values   []map[string]any
	err      error
}

func (f *fakeHelm) InstallOrUpgrade(_ context.Context, spec helm.ChartSpec, values map[string]any, _ time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.installs = append(f.installs, spec)
	f.values = append(f.values, values)
	return nil
}

// fakeProbe scripts cluster state.
type fakeProbe struct {
	namespaces  map[string]bool
	deployments map[string]int32 // "ns/name" -> available replicas
	daemonsets  map[string]bool  // "ns/name" -> ready
	waitErr     error
	waited      []string
}

func newFakeProbe() *fakeProbe {
	return &fakeProbe{
		namespaces:  map[string]bool{},
		deployments: map[string]int32{},
		daemonsets:  map[string]bool{},
	}
}

func (f *fakeProbe) NamespaceExists(_ context.Context, name string) (bool, error) {
	return f.namespaces[name], nil
}

func (f *fakeProbe) DeploymentReady(_ context.Context, ns, name string, minAvailable int32) (bool, error) {
	return f.deployments[ns+"/"+name] >= minAvailable && f.deployments[ns+"/"+name] > 0, nil
}

func (f *fakeProbe) DaemonSetReady(_ context.Context, ns, name string) (bool, error) {
	return f.daemonsets[ns+"/"+name], nil
}

func (f *fakeProbe) WaitForDeployment(_ context.Context, ns, name string, _ int32, _, _ time.Duration) error {
	f.waited = append(f.waited, "deployment:"+ns+"/"+name)
	return f.waitErr
}

func (f *fakeProbe) WaitForDaemonSet(_ context.Context, ns, name string, _, _ time.Duration) error {
	f.waited = append(f.waited, "daemonset:"+ns+"/"+name)
	return f.waitErr
}
