package components

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"sigs.k8s.io/yaml"

	"github.com/rancherup/rancherup/internal/config"
)

// WorkloadManifestPath is where the rendered workload-cluster manifest is
// written for the operator to apply with clusterctl or kubectl.
const WorkloadManifestPath = "/var/lib/rancherup/workload-cluster.yaml"

// workloadTemplate is the Cluster custom resource for a virtual workload
// cluster: control-plane endpoint plus an embedded chart-values block for
// the provider chart.
const workloadTemplate = `apiVersion: cluster.x-k8s.io/v1beta1
kind: Cluster
metadata:
  name: workload-1
  namespace: default
spec:
  controlPlaneEndpoint:
    host: {{ .Hostname }}
    port: 6443
  infrastructureRef:
    apiVersion: infrastructure.cluster.x-k8s.io/v1alpha1
    kind: {{ .Kind }}
    name: workload-1
---
apiVersion: infrastructure.cluster.x-k8s.io/v1alpha1
kind: {{ .Kind }}
metadata:
  name: workload-1
  namespace: default
spec:
  helmValues: |
    ingress:
      className: nginx
    hostname: {{ .Hostname }}
`

// workloadKinds maps virtual-cluster providers to their infrastructure kind.
var workloadKinds = map[config.CAPIProvider]string{
	config.ProviderK3k:      "K3kCluster",
	config.ProviderVCluster: "VCluster",
}

// RenderWorkloadManifest renders the workload-cluster manifest for virtual
// cluster providers. AWS workload clusters are defined through clusterctl
// generate instead, so the aws provider renders nothing.
func RenderWorkloadManifest(cfg *config.Config) ([]byte, error) {
	kind, ok := workloadKinds[cfg.CAPIProvider]
	if !ok {
		return nil, nil
	}

	tmpl, err := template.New("workload").Parse(workloadTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse workload template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct {
		Hostname string
		Kind     string
	}{Hostname: cfg.Hostname, Kind: kind}); err != nil {
		return nil, fmt.Errorf("failed to render workload manifest: %w", err)
	}

	// Round-trip each document to catch template output that is not valid
	// YAML before it reaches the cluster.
	for _, doc := range bytes.Split(buf.Bytes(), []byte("\n---\n")) {
		var check map[string]any
		if err := yaml.Unmarshal(doc, &check); err != nil {
			return nil, fmt.Errorf("rendered workload manifest is not valid YAML: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// WriteWorkloadManifest renders and persists the manifest at path.
// Rendering nothing (aws provider) writes nothing.
func WriteWorkloadManifest(cfg *config.Config, path string) error {
	data, err := RenderWorkloadManifest(cfg)
	if err != nil {
		return err
	}
	if data == nil {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create manifest directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write workload manifest: %w", err)
	}
	return nil
}
