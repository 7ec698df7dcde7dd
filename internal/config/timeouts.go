package config

import (
	"os"
	"time"
)

// Timeouts holds every bounded-wait ceiling in the system. All waits are
// poll-until-deadline; there is no retry or backoff anywhere.
type Timeouts struct {
	// APIPollInterval is how often the bootstrapper probes the API server
	// while waiting for RKE2 to come up.
	APIPollInterval time.Duration

	// APIWait is the total budget for the API server to answer after the
	// RKE2 install command returns. Exceeding it is fatal.
	APIWait time.Duration

	// RolloutPollInterval is how often component rollout probes run.
	RolloutPollInterval time.Duration

	// CertManagerRollout bounds the cert-manager deployment rollout.
	CertManagerRollout time.Duration

	// IngressRollout bounds the ingress controller rollout.
	IngressRollout time.Duration

	// RancherRollout bounds the Rancher deployment rollout. Rancher is the
	// slowest component and gets the largest budget.
	RancherRollout time.Duration

	// CAPIRollout bounds the Cluster API controller rollout.
	CAPIRollout time.Duration

	// HelmInstall bounds each in-process Helm install or upgrade.
	HelmInstall time.Duration
}

// LoadTimeouts returns the timeout configuration. Each value can be
// overridden via an environment variable holding a Go duration string;
// unset or unparseable values fall back to the default.
//
// Environment variables:
//   - RANCHERUP_API_POLL_INTERVAL (default: 3s)
//   - RANCHERUP_API_WAIT (default: 300s)
//   - RANCHERUP_ROLLOUT_POLL_INTERVAL (default: 5s)
//   - RANCHERUP_CERT_MANAGER_ROLLOUT (default: 3m)
//   - RANCHERUP_INGRESS_ROLLOUT (default: 5m)
//   - RANCHERUP_RANCHER_ROLLOUT (default: 10m)
//   - RANCHERUP_CAPI_ROLLOUT (default: 5m)
//   - RANCHERUP_HELM_INSTALL (default: 10m)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		APIPollInterval:     parseDuration("RANCHERUP_API_POLL_INTERVAL", 3*time.Second),
		APIWait:             parseDuration("RANCHERUP_API_WAIT", 300*time.Second),
		RolloutPollInterval: parseDuration("RANCHERUP_ROLLOUT_POLL_INTERVAL", 5*time.Second),
		CertManagerRollout:  parseDuration("RANCHERUP_CERT_MANAGER_ROLLOUT", 3*time.Minute),
		IngressRollout:      parseDuration("RANCHERUP_INGRESS_ROLLOUT", 5*time.Minute),
		RancherRollout:      parseDuration("RANCHERUP_RANCHER_ROLLOUT", 10*time.Minute),
		CAPIRollout:         parseDuration("RANCHERUP_CAPI_ROLLOUT", 5*time.Minute),
		HelmInstall:         parseDuration("RANCHERUP_HELM_INSTALL", 10*time.Minute),
	}
}

func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil {
		return defaultVal
	}

	return d
}
