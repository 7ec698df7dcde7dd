// Package config holds the immutable per-invocation configuration.
//
// Values come from CLI flags, optionally preloaded from a YAML file written
// by `rancherup init`. Configuration is validated once, up front; an invalid
// enumerated value is a fatal configuration error and nothing is installed
// after one is found.
package config

import (
	"fmt"
)

// CertType selects where Rancher's TLS certificate comes from.
type CertType string

const (
	// CertTypeSelfSigned serves Rancher behind a self-signed certificate
	// stored in a secret.
	CertTypeSelfSigned CertType = "self-signed"

	// CertTypeLetsEncrypt provisions certificates through Let's Encrypt.
	CertTypeLetsEncrypt CertType = "letsencrypt"
)

// IngressMode selects the ingress controller topology.
type IngressMode string

const (
	// IngressModeHostPort runs the controller as a host-network DaemonSet.
	IngressModeHostPort IngressMode = "hostport"

	// IngressModeNodePort runs the controller as a Deployment behind a
	// NodePort service.
	IngressModeNodePort IngressMode = "nodeport"
)

// CAPIProvider selects which Cluster API infrastructure provider to initialize.
type CAPIProvider string

const (
	// ProviderK3k provisions workload clusters as in-cluster k3k virtual clusters.
	ProviderK3k CAPIProvider = "k3k"

	// ProviderVCluster provisions workload clusters as vcluster virtual clusters.
	ProviderVCluster CAPIProvider = "vcluster"

	// ProviderAWS provisions workload clusters on AWS via CAPA.
	ProviderAWS CAPIProvider = "aws"
)

// Config holds one invocation's settings.
type Config struct {
	Hostname          string       `yaml:"hostname"`
	BootstrapPassword string       `yaml:"bootstrap_password"`
	Email             string       `yaml:"email"`
	CertType          CertType     `yaml:"cert_type"`
	IngressMode       IngressMode  `yaml:"ingress_mode"`
	CAPIProvider      CAPIProvider `yaml:"capi_provider"`

	// Force reinstalls even when a previous run left a marker file or a
	// cluster is already answering API queries.
	Force bool `yaml:"-"`

	// DryRun suppresses every mutating action process-wide: no external
	// commands, no chart installs, no marker file.
	DryRun bool `yaml:"-"`
}

// Default returns the configuration used when no flags are given.
func Default() *Config {
	return &Config{
		Hostname:          "rancher.local",
		BootstrapPassword: "admin",
		CertType:          CertTypeSelfSigned,
		IngressMode:       IngressModeHostPort,
		CAPIProvider:      ProviderK3k,
	}
}

// Validate rejects invalid enumerated values and missing required settings.
func (c *Config) Validate() error {
	if c.Hostname == "" {
		return fmt.Errorf("hostname must not be empty")
	}

	switch c.CertType {
	case CertTypeSelfSigned, CertTypeLetsEncrypt:
	default:
		return fmt.Errorf("invalid cert-type %q: must be %q or %q",
			c.CertType, CertTypeSelfSigned, CertTypeLetsEncrypt)
	}

	if c.CertType == CertTypeLetsEncrypt && c.Email == "" {
		return fmt.Errorf("cert-type %q requires --email", CertTypeLetsEncrypt)
	}

	switch c.IngressMode {
	case IngressModeHostPort, IngressModeNodePort:
	default:
		return fmt.Errorf("invalid ingress-mode %q: must be %q or %q",
			c.IngressMode, IngressModeHostPort, IngressModeNodePort)
	}

	switch c.CAPIProvider {
	case ProviderK3k, ProviderVCluster, ProviderAWS:
	default:
		return fmt.Errorf("invalid capi-provider %q: must be %q, %q or %q",
			c.CAPIProvider, ProviderK3k, ProviderVCluster, ProviderAWS)
	}

	return nil
}
