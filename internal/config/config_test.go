package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty hostname",
			mutate:  func(c *Config) { c.Hostname = "" },
			wantErr: "hostname",
		},
		{
			name:    "unknown cert type",
			mutate:  func(c *Config) { c.CertType = "acme" },
			wantErr: "invalid cert-type",
		},
		{
			name:    "letsencrypt without email",
			mutate:  func(c *Config) { c.CertType = CertTypeLetsEncrypt },
			wantErr: "requires --email",
		},
		{
			name: "letsencrypt with email",
			mutate: func(c *Config) {
				c.CertType = CertTypeLetsEncrypt
				c.Email = "ops@example.com"
			},
		},
		{
			name:    "unknown ingress mode",
			mutate:  func(c *Config) { c.IngressMode = "loadbalancer" },
			wantErr: "invalid ingress-mode",
		},
		{
			name:    "empty ingress mode",
			mutate:  func(c *Config) { c.IngressMode = "" },
			wantErr: "invalid ingress-mode",
		},
		{
			name:    "unknown capi provider",
			mutate:  func(c *Config) { c.CAPIProvider = "gcp" },
			wantErr: "invalid capi-provider",
		},
		{
			name:   "nodeport and vcluster",
			mutate: func(c *Config) { c.IngressMode = IngressModeNodePort; c.CAPIProvider = ProviderVCluster },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadFileOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rancherup.yaml")
	content := "hostname: rancher.example.com\ncert_type: letsencrypt\nemail: ops@example.com\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "rancher.example.com", cfg.Hostname)
	assert.Equal(t, CertTypeLetsEncrypt, cfg.CertType)
	assert.Equal(t, "ops@example.com", cfg.Email)
	// Untouched fields keep their defaults.
	assert.Equal(t, IngressModeHostPort, cfg.IngressMode)
	assert.Equal(t, ProviderK3k, cfg.CAPIProvider)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.yaml")
	cfg := Default()
	cfg.Hostname = "mgmt.example.com"
	cfg.IngressMode = IngressModeNodePort

	require.NoError(t, WriteFile(path, cfg))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.Hostname, loaded.Hostname)
	assert.Equal(t, cfg.IngressMode, loaded.IngressMode)
}

func TestLoadTimeoutsDefaults(t *testing.T) {
	tm := LoadTimeouts()

	assert.Equal(t, 3*time.Second, tm.APIPollInterval)
	assert.Equal(t, 300*time.Second, tm.APIWait)
	assert.Equal(t, 10*time.Minute, tm.RancherRollout)
}

func TestLoadTimeoutsEnvOverride(t *testing.T) {
	t.Setenv("RANCHERUP_API_WAIT", "90s")
	t.Setenv("RANCHERUP_RANCHER_ROLLOUT", "not-a-duration")

	tm := LoadTimeouts()

	assert.Equal(t, 90*time.Second, tm.APIWait)
	// Unparseable values fall back to the default.
	assert.Equal(t, 10*time.Minute, tm.RancherRollout)
}
