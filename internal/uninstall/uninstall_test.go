package uninstall

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rancherup/rancherup/internal/audit"
	"github.com/rancherup/rancherup/internal/platform/host"
	"github.com/rancherup/rancherup/internal/state"
)

type fakeHelm struct {
	releases    map[string]bool
	uninstalled []string
	failOn      map[string]error
}

func (f *fakeHelm) Uninstall(releaseName string, _ time.Duration) error {
	if err, ok := f.failOn[releaseName]; ok {
		return err
	}
	f.uninstalled = append(f.uninstalled, releaseName)
	return nil
}

func (f *fakeHelm) ReleaseExists(releaseName string) (bool, error) {
	return f.releases[releaseName], nil
}

func writeRecord(t *testing.T, rec state.Record) *state.Store {
	t.Helper()
	store := &state.Store{Path: filepath.Join(t.TempDir(), "install-record")}
	require.NoError(t, store.Write(&rec))
	return store
}

func testRecord() state.Record {
	return state.Record{
		InstalledBy: "rancherup",
		Version:     "0.1.0",
		Arch:        "amd64",
		Date:        time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC),
		RKE2:        true,
		Curl:        false,
		Kubectl:     true,
		Helm:        true,
		Clusterctl:  true,
		Rancher:     true,
	}
}

func newUninstaller(store *state.Store, runner *host.Recorder, helm *fakeHelm) *Uninstaller {
	var buf bytes.Buffer
	return &Uninstaller{
		Store:  store,
		Runner: runner,
		Log:    audit.NewConsoleWriter(&buf),
		NewHelm: func(string) (HelmUninstaller, error) {
			return helm, nil
		},
		HelmTimeout:    time.Minute,
		KubeconfigPath: "/etc/rancher/rke2/rke2.yaml",
	}
}

func TestRunFailsWithoutRecord(t *testing.T) {
	store := &state.Store{Path: filepath.Join(t.TempDir(), "absent")}
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{"rancher": true}}

	u := newUninstaller(store, runner, helm)
	err := u.Run(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, state.ErrNoRecord)
	assert.Empty(t, runner.Commands, "nothing should be removed without a record")
	assert.Empty(t, helm.uninstalled)
}

func TestRunRemovesRecordedComponents(t *testing.T) {
	store := writeRecord(t, testRecord())
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{
		"rancher":       true,
		"ingress-nginx": true,
		"cert-manager":  true,
	}}

	u := newUninstaller(store, runner, helm)
	require.NoError(t, u.Run(context.Background()))

	assert.Equal(t, []string{"rancher", "ingress-nginx", "cert-manager"}, helm.uninstalled)
	assert.True(t, runner.Ran("clusterctl delete"))
	assert.True(t, runner.Ran("sh -c /usr/local/bin/rke2-uninstall.sh"))
	assert.True(t, runner.Ran("rm -f /usr/local/bin/kubectl"))
	assert.True(t, runner.Ran("rm -f /usr/local/bin/helm"))
	assert.True(t, runner.Ran("rm -f /usr/local/bin/clusterctl"))

	assert.False(t, store.Exists(), "record should be deleted once uninstall finishes")
}

func TestRunLeavesPreExistingBinaries(t *testing.T) {
	rec := testRecord()
	rec.Kubectl = false
	rec.Helm = false
	rec.Clusterctl = false
	store := writeRecord(t, rec)
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{"rancher": true}}

	u := newUninstaller(store, runner, helm)
	require.NoError(t, u.Run(context.Background()))

	assert.True(t, runner.Ran("sh -c /usr/local/bin/rke2-uninstall.sh"),
		"rke2 was recorded as ours and must be removed")
	assert.False(t, runner.Ran("rm -f /usr/local/bin/kubectl"))
	assert.False(t, runner.Ran("rm -f /usr/local/bin/helm"))
	assert.False(t, runner.Ran("rm -f /usr/local/bin/clusterctl"))
}

func TestRunLeavesPreExistingRKE2(t *testing.T) {
	rec := testRecord()
	rec.RKE2 = false
	store := writeRecord(t, rec)
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{"rancher": true}}

	u := newUninstaller(store, runner, helm)
	require.NoError(t, u.Run(context.Background()))

	assert.False(t, runner.Ran("sh -c /usr/local/bin/rke2-uninstall.sh"))
	// Cluster-resident components come out regardless of who installed rke2.
	assert.Contains(t, helm.uninstalled, "rancher")
}

func TestRunStepFailuresAreWarnings(t *testing.T) {
	store := writeRecord(t, testRecord())
	runner := &host.Recorder{
		FailOn: map[string]error{
			"clusterctl delete": errors.New("no providers installed"),
			"sh -c /usr/local/bin/rke2-uninstall.sh": errors.New("exit status 1"),
		},
	}
	helm := &fakeHelm{
		releases: map[string]bool{"rancher": true, "cert-manager": true},
		failOn:   map[string]error{"rancher": errors.New("release stuck")},
	}

	u := newUninstaller(store, runner, helm)
	require.NoError(t, u.Run(context.Background()), "step failures must not abort teardown")

	// Later steps still run after earlier failures.
	assert.Equal(t, []string{"cert-manager"}, helm.uninstalled)
	assert.True(t, runner.Ran("rm -f /usr/local/bin/helm"))

	assert.False(t, store.Exists())
}

func TestRunSkipsAbsentReleases(t *testing.T) {
	store := writeRecord(t, testRecord())
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{"cert-manager": true}}

	u := newUninstaller(store, runner, helm)
	require.NoError(t, u.Run(context.Background()))

	assert.Equal(t, []string{"cert-manager"}, helm.uninstalled)
}

func TestRunDryRunKeepsRecord(t *testing.T) {
	store := writeRecord(t, testRecord())
	runner := &host.Recorder{}
	helm := &fakeHelm{releases: map[string]bool{"rancher": true}}

	u := newUninstaller(store, runner, helm)
	u.DryRun = true
	require.NoError(t, u.Run(context.Background()))

	assert.Empty(t, helm.uninstalled)

	assert.True(t, store.Exists(), "dry-run must not delete the record")
}

func TestRunWarningsGoToAuditLog(t *testing.T) {
	store := writeRecord(t, testRecord())
	runner := &host.Recorder{
		FailOn: map[string]error{"clusterctl delete": errors.New("boom")},
	}
	helm := &fakeHelm{releases: map[string]bool{}}

	logPath := filepath.Join(t.TempDir(), "audit.log")
	logger, err := audit.Open(logPath)
	require.NoError(t, err)
	defer logger.Close()

	u := newUninstaller(store, runner, helm)
	u.Log = logger
	require.NoError(t, u.Run(context.Background()))

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "[ERROR] warning: failed to delete Cluster API providers")
}
