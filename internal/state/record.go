// Package state persists the Install Record marker file.
//
// The record is what makes uninstallation safe: it captures which host-level
// tools this tool installed, so teardown never removes a binary the operator
// already had. The file is plain key=value lines parsed explicitly; it is
// never sourced or evaluated.
package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// DefaultPath is the fixed marker file location.
const DefaultPath = "/var/lib/rancherup/install-record"

// ErrNoRecord is returned when the marker file does not exist. Uninstall
// treats it as fatal; install treats it as "nothing installed yet".
var ErrNoRecord = errors.New("no install record found")

// Record is one run's Install Record. The booleans mean
// "installed by this run": true only when this tool put the component there.
type Record struct {
	InstalledBy string
	Version     string
	Arch        string
	Date        time.Time

	RKE2       bool
	Curl       bool
	Kubectl    bool
	Helm       bool
	Clusterctl bool
	Rancher    bool
}

// Encode renders the record as key=value lines in a stable order.
func (r *Record) Encode() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "installed_by=%s\n", r.InstalledBy)
	fmt.Fprintf(&b, "version=%s\n", r.Version)
	fmt.Fprintf(&b, "arch=%s\n", r.Arch)
	fmt.Fprintf(&b, "date=%s\n", r.Date.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "rke2=%t\n", r.RKE2)
	fmt.Fprintf(&b, "curl=%t\n", r.Curl)
	fmt.Fprintf(&b, "kubectl=%t\n", r.Kubectl)
	fmt.Fprintf(&b, "helm=%t\n", r.Helm)
	fmt.Fprintf(&b, "clusterctl=%t\n", r.Clusterctl)
	fmt.Fprintf(&b, "rancher=%t\n", r.Rancher)
	return []byte(b.String())
}

// Parse decodes a marker file. Unknown keys and malformed lines are errors:
// the record gates destructive operations, so anything unexpected in it means
// the file is not ours to act on.
func Parse(data []byte) (*Record, error) {
	rec := &Record{}
	seen := map[string]bool{}

	for i, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return nil, fmt.Errorf("malformed record line %d: %q", i+1, line)
		}
		if seen[key] {
			return nil, fmt.Errorf("duplicate record key %q", key)
		}
		seen[key] = true

		switch key {
		case "installed_by":
			rec.InstalledBy = value
		case "version":
			rec.Version = value
		case "arch":
			rec.Arch = value
		case "date":
			ts, err := time.Parse(time.RFC3339, value)
			if err != nil {
				return nil, fmt.Errorf("invalid record date %q: %w", value, err)
			}
			rec.Date = ts
		case "rke2", "curl", "kubectl", "helm", "clusterctl", "rancher":
			v, err := strconv.ParseBool(value)
			if err != nil {
				return nil, fmt.Errorf("invalid boolean for %s: %q", key, value)
			}
			switch key {
			case "rke2":
				rec.RKE2 = v
			case "curl":
				rec.Curl = v
			case "kubectl":
				rec.Kubectl = v
			case "helm":
				rec.Helm = v
			case "clusterctl":
				rec.Clusterctl = v
			case "rancher":
				rec.Rancher = v
			}
		default:
			return nil, fmt.Errorf("unknown record key %q", key)
		}
	}

	if rec.InstalledBy == "" {
		return nil, fmt.Errorf("record has no installed_by field")
	}
	return rec, nil
}

// InstalledComponents lists the components recorded as installed by this
// run, in a stable order. Used for run summaries.
func (r *Record) InstalledComponents() []string {
	set := map[string]bool{
		"rke2":       r.RKE2,
		"curl":       r.Curl,
		"kubectl":    r.Kubectl,
		"helm":       r.Helm,
		"clusterctl": r.Clusterctl,
		"rancher":    r.Rancher,
	}
	var out []string
	for name, installed := range set {
		if installed {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Store reads and writes the marker file at a fixed path.
type Store struct {
	Path string
}

// NewStore creates a Store for the default marker path.
func NewStore() *Store {
	return &Store{Path: DefaultPath}
}

// Exists reports whether a marker file is present.
func (s *Store) Exists() bool {
	_, err := os.Stat(s.Path)
	return err == nil
}

// Read loads and parses the marker file. Returns ErrNoRecord when absent.
func (s *Store) Read() (*Record, error) {
	data, err := os.ReadFile(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrNoRecord, s.Path)
		}
		return nil, fmt.Errorf("failed to read install record: %w", err)
	}
	return Parse(data)
}

// Write persists the record, creating the parent directory as needed.
func (s *Store) Write(r *Record) error {
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return fmt.Errorf("failed to create record directory: %w", err)
	}
	if err := os.WriteFile(s.Path, r.Encode(), 0o600); err != nil {
		return fmt.Errorf("failed to write install record: %w", err)
	}
	return nil
}

// Delete removes the marker file. Missing files are not an error.
func (s *Store) Delete() error {
	err := os.Remove(s.Path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete install record: %w", err)
	}
	return nil
}
