package host

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Recorder is a Runner fake that records every call. Shared by tests across
// packages; commands can be scripted to fail or to return canned output.
type Recorder struct {
	mu sync.Mutex

	// Commands holds every Run invocation as "name arg1 arg2 ...".
	Commands []string

	// Present lists binary names LookPath reports as found.
	Present map[string]string

	// FailOn maps a command prefix to the error Run returns for it.
	FailOn map[string]error

	// Outputs maps a command prefix to the string Output returns for it.
	Outputs map[string]string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		Present: make(map[string]string),
		FailOn:  make(map[string]error),
		Outputs: make(map[string]string),
	}
}

// Run records the command and returns a scripted error, if any.
func (r *Recorder) Run(_ context.Context, name string, args ...string) error {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))

	r.mu.Lock()
	r.Commands = append(r.Commands, line)
	r.mu.Unlock()

	for prefix, err := range r.FailOn {
		if strings.HasPrefix(line, prefix) {
			return err
		}
	}
	return nil
}

// Output returns scripted output for the command.
func (r *Recorder) Output(_ context.Context, name string, args ...string) (string, error) {
	line := strings.TrimSpace(name + " " + strings.Join(args, " "))
	for prefix, out := range r.Outputs {
		if strings.HasPrefix(line, prefix) {
			return out, nil
		}
	}
	return "", fmt.Errorf("no scripted output for %q", line)
}

// LookPath reports presence from the Present map.
func (r *Recorder) LookPath(name string) (string, bool) {
	path, ok := r.Present[name]
	return path, ok
}

// Ran reports whether any recorded command starts with prefix.
func (r *Recorder) Ran(prefix string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.Commands {
		if strings.HasPrefix(c, prefix) {
			return true
		}
	}
	return false
}
