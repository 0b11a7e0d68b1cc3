// Package testutil provides the shared helpers dotrig's tests use: an
// isolated provisioning environment rooted in temp directories and a
// recording fake for subprocess execution.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotrig/pkg/paths"
)

// Environment is an isolated provisioning setup: a source root with a
// dotfiles tree and a fake home directory, wired through environment
// variables so paths.New resolves into it.
type Environment struct {
	SourceRoot string
	Home       string
	Paths      *paths.Paths

	t *testing.T
}

// NewEnvironment creates an isolated environment under temp directories
func NewEnvironment(t *testing.T) *Environment {
	t.Helper()

	root := t.TempDir()
	home := t.TempDir()

	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(home, ".local", "state"))
	t.Setenv("DOTRIG_ROOT", root)

	p, err := paths.New(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(p.DotfilesDir(), 0755))

	return &Environment{
		SourceRoot: root,
		Home:       home,
		Paths:      p,
		t:          t,
	}
}

// WriteDotfile creates a file under the dotfiles tree
func (e *Environment) WriteDotfile(rel, content string) string {
	e.t.Helper()

	path := filepath.Join(e.Paths.DotfilesDir(), rel)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteSourceFile creates a file under the source root
func (e *Environment) WriteSourceFile(rel, content string) string {
	e.t.Helper()

	path := filepath.Join(e.SourceRoot, rel)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// MkdirSource creates a directory under the source root
func (e *Environment) MkdirSource(rel string) string {
	e.t.Helper()

	path := filepath.Join(e.SourceRoot, rel)
	require.NoError(e.t, os.MkdirAll(path, 0755))
	return path
}

// Call records one invocation seen by the FakeRunner
type Call struct {
	Dir  string
	Name string
	Args []string
}

// Line renders the call as a command line for assertion convenience
func (c Call) Line() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// FakeRunner records invocations instead of spawning processes. Errors
// can be injected per command name.
type FakeRunner struct {
	mu    sync.Mutex
	calls []Call
	fail  map[string]error
}

// NewFakeRunner creates a FakeRunner
func NewFakeRunner() *FakeRunner {
	return &FakeRunner{fail: make(map[string]error)}
}

// FailOn makes every invocation of name return err
func (f *FakeRunner) FailOn(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = err
}

// Run implements shell.Runner
func (f *FakeRunner) Run(ctx context.Context, dir string, name string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, Call{Dir: dir, Name: name, Args: args})
	return f.fail[name]
}

// Calls returns a copy of the recorded invocations
func (f *FakeRunner) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallLines returns every recorded invocation rendered as a command line
func (f *FakeRunner) CallLines() []string {
	calls := f.Calls()
	lines := make([]string, 0, len(calls))
	for _, c := range calls {
		lines = append(lines, c.Line())
	}
	return lines
}
