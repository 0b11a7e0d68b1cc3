// internal/cli/commands_test.go
// TEST TYPE: Integration Test
// DEPENDENCIES: Temp directories, environment variables
// PURPOSE: Test command wiring and the deploy command end to end

package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/dotrig/internal/cli"
	"github.com/arthur-debert/dotrig/pkg/testutil"
)

func TestNewRootCmdWiring(t *testing.T) {
	root := cli.NewRootCmd()

	var names []string
	for _, cmd := range root.Commands() {
		names = append(names, cmd.Name())
	}

	for _, want := range []string{"up", "plan", "deploy", "steps", "genconfig", "notes", "version"} {
		assert.Contains(t, names, want)
	}

	assert.NotNil(t, root.PersistentFlags().Lookup("dry-run"))
	assert.NotNil(t, root.PersistentFlags().Lookup("yes"))
	assert.NotNil(t, root.PersistentFlags().Lookup("root"))
}

func TestDeployDryRunLeavesConflictsAlone(t *testing.T) {
	env := testutil.NewEnvironment(t)
	env.WriteDotfile("bashrc", "new")

	target := filepath.Join(env.Home, ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	root := cli.NewRootCmd()
	root.SetArgs([]string{"deploy", "--dry-run", "--root", env.SourceRoot})
	require.NoError(t, root.Execute())

	content, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "old", string(content))
}

func TestDeployYesReplacesConflicts(t *testing.T) {
	env := testutil.NewEnvironment(t)
	source := env.WriteDotfile("bashrc", "new")

	target := filepath.Join(env.Home, ".bashrc")
	require.NoError(t, os.WriteFile(target, []byte("old"), 0644))

	root := cli.NewRootCmd()
	root.SetArgs([]string{"deploy", "--yes", "--root", env.SourceRoot})
	require.NoError(t, root.Execute())

	dest, err := os.Readlink(target)
	require.NoError(t, err)
	assert.Equal(t, source, dest)
}

func TestDeployMissingDotfilesTree(t *testing.T) {
	env := testutil.NewEnvironment(t)
	require.NoError(t, os.RemoveAll(env.Paths.DotfilesDir()))

	root := cli.NewRootCmd()
	root.SetArgs([]string{"deploy", "--root", env.SourceRoot})
	assert.Error(t, root.Execute())
}

func TestStepsCommand(t *testing.T) {
	env := testutil.NewEnvironment(t)

	root := cli.NewRootCmd()
	root.SetArgs([]string{"steps", "--root", env.SourceRoot})
	assert.NoError(t, root.Execute())
}

func TestGenConfigCommand(t *testing.T) {
	root := cli.NewRootCmd()
	root.SetArgs([]string{"genconfig"})
	assert.NoError(t, root.Execute())
}
