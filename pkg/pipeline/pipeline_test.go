// pkg/pipeline/pipeline_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: Temp directories
// PURPOSE: Test fail-fast ordering, preconditions, and dry-run

package pipeline_test

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func step(name string, run func(ctx context.Context) error) pipeline.Step {
	return pipeline.Step{Name: name, Run: run}
}

func TestRunInOrder(t *testing.T) {
	var order []string
	record := func(name string) pipeline.Step {
		return step(name, func(ctx context.Context) error {
			order = append(order, name)
			return nil
		})
	}

	r := pipeline.NewRunner(pipeline.Options{})
	results, err := r.Run(context.Background(), []pipeline.Step{
		record("packages"), record("clone"), record("build"),
	})

	require.NoError(t, err)
	assert.Equal(t, []string{"packages", "clone", "build"}, order)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.Equal(t, pipeline.StatusOK, res.Status)
	}
}

func TestRunFailFast(t *testing.T) {
	var ran []string
	boom := errors.New(errors.ErrBuild, "make exploded")

	steps := []pipeline.Step{
		step("packages", func(ctx context.Context) error {
			ran = append(ran, "packages")
			return nil
		}),
		step("build", func(ctx context.Context) error {
			ran = append(ran, "build")
			return boom
		}),
		step("deploy", func(ctx context.Context) error {
			ran = append(ran, "deploy")
			return nil
		}),
	}

	r := pipeline.NewRunner(pipeline.Options{})
	results, err := r.Run(context.Background(), steps)

	require.Error(t, err)
	// The step after the failure never executes
	assert.Equal(t, []string{"packages", "build"}, ran)
	require.Len(t, results, 2)
	assert.Equal(t, pipeline.StatusFailed, results[1].Status)

	// The failure identifies the step and preserves the underlying error
	assert.Equal(t, errors.ErrStepAborted, errors.GetCode(err))
	assert.Contains(t, err.Error(), `step "build" failed`)
	assert.ErrorIs(t, err, boom)

	var rigErr *errors.RigError
	require.ErrorAs(t, err, &rigErr)
	assert.Equal(t, "build", rigErr.Details["step"])
}

func TestRunPreconditionMissingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "tools", "spectrwm")
	ran := false

	steps := []pipeline.Step{
		{
			Name:        "build spectrwm",
			RequiresDir: missing,
			Run: func(ctx context.Context) error {
				ran = true
				return nil
			},
		},
		step("deploy", func(ctx context.Context) error {
			ran = true
			return nil
		}),
	}

	r := pipeline.NewRunner(pipeline.Options{})
	results, err := r.Run(context.Background(), steps)

	require.Error(t, err)
	assert.False(t, ran, "neither the failing step nor later steps may run")
	require.Len(t, results, 1)

	// The error names the missing directory
	assert.Contains(t, err.Error(), missing)

	var rigErr *errors.RigError
	require.ErrorAs(t, err, &rigErr)
	require.ErrorAs(t, rigErr.Wrapped, &rigErr)
	assert.Equal(t, errors.ErrMissingDir, rigErr.Code)
}

func TestRunPreconditionSatisfied(t *testing.T) {
	dir := t.TempDir()
	ran := false

	r := pipeline.NewRunner(pipeline.Options{})
	_, err := r.Run(context.Background(), []pipeline.Step{
		{
			Name:        "build",
			RequiresDir: dir,
			Run: func(ctx context.Context) error {
				ran = true
				return nil
			},
		},
	})

	require.NoError(t, err)
	assert.True(t, ran)
}

func TestRunDryRun(t *testing.T) {
	ran := false

	r := pipeline.NewRunner(pipeline.Options{DryRun: true})
	results, err := r.Run(context.Background(), []pipeline.Step{
		step("packages", func(ctx context.Context) error {
			ran = true
			return nil
		}),
	})

	require.NoError(t, err)
	assert.False(t, ran)
	require.Len(t, results, 1)
	assert.Equal(t, pipeline.StatusSkipped, results[0].Status)
}

func TestRunDryRunStillChecksPreconditions(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent")

	r := pipeline.NewRunner(pipeline.Options{DryRun: true})
	_, err := r.Run(context.Background(), []pipeline.Step{
		{Name: "build", RequiresDir: missing},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), missing)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ran := false
	r := pipeline.NewRunner(pipeline.Options{})
	results, err := r.Run(ctx, []pipeline.Step{
		step("packages", func(ctx context.Context) error {
			ran = true
			return nil
		}),
	})

	require.Error(t, err)
	assert.False(t, ran)
	assert.Empty(t, results)
}

func TestRunLogsToConfiguredLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	r := pipeline.NewRunner(pipeline.Options{Logger: &logger})
	_, err := r.Run(context.Background(), []pipeline.Step{
		step("build", func(ctx context.Context) error {
			return errors.New(errors.ErrBuild, "make exploded")
		}),
	})

	require.Error(t, err)
	assert.Contains(t, buf.String(), "Running step")
	assert.Contains(t, buf.String(), "Step failed, aborting run")
}

func TestRunLogsToGlobalLoggerByDefault(t *testing.T) {
	var buf bytes.Buffer
	prev := log.Logger
	log.Logger = zerolog.New(&buf)
	defer func() { log.Logger = prev }()

	r := pipeline.NewRunner(pipeline.Options{})
	_, err := r.Run(context.Background(), []pipeline.Step{
		step("build", func(ctx context.Context) error {
			return errors.New(errors.ErrBuild, "make exploded")
		}),
	})

	require.Error(t, err)
	assert.Contains(t, buf.String(), `"component":"pipeline"`)
	assert.Contains(t, buf.String(), "Step failed, aborting run")
}

func TestRunNilRunFunc(t *testing.T) {
	r := pipeline.NewRunner(pipeline.Options{})
	_, err := r.Run(context.Background(), []pipeline.Step{{Name: "broken"}})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
}
