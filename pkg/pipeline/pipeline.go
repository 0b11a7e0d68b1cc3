// Package pipeline executes an ordered list of provisioning steps with
// fail-fast semantics: the first step that returns an error terminates
// the run, and no later step executes. There is no rollback and no
// partial-success continuation.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/rs/zerolog"
)

// Step is one discrete provisioning action. Steps are constructed at
// pipeline-definition time and executed once.
type Step struct {
	// Name identifies the step in logs, errors, and reports
	Name string

	// Description is the one-line summary shown when listing steps
	Description string

	// RequiresDir, when set, is a directory that must exist before the
	// step runs. The runner checks it uniformly for every step and fails
	// with an error naming the directory.
	RequiresDir string

	// Run performs the step. A nil Run is a definition error.
	Run func(ctx context.Context) error
}

// Status is the outcome of one step
type Status string

const (
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result records the outcome of one executed step
type Result struct {
	Name     string
	Status   Status
	Duration time.Duration
	Err      error
}

// Options configures a Runner
type Options struct {
	// DryRun reports the steps and checks preconditions without
	// executing anything
	DryRun bool

	// Logger, when nil, defaults to the global "pipeline" component logger
	Logger *zerolog.Logger
}

// Runner executes steps strictly in order, one at a time
type Runner struct {
	dryRun bool
	logger zerolog.Logger
}

// NewRunner creates a Runner
func NewRunner(opts Options) *Runner {
	logger := logging.GetLogger("pipeline")
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Runner{
		dryRun: opts.DryRun,
		logger: logger,
	}
}

// Run executes the steps in order. It returns the results of every step
// that was reached; on failure the returned error identifies the step
// and the run stops immediately.
func (r *Runner) Run(ctx context.Context, steps []Step) ([]Result, error) {
	results := make([]Result, 0, len(steps))

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, errors.Wrap(err, errors.ErrStepAborted, "run cancelled")
		}

		result := r.runStep(ctx, step)
		results = append(results, result)

		if result.Err != nil {
			failure := errors.Wrapf(result.Err, errors.ErrStepAborted,
				"step %q failed", step.Name).WithDetail("step", step.Name)
			r.logger.Error().
				Err(result.Err).
				Str("step", step.Name).
				Msg("Step failed, aborting run")
			return results, failure
		}
	}

	return results, nil
}

func (r *Runner) runStep(ctx context.Context, step Step) Result {
	start := time.Now()

	r.logger.Info().
		Str("step", step.Name).
		Bool("dry_run", r.dryRun).
		Msg("Running step")

	if err := r.checkPrecondition(step); err != nil {
		return Result{
			Name:     step.Name,
			Status:   StatusFailed,
			Duration: time.Since(start),
			Err:      err,
		}
	}

	if r.dryRun {
		return Result{
			Name:     step.Name,
			Status:   StatusSkipped,
			Duration: time.Since(start),
		}
	}

	if step.Run == nil {
		return Result{
			Name:     step.Name,
			Status:   StatusFailed,
			Duration: time.Since(start),
			Err:      errors.Newf(errors.ErrInternal, "step %q has no run function", step.Name),
		}
	}

	if err := step.Run(ctx); err != nil {
		return Result{
			Name:     step.Name,
			Status:   StatusFailed,
			Duration: time.Since(start),
			Err:      err,
		}
	}

	r.logger.Info().
		Str("step", step.Name).
		Dur("duration", time.Since(start)).
		Msg("Step completed")

	return Result{
		Name:     step.Name,
		Status:   StatusOK,
		Duration: time.Since(start),
	}
}

// checkPrecondition applies the uniform directory-existence check
func (r *Runner) checkPrecondition(step Step) error {
	if step.RequiresDir == "" {
		return nil
	}

	info, err := os.Stat(step.RequiresDir)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.Newf(errors.ErrMissingDir,
				"step %q requires directory %s, which does not exist", step.Name, step.RequiresDir).
				WithDetail("dir", step.RequiresDir)
		}
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", step.RequiresDir)
	}
	if !info.IsDir() {
		return errors.Newf(errors.ErrMissingDir,
			"step %q requires directory %s, but it is not a directory", step.Name, step.RequiresDir).
			WithDetail("dir", step.RequiresDir)
	}
	return nil
}
