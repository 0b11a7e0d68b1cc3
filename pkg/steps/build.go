package steps

import (
	"context"

	"github.com/arthur-debert/dotrig/pkg/config"
	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// Builds returns one build step per configured tool
func (b *Builder) Builds() []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(b.cfg.Tools))
	for _, tool := range b.cfg.Tools {
		steps = append(steps, b.buildStep(tool))
	}
	return steps
}

// buildStep compiles and installs one tool. The build directory must
// exist; the runner's uniform precondition check enforces that before
// the step runs.
func (b *Builder) buildStep(tool config.Tool) pipeline.Step {
	dir := b.paths.ToolDir(tool.BuildDir())

	return pipeline.Step{
		Name:        "build " + tool.Name,
		Description: "Compile and install " + tool.Name,
		RequiresDir: dir,
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.build")

			for _, command := range tool.Build {
				logger.Info().
					Str("tool", tool.Name).
					Str("dir", dir).
					Str("command", command).
					Msg("Running build command")

				// Build lines come from the manifest as shell command
				// lines, so they run through the shell.
				if err := b.runner.Run(ctx, dir, "sh", "-c", command); err != nil {
					return errors.Wrapf(err, errors.ErrBuild, "building %s failed", tool.Name).
						WithDetail("dir", dir).
						WithDetail("command", command)
				}
			}
			return nil
		},
	}
}
