package steps

import (
	"context"
	"os"

	"github.com/arthur-debert/dotrig/pkg/config"
	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// Clones returns one idempotent clone step per configured repository
func (b *Builder) Clones() []pipeline.Step {
	steps := make([]pipeline.Step, 0, len(b.cfg.Repos))
	for _, repo := range b.cfg.Repos {
		steps = append(steps, b.cloneStep(repo))
	}
	return steps
}

// cloneStep clones one repository under tools/. A target directory that
// already exists is treated as satisfied: a skip is logged and no network
// operation happens. Existing clones are never re-verified or updated.
func (b *Builder) cloneStep(repo config.Repository) pipeline.Step {
	return pipeline.Step{
		Name:        "clone " + repo.Name,
		Description: "Clone " + repo.URL,
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.clone")
			target := b.paths.ToolDir(repo.CloneDir())

			if _, err := os.Stat(target); err == nil {
				logger.Info().
					Str("repo", repo.Name).
					Str("dir", target).
					Msg("Clone target already exists, skipping")
				return nil
			}

			if err := os.MkdirAll(b.paths.ToolsDir(), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", b.paths.ToolsDir())
			}

			if err := b.runner.Run(ctx, "", "git", "clone", repo.URL, target); err != nil {
				return errors.Wrapf(err, errors.ErrClone, "cloning %s failed", repo.Name).
					WithDetail("url", repo.URL).
					WithDetail("dir", target)
			}
			return nil
		},
	}
}
