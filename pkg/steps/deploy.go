package steps

import (
	"context"

	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// DeployDotfiles returns the final step: conflict-safe deployment of the
// dotfiles tree. The dotfiles directory must exist.
func (b *Builder) DeployDotfiles() pipeline.Step {
	return pipeline.Step{
		Name:        "deploy dotfiles",
		Description: "Link the dotfiles tree into the home directory",
		RequiresDir: b.paths.DotfilesDir(),
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.deploy")

			mappings, err := b.deployer.Scan()
			if err != nil {
				return err
			}

			plan, err := b.deployer.BuildPlan(mappings)
			if err != nil {
				return err
			}

			if plan.Empty() {
				logger.Info().Int("satisfied", len(plan.Satisfied)).Msg("Dotfiles already deployed")
				return nil
			}

			if err := b.deployer.Apply(plan); err != nil {
				return err
			}

			logger.Info().
				Int("linked", len(plan.Links)).
				Int("removed", len(plan.Removals)).
				Msg("Dotfiles deployed")
			return nil
		},
	}
}
