package cli

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotrig/pkg/deploy"
	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
	"github.com/arthur-debert/dotrig/pkg/shell"
)

func newUpCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Run the full provisioning pipeline",
		Long: `Run every provisioning step in order: install OS packages, clone and
build the tools, install fonts and wallpapers, install the prompt, and
deploy the dotfiles tree. The run stops at the first failing step.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, shell.NewConsoleRunner())
			if err != nil {
				return err
			}

			if !flags.dryRun {
				proceed, err := confirmRemovals(s, flags)
				if err != nil {
					return err
				}
				if !proceed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			runner := pipeline.NewRunner(pipeline.Options{DryRun: flags.dryRun})
			results, runErr := runner.Run(ctx, s.builder.All())

			fmt.Println(s.renderer.RenderResults(results))
			return runErr
		},
	}
}

func newPlanCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plan",
		Short: "Show what a full run would do without executing anything",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, shell.NewConsoleRunner())
			if err != nil {
				return err
			}

			fmt.Println(s.renderer.RenderSteps(s.builder.All()))

			plan, err := deployPlan(s)
			if err != nil {
				// The dotfiles tree may legitimately not exist yet when
				// planning; report it rather than fail the listing.
				fmt.Println(s.renderer.RenderError(err))
				return nil
			}

			fmt.Println()
			fmt.Println(s.renderer.RenderPlan(plan))
			return nil
		},
	}
}

// confirmRemovals computes the deploy removal plan up front and, when it
// is destructive, gates the run behind a confirmation prompt. --yes
// skips the prompt.
func confirmRemovals(s *session, flags *globalFlags) (bool, error) {
	plan, err := deployPlan(s)
	if err != nil {
		// Deploy preconditions are re-checked by the pipeline with a
		// proper error; don't block the earlier steps here.
		if errors.IsCode(err, errors.ErrDeployScan) {
			return true, nil
		}
		return false, err
	}

	if len(plan.Removals) == 0 {
		return true, nil
	}

	fmt.Println(s.renderer.RenderPlan(plan))
	if flags.yes {
		return true, nil
	}

	return confirmPrompt()
}

// confirmPrompt asks the operator to approve the removal plan
func confirmPrompt() (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultText("Remove the entries listed above and deploy?").
		Show()
}

func deployPlan(s *session) (*deploy.Plan, error) {
	deployer := s.builder.Deployer()
	mappings, err := deployer.Scan()
	if err != nil {
		return nil, err
	}
	return deployer.BuildPlan(mappings)
}
