package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotrig/pkg/shell"
)

func newDeployCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "deploy",
		Short: "Deploy only the dotfiles tree",
		Long: `Run just the conflict-safe dotfiles deployment: compute the removal
plan, clear conflicting targets, and link the tree into the home and
XDG config directories. Use --dry-run to only show the plan.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, shell.NewConsoleRunner())
			if err != nil {
				return err
			}

			plan, err := deployPlan(s)
			if err != nil {
				return err
			}

			fmt.Println(s.renderer.RenderPlan(plan))

			if flags.dryRun || plan.Empty() {
				return nil
			}

			if len(plan.Removals) > 0 && !flags.yes {
				proceed, err := confirmPrompt()
				if err != nil {
					return err
				}
				if !proceed {
					fmt.Println("Aborted.")
					return nil
				}
			}

			if err := s.builder.Deployer().Apply(plan); err != nil {
				return err
			}

			fmt.Printf("Deployed %d entries.\n", len(plan.Links))
			return nil
		},
	}
}
