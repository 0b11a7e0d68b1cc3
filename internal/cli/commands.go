// Package cli wires up the dotrig command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotrig/internal/version"
	"github.com/arthur-debert/dotrig/pkg/config"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/paths"
	"github.com/arthur-debert/dotrig/pkg/shell"
	"github.com/arthur-debert/dotrig/pkg/steps"
	"github.com/arthur-debert/dotrig/pkg/style"
)

// flags shared by every command
type globalFlags struct {
	verbosity  int
	dryRun     bool
	yes        bool
	sourceRoot string
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:   "dotrig",
		Short: "Provision a Linux desktop environment",
		Long: `dotrig provisions a Linux desktop environment from a source tree:
it installs OS packages, clones and builds the window manager tooling,
installs fonts and wallpapers, and deploys the dotfiles tree into your
home directory with conflict-safe semantics.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(flags.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&flags.verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().BoolVar(&flags.dryRun, "dry-run", false, "Preview changes without executing them")
	rootCmd.PersistentFlags().BoolVarP(&flags.yes, "yes", "y", false, "Skip the confirmation prompt before destructive removals")
	rootCmd.PersistentFlags().StringVar(&flags.sourceRoot, "root", "", "Provisioning source root (defaults to $DOTRIG_ROOT or the executable's directory)")

	rootCmd.AddCommand(newUpCmd(flags))
	rootCmd.AddCommand(newPlanCmd(flags))
	rootCmd.AddCommand(newDeployCmd(flags))
	rootCmd.AddCommand(newStepsCmd(flags))
	rootCmd.AddCommand(newGenConfigCmd(flags))
	rootCmd.AddCommand(newNotesCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// session holds everything a command needs: resolved paths, the merged
// manifest, and the step builder.
type session struct {
	paths    *paths.Paths
	cfg      *config.Config
	builder  *steps.Builder
	renderer *style.Renderer
}

// newSession resolves paths and loads the manifest
func newSession(flags *globalFlags, runner shell.Runner) (*session, error) {
	p, err := paths.New(flags.sourceRoot)
	if err != nil {
		return nil, err
	}

	cfg, err := config.Load(p.SourceRoot(), nil)
	if err != nil {
		return nil, err
	}

	return &session{
		paths:    p,
		cfg:      cfg,
		builder:  steps.NewBuilder(cfg, p, runner),
		renderer: style.NewRenderer(style.DetectFormat(os.Stdout)),
	}, nil
}

func newStepsCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "steps",
		Short: "List the provisioning steps in execution order",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(flags, shell.NewConsoleRunner())
			if err != nil {
				return err
			}
			fmt.Println(s.renderer.RenderSteps(s.builder.All()))
			return nil
		},
	}
}

func newGenConfigCmd(flags *globalFlags) *cobra.Command {
	var effective bool

	cmd := &cobra.Command{
		Use:   "genconfig",
		Short: "Print a commented default manifest",
		Long: `Print the default dotrig.toml with every value commented out, ready to
drop into your source root and edit. With --effective, print the fully
merged configuration (defaults, manifest file, environment) instead.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !effective {
				fmt.Println(config.GenerateManifestContent())
				return nil
			}

			s, err := newSession(flags, shell.NewConsoleRunner())
			if err != nil {
				return err
			}
			rendered, err := config.MarshalManifest(s.cfg)
			if err != nil {
				return err
			}
			fmt.Println(rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&effective, "effective", false, "Print the merged effective configuration")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dotrig version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}
