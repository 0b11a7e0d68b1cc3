package cli

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/dotrig/pkg/style"
)

//go:embed notes.md
var postInstallNotes string

func newNotesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "notes",
		Short: "Show the post-install notes",
		Long:  `Render the manual follow-up steps that a fresh provisioning run leaves for the operator.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(renderMarkdown(postInstallNotes))
			return nil
		},
	}
}

// renderMarkdown renders markdown for the terminal, falling back to the
// raw text when rich output is unavailable
func renderMarkdown(content string) string {
	if style.DetectFormat(os.Stdout) == style.FormatText {
		return content
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content
	}

	rendered, err := renderer.Render(content)
	if err != nil {
		return content
	}
	return rendered
}
