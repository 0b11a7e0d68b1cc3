package style

import (
	"fmt"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/arthur-debert/dotrig/pkg/deploy"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// Renderer produces terminal output for step results and deployment
// plans. Plain mode strips the pterm/lipgloss styling for pipes.
type Renderer struct {
	plain bool
}

// NewRenderer creates a Renderer for the given format
func NewRenderer(format Format) *Renderer {
	return &Renderer{plain: format == FormatText}
}

// RenderSteps renders the step list for the steps and plan commands
func (r *Renderer) RenderSteps(steps []pipeline.Step) string {
	var b strings.Builder
	for i, s := range steps {
		if r.plain {
			fmt.Fprintf(&b, "%2d. %s - %s\n", i+1, s.Name, s.Description)
			continue
		}
		fmt.Fprintf(&b, "%s %s %s\n",
			MutedStyle.Render(fmt.Sprintf("%2d.", i+1)),
			NormalStyle.Bold(true).Render(s.Name),
			MutedStyle.Render(s.Description))
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderResults renders the outcome of a pipeline run
func (r *Renderer) RenderResults(results []pipeline.Result) string {
	var b strings.Builder
	for _, res := range results {
		b.WriteString(r.renderResult(res) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *Renderer) renderResult(res pipeline.Result) string {
	if r.plain {
		line := fmt.Sprintf("%-7s %s (%s)", res.Status, res.Name, res.Duration.Round(durationUnit(res)))
		if res.Err != nil {
			line += ": " + res.Err.Error()
		}
		return line
	}

	switch res.Status {
	case pipeline.StatusOK:
		return fmt.Sprintf("%s %s %s",
			pterm.NewStyle(pterm.FgGreen).Sprint("✓"),
			res.Name,
			MutedStyle.Render(res.Duration.Round(durationUnit(res)).String()))
	case pipeline.StatusSkipped:
		return fmt.Sprintf("%s %s %s",
			pterm.NewStyle(pterm.FgYellow).Sprint("~"),
			res.Name,
			MutedStyle.Render("dry run"))
	default:
		line := fmt.Sprintf("%s %s",
			pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("✗"),
			res.Name)
		if res.Err != nil {
			line += "\n  " + ErrorStyle.Render(res.Err.Error())
		}
		return line
	}
}

// RenderPlan renders a deployment plan: what gets removed, what gets
// linked, what is already in place
func (r *Renderer) RenderPlan(plan *deploy.Plan) string {
	var b strings.Builder

	if plan.Empty() && len(plan.Satisfied) > 0 {
		b.WriteString(r.muted("Dotfiles already deployed, nothing to do"))
		return b.String()
	}

	if len(plan.Removals) > 0 {
		b.WriteString(r.heading("Will remove") + "\n")
		for _, removal := range plan.Removals {
			if r.plain {
				fmt.Fprintf(&b, "  - %s (%s)\n", removal.Path, removal.Kind)
			} else {
				fmt.Fprintf(&b, "  %s %s %s\n",
					WarningStyle.Render("-"),
					PathStyle.Render(removal.Path),
					MutedStyle.Render(string(removal.Kind)))
			}
		}
	}

	if len(plan.Links) > 0 {
		b.WriteString(r.heading("Will link") + "\n")
		for _, link := range plan.Links {
			if r.plain {
				fmt.Fprintf(&b, "  + %s -> %s\n", link.Target, link.Source)
			} else {
				fmt.Fprintf(&b, "  %s %s %s %s\n",
					SuccessStyle.Render("+"),
					PathStyle.Render(link.Target),
					MutedStyle.Render("->"),
					PathStyle.Render(link.Source))
			}
		}
	}

	if len(plan.Satisfied) > 0 {
		fmt.Fprintf(&b, "%s\n", r.muted(fmt.Sprintf("%d entries already linked", len(plan.Satisfied))))
	}

	return strings.TrimRight(b.String(), "\n")
}

// RenderError renders a fatal error banner
func (r *Renderer) RenderError(err error) string {
	if r.plain {
		return "Error: " + err.Error()
	}
	return ErrorStyle.Render("Error: " + err.Error())
}

func (r *Renderer) heading(s string) string {
	if r.plain {
		return s
	}
	return TitleStyle.Render(s)
}

func (r *Renderer) muted(s string) string {
	if r.plain {
		return s
	}
	return MutedStyle.Render(s)
}

func durationUnit(res pipeline.Result) time.Duration {
	if res.Duration >= time.Second {
		return 100 * time.Millisecond
	}
	return time.Millisecond
}
