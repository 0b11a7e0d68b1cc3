// Package style defines dotrig's terminal output: lipgloss styles for
// banners and paths, and a pterm-based renderer for step results and
// deployment plans. Colors and styles are declared in the embedded
// styles.yaml so the palette lives in one place.
package style

import (
	_ "embed"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"
)

// ColorDef is an adaptive color definition in YAML
type ColorDef struct {
	Light string `yaml:"light"`
	Dark  string `yaml:"dark"`
}

// StyleDef is a style definition in YAML
type StyleDef struct {
	Bold         bool   `yaml:"bold,omitempty"`
	Italic       bool   `yaml:"italic,omitempty"`
	Foreground   string `yaml:"foreground,omitempty"`
	MarginBottom int    `yaml:"marginBottom,omitempty"`
}

// sheet is the complete styles configuration
type sheet struct {
	Colors map[string]ColorDef `yaml:"colors"`
	Styles map[string]StyleDef `yaml:"styles"`
}

//go:embed styles.yaml
var embeddedStyles []byte

// registry maps semantic names to lipgloss styles
var registry map[string]lipgloss.Style

// Styles referenced throughout the codebase, resolved at init
var (
	TitleStyle   lipgloss.Style
	NormalStyle  lipgloss.Style
	MutedStyle   lipgloss.Style
	SuccessStyle lipgloss.Style
	ErrorStyle   lipgloss.Style
	WarningStyle lipgloss.Style
	PathStyle    lipgloss.Style
)

func init() {
	if err := loadStyles(embeddedStyles); err != nil {
		// The embedded sheet is part of the binary; a parse failure is
		// a packaging bug. Degrade to unstyled output.
		registry = map[string]lipgloss.Style{}
	}

	TitleStyle = GetStyle("Title")
	NormalStyle = GetStyle("Normal")
	MutedStyle = GetStyle("Muted")
	SuccessStyle = GetStyle("Success")
	ErrorStyle = GetStyle("Error")
	WarningStyle = GetStyle("Warning")
	PathStyle = GetStyle("Path")
}

// GetStyle returns the named style, or an empty style when unknown
func GetStyle(name string) lipgloss.Style {
	if s, ok := registry[name]; ok {
		return s
	}
	return lipgloss.NewStyle()
}

func loadStyles(data []byte) error {
	var cfg sheet
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	colors := make(map[string]lipgloss.AdaptiveColor, len(cfg.Colors))
	for name, def := range cfg.Colors {
		colors[name] = lipgloss.AdaptiveColor{Light: def.Light, Dark: def.Dark}
	}

	registry = make(map[string]lipgloss.Style, len(cfg.Styles))
	for name, def := range cfg.Styles {
		s := lipgloss.NewStyle()
		if def.Bold {
			s = s.Bold(true)
		}
		if def.Italic {
			s = s.Italic(true)
		}
		if color, ok := colors[def.Foreground]; ok {
			s = s.Foreground(color)
		}
		if def.MarginBottom > 0 {
			s = s.MarginBottom(def.MarginBottom)
		}
		registry[name] = s
	}
	return nil
}
