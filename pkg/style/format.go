package style

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Format represents the output format type
type Format int

const (
	// FormatAuto detects the appropriate format from the terminal
	FormatAuto Format = iota
	// FormatTerminal renders rich terminal output
	FormatTerminal
	// FormatText renders plain text without styling
	FormatText
)

// DetectFormat determines the output format for the given stream,
// honoring NO_COLOR and pipe redirection
func DetectFormat(output *os.File) Format {
	if os.Getenv("NO_COLOR") != "" {
		return FormatText
	}

	if !isatty.IsTerminal(output.Fd()) && !isatty.IsCygwinTerminal(output.Fd()) {
		return FormatText
	}

	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}

	return FormatTerminal
}
