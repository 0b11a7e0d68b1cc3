package config

import (
	"strings"

	gotoml "github.com/pelletier/go-toml/v2"

	rigerrors "github.com/arthur-debert/dotrig/pkg/errors"
)

// GenerateManifestContent returns the default manifest with every value
// commented out, suitable for seeding a new dotrig.toml.
func GenerateManifestContent() string {
	return commentOutValues(GetDefaultManifest())
}

// commentOutValues comments out assignment lines while keeping comments,
// blank lines, and section headers intact
func commentOutValues(content string) string {
	lines := strings.Split(content, "\n")
	var result []string

	inArray := false
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			result = append(result, line)
			continue
		}

		if !inArray && strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			result = append(result, line)
			continue
		}

		// Multi-line arrays get commented line by line
		if strings.HasSuffix(trimmed, "[") {
			inArray = true
		} else if inArray && trimmed == "]" {
			inArray = false
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}

// MarshalManifest renders a Config back to TOML, used when materializing
// an effective configuration for inspection.
func MarshalManifest(cfg *Config) (string, error) {
	out, err := gotoml.Marshal(cfg)
	if err != nil {
		return "", rigerrors.Wrap(err, rigerrors.ErrInternal, "failed to render manifest")
	}
	return string(out), nil
}
