// Package paths provides centralized path handling for dotrig.
// It resolves the provisioning source root and the target locations
// under the user's home directory, following the XDG Base Directory
// specification for configuration and state.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/dotrig/pkg/errors"
)

// Environment variable names
const (
	// EnvSourceRoot overrides the provisioning source root
	EnvSourceRoot = "DOTRIG_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Names of directories expected under the source root. These are part of
// the source tree contract, not user-configurable; the configurable pieces
// live in pkg/config.
const (
	// DotfilesDirName is the dotfiles tree under the source root
	DotfilesDirName = "dotfiles"

	// ToolsDirName holds the cloned tool sources under the source root
	ToolsDirName = "tools"

	// FontsDirName is the optional fonts directory under the source root
	FontsDirName = "fonts"

	// WallpapersDirName is the optional wallpapers directory under the source root
	WallpapersDirName = "wallpapers"

	// ConfigSubtreeName is the dotfiles entry that maps into XDG config
	ConfigSubtreeName = "config"
)

// Paths resolves every location dotrig reads from or writes to. It is
// constructed once at startup and never mutated.
type Paths struct {
	sourceRoot string
	home       string
	configHome string
	stateHome  string
}

// New creates a Paths instance. sourceRoot may be empty, in which case
// DOTRIG_ROOT is consulted and, failing that, the directory containing
// the running executable is used.
func New(sourceRoot string) (*Paths, error) {
	root := sourceRoot
	if root == "" {
		root = os.Getenv(EnvSourceRoot)
	}
	if root == "" {
		exe, err := os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot locate executable for source root fallback")
		}
		root = filepath.Dir(exe)
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid source root %q", root)
	}

	home := os.Getenv(EnvHome)
	if home == "" {
		home, err = os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "cannot determine home directory")
		}
	}

	// xdg caches the environment at process start; reload so HOME and
	// XDG_* overrides applied since then (tests rely on this) are seen
	xdg.Reload()
	configHome := xdg.ConfigHome
	if configHome == "" {
		configHome = filepath.Join(home, ".config")
	}

	stateHome := xdg.StateHome
	if stateHome == "" {
		stateHome = filepath.Join(home, ".local", "state")
	}

	return &Paths{
		sourceRoot: absRoot,
		home:       home,
		configHome: configHome,
		stateHome:  stateHome,
	}, nil
}

// SourceRoot returns the provisioning source tree root
func (p *Paths) SourceRoot() string {
	return p.sourceRoot
}

// Home returns the target home directory
func (p *Paths) Home() string {
	return p.home
}

// ConfigDir returns the XDG config directory for the target user
func (p *Paths) ConfigDir() string {
	return p.configHome
}

// StateDir returns dotrig's own state directory
func (p *Paths) StateDir() string {
	return filepath.Join(p.stateHome, "dotrig")
}

// DotfilesDir returns the dotfiles tree under the source root
func (p *Paths) DotfilesDir() string {
	return filepath.Join(p.sourceRoot, DotfilesDirName)
}

// ToolsDir returns the directory holding tool source trees
func (p *Paths) ToolsDir() string {
	return filepath.Join(p.sourceRoot, ToolsDirName)
}

// ToolDir returns the source tree for a named tool
func (p *Paths) ToolDir(name string) string {
	return filepath.Join(p.ToolsDir(), name)
}

// FontsSourceDir returns the optional fonts directory under the source root
func (p *Paths) FontsSourceDir() string {
	return filepath.Join(p.sourceRoot, FontsDirName)
}

// WallpapersSourceDir returns the optional wallpapers directory under the source root
func (p *Paths) WallpapersSourceDir() string {
	return filepath.Join(p.sourceRoot, WallpapersDirName)
}

// UserFontsDir returns the per-user font installation directory
func (p *Paths) UserFontsDir() string {
	return filepath.Join(p.home, ".local", "share", "fonts")
}

// UserBinDir returns the per-user binary directory
func (p *Paths) UserBinDir() string {
	return filepath.Join(p.home, ".local", "bin")
}

// PicturesDir returns the wallpaper installation directory
func (p *Paths) PicturesDir() string {
	return filepath.Join(p.home, "Pictures")
}

// FontconfigPath returns the user fontconfig file
func (p *Paths) FontconfigPath() string {
	return filepath.Join(p.configHome, "fontconfig", "fonts.conf")
}

// HomeTarget maps a top-level dotfiles entry to its dot-prefixed home path
func (p *Paths) HomeTarget(entry string) string {
	return filepath.Join(p.home, "."+entry)
}

// ConfigTarget maps an entry of the config subtree to its XDG config path
func (p *Paths) ConfigTarget(entry string) string {
	return filepath.Join(p.configHome, entry)
}
