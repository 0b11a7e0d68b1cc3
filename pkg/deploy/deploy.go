// Package deploy installs the dotfiles tree into the user's home and XDG
// config directories with conflict-safe semantics: every pre-existing
// file, directory, or symlink at a target path is removed before the new
// link is established.
//
// Deployment is split into three phases so that destruction is plannable:
//
//	Scan  — enumerate the source tree and compute target paths
//	Plan  — classify every target against the live filesystem (pure, no
//	        mutation), yielding the removals that must happen
//	Apply — execute the removals, then create the links
package deploy

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/paths"
	"github.com/rs/zerolog"
)

// EntryKind classifies what currently occupies a target path
type EntryKind string

const (
	KindAbsent    EntryKind = "absent"
	KindFile      EntryKind = "file"
	KindDirectory EntryKind = "directory"
	KindSymlink   EntryKind = "symlink"
)

// Mapping associates one source entry with its target path
type Mapping struct {
	// Name is the entry name under the dotfiles tree
	Name string
	// Source is the absolute path of the entry in the source tree
	Source string
	// Target is the absolute path the entry deploys to
	Target string
}

// Removal is one planned destructive operation
type Removal struct {
	Path string
	Kind EntryKind
}

// Plan is the full deployment plan. Removals are computed in advance so
// callers can render them, gate them behind confirmation, or dry-run.
type Plan struct {
	// Links are the mappings that need a new symlink
	Links []Mapping
	// Removals are the targets that must be cleared first
	Removals []Removal
	// Satisfied are mappings whose target already links to the source
	Satisfied []Mapping
}

// Empty reports whether the plan has no work to do
func (p *Plan) Empty() bool {
	return len(p.Links) == 0 && len(p.Removals) == 0
}

// Deployer performs conflict-safe dotfiles deployment
type Deployer struct {
	paths  *paths.Paths
	ignore map[string]struct{}
	logger zerolog.Logger
}

// New creates a Deployer. Entries named in ignore are never deployed.
func New(p *paths.Paths, ignore []string) *Deployer {
	ignoreSet := make(map[string]struct{}, len(ignore))
	for _, name := range ignore {
		ignoreSet[name] = struct{}{}
	}
	return &Deployer{
		paths:  p,
		ignore: ignoreSet,
		logger: logging.GetLogger("deploy"),
	}
}

// Scan enumerates the dotfiles tree and computes the target mapping for
// every deployable entry. Top-level entries map to dot-prefixed paths in
// the home directory; children of the config subtree map item-by-item
// into the XDG config directory with no further renaming.
func (d *Deployer) Scan() ([]Mapping, error) {
	root := d.paths.DotfilesDir()
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDeployScan, "cannot read dotfiles tree %s", root)
	}

	var mappings []Mapping
	for _, entry := range entries {
		name := entry.Name()
		if _, skip := d.ignore[name]; skip {
			d.logger.Debug().Str("entry", name).Msg("Ignoring dotfiles entry")
			continue
		}

		if name == paths.ConfigSubtreeName && entry.IsDir() {
			sub, err := d.scanConfigSubtree(filepath.Join(root, name))
			if err != nil {
				return nil, err
			}
			mappings = append(mappings, sub...)
			continue
		}

		mappings = append(mappings, Mapping{
			Name:   name,
			Source: filepath.Join(root, name),
			Target: d.paths.HomeTarget(name),
		})
	}

	sort.Slice(mappings, func(i, j int) bool { return mappings[i].Target < mappings[j].Target })

	d.logger.Debug().Int("entries", len(mappings)).Str("root", root).Msg("Scanned dotfiles tree")
	return mappings, nil
}

func (d *Deployer) scanConfigSubtree(dir string) ([]Mapping, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrDeployScan, "cannot read config subtree %s", dir)
	}

	var mappings []Mapping
	for _, entry := range entries {
		name := entry.Name()
		if _, skip := d.ignore[name]; skip {
			continue
		}
		mappings = append(mappings, Mapping{
			Name:   name,
			Source: filepath.Join(dir, name),
			Target: d.paths.ConfigTarget(name),
		})
	}
	return mappings, nil
}

// BuildPlan classifies every mapping's target against the live filesystem
// and returns the full plan. It performs no mutation.
func (d *Deployer) BuildPlan(mappings []Mapping) (*Plan, error) {
	plan := &Plan{}

	for _, m := range mappings {
		kind := Classify(m.Target)

		if kind == KindSymlink && d.satisfies(m) {
			plan.Satisfied = append(plan.Satisfied, m)
			continue
		}

		if kind != KindAbsent {
			plan.Removals = append(plan.Removals, Removal{Path: m.Target, Kind: kind})
		}
		plan.Links = append(plan.Links, m)
	}

	d.logger.Debug().
		Int("links", len(plan.Links)).
		Int("removals", len(plan.Removals)).
		Int("satisfied", len(plan.Satisfied)).
		Msg("Computed deployment plan")

	return plan, nil
}

// satisfies reports whether the target symlink already resolves to the
// mapping's source entry. A link into any other tree is a conflict.
func (d *Deployer) satisfies(m Mapping) bool {
	dest, err := os.Readlink(m.Target)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(m.Target), dest)
	}
	return filepath.Clean(dest) == filepath.Clean(m.Source)
}

// Apply executes the plan: clear every conflicting target, then create
// the links. There is no rollback; on error the already-deployed entries
// remain deployed and the error names the failing path.
func (d *Deployer) Apply(plan *Plan) error {
	for _, removal := range plan.Removals {
		d.logger.Info().
			Str("path", removal.Path).
			Str("kind", string(removal.Kind)).
			Msg("Removing conflicting entry")

		if err := os.RemoveAll(removal.Path); err != nil {
			return errors.Wrapf(err, errors.ErrDeployRemove, "cannot remove %s", removal.Path)
		}
	}

	for _, m := range plan.Links {
		parent := filepath.Dir(m.Target)
		if err := os.MkdirAll(parent, 0755); err != nil {
			return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", parent)
		}

		if err := os.Symlink(m.Source, m.Target); err != nil {
			return errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s -> %s", m.Target, m.Source)
		}

		d.logger.Info().
			Str("source", m.Source).
			Str("target", m.Target).
			Msg("Linked entry")
	}

	return nil
}

// Classify reports what currently occupies path. Broken symlinks count
// as symlinks, not as absent.
func Classify(path string) EntryKind {
	info, err := os.Lstat(path)
	if err != nil {
		return KindAbsent
	}
	switch {
	case info.Mode()&os.ModeSymlink != 0:
		return KindSymlink
	case info.IsDir():
		return KindDirectory
	default:
		return KindFile
	}
}
