// Package steps defines the concrete provisioning steps dotrig runs:
// package installation, source cloning, tool builds, asset installation,
// the prompt installer, and the final dotfiles deployment. The package
// turns the loaded manifest into the ordered step list the pipeline
// runner executes.
package steps

import (
	"github.com/arthur-debert/dotrig/pkg/config"
	"github.com/arthur-debert/dotrig/pkg/deploy"
	"github.com/arthur-debert/dotrig/pkg/paths"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
	"github.com/arthur-debert/dotrig/pkg/shell"
)

// Builder assembles pipeline steps from the manifest
type Builder struct {
	cfg      *config.Config
	paths    *paths.Paths
	runner   shell.Runner
	deployer *deploy.Deployer
}

// NewBuilder creates a step builder
func NewBuilder(cfg *config.Config, p *paths.Paths, runner shell.Runner) *Builder {
	return &Builder{
		cfg:      cfg,
		paths:    p,
		runner:   runner,
		deployer: deploy.New(p, cfg.Deploy.Ignore),
	}
}

// Deployer returns the deployer the deploy step uses, so commands can
// plan deployments without running the whole pipeline.
func (b *Builder) Deployer() *deploy.Deployer {
	return b.deployer
}

// All returns the full provisioning pipeline in execution order:
// packages, clones, builds, assets, prompt installer, dotfiles deploy.
func (b *Builder) All() []pipeline.Step {
	var steps []pipeline.Step

	steps = append(steps, b.Packages())
	steps = append(steps, b.Clones()...)
	steps = append(steps, b.Builds()...)

	if b.cfg.Assets.Fonts {
		steps = append(steps, b.Fonts())
	}
	if b.cfg.Assets.Wallpapers {
		steps = append(steps, b.Wallpapers())
	}
	if b.cfg.Starship.Enabled {
		steps = append(steps, b.Starship())
	}

	steps = append(steps, b.DeployDotfiles())
	return steps
}
