package steps

import (
	"context"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// Packages returns the OS package installation step. When a prebuilt
// package file is configured and present it is installed afterwards.
func (b *Builder) Packages() pipeline.Step {
	return pipeline.Step{
		Name:        "packages",
		Description: "Install OS packages",
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.packages")

			if len(b.cfg.Packages.Names) == 0 {
				logger.Info().Msg("No packages configured, skipping")
				return nil
			}

			cmd := b.cfg.Packages.Install
			args := append(append([]string{}, cmd[1:]...), b.cfg.Packages.Names...)
			if err := b.runner.Run(ctx, "", cmd[0], args...); err != nil {
				return errors.Wrap(err, errors.ErrPackageInstall, "package installation failed")
			}

			return b.installPrebuilt(ctx)
		},
	}
}

// installPrebuilt installs the optional prebuilt package file. A missing
// file is not an error, matching the optional-asset behavior.
func (b *Builder) installPrebuilt(ctx context.Context) error {
	logger := logging.GetLogger("steps.packages")

	if b.cfg.Packages.Prebuilt == "" {
		return nil
	}

	pkgFile := b.cfg.Packages.Prebuilt
	if !filepath.IsAbs(pkgFile) {
		pkgFile = filepath.Join(b.paths.SourceRoot(), pkgFile)
	}

	if _, err := os.Stat(pkgFile); os.IsNotExist(err) {
		logger.Info().Str("file", pkgFile).Msg("Prebuilt package file absent, skipping")
		return nil
	}

	cmd := b.cfg.Packages.InstallFile
	if len(cmd) == 0 {
		return errors.New(errors.ErrConfigValid, "packages.install_file is empty but a prebuilt file is configured")
	}

	args := append(append([]string{}, cmd[1:]...), pkgFile)
	if err := b.runner.Run(ctx, "", cmd[0], args...); err != nil {
		return errors.Wrapf(err, errors.ErrPackageInstall, "prebuilt package %s failed to install", pkgFile)
	}
	return nil
}
