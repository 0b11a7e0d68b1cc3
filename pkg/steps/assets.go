package steps

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/fontconfig"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// Fonts returns the font installation step: copy the fonts tree to the
// user font directory, declare it in fontconfig, and refresh the font
// cache. The step is a no-op when the source directory is absent.
func (b *Builder) Fonts() pipeline.Step {
	return pipeline.Step{
		Name:        "fonts",
		Description: "Install fonts",
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.fonts")

			src := b.paths.FontsSourceDir()
			if _, err := os.Stat(src); os.IsNotExist(err) {
				logger.Info().Str("dir", src).Msg("No fonts directory, skipping")
				return nil
			}

			dst := b.paths.UserFontsDir()
			if err := copyTree(src, dst); err != nil {
				return err
			}

			if err := fontconfig.EnsureFontDir(b.paths.FontconfigPath(), dst); err != nil {
				return err
			}

			if b.cfg.Assets.RefreshFontCache {
				if err := b.runner.Run(ctx, "", "fc-cache", "-f"); err != nil {
					return errors.Wrap(err, errors.ErrInternal, "refreshing font cache failed")
				}
			}
			return nil
		},
	}
}

// Wallpapers returns the wallpaper installation step, a no-op when the
// source directory is absent.
func (b *Builder) Wallpapers() pipeline.Step {
	return pipeline.Step{
		Name:        "wallpapers",
		Description: "Install wallpapers",
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.wallpapers")

			src := b.paths.WallpapersSourceDir()
			if _, err := os.Stat(src); os.IsNotExist(err) {
				logger.Info().Str("dir", src).Msg("No wallpapers directory, skipping")
				return nil
			}

			return copyTree(src, b.paths.PicturesDir())
		},
	}
}

// copyTree copies the contents of src into dst, creating directories as
// needed and overwriting existing files
func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot walk %s", path)
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relativize %s", path)
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", target)
			}
			return nil
		}

		return copyFile(path, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src)
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCreate, "cannot create %s", dst)
	}

	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot copy %s", dst)
	}
	if err := out.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot close %s", dst)
	}
	return nil
}
