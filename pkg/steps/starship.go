package steps

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
	"github.com/arthur-debert/dotrig/pkg/pipeline"
)

// downloadTimeout bounds the installer download so a dead mirror cannot
// hang the whole run
const downloadTimeout = 2 * time.Minute

// Starship returns the prompt installation step: download the remote
// install script and run it with the user bin directory as target.
func (b *Builder) Starship() pipeline.Step {
	return pipeline.Step{
		Name:        "starship",
		Description: "Install the starship prompt",
		Run: func(ctx context.Context) error {
			logger := logging.GetLogger("steps.starship")

			if err := os.MkdirAll(b.paths.UserBinDir(), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", b.paths.UserBinDir())
			}

			script, err := downloadScript(ctx, b.cfg.Starship.URL)
			if err != nil {
				return err
			}
			defer func() { _ = os.Remove(script) }()

			logger.Info().Str("url", b.cfg.Starship.URL).Msg("Running starship installer")

			err = b.runner.Run(ctx, "", "sh", script, "-b", b.paths.UserBinDir(), "-y")
			if err != nil {
				return errors.Wrap(err, errors.ErrInternal, "starship installer failed")
			}
			return nil
		},
	}
}

// downloadScript fetches the installer into a temp file and returns its path
func downloadScript(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, downloadTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidInput, "invalid installer URL %q", url)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrDownload, "cannot download %s", url)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", errors.Newf(errors.ErrDownload, "downloading %s returned %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp("", "dotrig-installer-*.sh")
	if err != nil {
		return "", errors.Wrap(err, errors.ErrFileCreate, "cannot create temp file for installer")
	}

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", errors.Wrapf(err, errors.ErrDownload, "cannot save installer from %s", url)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", errors.Wrap(err, errors.ErrFileWrite, "cannot close installer file")
	}

	return filepath.Clean(tmp.Name()), nil
}
