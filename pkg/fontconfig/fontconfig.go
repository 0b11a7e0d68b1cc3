// Package fontconfig maintains the user fontconfig file so that fonts
// installed under ~/.local/share/fonts are picked up. Existing user
// configuration is preserved; only the missing <dir> element is added.
package fontconfig

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/beevik/etree"

	"github.com/arthur-debert/dotrig/pkg/errors"
	"github.com/arthur-debert/dotrig/pkg/logging"
)

const doctype = `fontconfig SYSTEM "urn:fontconfig:fonts.dtd"`

// EnsureFontDir makes sure configPath declares fontDir as a font
// directory. The file is created when absent and left untouched when the
// directory is already declared.
func EnsureFontDir(configPath, fontDir string) error {
	logger := logging.GetLogger("fontconfig")

	doc := etree.NewDocument()
	existing := true

	data, err := os.ReadFile(configPath)
	switch {
	case err == nil:
		if err := doc.ReadFromBytes(data); err != nil {
			return errors.Wrapf(err, errors.ErrConfigParse, "malformed fontconfig file %s", configPath)
		}
	case os.IsNotExist(err):
		existing = false
		doc.CreateProcInst("xml", `version="1.0"`)
		doc.CreateDirective("DOCTYPE " + doctype)
	default:
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read %s", configPath)
	}

	root := doc.SelectElement("fontconfig")
	if root == nil {
		if existing {
			return errors.Newf(errors.ErrConfigParse, "%s has no <fontconfig> root element", configPath)
		}
		root = doc.CreateElement("fontconfig")
	}

	for _, dir := range root.SelectElements("dir") {
		if strings.TrimSpace(dir.Text()) == fontDir {
			logger.Debug().Str("dir", fontDir).Msg("Font directory already declared")
			return nil
		}
	}

	dirElem := root.CreateElement("dir")
	dirElem.SetText(fontDir)

	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", filepath.Dir(configPath))
	}

	doc.Indent(2)
	if err := doc.WriteToFile(configPath); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", configPath)
	}

	logger.Info().Str("path", configPath).Str("dir", fontDir).Msg("Declared font directory")
	return nil
}
