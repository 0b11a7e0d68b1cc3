package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/defaults.toml
var defaultManifest []byte

// GetDefaultManifest returns the embedded default manifest content
func GetDefaultManifest() string {
	return string(defaultManifest)
}

// rawBytesProvider implements a koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
