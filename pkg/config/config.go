// Package config loads the provisioning manifest. Configuration is merged
// from three layers: the embedded defaults, a dotrig.toml or dotrig.yaml in
// the source root, and DOTRIG_* environment variables.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	rigerrors "github.com/arthur-debert/dotrig/pkg/errors"
)

// EnvPrefix is the prefix for environment variable overrides
const EnvPrefix = "DOTRIG_"

// Manifest file names probed in the source root, in order
var manifestNames = []string{"dotrig.toml", ".dotrig.toml", "dotrig.yaml"}

// PackagesConfig describes the OS package installation step
type PackagesConfig struct {
	Install     []string `koanf:"install"`
	InstallFile []string `koanf:"install_file"`
	Names       []string `koanf:"names"`
	Prebuilt    string   `koanf:"prebuilt"`
}

// Repository describes one source repository to clone under tools/
type Repository struct {
	Name string `koanf:"name"`
	URL  string `koanf:"url"`
	// Dir is the clone target relative to tools/, defaulting to Name
	Dir string `koanf:"dir"`
}

// CloneDir returns the clone target directory relative to tools/
func (r Repository) CloneDir() string {
	if r.Dir != "" {
		return r.Dir
	}
	return r.Name
}

// Tool describes one tool to compile and install
type Tool struct {
	Name string `koanf:"name"`
	// Dir is the build directory relative to tools/, defaulting to Name
	Dir string `koanf:"dir"`
	// Build holds the shell command lines run in Dir, in order
	Build []string `koanf:"build"`
}

// BuildDir returns the build directory relative to tools/
func (t Tool) BuildDir() string {
	if t.Dir != "" {
		return t.Dir
	}
	return t.Name
}

// AssetsConfig toggles the optional asset steps
type AssetsConfig struct {
	Fonts            bool `koanf:"fonts"`
	Wallpapers       bool `koanf:"wallpapers"`
	RefreshFontCache bool `koanf:"refresh_font_cache"`
}

// StarshipConfig describes the remote prompt installer step
type StarshipConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
}

// DeployConfig tunes the dotfiles deployment
type DeployConfig struct {
	// Ignore lists dotfiles entries that are never deployed
	Ignore []string `koanf:"ignore"`
}

// Config is the fully merged manifest
type Config struct {
	Packages PackagesConfig `koanf:"packages"`
	Repos    []Repository   `koanf:"repos"`
	Tools    []Tool         `koanf:"tools"`
	Assets   AssetsConfig   `koanf:"assets"`
	Starship StarshipConfig `koanf:"starship"`
	Deploy   DeployConfig   `koanf:"deploy"`
}

// Load merges defaults, the manifest file in sourceRoot (when present),
// environment overrides, and finally explicit overrides, then unmarshals
// into a Config.
func Load(sourceRoot string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultManifest}, toml.Parser()); err != nil {
		return nil, rigerrors.Wrap(err, rigerrors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. Manifest file in the source root, first match wins
	for _, name := range manifestNames {
		path := filepath.Join(sourceRoot, name)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		parser := parserFor(path)
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, rigerrors.Wrapf(err, rigerrors.ErrConfigParse, "failed to parse manifest %s", path)
		}
		break
	}

	// 3. Environment overrides: DOTRIG_STARSHIP_ENABLED=false etc.
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.Replace(
			strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".", 1)
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, rigerrors.Wrap(err, rigerrors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Explicit overrides from the CLI
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, rigerrors.Wrap(err, rigerrors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, rigerrors.Wrap(err, rigerrors.ErrConfigParse, "failed to decode manifest")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func parserFor(path string) koanf.Parser {
	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return yaml.Parser()
	}
	return toml.Parser()
}

func (c *Config) validate() error {
	if len(c.Packages.Install) == 0 {
		return rigerrors.New(rigerrors.ErrConfigValid, "packages.install must not be empty")
	}
	for _, repo := range c.Repos {
		if repo.Name == "" || repo.URL == "" {
			return rigerrors.Newf(rigerrors.ErrConfigValid,
				"repository entries need name and url, got name=%q url=%q", repo.Name, repo.URL)
		}
	}
	for _, tool := range c.Tools {
		if tool.Name == "" {
			return rigerrors.New(rigerrors.ErrConfigValid, "tool entries need a name")
		}
		if len(tool.Build) == 0 {
			return rigerrors.Newf(rigerrors.ErrConfigValid, "tool %q has no build commands", tool.Name)
		}
	}
	if c.Starship.Enabled && c.Starship.URL == "" {
		return rigerrors.New(rigerrors.ErrConfigValid, "starship.url must be set when starship is enabled")
	}
	return nil
}
