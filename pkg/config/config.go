// Package config defines the project manifest: the single logical
// description of an app from which every platform project is generated.
package config

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/crossgen/crossgen/pkg/errors"
	"github.com/crossgen/crossgen/pkg/identifier"
	"github.com/crossgen/crossgen/pkg/logging"
	"github.com/crossgen/crossgen/pkg/targets"
)

// ManifestName is the file name of the project manifest inside a
// generated project's root directory.
const ManifestName = "crossgen.toml"

// DefaultTemplatePack is used when the user doesn't pick a pack.
const DefaultTemplatePack = "default"

// Defaults for minimum OS versions, matching what the bundled template
// packs are written against.
const (
	DefaultMinAndroidSDK = 24
	DefaultMinIOSVersion = "13.0"
)

// ProjectConfig is the persisted project descriptor. Field order here is
// the order keys are written to the manifest, so keep it stable to keep
// manifest diffs minimal.
type ProjectConfig struct {
	AppName       string             `toml:"app-name"`
	DomainPrefix  string             `toml:"domain"`
	Platforms     []targets.Platform `toml:"platforms"`
	TemplatePack  string             `toml:"template-pack"`
	MinAndroidSDK int                `toml:"min-android-sdk"`
	MinIOSVersion string             `toml:"min-ios-version"`
	Targets       []string           `toml:"targets,omitempty"`
}

// New validates and returns a ProjectConfig. Validation runs identifier
// derivation and target resolution up front: a config that cannot derive
// valid platform identifiers is rejected here, never deferred to render
// time. Both the interactive and the flag-driven construction paths go
// through this same function.
func New(cfg ProjectConfig) (*ProjectConfig, error) {
	logger := logging.GetLogger("config")

	if cfg.TemplatePack == "" {
		cfg.TemplatePack = DefaultTemplatePack
	}
	if cfg.MinAndroidSDK == 0 {
		cfg.MinAndroidSDK = DefaultMinAndroidSDK
	}
	if cfg.MinIOSVersion == "" {
		cfg.MinIOSVersion = DefaultMinIOSVersion
	}

	if len(cfg.Platforms) == 0 {
		return nil, errors.New(errors.ErrConfigValid, "at least one platform must be enabled").
			WithDetail("field", "platforms")
	}
	for _, p := range cfg.Platforms {
		if _, err := targets.ParsePlatform(string(p)); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigValid, "invalid platform in config").
				WithDetail("field", "platforms")
		}
	}

	if _, err := identifier.Derive(cfg.AppName, cfg.DomainPrefix); err != nil {
		return nil, err
	}
	if _, err := targets.Resolve(cfg.Platforms, cfg.Targets); err != nil {
		return nil, err
	}

	logger.Debug().Str("appName", cfg.AppName).Str("pack", cfg.TemplatePack).Msg("Config validated")
	return &cfg, nil
}

// Identifiers returns the derived identifier set for this config. The
// derivation is cached, so calling this repeatedly is cheap.
func (c *ProjectConfig) Identifiers() (*identifier.Set, error) {
	return identifier.Derive(c.AppName, c.DomainPrefix)
}

// ResolveTargets expands the config's platform and target lists into
// concrete build targets.
func (c *ProjectConfig) ResolveTargets() ([]targets.ConcreteTarget, error) {
	return targets.Resolve(c.Platforms, c.Targets)
}

// HasPlatform reports whether the given platform is enabled.
func (c *ProjectConfig) HasPlatform(p targets.Platform) bool {
	for _, enabled := range c.Platforms {
		if enabled == p {
			return true
		}
	}
	return false
}

// Load reads and validates the manifest in the given project directory.
func Load(projectDir string) (*ProjectConfig, error) {
	path := filepath.Join(projectDir, ManifestName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrNotFound, "project manifest not found").
				WithDetail("path", path)
		}
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot read project manifest").
			WithDetail("path", path)
	}

	var cfg ProjectConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot parse project manifest").
			WithDetail("path", path)
	}
	return New(cfg)
}

// Save writes the manifest into the given project directory. Keys are
// written in struct order, so a load/save cycle produces a minimal diff.
func (c *ProjectConfig) Save(projectDir string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode project manifest")
	}
	path := filepath.Join(projectDir, ManifestName)
	if err := os.MkdirAll(projectDir, 0755); err != nil {
		return errors.Wrap(err, errors.ErrDirCreate, "cannot create project directory").
			WithDetail("path", projectDir)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "cannot write project manifest").
			WithDetail("path", path)
	}
	return nil
}
