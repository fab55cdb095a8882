package core

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

const appName = "media-organizer"

// Config is the merged result of the config file and the command line.
type Config struct {
	MediaSrc        string `toml:"media_src"`
	PhotosDst       string `toml:"photos_dst"`
	VideosDst       string `toml:"videos_dst"`
	Journal         string `toml:"journal"`
	LogLevel        string `toml:"log_level"`
	DryRun          bool   `toml:"dry_run"`
	TakeoutSidecars bool   `toml:"takeout_sidecars"`
}

// ConfigOverrides carries command line values. Empty strings and nil
// pointers mean "not given" and leave the file value alone.
type ConfigOverrides struct {
	MediaSrc        string
	PhotosDst       string
	VideosDst       string
	Journal         string
	LogLevel        string
	DryRun          *bool
	TakeoutSidecars *bool
}

// DefaultConfigPath returns where the config file is looked up when none is
// given explicitly, e.g. ~/.config/media-organizer/config.toml on Linux.
func DefaultConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config directory: %w", err)
	}
	return filepath.Join(dir, appName, "config.toml"), nil
}

// LoadConfig reads the config file, applies the command line overrides and
// validates the result. An explicit path must exist; the default file is
// only read when loadDefault is set and the file is present. The returned
// string is the file that was read, if any.
func LoadConfig(path string, loadDefault bool, over ConfigOverrides) (*Config, string, error) {
	cfg := Config{LogLevel: "info"}

	resolved, err := resolveConfigPath(path, loadDefault)
	if err != nil {
		return nil, "", err
	}
	if resolved != "" {
		if err := decodeConfigFile(resolved, &cfg); err != nil {
			return nil, "", err
		}
	}

	cfg.apply(over)

	if err := cfg.normalize(); err != nil {
		return nil, "", err
	}
	cfg.resolveSymlinks()
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}

	return &cfg, resolved, nil
}

func resolveConfigPath(path string, loadDefault bool) (string, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", err
		}
		if _, err := os.Stat(expanded); err != nil {
			return "", fmt.Errorf("failed to load config file %q: %w", expanded, err)
		}
		return expanded, nil
	}

	if !loadDefault {
		return "", nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, nil
	}
	return "", nil
}

func decodeConfigFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(cfg); err != nil {
		return fmt.Errorf("parse config %q: %w", path, err)
	}
	return nil
}

func (c *Config) apply(over ConfigOverrides) {
	if over.MediaSrc != "" {
		c.MediaSrc = over.MediaSrc
	}
	if over.PhotosDst != "" {
		c.PhotosDst = over.PhotosDst
	}
	if over.VideosDst != "" {
		c.VideosDst = over.VideosDst
	}
	if over.Journal != "" {
		c.Journal = over.Journal
	}
	if over.LogLevel != "" {
		c.LogLevel = over.LogLevel
	}
	if over.DryRun != nil {
		c.DryRun = *over.DryRun
	}
	if over.TakeoutSidecars != nil {
		c.TakeoutSidecars = *over.TakeoutSidecars
	}
}

func (c *Config) normalize() error {
	var err error
	for _, p := range []*string{&c.MediaSrc, &c.PhotosDst, &c.VideosDst, &c.Journal} {
		*p = strings.TrimSpace(*p)
		if *p == "" {
			continue
		}
		if *p, err = ExpandPath(*p); err != nil {
			return err
		}
	}
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	return nil
}

// Validate reports every problem with the configuration at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.MediaSrc == "" {
		result = multierror.Append(result, errors.New("media source is required"))
	} else if !isDir(c.MediaSrc) {
		result = multierror.Append(result, fmt.Errorf("media source dir %q doesn't exist", c.MediaSrc))
	}

	if c.PhotosDst == "" && c.VideosDst == "" {
		result = multierror.Append(result, errors.New("at least one of photos_dst or videos_dst shouldn't be empty"))
	}
	if c.PhotosDst != "" && !isDir(c.PhotosDst) {
		result = multierror.Append(result, fmt.Errorf("photos destination dir %q doesn't exist", c.PhotosDst))
	}
	if c.VideosDst != "" && !isDir(c.VideosDst) {
		result = multierror.Append(result, fmt.Errorf("videos destination dir %q doesn't exist", c.VideosDst))
	}
	for _, dst := range []string{c.PhotosDst, c.VideosDst} {
		if dst != "" && dst == c.MediaSrc {
			result = multierror.Append(result, fmt.Errorf("destination %q cannot be the media source", dst))
		}
	}

	if hclog.LevelFromString(c.LogLevel) == hclog.NoLevel {
		result = multierror.Append(result, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	return result.ErrorOrNil()
}

// resolveSymlinks makes the directory roots comparable, so a destination
// reached through a link is still recognized as the source or as nested in
// it. Paths that don't resolve are left for Validate to report.
func (c *Config) resolveSymlinks() {
	for _, p := range []*string{&c.MediaSrc, &c.PhotosDst, &c.VideosDst} {
		if *p == "" {
			continue
		}
		if resolved, err := filepath.EvalSymlinks(*p); err == nil {
			*p = resolved
		}
	}
}

// ExpandPath expands a leading "~" and returns a clean absolute path.
func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSampleConfig writes a commented sample configuration to path. An
// existing file is never overwritten.
func CreateSampleConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file %q already exists", path)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
