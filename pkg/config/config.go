// Package config loads kintree.toml.
//
// Every setting has a default, so a missing file is not an error unless its
// path was given explicitly. Command-line flags are applied on top of the
// loaded values by the caller.
//
//	[server]
//	addr = ":8000"
//	base_url = "http://localhost:8000"
//	cors_origins = ["*"]
//
//	[storage]
//	backend = "file"          # file | mongo
//	data_dir = "data"
//	uploads_dir = "uploads"
//	presets_dir = "presets"
//	mongo_uri = "mongodb://localhost:27017"
//	mongo_database = "kintree"
//
//	[cache]
//	backend = "file"          # file | redis | none
//	dir = ""                  # defaults to $XDG_CACHE_HOME/kintree
//	redis_addr = "localhost:6379"
//	redis_password = ""
//	redis_db = 0
//	key_prefix = "kintree:"
//
//	[layout]
//	row_spacing = 140
//	min_gap = 120
//
//	[presets]
//	M = ["/presets/m1.png", "/presets/m2.png"]
//	F = ["/presets/f1.png"]
//	Otro = ["/presets/o1.png"]
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/kintree/pkg/avatar"
	kerrors "github.com/matzehuels/kintree/pkg/errors"
	"github.com/matzehuels/kintree/pkg/layout"
)

const (
	appName  = "kintree"
	fileName = "kintree.toml"
)

// Storage backends.
const (
	StorageFile  = "file"
	StorageMongo = "mongo"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the full configuration file.
type Config struct {
	Server  ServerConfig   `toml:"server"`
	Storage StorageConfig  `toml:"storage"`
	Cache   CacheConfig    `toml:"cache"`
	Layout  layout.Options `toml:"layout"`
	Presets avatar.Presets `toml:"presets"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr        string   `toml:"addr"`
	BaseURL     string   `toml:"base_url"`
	CORSOrigins []string `toml:"cors_origins"`
}

// StorageConfig selects where saved lists and uploads live.
type StorageConfig struct {
	Backend       string `toml:"backend"`
	DataDir       string `toml:"data_dir"`
	UploadsDir    string `toml:"uploads_dir"`
	PresetsDir    string `toml:"presets_dir"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// CacheConfig selects the layout and artifact cache.
type CacheConfig struct {
	Backend       string `toml:"backend"`
	Dir           string `toml:"dir"`
	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
	KeyPrefix     string `toml:"key_prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:        ":8000",
			BaseURL:     "http://localhost:8000",
			CORSOrigins: []string{"*"},
		},
		Storage: StorageConfig{
			Backend:       StorageFile,
			DataDir:       "data",
			UploadsDir:    "uploads",
			PresetsDir:    "presets",
			MongoDatabase: "kintree",
		},
		Cache: CacheConfig{
			Backend:   CacheFile,
			RedisAddr: "localhost:6379",
			KeyPrefix: appName + ":",
		},
		Layout:  layout.DefaultOptions(),
		Presets: avatar.DefaultPresets(),
	}
}

// Load reads the file at path over the defaults. An empty path means
// DefaultPath, which may be absent.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		return cfg, nil
	}
	if err != nil {
		return Config{}, kerrors.Wrap(kerrors.ErrCodeNotFound, err, "open config")
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Decode reads TOML from r into cfg, keeping values of keys the input does
// not set. Unknown keys are rejected.
func Decode(r io.Reader, cfg *Config) error {
	md, err := toml.NewDecoder(r).Decode(cfg)
	if err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidFormat, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return kerrors.New(kerrors.ErrCodeInvalidInput, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	return cfg.Validate()
}

// Encode writes cfg as TOML.
func Encode(cfg Config, w io.Writer) error {
	return toml.NewEncoder(w).Encode(cfg)
}

// Validate checks enumerated values and layout spacing.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case StorageFile:
	case StorageMongo:
		if c.Storage.MongoURI == "" {
			return kerrors.New(kerrors.ErrCodeInvalidInput, "storage.mongo_uri is required for the mongo backend")
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidInput, "storage.backend must be file or mongo, got %q", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.RedisAddr == "" {
			return kerrors.New(kerrors.ErrCodeInvalidInput, "cache.redis_addr is required for the redis backend")
		}
	default:
		return kerrors.New(kerrors.ErrCodeInvalidInput, "cache.backend must be file, redis or none, got %q", c.Cache.Backend)
	}
	if err := c.Layout.Validate(); err != nil {
		return kerrors.Wrap(kerrors.ErrCodeInvalidInput, err, "layout")
	}
	return nil
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/kintree/kintree.toml, falling back to
// ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	if home := os.Getenv("XDG_CONFIG_HOME"); home != "" {
		return filepath.Join(home, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// CacheDir returns the configured cache directory, or the XDG default
// ~/.cache/kintree.
func (c CacheConfig) CacheDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
