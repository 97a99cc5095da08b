// Package cli implements the kintree command-line interface.
package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/pkg/avatar"
	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/config"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands. Config is loaded by the root
// command before any subcommand runs.
type CLI struct {
	Logger *log.Logger
	Config config.Config

	configPath string
	verbose    bool
}

// New creates a new CLI instance with a default logger and the built-in
// configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// setup runs before every command: it applies --verbose, loads the config
// file and attaches the logger to the command context.
func (c *CLI) setup(cmd *cobra.Command) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetServerHooks(hooks)
	}

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(withLogger(ctx, c.Logger))
	return nil
}

// =============================================================================
// Factories
// =============================================================================

// newCache opens the configured cache backend. Redis keys are namespaced by
// cache.key_prefix and every key is scoped to the build version.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, cache.Keyer, error) {
	cc := c.Config.Cache
	keyer := cache.NewScopedKeyer(nil, buildinfo.Version+":")
	if noCache || cc.Backend == config.CacheNone {
		return cache.NewNullCache(), keyer, nil
	}

	switch cc.Backend {
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cc.RedisAddr,
			Password: cc.RedisPassword,
			DB:       cc.RedisDB,
			Prefix:   cc.KeyPrefix,
		})
		if err != nil {
			return nil, nil, err
		}
		return rc, keyer, nil
	default:
		dir, err := cc.CacheDir()
		if err != nil {
			c.Logger.Warn("cache disabled", "err", err)
			return cache.NewNullCache(), keyer, nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, nil, err
		}
		return fc, keyer, nil
	}
}

// newRunner creates a pipeline runner backed by the configured cache. Raster
// output inlines avatars from the presets and uploads directories, falling
// back to HTTP for absolute references.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	ch, keyer, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(ch, keyer, c.Logger).WithInliner(c.newInliner()), nil
}

func (c *CLI) newInliner() *avatar.Inliner {
	sc := c.Config.Storage
	loader := avatar.Chain{
		avatar.DirLoader{
			"/presets/":                       sc.PresetsDir,
			store.DefaultUploadsPrefix + "/": sc.UploadsDir,
		},
		avatar.NewHTTPLoader(),
	}
	return avatar.NewInliner(loader, "", c.Logger)
}

// newStore opens the configured person-list store.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	sc := c.Config.Storage
	if sc.Backend == config.StorageMongo {
		ms, err := store.NewMongoStore(ctx, store.MongoOptions{
			URI:      sc.MongoURI,
			Database: sc.MongoDatabase,
		})
		if err != nil {
			return nil, err
		}
		return ms, nil
	}
	fs, err := store.NewFileStore(sc.DataDir)
	if err != nil {
		return nil, err
	}
	return fs, nil
}

// pipelineOptions returns options seeded from the config file.
func (c *CLI) pipelineOptions() pipeline.Options {
	return pipeline.Options{
		Layout:  c.Config.Layout,
		Presets: c.Config.Presets,
		BaseURL: c.Config.Server.BaseURL,
		Logger:  c.Logger,
	}
}
