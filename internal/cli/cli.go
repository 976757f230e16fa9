// Package cli implements the crmmap command-line interface.
//
// Commands:
//   - layout: lay out a company and write JSON, SVG, PNG, PDF or DOT
//   - hierarchy: print the filtered client and project tree
//   - explore: interactive terminal view that recomputes on every change
//   - serve: run the HTTP API
//   - cache: manage the snapshot cache
//
// Every command accepts --config to load a TOML file; see package config.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/crmmap/pkg/buildinfo"
	"github.com/matzehuels/crmmap/pkg/cache"
	"github.com/matzehuels/crmmap/pkg/config"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
	"github.com/matzehuels/crmmap/pkg/observability"
	"github.com/matzehuels/crmmap/pkg/pipeline"
	"github.com/matzehuels/crmmap/pkg/render/nodelink"
	"github.com/matzehuels/crmmap/pkg/source"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "crmmap"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level pipeline and cache
// events are logged too.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		hooks := &logHooks{logger: c.Logger}
		observability.SetLayoutHooks(hooks)
		observability.SetCacheHooks(hooks)
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "crmmap lays out company, client and project hierarchies",
		Long:         `crmmap computes radial and layered tree layouts of a company's clients and projects, with interaction-aware edge styling, and renders them or serves them over HTTP.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", os.Getenv("CRMMAP_CONFIG"), "TOML config file")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.hierarchyCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Runner Factory
// =============================================================================

func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	if c.configPath != "" {
		c.Logger.Debug("loaded config", "path", c.configPath)
	}
	return cfg, nil
}

// newEngine builds an engine whose tree strategy is solved by Graphviz.
func (c *CLI) newEngine(cfg config.Config) *pipeline.Engine {
	solver := nodelink.NewSolver(c.Logger)
	solver.Spacing = cfg.Spacing()

	engine := pipeline.NewEngine(solver, c.Logger)
	engine.SolverTimeout = cfg.Solver.Timeout
	engine.Tree.Routing = tree.Routing(cfg.Solver.Routing)
	return engine
}

// newRunner creates a pipeline runner reading from the configured source
// through the configured cache. Callers must Close it.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	src, err := c.newSource(ctx, cfg)
	if err != nil {
		return nil, err
	}
	backend, err := c.newCache(cfg, noCache)
	if err != nil {
		if closer, ok := src.(interface{ Close(context.Context) error }); ok {
			_ = closer.Close(ctx)
		}
		return nil, err
	}

	keyer := cache.NewDefaultKeyer()
	if cfg.Source.Kind == config.SourceMongo {
		keyer = cache.NewScopedKeyer(keyer, cfg.Source.Database+":")
	}
	cached := source.NewCachedSource(src, backend, keyer, cfg.Cache.TTL, c.Logger)
	return pipeline.NewRunner(cached, c.newEngine(cfg), c.Logger), nil
}

func (c *CLI) newSource(ctx context.Context, cfg config.Config) (source.Source, error) {
	switch cfg.Source.Kind {
	case config.SourceMongo:
		ms, err := source.NewMongoSource(ctx, cfg.Source.MongoURI, cfg.Source.Database, c.Logger)
		if err != nil {
			return nil, err
		}
		return ms, nil
	default:
		return source.NewFileSource(cfg.Source.Path), nil
	}
}

func (c *CLI) newCache(cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.CacheNone:
		return cache.NewNullCache(), nil
	case config.CacheRedis:
		rc, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		return rc, nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		d, err := cacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		dir = d
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/crmmap/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
