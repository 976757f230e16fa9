// Package config loads crmmap settings from a TOML file and the environment.
//
// Precedence, lowest first: [Default], the TOML file, environment variables,
// command-line flags (applied by the CLI). A minimal file:
//
//	[layout]
//	strategy = "tree"
//
//	[layout.params]
//	radius_client = 360
//	direction = "TB"
//
//	[cache]
//	backend = "redis"
//	redis_url = "redis://localhost:6379/0"
//
//	[source]
//	kind = "mongo"
//	mongo_uri = "mongodb://localhost:27017"
//	database = "crm"
package config

import (
	"errors"
	"io/fs"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
	"github.com/matzehuels/crmmap/pkg/layout"
	"github.com/matzehuels/crmmap/pkg/layout/tree"
	"github.com/matzehuels/crmmap/pkg/pipeline"
	"github.com/matzehuels/crmmap/pkg/render/nodelink"
	"github.com/matzehuels/crmmap/pkg/visibility"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Source kinds.
const (
	SourceFile  = "file"
	SourceMongo = "mongo"
)

// Config is the full configuration.
type Config struct {
	Layout    LayoutConfig              `toml:"layout"`
	Collision pipeline.CollisionOptions `toml:"collision"`
	Solver    SolverConfig              `toml:"solver"`
	Server    ServerConfig              `toml:"server"`
	Cache     CacheConfig               `toml:"cache"`
	Source    SourceConfig              `toml:"source"`
}

// LayoutConfig holds the defaults of a layout request.
type LayoutConfig struct {
	Strategy      string        `toml:"strategy"`
	Density       string        `toml:"density"`
	ConnectorMode string        `toml:"connector_mode"`
	Params        layout.Params `toml:"params"`
}

// SolverConfig configures the Graphviz solver of the tree strategy.
type SolverConfig struct {
	Timeout time.Duration `toml:"timeout"`
	Routing string        `toml:"routing"`
	RankSep float64       `toml:"rank_sep"`
	NodeSep float64       `toml:"node_sep"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// CacheConfig configures the snapshot cache.
type CacheConfig struct {
	Backend  string        `toml:"backend"`
	Dir      string        `toml:"dir"` // empty means the user cache directory
	RedisURL string        `toml:"redis_url"`
	TTL      time.Duration `toml:"ttl"`
}

// SourceConfig selects where company snapshots come from.
type SourceConfig struct {
	Kind     string `toml:"kind"`
	Path     string `toml:"path"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Default returns the built-in configuration.
func Default() Config {
	sp := nodelink.DefaultSpacing()
	return Config{
		Layout: LayoutConfig{
			Strategy:      string(layout.StrategyRadial),
			Density:       string(density.Overview),
			ConnectorMode: string(visibility.ConnectorNeighborhood),
			Params:        layout.DefaultParams(),
		},
		Solver: SolverConfig{
			Timeout: pipeline.DefaultSolverTimeout,
			Routing: string(tree.RoutingOrtho),
			RankSep: sp.RankSep,
			NodeSep: sp.NodeSep,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: CacheConfig{
			Backend: CacheFile,
			TTL:     5 * time.Minute,
		},
		Source: SourceConfig{
			Kind:     SourceFile,
			Path:     ".",
			Database: "crm",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path skips the file. Unknown keys are
// rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return Config{}, crmerrors.Wrap(crmerrors.ErrCodeNotFound, err, "config file %s", path)
			}
			return Config{}, crmerrors.Wrap(crmerrors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			sort.Strings(keys)
			return Config{}, crmerrors.New(crmerrors.ErrCodeInvalidConfig, "unknown keys in %s: %s", path, strings.Join(keys, ", "))
		}
	}
	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides connection settings from the environment. getenv is
// usually os.Getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := getenv(k); v != "" {
				*dst = v
				return
			}
		}
	}
	set(&c.Server.Addr, "CRMMAP_ADDR")
	set(&c.Cache.Backend, "CRMMAP_CACHE")
	set(&c.Cache.Dir, "CRMMAP_CACHE_DIR")
	set(&c.Cache.RedisURL, "CRMMAP_REDIS_URL", "REDIS_URL")
	set(&c.Source.Kind, "CRMMAP_SOURCE")
	set(&c.Source.Path, "CRMMAP_SOURCE_PATH")
	set(&c.Source.MongoURI, "CRMMAP_MONGO_URI", "MONGODB_URI")
	set(&c.Source.Database, "CRMMAP_MONGO_DATABASE")
}

// Validate checks every section. Errors carry INVALID_CONFIG.
func (c *Config) Validate() error {
	invalid := func(err error, what string) error {
		return crmerrors.Wrap(crmerrors.ErrCodeInvalidConfig, err, "%s", what)
	}

	if _, err := layout.ParseStrategy(c.Layout.Strategy); err != nil {
		return invalid(err, "layout.strategy")
	}
	if _, err := density.ParseMode(c.Layout.Density); err != nil {
		return invalid(err, "layout.density")
	}
	if _, err := visibility.ParseConnectorMode(c.Layout.ConnectorMode); err != nil {
		return invalid(err, "layout.connector_mode")
	}
	if d := c.Layout.Params.Direction; d != "" && d != layout.DirectionLR && d != layout.DirectionTB {
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "layout.params.direction must be LR or TB, got %q", d)
	}
	if c.Collision.MinDistance < 0 || c.Collision.MaxIterations < 0 {
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "collision settings must not be negative")
	}

	switch tree.Routing(c.Solver.Routing) {
	case tree.RoutingOrtho, tree.RoutingPolyline:
	default:
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "solver.routing must be ortho or polyline, got %q", c.Solver.Routing)
	}
	if c.Solver.Timeout < 0 || c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "timeouts must not be negative")
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if c.Cache.RedisURL == "" {
			return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}

	switch c.Source.Kind {
	case SourceFile:
		if c.Source.Path == "" {
			return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "source.path is required for the file source")
		}
	case SourceMongo:
		if c.Source.MongoURI == "" || c.Source.Database == "" {
			return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "source.mongo_uri and source.database are required for the mongo source")
		}
	default:
		return crmerrors.New(crmerrors.ErrCodeInvalidConfig, "source.kind must be file or mongo, got %q", c.Source.Kind)
	}
	return nil
}

// Request returns a layout request carrying the configured defaults.
func (c *Config) Request() pipeline.Request {
	return pipeline.Request{
		Strategy:  layout.Strategy(c.Layout.Strategy),
		Params:    c.Layout.Params,
		Collision: c.Collision,
		Interaction: visibility.State{
			ConnectorMode: visibility.ConnectorMode(c.Layout.ConnectorMode),
			DensityMode:   density.Mode(c.Layout.Density),
		},
	}
}

// Spacing returns the solver spacing.
func (c *Config) Spacing() nodelink.Spacing {
	return nodelink.Spacing{RankSep: c.Solver.RankSep, NodeSep: c.Solver.NodeSep}
}
