package source

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/crmmap/pkg/cache"
	"github.com/matzehuels/crmmap/pkg/hierarchy"
	"github.com/matzehuels/crmmap/pkg/observability"
)

// DefaultTTL is how long a cached snapshot is served before reloading.
const DefaultTTL = 5 * time.Minute

const cacheKeyType = "hierarchy"

// CachedSource serves snapshots from a cache and falls back to Inner on a
// miss. Cache failures are logged and never fail a load.
type CachedSource struct {
	Inner  Source
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
	Logger *log.Logger
}

// NewCachedSource wraps inner. A nil cache disables caching and a nil keyer
// uses the default one.
func NewCachedSource(inner Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedSource {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &CachedSource{Inner: inner, Cache: c, Keyer: keyer, TTL: ttl, Logger: logger}
}

// Name implements Source.
func (s *CachedSource) Name() string { return s.Inner.Name() }

// Load implements Source.
func (s *CachedSource) Load(ctx context.Context, companyID string) (hierarchy.Tree, error) {
	return s.load(ctx, companyID, false)
}

// Refresh reloads companyID from Inner and overwrites the cached copy.
func (s *CachedSource) Refresh(ctx context.Context, companyID string) (hierarchy.Tree, error) {
	return s.load(ctx, companyID, true)
}

func (s *CachedSource) load(ctx context.Context, companyID string, refresh bool) (hierarchy.Tree, error) {
	key := s.Keyer.HierarchyKey(s.Inner.Name(), companyID)
	hooks := observability.Cache()

	if !refresh {
		data, hit, err := s.Cache.Get(ctx, key)
		switch {
		case err != nil:
			s.Logger.Warn("cache read failed", "company", companyID, "err", err)
		case hit:
			if t, err := hierarchy.UnmarshalTree(data); err == nil {
				hooks.OnCacheHit(ctx, cacheKeyType)
				s.Logger.Debug("cache hit", "company", companyID)
				return t, nil
			}
			_ = s.Cache.Delete(ctx, key)
		}
		hooks.OnCacheMiss(ctx, cacheKeyType)
	}

	t, err := s.Inner.Load(ctx, companyID)
	if err != nil {
		return hierarchy.Tree{}, err
	}

	data, err := hierarchy.MarshalTree(t)
	if err != nil {
		s.Logger.Warn("encode snapshot for cache", "company", companyID, "err", err)
		return t, nil
	}
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		s.Logger.Warn("cache write failed", "company", companyID, "err", err)
		return t, nil
	}
	hooks.OnCacheSet(ctx, cacheKeyType, len(data))
	return t, nil
}

// Close closes the cache and, if it holds resources, the wrapped source.
func (s *CachedSource) Close(ctx context.Context) error {
	err := s.Cache.Close()
	if c, ok := s.Inner.(interface{ Close(context.Context) error }); ok {
		err = errors.Join(err, c.Close(ctx))
	}
	return err
}

var _ Source = (*CachedSource)(nil)
