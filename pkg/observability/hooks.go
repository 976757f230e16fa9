// Package observability carries layout, cache and API events to whatever
// the binary registers. The pipeline, cache and server packages only call
// Layout(), Cache() and HTTP(); the CLI registers log-backed hooks at debug
// level and leaves the no-ops in place otherwise.
//
//	observability.SetLayoutHooks(hooks)
//	defer observability.Reset()
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Layout Hooks
// =============================================================================

// LayoutHooks receives events from the layout pipeline.
type LayoutHooks interface {
	// Snapshot loading
	OnLoadStart(ctx context.Context, companyID string)
	OnLoadComplete(ctx context.Context, companyID string, projectCount int, duration time.Duration, err error)

	// Strategy execution
	OnLayoutStart(ctx context.Context, strategy string, nodeCount int)
	OnLayoutComplete(ctx context.Context, strategy string, duration time.Duration, err error)

	// Collision resolution
	OnCollision(ctx context.Context, iterations, corrections int, converged bool)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives snapshot cache events. keyType is the key namespace,
// e.g. "hierarchy".
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives API events. OnError fires before OnResponse for a
// request that failed, with the error code sent to the client.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, path string)
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, path, code string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopLayoutHooks is a no-op implementation of LayoutHooks.
type NoopLayoutHooks struct{}

func (NoopLayoutHooks) OnLoadStart(context.Context, string)                               {}
func (NoopLayoutHooks) OnLoadComplete(context.Context, string, int, time.Duration, error) {}
func (NoopLayoutHooks) OnLayoutStart(context.Context, string, int)                        {}
func (NoopLayoutHooks) OnLayoutComplete(context.Context, string, time.Duration, error)    {}
func (NoopLayoutHooks) OnCollision(context.Context, int, int, bool)                       {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)         {}

// =============================================================================
// Registry
// =============================================================================

type registry struct {
	mu     sync.RWMutex
	layout LayoutHooks
	cache  CacheHooks
	http   HTTPHooks
}

var hooks = newRegistry()

func newRegistry() *registry {
	return &registry{layout: NoopLayoutHooks{}, cache: NoopCacheHooks{}, http: NoopHTTPHooks{}}
}

// set stores h in *slot unless h is nil.
func set[T comparable](slot *T, h T) {
	var zero T
	if h == zero {
		return
	}
	hooks.mu.Lock()
	*slot = h
	hooks.mu.Unlock()
}

func get[T any](slot *T) T {
	hooks.mu.RLock()
	defer hooks.mu.RUnlock()
	return *slot
}

// SetLayoutHooks registers h for layout events. A nil h is ignored.
func SetLayoutHooks(h LayoutHooks) { set(&hooks.layout, h) }

// SetCacheHooks registers h for snapshot cache events. A nil h is ignored.
func SetCacheHooks(h CacheHooks) { set(&hooks.cache, h) }

// SetHTTPHooks registers h for API events. A nil h is ignored.
func SetHTTPHooks(h HTTPHooks) { set(&hooks.http, h) }

// Layout returns the registered layout hooks.
func Layout() LayoutHooks { return get(&hooks.layout) }

// Cache returns the registered cache hooks.
func Cache() CacheHooks { return get(&hooks.cache) }

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks { return get(&hooks.http) }

// Reset restores the no-op hooks.
func Reset() {
	fresh := newRegistry()
	hooks.mu.Lock()
	hooks.layout, hooks.cache, hooks.http = fresh.layout, fresh.cache, fresh.http
	hooks.mu.Unlock()
}
