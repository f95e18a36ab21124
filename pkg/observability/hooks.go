// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about namespace migration, cache operations, and API calls.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// This approach:
//   - Avoids import cycles (hooks are registered by main, not by libraries)
//   - Keeps the core library dependency-free from observability frameworks
//   - Allows different backends (OpenTelemetry, Prometheus, DataDog, etc.)
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetMigrationHooks(&myMigrationHooks{})
//	    observability.SetCacheHooks(&myCacheHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Migration().OnSubstitute(ctx, oldName, newName, version)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Migration Hooks
// =============================================================================

// MigrationHooks receives events from the namespace migration core.
type MigrationHooks interface {
	// OnSubstitute records a candidate-pool substitution of oldName by newName at version.
	OnSubstitute(ctx context.Context, oldName, newName, version string)

	// OnInstallRecorded records a deprecated package that was observed being
	// installed or updated and queued for post-install cleanup.
	OnInstallRecorded(ctx context.Context, name, version string)

	// OnManifestRewrite records a root requirement rename.
	OnManifestRewrite(ctx context.Context, oldName, newName string)

	// OnUninstall records removal of a deprecated package from the installed set.
	OnUninstall(ctx context.Context, name string, err error)

	// OnLockUpdate records the nested lock-only update pass.
	OnLockUpdate(ctx context.Context, dir string, duration time.Duration, err error)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopMigrationHooks is a no-op implementation of MigrationHooks.
type NoopMigrationHooks struct{}

func (NoopMigrationHooks) OnSubstitute(context.Context, string, string, string)       {}
func (NoopMigrationHooks) OnInstallRecorded(context.Context, string, string)          {}
func (NoopMigrationHooks) OnManifestRewrite(context.Context, string, string)          {}
func (NoopMigrationHooks) OnUninstall(context.Context, string, error)                 {}
func (NoopMigrationHooks) OnLockUpdate(context.Context, string, time.Duration, error) {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	migrationHooks MigrationHooks = NoopMigrationHooks{}
	cacheHooks     CacheHooks     = NoopCacheHooks{}
	httpHooks      HTTPHooks      = NoopHTTPHooks{}
	hooksMu        sync.RWMutex
)

// SetMigrationHooks registers custom migration hooks.
// This should be called once at application startup before any migration runs.
func SetMigrationHooks(h MigrationHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		migrationHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Migration returns the registered migration hooks.
func Migration() MigrationHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return migrationHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	migrationHooks = NoopMigrationHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
