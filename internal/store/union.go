package store

import (
	"context"
	"time"

	"github.com/transport-data/tools/internal/cachemanager"
	"github.com/transport-data/tools/internal/config"
	"github.com/transport-data/tools/internal/log"
	"github.com/transport-data/tools/internal/sdmx"
	"github.com/transport-data/tools/internal/urn"
	"github.com/transport-data/tools/internal/watcher"
)

// Compile-time check that Union implements Store.
var _ Store = (*Union)(nil)

// Union is the single entry point callers use: it owns one local store
// and one registry store and routes each operation by the identity's
// maintainer. Maintainers in the configured registry set are durable and
// citable; everything else is per-user working state.
//
// Construct one Union per process (or per test) and thread it through
// call sites; there is no package-level instance.
type Union struct {
	local    Store
	registry *Registry

	registryMaintainers map[string]bool

	cache    *cachemanager.ReadThroughCache[string, *sdmx.Artefact, urn.Identity]
	cacheTTL time.Duration

	// now is replaceable in tests of the generated annotation.
	now func() time.Time
}

// New builds a Union from configuration: local and registry roots under
// the resolved data dir, the configured remote, and the registry
// maintainer set.
func New(cfg config.Config) (*Union, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dataDir := cfg.ResolvedDataDir()
	local := NewLocal(dataDir)
	registry := NewRegistry(dataDir, cfg.Registry.RemoteURL)
	return newUnion(local, registry, cfg.Registry.Maintainers, cfg.Cache), nil
}

// NewUnionWithBackends wires explicit backends, for tests that point
// each store at its own temporary directory.
func NewUnionWithBackends(local Store, registry *Registry, registryMaintainers []string, cacheCfg config.CacheConfig) *Union {
	return newUnion(local, registry, registryMaintainers, cacheCfg)
}

func newUnion(local Store, registry *Registry, maintainers []string, cacheCfg config.CacheConfig) *Union {
	u := &Union{
		local:               local,
		registry:            registry,
		registryMaintainers: make(map[string]bool, len(maintainers)),
		cacheTTL:            cacheCfg.TTL,
		now:                 time.Now,
	}
	for _, m := range maintainers {
		u.registryMaintainers[m] = true
	}

	mgr := cachemanager.NewInMemoryCacheManager[string, *sdmx.Artefact](
		"artefact-decode", cacheCfg.TTL, cachemanager.DefaultCleanupInterval)
	u.cache = cachemanager.NewReadThroughCache(mgr,
		func(_ context.Context, id urn.Identity) (*sdmx.Artefact, error) {
			return u.backendFor(id.Maintainer).Get(id)
		},
		!cacheCfg.Enabled,
	)
	return u
}

// backendFor resolves the dispatch key: configured registry maintainers
// route to the registry, every other maintainer to local.
func (u *Union) backendFor(maintainer string) Store {
	if u.registryMaintainers[maintainer] {
		return u.registry
	}
	return u.local
}

// Get implements Store, consulting exactly one backend through the
// decode cache.
func (u *Union) Get(id urn.Identity) (*sdmx.Artefact, error) {
	return u.cache.Get(context.Background(), id.URN(), id, u.cacheTTL)
}

// GetURN parses text (long or short form, versioned or not) and gets
// the artefact it names.
func (u *Union) GetURN(text string) (*sdmx.Artefact, error) {
	id, err := urn.Parse(text)
	if err != nil {
		return nil, err
	}
	return u.Get(id)
}

// Exists implements Store.
func (u *Union) Exists(id urn.Identity) bool {
	_, err := u.Get(id)
	return err == nil
}

// ExistsURN reports whether text names a stored artefact. Malformed
// text is false, not an error.
func (u *Union) ExistsURN(text string) bool {
	id, err := urn.Parse(text)
	if err != nil {
		return false
	}
	return u.Exists(id)
}

// Write implements Store. The artefact is stamped with a generated
// annotation, stored in the backend its maintainer routes to, and the
// affected cache entries are dropped.
func (u *Union) Write(a *sdmx.Artefact) error {
	sdmx.AnnotateGenerated(a, u.now())

	if err := u.backendFor(a.Identity.Maintainer).Write(a); err != nil {
		return err
	}

	// Both the pinned revision and the floating "latest" key are stale.
	return u.cache.Invalidate(context.Background(),
		a.Identity.URN(), a.Identity.Unversioned().URN())
}

// List implements Store. With a maintainer filter only the backend that
// maintainer routes to is consulted; otherwise both backends are
// queried and the results concatenated. The dispatch rule assigns each
// (class, maintainer, id) to exactly one backend, so no de-duplication
// is needed.
func (u *Union) List(f Filter) ([]urn.Identity, error) {
	if f.Maintainer != "" {
		return u.backendFor(f.Maintainer).List(f)
	}

	localIDs, err := u.local.List(f)
	if err != nil {
		return nil, err
	}
	registryIDs, err := u.registry.List(f)
	if err != nil {
		return nil, err
	}
	return append(localIDs, registryIDs...), nil
}

// AddToRegistry copies the artefact named by text from the local store
// to the registry, making a per-user working artefact citable. text may
// omit the version to copy the latest local revision.
func (u *Union) AddToRegistry(text string) error {
	id, err := urn.Parse(text)
	if err != nil {
		return err
	}

	a, err := u.local.Get(id)
	if err != nil {
		return err
	}

	sdmx.AnnotateGenerated(a, u.now())
	if err := u.registry.Write(a); err != nil {
		return err
	}
	return u.cache.Invalidate(context.Background(),
		a.Identity.URN(), a.Identity.Unversioned().URN())
}

// Clone forwards to the registry backend.
func (u *Union) Clone(ctx context.Context) error {
	return u.registry.Clone(ctx)
}

// Update forwards to the registry backend and, on success, flushes the
// decode cache: any cached registry artefact may now be stale.
func (u *Union) Update(ctx context.Context) error {
	if err := u.registry.Update(ctx); err != nil {
		return err
	}
	return u.cache.Flush(ctx)
}

// Registry exposes the registry backend for callers needing its git
// operations directly (the CLI).
func (u *Union) Registry() *Registry {
	return u.registry
}

// Local exposes the local backend.
func (u *Union) Local() Store {
	return u.local
}

// WatchInvalidate starts a file watcher over both backend roots and
// flushes the decode cache whenever artefact files change outside this
// process. Returns a stop function. Long-running callers (the
// interactive editor) use this; one-shot CLI commands do not need it.
func (u *Union) WatchInvalidate() (func(), error) {
	roots := []string{u.registry.Root()}
	if lf, ok := u.local.(interface{ Root() string }); ok {
		roots = append(roots, lf.Root())
	}

	w, err := watcher.New(watcher.DefaultConfig(roots...))
	if err != nil {
		return nil, err
	}
	ch, err := w.Start()
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	go func() {
		for {
			select {
			case _, ok := <-ch:
				if !ok {
					return
				}
				log.Debug(log.CatWatcher, "store roots changed, flushing decode cache")
				_ = u.cache.Flush(context.Background())
			case <-done:
				return
			}
		}
	}()

	return func() {
		close(done)
		_ = w.Stop()
	}, nil
}
