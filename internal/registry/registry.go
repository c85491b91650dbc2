// Package registry lazily constructs generation engines and caches them for
// the life of the process.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	app_errors "neptune-ai/backend/internal/errors"
	"neptune-ai/backend/internal/llm"
	"neptune-ai/backend/internal/metrics"
)

// Loader builds the engine for one backend. It may be slow.
type Loader func(ctx context.Context) (llm.Engine, error)

// Registry maps backend ids to engines. At most one engine is ever built per
// id, concurrent first requests share a single load, and a failed load is
// retried on the next request.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]llm.Engine
	loaders map[string]Loader
	group   singleflight.Group
}

func New() *Registry {
	return &Registry{
		engines: make(map[string]llm.Engine),
		loaders: make(map[string]Loader),
	}
}

// Register adds or replaces the loader for id. An engine already cached for
// id is kept.
func (r *Registry) Register(id string, load Loader) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loaders[id] = load
}

// Resolve returns the cached engine for id, loading it on first use.
// The load runs detached from ctx so one impatient caller does not fail
// the others waiting on it.
func (r *Registry) Resolve(ctx context.Context, id string) (llm.Engine, error) {
	r.mu.RLock()
	engine, ok := r.engines[id]
	load, known := r.loaders[id]
	r.mu.RUnlock()
	if ok {
		return engine, nil
	}
	if !known {
		return nil, fmt.Errorf("%w: unknown backend %q", app_errors.ErrEngineUnavailable, id)
	}

	detached := context.WithoutCancel(ctx)
	ch := r.group.DoChan(id, func() (interface{}, error) {
		r.mu.RLock()
		cached, ok := r.engines[id]
		r.mu.RUnlock()
		if ok {
			return cached, nil
		}
		return r.load(detached, id, load)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(llm.Engine), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Registry) load(ctx context.Context, id string, load Loader) (llm.Engine, error) {
	start := time.Now()
	engine, err := load(ctx)
	metrics.EngineLoadDuration.WithLabelValues(id).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.EngineLoadsTotal.WithLabelValues(id, "error").Inc()
		log.Error().Err(err).Str("backend", id).Msg("engine load failed")
		if errors.Is(err, app_errors.ErrEngineUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %v", app_errors.ErrEngineUnavailable, id, err)
	}

	r.mu.Lock()
	r.engines[id] = engine
	n := len(r.engines)
	r.mu.Unlock()

	metrics.EngineLoadsTotal.WithLabelValues(id, "ok").Inc()
	metrics.EnginesLoaded.Set(float64(n))
	log.Info().Str("backend", id).Dur("took", time.Since(start)).Msg("engine loaded")
	return engine, nil
}

// Warm loads the given backends, logging rather than returning failures.
func (r *Registry) Warm(ctx context.Context, ids ...string) {
	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			if _, err := r.Resolve(ctx, id); err != nil {
				log.Warn().Err(err).Str("backend", id).Msg("preload failed, will retry on first request")
			}
		}(id)
	}
	wg.Wait()
}

// Loaded lists the backends with a cached engine.
func (r *Registry) Loaded() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.engines))
	for id := range r.engines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Backends lists every registered backend id.
func (r *Registry) Backends() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.loaders))
	for id := range r.loaders {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
