// Package registry contains the default [domain.Registry] implementation. It
// keeps one collection per database name, loading each snapshot from disk
// exactly once per process.
package registry

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/collection"
	"github.com/kivadb/kiva/internal/adapter/deserializer"
	"github.com/kivadb/kiva/internal/adapter/logger"
	"github.com/kivadb/kiva/internal/adapter/persistence"
)

const origin = "registry"

// Registry implements [domain.Registry].
type Registry struct {
	persistence  domain.Persistence
	deserializer domain.Deserializer
	logger       domain.Logger
	collOptions  []domain.CollectionOption

	mu    sync.Mutex
	open  map[string]domain.Collection
	group singleflight.Group
}

// NewRegistry returns a new implementation of [domain.Registry].
func NewRegistry(options ...domain.RegistryOption) domain.Registry {
	opts := domain.RegistryOptions{
		Persistence:  persistence.NewPersistence(),
		Deserializer: deserializer.NewDeserializer(),
		Logger:       logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}
	return &Registry{
		persistence:  opts.Persistence,
		deserializer: opts.Deserializer,
		logger:       opts.Logger,
		collOptions:  opts.CollectionOptions,
		open:         make(map[string]domain.Collection),
	}
}

// Open implements [domain.Registry]. Concurrent opens of the same name share
// one load.
func (r *Registry) Open(ctx context.Context, name string) (domain.Collection, error) {
	r.mu.Lock()
	if c, ok := r.open[name]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	v, err, _ := r.group.Do(name, func() (any, error) {
		return r.load(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return v.(domain.Collection), nil
}

func (r *Registry) load(ctx context.Context, name string) (domain.Collection, error) {
	r.mu.Lock()
	if c, ok := r.open[name]; ok {
		r.mu.Unlock()
		return c, nil
	}
	r.mu.Unlock()

	var snapshot domain.Document
	b, err := r.persistence.Load(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		r.logger.Emit(domain.LevelInfo, "creating database "+name, origin)
	case err != nil:
		return nil, err
	default:
		if err := r.deserializer.Deserialize(ctx, b, &snapshot); err != nil {
			return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
		}
	}

	options := append([]domain.CollectionOption{
		domain.WithCollectionLogger(r.logger),
		domain.WithCollectionPersistence(r.persistence),
	}, r.collOptions...)
	if snapshot != nil {
		options = append(options, domain.WithCollectionSnapshot(snapshot))
	}
	c, err := collection.NewCollection(name, options...)
	if err != nil {
		return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
	}

	r.mu.Lock()
	r.open[name] = c
	r.mu.Unlock()
	return c, nil
}

// Close implements [domain.Registry]. Pending writes are flushed before the
// collection is evicted.
func (r *Registry) Close(ctx context.Context, name string) error {
	r.mu.Lock()
	_, ok := r.open[name]
	r.mu.Unlock()
	if !ok {
		return domain.ErrNotFound
	}
	if err := r.persistence.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	delete(r.open, name)
	r.mu.Unlock()
	return nil
}

// CloseAll implements [domain.Registry].
func (r *Registry) CloseAll(ctx context.Context) error {
	if err := r.persistence.Wait(ctx); err != nil {
		return err
	}
	r.mu.Lock()
	clear(r.open)
	r.mu.Unlock()
	return nil
}
