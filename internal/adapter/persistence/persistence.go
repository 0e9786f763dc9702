// Package persistence contains the default [domain.Persistence]
// implementation: one snapshot file per database name, written by a
// per-name goroutine so callers never block on IO.
package persistence

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/logger"
	"github.com/kivadb/kiva/internal/adapter/storage"
	"github.com/kivadb/kiva/pkg/ctxsync"
)

const origin = "persistence"

// writer holds the pending snapshot for one database. Saves overwrite the
// queued snapshot; the flush goroutine always writes the latest one.
type writer struct {
	mu     sync.Mutex
	queued []byte
	busy   bool
}

// Persistence implements [domain.Persistence].
type Persistence struct {
	directory string
	extension string
	fileMode  os.FileMode
	dirMode   os.FileMode
	storage   domain.Storage
	logger    domain.Logger
	errorHook domain.ErrorHook

	mu       sync.Mutex
	writers  map[string]*writer
	inflight atomic.Int64
	flush    *ctxsync.Cond
}

// NewPersistence returns a new implementation of [domain.Persistence].
func NewPersistence(options ...domain.PersistenceOption) domain.Persistence {
	opts := domain.PersistenceOptions{
		Directory: "data",
		Extension: ".json",
		FileMode:  0o644,
		DirMode:   0o755,
		Storage:   storage.NewStorage(),
		Logger:    logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}
	return &Persistence{
		directory: opts.Directory,
		extension: opts.Extension,
		fileMode:  opts.FileMode,
		dirMode:   opts.DirMode,
		storage:   opts.Storage,
		logger:    opts.Logger,
		errorHook: opts.ErrorHook,
		writers:   make(map[string]*writer),
		flush:     ctxsync.NewCond(),
	}
}

// Load implements [domain.Persistence].
func (p *Persistence) Load(ctx context.Context, name string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := p.path(name)
	if err != nil {
		return nil, err
	}
	exists, err := p.storage.Exists(path)
	if err != nil {
		return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
	}
	if !exists {
		tempExists, err := p.storage.Exists(path + "~")
		if err != nil {
			return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
		}
		if !tempExists {
			return nil, domain.ErrNotFound
		}
		if err := p.storage.EnsureDatafileIntegrity(path, p.fileMode); err != nil {
			return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
		}
	}
	b, err := p.storage.ReadFile(path, p.fileMode)
	if err != nil {
		return nil, &domain.ErrStoreUnavailable{Name: name, Cause: err}
	}
	return b, nil
}

// Save implements [domain.Persistence]. It replaces any snapshot still queued
// for the same name and spawns the flush goroutine if one isn't running.
func (p *Persistence) Save(name string, snapshot []byte) {
	w := p.writerFor(name)

	w.mu.Lock()
	w.queued = snapshot
	if w.busy {
		w.mu.Unlock()
		return
	}
	w.busy = true
	w.mu.Unlock()

	p.inflight.Add(1)
	go p.run(name, w)
}

// run drains the writer's queued snapshots until none remain.
func (p *Persistence) run(name string, w *writer) {
	defer func() {
		p.inflight.Add(-1)
		p.flush.Broadcast()
	}()
	for {
		w.mu.Lock()
		snapshot := w.queued
		if snapshot == nil {
			w.busy = false
			w.mu.Unlock()
			return
		}
		w.queued = nil
		w.mu.Unlock()

		if err := p.write(name, snapshot); err != nil {
			p.logger.Emit(domain.LevelError, err.Error(), origin)
			if p.errorHook != nil {
				p.errorHook(name, err)
			}
		}
	}
}

func (p *Persistence) write(name string, snapshot []byte) error {
	path, err := p.path(name)
	if err != nil {
		return err
	}
	if err := p.storage.EnsureParentDirectoryExists(path, p.dirMode); err != nil {
		return err
	}
	return p.storage.CrashSafeWriteFile(path, snapshot, p.dirMode, p.fileMode)
}

// Wait implements [domain.Persistence]. It grabs the broadcast channel before
// re-checking the counter so a flush finishing in between cannot be missed.
func (p *Persistence) Wait(ctx context.Context) error {
	for {
		ch := p.flush.Chan()
		if p.inflight.Load() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

func (p *Persistence) writerFor(name string) *writer {
	p.mu.Lock()
	defer p.mu.Unlock()
	w, ok := p.writers[name]
	if !ok {
		w = &writer{}
		p.writers[name] = w
	}
	return w
}

// path maps a database name to its snapshot file. Names that would escape
// the directory or collide with temp files are rejected.
func (p *Persistence) path(name string) (string, error) {
	if name == "" ||
		strings.ContainsRune(name, os.PathSeparator) ||
		strings.ContainsRune(name, '/') ||
		strings.HasSuffix(name, "~") ||
		name == "." || name == ".." {
		return "", &domain.ErrDatabaseName{Name: name}
	}
	return filepath.Join(p.directory, name+p.extension), nil
}
