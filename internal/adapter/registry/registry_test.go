package registry

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/data"
	"github.com/kivadb/kiva/internal/adapter/persistence"
)

type M = data.M

type RegistryTestSuite struct {
	suite.Suite
	registry domain.Registry
	dir      string
	name     string
	ctx      context.Context
}

func (s *RegistryTestSuite) SetupTest() {
	s.dir = s.T().TempDir()
	s.name = uuid.New().String()
	s.ctx = context.Background()
	s.registry = NewRegistry(domain.WithRegistryPersistence(
		persistence.NewPersistence(domain.WithPersistenceDirectory(s.dir)),
	))
}

// A name with no snapshot opens as an empty database.
func (s *RegistryTestSuite) TestOpenCreates() {
	c, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)
	s.Equal(s.name, c.Name())
	s.Equal(0, c.Len())
}

// Opening the same name twice returns the same collection.
func (s *RegistryTestSuite) TestOpenIsIdempotent() {
	a, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)

	_, err = a.Insert(s.ctx, M{"_id": "1"}, domain.WithInsertSkipSave(true))
	s.NoError(err)

	b, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)
	s.Same(a, b)
	s.Equal(1, b.Len())
}

// Concurrent opens of the same name share one load.
func (s *RegistryTestSuite) TestOpenConcurrent() {
	const workers = 8
	results := make([]domain.Collection, workers)

	var wg sync.WaitGroup
	for n := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c, err := s.registry.Open(s.ctx, s.name)
			s.NoError(err)
			results[n] = c
		}()
	}
	wg.Wait()

	for n := 1; n < workers; n++ {
		s.Same(results[0], results[n])
	}
}

// Documents survive a close and reopen through the snapshot file.
func (s *RegistryTestSuite) TestReopenLoadsSnapshot() {
	c, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)
	_, err = c.Insert(s.ctx, M{"_id": "1", "name": "foo"})
	s.NoError(err)

	s.NoError(s.registry.Close(s.ctx, s.name))

	again, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)
	s.NotSame(c, again)
	s.Equal(1, again.Len())

	doc, err := again.FindOne(s.ctx, M{"_id": "1"})
	s.NoError(err)
	s.Equal("foo", doc.Get("name"))
}

func (s *RegistryTestSuite) TestCloseUnknown() {
	s.ErrorIs(s.registry.Close(s.ctx, "never opened"), domain.ErrNotFound)
}

func (s *RegistryTestSuite) TestCloseAll() {
	_, err := s.registry.Open(s.ctx, s.name)
	s.NoError(err)
	other := uuid.New().String()
	_, err = s.registry.Open(s.ctx, other)
	s.NoError(err)

	s.NoError(s.registry.CloseAll(s.ctx))
	s.ErrorIs(s.registry.Close(s.ctx, s.name), domain.ErrNotFound)
	s.ErrorIs(s.registry.Close(s.ctx, other), domain.ErrNotFound)
}

// A corrupt snapshot is ErrStoreUnavailable, not a silent empty database.
func (s *RegistryTestSuite) TestOpenCorruptSnapshot() {
	path := filepath.Join(s.dir, s.name+".json")
	s.NoError(os.WriteFile(path, []byte(`{"1":`), 0o644))

	_, err := s.registry.Open(s.ctx, s.name)
	var target *domain.ErrStoreUnavailable
	s.ErrorAs(err, &target)
	s.Equal(s.name, target.Name)
}

func (s *RegistryTestSuite) TestOpenBadName() {
	_, err := s.registry.Open(s.ctx, "a/b")
	var target *domain.ErrDatabaseName
	s.ErrorAs(err, &target)
}

// Options forwarded at registry construction reach every collection.
func (s *RegistryTestSuite) TestForwardedCollectionOptions() {
	var inserts []string
	factory := func(in any) (domain.Document, error) {
		doc, err := data.New(in)
		if err == nil && doc.Has("_id") {
			inserts = append(inserts, doc.ID())
		}
		return doc, err
	}
	r := NewRegistry(
		domain.WithRegistryPersistence(
			persistence.NewPersistence(domain.WithPersistenceDirectory(s.dir)),
		),
		domain.WithRegistryCollectionOptions(
			domain.WithCollectionDocumentFactory(factory),
		),
	)
	c, err := r.Open(s.ctx, s.name)
	s.NoError(err)
	_, err = c.Insert(s.ctx, M{"_id": "1"}, domain.WithInsertSkipSave(true))
	s.NoError(err)
	s.Contains(inserts, "1")
}

func TestRegistryTestSuite(t *testing.T) {
	suite.Run(t, new(RegistryTestSuite))
}
