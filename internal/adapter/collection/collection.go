// Package collection contains the default [domain.Collection]
// implementation: an in-memory id-indexed document store with insertion-order
// scans and snapshot persistence.
package collection

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/comparer"
	"github.com/kivadb/kiva/internal/adapter/data"
	"github.com/kivadb/kiva/internal/adapter/decoder"
	"github.com/kivadb/kiva/internal/adapter/idgenerator"
	"github.com/kivadb/kiva/internal/adapter/logger"
	"github.com/kivadb/kiva/internal/adapter/matcher"
	"github.com/kivadb/kiva/internal/adapter/modifier"
	"github.com/kivadb/kiva/internal/adapter/projector"
	"github.com/kivadb/kiva/internal/adapter/serializer"
	"github.com/kivadb/kiva/internal/adapter/validator"
	"github.com/kivadb/kiva/pkg/ctxsync"
)

const origin = "collection"

// Collection implements [domain.Collection]. All operations run under a
// context-aware mutex, so a canceled context never leaves the store
// half-mutated.
type Collection struct {
	name string
	exec *ctxsync.Mutex

	// ids holds document ids in insertion order; docs is the primary index.
	ids  []string
	docs map[string]domain.Document

	logger      domain.Logger
	persistence domain.Persistence
	validator   domain.Validator
	matcher     domain.Matcher
	projector   domain.Projector
	modifier    domain.Modifier
	idGenerator domain.IDGenerator
	serializer  domain.Serializer
	decoder     domain.Decoder
	factory     domain.DocumentFactory
}

// NewCollection returns a new implementation of [domain.Collection] for the
// given database name. Without WithCollectionPersistence the collection is
// memory-only and Save is a no-op.
func NewCollection(name string, options ...domain.CollectionOption) (domain.Collection, error) {
	opts := domain.CollectionOptions{
		Logger:          logger.NewNopLogger(),
		Comparer:        comparer.NewComparer(),
		Projector:       projector.NewProjector(),
		IDGenerator:     idgenerator.NewIDGenerator(),
		Serializer:      serializer.NewSerializer(),
		Decoder:         decoder.NewDecoder(),
		DocumentFactory: data.New,
	}
	for _, option := range options {
		option(&opts)
	}
	if opts.Validator == nil {
		opts.Validator = validator.NewValidator(domain.WithValidatorLogger(opts.Logger))
	}
	if opts.Matcher == nil {
		opts.Matcher = matcher.NewMatcher(
			domain.WithMatcherComparer(opts.Comparer),
			domain.WithMatcherLogger(opts.Logger),
		)
	}
	if opts.Modifier == nil {
		opts.Modifier = modifier.NewModifier(
			domain.WithModifierComparer(opts.Comparer),
			domain.WithModifierLogger(opts.Logger),
		)
	}

	c := &Collection{
		name:        name,
		exec:        ctxsync.NewMutex(),
		docs:        make(map[string]domain.Document),
		logger:      opts.Logger,
		persistence: opts.Persistence,
		validator:   opts.Validator,
		matcher:     opts.Matcher,
		projector:   opts.Projector,
		modifier:    opts.Modifier,
		idGenerator: opts.IDGenerator,
		serializer:  opts.Serializer,
		decoder:     opts.Decoder,
		factory:     opts.DocumentFactory,
	}
	if opts.Snapshot != nil {
		if err := c.seed(opts.Snapshot); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// seed fills the store from a loaded snapshot. Snapshot order is not
// meaningful, so ids are sorted for a deterministic scan order.
func (c *Collection) seed(snapshot domain.Document) error {
	for id, value := range snapshot.Iter() {
		doc, ok := value.(domain.Document)
		if !ok {
			return &domain.ErrDocumentType{Value: value}
		}
		if doc.ID() != id {
			return &domain.ErrDocumentType{Value: value}
		}
		c.docs[id] = doc
		c.ids = append(c.ids, id)
	}
	sort.Strings(c.ids)
	return nil
}

// Name implements [domain.Collection].
func (c *Collection) Name() string { return c.name }

// Len implements [domain.Collection].
func (c *Collection) Len() int { return len(c.docs) }

// Count implements [domain.Collection].
func (c *Collection) Count(ctx context.Context, query any) (int64, error) {
	if err := c.exec.Lock(ctx); err != nil {
		return 0, err
	}
	defer c.exec.Unlock()

	matched, ok := c.matchIDs(query)
	if !ok {
		return 0, nil
	}
	return int64(len(matched)), nil
}

// Find implements [domain.Collection].
func (c *Collection) Find(ctx context.Context, query any, options ...domain.FindOption) ([]domain.Document, error) {
	opts := domain.FindOptions{}
	for _, option := range options {
		option(&opts)
	}

	if err := c.exec.Lock(ctx); err != nil {
		return nil, err
	}
	defer c.exec.Unlock()

	projection, ok := c.projection(opts.Projection)
	if !ok {
		return nil, nil
	}
	matched, ok := c.matchIDs(query)
	if !ok {
		return nil, nil
	}

	results := make([]domain.Document, 0, len(matched))
	for _, id := range matched {
		doc, err := c.projector.Project(c.docs[id], projection)
		if err != nil {
			c.diag(fmt.Sprintf("projection rejected: %v", err))
			return nil, nil
		}
		results = append(results, doc)
	}
	return results, nil
}

// FindOne implements [domain.Collection].
func (c *Collection) FindOne(ctx context.Context, query any, options ...domain.FindOption) (domain.Document, error) {
	opts := domain.FindOptions{}
	for _, option := range options {
		option(&opts)
	}

	if err := c.exec.Lock(ctx); err != nil {
		return nil, err
	}
	defer c.exec.Unlock()

	projection, ok := c.projection(opts.Projection)
	if !ok {
		return nil, nil
	}
	matched, ok := c.matchIDs(query)
	if !ok || len(matched) == 0 {
		return nil, nil
	}
	doc, err := c.projector.Project(c.docs[matched[0]], projection)
	if err != nil {
		c.diag(fmt.Sprintf("projection rejected: %v", err))
		return nil, nil
	}
	return doc, nil
}

// Insert implements [domain.Collection]. The empty id signals a rejected
// document: a bad shape, a $-prefixed field, a non-string _id or an _id
// collision.
func (c *Collection) Insert(ctx context.Context, doc any, options ...domain.InsertOption) (string, error) {
	opts := domain.InsertOptions{}
	for _, option := range options {
		option(&opts)
	}

	if err := c.exec.Lock(ctx); err != nil {
		return "", err
	}
	defer c.exec.Unlock()

	d, err := c.factory(doc)
	if err != nil {
		c.diag(fmt.Sprintf("insert rejected: %v", err))
		return "", nil
	}
	if d == nil || d.Len() == 0 {
		c.diag("insert rejected: empty document")
		return "", nil
	}
	if field, bad := dollarField(d); bad {
		c.diag((&domain.ErrFieldName{Field: field}).Error())
		return "", nil
	}

	id := ""
	if d.Has("_id") {
		s, ok := d.Get("_id").(string)
		if !ok || s == "" {
			c.diag("insert rejected: _id must be a non-empty string")
			return "", nil
		}
		if _, taken := c.docs[s]; taken {
			c.diag(fmt.Sprintf("insert rejected: _id %s already exists", s))
			return "", nil
		}
		id = s
	} else {
		id, err = c.idGenerator.Generate(func(candidate string) bool {
			_, taken := c.docs[candidate]
			return taken
		})
		if err != nil {
			return "", err
		}
	}

	stored := data.Clone(d)
	stored.Set("_id", id)
	c.docs[id] = stored
	c.ids = append(c.ids, id)

	if !opts.SkipSave {
		c.save(ctx)
	}
	return id, nil
}

// Remove implements [domain.Collection].
func (c *Collection) Remove(ctx context.Context, query any, options ...domain.RemoveOption) (int64, error) {
	opts := domain.RemoveOptions{}
	for _, option := range options {
		option(&opts)
	}

	if err := c.exec.Lock(ctx); err != nil {
		return 0, err
	}
	defer c.exec.Unlock()

	matched, ok := c.matchIDs(query)
	if !ok || len(matched) == 0 {
		return 0, nil
	}
	if len(matched) > 1 && !opts.Multi {
		c.diag(domain.ErrMultiNotAllowed.Error())
		return 0, nil
	}

	doomed := make(map[string]struct{}, len(matched))
	for _, id := range matched {
		doomed[id] = struct{}{}
		delete(c.docs, id)
	}
	kept := c.ids[:0]
	for _, id := range c.ids {
		if _, gone := doomed[id]; !gone {
			kept = append(kept, id)
		}
	}
	c.ids = kept

	if !opts.SkipSave {
		c.save(ctx)
	}
	return int64(len(matched)), nil
}

// Update implements [domain.Collection]. The returned count is the number of
// matched documents the modifier reported a change for.
func (c *Collection) Update(ctx context.Context, query any, update any, options ...domain.UpdateOption) (int64, error) {
	opts := domain.UpdateOptions{}
	for _, option := range options {
		option(&opts)
	}

	if err := c.exec.Lock(ctx); err != nil {
		return 0, err
	}
	defer c.exec.Unlock()

	u, err := c.factory(update)
	if err != nil {
		c.diag(fmt.Sprintf("update rejected: %v", err))
		return 0, nil
	}
	if u == nil || u.Len() == 0 {
		return 0, nil
	}
	matched, ok := c.matchIDs(query)
	if !ok || len(matched) == 0 {
		return 0, nil
	}
	if len(matched) > 1 && !opts.Multi {
		c.diag(domain.ErrMultiNotAllowed.Error())
		return 0, nil
	}

	var changed int64
	for _, id := range matched {
		if c.modifier.Apply(c.docs[id], u) {
			changed++
		}
	}

	if !opts.SkipSave {
		c.save(ctx)
	}
	return changed, nil
}

// Save implements [domain.Collection].
func (c *Collection) Save(ctx context.Context) error {
	if err := c.exec.Lock(ctx); err != nil {
		return err
	}
	defer c.exec.Unlock()
	return c.save(ctx)
}

// save schedules a snapshot write. It runs under the executor lock.
func (c *Collection) save(ctx context.Context) error {
	if c.persistence == nil {
		return nil
	}
	snapshot := data.M{}
	for id, doc := range c.docs {
		snapshot[id] = doc
	}
	b, err := c.serializer.Serialize(ctx, snapshot)
	if err != nil {
		c.logger.Emit(domain.LevelError, err.Error(), origin)
		return err
	}
	c.persistence.Save(c.name, b)
	return nil
}

// matchIDs returns the ids of matching documents in insertion order. A
// malformed query yields (nil, false) after a diagnostic.
func (c *Collection) matchIDs(query any) ([]string, bool) {
	q, err := c.factory(query)
	if err != nil {
		c.diag(fmt.Sprintf("query rejected: %v", err))
		return nil, false
	}
	if q == nil {
		q = data.M{}
	}
	if !c.validator.Validate(q) {
		return nil, false
	}

	// A single {_id: <string>} clause is a direct index hit.
	if q.Len() == 1 && q.Has("_id") {
		if id, ok := q.Get("_id").(string); ok {
			if _, found := c.docs[id]; found {
				return []string{id}, true
			}
			return nil, true
		}
	}

	var matched []string
	for _, id := range c.ids {
		if c.matcher.Match(c.docs[id], q) {
			matched = append(matched, id)
		}
	}
	return matched, true
}

// projection decodes the projection option into field flags. A nil option
// means no projection; an undecodable one fails the call with (nil, false).
func (c *Collection) projection(p any) (map[string]uint8, bool) {
	if p == nil {
		return nil, true
	}
	flags := make(map[string]uint8)
	if err := c.decoder.Decode(p, &flags); err != nil {
		c.diag(fmt.Sprintf("projection rejected: %v", err))
		return nil, false
	}
	return flags, true
}

func dollarField(doc domain.Document) (string, bool) {
	for k, v := range doc.Iter() {
		if strings.HasPrefix(k, "$") {
			return k, true
		}
		if sub, ok := v.(domain.Document); ok {
			if field, bad := dollarField(sub); bad {
				return field, true
			}
		}
	}
	return "", false
}

func (c *Collection) diag(message string) {
	c.logger.Emit(domain.LevelWarn, message, origin)
}
