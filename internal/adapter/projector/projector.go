// Package projector contains the default [domain.Projector] implementation.
package projector

import (
	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/data"
)

// Projector implements [domain.Projector].
type Projector struct{}

// NewProjector returns a new implementation of [domain.Projector].
func NewProjector() domain.Projector {
	return &Projector{}
}

// Project implements [domain.Projector]. An empty projection yields a full
// deep copy including _id. A projection must be purely inclusive (all
// nonzero flags) or purely exclusive (all zero); mixing both returns
// [domain.ErrMixedProjection]. In inclusive mode _id is not auto-included.
func (p *Projector) Project(doc domain.Document, projection map[string]uint8) (domain.Document, error) {
	if len(projection) == 0 {
		return data.Clone(doc), nil
	}

	included := 0
	for _, flag := range projection {
		if flag != 0 {
			included++
		}
	}
	if included != 0 && included != len(projection) {
		return nil, domain.ErrMixedProjection
	}

	if included != 0 {
		return p.include(doc, projection), nil
	}
	return p.exclude(doc, projection), nil
}

func (p *Projector) include(doc domain.Document, projection map[string]uint8) domain.Document {
	res := make(data.M, len(projection))
	for field := range projection {
		if doc.Has(field) {
			res[field] = data.CloneValue(doc.Get(field))
		}
	}
	return res
}

func (p *Projector) exclude(doc domain.Document, projection map[string]uint8) domain.Document {
	res := make(data.M, doc.Len())
	for field, value := range doc.Iter() {
		if _, omitted := projection[field]; omitted {
			continue
		}
		res[field] = data.CloneValue(value)
	}
	return res
}
