// Package modifier contains the default [domain.Modifier] implementation:
// the update engine applying declarative field mutations in place.
package modifier

import (
	"fmt"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/comparer"
	"github.com/kivadb/kiva/internal/adapter/data"
	"github.com/kivadb/kiva/internal/adapter/logger"
)

const origin = "modifier"

type modFunc func(doc domain.Document, field string, arg any) bool

// operatorOrder fixes the order update operators apply in. Each
// sub-operation commits independently; there is no rollback.
var operatorOrder = [...]string{"$inc", "$push", "$rename", "$set", "$unset"}

// Modifier implements [domain.Modifier].
type Modifier struct {
	comparer domain.Comparer
	logger   domain.Logger
	mods     map[string]modFunc
}

// NewModifier returns a new implementation of [domain.Modifier].
func NewModifier(options ...domain.ModifierOption) domain.Modifier {
	opts := domain.ModifierOptions{
		Comparer: comparer.NewComparer(),
		Logger:   logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}

	m := &Modifier{
		comparer: opts.Comparer,
		logger:   opts.Logger,
	}
	m.mods = map[string]modFunc{
		"$inc":    m.inc,
		"$push":   m.push,
		"$rename": m.rename,
		"$set":    m.set,
		"$unset":  m.unset,
	}
	return m
}

// Apply implements [domain.Modifier]. The returned flag is a coarse
// "something changed", not a per-field count: one success among many skipped
// sub-operations still reports true.
func (m *Modifier) Apply(doc domain.Document, update domain.Document) bool {
	if update == nil {
		return false
	}
	for op := range update.Iter() {
		if _, known := m.mods[op]; !known {
			m.skip(fmt.Sprintf("unknown update operator %s", op))
		}
	}

	changed := false
	for _, op := range operatorOrder {
		if !update.Has(op) {
			continue
		}
		fields, ok := update.Get(op).(domain.Document)
		if !ok {
			m.skip(fmt.Sprintf("%s operand must be an object", op))
			continue
		}
		fn := m.mods[op]
		for field, arg := range fields.Iter() {
			if fn(doc, field, arg) {
				changed = true
			}
		}
	}
	return changed
}

// $inc: a numeric delta adds to a numeric or absent field; any other
// existing field type is skipped.
func (m *Modifier) inc(doc domain.Document, field string, arg any) bool {
	delta, ok := m.comparer.Number(arg)
	if !ok {
		return m.skip(fmt.Sprintf("$inc delta for %s must be a number", field))
	}
	if !doc.Has(field) {
		doc.Set(field, delta)
		return true
	}
	current, ok := m.comparer.Number(doc.Get(field))
	if !ok {
		return m.skip(fmt.Sprintf("cannot $inc non-number field %s", field))
	}
	doc.Set(field, current+delta)
	return true
}

// $push: creates a one-element array on an absent field, appends to an
// array field, skips everything else.
func (m *Modifier) push(doc domain.Document, field string, arg any) bool {
	if !doc.Has(field) {
		doc.Set(field, []any{data.CloneValue(arg)})
		return true
	}
	arr, ok := doc.Get(field).([]any)
	if !ok {
		return m.skip(fmt.Sprintf("cannot $push onto non-array field %s", field))
	}
	doc.Set(field, append(arr, data.CloneValue(arg)))
	return true
}

// $rename moves a field: the source must exist, the target name must be a
// string and must not already exist, and _id can never move.
func (m *Modifier) rename(doc domain.Document, field string, arg any) bool {
	if field == "_id" {
		return m.skip(domain.ErrCannotModifyID.Error())
	}
	newName, ok := arg.(string)
	if !ok {
		return m.skip(fmt.Sprintf("$rename target for %s must be a string", field))
	}
	if doc.Has(newName) {
		return m.skip(fmt.Sprintf("cannot $rename %s onto existing field %s", field, newName))
	}
	if !doc.Has(field) {
		return m.skip(fmt.Sprintf("cannot $rename missing field %s", field))
	}
	doc.Set(newName, doc.Get(field))
	doc.Unset(field)
	return true
}

// $set assigns unconditionally, creating the field if absent. _id is
// untouchable.
func (m *Modifier) set(doc domain.Document, field string, arg any) bool {
	if field == "_id" {
		return m.skip(domain.ErrCannotModifyID.Error())
	}
	doc.Set(field, data.CloneValue(arg))
	return true
}

// $unset deletes the field only when it exists and the flag is truthy.
func (m *Modifier) unset(doc domain.Document, field string, arg any) bool {
	if field == "_id" {
		return m.skip(domain.ErrCannotModifyID.Error())
	}
	if !doc.Has(field) || !m.truthy(arg) {
		return false
	}
	doc.Unset(field)
	return true
}

func (m *Modifier) truthy(arg any) bool {
	if b, ok := arg.(bool); ok {
		return b
	}
	if n, ok := m.comparer.Number(arg); ok {
		return n != 0
	}
	return arg != nil
}

func (m *Modifier) skip(message string) bool {
	m.logger.Emit(domain.LevelWarn, message, origin)
	return false
}
