// Package matcher contains the default [domain.Matcher] implementation: the
// per-field operator library and the recursive query evaluator.
//
// The matcher assumes queries already passed validation. Anything malformed
// that still reaches evaluation fails the enclosing field test defensively.
package matcher

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/comparer"
	"github.com/kivadb/kiva/internal/adapter/logger"
)

const origin = "matcher"

// fieldOp evaluates one operator against a resolved field value. defined
// reports whether the field exists on the document.
type fieldOp func(value any, defined bool, operand any) bool

// Matcher implements [domain.Matcher].
type Matcher struct {
	comparer domain.Comparer
	logger   domain.Logger
	logicOps map[string]func(domain.Document, any) bool
	fieldOps map[string]fieldOp
}

// NewMatcher returns a new implementation of [domain.Matcher].
func NewMatcher(options ...domain.MatcherOption) domain.Matcher {
	opts := domain.MatcherOptions{
		Comparer: comparer.NewComparer(),
		Logger:   logger.NewNopLogger(),
	}
	for _, option := range options {
		option(&opts)
	}

	m := &Matcher{
		comparer: opts.Comparer,
		logger:   opts.Logger,
	}
	m.logicOps = map[string]func(domain.Document, any) bool{
		"$and":   m.and,
		"$or":    m.or,
		"$not":   m.not,
		"$where": m.where,
	}
	m.fieldOps = map[string]fieldOp{
		"$exists":   m.exists,
		"$eq":       m.eq,
		"$ne":       m.ne,
		"$gt":       m.gt,
		"$gte":      m.gte,
		"$lt":       m.lt,
		"$lte":      m.lte,
		"$in":       m.in,
		"$nin":      m.nin,
		"$includes": m.includes,
		"$like":     m.like,
		"$type":     m.typeOf,
	}
	return m
}

// Match implements [domain.Matcher]. Sibling keys at any nesting level are
// implicitly ANDed; an empty query matches everything.
func (m *Matcher) Match(doc domain.Document, query domain.Document) bool {
	if query == nil {
		return true
	}
	for key, value := range query.Iter() {
		if logic, ok := m.logicOps[key]; ok {
			if !logic(doc, value) {
				return false
			}
			continue
		}
		if !m.matchField(doc, key, value) {
			return false
		}
	}
	return true
}

func (m *Matcher) matchField(doc domain.Document, field string, value any) bool {
	fieldValue, defined := doc.Get(field), doc.Has(field)

	ops, ok := value.(domain.Document)
	if !ok {
		// implicit equality against a literal value
		return defined && m.comparer.Equal(fieldValue, value)
	}

	// all operators on one field must hold
	for op, operand := range ops.Iter() {
		fn, known := m.fieldOps[op]
		if !known {
			// should never occur post-validation
			m.logger.Emit(domain.LevelWarn, fmt.Sprintf("unknown operator %s reached evaluation", op), origin)
			return false
		}
		if !fn(fieldValue, defined, operand) {
			return false
		}
	}
	return true
}

// $and matches when every subquery matches; an empty array is vacuously
// true.
func (m *Matcher) and(doc domain.Document, value any) bool {
	arr, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		sub, ok := item.(domain.Document)
		if !ok || !m.Match(doc, sub) {
			return false
		}
	}
	return true
}

// $or matches when at least one subquery matches; an empty array never
// matches.
func (m *Matcher) or(doc domain.Document, value any) bool {
	arr, ok := value.([]any)
	if !ok {
		return false
	}
	for _, item := range arr {
		if sub, ok := item.(domain.Document); ok && m.Match(doc, sub) {
			return true
		}
	}
	return false
}

func (m *Matcher) not(doc domain.Document, value any) bool {
	sub, ok := value.(domain.Document)
	if !ok {
		return false
	}
	return !m.Match(doc, sub)
}

func (m *Matcher) where(doc domain.Document, value any) bool {
	predicate, ok := value.(domain.Predicate)
	if !ok {
		return false
	}
	return predicate(doc)
}

// $exists: true wants the field defined, false/0 wants it absent.
func (m *Matcher) exists(_ any, defined bool, operand any) bool {
	return m.truthy(operand) == defined
}

func (m *Matcher) eq(value any, defined bool, operand any) bool {
	return defined && m.comparer.Equal(value, operand)
}

func (m *Matcher) ne(value any, defined bool, operand any) bool {
	return !m.eq(value, defined, operand)
}

func (m *Matcher) gt(value any, defined bool, operand any) bool {
	return m.ordered(value, defined, operand, func(c int) bool { return c > 0 })
}

func (m *Matcher) gte(value any, defined bool, operand any) bool {
	return m.ordered(value, defined, operand, func(c int) bool { return c >= 0 })
}

func (m *Matcher) lt(value any, defined bool, operand any) bool {
	return m.ordered(value, defined, operand, func(c int) bool { return c < 0 })
}

func (m *Matcher) lte(value any, defined bool, operand any) bool {
	return m.ordered(value, defined, operand, func(c int) bool { return c <= 0 })
}

// ordered applies an ordering operator. Both sides must share an ordered
// primitive kind (number or string), anything else is false with no
// coercion.
func (m *Matcher) ordered(value any, defined bool, operand any, holds func(int) bool) bool {
	if !defined || !m.comparer.Comparable(value, operand) {
		return false
	}
	c, err := m.comparer.Compare(value, operand)
	if err != nil {
		return false
	}
	return holds(c)
}

func (m *Matcher) in(value any, defined bool, operand any) bool {
	arr, ok := operand.([]any)
	if !ok || !defined {
		return false
	}
	for _, item := range arr {
		if m.comparer.Equal(value, item) {
			return true
		}
	}
	return false
}

func (m *Matcher) nin(value any, defined bool, operand any) bool {
	if _, ok := operand.([]any); !ok {
		return false
	}
	return !m.in(value, defined, operand)
}

// $includes: substring test on string fields, strict-equality membership on
// array fields, false for everything else.
func (m *Matcher) includes(value any, defined bool, operand any) bool {
	if !defined {
		return false
	}
	switch field := value.(type) {
	case string:
		needle, ok := operand.(string)
		return ok && strings.Contains(field, needle)
	case []any:
		for _, item := range field {
			if m.comparer.Equal(item, operand) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// $like compiles its operand into a case-insensitive pattern at evaluation
// time; a malformed pattern is a recoverable per-operator false.
func (m *Matcher) like(value any, defined bool, operand any) bool {
	if !defined {
		return false
	}
	field, ok := value.(string)
	if !ok {
		return false
	}
	pattern, ok := operand.(string)
	if !ok {
		return false
	}
	rgx, err := regexp.Compile("(?i)" + pattern)
	if err != nil {
		m.logger.Emit(domain.LevelWarn, fmt.Sprintf("invalid $like pattern %q: %v", pattern, err), origin)
		return false
	}
	return rgx.MatchString(field)
}

func (m *Matcher) typeOf(value any, defined bool, operand any) bool {
	name, ok := operand.(string)
	if !ok || !defined {
		return false
	}
	kind, ok := domain.KindByName(name)
	return ok && m.comparer.KindOf(value) == kind
}

func (m *Matcher) truthy(operand any) bool {
	if b, ok := operand.(bool); ok {
		return b
	}
	if n, ok := m.comparer.Number(operand); ok {
		return n != 0
	}
	return operand != nil
}
