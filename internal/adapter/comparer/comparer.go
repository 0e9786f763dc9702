// Package comparer contains the default [domain.Comparer] implementation:
// kind classification and strict comparison with no implicit coercion.
package comparer

import (
	"cmp"
	"fmt"

	"github.com/kivadb/kiva/domain"
)

// Comparer implements domain.Comparer.
type Comparer struct{}

// NewComparer returns a new implementation of domain.Comparer.
func NewComparer() domain.Comparer {
	return &Comparer{}
}

// KindOf implements domain.Comparer.
func (c *Comparer) KindOf(v any) domain.Kind {
	switch v.(type) {
	case nil:
		return domain.KindNull
	case bool:
		return domain.KindBoolean
	case string:
		return domain.KindString
	case []any:
		return domain.KindArray
	case domain.Document:
		return domain.KindObject
	}
	if _, ok := c.Number(v); ok {
		return domain.KindNumber
	}
	return domain.KindInvalid
}

// Number implements domain.Comparer. All Go numeric widths normalize to
// float64; nothing else counts as a number.
func (c *Comparer) Number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}

// Equal implements domain.Comparer. Values of different kinds are never
// equal; arrays and objects compare recursively.
func (c *Comparer) Equal(a, b any) bool {
	ka, kb := c.KindOf(a), c.KindOf(b)
	if ka != kb || ka == domain.KindInvalid {
		return false
	}
	switch ka {
	case domain.KindNull:
		return true
	case domain.KindBoolean:
		return a.(bool) == b.(bool)
	case domain.KindNumber:
		na, _ := c.Number(a)
		nb, _ := c.Number(b)
		return na == nb
	case domain.KindString:
		return a.(string) == b.(string)
	case domain.KindArray:
		return c.equalArrays(a.([]any), b.([]any))
	default:
		return c.equalDocs(a.(domain.Document), b.(domain.Document))
	}
}

func (c *Comparer) equalArrays(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for n := range a {
		if !c.Equal(a[n], b[n]) {
			return false
		}
	}
	return true
}

func (c *Comparer) equalDocs(a, b domain.Document) bool {
	if a.Len() != b.Len() {
		return false
	}
	for k, v := range a.Iter() {
		if !b.Has(k) || !c.Equal(v, b.Get(k)) {
			return false
		}
	}
	return true
}

// Comparable implements domain.Comparer. Only values sharing an ordered
// primitive kind can be ordered: both numbers or both strings.
func (c *Comparer) Comparable(a, b any) bool {
	ka, kb := c.KindOf(a), c.KindOf(b)
	if ka != kb {
		return false
	}
	return ka == domain.KindNumber || ka == domain.KindString
}

// Compare implements domain.Comparer.
func (c *Comparer) Compare(a, b any) (int, error) {
	if na, ok := c.Number(a); ok {
		if nb, ok := c.Number(b); ok {
			return cmp.Compare(na, nb), nil
		}
		return 0, fmt.Errorf("cannot compare number with %T", b)
	}
	if sa, ok := a.(string); ok {
		if sb, ok := b.(string); ok {
			return cmp.Compare(sa, sb), nil
		}
		return 0, fmt.Errorf("cannot compare string with %T", b)
	}
	return 0, fmt.Errorf("cannot compare unordered types %T and %T", a, b)
}
