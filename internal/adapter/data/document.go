// Package data contains the default [domain.Document] implementation and the
// factory converting caller input into documents.
package data

import (
	"iter"
	"maps"
	"reflect"
	"slices"
	"strings"

	goreflect "github.com/goccy/go-reflect"

	"github.com/kivadb/kiva/domain"
)

// TagName is the struct tag controlling field names during conversion.
const TagName = "kiva"

// M implements [domain.Document] with a plain map. Duplicate keys replace
// old values.
type M map[string]any

// New returns a new [domain.Document] built from nil, a map, a struct or an
// existing document. Nested maps and slices are converted recursively so a
// document only ever holds nil, bool, numbers, string, []any, M or predicate
// values.
func New(in any) (domain.Document, error) {
	if in == nil {
		return M{}, nil
	}
	v, err := convert(in)
	if err != nil {
		return nil, err
	}
	doc, ok := v.(M)
	if !ok {
		return nil, &domain.ErrDocumentType{Value: in}
	}
	return doc, nil
}

func convert(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case M:
		return convertMap(t)
	case map[string]any:
		return convertMap(t)
	case domain.Document:
		res := make(M, t.Len())
		for k, item := range t.Iter() {
			c, err := convert(item)
			if err != nil {
				return nil, err
			}
			res[k] = c
		}
		return res, nil
	case []any:
		return convertList(t)
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return t, nil
	case domain.Predicate:
		return t, nil
	}
	return convertReflect(goreflect.ValueNoEscapeOf(v))
}

func convertMap(m map[string]any) (M, error) {
	res := make(M, len(m))
	for k, v := range m {
		c, err := convert(v)
		if err != nil {
			return nil, err
		}
		res[k] = c
	}
	return res, nil
}

func convertList(l []any) ([]any, error) {
	res := make([]any, len(l))
	for n, v := range l {
		c, err := convert(v)
		if err != nil {
			return nil, err
		}
		res[n] = c
	}
	return res, nil
}

func convertReflect(r goreflect.Value) (any, error) {
	k := r.Kind()
	for k == goreflect.Interface || k == reflect.Pointer {
		if r.IsNil() {
			return nil, nil
		}
		r = r.Elem()
		k = r.Kind()
	}
	switch k {
	case goreflect.Invalid:
		return nil, nil
	case goreflect.Slice:
		if r.IsNil() {
			return nil, nil
		}
		fallthrough
	case goreflect.Array:
		res := make([]any, r.Len())
		for i := range r.Len() {
			c, err := convert(r.Index(i).Interface())
			if err != nil {
				return nil, err
			}
			res[i] = c
		}
		return res, nil
	case goreflect.Map:
		if r.IsNil() {
			return nil, nil
		}
		if r.Type().Key().Kind() != goreflect.String {
			return nil, &domain.ErrDocumentType{Value: r.Interface()}
		}
		res := make(M, r.Len())
		for _, key := range r.MapKeys() {
			c, err := convert(r.MapIndex(key).Interface())
			if err != nil {
				return nil, err
			}
			res[key.String()] = c
		}
		return res, nil
	case goreflect.Struct:
		return convertStruct(r)
	case goreflect.Func:
		if r.IsNil() {
			return nil, nil
		}
		return r.Interface(), nil
	default:
		return r.Interface(), nil
	}
}

func convertStruct(r goreflect.Value) (M, error) {
	typ := r.Type()
	res := make(M, r.NumField())
	for n := range r.NumField() {
		field := typ.Field(n)
		if field.PkgPath != "" {
			continue
		}
		name, value, keep, err := convertField(r.Field(n), field)
		if err != nil {
			return nil, err
		}
		if keep {
			res[name] = value
		}
	}
	return res, nil
}

func convertField(r goreflect.Value, typ goreflect.StructField) (string, any, bool, error) {
	name := typ.Name
	var tagSegments []string
	if tag, ok := typ.Tag.Lookup(TagName); ok {
		if tag == "-" {
			return "", nil, false, nil
		}
		tagSegments = strings.Split(tag, ",")
		if tagSegments[0] != "" {
			name = tagSegments[0]
		}
		tagSegments = tagSegments[1:]
	}
	if slices.Contains(tagSegments, "omitempty") && isNullable(typ.Type.Kind()) && r.IsNil() {
		return "", nil, false, nil
	}
	if slices.Contains(tagSegments, "omitzero") && r.IsZero() {
		return "", nil, false, nil
	}
	value, err := convert(r.Interface())
	if err != nil {
		return "", nil, false, err
	}
	return name, value, true, nil
}

func isNullable(k goreflect.Kind) bool {
	return k == reflect.Pointer ||
		k == reflect.Slice ||
		k == reflect.Map ||
		k == reflect.Interface ||
		k == reflect.Func ||
		k == reflect.Chan
}

// Clone returns a deep copy of a document. Stored and returned documents
// never alias caller-held values.
func Clone(doc domain.Document) domain.Document {
	res := make(M, doc.Len())
	for k, v := range doc.Iter() {
		res[k] = CloneValue(v)
	}
	return res
}

// CloneValue returns a deep copy of a single value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case domain.Document:
		return Clone(t)
	case []any:
		res := make([]any, len(t))
		for n, item := range t {
			res[n] = CloneValue(item)
		}
		return res
	default:
		return t
	}
}

// ID implements domain.Document.
func (d M) ID() string {
	id, _ := d["_id"].(string)
	return id
}

// D implements domain.Document.
func (d M) D(key string) domain.Document {
	if doc, ok := d[key].(domain.Document); ok {
		return doc
	}
	return nil
}

// Get implements domain.Document.
func (d M) Get(key string) any { return d[key] }

// Set implements domain.Document.
func (d M) Set(key string, value any) { d[key] = value }

// Unset implements domain.Document.
func (d M) Unset(key string) { delete(d, key) }

// Has implements domain.Document.
func (d M) Has(key string) bool {
	_, has := d[key]
	return has
}

// Iter implements domain.Document.
func (d M) Iter() iter.Seq2[string, any] { return maps.All(d) }

// Keys implements domain.Document.
func (d M) Keys() iter.Seq[string] { return maps.Keys(d) }

// Values implements domain.Document.
func (d M) Values() iter.Seq[any] { return maps.Values(d) }

// Len implements domain.Document.
func (d M) Len() int { return len(d) }
