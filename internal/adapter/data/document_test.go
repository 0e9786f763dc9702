package data

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
)

type A = []any

type DocumentTestSuite struct {
	suite.Suite
}

func (s *DocumentTestSuite) TestNewNil() {
	doc, err := New(nil)
	s.NoError(err)
	s.Equal(0, doc.Len())
}

func (s *DocumentTestSuite) TestNewMap() {
	doc, err := New(map[string]any{"name": "foo", "val": 1})
	s.NoError(err)
	s.Equal("foo", doc.Get("name"))
	s.Equal(1, doc.Get("val"))
}

// Nested maps become documents so queries and matches can recurse.
func (s *DocumentTestSuite) TestNewNestedMap() {
	doc, err := New(map[string]any{
		"meta": map[string]any{"tags": []any{"a", "b"}},
	})
	s.NoError(err)
	meta := doc.D("meta")
	s.NotNil(meta)
	s.Equal(A{"a", "b"}, meta.Get("tags"))
}

func (s *DocumentTestSuite) TestNewStruct() {
	type inner struct {
		City string `kiva:"city"`
	}
	type record struct {
		Name    string `kiva:"name"`
		Skipped string `kiva:"-"`
		Ptr     *int   `kiva:"ptr,omitempty"`
		Count   int    `kiva:"count,omitzero"`
		Addr    inner  `kiva:"addr"`
		hidden  string
	}

	doc, err := New(record{Name: "foo", Skipped: "no", hidden: "x", Addr: inner{City: "berlin"}})
	s.NoError(err)
	s.Equal("foo", doc.Get("name"))
	s.False(doc.Has("Skipped"))
	s.False(doc.Has("-"))
	s.False(doc.Has("ptr"))
	s.False(doc.Has("count"))
	s.False(doc.Has("hidden"))
	s.Equal("berlin", doc.D("addr").Get("city"))
}

func (s *DocumentTestSuite) TestNewStructPointer() {
	type record struct {
		Name string `kiva:"name"`
	}
	doc, err := New(&record{Name: "foo"})
	s.NoError(err)
	s.Equal("foo", doc.Get("name"))
}

// Maps with non-string keys cannot become documents.
func (s *DocumentTestSuite) TestNewBadMapKeys() {
	_, err := New(map[int]any{1: "a"})
	s.Error(err)
	var target *domain.ErrDocumentType
	s.ErrorAs(err, &target)
}

func (s *DocumentTestSuite) TestNewScalarRejected() {
	_, err := New(42)
	s.Error(err)
	_, err = New("hello")
	s.Error(err)
}

// Predicates pass through conversion untouched so $where can reach the
// matcher.
func (s *DocumentTestSuite) TestNewKeepsPredicates() {
	p := domain.Predicate(func(d domain.Document) bool { return true })
	doc, err := New(M{"$where": p})
	s.NoError(err)
	_, ok := doc.Get("$where").(domain.Predicate)
	s.True(ok)
}

// Clone must not share arrays or subdocuments with the source.
func (s *DocumentTestSuite) TestCloneIsDeep() {
	src := M{"tags": A{"a"}, "meta": M{"n": 1}}
	dup := Clone(src)

	dup.Get("tags").([]any)[0] = "changed"
	dup.D("meta").Set("n", 2)

	s.Equal(A{"a"}, src["tags"])
	s.Equal(1, src.D("meta").Get("n"))
}

func (s *DocumentTestSuite) TestID() {
	s.Equal("abc", M{"_id": "abc"}.ID())
	s.Equal("", M{"_id": 42}.ID())
	s.Equal("", M{}.ID())
}

func (s *DocumentTestSuite) TestAccessors() {
	doc := M{"a": 1}
	s.True(doc.Has("a"))
	s.False(doc.Has("b"))

	doc.Set("b", 2)
	s.Equal(2, doc.Get("b"))
	s.Equal(2, doc.Len())

	doc.Unset("a")
	s.False(doc.Has("a"))
	s.Nil(doc.Get("a"))

	s.Nil(doc.D("b"))

	keys := map[string]bool{}
	for k := range doc.Keys() {
		keys[k] = true
	}
	s.Equal(map[string]bool{"b": true}, keys)
}

func TestDocumentTestSuite(t *testing.T) {
	suite.Run(t, new(DocumentTestSuite))
}
