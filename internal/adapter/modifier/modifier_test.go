package modifier

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/data"
)

type M = data.M
type A = []any

type ModifierTestSuite struct {
	suite.Suite
	modifier domain.Modifier
}

func (s *ModifierTestSuite) SetupTest() {
	s.modifier = NewModifier()
}

func (s *ModifierTestSuite) TestIncNumeric() {
	doc := M{"_id": "1", "val": 2}
	s.True(s.modifier.Apply(doc, M{"$inc": M{"val": 3}}))
	s.Equal(5.0, doc["val"])
}

// $inc on an absent field sets it to the delta.
func (s *ModifierTestSuite) TestIncAbsent() {
	doc := M{"_id": "1"}
	s.True(s.modifier.Apply(doc, M{"$inc": M{"val": -2}}))
	s.Equal(-2.0, doc["val"])
}

// A non-numeric target or delta skips the sub-operation.
func (s *ModifierTestSuite) TestIncSkips() {
	doc := M{"_id": "1", "name": "foo"}
	s.False(s.modifier.Apply(doc, M{"$inc": M{"name": 1}}))
	s.Equal("foo", doc["name"])

	s.False(s.modifier.Apply(doc, M{"$inc": M{"val": "three"}}))
	s.False(doc.Has("val"))
}

func (s *ModifierTestSuite) TestPush() {
	doc := M{"_id": "1", "tags": A{"a"}}
	s.True(s.modifier.Apply(doc, M{"$push": M{"tags": "b"}}))
	s.Equal(A{"a", "b"}, doc["tags"])
}

// $push creates a one-element array on an absent field.
func (s *ModifierTestSuite) TestPushAbsent() {
	doc := M{"_id": "1"}
	s.True(s.modifier.Apply(doc, M{"$push": M{"tags": "a"}}))
	s.Equal(A{"a"}, doc["tags"])
}

func (s *ModifierTestSuite) TestPushNonArray() {
	doc := M{"_id": "1", "val": 2}
	s.False(s.modifier.Apply(doc, M{"$push": M{"val": 3}}))
	s.Equal(2, doc["val"])
}

// Pushed values are copied, not aliased.
func (s *ModifierTestSuite) TestPushClones() {
	item := M{"n": 1}
	doc := M{"_id": "1"}
	s.True(s.modifier.Apply(doc, M{"$push": M{"tags": item}}))

	item["n"] = 2
	s.Equal(M{"n": 1}, doc["tags"].(A)[0])
}

func (s *ModifierTestSuite) TestRename() {
	doc := M{"_id": "1", "old": 7}
	s.True(s.modifier.Apply(doc, M{"$rename": M{"old": "new"}}))
	s.False(doc.Has("old"))
	s.Equal(7, doc["new"])
}

func (s *ModifierTestSuite) TestRenameSkips() {
	doc := M{"_id": "1", "a": 1, "b": 2}

	// target exists
	s.False(s.modifier.Apply(doc, M{"$rename": M{"a": "b"}}))
	s.Equal(1, doc["a"])
	s.Equal(2, doc["b"])

	// source missing
	s.False(s.modifier.Apply(doc, M{"$rename": M{"missing": "c"}}))
	s.False(doc.Has("c"))

	// target not a string
	s.False(s.modifier.Apply(doc, M{"$rename": M{"a": 3}}))
	s.Equal(1, doc["a"])
}

func (s *ModifierTestSuite) TestSet() {
	doc := M{"_id": "1", "val": 2}
	s.True(s.modifier.Apply(doc, M{"$set": M{"val": 9, "name": "foo"}}))
	s.Equal(9, doc["val"])
	s.Equal("foo", doc["name"])
}

func (s *ModifierTestSuite) TestSetClones() {
	nested := M{"n": 1}
	doc := M{"_id": "1"}
	s.True(s.modifier.Apply(doc, M{"$set": M{"meta": nested}}))

	nested["n"] = 2
	s.Equal(M{"n": 1}, doc["meta"])
}

func (s *ModifierTestSuite) TestUnset() {
	doc := M{"_id": "1", "val": 2}
	s.True(s.modifier.Apply(doc, M{"$unset": M{"val": true}}))
	s.False(doc.Has("val"))
}

// A falsy flag or an absent field makes $unset a no-op.
func (s *ModifierTestSuite) TestUnsetNoop() {
	doc := M{"_id": "1", "val": 2}
	s.False(s.modifier.Apply(doc, M{"$unset": M{"val": false}}))
	s.True(doc.Has("val"))

	s.False(s.modifier.Apply(doc, M{"$unset": M{"val": 0}}))
	s.True(doc.Has("val"))

	s.False(s.modifier.Apply(doc, M{"$unset": M{"missing": true}}))
}

// _id survives every operator.
func (s *ModifierTestSuite) TestIDImmutable() {
	doc := M{"_id": "keepit", "val": 2}
	s.False(s.modifier.Apply(doc, M{"$set": M{"_id": "other"}}))
	s.False(s.modifier.Apply(doc, M{"$unset": M{"_id": true}}))
	s.False(s.modifier.Apply(doc, M{"$rename": M{"_id": "id2"}}))
	s.Equal("keepit", doc["_id"])
	s.False(doc.Has("id2"))
}

// Unknown operators and malformed operands are skipped, known ones still run.
func (s *ModifierTestSuite) TestSkipPolicy() {
	doc := M{"_id": "1", "val": 2}
	changed := s.modifier.Apply(doc, M{
		"$bogus": M{"val": 1},
		"$inc":   "not an object",
		"$set":   M{"name": "foo"},
	})
	s.True(changed)
	s.Equal(2, doc["val"])
	s.Equal("foo", doc["name"])
}

// The flag is coarse: one applied sub-operation among skips reports true.
func (s *ModifierTestSuite) TestCoarseChangedFlag() {
	doc := M{"_id": "1", "name": "foo"}
	changed := s.modifier.Apply(doc, M{"$inc": M{"name": 1, "count": 1}})
	s.True(changed)
	s.Equal("foo", doc["name"])
	s.Equal(1.0, doc["count"])

	s.False(s.modifier.Apply(doc, M{"$inc": M{"name": 1}}))
	s.False(s.modifier.Apply(doc, M{}))
	s.False(s.modifier.Apply(doc, nil))
}

func TestModifierTestSuite(t *testing.T) {
	suite.Run(t, new(ModifierTestSuite))
}
