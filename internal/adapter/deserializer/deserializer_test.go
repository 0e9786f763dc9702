package deserializer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
)

type DeserializerTestSuite struct {
	suite.Suite
	deserializer domain.Deserializer
	ctx          context.Context
}

func (s *DeserializerTestSuite) SetupTest() {
	s.deserializer = NewDeserializer()
	s.ctx = context.Background()
}

func (s *DeserializerTestSuite) TestDeserializeSnapshot() {
	raw := []byte(`{"1":{"_id":"1","name":"foo","val":2,"meta":{"n":1}}}`)

	var snapshot domain.Document
	s.NoError(s.deserializer.Deserialize(s.ctx, raw, &snapshot))
	s.Equal(1, snapshot.Len())

	doc, ok := snapshot.Get("1").(domain.Document)
	s.True(ok)
	s.Equal("1", doc.ID())
	s.Equal("foo", doc.Get("name"))
	s.Equal(2.0, doc.Get("val"))

	// nested objects come back as documents, not raw maps
	s.NotNil(doc.D("meta"))
	s.Equal(1.0, doc.D("meta").Get("n"))
}

// An empty datafile is an empty snapshot, not an error.
func (s *DeserializerTestSuite) TestDeserializeEmpty() {
	var snapshot domain.Document
	s.NoError(s.deserializer.Deserialize(s.ctx, nil, &snapshot))
	s.Equal(0, snapshot.Len())
}

func (s *DeserializerTestSuite) TestDeserializeCorrupt() {
	var snapshot domain.Document
	s.Error(s.deserializer.Deserialize(s.ctx, []byte(`{"1":`), &snapshot))
	s.Error(s.deserializer.Deserialize(s.ctx, []byte(`[1,2]`), &snapshot))
}

func (s *DeserializerTestSuite) TestCanceledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	var snapshot domain.Document
	s.Error(s.deserializer.Deserialize(ctx, []byte(`{}`), &snapshot))
}

func TestDeserializerTestSuite(t *testing.T) {
	suite.Run(t, new(DeserializerTestSuite))
}
