package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
)

type DomainTestSuite struct {
	suite.Suite
}

// Kind names round-trip through the $type wire format.
func (s *DomainTestSuite) TestKindNames() {
	kinds := []domain.Kind{
		domain.KindNull, domain.KindBoolean, domain.KindNumber,
		domain.KindString, domain.KindArray, domain.KindObject,
	}
	for _, k := range kinds {
		got, ok := domain.KindByName(k.String())
		s.True(ok, k.String())
		s.Equal(k, got)
	}

	s.Equal("invalid", domain.KindInvalid.String())
	_, ok := domain.KindByName("invalid")
	s.False(ok)
	_, ok = domain.KindByName("integer")
	s.False(ok)
}

func (s *DomainTestSuite) TestLevelString() {
	s.Equal("debug", domain.LevelDebug.String())
	s.Equal("info", domain.LevelInfo.String())
	s.Equal("warn", domain.LevelWarn.String())
	s.Equal("error", domain.LevelError.String())
}

func (s *DomainTestSuite) TestStoreUnavailableWraps() {
	cause := errors.New("io failure")
	err := &domain.ErrStoreUnavailable{Name: "things", Cause: cause}
	s.ErrorIs(err, cause)
	s.Contains(err.Error(), "things")
}

func (s *DomainTestSuite) TestErrorMessages() {
	s.Contains((&domain.ErrDatabaseName{Name: "a/b"}).Error(), "a/b")
	s.Contains((&domain.ErrDocumentType{Value: 42}).Error(), "int")
	s.Contains((&domain.ErrFieldName{Field: "$set"}).Error(), "$set")
}

func (s *DomainTestSuite) TestFindOptions() {
	var opts domain.FindOptions
	domain.WithProjection(map[string]uint8{"a": 1})(&opts)
	s.Equal(map[string]uint8{"a": 1}, opts.Projection)
}

func (s *DomainTestSuite) TestMutationOptions() {
	var ro domain.RemoveOptions
	domain.WithRemoveMulti(true)(&ro)
	domain.WithRemoveSkipSave(true)(&ro)
	s.Equal(domain.RemoveOptions{Multi: true, SkipSave: true}, ro)

	var uo domain.UpdateOptions
	domain.WithUpdateMulti(true)(&uo)
	domain.WithUpdateSkipSave(true)(&uo)
	s.Equal(domain.UpdateOptions{Multi: true, SkipSave: true}, uo)

	var no domain.InsertOptions
	domain.WithInsertSkipSave(true)(&no)
	s.Equal(domain.InsertOptions{SkipSave: true}, no)
}

func TestDomainTestSuite(t *testing.T) {
	suite.Run(t, new(DomainTestSuite))
}
