package logger

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/kivadb/kiva/domain"
)

type LoggerTestSuite struct {
	suite.Suite
}

func (s *LoggerTestSuite) TestEmit() {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	l.Emit(domain.LevelWarn, "something odd", "matcher")

	out := buf.String()
	s.Contains(out, "level=WARN")
	s.Contains(out, "something odd")
	s.Contains(out, "origin=matcher")
}

func (s *LoggerTestSuite) TestLevelMapping() {
	var buf bytes.Buffer
	l := NewLogger(slog.NewTextHandler(&buf, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	l.Emit(domain.LevelDebug, "a", "t")
	l.Emit(domain.LevelInfo, "b", "t")
	l.Emit(domain.LevelError, "c", "t")

	out := buf.String()
	s.Contains(out, "level=DEBUG")
	s.Contains(out, "level=INFO")
	s.Contains(out, "level=ERROR")
}

// The nop logger swallows everything without touching stderr.
func (s *LoggerTestSuite) TestNopLogger() {
	l := NewNopLogger()
	s.NotPanics(func() {
		l.Emit(domain.LevelError, "into the void", "test")
	})
}

func TestLoggerTestSuite(t *testing.T) {
	suite.Run(t, new(LoggerTestSuite))
}
