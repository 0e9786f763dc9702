// Package idgenerator contains the default [domain.IDGenerator]
// implementation.
package idgenerator

import (
	"crypto/rand"
	"io"

	"github.com/kivadb/kiva/domain"
)

// alphabet is the 64-symbol URL-safe alphabet. Its size divides 256, so
// masking a random byte yields a uniform per-character draw.
const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789-_"

// IDLength is the length of generated document ids.
const IDLength = 16

// IDGenerator implements [domain.IDGenerator].
type IDGenerator struct {
	reader io.Reader
}

// NewIDGenerator returns a new implementation of [domain.IDGenerator].
func NewIDGenerator(options ...domain.IDGeneratorOption) domain.IDGenerator {
	opts := domain.IDGeneratorOptions{Reader: rand.Reader}
	for _, option := range options {
		option(&opts)
	}
	return &IDGenerator{reader: opts.Reader}
}

// Generate implements [domain.IDGenerator]. Collisions are expected to cost
// O(1) retries.
func (g *IDGenerator) Generate(taken func(string) bool) (string, error) {
	buf := make([]byte, IDLength)
	for {
		if _, err := io.ReadFull(g.reader, buf); err != nil {
			return "", err
		}
		for i, b := range buf {
			buf[i] = alphabet[b&0x3f]
		}
		id := string(buf)
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
}
