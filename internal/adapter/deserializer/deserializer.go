// Package deserializer contains the default [domain.Deserializer]
// implementation.
package deserializer

import (
	"context"
	"encoding/json"

	"github.com/kivadb/kiva/domain"
	"github.com/kivadb/kiva/internal/adapter/data"
)

// Deserializer implements domain.Deserializer.
type Deserializer struct{}

// NewDeserializer returns a new implementation of domain.Deserializer.
func NewDeserializer() domain.Deserializer {
	return &Deserializer{}
}

// Deserialize implements domain.Deserializer. The snapshot bytes must hold a
// single JSON object; its values are normalized into documents.
func (d *Deserializer) Deserialize(ctx context.Context, b []byte, target *domain.Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(b) == 0 {
		*target = data.M{}
		return nil
	}
	raw := make(map[string]any)
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	doc, err := data.New(raw)
	if err != nil {
		return err
	}
	*target = doc
	return nil
}
