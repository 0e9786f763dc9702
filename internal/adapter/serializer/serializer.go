// Package serializer contains the default [domain.Serializer]
// implementation. A snapshot is one JSON object per database: top-level keys
// are document ids, values are complete documents including _id.
package serializer

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/dolmen-go/contextio"

	"github.com/kivadb/kiva/domain"
)

// Serializer implements domain.Serializer.
type Serializer struct{}

// NewSerializer returns a new implementation of domain.Serializer.
func NewSerializer() domain.Serializer {
	return &Serializer{}
}

// Serialize implements domain.Serializer.
func (s *Serializer) Serialize(ctx context.Context, snapshot domain.Document) ([]byte, error) {
	for id, value := range snapshot.Iter() {
		doc, ok := value.(domain.Document)
		if !ok {
			return nil, &domain.ErrDocumentType{Value: value}
		}
		if err := checkFields(doc); err != nil {
			return nil, err
		}
		if doc.ID() != id {
			return nil, &domain.ErrDocumentType{Value: value}
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(contextio.NewWriter(ctx, &buf))
	if err := enc.Encode(snapshot); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func checkFields(doc domain.Document) error {
	for k, v := range doc.Iter() {
		if strings.HasPrefix(k, "$") {
			return &domain.ErrFieldName{Field: k}
		}
		if sub, ok := v.(domain.Document); ok {
			if err := checkFields(sub); err != nil {
				return err
			}
		}
	}
	return nil
}
