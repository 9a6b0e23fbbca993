package seqio

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var documentSchema []byte

// Document is a JSON input: the scores and an optional fixed threshold.
type Document struct {
	Values    []float64 `json:"values"`
	Threshold *float64  `json:"threshold,omitempty"`
}

// ReadJSON reads and validates a Document. Schema violations wrap ErrSchema
// and list every violation.
func ReadJSON(r io.Reader) (Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Document{}, fmt.Errorf("read json: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(documentSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, verr := range result.Errors() {
			msgs = append(msgs, verr.String())
		}

		return Document{}, fmt.Errorf("%w: %s", ErrSchema, strings.Join(msgs, "; "))
	}

	var doc Document

	err = json.Unmarshal(data, &doc)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	if len(doc.Values) == 0 {
		return Document{}, ErrNoData
	}

	return doc, nil
}
