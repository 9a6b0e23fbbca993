package report

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Default indentation for pretty-printed output.
const (
	defaultIndent = "  "
	yamlIndent    = 2
)

// JSONCodec writes a report as JSON with optional indentation.
type JSONCodec struct {
	// Indent specifies the indentation string. Empty string means compact JSON.
	Indent string
}

// NewJSONCodec creates a JSON codec with pretty-printing (2-space indent).
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{Indent: defaultIndent}
}

// Name implements Codec.
func (c *JSONCodec) Name() string { return FormatJSON }

// Encode implements Codec.
func (c *JSONCodec) Encode(w io.Writer, r *Report) error {
	encoder := json.NewEncoder(w)
	if c.Indent != "" {
		encoder.SetIndent("", c.Indent)
	}

	err := encoder.Encode(r)
	if err != nil {
		return fmt.Errorf("json encode: %w", err)
	}

	return nil
}

// DecodeJSON reads a report written by JSONCodec.
func DecodeJSON(r io.Reader) (*Report, error) {
	var rep Report

	err := json.NewDecoder(r).Decode(&rep)
	if err != nil {
		return nil, fmt.Errorf("json decode: %w", err)
	}

	return &rep, nil
}

type yamlCodec struct{}

func (yamlCodec) Name() string { return FormatYAML }

func (yamlCodec) Encode(w io.Writer, r *Report) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(yamlIndent)

	err := encoder.Encode(r)
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	err = encoder.Close()
	if err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}

	return nil
}
