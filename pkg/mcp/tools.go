package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Sumatoshi-tech/maxscore/pkg/config"
	"github.com/Sumatoshi-tech/maxscore/pkg/report"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
)

// Tool name constants.
const (
	ToolNameFind = "find_maximal_subsequences"
)

// Input size limits.
const (
	// MaxValues is the maximum number of values one call may score.
	MaxValues = 1 << 20
)

// Sentinel errors for tool input validation.
var (
	// ErrEmptyValues indicates the values parameter is missing or empty.
	ErrEmptyValues = errors.New("values parameter is required and must not be empty")
	// ErrTooManyValues indicates the values input exceeds the size limit.
	ErrTooManyValues = errors.New("values input exceeds maximum length")
)

// Input types (auto-generate JSON schemas via struct tags).

// FindInput is the input schema for the find_maximal_subsequences tool.
type FindInput struct {
	Values        []float64 `json:"values"                   jsonschema:"the scores to search, in sequence order"`
	Threshold     float64   `json:"threshold,omitempty"      jsonschema:"value subtracted from every score in fixed mode (default 0)"`
	ThresholdMode string    `json:"threshold_mode,omitempty" jsonschema:"fixed, median, mean or percentile (default fixed)"`
	Percentile    *float64  `json:"percentile,omitempty"     jsonschema:"quantile in [0, 1] used by percentile mode (default 0.5)"`
}

// FindOutput is the data returned by the find_maximal_subsequences tool.
type FindOutput struct {
	Threshold float64          `json:"threshold"`
	Elements  int              `json:"elements"`
	Segments  []report.Segment `json:"segments"`
	Cached    bool             `json:"cached"`
}

// Output type (used as structured output for generic AddTool).

// ToolOutput is a generic wrapper for tool results.
type ToolOutput struct {
	Data any `json:"data"`
}

// Result helpers.

// errorResult builds a CallToolResult with isError set.
func errorResult(err error) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: err.Error()},
		},
		IsError: true,
	}, ToolOutput{}, nil
}

// jsonResult builds a CallToolResult with JSON-encoded content.
func jsonResult(value any) (*mcpsdk.CallToolResult, ToolOutput, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return errorResult(fmt.Errorf("encode result: %w", err))
	}

	return &mcpsdk.CallToolResult{
		Content: []mcpsdk.Content{
			&mcpsdk.TextContent{Text: string(data)},
		},
	}, ToolOutput{Data: value}, nil
}

// validateFindInput checks the values constraints.
func validateFindInput(input FindInput) error {
	if len(input.Values) == 0 {
		return ErrEmptyValues
	}

	if len(input.Values) > MaxValues {
		return fmt.Errorf("%w: %d values (max %d)", ErrTooManyValues, len(input.Values), MaxValues)
	}

	return nil
}

// findHandler returns the find_maximal_subsequences handler bound to eng.
func findHandler(eng *scoring.Engine) func(context.Context, *mcpsdk.CallToolRequest, FindInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
	return func(ctx context.Context, _ *mcpsdk.CallToolRequest, input FindInput) (*mcpsdk.CallToolResult, ToolOutput, error) {
		err := validateFindInput(input)
		if err != nil {
			return errorResult(err)
		}

		mode, err := scoring.ParseMode(input.ThresholdMode)
		if err != nil {
			return errorResult(err)
		}

		percentile := config.DefaultThresholdPercentile
		if input.Percentile != nil {
			percentile = *input.Percentile
		}

		res, err := eng.Find(ctx, input.Values, scoring.Options{
			Mode:       mode,
			Threshold:  input.Threshold,
			Percentile: percentile,
		})
		if err != nil {
			return errorResult(err)
		}

		rep := report.FromResult(res, false)

		return jsonResult(FindOutput{
			Threshold: rep.Threshold,
			Elements:  rep.Elements,
			Segments:  rep.Segments,
			Cached:    rep.Cached,
		})
	}
}
