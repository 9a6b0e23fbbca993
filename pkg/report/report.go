// Package report renders search results in the supported output formats.
package report

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
	"github.com/Sumatoshi-tech/maxscore/pkg/alg/stats"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
)

// Output format names.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatBin   = "bin"
	FormatChart = "chart"
	FormatPlot  = "plot"
)

// Formats lists every output format ForFormat accepts.
var Formats = []string{FormatText, FormatTable, FormatJSON, FormatYAML, FormatBin, FormatChart, FormatPlot}

// Sentinel errors.
var (
	// ErrUnknownFormat indicates an output format ForFormat does not know.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrNeedsValues indicates a format that draws the input but the report
	// was built without it.
	ErrNeedsValues = errors.New("format needs the input values")
)

// Segment is one maximal scoring range in a report.
type Segment struct {
	Begin  int       `json:"begin"            yaml:"begin"`
	End    int       `json:"end"              yaml:"end"`
	Score  float64   `json:"score"            yaml:"score"`
	Values []float64 `json:"values,omitempty" yaml:"values,omitempty"`
}

// Range returns the segment's position range.
func (s Segment) Range() mss.Range {
	return mss.Range{Begin: s.Begin, End: s.End}
}

// Report is the format-independent view of a search result.
type Report struct {
	Threshold float64   `json:"threshold" yaml:"threshold"`
	Elements  int       `json:"elements"  yaml:"elements"`
	Segments  []Segment `json:"segments"  yaml:"segments"`
	Stats     mss.Stats `json:"stats"     yaml:"stats"`
	Cached    bool      `json:"cached"    yaml:"cached"`

	// values is the whole scored input, nil when it was not kept.
	values []float64
}

// FromResult builds a report from res. When withValues is set and res kept
// its input, each segment carries the values it covers.
func FromResult(res *scoring.Result, withValues bool) *Report {
	rep := &Report{
		Threshold: res.Threshold,
		Elements:  res.Stats.Elements,
		Segments:  make([]Segment, len(res.Segments)),
		Stats:     res.Stats,
		Cached:    res.Cached,
		values:    res.Values,
	}

	for i, seg := range res.Segments {
		out := Segment{Begin: seg.Begin, End: seg.End, Score: seg.Score}

		if withValues && res.Values != nil {
			out.Values = slices.Clone(res.Values[seg.Begin:seg.End])
		}

		rep.Segments[i] = out
	}

	return rep
}

// HasValues reports whether the report kept the scored input.
func (r *Report) HasValues() bool {
	return r.values != nil
}

// TotalScore returns the sum of all segment scores.
func (r *Report) TotalScore() float64 {
	scores := make([]float64, len(r.Segments))
	for i, seg := range r.Segments {
		scores[i] = seg.Score
	}

	return stats.Sum(scores)
}

// segmentValues returns the values seg covers, or nil when neither the
// segment nor the report kept them.
func (r *Report) segmentValues(seg Segment) []float64 {
	if seg.Values != nil {
		return seg.Values
	}

	if r.values == nil {
		return nil
	}

	return r.values[seg.Begin:seg.End]
}

// runningTotals returns the running residual sum after each element.
func (r *Report) runningTotals() []float64 {
	out := make([]float64, len(r.values))

	var total float64

	for i, v := range r.values {
		total += v - r.Threshold
		out[i] = total
	}

	return out
}

// Codec writes a report in one output format.
type Codec interface {
	// Encode writes r to w.
	Encode(w io.Writer, r *Report) error
	// Name returns the format name.
	Name() string
}

// Options tunes the human-oriented formats.
type Options struct {
	// Color enables ANSI colour in the text and table formats.
	Color bool
}

// ForFormat returns the codec for the named format. Names are case-insensitive.
func ForFormat(name string, opts Options) (Codec, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case FormatText, "":
		return newTextCodec(opts), nil
	case FormatTable:
		return newTableCodec(opts), nil
	case FormatJSON:
		return NewJSONCodec(), nil
	case FormatYAML:
		return yamlCodec{}, nil
	case FormatBin:
		return binaryCodec{}, nil
	case FormatChart:
		return chartCodec{}, nil
	case FormatPlot:
		return plotCodec{}, nil
	default:
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownFormat, name, strings.Join(Formats, ", "))
	}
}
