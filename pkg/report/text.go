package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxTableValues caps how many values a table row shows before eliding.
const maxTableValues = 8

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func newColor(enabled bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}

	return c
}

// textCodec prints one line per segment: its values tab-separated, then the
// segment score. Segments without values print their range instead.
type textCodec struct {
	span  *color.Color
	score *color.Color
}

func newTextCodec(opts Options) textCodec {
	return textCodec{
		span:  newColor(opts.Color, color.FgCyan),
		score: newColor(opts.Color, color.FgGreen, color.Bold),
	}
}

func (textCodec) Name() string { return FormatText }

func (c textCodec) Encode(w io.Writer, r *Report) error {
	var sb strings.Builder

	for _, seg := range r.Segments {
		values := r.segmentValues(seg)
		if values == nil {
			sb.WriteString(c.span.Sprint(seg.Range().String()))
			sb.WriteByte('\t')
		}

		for _, v := range values {
			sb.WriteString(formatFloat(v))
			sb.WriteByte('\t')
		}

		sb.WriteString(c.score.Sprintf("(total score = %s)", formatFloat(seg.Score)))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write text report: %w", err)
	}

	return nil
}

// tableCodec renders segments as a go-pretty table.
type tableCodec struct {
	color bool
}

func newTableCodec(opts Options) tableCodec {
	return tableCodec{color: opts.Color}
}

func (tableCodec) Name() string { return FormatTable }

func (c tableCodec) Encode(w io.Writer, r *Report) error {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)

	if c.color {
		tbl.Style().Color.Header = text.Colors{text.FgHiCyan, text.Bold}
		tbl.Style().Color.Footer = text.Colors{text.FgGreen}
	}

	tbl.SetTitle(fmt.Sprintf("threshold %s, %d elements", formatFloat(r.Threshold), r.Elements))
	tbl.AppendHeader(table.Row{"#", "Begin", "End", "Length", "Score", "Values"})

	for i, seg := range r.Segments {
		tbl.AppendRow(table.Row{i + 1, seg.Begin, seg.End, seg.Range().Len(), formatFloat(seg.Score), c.values(r, seg)})
	}

	tbl.AppendFooter(table.Row{"", "", "", "Total", formatFloat(r.TotalScore()), fmt.Sprintf("%d segments", len(r.Segments))})
	tbl.Render()

	return nil
}

func (tableCodec) values(r *Report, seg Segment) string {
	values := r.segmentValues(seg)
	if values == nil {
		return "-"
	}

	parts := make([]string, 0, min(len(values), maxTableValues)+1)
	for i, v := range values {
		if i == maxTableValues {
			parts = append(parts, fmt.Sprintf("... (+%d)", len(values)-maxTableValues))

			break
		}

		parts = append(parts, formatFloat(v))
	}

	return strings.Join(parts, " ")
}
