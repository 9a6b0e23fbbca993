package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/guptarohit/asciigraph"
)

// Chart geometry.
const (
	chartHeight   = 12
	chartMaxWidth = 100
	lineWidth     = 2
	segmentWidth  = 4
	plotHeight    = "500px"
	plotWidth     = "100%"
	gapValue      = "-"
	segmentColor  = "#e4572e"
)

// chartCodec draws the running residual total as an ASCII graph. Maximal
// segments are the climbs between a local low and the following high.
type chartCodec struct{}

func (chartCodec) Name() string { return FormatChart }

func (chartCodec) Encode(w io.Writer, r *Report) error {
	if !r.HasValues() {
		return fmt.Errorf("%s: %w", FormatChart, ErrNeedsValues)
	}

	var sb strings.Builder

	if len(r.values) == 0 {
		sb.WriteString("no values\n")
	} else {
		spans := make([]string, len(r.Segments))
		for i, seg := range r.Segments {
			spans[i] = seg.Range().String()
		}

		caption := fmt.Sprintf("running total at threshold %s; segments %s",
			formatFloat(r.Threshold), strings.Join(spans, " "))

		options := []asciigraph.Option{asciigraph.Height(chartHeight), asciigraph.Caption(caption)}
		if len(r.values) > chartMaxWidth {
			options = append(options, asciigraph.Width(chartMaxWidth))
		}

		sb.WriteString(asciigraph.Plot(r.runningTotals(), options...))
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write chart: %w", err)
	}

	return nil
}

// plotCodec renders the running residual total as a standalone HTML line
// chart with the maximal segments overlaid.
type plotCodec struct{}

func (plotCodec) Name() string { return FormatPlot }

func (plotCodec) Encode(w io.Writer, r *Report) error {
	if !r.HasValues() {
		return fmt.Errorf("%s: %w", FormatPlot, ErrNeedsValues)
	}

	labels, totals, segments := buildPlotData(r)

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: plotWidth, Height: plotHeight}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Maximal scoring subsequences",
			Subtitle: fmt.Sprintf("threshold %s, %d segments", formatFloat(r.Threshold), len(r.Segments)),
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "slider", Start: 0, End: 100}, opts.DataZoom{Type: "inside"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Position"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Running total"}),
	)
	line.SetXAxis(labels)
	line.AddSeries("Running total", totals,
		charts.WithLineStyleOpts(opts.LineStyle{Width: lineWidth}),
	)
	line.AddSeries("Segments", segments,
		charts.WithItemStyleOpts(opts.ItemStyle{Color: segmentColor}),
		charts.WithLineStyleOpts(opts.LineStyle{Width: segmentWidth}),
	)

	err := line.Render(w)
	if err != nil {
		return fmt.Errorf("render plot: %w", err)
	}

	return nil
}

// buildPlotData returns one label per running-total point and the two
// series. Point 0 is the total before the first element. The segment series
// holds a value only at points bounding a segment and "-" elsewhere, which
// breaks the line between segments.
func buildPlotData(r *Report) (labels []string, totals, segments []opts.LineData) {
	running := append([]float64{0}, r.runningTotals()...)

	labels = make([]string, len(running))
	totals = make([]opts.LineData, len(running))
	segments = make([]opts.LineData, len(running))

	for i, v := range running {
		labels[i] = strconv.Itoa(i)
		totals[i] = opts.LineData{Value: v}
		segments[i] = opts.LineData{Value: gapValue}
	}

	for _, seg := range r.Segments {
		for p := seg.Begin; p <= seg.End; p++ {
			segments[p] = opts.LineData{Value: running[p]}
		}
	}

	return labels, totals, segments
}
