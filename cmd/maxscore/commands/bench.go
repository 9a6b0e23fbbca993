package commands

import (
	"errors"
	"fmt"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
	"github.com/Sumatoshi-tech/maxscore/pkg/alg/stats"
)

// Bench defaults.
const (
	defaultBenchSize = 100_000
	defaultBenchRuns = 20
	defaultBenchSeed = 1

	// histogramMaxMicros bounds recorded run times at one minute.
	histogramMaxMicros = int64(time.Minute / time.Microsecond)
	histogramSigFigs   = 3
)

// Reported quantiles.
var benchQuantiles = []float64{50, 90, 99}

// ErrBenchArgs indicates a non-positive bench size or run count.
var ErrBenchArgs = errors.New("--size and --runs must be positive")

type benchFlags struct {
	size int
	runs int
	seed uint64
}

// benchSummary is the outcome of one bench invocation.
type benchSummary struct {
	hist     *hdrhistogram.Histogram
	micros   []float64
	elements int64
	segments int64
	total    time.Duration
}

func newBenchCommand(app *App) *cobra.Command {
	flags := &benchFlags{}

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time the search on random inputs",
		Long: `Run the search --runs times on fresh random integer inputs of --size
values at their median and print the run time distribution.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.size <= 0 || flags.runs <= 0 {
				return ErrBenchArgs
			}

			summary, err := runBench(flags)
			if err != nil {
				return err
			}

			app.Logger.DebugContext(cmd.Context(), "bench complete",
				"runs", flags.runs, "size", flags.size, "seed", flags.seed, "total", summary.total)

			renderBench(cmd, flags, summary)

			return nil
		},
	}

	cmd.Flags().IntVar(&flags.size, "size", defaultBenchSize, "values per run")
	cmd.Flags().IntVar(&flags.runs, "runs", defaultBenchRuns, "number of runs")
	cmd.Flags().Uint64Var(&flags.seed, "seed", defaultBenchSeed, "random seed of the first run")

	return cmd
}

func runBench(flags *benchFlags) (*benchSummary, error) {
	summary := &benchSummary{
		hist:   hdrhistogram.New(1, histogramMaxMicros, histogramSigFigs),
		micros: make([]float64, 0, flags.runs),
	}

	for run := range flags.runs {
		values := randomInts(flags.seed+uint64(run), flags.size, defaultDemoMax)
		threshold := upperMedian(values)

		start := time.Now()
		ranges := mss.Find(values, threshold)
		elapsed := time.Since(start)

		summary.total += elapsed
		summary.elements += int64(len(values))
		summary.segments += int64(len(ranges))

		micros := max(elapsed.Microseconds(), 1)
		summary.micros = append(summary.micros, float64(micros))

		err := summary.hist.RecordValue(micros)
		if err != nil {
			return nil, fmt.Errorf("record run %d: %w", run, err)
		}
	}

	return summary, nil
}

func renderBench(cmd *cobra.Command, flags *benchFlags, summary *benchSummary) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(cmd.OutOrStdout())
	tbl.SetStyle(table.StyleLight)
	tbl.SetTitle(fmt.Sprintf("%s runs of %s values", humanize.Comma(int64(flags.runs)), humanize.Comma(int64(flags.size))))
	tbl.AppendHeader(table.Row{"Quantile", "Run time"})

	for _, q := range benchQuantiles {
		micros := summary.hist.ValueAtQuantile(q)
		tbl.AppendRow(table.Row{fmt.Sprintf("p%g", q), microsString(float64(micros))})
	}

	mean, stddev := stats.MeanStdDev(summary.micros)

	tbl.AppendRow(table.Row{"min", microsString(stats.Min(summary.micros))})
	tbl.AppendRow(table.Row{"max", microsString(stats.Max(summary.micros))})
	tbl.AppendRow(table.Row{"mean", microsString(mean)})
	tbl.AppendRow(table.Row{"stddev", microsString(stddev)})

	rate := 0.0
	if secs := summary.total.Seconds(); secs > 0 {
		rate = float64(summary.elements) / secs
	}

	tbl.AppendFooter(table.Row{"throughput", humanize.SIWithDigits(rate, 2, "values/s")})
	tbl.AppendFooter(table.Row{"segments", humanize.Comma(summary.segments)})
	tbl.Render()
}

func microsString(micros float64) string {
	return (time.Duration(micros) * time.Microsecond).String()
}
