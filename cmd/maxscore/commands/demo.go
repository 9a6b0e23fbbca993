package commands

import (
	"errors"
	"math/rand/v2"
	"slices"
	"time"

	fatihcolor "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
	"github.com/Sumatoshi-tech/maxscore/pkg/report"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
)

// Random demo defaults.
const (
	defaultDemoSize = 50
	defaultDemoMax  = 1234
)

// ErrDemoSize indicates a non-positive random demo size or bound.
var ErrDemoSize = errors.New("--size and --max must be positive")

// Built-in demo inputs.
var (
	demoInts    = []int{1, -2, 3, -2, 4, -1, -2, 1, -1, 3}
	demoDoubles = []float64{1.1, -2.2, 3.3, -2.4, 4.5, -1.6, -2.7, 1.8, -1.9, 3.0}
)

type demoFlags struct {
	format  string
	noColor bool
	size    int
	seed    uint64
	bound   int
}

func newDemoCommand(app *App) *cobra.Command {
	flags := &demoFlags{}

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the built-in example inputs",
		Long: `Run the search on built-in inputs:
  array     the integers 1 -2 3 -2 4 -1 -2 1 -1 3 at threshold 0
  doubles   the same shape as floating-point values at threshold 0
  random    random integers at their median, seed and threshold logged`,
	}

	cmd.PersistentFlags().StringVarP(&flags.format, "format", "f", report.FormatText, "output format")
	cmd.PersistentFlags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")

	cmd.AddCommand(&cobra.Command{
		Use:   "array",
		Short: "Search the built-in integer array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.render(cmd, demoResult(demoInts, 0))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "doubles",
		Short: "Search the built-in floating-point array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return flags.render(cmd, demoResult(demoDoubles, 0))
		},
	})

	random := &cobra.Command{
		Use:   "random",
		Short: "Search random integers at their median",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.size <= 0 || flags.bound <= 0 {
				return ErrDemoSize
			}

			seed := flags.seed
			if seed == 0 {
				seed = uint64(time.Now().UnixNano())
			}

			values := randomInts(seed, flags.size, flags.bound)
			threshold := upperMedian(values)

			app.Logger.InfoContext(cmd.Context(), "random demo", "seed", seed, "threshold", threshold, "size", len(values))

			return flags.render(cmd, demoResult(values, threshold))
		},
	}

	random.Flags().IntVar(&flags.size, "size", defaultDemoSize, "number of random values")
	random.Flags().Uint64Var(&flags.seed, "seed", 0, "random seed (0 picks one from the clock)")
	random.Flags().IntVar(&flags.bound, "max", defaultDemoMax, "values are drawn from [0, max)")
	cmd.AddCommand(random)

	return cmd
}

func (f *demoFlags) render(cmd *cobra.Command, res *scoring.Result) error {
	codec, err := report.ForFormat(f.format, report.Options{Color: !f.noColor && !fatihcolor.NoColor})
	if err != nil {
		return err
	}

	return codec.Encode(cmd.OutOrStdout(), report.FromResult(res, false))
}

// demoResult searches values directly with the generic core and wraps the
// outcome as an engine result for rendering.
func demoResult[T mss.Numeric](values []T, threshold T) *scoring.Result {
	var ranges mss.Ranges

	st := mss.Scan(slices.Values(values), threshold, &ranges)

	res := &scoring.Result{
		Threshold: float64(threshold),
		Values:    make([]float64, len(values)),
		Segments:  make([]scoring.Segment, len(ranges)),
		Stats:     st,
	}

	for i, v := range values {
		res.Values[i] = float64(v)
	}

	for i, r := range ranges {
		res.Segments[i] = scoring.Segment{Range: r, Score: float64(mss.Score(values, threshold, r))}
	}

	return res
}

func randomInts(seed uint64, n, bound int) []int {
	rng := rand.New(rand.NewPCG(seed, seed))

	values := make([]int, n)
	for i := range values {
		values[i] = rng.IntN(bound)
	}

	return values
}

// upperMedian returns the element at position n/2 of the sorted values.
func upperMedian(values []int) int {
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	return sorted[len(sorted)/2]
}
