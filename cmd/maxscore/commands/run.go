package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	fatihcolor "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/maxscore/pkg/config"
	"github.com/Sumatoshi-tech/maxscore/pkg/report"
	"github.com/Sumatoshi-tech/maxscore/pkg/scoring"
	"github.com/Sumatoshi-tech/maxscore/pkg/seqio"
)

// stdinArg names standard input on the command line.
const stdinArg = "-"

// Sentinel errors for the run command.
var (
	// ErrStreamInput indicates --stream with an input format other than text.
	ErrStreamInput = errors.New("--stream reads text input only")
	// ErrStreamFormat indicates --stream with an output format that needs the values.
	ErrStreamFormat = errors.New("--stream cannot render a format that draws the input")
)

// runFlags holds the run command's flags. Unset flags fall back to the
// configuration.
type runFlags struct {
	threshold     float64
	thresholdMode string
	percentile    float64
	inputFormat   string
	recordColumn  int
	maxSize       string
	format        string
	noColor       bool
	output        string
	stream        bool
	withValues    bool
}

func newRunCommand(app *App) *cobra.Command {
	flags := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [file|-]",
		Short: "Find the maximal scoring subsequences of a file or stdin",
		Long: `Read a sequence of scores and print every maximal scoring subsequence.

Input formats:
  text      whitespace-separated numbers
  json      {"values": [...], "threshold": N}
  records   tab-separated rows: chrom, start, end, strand, measurement

The threshold is subtracted from every score. It is given with --threshold or
derived from the input with --threshold-mode median|mean|percentile.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags.applyConfig(cmd, app.Config)

			return app.run(cmd, args, flags)
		},
	}

	cmd.Flags().Float64VarP(&flags.threshold, "threshold", "t", config.DefaultThresholdValue, "threshold subtracted from every score")
	cmd.Flags().StringVar(&flags.thresholdMode, "threshold-mode", config.DefaultThresholdMode, "fixed, median, mean or percentile")
	cmd.Flags().Float64Var(&flags.percentile, "percentile", config.DefaultThresholdPercentile, "quantile in [0, 1] for --threshold-mode percentile")
	cmd.Flags().StringVarP(&flags.inputFormat, "input-format", "i", config.DefaultInputFormat, "text, json or records")
	cmd.Flags().IntVar(&flags.recordColumn, "record-column", config.DefaultInputRecordColumn, "records column holding the score (2, 3 or 5)")
	cmd.Flags().StringVar(&flags.maxSize, "max-size", config.DefaultInputMaxSize, "maximum input size (e.g. 64MB)")
	cmd.Flags().StringVarP(&flags.format, "format", "f", config.DefaultOutputFormat, "output format: text, table, json, yaml, bin, chart or plot")
	cmd.Flags().BoolVar(&flags.noColor, "no-color", false, "disable colored output")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "write output to a file instead of stdout")
	cmd.Flags().BoolVar(&flags.stream, "stream", false, "emit segments while reading (fixed threshold, text input)")
	cmd.Flags().BoolVar(&flags.withValues, "values", false, "include segment values in json and yaml output")

	return cmd
}

// applyConfig copies configuration values into every flag the user did not set.
func (f *runFlags) applyConfig(cmd *cobra.Command, cfg *config.Config) {
	if cfg == nil {
		return
	}

	changed := cmd.Flags().Changed

	if !changed("threshold") {
		f.threshold = cfg.Threshold.Value
	}

	if !changed("threshold-mode") {
		f.thresholdMode = cfg.Threshold.Mode
	}

	if !changed("percentile") {
		f.percentile = cfg.Threshold.Percentile
	}

	if !changed("input-format") {
		f.inputFormat = cfg.Input.Format
	}

	if !changed("record-column") {
		f.recordColumn = cfg.Input.RecordColumn
	}

	if !changed("max-size") {
		f.maxSize = cfg.Input.MaxSize
	}

	if !changed("format") {
		f.format = cfg.Output.Format
	}

	if !changed("no-color") {
		f.noColor = !cfg.Output.Color
	}
}

// validate applies the configuration rules to the merged flag values so a
// bad flag fails before any input is read.
func (f *runFlags) validate() error {
	if !slices.Contains(config.InputFormats, f.inputFormat) {
		return fmt.Errorf("%w: %q", config.ErrInvalidInputFormat, f.inputFormat)
	}

	switch f.recordColumn {
	case seqio.ColumnStart, seqio.ColumnEnd, seqio.ColumnMeasurement:
	default:
		return fmt.Errorf("%w: %d", config.ErrInvalidRecordColumn, f.recordColumn)
	}

	if f.percentile < 0 || f.percentile > 1 {
		return fmt.Errorf("%w: %g", config.ErrInvalidPercentile, f.percentile)
	}

	return nil
}

func (a *App) run(cmd *cobra.Command, args []string, flags *runFlags) error {
	err := flags.validate()
	if err != nil {
		return err
	}

	color := !flags.noColor && flags.output == "" && !fatihcolor.NoColor

	codec, err := report.ForFormat(flags.format, report.Options{Color: color})
	if err != nil {
		return err
	}

	// Later checks compare against the canonical format name.
	flags.format = codec.Name()

	mode, err := scoring.ParseMode(flags.thresholdMode)
	if err != nil {
		return err
	}

	opts := scoring.Options{Mode: mode, Threshold: flags.threshold, Percentile: flags.percentile}

	in, closeIn, err := openInput(cmd, args)
	if err != nil {
		return err
	}
	defer closeIn()

	limited, err := seqio.Limit(in, flags.maxSize)
	if err != nil {
		return err
	}

	var res *scoring.Result

	if flags.stream {
		res, err = a.stream(cmd.Context(), limited, flags, opts)
	} else {
		res, err = a.find(cmd, limited, flags, opts)
	}

	if err != nil {
		return err
	}

	a.Logger.InfoContext(cmd.Context(), "search complete",
		"elements", res.Stats.Elements,
		"segments", len(res.Segments),
		"threshold", res.Threshold,
		"cached", res.Cached,
	)

	return writeOutput(cmd, flags.output, codec, report.FromResult(res, flags.withValues))
}

// find reads the whole input and runs one search.
func (a *App) find(cmd *cobra.Command, r io.Reader, flags *runFlags, opts scoring.Options) (*scoring.Result, error) {
	ctx := cmd.Context()

	switch flags.inputFormat {
	case "json":
		doc, err := seqio.ReadJSON(r)
		if err != nil {
			return nil, err
		}

		if doc.Threshold != nil && !cmd.Flags().Changed("threshold") {
			opts.Threshold = *doc.Threshold
		}

		return a.Engine.Find(ctx, doc.Values, opts)
	case "records":
		records, err := seqio.ReadRecords(r, flags.recordColumn)
		if err != nil {
			return nil, err
		}

		return a.Engine.FindRecords(ctx, records, opts)
	default:
		values, err := seqio.ReadText(r)
		if err != nil {
			return nil, err
		}

		return a.Engine.Find(ctx, values, opts)
	}
}

// stream scans text input once without keeping it.
func (a *App) stream(ctx context.Context, r io.Reader, flags *runFlags, opts scoring.Options) (*scoring.Result, error) {
	if flags.inputFormat != "text" {
		return nil, fmt.Errorf("%w: got %q", ErrStreamInput, flags.inputFormat)
	}

	if flags.format == report.FormatChart || flags.format == report.FormatPlot {
		return nil, fmt.Errorf("%w: %s", ErrStreamFormat, flags.format)
	}

	seq, readErr := seqio.Values(r)
	res := &scoring.Result{Threshold: opts.Threshold}

	st, err := a.Engine.StreamSegments(ctx, seq, opts, func(seg scoring.Segment) {
		res.Segments = append(res.Segments, seg)
	})
	if err != nil {
		return nil, err
	}

	err = readErr()
	if err != nil {
		return nil, err
	}

	if st.Elements == 0 {
		return nil, seqio.ErrNoData
	}

	res.Stats = st

	return res, nil
}

// openInput returns the reader named by args: a file, or stdin for "-" or
// no argument.
func openInput(cmd *cobra.Command, args []string) (io.Reader, func(), error) {
	if len(args) == 0 || args[0] == stdinArg {
		return cmd.InOrStdin(), func() {}, nil
	}

	f, err := os.Open(args[0])
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}

	return f, func() { _ = f.Close() }, nil
}

// writeOutput encodes rep to path, or to the command's stdout when path is empty.
func writeOutput(cmd *cobra.Command, path string, codec report.Codec, rep *report.Report) error {
	if path == "" {
		return codec.Encode(cmd.OutOrStdout(), rep)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}

	err = codec.Encode(f, rep)
	if err != nil {
		_ = f.Close()

		return err
	}

	err = f.Close()
	if err != nil {
		return fmt.Errorf("close output: %w", err)
	}

	return nil
}
