// Package scoring runs maximal scoring subsequence searches with threshold
// selection, result caching, tracing and metrics around the core algorithm.
package scoring

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/stats"
)

// Mode selects how the threshold is derived.
type Mode string

// Threshold modes.
const (
	// ModeFixed uses Options.Threshold as given.
	ModeFixed Mode = "fixed"
	// ModeMedian uses the median of the input.
	ModeMedian Mode = "median"
	// ModeMean uses the arithmetic mean of the input.
	ModeMean Mode = "mean"
	// ModePercentile uses the Options.Percentile quantile of the input.
	ModePercentile Mode = "percentile"
)

// Sentinel errors.
var (
	// ErrUnknownMode is returned for an unrecognized threshold mode.
	ErrUnknownMode = errors.New("unknown threshold mode")
	// ErrPercentileRange is returned for a percentile outside [0, 1].
	ErrPercentileRange = errors.New("percentile must be between 0 and 1")
	// ErrNonFiniteThreshold is returned for a NaN or infinite threshold.
	ErrNonFiniteThreshold = errors.New("threshold must be finite")
	// ErrStreamMode is returned when a streamed input asks for a threshold
	// that needs the whole input.
	ErrStreamMode = errors.New("streaming requires a fixed threshold")
)

// ParseMode parses a threshold mode name. Empty means ModeFixed.
func ParseMode(name string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(name))); m {
	case "":
		return ModeFixed, nil
	case ModeFixed, ModeMedian, ModeMean, ModePercentile:
		return m, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, name)
	}
}

// Options controls threshold selection.
type Options struct {
	Mode       Mode
	Threshold  float64
	Percentile float64
}

// Resolve returns the threshold for values.
func (o Options) Resolve(values []float64) (float64, error) {
	var threshold float64

	switch o.Mode {
	case ModeFixed, "":
		threshold = o.Threshold
	case ModeMedian:
		threshold = stats.Median(values)
	case ModeMean:
		threshold = stats.Mean(values)
	case ModePercentile:
		if o.Percentile < 0 || o.Percentile > 1 || math.IsNaN(o.Percentile) {
			return 0, fmt.Errorf("%w: %v", ErrPercentileRange, o.Percentile)
		}

		threshold = stats.Percentile(values, o.Percentile)
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, o.Mode)
	}

	if math.IsNaN(threshold) || math.IsInf(threshold, 0) {
		return 0, ErrNonFiniteThreshold
	}

	return threshold, nil
}
