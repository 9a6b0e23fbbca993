package mss_test

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"testing"

	"github.com/cockroachdb/datadriven"

	"github.com/Sumatoshi-tech/maxscore/pkg/alg/mss"
)

// TestDataDriven runs the scenarios in testdata/find.
//
//	find threshold=<n> [float]
//	stats threshold=<n>
//
// The input block holds whitespace-separated scores. Without the float
// argument scores are parsed as int64.
func TestDataDriven(t *testing.T) {
	t.Parallel()

	datadriven.RunTest(t, "testdata/find", func(t *testing.T, td *datadriven.TestData) string {
		var (
			threshold = "0"
			float     bool
		)

		for _, arg := range td.CmdArgs {
			switch arg.Key {
			case "threshold":
				threshold = arg.Vals[0]
			case "float":
				float = true
			default:
				td.Fatalf(t, "unknown argument %q", arg.Key)
			}
		}

		switch td.Cmd {
		case "find":
			if float {
				values, thr := parseFloats(t, td, threshold)

				return formatRanges(mss.Find(values, thr), func(r mss.Range) string {
					return strconv.FormatFloat(mss.Score(values, thr, r), 'f', 2, 64)
				})
			}

			values, thr := parseInts(t, td, threshold)

			return formatRanges(mss.Find(values, thr), func(r mss.Range) string {
				return strconv.FormatInt(mss.Score(values, thr, r), 10)
			})

		case "stats":
			values, thr := parseInts(t, td, threshold)

			var out mss.Ranges

			s := mss.Scan(slices.Values(values), thr, &out)

			return fmt.Sprintf("elements=%d positive=%d merges=%d absorbs=%d prunes=%d flushes=%d emitted=%d peak=%d\n",
				s.Elements, s.Positive, s.Merges, s.Absorbs, s.Prunes, s.Flushes, s.Emitted, s.PeakRegister)

		default:
			td.Fatalf(t, "unknown command %q", td.Cmd)

			return ""
		}
	})
}

func parseInts(t *testing.T, td *datadriven.TestData, threshold string) ([]int64, int64) {
	t.Helper()

	thr, err := strconv.ParseInt(threshold, 10, 64)
	if err != nil {
		td.Fatalf(t, "threshold: %v", err)
	}

	fields := strings.Fields(td.Input)
	values := make([]int64, len(fields))

	for i, f := range fields {
		values[i], err = strconv.ParseInt(f, 10, 64)
		if err != nil {
			td.Fatalf(t, "value %d: %v", i, err)
		}
	}

	return values, thr
}

func parseFloats(t *testing.T, td *datadriven.TestData, threshold string) ([]float64, float64) {
	t.Helper()

	thr, err := strconv.ParseFloat(threshold, 64)
	if err != nil {
		td.Fatalf(t, "threshold: %v", err)
	}

	fields := strings.Fields(td.Input)
	values := make([]float64, len(fields))

	for i, f := range fields {
		values[i], err = strconv.ParseFloat(f, 64)
		if err != nil {
			td.Fatalf(t, "value %d: %v", i, err)
		}
	}

	return values, thr
}

func formatRanges(ranges []mss.Range, score func(mss.Range) string) string {
	if len(ranges) == 0 {
		return "<none>\n"
	}

	var sb strings.Builder

	for _, r := range ranges {
		fmt.Fprintf(&sb, "%s score=%s\n", r, score(r))
	}

	return sb.String()
}
