package seqio

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"strconv"
)

// maxTokenSize bounds a single whitespace-separated token.
const maxTokenSize = 1 << 20

// Values returns a single-pass sequence over the whitespace-separated numbers
// in r. Iteration stops at the first token that is not a number; the
// returned function then reports why. It returns nil after a clean run.
func Values(r io.Reader) (iter.Seq[float64], func() error) {
	var err error

	seq := func(yield func(float64) bool) {
		sc := bufio.NewScanner(r)
		sc.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTokenSize)
		sc.Split(bufio.ScanWords)

		ordinal := 0

		for sc.Scan() {
			ordinal++

			v, parseErr := strconv.ParseFloat(sc.Text(), 64)
			if parseErr != nil {
				err = fmt.Errorf("%w: token %d %q is not a number", ErrMalformed, ordinal, sc.Text())

				return
			}

			if !yield(v) {
				return
			}
		}

		if scanErr := sc.Err(); scanErr != nil {
			err = fmt.Errorf("read values: %w", scanErr)
		}
	}

	return seq, func() error { return err }
}

// ReadText reads every number in r. It fails with ErrNoData when r holds
// none.
func ReadText(r io.Reader) ([]float64, error) {
	seq, errFn := Values(r)

	var values []float64

	for v := range seq {
		values = append(values, v)
	}

	if err := errFn(); err != nil {
		return nil, err
	}

	if len(values) == 0 {
		return nil, ErrNoData
	}

	return values, nil
}
