// Package mss finds all maximal scoring subsequences of a numeric sequence
// in a single forward pass (Ruzzo and Tompa, ISMB 1999).
//
// Every element is offset by a threshold to give its residual. The result is
// the ordered, disjoint set of half-open ranges whose residual sums are
// positive, that cannot be grown or trimmed into a higher-scoring range, and
// that cannot be combined with a neighbouring result into a better single
// range.
//
// The scan keeps a register of candidate ranges and a pruned search index
// over it. Each index entry is popped at most once, so the whole call runs in
// amortized O(n) time. Ranges are emitted in ascending order as soon as a new
// candidate proves that nothing before it can change, so a long input does
// not have to be buffered to get early results.
package mss

import (
	"fmt"
	"iter"
	"slices"

	"golang.org/x/exp/constraints"
)

// Numeric is the arithmetic type of residuals and running totals.
// Unsigned integers are excluded: residuals below the threshold are negative.
type Numeric interface {
	constraints.Signed | constraints.Float
}

// Range is a half-open span [Begin, End) of input positions.
type Range struct {
	Begin int `json:"begin" yaml:"begin"`
	End   int `json:"end"   yaml:"end"`
}

// Len returns the number of positions covered by the range.
func (r Range) Len() int {
	return r.End - r.Begin
}

// Empty reports whether the range covers no positions.
func (r Range) Empty() bool {
	return r.End <= r.Begin
}

// Contains reports whether position i lies inside the range.
func (r Range) Contains(i int) bool {
	return i >= r.Begin && i < r.End
}

// String formats the range as [begin,end).
func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Begin, r.End)
}

// Sink receives finalized ranges in ascending position order.
// It only ever has to append.
type Sink interface {
	Append(r Range)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(r Range)

// Append calls f(r).
func (f SinkFunc) Append(r Range) {
	f(r)
}

// Ranges is a Sink that collects ranges into a slice.
type Ranges []Range

// Append adds r to the collection.
func (rs *Ranges) Append(r Range) {
	*rs = append(*rs, r)
}

// Stats describes the work done by one scan.
type Stats struct {
	// Elements is the number of input elements consumed.
	Elements int `json:"elements" yaml:"elements"`
	// Positive is the number of elements with a positive residual. Each one
	// is committed to the register exactly once.
	Positive int `json:"positive" yaml:"positive"`
	// Merges counts candidates joined into a wider carried range.
	Merges int `json:"merges" yaml:"merges"`
	// Absorbs counts brackets registered in front of a dominating candidate.
	Absorbs int `json:"absorbs" yaml:"absorbs"`
	// Prunes counts search index entries dropped for good.
	Prunes int `json:"prunes" yaml:"prunes"`
	// Flushes counts register drains that emitted at least one range.
	Flushes int `json:"flushes" yaml:"flushes"`
	// Emitted is the number of ranges handed to the sink.
	Emitted int `json:"emitted" yaml:"emitted"`
	// PeakRegister is the largest number of pending candidates seen.
	PeakRegister int `json:"peak_register" yaml:"peak_register"`
}

// ScanFunc consumes seq once, scoring each element with score, and appends
// every maximal scoring range to sink in ascending order.
//
// The input must not change while the scan runs. Overflow of the running
// total is not detected; pick T wide enough for the input.
func ScanFunc[E any, T Numeric](seq iter.Seq[E], score func(E) T, threshold T, sink Sink) Stats {
	sc := scanner[T]{sink: sink}

	var total T

	pos := 0

	for elem := range seq {
		resid := score(elem) - threshold
		if resid > 0 {
			sc.stats.Positive++
			sc.settle(state[T]{
				phase:   phaseExtending,
				span:    Range{Begin: pos, End: pos + 1},
				bracket: bracket[T]{lo: total, hi: total + resid},
			})
		}

		total += resid
		pos++
	}

	sc.stats.Elements = pos
	sc.flush()

	return sc.stats
}

// Scan is ScanFunc for sequences that already hold the arithmetic type.
func Scan[T Numeric](seq iter.Seq[T], threshold T, sink Sink) Stats {
	return ScanFunc(seq, identity[T], threshold, sink)
}

// FindSeq returns all maximal scoring ranges of seq. It returns nil when
// there are none.
func FindSeq[T Numeric](seq iter.Seq[T], threshold T) []Range {
	var out Ranges

	Scan(seq, threshold, &out)

	return out
}

// Find returns all maximal scoring ranges of values. It returns nil when
// there are none.
func Find[T Numeric](values []T, threshold T) []Range {
	return FindSeq(slices.Values(values), threshold)
}

// Score returns the residual sum of values over r.
func Score[T Numeric](values []T, threshold T, r Range) T {
	var sum T

	for _, v := range values[r.Begin:r.End] {
		sum += v - threshold
	}

	return sum
}

func identity[T Numeric](v T) T {
	return v
}
