package mss

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceFind is the unpruned quadratic form of the algorithm: every
// lookup scans the whole candidate list from the newest entry and nothing is
// emitted before the input ends.
func referenceFind[T Numeric](values []T, threshold T) []Range {
	type entry struct {
		span   Range
		lo, hi T
	}

	var (
		list  []entry
		total T
	)

	for i, v := range values {
		resid := v - threshold
		if resid > 0 {
			cur := entry{span: Range{Begin: i, End: i + 1}, lo: total, hi: total + resid}

			for {
				j := len(list) - 1
				for j >= 0 && list[j].lo >= cur.lo {
					j--
				}

				if j < 0 || list[j].hi >= cur.hi {
					list = append(list, cur)

					break
				}

				cur = entry{span: Range{Begin: list[j].span.Begin, End: cur.span.End}, lo: list[j].lo, hi: cur.hi}
				list = list[:j]
			}
		}

		total += resid
	}

	if len(list) == 0 {
		return nil
	}

	out := make([]Range, len(list))
	for i, e := range list {
		out[i] = e.span
	}

	return out
}

// Random input shapes.
const (
	randomRounds   = 400
	randomMaxLen   = 64
	randomMaxScore = 9
)

// randomNonZero returns integers in [-max, max] without zero, so every
// residual against threshold 0 is strictly positive or strictly negative.
func randomNonZero(rng *rand.Rand, n int) []int64 {
	values := make([]int64, n)

	for i := range values {
		v := rng.Int64N(randomMaxScore) + 1
		if rng.IntN(2) == 0 {
			v = -v
		}

		values[i] = v
	}

	return values
}

// randomWithZeros returns integers in [-max, max], zeros included.
func randomWithZeros(rng *rand.Rand, n int) []int64 {
	values := make([]int64, n)

	for i := range values {
		values[i] = rng.Int64N(2*randomMaxScore+1) - randomMaxScore
	}

	return values
}

// checkMaximal asserts the defining properties of a maximal scoring
// subsequence set over values with threshold 0 and no zero residuals.
func checkMaximal(t *testing.T, values []int64, got []Range) {
	t.Helper()

	for i, r := range got {
		require.False(t, r.Empty(), "range %d is empty", i)

		if i > 0 {
			require.LessOrEqual(t, got[i-1].End, r.Begin, "ranges %d and %d overlap or are out of order", i-1, i)
		}

		score := Score(values, 0, r)
		require.Positive(t, score, "range %v", r)

		leftFree := r.Begin > 0 && (i == 0 || got[i-1].End < r.Begin)
		if leftFree {
			assert.Less(t, score+values[r.Begin-1], score, "range %v extends left", r)
		}

		rightFree := r.End < len(values) && (i == len(got)-1 || got[i+1].Begin > r.End)
		if rightFree {
			assert.Less(t, score+values[r.End], score, "range %v extends right", r)
		}

		for b := r.Begin; b < r.End; b++ {
			for e := b + 1; e <= r.End; e++ {
				assert.LessOrEqual(t, Score(values, 0, Range{Begin: b, End: e}), score, "range %v beaten by [%d,%d)", r, b, e)
			}
		}

		if i > 0 {
			prev := got[i-1]
			joined := Score(values, 0, Range{Begin: prev.Begin, End: r.End})
			assert.LessOrEqual(t, joined, max(Score(values, 0, prev), score), "ranges %v and %v should merge", prev, r)
		}
	}

	for i, v := range values {
		if v <= 0 {
			continue
		}

		covered := false

		for _, r := range got {
			if r.Contains(i) {
				covered = true

				break
			}
		}

		assert.True(t, covered, "positive position %d not covered", i)
	}
}

func TestFind_MatchesReference(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(1, 2))

	for range randomRounds {
		values := randomWithZeros(rng, rng.IntN(randomMaxLen))
		threshold := rng.Int64N(3) - 1

		assert.Equal(t, referenceFind(values, threshold), Find(values, threshold), "values=%v threshold=%d", values, threshold)
	}
}

func TestFind_MatchesReferenceFloat(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(3, 4))

	for range randomRounds {
		values := make([]float64, rng.IntN(randomMaxLen))
		for i := range values {
			values[i] = rng.NormFloat64()
		}

		assert.Equal(t, referenceFind(values, 0.25), Find(values, 0.25), "values=%v", values)
	}
}

func TestFind_MaximalityProperties(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(5, 6))

	for range randomRounds {
		values := randomNonZero(rng, rng.IntN(randomMaxLen))
		checkMaximal(t, values, Find(values, int64(0)))
	}
}

func TestReferenceFind_Scenarios(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []Range{{Begin: 0, End: 3}}, referenceFind([]int{3, -1, 4}, 0))
	assert.Equal(t, []Range{{Begin: 0, End: 1}, {Begin: 2, End: 3}}, referenceFind([]int{3, -10, 4}, 0))
	assert.Nil(t, referenceFind([]int{}, 0))
}
