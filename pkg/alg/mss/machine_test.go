package mss

import (
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPhase_String(t *testing.T) {
	t.Parallel()

	tests := []struct {
		phase phase
		want  string
	}{
		{phaseScanning, "scanning"},
		{phaseExtending, "extending"},
		{phaseMergePending, "merge-pending"},
		{phaseFlushing, "flushing"},
		{phase(42), "unknown"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.phase.String())
	}
}

// checkRegister asserts the register's structural invariants.
func checkRegister[T Numeric](t *testing.T, r *register[T]) {
	t.Helper()

	for i, slot := range r.order {
		require.Equal(t, i, r.arena[slot].at, "order position of slot %d", slot)

		if i > 0 {
			prev := r.arena[r.order[i-1]].span
			require.LessOrEqual(t, prev.End, r.arena[slot].span.Begin, "register out of order")
		}
	}

	last := -1

	for i, slot := range r.index {
		at := r.arena[slot].at
		require.Less(t, last, at, "index is not a sub-selection of the register")
		require.Equal(t, slot, r.order[at], "index entry %d is not live", i)

		if i > 0 {
			require.Less(t, r.arena[r.index[i-1]].lo, r.arena[slot].lo, "index lo not increasing")
		}

		last = at
	}
}

func TestScanner_RegisterInvariants(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewPCG(7, 8))

	for range randomRounds {
		values := randomWithZeros(rng, rng.IntN(randomMaxLen))

		var out Ranges

		sc := scanner[int64]{sink: &out}

		var total int64

		for pos, v := range values {
			if v > 0 {
				sc.settle(state[int64]{
					phase:   phaseExtending,
					span:    Range{Begin: pos, End: pos + 1},
					bracket: bracket[int64]{lo: total, hi: total + v},
				})
			}

			total += v

			checkRegister(t, &sc.reg)
		}
	}
}

func TestScanner_MergeCarriesOuterBracket(t *testing.T) {
	t.Parallel()

	var out Ranges

	sc := scanner[int]{sink: &out}
	sc.commit(state[int]{span: Range{Begin: 0, End: 1}, bracket: bracket[int]{lo: 0, hi: 3}})

	st := sc.decide(state[int]{
		phase:   phaseExtending,
		span:    Range{Begin: 2, End: 3},
		bracket: bracket[int]{lo: 2, hi: 6},
	})

	assert.Equal(t, phaseMergePending, st.phase)
	assert.Equal(t, Range{Begin: 0, End: 3}, st.span)
	assert.Equal(t, bracket[int]{lo: 0, hi: 6}, st.bracket)
	assert.Zero(t, sc.reg.pending())
	assert.Equal(t, 1, sc.stats.Merges)
}

func TestScanner_AbsorbKeepsDominator(t *testing.T) {
	t.Parallel()

	var out Ranges

	sc := scanner[int]{sink: &out}
	sc.commit(state[int]{span: Range{Begin: 0, End: 1}, bracket: bracket[int]{lo: 0, hi: 5}})

	st := sc.decide(state[int]{
		phase:   phaseExtending,
		span:    Range{Begin: 2, End: 3},
		bracket: bracket[int]{lo: 3, hi: 4},
	})

	assert.Equal(t, phaseScanning, st.phase)
	assert.Equal(t, 2, sc.reg.pending())
	assert.Len(t, sc.reg.index, 2)
	assert.Equal(t, 1, sc.stats.Absorbs)
	assert.Empty(t, out)
}

func TestScanner_NoDominatorFlushes(t *testing.T) {
	t.Parallel()

	var out Ranges

	sc := scanner[int]{sink: &out}
	sc.commit(state[int]{span: Range{Begin: 0, End: 1}, bracket: bracket[int]{lo: 0, hi: 3}})

	sc.settle(state[int]{
		phase:   phaseExtending,
		span:    Range{Begin: 2, End: 3},
		bracket: bracket[int]{lo: -7, hi: -3},
	})

	assert.Equal(t, Ranges{{Begin: 0, End: 1}}, out)
	assert.Equal(t, 1, sc.reg.pending())
	assert.Equal(t, 1, sc.stats.Prunes)
	assert.Equal(t, 1, sc.stats.Flushes)
}

func TestRegister_ReusesFreedSlots(t *testing.T) {
	t.Parallel()

	var r register[int]

	r.push(Range{Begin: 0, End: 1}, bracket[int]{lo: 0, hi: 1})
	r.push(Range{Begin: 2, End: 3}, bracket[int]{lo: 1, hi: 2})
	r.cut(r.index[len(r.index)-1])

	require.Len(t, r.free, 1)

	r.push(Range{Begin: 4, End: 5}, bracket[int]{lo: 2, hi: 3})

	assert.Len(t, r.arena, 2)
	assert.Empty(t, r.free)
	checkRegister(t, &r)
}

func TestRegister_DrainEmitsOldestFirst(t *testing.T) {
	t.Parallel()

	var (
		r   register[int]
		out Ranges
	)

	r.push(Range{Begin: 0, End: 1}, bracket[int]{lo: 0, hi: 5})
	r.push(Range{Begin: 2, End: 3}, bracket[int]{lo: 3, hi: 4})
	r.push(Range{Begin: 5, End: 6}, bracket[int]{lo: 3, hi: 4})

	assert.Equal(t, 3, r.drain(&out))
	assert.True(t, slices.IsSortedFunc(out, func(a, b Range) int { return a.Begin - b.Begin }))
	assert.Equal(t, Ranges{{Begin: 0, End: 1}, {Begin: 2, End: 3}, {Begin: 5, End: 6}}, out)
	assert.Zero(t, r.pending())
	assert.Empty(t, r.index)
}
