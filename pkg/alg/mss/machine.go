package mss

// phase is a state of the merge/commit decision logic.
type phase uint8

const (
	// phaseScanning has no pending work; the scanner may consume input.
	phaseScanning phase = iota
	// phaseExtending carries a bracket freshly built from a positive residual.
	phaseExtending
	// phaseMergePending carries a merged bracket that must be compared again
	// before any more input is consumed.
	phaseMergePending
	// phaseFlushing carries a bracket that no candidate dominates.
	phaseFlushing
)

// String returns the phase name.
func (p phase) String() string {
	switch p {
	case phaseScanning:
		return "scanning"
	case phaseExtending:
		return "extending"
	case phaseMergePending:
		return "merge-pending"
	case phaseFlushing:
		return "flushing"
	default:
		return "unknown"
	}
}

// state is the decision logic's phase together with the range it carries.
type state[T Numeric] struct {
	phase   phase
	span    Range
	bracket bracket[T]
}

// scanner owns all mutable state of one call.
type scanner[T Numeric] struct {
	reg   register[T]
	sink  Sink
	stats Stats
}

// settle drives st through the decision logic until it is committed.
func (sc *scanner[T]) settle(st state[T]) {
	for st.phase != phaseScanning {
		st = sc.next(st)
	}
}

// next performs one transition.
func (sc *scanner[T]) next(st state[T]) state[T] {
	switch st.phase {
	case phaseExtending, phaseMergePending:
		return sc.decide(st)
	case phaseFlushing:
		sc.flush()
		sc.commit(st)

		return state[T]{phase: phaseScanning}
	default:
		return state[T]{phase: phaseScanning}
	}
}

// decide looks up the dominating candidate of the carried bracket and picks
// the flush, absorb or merge branch.
func (sc *scanner[T]) decide(st state[T]) state[T] {
	slot, pruned, found := sc.reg.dominator(st.bracket.lo)
	sc.stats.Prunes += pruned

	if !found {
		st.phase = phaseFlushing

		return st
	}

	dom := sc.reg.arena[slot]

	if dom.hi >= st.bracket.hi {
		sc.stats.Absorbs++
		sc.commit(st)

		return state[T]{phase: phaseScanning}
	}

	sc.reg.cut(slot)
	sc.stats.Merges++

	return state[T]{
		phase:   phaseMergePending,
		span:    Range{Begin: dom.span.Begin, End: st.span.End},
		bracket: bracket[T]{lo: dom.lo, hi: st.bracket.hi},
	}
}

// commit registers the carried range as the newest candidate.
func (sc *scanner[T]) commit(st state[T]) {
	sc.reg.push(st.span, st.bracket)
	sc.stats.PeakRegister = max(sc.stats.PeakRegister, sc.reg.pending())
}

// flush emits every pending candidate.
func (sc *scanner[T]) flush() {
	n := sc.reg.drain(sc.sink)
	if n == 0 {
		return
	}

	sc.stats.Flushes++
	sc.stats.Emitted += n
}
