package mss

// bracket is the (L, R) pair of a range: the running total just before it
// starts and the running total at its end.
type bracket[T Numeric] struct {
	lo T
	hi T
}

// candidate is a pending range in the register.
type candidate[T Numeric] struct {
	span Range
	bracket[T]

	// at is the candidate's position in register.order.
	at int
}

// register holds the pending candidates and the search index over them.
//
// Candidates live in an arena and are addressed by slot. order lists the
// live slots oldest first, so it is already in ascending position order.
// index is a stack of slots: a sub-selection of order, newest on top, whose
// lo values strictly increase towards the top.
type register[T Numeric] struct {
	arena []candidate[T]
	free  []int
	order []int
	index []int
}

// push commits a candidate as the newest register entry and the top of the
// search index.
func (r *register[T]) push(span Range, b bracket[T]) {
	slot := r.alloc(candidate[T]{span: span, bracket: b, at: len(r.order)})

	r.order = append(r.order, slot)
	r.index = append(r.index, slot)
}

// alloc stores c in a free arena slot, growing the arena when none is free.
func (r *register[T]) alloc(c candidate[T]) int {
	if n := len(r.free); n > 0 {
		slot := r.free[n-1]
		r.free = r.free[:n-1]
		r.arena[slot] = c

		return slot
	}

	r.arena = append(r.arena, c)

	return len(r.arena) - 1
}

// dominator walks the search index from the top and returns the first slot
// whose lo is strictly below lo. Entries that fail are popped and never come
// back. The second result is the number of entries popped.
func (r *register[T]) dominator(lo T) (slot, pruned int, found bool) {
	for n := len(r.index); n > 0; n-- {
		top := r.index[n-1]
		if r.arena[top].lo < lo {
			return top, pruned, true
		}

		r.index = r.index[:n-1]
		pruned++
	}

	return -1, pruned, false
}

// cut removes the candidate in slot and every newer one from the register
// and frees their arena slots. slot must be the top of the search index.
func (r *register[T]) cut(slot int) {
	at := r.arena[slot].at

	r.free = append(r.free, r.order[at:]...)
	r.order = r.order[:at]
	r.index = r.index[:len(r.index)-1]
}

// drain hands every pending candidate to sink oldest first, then resets the
// register. It returns the number of ranges emitted.
func (r *register[T]) drain(sink Sink) int {
	for _, slot := range r.order {
		sink.Append(r.arena[slot].span)
	}

	n := len(r.order)

	r.arena = r.arena[:0]
	r.free = r.free[:0]
	r.order = r.order[:0]
	r.index = r.index[:0]

	return n
}

// pending returns the number of candidates not yet emitted.
func (r *register[T]) pending() int {
	return len(r.order)
}
