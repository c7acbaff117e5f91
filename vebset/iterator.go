package vebset

// iterEnd is the sentinel position value meaning "no further element in
// this direction." It is never itself a valid member since UniverseSize
// never reaches it.
const iterEnd = ^uint64(0)

// Iterator walks a VebSet's members in either direction without
// materializing them all at once. It observes the set at the position
// of each call; mutating the set mid-iteration has undefined effect on
// keys on the far side of the current position.
type Iterator struct {
	set     *VebSet
	cur     uint64
	started bool
	done    bool
}

// Iterator returns a forward iterator positioned before the first
// element.
func (v *VebSet) Iterator() *Iterator {
	return &Iterator{set: v}
}

// Next advances to the next member in increasing order, reporting
// whether one was found.
func (it *Iterator) Next() (uint64, bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
		m, ok := it.set.Min()
		if !ok {
			it.done = true
			return 0, false
		}
		it.cur = m
		return it.cur, true
	}
	next, ok := it.set.Successor(it.cur)
	if !ok {
		it.done = true
		return 0, false
	}
	it.cur = next
	return it.cur, true
}

// ReverseIterator returns a backward iterator positioned after the last
// element.
func (v *VebSet) ReverseIterator() *Iterator {
	return &Iterator{set: v, cur: iterEnd}
}

// Prev steps to the previous member in decreasing order, reporting
// whether one was found.
func (it *Iterator) Prev() (uint64, bool) {
	if it.done {
		return 0, false
	}
	if !it.started {
		it.started = true
		m, ok := it.set.Max()
		if !ok {
			it.done = true
			return 0, false
		}
		it.cur = m
		return it.cur, true
	}
	if it.cur == 0 {
		it.done = true
		return 0, false
	}
	prev, ok := it.set.Predecessor(it.cur)
	if !ok {
		it.done = true
		return 0, false
	}
	it.cur = prev
	return it.cur, true
}
