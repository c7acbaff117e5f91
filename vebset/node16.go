package vebset

// node16Clusters is the out-of-line block a non-empty Node16 points to: a
// Leaf256 summary (bit h set iff a cluster with high-byte h exists) and a
// flexible array of clusters kept sorted by h, so that cluster position i
// equals summary.Rank(h) for the cluster's own h.
type node16Clusters struct {
	summary  Leaf256
	clusters []Leaf256
}

// Node16 is a vEB node over the 16-bit universe. Its min/max are lazily
// propagated and never duplicated inside a cluster. key is the high-half
// value a parent Node32 uses to identify this node among its clusters; it
// is meaningless until a parent assigns it. The struct's three uint16
// fields plus one pointer naturally occupy 16 bytes on a 64-bit platform,
// matching the footprint called for in the node's design notes.
type Node16 struct {
	min, max uint16
	key      uint16
	data     *node16Clusters
}

func decompose16(x uint16) (h, l byte) {
	return byte(x >> 8), byte(x)
}

func compose16(h, l byte) uint16 {
	return uint16(h)<<8 | uint16(l)
}

func growCap(cap int) int {
	next := cap + cap/4 + 1
	if next > 256 {
		next = 256
	}
	return next
}

// newNode16Singleton creates a one-element node. Used both at the top of
// VebSet when the first key lands in the 16-bit range and when a lower
// level promotes itself.
func newNode16Singleton(x uint16) *Node16 {
	return &Node16{min: x, max: x}
}

// Key reports the high-half identity assigned by a parent Node32.
func (n *Node16) Key() uint16 { return n.key }

// SetKey installs the high-half identity assigned by a parent Node32.
func (n *Node16) SetKey(k uint16) { n.key = k }

// Min returns the node's smallest element.
func (n *Node16) Min() uint16 { return n.min }

// Max returns the node's largest element.
func (n *Node16) Max() uint16 { return n.max }

// Contains reports whether x is a member.
func (n *Node16) Contains(x uint16) bool {
	if x == n.min || x == n.max {
		return true
	}
	if n.data == nil || x < n.min || x > n.max {
		return false
	}
	h, l := decompose16(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	return n.data.clusters[n.data.summary.Rank(h)].Contains(l)
}

// Successor returns the smallest member strictly greater than x.
func (n *Node16) Successor(x uint16) (uint16, bool) {
	if x < n.min {
		return n.min, true
	}
	if x >= n.max {
		return 0, false
	}
	if n.data == nil {
		return n.max, true
	}
	h, l := decompose16(x)
	if n.data.summary.Contains(h) {
		idx := n.data.summary.Rank(h)
		if succ, ok := n.data.clusters[idx].Successor(l); ok {
			return compose16(h, succ), true
		}
	}
	if nh, ok := n.data.summary.Successor(h); ok {
		idx := n.data.summary.Rank(nh)
		cmin, _ := n.data.clusters[idx].Min()
		return compose16(nh, cmin), true
	}
	return n.max, true
}

// Predecessor returns the largest member strictly less than x.
func (n *Node16) Predecessor(x uint16) (uint16, bool) {
	if x > n.max {
		return n.max, true
	}
	if x <= n.min {
		return 0, false
	}
	if n.data == nil {
		return n.min, true
	}
	h, l := decompose16(x)
	if n.data.summary.Contains(h) {
		idx := n.data.summary.Rank(h)
		if pred, ok := n.data.clusters[idx].Predecessor(l); ok {
			return compose16(h, pred), true
		}
	}
	if ph, ok := n.data.summary.Predecessor(h); ok {
		idx := n.data.summary.Rank(ph)
		cmax, _ := n.data.clusters[idx].Max()
		return compose16(ph, cmax), true
	}
	return n.min, true
}

// Size returns the number of elements held.
func (n *Node16) Size() int {
	sz := 1
	if n.min != n.max {
		sz = 2
	}
	if n.data != nil {
		for i := range n.data.clusters {
			sz += n.data.clusters[i].PopCount()
		}
	}
	return sz
}

func (n *Node16) growIfNeeded(tracker *allocTracker) {
	if len(n.data.clusters) < cap(n.data.clusters) {
		return
	}
	oldCap := cap(n.data.clusters)
	newCap := growCap(oldCap)
	grown := make([]Leaf256, len(n.data.clusters), newCap)
	copy(grown, n.data.clusters)
	n.data.clusters = grown
	tracker.add(clusterBlockBytes(newCap) - clusterBlockBytes(oldCap))
}

// Insert adds x.
func (n *Node16) Insert(x uint16, tracker *allocTracker) {
	if x < n.min {
		n.min, x = x, n.min
	} else if x > n.max {
		n.max, x = x, n.max
	}
	if x == n.min || x == n.max {
		return
	}
	h, l := decompose16(x)
	if n.data == nil {
		n.data = &node16Clusters{clusters: make([]Leaf256, 1, 1)}
		n.data.summary.Insert(h)
		n.data.clusters[0].Insert(l)
		tracker.add(clusterBlockBytes(1))
		return
	}
	if n.data.summary.Contains(h) {
		n.data.clusters[n.data.summary.Rank(h)].Insert(l)
		return
	}
	idx := n.data.summary.Rank(h)
	n.growIfNeeded(tracker)
	n.data.clusters = append(n.data.clusters, Leaf256{})
	copy(n.data.clusters[idx+1:], n.data.clusters[idx:len(n.data.clusters)-1])
	n.data.clusters[idx] = Leaf256{}
	n.data.clusters[idx].Insert(l)
	n.data.summary.Insert(h)
}

// Remove deletes x and reports whether the node is now fully empty (the
// caller must then detach this node from its own parent).
func (n *Node16) Remove(x uint16, tracker *allocTracker) bool {
	if n.data == nil && n.min == n.max {
		return x == n.min
	}
	if x < n.min || x > n.max {
		return false
	}
	if x == n.min {
		if n.data == nil {
			n.min = n.max
			return false
		}
		h, _ := n.data.summary.Min()
		idx := n.data.summary.Rank(h)
		l, _ := n.data.clusters[idx].Min()
		n.min = compose16(h, l)
		x = n.min
	} else if x == n.max {
		if n.data == nil {
			n.max = n.min
			return false
		}
		h, _ := n.data.summary.Max()
		idx := n.data.summary.Rank(h)
		l, _ := n.data.clusters[idx].Max()
		n.max = compose16(h, l)
		x = n.max
	}
	if n.data == nil {
		return false
	}
	h, l := decompose16(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	idx := n.data.summary.Rank(h)
	if n.data.clusters[idx].Remove(l) {
		n.data.clusters = append(n.data.clusters[:idx], n.data.clusters[idx+1:]...)
		n.data.summary.Remove(h)
		if n.data.summary.IsEmpty() {
			tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
			n.data = nil
		}
	}
	return false
}

// Free releases the cluster block, if any.
func (n *Node16) Free(tracker *allocTracker) {
	if n.data != nil {
		tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
		n.data = nil
	}
}

// Clone returns a deep copy, independently owned and tracked.
func (n *Node16) Clone(tracker *allocTracker) *Node16 {
	c := &Node16{min: n.min, max: n.max, key: n.key}
	if n.data != nil {
		clusters := make([]Leaf256, len(n.data.clusters), cap(n.data.clusters))
		copy(clusters, n.data.clusters)
		c.data = &node16Clusters{summary: n.data.summary, clusters: clusters}
		tracker.add(clusterBlockBytes(cap(clusters)))
	}
	return c
}

// elements returns every member in strictly increasing order. Bounded by
// Size(), never by the 16-bit universe.
func (n *Node16) elements() []uint16 {
	out := make([]uint16, 0, n.Size())
	out = append(out, n.min)
	if n.data != nil {
		for h, ok := n.data.summary.Min(); ok; h, ok = n.data.summary.Successor(h) {
			leaf := n.data.clusters[n.data.summary.Rank(h)]
			for l, lok := leaf.Min(); lok; l, lok = leaf.Successor(l) {
				out = append(out, compose16(h, l))
			}
		}
	}
	if n.max != n.min {
		out = append(out, n.max)
	}
	return out
}

// rebuildFrom replaces the node's contents with the given strictly
// increasing element list, freeing any prior cluster block first.
func (n *Node16) rebuildFrom(elems []uint16, tracker *allocTracker) {
	n.Free(tracker)
	if len(elems) == 0 {
		n.min, n.max = 0, 0
		return
	}
	n.min = elems[0]
	n.max = elems[len(elems)-1]
	if len(elems) > 2 {
		for _, v := range elems[1 : len(elems)-1] {
			n.Insert(v, tracker)
		}
	}
}

// clusterRemoveAt16 clears bit l in the cluster at high-byte h,
// compacting the array and dropping the summary bit if the cluster
// becomes empty. Used by the bulk set ops to pull a single element back
// out of cluster storage once it is promoted to min/max.
func clusterRemoveAt16(summary *Leaf256, clusters []Leaf256, h, l byte) []Leaf256 {
	idx := summary.Rank(h)
	var mask Leaf256
	mask.Insert(l)
	clusters[idx].AndNotInPlace(&mask)
	if clusters[idx].IsEmpty() {
		clusters = append(clusters[:idx], clusters[idx+1:]...)
		summary.Remove(h)
	}
	return clusters
}

// dedupBoundary clears any cluster bit coinciding with n's own min or
// max. A bulk merge can introduce one when the other operand's interior
// happens to contain a value that is this node's own extreme (never
// stored in this node's own clusters, by invariant, but easily copied
// in verbatim from the other side during a cluster-wise walk).
func (n *Node16) dedupBoundary(tracker *allocTracker) {
	if n.data == nil {
		return
	}
	for _, x := range [2]uint16{n.min, n.max} {
		h, l := decompose16(x)
		if n.data.summary.Contains(h) {
			n.data.clusters = clusterRemoveAt16(&n.data.summary, n.data.clusters, h, l)
		}
	}
	if n.data != nil && len(n.data.clusters) == 0 {
		tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
		n.data = nil
	}
}

// OrInPlace replaces n with n union other. Clusters are merged
// high-byte by high-byte via the summary, never by flattening either
// side to individual elements.
func (n *Node16) OrInPlace(other *Node16, tracker *allocTracker) {
	n.Insert(other.min, tracker)
	n.Insert(other.max, tracker)
	if other.data != nil {
		if n.data == nil {
			clusters := make([]Leaf256, len(other.data.clusters), cap(other.data.clusters))
			copy(clusters, other.data.clusters)
			n.data = &node16Clusters{summary: other.data.summary, clusters: clusters}
			tracker.add(clusterBlockBytes(cap(clusters)))
		} else {
			merged := n.data.summary
			merged.OrInPlace(&other.data.summary)
			if merged.PopCount() == n.data.summary.PopCount() {
				for h, ok := other.data.summary.Min(); ok; h, ok = other.data.summary.Successor(h) {
					sIdx := n.data.summary.Rank(h)
					oIdx := other.data.summary.Rank(h)
					n.data.clusters[sIdx].OrInPlace(&other.data.clusters[oIdx])
				}
			} else {
				newClusters := make([]Leaf256, 0, merged.PopCount())
				for h, ok := merged.Min(); ok; h, ok = merged.Successor(h) {
					sOk := n.data.summary.Contains(h)
					oOk := other.data.summary.Contains(h)
					switch {
					case sOk && oOk:
						c := n.data.clusters[n.data.summary.Rank(h)]
						c.OrInPlace(&other.data.clusters[other.data.summary.Rank(h)])
						newClusters = append(newClusters, c)
					case sOk:
						newClusters = append(newClusters, n.data.clusters[n.data.summary.Rank(h)])
					default:
						newClusters = append(newClusters, other.data.clusters[other.data.summary.Rank(h)])
					}
				}
				oldCap := cap(n.data.clusters)
				n.data.clusters = newClusters
				n.data.summary = merged
				tracker.add(clusterBlockBytes(cap(newClusters)) - clusterBlockBytes(oldCap))
			}
		}
	}
	n.dedupBoundary(tracker)
}

// AndInPlace replaces n with n intersect other, reporting whether the
// result is empty. The interior is intersected high-byte by high-byte,
// pairing clusters via the two summaries rather than walking elements;
// a cluster's own bit is never set at its own node's min/max, so AND
// can never spuriously resurrect an extreme into cluster storage.
func (n *Node16) AndInPlace(other *Node16, tracker *allocTracker) bool {
	var cands []uint16
	addCand := func(x uint16, ok bool) {
		if !ok {
			return
		}
		for _, c := range cands {
			if c == x {
				return
			}
		}
		cands = append(cands, x)
	}
	addCand(n.min, other.Contains(n.min))
	addCand(n.max, other.Contains(n.max))
	addCand(other.min, n.Contains(other.min))
	addCand(other.max, n.Contains(other.max))

	var newSummary Leaf256
	var clusters []Leaf256
	if n.data != nil && other.data != nil {
		clusters = n.data.clusters[:0]
		for h, ok := n.data.summary.Min(); ok; h, ok = n.data.summary.Successor(h) {
			if !other.data.summary.Contains(h) {
				continue
			}
			leaf := n.data.clusters[n.data.summary.Rank(h)]
			leaf.AndInPlace(&other.data.clusters[other.data.summary.Rank(h)])
			if leaf.IsEmpty() {
				continue
			}
			clusters = append(clusters, leaf)
			newSummary.Insert(h)
		}
	}
	if n.data != nil {
		if len(clusters) == 0 {
			tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
			n.data = nil
		} else {
			n.data.summary = newSummary
			n.data.clusters = clusters
		}
	}

	haveInterior := n.data != nil && len(clusters) > 0
	haveCand := len(cands) > 0
	var candMin, candMax uint16
	if haveCand {
		candMin, candMax = cands[0], cands[0]
		for _, c := range cands[1:] {
			if c < candMin {
				candMin = c
			}
			if c > candMax {
				candMax = c
			}
		}
	}

	var trueMin, trueMax uint16
	minFromInterior, maxFromInterior := false, false
	if haveInterior {
		loH, _ := newSummary.Min()
		hiH, _ := newSummary.Max()
		lo, _ := clusters[0].Min()
		hi, _ := clusters[len(clusters)-1].Max()
		trueMin, trueMax = compose16(loH, lo), compose16(hiH, hi)
		minFromInterior, maxFromInterior = true, true
	}
	if haveCand && (!minFromInterior || candMin < trueMin) {
		trueMin, minFromInterior = candMin, false
	}
	if haveCand && (!maxFromInterior || candMax > trueMax) {
		trueMax, maxFromInterior = candMax, false
	}

	if !haveInterior && !haveCand {
		n.min, n.max = 0, 0
		return true
	}
	if trueMin == trueMax {
		if n.data != nil {
			tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
			n.data = nil
		}
		n.min, n.max = trueMin, trueMin
		return false
	}

	if minFromInterior {
		h, l := decompose16(trueMin)
		n.data.clusters = clusterRemoveAt16(&n.data.summary, n.data.clusters, h, l)
	}
	if maxFromInterior && n.data != nil {
		h, l := decompose16(trueMax)
		n.data.clusters = clusterRemoveAt16(&n.data.summary, n.data.clusters, h, l)
	}
	if n.data != nil && len(n.data.clusters) == 0 {
		tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
		n.data = nil
	}
	n.min, n.max = trueMin, trueMax
	return false
}

// XorInPlace replaces n with the symmetric difference of n and other,
// reporting whether the result is empty. The interior is combined
// high-byte by high-byte: a byte present on both sides has its leaves
// XOR'd, a byte present on only one side is copied whole; the four
// node extremes are then individually reconciled against true
// membership, since a coincidence between one side's extreme and the
// other side's interior cannot be resolved at the leaf level alone.
func (n *Node16) XorInPlace(other *Node16, tracker *allocTracker) bool {
	type edge struct {
		v                 uint16
		selfHas, otherHas bool
	}
	raw := [4]uint16{n.min, n.max, other.min, other.max}
	var edges []edge
	for _, x := range raw {
		dup := false
		for _, e := range edges {
			if e.v == x {
				dup = true
				break
			}
		}
		if !dup {
			edges = append(edges, edge{x, n.Contains(x), other.Contains(x)})
		}
	}

	var newSummary Leaf256
	var clusters []Leaf256
	if n.data != nil || other.data != nil {
		var sSum, oSum Leaf256
		if n.data != nil {
			sSum = n.data.summary
		}
		if other.data != nil {
			oSum = other.data.summary
		}
		union := sSum
		union.OrInPlace(&oSum)
		clusters = make([]Leaf256, 0, union.PopCount())
		for h, ok := union.Min(); ok; h, ok = union.Successor(h) {
			sOk := n.data != nil && sSum.Contains(h)
			oOk := other.data != nil && oSum.Contains(h)
			var leaf Leaf256
			switch {
			case sOk && oOk:
				leaf = n.data.clusters[n.data.summary.Rank(h)]
				leaf.XorInPlace(&other.data.clusters[other.data.summary.Rank(h)])
			case sOk:
				leaf = n.data.clusters[n.data.summary.Rank(h)]
			default:
				leaf = other.data.clusters[other.data.summary.Rank(h)]
			}
			if leaf.IsEmpty() {
				continue
			}
			clusters = append(clusters, leaf)
			newSummary.Insert(h)
		}
	}

	if n.data != nil {
		tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
	}
	if len(clusters) == 0 {
		n.data = nil
	} else {
		n.data = &node16Clusters{summary: newSummary, clusters: clusters}
		tracker.add(clusterBlockBytes(cap(clusters)))
	}

	if n.data != nil {
		h, _ := n.data.summary.Min()
		lo, _ := n.data.clusters[n.data.summary.Rank(h)].Min()
		hh, _ := n.data.summary.Max()
		hi, _ := n.data.clusters[n.data.summary.Rank(hh)].Max()
		n.min, n.max = compose16(h, lo), compose16(hh, hi)
		if n.min != n.max {
			n.data.clusters = clusterRemoveAt16(&n.data.summary, n.data.clusters, h, lo)
			if len(n.data.clusters) > 0 {
				n.data.clusters = clusterRemoveAt16(&n.data.summary, n.data.clusters, hh, hi)
			}
			if len(n.data.clusters) == 0 {
				tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
				n.data = nil
			}
		} else {
			tracker.add(-clusterBlockBytes(cap(n.data.clusters)))
			n.data = nil
		}
	} else {
		seeded := false
		for _, e := range edges {
			if e.selfHas != e.otherHas {
				n.min, n.max = e.v, e.v
				seeded = true
				break
			}
		}
		if !seeded {
			n.min, n.max = 0, 0
			return true
		}
	}

	for _, e := range edges {
		if e.selfHas != e.otherHas && !n.Contains(e.v) {
			n.Insert(e.v, tracker)
		}
	}
	emptied := false
	for _, e := range edges {
		if e.selfHas == e.otherHas && n.Contains(e.v) {
			if n.Remove(e.v, tracker) {
				emptied = true
			}
		}
	}
	if emptied {
		n.min, n.max = 0, 0
		return true
	}
	return false
}
