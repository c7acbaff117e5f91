package vebset

const node64ShellBytes = int64(32)

// node64Clusters is the out-of-line block a non-empty Node64 points to: a
// Node32 summary marking which 32-bit high-halves have a cluster, and a
// hash table from that high-half to the Node32 cluster itself.
type node64Clusters struct {
	summary  Node32
	clusters *hashtable[uint32, *Node32]
}

// Node64 is the top of the stratified hierarchy, covering the full
// 63-bit key space this package supports. There is no level above it;
// a Node64 never promotes further.
type Node64 struct {
	min, max uint64
	data     *node64Clusters
}

func decompose64(x uint64) (h, l uint32) {
	return uint32(x >> 32), uint32(x)
}

func compose64(h, l uint32) uint64 {
	return uint64(h)<<32 | uint64(l)
}

func newNode64Singleton(x uint64) *Node64 {
	return &Node64{min: x, max: x}
}

func (n *Node64) Min() uint64 { return n.min }
func (n *Node64) Max() uint64 { return n.max }

func (n *Node64) Contains(x uint64) bool {
	if x == n.min || x == n.max {
		return true
	}
	if n.data == nil || x < n.min || x > n.max {
		return false
	}
	h, l := decompose64(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	cl, _ := n.data.clusters.Get(h)
	return cl.Contains(l)
}

func (n *Node64) Successor(x uint64) (uint64, bool) {
	if x < n.min {
		return n.min, true
	}
	if x >= n.max {
		return 0, false
	}
	if n.data == nil {
		return n.max, true
	}
	h, l := decompose64(x)
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		if succ, ok := cl.Successor(l); ok {
			return compose64(h, succ), true
		}
	}
	if nh, ok := n.data.summary.Successor(h); ok {
		cl, _ := n.data.clusters.Get(nh)
		return compose64(nh, cl.Min()), true
	}
	return n.max, true
}

func (n *Node64) Predecessor(x uint64) (uint64, bool) {
	if x > n.max {
		return n.max, true
	}
	if x <= n.min {
		return 0, false
	}
	if n.data == nil {
		return n.min, true
	}
	h, l := decompose64(x)
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		if pred, ok := cl.Predecessor(l); ok {
			return compose64(h, pred), true
		}
	}
	if ph, ok := n.data.summary.Predecessor(h); ok {
		cl, _ := n.data.clusters.Get(ph)
		return compose64(ph, cl.Max()), true
	}
	return n.min, true
}

func (n *Node64) eachClusterKey(fn func(h uint32)) {
	if n.data == nil {
		return
	}
	h := n.data.summary.Min()
	fn(h)
	for {
		nh, ok := n.data.summary.Successor(h)
		if !ok {
			return
		}
		fn(nh)
		h = nh
	}
}

func (n *Node64) Size() int {
	sz := 1
	if n.min != n.max {
		sz = 2
	}
	n.eachClusterKey(func(h uint32) {
		cl, _ := n.data.clusters.Get(h)
		sz += cl.Size()
	})
	return sz
}

func (n *Node64) Insert(x uint64, tracker *allocTracker) {
	if x < n.min {
		n.min, x = x, n.min
	} else if x > n.max {
		n.max, x = x, n.max
	}
	if x == n.min || x == n.max {
		return
	}
	h, l := decompose64(x)
	if n.data == nil {
		n.data = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
		n.data.summary = *newNode32Singleton(h)
		cl := newNode32Singleton(l)
		cl.SetKey(h)
		n.data.clusters.Set(h, cl)
		tracker.add(node32ShellBytes)
		return
	}
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		cl.Insert(l, tracker)
		return
	}
	cl := newNode32Singleton(l)
	cl.SetKey(h)
	n.data.clusters.Set(h, cl)
	n.data.summary.Insert(h, tracker)
	tracker.add(node32ShellBytes)
}

func (n *Node64) Remove(x uint64, tracker *allocTracker) bool {
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
		h := n.data.summary.Min()
		cl, _ := n.data.clusters.Get(h)
		n.min = compose64(h, cl.Min())
		x = n.min
	} else if x == n.max {
		if n.data == nil {
			n.max = n.min
			return false
		}
		h := n.data.summary.Max()
		cl, _ := n.data.clusters.Get(h)
		n.max = compose64(h, cl.Max())
		x = n.max
	}
	if n.data == nil {
		return false
	}
	h, l := decompose64(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	cl, _ := n.data.clusters.Get(h)
	if cl.Remove(l, tracker) {
		n.data.clusters.Delete(h)
		tracker.add(-node32ShellBytes)
		if n.data.summary.Remove(h, tracker) {
			n.data = nil
		}
	}
	return false
}

// Free releases every cluster and the cluster block itself.
func (n *Node64) Free(tracker *allocTracker) {
	if n.data == nil {
		return
	}
	n.eachClusterKey(func(h uint32) {
		cl, _ := n.data.clusters.Get(h)
		cl.Free(tracker)
		tracker.add(-node32ShellBytes)
	})
	n.data.summary.Free(tracker)
	n.data = nil
}

// Clone returns a deep, independently tracked copy.
func (n *Node64) Clone(tracker *allocTracker) *Node64 {
	c := &Node64{min: n.min, max: n.max}
	if n.data != nil {
		c.data = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
		c.data.summary = *n.data.summary.Clone(tracker)
		n.eachClusterKey(func(h uint32) {
			cl, _ := n.data.clusters.Get(h)
			clone := cl.Clone(tracker)
			c.data.clusters.Set(h, clone)
			tracker.add(node32ShellBytes)
		})
	}
	return c
}

func (n *Node64) elements() []uint64 {
	out := make([]uint64, 0, n.Size())
	out = append(out, n.min)
	n.eachClusterKey(func(h uint32) {
		cl, _ := n.data.clusters.Get(h)
		for _, l := range cl.elements() {
			out = append(out, compose64(h, l))
		}
	})
	if n.max != n.min {
		out = append(out, n.max)
	}
	return out
}

func (n *Node64) rebuildFrom(elems []uint64, tracker *allocTracker) {
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

// dedupBoundary clears a cluster entry coinciding with n's own min or max,
// restoring the invariant after a bulk merge copies in a value that is
// this node's own extreme from the other operand's interior.
func (n *Node64) dedupBoundary(tracker *allocTracker) {
	if n.data == nil {
		return
	}
	for _, x := range [2]uint64{n.min, n.max} {
		h, l := decompose64(x)
		if !n.data.summary.Contains(h) {
			continue
		}
		cl, _ := n.data.clusters.Get(h)
		if !cl.Contains(l) {
			continue
		}
		if cl.Remove(l, tracker) {
			n.data.clusters.Delete(h)
			tracker.add(-node32ShellBytes)
			if n.data.summary.Remove(h, tracker) {
				n.data = nil
				return
			}
		}
	}
}

// OrInPlace replaces n with n union other. Clusters are merged high-half
// by high-half via the summary, never by flattening either side to
// individual elements.
func (n *Node64) OrInPlace(other *Node64, tracker *allocTracker) {
	n.Insert(other.min, tracker)
	n.Insert(other.max, tracker)
	if other.data != nil {
		first := n.data == nil
		other.eachClusterKey(func(h uint32) {
			oc, _ := other.data.clusters.Get(h)
			if n.data != nil && n.data.summary.Contains(h) {
				sc, _ := n.data.clusters.Get(h)
				sc.OrInPlace(oc, tracker)
				return
			}
			clone := oc.Clone(tracker)
			clone.SetKey(h)
			if n.data == nil {
				n.data = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
			}
			if first {
				n.data.summary = *newNode32Singleton(h)
				first = false
			} else {
				n.data.summary.Insert(h, tracker)
			}
			n.data.clusters.Set(h, clone)
			tracker.add(node32ShellBytes)
		})
	}
	n.dedupBoundary(tracker)
}

// AndInPlace replaces n with n intersect other, reporting whether the
// result is empty. The interior is intersected high-half by high-half,
// pairing clusters via the two summaries rather than walking elements; a
// cluster's own bit is never set at its own node's min/max, so AND can
// never spuriously resurrect an extreme into cluster storage.
func (n *Node64) AndInPlace(other *Node64, tracker *allocTracker) bool {
	var cands []uint64
	addCand := func(x uint64, ok bool) {
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

	if n.data != nil {
		var newData *node64Clusters
		first := true
		n.eachClusterKey(func(h uint32) {
			sc, _ := n.data.clusters.Get(h)
			if other.data == nil || !other.data.summary.Contains(h) {
				sc.Free(tracker)
				tracker.add(-node32ShellBytes)
				return
			}
			oc, _ := other.data.clusters.Get(h)
			if sc.AndInPlace(oc, tracker) {
				sc.Free(tracker)
				tracker.add(-node32ShellBytes)
				return
			}
			if newData == nil {
				newData = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
			}
			if first {
				newData.summary = *newNode32Singleton(h)
				first = false
			} else {
				newData.summary.Insert(h, tracker)
			}
			newData.clusters.Set(h, sc)
		})
		n.data.summary.Free(tracker)
		n.data = newData
	}

	haveInterior := n.data != nil
	haveCand := len(cands) > 0
	var candMin, candMax uint64
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

	var trueMin, trueMax uint64
	minFromInterior, maxFromInterior := false, false
	if haveInterior {
		loH, hiH := n.data.summary.Min(), n.data.summary.Max()
		loCl, _ := n.data.clusters.Get(loH)
		hiCl, _ := n.data.clusters.Get(hiH)
		trueMin, trueMax = compose64(loH, loCl.Min()), compose64(hiH, hiCl.Max())
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
		n.Free(tracker)
		n.min, n.max = trueMin, trueMin
		return false
	}

	pull := func(x uint64) {
		h, l := decompose64(x)
		cl, _ := n.data.clusters.Get(h)
		if cl.Remove(l, tracker) {
			n.data.clusters.Delete(h)
			tracker.add(-node32ShellBytes)
			if n.data.summary.Remove(h, tracker) {
				n.data = nil
			}
		}
	}
	if minFromInterior {
		pull(trueMin)
	}
	if maxFromInterior && n.data != nil {
		pull(trueMax)
	}
	n.min, n.max = trueMin, trueMax
	return false
}

// XorInPlace replaces n with the symmetric difference of n and other,
// reporting whether the result is empty. The interior is combined
// high-half by high-half: a half present on both sides has its clusters
// XOR'd, a half present on only one side is copied whole; the four node
// extremes are then individually reconciled against true membership,
// since a coincidence between one side's extreme and the other side's
// interior cannot be resolved at the cluster level alone.
func (n *Node64) XorInPlace(other *Node64, tracker *allocTracker) bool {
	type edge struct {
		v                 uint64
		selfHas, otherHas bool
	}
	raw := [4]uint64{n.min, n.max, other.min, other.max}
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

	var newData *node64Clusters
	first := true
	addCluster := func(h uint32, cl *Node32, isNew bool) {
		if newData == nil {
			newData = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
		}
		if first {
			newData.summary = *newNode32Singleton(h)
			first = false
		} else {
			newData.summary.Insert(h, tracker)
		}
		cl.SetKey(h)
		newData.clusters.Set(h, cl)
		if isNew {
			tracker.add(node32ShellBytes)
		}
	}

	if n.data != nil {
		n.eachClusterKey(func(h uint32) {
			sc, _ := n.data.clusters.Get(h)
			if other.data != nil && other.data.summary.Contains(h) {
				oc, _ := other.data.clusters.Get(h)
				if sc.XorInPlace(oc, tracker) {
					sc.Free(tracker)
					tracker.add(-node32ShellBytes)
					return
				}
			}
			addCluster(h, sc, false)
		})
	}
	if other.data != nil {
		other.eachClusterKey(func(h uint32) {
			if n.data != nil && n.data.summary.Contains(h) {
				return
			}
			oc, _ := other.data.clusters.Get(h)
			clone := oc.Clone(tracker)
			addCluster(h, clone, true)
		})
	}
	if n.data != nil {
		n.data.summary.Free(tracker)
	}
	n.data = newData

	if n.data != nil {
		loH, hiH := n.data.summary.Min(), n.data.summary.Max()
		loCl, _ := n.data.clusters.Get(loH)
		hiCl, _ := n.data.clusters.Get(hiH)
		trueMin := compose64(loH, loCl.Min())
		trueMax := compose64(hiH, hiCl.Max())
		n.min, n.max = trueMin, trueMax
		if trueMin != trueMax {
			h, l := decompose64(trueMin)
			cl, _ := n.data.clusters.Get(h)
			if cl.Remove(l, tracker) {
				n.data.clusters.Delete(h)
				tracker.add(-node32ShellBytes)
				if n.data.summary.Remove(h, tracker) {
					n.data = nil
				}
			}
			if n.data != nil {
				h2, l2 := decompose64(trueMax)
				cl2, _ := n.data.clusters.Get(h2)
				if cl2.Remove(l2, tracker) {
					n.data.clusters.Delete(h2)
					tracker.add(-node32ShellBytes)
					if n.data.summary.Remove(h2, tracker) {
						n.data = nil
					}
				}
			}
		} else {
			loCl.Free(tracker)
			tracker.add(-node32ShellBytes)
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

// promoteNode32ToNode64 widens a Node32 into a Node64 because an
// incoming key reached the 32-bit universe's ceiling.
func promoteNode32ToNode64(old *Node32, tracker *allocTracker) *Node64 {
	elems := old.elements()
	n := &Node64{min: uint64(elems[0]), max: uint64(elems[len(elems)-1])}
	var interior []uint32
	if len(elems) > 2 {
		interior = elems[1 : len(elems)-1]
	}
	if len(interior) > 0 {
		cl := &Node32{}
		cl.rebuildFrom(interior, tracker)
		cl.SetKey(0)
		n.data = &node64Clusters{clusters: newHashtable[uint32, *Node32]()}
		n.data.summary = *newNode32Singleton(0)
		n.data.clusters.Set(0, cl)
		tracker.add(node32ShellBytes)
	}
	old.Free(tracker)
	return n
}
