package vebset

const (
	node16ShellBytes = int64(16)
	node32ShellBytes = int64(24)
)

// node32Clusters is the out-of-line block a non-empty Node32 points to: a
// Node16 summary marking which 16-bit high-halves have a cluster, and a
// hash table from that same high-half to the Node16 cluster itself.
type node32Clusters struct {
	summary  Node16
	clusters *hashtable[uint16, *Node16]
}

// Node32 is a vEB node over the 32-bit universe. Clusters are an
// unordered hash-keyed collection of Node16 rather than a flexible array,
// since the 16-bit cluster index space is too wide to pack densely.
type Node32 struct {
	min, max uint32
	key      uint32
	data     *node32Clusters
}

func decompose32(x uint32) (h, l uint16) {
	return uint16(x >> 16), uint16(x)
}

func compose32(h, l uint16) uint32 {
	return uint32(h)<<16 | uint32(l)
}

func newNode32Singleton(x uint32) *Node32 {
	return &Node32{min: x, max: x}
}

func (n *Node32) Key() uint32    { return n.key }
func (n *Node32) SetKey(k uint32) { n.key = k }
func (n *Node32) Min() uint32    { return n.min }
func (n *Node32) Max() uint32    { return n.max }

func (n *Node32) Contains(x uint32) bool {
	if x == n.min || x == n.max {
		return true
	}
	if n.data == nil || x < n.min || x > n.max {
		return false
	}
	h, l := decompose32(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	cl, _ := n.data.clusters.Get(h)
	return cl.Contains(l)
}

func (n *Node32) Successor(x uint32) (uint32, bool) {
	if x < n.min {
		return n.min, true
	}
	if x >= n.max {
		return 0, false
	}
	if n.data == nil {
		return n.max, true
	}
	h, l := decompose32(x)
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		if succ, ok := cl.Successor(l); ok {
			return compose32(h, succ), true
		}
	}
	if nh, ok := n.data.summary.Successor(h); ok {
		cl, _ := n.data.clusters.Get(nh)
		return compose32(nh, cl.Min()), true
	}
	return n.max, true
}

func (n *Node32) Predecessor(x uint32) (uint32, bool) {
	if x > n.max {
		return n.max, true
	}
	if x <= n.min {
		return 0, false
	}
	if n.data == nil {
		return n.min, true
	}
	h, l := decompose32(x)
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		if pred, ok := cl.Predecessor(l); ok {
			return compose32(h, pred), true
		}
	}
	if ph, ok := n.data.summary.Predecessor(h); ok {
		cl, _ := n.data.clusters.Get(ph)
		return compose32(ph, cl.Max()), true
	}
	return n.min, true
}

// eachClusterKey visits every present high-half key in ascending order.
func (n *Node32) eachClusterKey(fn func(h uint16)) {
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

func (n *Node32) Size() int {
	sz := 1
	if n.min != n.max {
		sz = 2
	}
	n.eachClusterKey(func(h uint16) {
		cl, _ := n.data.clusters.Get(h)
		sz += cl.Size()
	})
	return sz
}

func (n *Node32) Insert(x uint32, tracker *allocTracker) {
	if x < n.min {
		n.min, x = x, n.min
	} else if x > n.max {
		n.max, x = x, n.max
	}
	if x == n.min || x == n.max {
		return
	}
	h, l := decompose32(x)
	if n.data == nil {
		n.data = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
		n.data.summary = *newNode16Singleton(h)
		cl := newNode16Singleton(l)
		cl.SetKey(h)
		n.data.clusters.Set(h, cl)
		tracker.add(node16ShellBytes)
		return
	}
	if n.data.summary.Contains(h) {
		cl, _ := n.data.clusters.Get(h)
		cl.Insert(l, tracker)
		return
	}
	cl := newNode16Singleton(l)
	cl.SetKey(h)
	n.data.clusters.Set(h, cl)
	n.data.summary.Insert(h, tracker)
	tracker.add(node16ShellBytes)
}

func (n *Node32) Remove(x uint32, tracker *allocTracker) bool {
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
		n.min = compose32(h, cl.Min())
		x = n.min
	} else if x == n.max {
		if n.data == nil {
			n.max = n.min
			return false
		}
		h := n.data.summary.Max()
		cl, _ := n.data.clusters.Get(h)
		n.max = compose32(h, cl.Max())
		x = n.max
	}
	if n.data == nil {
		return false
	}
	h, l := decompose32(x)
	if !n.data.summary.Contains(h) {
		return false
	}
	cl, _ := n.data.clusters.Get(h)
	if cl.Remove(l, tracker) {
		n.data.clusters.Delete(h)
		tracker.add(-node16ShellBytes)
		if n.data.summary.Remove(h, tracker) {
			n.data = nil
		}
	}
	return false
}

// Free releases every cluster and the cluster block itself.
func (n *Node32) Free(tracker *allocTracker) {
	if n.data == nil {
		return
	}
	n.eachClusterKey(func(h uint16) {
		cl, _ := n.data.clusters.Get(h)
		cl.Free(tracker)
		tracker.add(-node16ShellBytes)
	})
	n.data.summary.Free(tracker)
	n.data = nil
}

// Clone returns a deep, independently tracked copy.
func (n *Node32) Clone(tracker *allocTracker) *Node32 {
	c := &Node32{min: n.min, max: n.max, key: n.key}
	if n.data != nil {
		c.data = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
		c.data.summary = *n.data.summary.Clone(tracker)
		n.eachClusterKey(func(h uint16) {
			cl, _ := n.data.clusters.Get(h)
			clone := cl.Clone(tracker)
			c.data.clusters.Set(h, clone)
			tracker.add(node16ShellBytes)
		})
	}
	return c
}

func (n *Node32) elements() []uint32 {
	out := make([]uint32, 0, n.Size())
	out = append(out, n.min)
	n.eachClusterKey(func(h uint16) {
		cl, _ := n.data.clusters.Get(h)
		for _, l := range cl.elements() {
			out = append(out, compose32(h, l))
		}
	})
	if n.max != n.min {
		out = append(out, n.max)
	}
	return out
}

func (n *Node32) rebuildFrom(elems []uint32, tracker *allocTracker) {
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
func (n *Node32) dedupBoundary(tracker *allocTracker) {
	if n.data == nil {
		return
	}
	for _, x := range [2]uint32{n.min, n.max} {
		h, l := decompose32(x)
		if !n.data.summary.Contains(h) {
			continue
		}
		cl, _ := n.data.clusters.Get(h)
		if !cl.Contains(l) {
			continue
		}
		if cl.Remove(l, tracker) {
			n.data.clusters.Delete(h)
			tracker.add(-node16ShellBytes)
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
func (n *Node32) OrInPlace(other *Node32, tracker *allocTracker) {
	n.Insert(other.min, tracker)
	n.Insert(other.max, tracker)
	if other.data != nil {
		first := n.data == nil
		other.eachClusterKey(func(h uint16) {
			oc, _ := other.data.clusters.Get(h)
			if n.data != nil && n.data.summary.Contains(h) {
				sc, _ := n.data.clusters.Get(h)
				sc.OrInPlace(oc, tracker)
				return
			}
			clone := oc.Clone(tracker)
			clone.SetKey(h)
			if n.data == nil {
				n.data = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
			}
			if first {
				n.data.summary = *newNode16Singleton(h)
				first = false
			} else {
				n.data.summary.Insert(h, tracker)
			}
			n.data.clusters.Set(h, clone)
			tracker.add(node16ShellBytes)
		})
	}
	n.dedupBoundary(tracker)
}

// AndInPlace replaces n with n intersect other, reporting whether the
// result is empty. The interior is intersected high-half by high-half,
// pairing clusters via the two summaries rather than walking elements; a
// cluster's own bit is never set at its own node's min/max, so AND can
// never spuriously resurrect an extreme into cluster storage.
func (n *Node32) AndInPlace(other *Node32, tracker *allocTracker) bool {
	var cands []uint32
	addCand := func(x uint32, ok bool) {
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
		var newData *node32Clusters
		first := true
		n.eachClusterKey(func(h uint16) {
			sc, _ := n.data.clusters.Get(h)
			if other.data == nil || !other.data.summary.Contains(h) {
				sc.Free(tracker)
				tracker.add(-node16ShellBytes)
				return
			}
			oc, _ := other.data.clusters.Get(h)
			if sc.AndInPlace(oc, tracker) {
				sc.Free(tracker)
				tracker.add(-node16ShellBytes)
				return
			}
			if newData == nil {
				newData = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
			}
			if first {
				newData.summary = *newNode16Singleton(h)
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
	var candMin, candMax uint32
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

	var trueMin, trueMax uint32
	minFromInterior, maxFromInterior := false, false
	if haveInterior {
		loH, hiH := n.data.summary.Min(), n.data.summary.Max()
		loCl, _ := n.data.clusters.Get(loH)
		hiCl, _ := n.data.clusters.Get(hiH)
		trueMin, trueMax = compose32(loH, loCl.Min()), compose32(hiH, hiCl.Max())
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

	pull := func(x uint32) {
		h, l := decompose32(x)
		cl, _ := n.data.clusters.Get(h)
		if cl.Remove(l, tracker) {
			n.data.clusters.Delete(h)
			tracker.add(-node16ShellBytes)
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
func (n *Node32) XorInPlace(other *Node32, tracker *allocTracker) bool {
	type edge struct {
		v                 uint32
		selfHas, otherHas bool
	}
	raw := [4]uint32{n.min, n.max, other.min, other.max}
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

	var newData *node32Clusters
	first := true
	addCluster := func(h uint16, cl *Node16, isNew bool) {
		if newData == nil {
			newData = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
		}
		if first {
			newData.summary = *newNode16Singleton(h)
			first = false
		} else {
			newData.summary.Insert(h, tracker)
		}
		cl.SetKey(h)
		newData.clusters.Set(h, cl)
		if isNew {
			tracker.add(node16ShellBytes)
		}
	}

	if n.data != nil {
		n.eachClusterKey(func(h uint16) {
			sc, _ := n.data.clusters.Get(h)
			if other.data != nil && other.data.summary.Contains(h) {
				oc, _ := other.data.clusters.Get(h)
				if sc.XorInPlace(oc, tracker) {
					sc.Free(tracker)
					tracker.add(-node16ShellBytes)
					return
				}
			}
			addCluster(h, sc, false)
		})
	}
	if other.data != nil {
		other.eachClusterKey(func(h uint16) {
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
		trueMin := compose32(loH, loCl.Min())
		trueMax := compose32(hiH, hiCl.Max())
		n.min, n.max = trueMin, trueMax
		if trueMin != trueMax {
			h, l := decompose32(trueMin)
			cl, _ := n.data.clusters.Get(h)
			if cl.Remove(l, tracker) {
				n.data.clusters.Delete(h)
				tracker.add(-node16ShellBytes)
				if n.data.summary.Remove(h, tracker) {
					n.data = nil
				}
			}
			if n.data != nil {
				h2, l2 := decompose32(trueMax)
				cl2, _ := n.data.clusters.Get(h2)
				if cl2.Remove(l2, tracker) {
					n.data.clusters.Delete(h2)
					tracker.add(-node16ShellBytes)
					if n.data.summary.Remove(h2, tracker) {
						n.data = nil
					}
				}
			}
		} else {
			loCl.Free(tracker)
			tracker.add(-node16ShellBytes)
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

// promoteNode16ToNode32 widens a Node16 into a Node32 because an incoming
// key reached the 16-bit universe's ceiling. The old node's extremes
// become the new node's lazy min/max directly; whatever lay strictly
// between them becomes the sole cluster, keyed 0.
func promoteNode16ToNode32(old *Node16, tracker *allocTracker) *Node32 {
	elems := old.elements()
	n := &Node32{min: uint32(elems[0]), max: uint32(elems[len(elems)-1])}
	var interior []uint16
	if len(elems) > 2 {
		interior = elems[1 : len(elems)-1]
	}
	if len(interior) > 0 {
		cl := &Node16{}
		cl.rebuildFrom(interior, tracker)
		cl.SetKey(0)
		n.data = &node32Clusters{clusters: newHashtable[uint16, *Node16]()}
		n.data.summary = *newNode16Singleton(0)
		n.data.clusters.Set(0, cl)
		tracker.add(node16ShellBytes)
	}
	old.Free(tracker)
	return n
}
