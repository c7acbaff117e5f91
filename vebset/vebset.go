package vebset

// variant identifies which concrete storage a VebSet currently holds.
// Values are ordered so that promotion can be expressed as a simple
// numeric comparison.
type variant uint8

const (
	variantEmpty variant = iota
	variantLeaf256
	variantNode16
	variantNode32
	variantNode64
)

// VebSet is a dynamic integer set backed by a recursive van Emde Boas
// tree. It starts empty and widens itself automatically (Leaf256 ->
// Node16 -> Node32 -> Node64) as keys arrive; it never narrows while it
// holds elements, and once emptied it starts over from the empty variant.
// It carries no internal synchronization — concurrent use requires the
// caller's own locking.
type VebSet struct {
	kind    variant
	leaf    *Leaf256
	n16     *Node16
	n32     *Node32
	n64     *Node64
	tracker *allocTracker
	maxSeen uint64
}

// New returns an empty set.
func New() *VebSet {
	return &VebSet{tracker: newAllocTracker()}
}

func promoteLeaf256ToNode16(old *Leaf256, tracker *allocTracker) *Node16 {
	elems := old.elements()
	n := &Node16{min: uint16(elems[0]), max: uint16(elems[len(elems)-1])}
	var interior []byte
	if len(elems) > 2 {
		interior = elems[1 : len(elems)-1]
	}
	if len(interior) > 0 {
		var cluster Leaf256
		for _, b := range interior {
			cluster.Insert(b)
		}
		n.data = &node16Clusters{clusters: []Leaf256{cluster}}
		n.data.summary.Insert(0)
		tracker.add(clusterBlockBytes(1))
	}
	return n
}

// promoteToLevel widens v in place until it reaches target, preserving
// every element already present. An empty set jumps straight to target
// since there is nothing to preserve.
func (v *VebSet) promoteToLevel(target variant) {
	for v.kind < target {
		switch v.kind {
		case variantEmpty:
			switch target {
			case variantLeaf256:
				v.leaf = &Leaf256{}
			case variantNode16:
				v.n16 = &Node16{}
			case variantNode32:
				v.n32 = &Node32{}
			case variantNode64:
				v.n64 = &Node64{}
			}
			v.kind = target
		case variantLeaf256:
			v.n16 = promoteLeaf256ToNode16(v.leaf, v.tracker)
			v.leaf = nil
			v.kind = variantNode16
		case variantNode16:
			v.n32 = promoteNode16ToNode32(v.n16, v.tracker)
			v.n16 = nil
			v.kind = variantNode32
		case variantNode32:
			v.n64 = promoteNode32ToNode64(v.n32, v.tracker)
			v.n32 = nil
			v.kind = variantNode64
		}
	}
}

// Insert adds x, widening the underlying variant if x exceeds its
// current universe. Keys at or beyond 2^63 are outside every variant's
// universe and are ignored.
func (v *VebSet) Insert(x uint64) {
	if x >= 1<<63 {
		return
	}
	switch v.kind {
	case variantEmpty:
		switch {
		case x < 256:
			v.leaf = &Leaf256{}
			v.leaf.Insert(byte(x))
			v.kind = variantLeaf256
		case x < 1<<16:
			v.n16 = newNode16Singleton(uint16(x))
			v.kind = variantNode16
		case x < 1<<32:
			v.n32 = newNode32Singleton(uint32(x))
			v.kind = variantNode32
		default:
			v.n64 = newNode64Singleton(x)
			v.kind = variantNode64
		}
	case variantLeaf256:
		if x < 256 {
			v.leaf.Insert(byte(x))
		} else {
			v.promoteToLevel(variantNode16)
			v.Insert(x)
			return
		}
	case variantNode16:
		if x < 1<<16 {
			v.n16.Insert(uint16(x), v.tracker)
		} else {
			v.promoteToLevel(variantNode32)
			v.Insert(x)
			return
		}
	case variantNode32:
		if x < 1<<32 {
			v.n32.Insert(uint32(x), v.tracker)
		} else {
			v.promoteToLevel(variantNode64)
			v.Insert(x)
			return
		}
	case variantNode64:
		v.n64.Insert(x, v.tracker)
	}
	if x > v.maxSeen {
		v.maxSeen = x
	}
}

// Remove deletes x. Absent keys and out-of-universe keys are no-ops.
func (v *VebSet) Remove(x uint64) {
	switch v.kind {
	case variantLeaf256:
		if x < 256 && v.leaf.Remove(byte(x)) {
			v.kind, v.leaf = variantEmpty, nil
		}
	case variantNode16:
		if x < 1<<16 && v.n16.Remove(uint16(x), v.tracker) {
			v.n16.Free(v.tracker)
			v.kind, v.n16 = variantEmpty, nil
		}
	case variantNode32:
		if x < 1<<32 && v.n32.Remove(uint32(x), v.tracker) {
			v.n32.Free(v.tracker)
			v.kind, v.n32 = variantEmpty, nil
		}
	case variantNode64:
		if v.n64.Remove(x, v.tracker) {
			v.n64.Free(v.tracker)
			v.kind, v.n64 = variantEmpty, nil
		}
	}
}

// Contains reports whether x is a member.
func (v *VebSet) Contains(x uint64) bool {
	switch v.kind {
	case variantLeaf256:
		return x < 256 && v.leaf.Contains(byte(x))
	case variantNode16:
		return x < 1<<16 && v.n16.Contains(uint16(x))
	case variantNode32:
		return x < 1<<32 && v.n32.Contains(uint32(x))
	case variantNode64:
		return v.n64.Contains(x)
	}
	return false
}

// Min returns the smallest member.
func (v *VebSet) Min() (uint64, bool) {
	switch v.kind {
	case variantLeaf256:
		b, ok := v.leaf.Min()
		return uint64(b), ok
	case variantNode16:
		return uint64(v.n16.Min()), true
	case variantNode32:
		return uint64(v.n32.Min()), true
	case variantNode64:
		return v.n64.Min(), true
	}
	return 0, false
}

// Max returns the largest member.
func (v *VebSet) Max() (uint64, bool) {
	switch v.kind {
	case variantLeaf256:
		b, ok := v.leaf.Max()
		return uint64(b), ok
	case variantNode16:
		return uint64(v.n16.Max()), true
	case variantNode32:
		return uint64(v.n32.Max()), true
	case variantNode64:
		return v.n64.Max(), true
	}
	return 0, false
}

// Successor returns the smallest member strictly greater than x.
func (v *VebSet) Successor(x uint64) (uint64, bool) {
	switch v.kind {
	case variantLeaf256:
		if x >= 256 {
			return 0, false
		}
		b, ok := v.leaf.Successor(byte(x))
		return uint64(b), ok
	case variantNode16:
		if x >= 1<<16 {
			return 0, false
		}
		r, ok := v.n16.Successor(uint16(x))
		return uint64(r), ok
	case variantNode32:
		if x >= 1<<32 {
			return 0, false
		}
		r, ok := v.n32.Successor(uint32(x))
		return uint64(r), ok
	case variantNode64:
		return v.n64.Successor(x)
	}
	return 0, false
}

// Predecessor returns the largest member strictly less than x. A key at
// or beyond the current universe returns the set's current maximum.
func (v *VebSet) Predecessor(x uint64) (uint64, bool) {
	if v.kind == variantEmpty {
		return 0, false
	}
	if x >= v.UniverseSize() {
		return v.Max()
	}
	switch v.kind {
	case variantLeaf256:
		b, ok := v.leaf.Predecessor(byte(x))
		return uint64(b), ok
	case variantNode16:
		r, ok := v.n16.Predecessor(uint16(x))
		return uint64(r), ok
	case variantNode32:
		r, ok := v.n32.Predecessor(uint32(x))
		return uint64(r), ok
	case variantNode64:
		return v.n64.Predecessor(x)
	}
	return 0, false
}

// Size returns the number of elements held.
func (v *VebSet) Size() int {
	switch v.kind {
	case variantLeaf256:
		return v.leaf.PopCount()
	case variantNode16:
		return v.n16.Size()
	case variantNode32:
		return v.n32.Size()
	case variantNode64:
		return v.n64.Size()
	}
	return 0
}

// IsEmpty reports whether the set holds no elements.
func (v *VebSet) IsEmpty() bool {
	return v.kind == variantEmpty
}

// UniverseSize reports the current variant's capacity (the smallest
// power of two at least as large as the largest key it can represent),
// not the element count.
func (v *VebSet) UniverseSize() uint64 {
	switch v.kind {
	case variantLeaf256:
		return 256
	case variantNode16:
		return 1 << 16
	case variantNode32:
		return 1 << 32
	case variantNode64:
		return 1 << 63
	}
	return 0
}

// AllocatedMemory reports the tracker's current byte count.
func (v *VebSet) AllocatedMemory() int64 {
	return v.tracker.bytes
}

// CountRange counts members in the inclusive range [lo, hi].
func (v *VebSet) CountRange(lo, hi uint64) int {
	if lo > hi || v.kind == variantEmpty {
		return 0
	}
	var cur uint64
	ok := false
	if v.Contains(lo) {
		cur, ok = lo, true
	} else {
		cur, ok = v.Successor(lo)
	}
	count := 0
	for ok && cur <= hi {
		count++
		cur, ok = v.Successor(cur)
	}
	return count
}

// Clear empties the set and releases all of its storage.
func (v *VebSet) Clear() {
	switch v.kind {
	case variantNode16:
		v.n16.Free(v.tracker)
	case variantNode32:
		v.n32.Free(v.tracker)
	case variantNode64:
		v.n64.Free(v.tracker)
	}
	v.kind = variantEmpty
	v.leaf, v.n16, v.n32, v.n64 = nil, nil, nil, nil
	v.maxSeen = 0
}

// Clone returns a deep, independently tracked copy.
func (v *VebSet) Clone() *VebSet {
	c := &VebSet{kind: v.kind, tracker: newAllocTracker(), maxSeen: v.maxSeen}
	switch v.kind {
	case variantLeaf256:
		leaf := *v.leaf
		c.leaf = &leaf
	case variantNode16:
		c.n16 = v.n16.Clone(c.tracker)
	case variantNode32:
		c.n32 = v.n32.Clone(c.tracker)
	case variantNode64:
		c.n64 = v.n64.Clone(c.tracker)
	}
	return c
}

// ToArray materializes every member in strictly increasing order.
func (v *VebSet) ToArray() []uint64 {
	switch v.kind {
	case variantLeaf256:
		bs := v.leaf.elements()
		out := make([]uint64, len(bs))
		for i, b := range bs {
			out[i] = uint64(b)
		}
		return out
	case variantNode16:
		es := v.n16.elements()
		out := make([]uint64, len(es))
		for i, e := range es {
			out[i] = uint64(e)
		}
		return out
	case variantNode32:
		es := v.n32.elements()
		out := make([]uint64, len(es))
		for i, e := range es {
			out[i] = uint64(e)
		}
		return out
	case variantNode64:
		return v.n64.elements()
	}
	return nil
}

// Equal reports whether v and other hold the same elements.
func (v *VebSet) Equal(other *VebSet) bool {
	if v.Size() != other.Size() {
		return false
	}
	a, b := v.ToArray(), other.ToArray()
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Stats reports coarse memory/shape statistics for diagnostics.
func (v *VebSet) Stats() (totalClusters, maxDepth, totalNodes int) {
	switch v.kind {
	case variantLeaf256:
		return 0, 1, 1
	case variantNode16:
		totalNodes, maxDepth = 1, 1
		if v.n16.data != nil {
			totalClusters = len(v.n16.data.clusters)
			totalNodes += totalClusters
			maxDepth = 2
		}
		return
	case variantNode32:
		totalNodes, maxDepth = 1, 1
		if v.n32.data != nil {
			maxDepth = 3
			v.n32.eachClusterKey(func(h uint16) {
				cl, _ := v.n32.data.clusters.Get(h)
				totalClusters++
				totalNodes++
				if cl.data != nil {
					totalClusters += len(cl.data.clusters)
					totalNodes += len(cl.data.clusters)
				}
			})
		}
		return
	case variantNode64:
		totalNodes, maxDepth = 1, 1
		if v.n64.data != nil {
			maxDepth = 4
			v.n64.eachClusterKey(func(h uint32) {
				cl, _ := v.n64.data.clusters.Get(h)
				totalClusters++
				totalNodes++
				if cl.data != nil {
					cl.eachClusterKey(func(h2 uint16) {
						c2, _ := cl.data.clusters.Get(h2)
						totalClusters++
						totalNodes++
						if c2.data != nil {
							totalClusters += len(c2.data.clusters)
							totalNodes += len(c2.data.clusters)
						}
					})
				}
			})
		}
		return
	}
	return 0, 0, 0
}

// Union replaces v with v union other.
func (v *VebSet) Union(other *VebSet) {
	if other.kind == variantEmpty {
		return
	}
	if v.kind == variantEmpty {
		*v = *other.Clone()
		return
	}
	lvl := v.kind
	if other.kind > lvl {
		lvl = other.kind
	}
	v.promoteToLevel(lvl)
	tmp := other.Clone()
	tmp.promoteToLevel(lvl)
	switch lvl {
	case variantLeaf256:
		v.leaf.OrInPlace(tmp.leaf)
	case variantNode16:
		v.n16.OrInPlace(tmp.n16, v.tracker)
	case variantNode32:
		v.n32.OrInPlace(tmp.n32, v.tracker)
	case variantNode64:
		v.n64.OrInPlace(tmp.n64, v.tracker)
	}
	if m, ok := v.Max(); ok && m > v.maxSeen {
		v.maxSeen = m
	}
}

// Intersect replaces v with v intersect other.
func (v *VebSet) Intersect(other *VebSet) {
	if v.kind == variantEmpty {
		return
	}
	if other.kind == variantEmpty {
		v.Clear()
		return
	}
	lvl := v.kind
	if other.kind > lvl {
		lvl = other.kind
	}
	v.promoteToLevel(lvl)
	tmp := other.Clone()
	tmp.promoteToLevel(lvl)
	empty := false
	switch lvl {
	case variantLeaf256:
		v.leaf.AndInPlace(tmp.leaf)
		empty = v.leaf.IsEmpty()
	case variantNode16:
		empty = v.n16.AndInPlace(tmp.n16, v.tracker)
	case variantNode32:
		empty = v.n32.AndInPlace(tmp.n32, v.tracker)
	case variantNode64:
		empty = v.n64.AndInPlace(tmp.n64, v.tracker)
	}
	if empty {
		v.Clear()
	}
}

// SymmetricDifference replaces v with the symmetric difference of v and
// other.
func (v *VebSet) SymmetricDifference(other *VebSet) {
	if other.kind == variantEmpty {
		return
	}
	if v.kind == variantEmpty {
		*v = *other.Clone()
		return
	}
	lvl := v.kind
	if other.kind > lvl {
		lvl = other.kind
	}
	v.promoteToLevel(lvl)
	tmp := other.Clone()
	tmp.promoteToLevel(lvl)
	empty := false
	switch lvl {
	case variantLeaf256:
		v.leaf.XorInPlace(tmp.leaf)
		empty = v.leaf.IsEmpty()
	case variantNode16:
		empty = v.n16.XorInPlace(tmp.n16, v.tracker)
	case variantNode32:
		empty = v.n32.XorInPlace(tmp.n32, v.tracker)
	case variantNode64:
		empty = v.n64.XorInPlace(tmp.n64, v.tracker)
	}
	if empty {
		v.Clear()
		return
	}
	if m, ok := v.Max(); ok && m > v.maxSeen {
		v.maxSeen = m
	}
}

// UnionOf returns a fresh set holding a union b without mutating either.
func UnionOf(a, b *VebSet) *VebSet {
	r := a.Clone()
	r.Union(b)
	return r
}

// IntersectOf returns a fresh set holding a intersect b without mutating
// either.
func IntersectOf(a, b *VebSet) *VebSet {
	r := a.Clone()
	r.Intersect(b)
	return r
}

// XorOf returns a fresh set holding the symmetric difference of a and b
// without mutating either.
func XorOf(a, b *VebSet) *VebSet {
	r := a.Clone()
	r.SymmetricDifference(b)
	return r
}
