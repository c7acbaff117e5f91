package vebset

// allocTracker is a byte counter, shared by pointer, threaded through every
// heap-allocating constructor in the tree, mirroring a custom STL
// allocator whose sole job is exact accounting rather than actual
// allocation. A VebSet owns one tracker; every level's cluster block is
// created and destroyed through it so that AllocatedMemory is always
// exact and O(1) to read.
type allocTracker struct {
	bytes int64
}

func newAllocTracker() *allocTracker {
	return &allocTracker{}
}

// add adjusts the tracked byte count by delta, which may be negative.
func (t *allocTracker) add(delta int64) {
	t.bytes += delta
}

// clone starts an independent tracker seeded at zero, the same fresh
// accounting a deep-copied VebSet starts with (VebSet.Clone itself calls
// newAllocTracker directly).
func (t *allocTracker) clone() *allocTracker {
	return newAllocTracker()
}

const leaf256Bytes = int64(4 * 8)

// clusterBlockBytes is the accounted size of a Node16 cluster block
// holding capacity clusters plus its Leaf256 summary.
func clusterBlockBytes(capacity int) int64 {
	return leaf256Bytes + int64(capacity)*leaf256Bytes
}
