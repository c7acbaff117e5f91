// Package vebset implements a dynamic integer set over an unsigned universe
// of up to 63 bits, backed by a recursive van Emde Boas tree. Lookup,
// insert, remove, successor and predecessor all run in O(log log U) time
// in the size of the current universe. Set algebra (union, intersection,
// symmetric difference) works cluster-wise: each level walks the two
// operands' summaries, pairs up matching clusters and combines them with
// whole-word bitwise operations at the leaves, so the cost scales with
// the number of occupied clusters rather than the number of elements.
//
// The tree is stratified into four node levels — Leaf256, Node16, Node32
// and Node64 — chosen automatically by the largest key ever inserted. A
// VebSet starts empty and promotes itself to wider levels as keys arrive;
// it never demotes while it holds elements. A set that becomes empty drops
// its storage and starts again from the smallest level that fits the next
// key.
//
// VebSet carries no internal synchronization. Callers sharing one instance
// across goroutines must provide their own serialization of mutating
// calls.
package vebset
