package vebset

import "testing"

func TestNode32_InsertContains(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(1 << 20)
	keys := []uint32{0, 9, 70000, 70001, 1 << 16, 1<<20 + 5, 1<<31 - 1, 1<<32 - 1}
	for _, k := range keys {
		n.Insert(k, tr)
	}
	for _, k := range keys {
		if !n.Contains(k) {
			t.Fatalf("Contains(%d) = false after insert", k)
		}
	}
	if n.Min() != 0 {
		t.Fatalf("Min() = %d, want 0", n.Min())
	}
	if n.Max() != 1<<32-1 {
		t.Fatalf("Max() = %d, want %d", n.Max(), uint32(1<<32-1))
	}
	if n.Contains(12345) {
		t.Fatalf("Contains(12345) = true, want false")
	}
}

func TestNode32_SwapIntoSingletonStaysClusterless(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(1000)
	n.Insert(5, tr)
	if n.Size() != 2 {
		t.Fatalf("Size() = %d after inserting below a singleton, want 2", n.Size())
	}
	if n.data != nil {
		t.Fatalf("min/max pair should not allocate cluster storage")
	}
	n.Insert(1 << 25, tr)
	if n.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", n.Size())
	}
}

func TestNode32_RemoveMinPullsUpAcrossClusters(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(10)
	for _, k := range []uint32{70000, 1 << 20, 1 << 30} {
		n.Insert(k, tr)
	}
	n.Remove(10, tr)
	if n.Min() != 70000 {
		t.Fatalf("Min() = %d after removing old min, want 70000", n.Min())
	}
	if n.Contains(10) {
		t.Fatalf("Contains(10) true after Remove")
	}
	if n.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", n.Size())
	}
}

func TestNode32_RemoveLastElementReportsEmpty(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(42)
	if !n.Remove(42, tr) {
		t.Fatalf("Remove of sole element should report empty")
	}
}

func TestNode32_SuccessorPredecessorAcrossClusters(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(100)
	for _, k := range []uint32{70000, 1 << 20, 1 << 30} {
		n.Insert(k, tr)
	}
	cases := []struct {
		in, want uint32
		ok       bool
	}{
		{0, 100, true},
		{100, 70000, true},
		{70000, 1 << 20, true},
		{1 << 20, 1 << 30, true},
		{1 << 30, 0, false},
	}
	for _, c := range cases {
		got, ok := n.Successor(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("Successor(%d) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
	if got, ok := n.Predecessor(1 << 30); !ok || got != 1<<20 {
		t.Fatalf("Predecessor(1<<30) = (%d, %v), want (%d, true)", got, ok, uint32(1<<20))
	}
	if _, ok := n.Predecessor(100); ok {
		t.Fatalf("Predecessor(min) should be absent")
	}
}

func TestNode32_PromotionFromNode16PreservesElements(t *testing.T) {
	tr := newAllocTracker()
	old := newNode16Singleton(3)
	for _, k := range []uint16{7, 300, 40000, 65535} {
		old.Insert(k, tr)
	}
	want := old.elements()
	n := promoteNode16ToNode32(old, tr)
	if n.Min() != uint32(want[0]) || n.Max() != uint32(want[len(want)-1]) {
		t.Fatalf("Min/Max = %d/%d after promotion, want %d/%d", n.Min(), n.Max(), want[0], want[len(want)-1])
	}
	for _, k := range want {
		if !n.Contains(uint32(k)) {
			t.Fatalf("promotion lost key %d", k)
		}
	}
	if n.Size() != len(want) {
		t.Fatalf("Size() = %d after promotion, want %d", n.Size(), len(want))
	}
}

func TestNode32_SetAlgebra(t *testing.T) {
	tr := newAllocTracker()
	a := newNode32Singleton(0)
	for k := uint32(1); k < 200; k++ {
		a.Insert(k*1000, tr)
	}
	b := newNode32Singleton(100 * 1000)
	for k := uint32(101); k < 300; k++ {
		b.Insert(k*1000, tr)
	}

	union := a.Clone(tr)
	union.OrInPlace(b, tr)
	if union.Size() != 300 {
		t.Fatalf("union Size() = %d, want 300", union.Size())
	}

	inter := a.Clone(tr)
	if inter.AndInPlace(b, tr) {
		t.Fatalf("intersection reported empty unexpectedly")
	}
	if inter.Size() != 100 {
		t.Fatalf("intersection Size() = %d, want 100", inter.Size())
	}
	if inter.Min() != 100*1000 || inter.Max() != 199*1000 {
		t.Fatalf("intersection Min/Max = %d/%d, want %d/%d", inter.Min(), inter.Max(), 100*1000, 199*1000)
	}

	xor := a.Clone(tr)
	if xor.XorInPlace(b, tr) {
		t.Fatalf("xor reported empty unexpectedly")
	}
	if xor.Size() != 200 {
		t.Fatalf("xor Size() = %d, want 200", xor.Size())
	}

	// (a ^ b) ^ b == a
	roundTrip := a.Clone(tr)
	roundTrip.XorInPlace(b, tr)
	roundTrip.XorInPlace(b, tr)
	aElems := a.elements()
	rElems := roundTrip.elements()
	if len(aElems) != len(rElems) {
		t.Fatalf("xor round trip size mismatch: %d vs %d", len(aElems), len(rElems))
	}
	for i := range aElems {
		if aElems[i] != rElems[i] {
			t.Fatalf("xor round trip element mismatch at %d: %d vs %d", i, aElems[i], rElems[i])
		}
	}
}

func TestNode32_AndDisjointReportsEmpty(t *testing.T) {
	tr := newAllocTracker()
	a := newNode32Singleton(1)
	a.Insert(2, tr)
	a.Insert(3, tr)
	b := newNode32Singleton(1 << 20)
	b.Insert(1<<20+1, tr)
	if !a.AndInPlace(b, tr) {
		t.Fatalf("intersection of disjoint sets should report empty")
	}
}

func TestNode32_AllocationBalancesToZero(t *testing.T) {
	tr := newAllocTracker()
	n := newNode32Singleton(5)
	keys := []uint32{9, 70000, 70001, 1 << 20, 1 << 30}
	for _, k := range keys {
		n.Insert(k, tr)
	}
	for _, k := range keys {
		n.Remove(k, tr)
	}
	if tr.bytes != 0 {
		t.Fatalf("tracker = %d bytes after removing every clustered key, want 0", tr.bytes)
	}
}
