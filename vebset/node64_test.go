package vebset

import "testing"

func TestNode64_InsertContains(t *testing.T) {
	tr := newAllocTracker()
	n := newNode64Singleton(1 << 40)
	keys := []uint64{0, 9, 1 << 20, 1 << 33, 1<<40 + 5, 1 << 50, 1<<63 - 1}
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
	if n.Max() != 1<<63-1 {
		t.Fatalf("Max() = %d, want %d", n.Max(), uint64(1<<63-1))
	}
	if n.Contains(424242) {
		t.Fatalf("Contains(424242) = true, want false")
	}
}

func TestNode64_RemoveMaxPullsUpAcrossClusters(t *testing.T) {
	tr := newAllocTracker()
	n := newNode64Singleton(10)
	for _, k := range []uint64{1 << 20, 1 << 40, 1 << 50} {
		n.Insert(k, tr)
	}
	n.Remove(1<<50, tr)
	if n.Max() != 1<<40 {
		t.Fatalf("Max() = %d after removing old max, want %d", n.Max(), uint64(1<<40))
	}
	if n.Contains(1 << 50) {
		t.Fatalf("Contains(1<<50) true after Remove")
	}
	if n.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", n.Size())
	}
}

func TestNode64_SuccessorPredecessorAcrossClusters(t *testing.T) {
	tr := newAllocTracker()
	n := newNode64Singleton(100)
	for _, k := range []uint64{1 << 33, 1 << 40, 1 << 50} {
		n.Insert(k, tr)
	}
	cases := []struct {
		in, want uint64
		ok       bool
	}{
		{0, 100, true},
		{100, 1 << 33, true},
		{1 << 33, 1 << 40, true},
		{1 << 40, 1 << 50, true},
		{1 << 50, 0, false},
	}
	for _, c := range cases {
		got, ok := n.Successor(c.in)
		if ok != c.ok || (ok && got != c.want) {
			t.Fatalf("Successor(%d) = (%d, %v), want (%d, %v)", c.in, got, ok, c.want, c.ok)
		}
	}
	if got, ok := n.Predecessor(1 << 50); !ok || got != 1<<40 {
		t.Fatalf("Predecessor(1<<50) = (%d, %v), want (%d, true)", got, ok, uint64(1<<40))
	}
	if _, ok := n.Predecessor(100); ok {
		t.Fatalf("Predecessor(min) should be absent")
	}
}

func TestNode64_PromotionFromNode32PreservesElements(t *testing.T) {
	tr := newAllocTracker()
	old := newNode32Singleton(3)
	for _, k := range []uint32{7, 70000, 1 << 20, 1<<32 - 1} {
		old.Insert(k, tr)
	}
	want := old.elements()
	n := promoteNode32ToNode64(old, tr)
	if n.Min() != uint64(want[0]) || n.Max() != uint64(want[len(want)-1]) {
		t.Fatalf("Min/Max = %d/%d after promotion, want %d/%d", n.Min(), n.Max(), want[0], want[len(want)-1])
	}
	for _, k := range want {
		if !n.Contains(uint64(k)) {
			t.Fatalf("promotion lost key %d", k)
		}
	}
	if n.Size() != len(want) {
		t.Fatalf("Size() = %d after promotion, want %d", n.Size(), len(want))
	}
}

func TestNode64_SetAlgebra(t *testing.T) {
	tr := newAllocTracker()
	step := uint64(1) << 30
	a := newNode64Singleton(0)
	for k := uint64(1); k < 100; k++ {
		a.Insert(k*step, tr)
	}
	b := newNode64Singleton(50 * step)
	for k := uint64(51); k < 150; k++ {
		b.Insert(k*step, tr)
	}

	union := a.Clone(tr)
	union.OrInPlace(b, tr)
	if union.Size() != 150 {
		t.Fatalf("union Size() = %d, want 150", union.Size())
	}

	inter := a.Clone(tr)
	if inter.AndInPlace(b, tr) {
		t.Fatalf("intersection reported empty unexpectedly")
	}
	if inter.Size() != 50 {
		t.Fatalf("intersection Size() = %d, want 50", inter.Size())
	}
	if inter.Min() != 50*step || inter.Max() != 99*step {
		t.Fatalf("intersection Min/Max = %d/%d, want %d/%d", inter.Min(), inter.Max(), 50*step, 99*step)
	}

	xor := a.Clone(tr)
	if xor.XorInPlace(b, tr) {
		t.Fatalf("xor reported empty unexpectedly")
	}
	if xor.Size() != 100 {
		t.Fatalf("xor Size() = %d, want 100", xor.Size())
	}

	same := a.Clone(tr)
	if !same.XorInPlace(a, tr) {
		t.Fatalf("a xor a should report empty")
	}
}

func TestNode64_AllocationBalancesToZero(t *testing.T) {
	tr := newAllocTracker()
	n := newNode64Singleton(5)
	keys := []uint64{9, 1 << 20, 1 << 33, 1<<33 + 7, 1 << 50}
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
