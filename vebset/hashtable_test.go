package vebset

import "testing"

func TestHashtable_SetGetDelete(t *testing.T) {
	h := newHashtable[uint16, int]()
	if _, ok := h.Get(7); ok {
		t.Fatalf("Get on empty table reported a hit")
	}
	h.Set(7, 70)
	h.Set(8, 80)
	if v, ok := h.Get(7); !ok || v != 70 {
		t.Fatalf("Get(7) = (%d, %v), want (70, true)", v, ok)
	}
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if !h.Delete(7) {
		t.Fatalf("Delete(7) reported absent")
	}
	if h.Delete(7) {
		t.Fatalf("second Delete(7) reported present")
	}
	if _, ok := h.Get(7); ok {
		t.Fatalf("Get(7) hit after Delete")
	}
	if h.Len() != 1 {
		t.Fatalf("Len() = %d after delete, want 1", h.Len())
	}
}

func TestHashtable_OverwriteKeepsSingleEntry(t *testing.T) {
	h := newHashtable[uint32, string]()
	h.Set(9, "a")
	h.Set(9, "b")
	if h.Len() != 1 {
		t.Fatalf("Len() = %d after overwrite, want 1", h.Len())
	}
	if v, _ := h.Get(9); v != "b" {
		t.Fatalf("Get(9) = %q, want %q", v, "b")
	}
}

func TestHashtable_GrowthPreservesEntries(t *testing.T) {
	h := newHashtable[uint16, uint16]()
	const n = 500
	for k := uint16(0); k < n; k++ {
		h.Set(k, k*2)
	}
	if h.Len() != n {
		t.Fatalf("Len() = %d, want %d", h.Len(), n)
	}
	for k := uint16(0); k < n; k++ {
		v, ok := h.Get(k)
		if !ok || v != k*2 {
			t.Fatalf("Get(%d) = (%d, %v), want (%d, true)", k, v, ok, k*2)
		}
	}
}

func TestHashtable_ReinsertAfterDelete(t *testing.T) {
	h := newHashtable[uint16, int]()
	for k := uint16(0); k < 16; k++ {
		h.Set(k, int(k))
	}
	for k := uint16(0); k < 16; k += 2 {
		h.Delete(k)
	}
	for k := uint16(0); k < 16; k += 2 {
		h.Set(k, int(k)+100)
	}
	for k := uint16(0); k < 16; k++ {
		v, ok := h.Get(k)
		if !ok {
			t.Fatalf("Get(%d) missing after reinsert cycle", k)
		}
		want := int(k)
		if k%2 == 0 {
			want += 100
		}
		if v != want {
			t.Fatalf("Get(%d) = %d, want %d", k, v, want)
		}
	}
}
