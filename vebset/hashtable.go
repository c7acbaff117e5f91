package vebset

import "github.com/dolthub/maphash"

type slotState int8

const (
	slotEmpty slotState = iota
	slotFull
	slotDead
)

type hashSlot[K comparable, V any] struct {
	key   K
	value V
	state slotState
}

// hashtable is a small open-addressed map keyed by a fixed-width integer
// (uint16 for Node32's clusters, uint32 for Node64's), used where the
// cluster container needs lookup by a raw key without constructing a
// probe value. Hashing comes from dolthub/maphash; probing is linear,
// since these tables rarely hold more than a few hundred live entries.
type hashtable[K comparable, V any] struct {
	hash     maphash.Hasher[K]
	slots    []hashSlot[K, V]
	resident int
	dead     int
}

func newHashtable[K comparable, V any]() *hashtable[K, V] {
	return &hashtable[K, V]{
		hash:  maphash.NewHasher[K](),
		slots: make([]hashSlot[K, V], 8),
	}
}

func (h *hashtable[K, V]) Len() int { return h.resident - h.dead }

func (h *hashtable[K, V]) find(key K) (idx int, found bool) {
	mask := uint64(len(h.slots) - 1)
	idx = int(h.hash.Hash(key) & mask)
	for {
		switch h.slots[idx].state {
		case slotEmpty:
			return idx, false
		case slotFull:
			if h.slots[idx].key == key {
				return idx, true
			}
		}
		idx = (idx + 1) & int(mask)
	}
}

// Get returns the value stored for key, if any.
func (h *hashtable[K, V]) Get(key K) (V, bool) {
	idx, found := h.find(key)
	if !found {
		var zero V
		return zero, false
	}
	return h.slots[idx].value, true
}

// Set installs value under key, overwriting any prior value.
func (h *hashtable[K, V]) Set(key K, value V) {
	if h.resident+1 > len(h.slots)*3/4 {
		h.grow()
	}
	idx, found := h.find(key)
	if !found {
		h.resident++
	}
	h.slots[idx] = hashSlot[K, V]{key: key, value: value, state: slotFull}
}

// Delete removes key, reporting whether it was present.
func (h *hashtable[K, V]) Delete(key K) bool {
	idx, found := h.find(key)
	if !found {
		return false
	}
	var zero V
	h.slots[idx] = hashSlot[K, V]{value: zero, state: slotDead}
	h.dead++
	return true
}

func (h *hashtable[K, V]) grow() {
	old := h.slots
	h.slots = make([]hashSlot[K, V], len(old)*2)
	h.hash = maphash.NewSeed(h.hash)
	h.resident, h.dead = 0, 0
	for i := range old {
		if old[i].state == slotFull {
			h.Set(old[i].key, old[i].value)
		}
	}
}
