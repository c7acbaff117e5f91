package vebset

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

// model is the parallel reference implementation the set-algebra laws
// are checked against: a plain map plus a sort at observation time.
type model map[uint64]struct{}

func (m model) sorted() []uint64 {
	out := make([]uint64, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func modelUnion(a, b model) model {
	out := model{}
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}

func modelIntersect(a, b model) model {
	out := model{}
	for k := range a {
		if _, ok := b[k]; ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func modelXor(a, b model) model {
	out := model{}
	for k := range a {
		if _, ok := b[k]; !ok {
			out[k] = struct{}{}
		}
	}
	for k := range b {
		if _, ok := a[k]; !ok {
			out[k] = struct{}{}
		}
	}
	return out
}

func randomPair(r *rand.Rand, universe uint64, n int) (*VebSet, model) {
	v := New()
	m := model{}
	for i := 0; i < n; i++ {
		k := uint64(r.Int63n(int64(universe)))
		v.Insert(k)
		m[k] = struct{}{}
	}
	return v, m
}

func requireMatchesModel(t *testing.T, v *VebSet, m model) {
	t.Helper()
	require.Equal(t, m.sorted(), orEmpty(v.ToArray()))
	require.Equal(t, len(m), v.Size())
}

func orEmpty(a []uint64) []uint64 {
	if a == nil {
		return []uint64{}
	}
	return a
}

// every operation agrees element-wise with the map-based reference, at
// every level of the hierarchy and across mixed-level operand pairs.
func TestSetAlgebra_AgainstReferenceModel(t *testing.T) {
	universes := []struct {
		name string
		size uint64
	}{
		{"Leaf256", 1 << 8},
		{"Node16", 1 << 16},
		{"Node32", 1 << 32},
		{"Node64", 1 << 62},
	}
	for _, ua := range universes {
		for _, ub := range universes {
			t.Run(ua.name+"_"+ub.name, func(t *testing.T) {
				r := rand.New(rand.NewSource(int64(ua.size%991 + ub.size%997)))
				for trial := 0; trial < 5; trial++ {
					a, ma := randomPair(r, ua.size, 60)
					b, mb := randomPair(r, ub.size, 60)

					requireMatchesModel(t, UnionOf(a, b), modelUnion(ma, mb))
					requireMatchesModel(t, IntersectOf(a, b), modelIntersect(ma, mb))
					requireMatchesModel(t, XorOf(a, b), modelXor(ma, mb))

					// the pure variants must leave their operands alone
					requireMatchesModel(t, a, ma)
					requireMatchesModel(t, b, mb)
				}
			})
		}
	}
}

func TestSetAlgebra_Laws(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	for trial := 0; trial < 10; trial++ {
		a, _ := randomPair(r, 1<<40, 80)
		b, _ := randomPair(r, 1<<40, 80)

		require.True(t, UnionOf(a, a).Equal(a), "a | a == a")
		require.True(t, IntersectOf(a, a).Equal(a), "a & a == a")
		require.True(t, XorOf(a, a).IsEmpty(), "a ^ a == empty")

		require.True(t, UnionOf(a, b).Equal(UnionOf(b, a)), "union commutes")
		require.True(t, IntersectOf(a, b).Equal(IntersectOf(b, a)), "intersection commutes")
		require.True(t, XorOf(a, b).Equal(XorOf(b, a)), "xor commutes")

		u, i, x := UnionOf(a, b), IntersectOf(a, b), XorOf(a, b)
		require.Equal(t, a.Size()+b.Size()-i.Size(), u.Size(), "|a|b| == |a|+|b|-|a&b|")
		require.Equal(t, u.Size()-i.Size(), x.Size(), "|a^b| == |a|b|-|a&b|")

		require.True(t, XorOf(XorOf(a, b), b).Equal(a), "(a ^ b) ^ b == a")
	}
}

func TestSetAlgebra_EmptyOperandShortcuts(t *testing.T) {
	a := New()
	for _, k := range []uint64{3, 300, 70000} {
		a.Insert(k)
	}
	empty := New()

	u := a.Clone()
	u.Union(empty)
	require.True(t, u.Equal(a))

	u2 := empty.Clone()
	u2.Union(a)
	require.True(t, u2.Equal(a))

	i := a.Clone()
	i.Intersect(empty)
	require.True(t, i.IsEmpty())

	x := a.Clone()
	x.SymmetricDifference(empty)
	require.True(t, x.Equal(a))

	x2 := empty.Clone()
	x2.SymmetricDifference(a)
	require.True(t, x2.Equal(a))
}

// scenario: insert {10, 20, 30}, remove 20.
func TestScenario_InsertRemoveBasics(t *testing.T) {
	v := New()
	v.Insert(10)
	v.Insert(20)
	v.Insert(30)
	v.Remove(20)

	mn, ok := v.Min()
	require.True(t, ok)
	require.Equal(t, uint64(10), mn)
	mx, ok := v.Max()
	require.True(t, ok)
	require.Equal(t, uint64(30), mx)
	succ, ok := v.Successor(10)
	require.True(t, ok)
	require.Equal(t, uint64(30), succ)
	require.Equal(t, 2, v.Size())
}

// scenario: 200 random keys survive two serialize/deserialize round
// trips and the restored set still accepts mutations.
func TestScenario_SerializeRestoreMutate(t *testing.T) {
	r := rand.New(rand.NewSource(200))
	v := New()
	for i := 0; i < 200; i++ {
		v.Insert(uint64(r.Int63n(10000)))
	}

	once, err := Deserialize(v.Serialize())
	require.NoError(t, err)
	require.True(t, v.Equal(once))

	twice, err := Deserialize(once.Serialize())
	require.NoError(t, err)
	require.True(t, v.Equal(twice))

	twice.Insert(424242)
	require.True(t, twice.Contains(424242))
	twice.Remove(424242)
	require.True(t, v.Equal(twice))
}

// scenario: overlapping intervals [0,50) and [25,75).
func TestScenario_OverlappingIntervals(t *testing.T) {
	a := New()
	for k := uint64(0); k < 50; k++ {
		a.Insert(k)
	}
	b := New()
	for k := uint64(25); k < 75; k++ {
		b.Insert(k)
	}
	require.Equal(t, 75, UnionOf(a, b).Size())
	require.Equal(t, 25, IntersectOf(a, b).Size())

	x := XorOf(a, b)
	require.Equal(t, 50, x.Size())
	for k := uint64(0); k < 25; k++ {
		require.True(t, x.Contains(k))
	}
	for k := uint64(25); k < 50; k++ {
		require.False(t, x.Contains(k))
	}
	for k := uint64(50); k < 75; k++ {
		require.True(t, x.Contains(k))
	}
}
