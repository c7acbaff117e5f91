package vebset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAllocTracker_CloneStartsFreshCounter(t *testing.T) {
	v := New()
	for _, k := range []uint64{1, 2, 300, 70000, 70001, 1 << 20} {
		v.Insert(k)
	}
	before := v.AllocatedMemory()
	require.Greater(t, before, int64(0))

	c := v.Clone()
	require.Equal(t, before, c.AllocatedMemory(), "deep copy accounts the same storage")

	c.Clear()
	require.Equal(t, int64(0), c.AllocatedMemory())
	require.Equal(t, before, v.AllocatedMemory(), "clearing the clone must not touch the original's counter")
}

func TestAllocTracker_ClearReleasesEverything(t *testing.T) {
	v := New()
	for k := uint64(0); k < 10000; k += 17 {
		v.Insert(k)
	}
	v.Insert(1 << 45)
	require.Greater(t, v.AllocatedMemory(), int64(0))
	v.Clear()
	require.Equal(t, int64(0), v.AllocatedMemory())
	require.True(t, v.IsEmpty())
}

func TestAllocTracker_RemoveAllBalancesToZero(t *testing.T) {
	v := New()
	keys := []uint64{3, 9, 300, 70000, 70001, 1 << 20, 1 << 40}
	for _, k := range keys {
		v.Insert(k)
	}
	for _, k := range keys {
		v.Remove(k)
	}
	require.True(t, v.IsEmpty())
	require.Equal(t, int64(0), v.AllocatedMemory())
}
