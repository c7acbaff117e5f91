package vebset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIterator_ForwardVisitsAllInOrder(t *testing.T) {
	v := New()
	keys := []uint64{5, 1, 300, 70000, 1 << 20}
	for _, k := range keys {
		v.Insert(k)
	}
	it := v.Iterator()
	var got []uint64
	for {
		k, ok := it.Next()
		if !ok {
			break
		}
		got = append(got, k)
	}
	require.Equal(t, v.ToArray(), got)
}

func TestIterator_ReverseVisitsAllInOrder(t *testing.T) {
	v := New()
	keys := []uint64{5, 1, 300, 70000, 1 << 20}
	for _, k := range keys {
		v.Insert(k)
	}
	it := v.ReverseIterator()
	var got []uint64
	for {
		k, ok := it.Prev()
		if !ok {
			break
		}
		got = append(got, k)
	}
	arr := v.ToArray()
	for i, j := 0, len(arr)-1; i < j; i, j = i+1, j-1 {
		arr[i], arr[j] = arr[j], arr[i]
	}
	require.Equal(t, arr, got)
}

func TestIterator_EmptySetYieldsNothing(t *testing.T) {
	v := New()
	_, ok := v.Iterator().Next()
	require.False(t, ok)
	_, ok = v.ReverseIterator().Prev()
	require.False(t, ok)
}
