package lib

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRingPush(t *testing.T) {
	tests := []struct {
		name            string
		capacity        int
		push            []int
		expected        []int
		expectedEvicted []int
	}{
		{
			name:     "under capacity",
			capacity: 3,
			push:     []int{1, 2},
			expected: []int{1, 2},
		},
		{
			name:     "at capacity",
			capacity: 3,
			push:     []int{1, 2, 3},
			expected: []int{1, 2, 3},
		},
		{
			name:            "overflow evicts oldest first",
			capacity:        3,
			push:            []int{1, 2, 3, 4, 5},
			expected:        []int{3, 4, 5},
			expectedEvicted: []int{1, 2},
		},
		{
			name:            "wraps multiple times",
			capacity:        2,
			push:            []int{1, 2, 3, 4, 5, 6, 7},
			expected:        []int{6, 7},
			expectedEvicted: []int{1, 2, 3, 4, 5},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			r := NewRing[int](test.capacity)
			var evicted []int
			for _, p := range test.push {
				if e, ok := r.Push(p); ok {
					evicted = append(evicted, e)
				}
			}
			require.Equal(t, test.expected, r.Slice())
			require.Equal(t, test.expectedEvicted, evicted)
			require.Equal(t, len(test.expected), r.Len())
			require.Equal(t, test.capacity, r.Cap())
			oldest, ok := r.Oldest()
			require.True(t, ok)
			require.Equal(t, test.expected[0], oldest)
			newest, ok := r.Newest()
			require.True(t, ok)
			require.Equal(t, test.expected[len(test.expected)-1], newest)
		})
	}
}

func TestRingEmpty(t *testing.T) {
	r := NewRing[string](4)
	_, ok := r.Oldest()
	require.False(t, ok)
	_, ok = r.Newest()
	require.False(t, ok)
	_, ok = r.Get(-1)
	require.False(t, ok)
	require.Empty(t, r.Slice())
}

func TestRingRange(t *testing.T) {
	r := NewRing[int](3)
	for i := 0; i < 5; i++ {
		r.Push(i)
	}
	var got []int
	r.Range(func(_ int, item int) bool {
		got = append(got, item)
		return item < 3
	})
	require.Equal(t, []int{2, 3}, got)
}
