package shuffle

import (
	"errors"
	"io"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items []int
	// failAt injects errSource before the item with this index, once.
	failAt int
	pos    int
	failed bool
}

var errSource = errors.New("source failed")

func newSource(n int) *sliceSource {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return &sliceSource{items: items, failAt: -1}
}

func (s *sliceSource) Next() (int, error) {
	if s.pos == s.failAt && !s.failed {
		s.failed = true
		return 0, errSource
	}
	if s.pos >= len(s.items) {
		return 0, io.EOF
	}
	v := s.items[s.pos]
	s.pos++
	return v, nil
}

func drainAll(t *testing.T, b *Buffer[int]) []int {
	t.Helper()

	var out []int
	for {
		v, err := b.Next()
		if errors.Is(err, io.EOF) {
			return out
		}
		require.NoError(t, err)
		out = append(out, v)
	}
}

func seed(v uint64) *uint64 {
	return &v
}

func TestBuffer_PassThrough(t *testing.T) {
	b := New[int](newSource(20), 0, nil)

	assert.Equal(t, newSource(20).items, drainAll(t, b))
	assert.Equal(t, 0, b.Len())
}

func TestBuffer_Deterministic(t *testing.T) {
	for _, capacity := range []int{1, 3, 16, 100} {
		first := drainAll(t, New[int](newSource(50), capacity, seed(7)))
		second := drainAll(t, New[int](newSource(50), capacity, seed(7)))
		assert.Equal(t, first, second, "capacity %d", capacity)
	}
}

func TestBuffer_SeedChangesOrder(t *testing.T) {
	a := drainAll(t, New[int](newSource(100), 10, seed(1)))
	b := drainAll(t, New[int](newSource(100), 10, seed(2)))
	assert.NotEqual(t, a, b)
}

func TestBuffer_Permutation(t *testing.T) {
	tests := []struct {
		name     string
		n        int
		capacity int
	}{
		{name: "capacity above input", n: 10, capacity: 64},
		{name: "capacity equals input", n: 32, capacity: 32},
		{name: "capacity below input", n: 100, capacity: 7},
		{name: "empty input", n: 0, capacity: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := drainAll(t, New[int](newSource(tt.n), tt.capacity, seed(99)))

			sorted := append([]int(nil), out...)
			sort.Ints(sorted)
			assert.Equal(t, newSource(tt.n).items, nonNil(sorted))
		})
	}
}

func nonNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}

// reference replays the documented algorithm step by step.
func reference(input []int, capacity int, s uint64) []int {
	rng := NewRand(s)
	pool := append([]int(nil), input[:min(capacity, len(input))]...)
	rest := input[len(pool):]

	var out []int
	for _, v := range rest {
		i := rng.Intn(capacity)
		out = append(out, pool[i])
		pool[i] = v
	}
	for len(pool) > 0 {
		i := rng.Intn(len(pool))
		out = append(out, pool[i])
		pool[i] = pool[len(pool)-1]
		pool = pool[:len(pool)-1]
	}
	return out
}

func TestBuffer_MatchesReferenceAlgorithm(t *testing.T) {
	for _, tc := range []struct{ n, capacity int }{{10, 3}, {5, 8}, {64, 16}, {1, 1}} {
		src := newSource(tc.n)
		got := drainAll(t, New[int](src, tc.capacity, seed(42)))
		assert.Equal(t, reference(newSource(tc.n).items, tc.capacity, 42), got, "n=%d capacity=%d", tc.n, tc.capacity)
	}
}

func TestBuffer_FillsBeforeEmitting(t *testing.T) {
	src := newSource(10)
	b := New[int](src, 4, seed(3))

	_, err := b.Next()
	require.NoError(t, err)

	// Four records fill the pool and a fifth replaces the emitted one.
	assert.Equal(t, 5, src.pos)
	assert.Equal(t, 4, b.Len())
	assert.Equal(t, 4, b.Cap())
}

func TestBuffer_ResumesAfterSourceError(t *testing.T) {
	for _, failAt := range []int{2, 6} {
		src := newSource(10)
		src.failAt = failAt
		b := New[int](src, 4, seed(11))

		var out []int
		var errs int
		for {
			v, err := b.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, errSource) {
				errs++
				continue
			}
			require.NoError(t, err)
			out = append(out, v)
		}

		assert.Equal(t, 1, errs)
		assert.Equal(t, reference(newSource(10).items, 4, 11), out, "failAt %d", failAt)
	}
}

func TestBuffer_EOFIsSticky(t *testing.T) {
	b := New[int](newSource(2), 4, seed(5))
	drainAll(t, b)

	_, err := b.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRand_Intn(t *testing.T) {
	r := NewRand(123)
	for i := 0; i < 1000; i++ {
		assert.Equal(t, 0, r.Intn(1))
	}

	counts := make([]int, 5)
	for i := 0; i < 5000; i++ {
		v := r.Intn(5)
		require.GreaterOrEqual(t, v, 0)
		require.Less(t, v, 5)
		counts[v]++
	}
	for _, c := range counts {
		assert.Greater(t, c, 800)
	}

	assert.Panics(t, func() { r.Intn(0) })
}

func TestRand_Deterministic(t *testing.T) {
	a, b := NewRand(2024), NewRand(2024)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Uint64(), b.Uint64())
	}
}
