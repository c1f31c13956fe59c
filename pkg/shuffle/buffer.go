package shuffle

import (
	"errors"
	"io"
)

// Source yields records one at a time and io.EOF once exhausted.
type Source[T any] interface {
	Next() (T, error)
}

// Buffer shuffles the records of a Source using at most capacity slots.
type Buffer[T any] struct {
	src       Source[T]
	capacity  int
	slots     []T
	rng       *Rand
	filled    bool
	exhausted bool
}

// New creates a shuffle buffer over src. A nil seed draws one from the
// operating system. Capacity 0 passes records through unchanged.
func New[T any](src Source[T], capacity int, seed *uint64) *Buffer[T] {
	if capacity < 0 {
		capacity = 0
	}

	s := uint64(0)
	if seed != nil {
		s = *seed
	} else if capacity > 0 {
		s = EntropySeed()
	}

	return &Buffer[T]{
		src:      src,
		capacity: capacity,
		slots:    make([]T, 0, capacity),
		rng:      NewRand(s),
	}
}

// Next returns the next record in shuffled order, or io.EOF once the source
// is exhausted and the pool is empty.
//
// An error from the source other than io.EOF is returned as is and leaves the
// pool untouched; calling Next again resumes where it stopped.
func (b *Buffer[T]) Next() (T, error) {
	var zero T

	if b.capacity == 0 {
		return b.src.Next()
	}

	if !b.filled {
		if err := b.fill(); err != nil {
			return zero, err
		}
	}

	if !b.exhausted {
		rec, err := b.src.Next()
		switch {
		case err == nil:
			i := b.rng.Intn(b.capacity)
			out := b.slots[i]
			b.slots[i] = rec
			return out, nil
		case errors.Is(err, io.EOF):
			b.exhausted = true
		default:
			return zero, err
		}
	}

	return b.drain()
}

// Len returns the number of records held in the pool.
func (b *Buffer[T]) Len() int {
	return len(b.slots)
}

// Cap returns the pool capacity.
func (b *Buffer[T]) Cap() int {
	return b.capacity
}

func (b *Buffer[T]) fill() error {
	for len(b.slots) < b.capacity {
		rec, err := b.src.Next()
		if errors.Is(err, io.EOF) {
			b.exhausted = true
			break
		}
		if err != nil {
			return err
		}
		b.slots = append(b.slots, rec)
	}
	b.filled = true
	return nil
}

func (b *Buffer[T]) drain() (T, error) {
	var zero T

	n := len(b.slots)
	if n == 0 {
		return zero, io.EOF
	}

	i := b.rng.Intn(n)
	out := b.slots[i]
	b.slots[i] = b.slots[n-1]
	b.slots[n-1] = zero
	b.slots = b.slots[:n-1]
	return out, nil
}
