package codec

import "io"

// growChunk bounds how far the arena grows ahead of the bytes actually read.
const growChunk = 1 << 20

// arena is the reusable payload buffer owned by a Reader. Only the first n
// bytes are valid.
type arena struct {
	buf []byte
	n   int
}

// fill reads exactly size bytes from r and returns how many were read.
//
// A size larger than the current buffer is read in chunks, so a corrupt
// length field costs at most the bytes the stream really holds. Once the
// whole payload has arrived the buffer is reallocated at twice its size.
// On error the previous buffer is kept.
func (a *arena) fill(r io.Reader, size int) (int, error) {
	if size <= len(a.buf) {
		a.n = size
		return io.ReadFull(r, a.buf[:size])
	}

	buf := a.buf
	got := 0
	for got < size {
		step := min(size-got, growChunk)
		if len(buf) < got+step {
			next := make([]byte, min(size, max(got+step, 2*len(buf))))
			copy(next, buf[:got])
			buf = next
		}
		n, err := io.ReadFull(r, buf[got:got+step])
		got += n
		if err != nil {
			return got, err
		}
	}

	full := make([]byte, 2*size)
	copy(full, buf[:size])
	a.buf = full
	a.n = size
	return got, nil
}

func (a *arena) bytes() []byte {
	return a.buf[:a.n]
}

func (a *arena) capacity() int {
	return len(a.buf)
}
