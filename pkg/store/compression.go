package store

import (
	"bufio"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
)

// decompress wraps r for the given compression. An empty compressed file is
// treated as an empty record stream.
func decompress(r *bufio.Reader, c Compression) (io.ReadCloser, error) {
	switch c {
	case CompressionNone:
		return io.NopCloser(r), nil
	case CompressionGzip, CompressionZlib:
	default:
		return nil, ErrUnknownCompression
	}

	if _, err := r.Peek(1); errors.Is(err, io.EOF) {
		return io.NopCloser(eofReader{}), nil
	}

	if c == CompressionGzip {
		return gzip.NewReader(r)
	}
	return zlib.NewReader(r)
}

type eofReader struct{}

func (eofReader) Read([]byte) (int, error) { return 0, io.EOF }

type compressor interface {
	io.WriteCloser
	Flush() error
}

type nopCompressor struct {
	io.Writer
}

func (nopCompressor) Flush() error { return nil }
func (nopCompressor) Close() error { return nil }

func compress(w io.Writer, c Compression) (compressor, error) {
	switch c {
	case CompressionNone:
		return nopCompressor{w}, nil
	case CompressionGzip:
		return gzip.NewWriter(w), nil
	case CompressionZlib:
		return zlib.NewWriter(w), nil
	default:
		return nil, ErrUnknownCompression
	}
}
