package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/metrics"
)

const (
	// DefaultReadBufferSize is used when ReaderConfig.BufferSize is zero.
	DefaultReadBufferSize = 64 * 1024
	// DefaultWriteBufferSize is used when WriterConfig.BufferSize is zero.
	DefaultWriteBufferSize = 8192
)

// Compression is the whole-file compression applied around the record stream.
type Compression string

const (
	CompressionNone Compression = ""
	CompressionGzip Compression = "gzip"
	CompressionZlib Compression = "zlib"
)

// ParseCompression accepts "", "none", "gzip" and "zlib" in any case.
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "gzip":
		return CompressionGzip, nil
	case "zlib":
		return CompressionZlib, nil
	default:
		return CompressionNone, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

// ReaderConfig holds configuration for a record reader
type ReaderConfig struct {
	FilePath       string           // Path to the record file
	CheckIntegrity bool             // Verify length and payload checksums
	BufferSize     int              // Read buffer size (0 = DefaultReadBufferSize)
	Compression    Compression      // Whole-file compression
	MaxRecordSize  uint64           // Reject larger records (0 = no limit)
	Metrics        *metrics.Metrics // Optional instrumentation
	Logger         *zerolog.Logger  // Optional logger
}

// WriterConfig holds configuration for a record writer
type WriterConfig struct {
	FilePath    string           // Path of the file to create or truncate
	BufferSize  int              // Write buffer size (0 = DefaultWriteBufferSize)
	Compression Compression      // Whole-file compression
	Overlapped  bool             // Compute payload checksums concurrently with writing
	Metrics     *metrics.Metrics // Optional instrumentation
	Logger      *zerolog.Logger  // Optional logger
}

// ShuffleConfig configures the optional shuffle buffer of a stream.
type ShuffleConfig struct {
	Capacity int     // Records held for shuffling (0 = keep file order)
	Seed     *uint64 // Fixed seed; nil draws one from the OS
}

// ExampleReaderConfig holds configuration for an Example stream
type ExampleReaderConfig struct {
	ReaderConfig
	Projection example.Projection
	Shuffle    ShuffleConfig
}

// SequenceReaderConfig holds configuration for a SequenceExample stream
type SequenceReaderConfig struct {
	ReaderConfig
	Projection example.SequenceProjection
	Shuffle    ShuffleConfig
}

// RecordIterator provides streaming access to records
type RecordIterator[T any] interface {
	Next() bool
	Value() T
	Err() error
	Close() error
}

// Errors
var (
	ErrUnknownCompression = errors.New("unknown compression")
	ErrClosed             = errors.New("store: use of closed file")
	ErrRepairCompressed   = errors.New("store: cannot repair a compressed file")
)

func loggerOrNop(l *zerolog.Logger) zerolog.Logger {
	if l == nil {
		return zerolog.Nop()
	}
	return *l
}
