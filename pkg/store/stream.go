package store

import (
	"bytes"
	"io"
	"iter"

	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/metrics"
	"github.com/ssargent/tfrecord/pkg/shuffle"
)

// Stream yields decoded records of a file, optionally through a shuffle
// buffer. It is not safe for concurrent use.
type Stream[T any] struct {
	reader   *RecordReader
	buffer   *shuffle.Buffer[T]
	metrics  *metrics.Metrics
	buffered int
}

// OpenExamples opens a file of Example records
func OpenExamples(config ExampleReaderConfig) (*Stream[example.Features], error) {
	r, err := OpenReader(config.ReaderConfig)
	if err != nil {
		return nil, err
	}
	return newStream[example.Features](r, example.NewDecoder(r, config.Projection), config.Shuffle), nil
}

// OpenSequenceExamples opens a file of SequenceExample records
func OpenSequenceExamples(config SequenceReaderConfig) (*Stream[example.SequenceExample], error) {
	r, err := OpenReader(config.ReaderConfig)
	if err != nil {
		return nil, err
	}
	return newStream[example.SequenceExample](r, example.NewSequenceDecoder(r, config.Projection), config.Shuffle), nil
}

// OpenPayloads opens a file for raw payload access. Unlike RecordReader the
// returned payloads are owned by the caller.
func OpenPayloads(config ReaderConfig, shuffleConfig ShuffleConfig) (*Stream[[]byte], error) {
	r, err := OpenReader(config)
	if err != nil {
		return nil, err
	}
	return newStream[[]byte](r, payloadSource{r}, shuffleConfig), nil
}

func newStream[T any](r *RecordReader, src shuffle.Source[T], config ShuffleConfig) *Stream[T] {
	if config.Capacity > 0 {
		seed := "os"
		if config.Seed != nil {
			seed = "fixed"
		}
		r.log.Debug().Int("capacity", config.Capacity).Str("seed", seed).Msg("shuffling records")
	}

	return &Stream[T]{
		reader:  r,
		buffer:  shuffle.New(src, config.Capacity, config.Seed),
		metrics: r.config.Metrics,
	}
}

// Next returns the next record or io.EOF. Errors for which Recoverable
// reports true affect a single record and Next may be called again.
func (s *Stream[T]) Next() (T, error) {
	v, err := s.buffer.Next()

	if n := s.buffer.Len(); n != s.buffered {
		s.metrics.ShuffleBuffered(n - s.buffered)
		s.buffered = n
	}

	if err != nil && err != io.EOF {
		switch ErrorKind(err) {
		case "projection_miss", "empty_feature", "decode":
			// Framing errors were already counted by the reader.
			s.metrics.ReadError(ErrorKind(err))
			s.reader.log.Debug().Err(err).Int64("offset", s.reader.Offset()).Msg("skipping record")
		}
	}
	return v, err
}

// All returns an iterator over the remaining records. Recoverable errors are
// yielded alongside a zero value and iteration continues; any other error is
// yielded once and ends the sequence.
func (s *Stream[T]) All() iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		for {
			v, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(v, err) {
				return
			}
			if err != nil && !Recoverable(err) {
				return
			}
		}
	}
}

// Iterator returns a streaming iterator that stops at the first error
func (s *Stream[T]) Iterator() RecordIterator[T] {
	return &streamIterator[T]{stream: s}
}

// Reader returns the underlying record reader
func (s *Stream[T]) Reader() *RecordReader {
	return s.reader
}

// Close closes the underlying file. Records still held by the shuffle
// buffer are discarded.
func (s *Stream[T]) Close() error {
	if s.buffered != 0 {
		s.metrics.ShuffleBuffered(-s.buffered)
		s.buffered = 0
	}
	return s.reader.Close()
}

// streamIterator implements RecordIterator for streaming access
type streamIterator[T any] struct {
	stream *Stream[T]
	value  T
	err    error
	done   bool
}

func (it *streamIterator[T]) Next() bool {
	if it.done {
		return false
	}

	it.value, it.err = it.stream.Next()
	if it.err != nil {
		it.done = true
		if it.err == io.EOF {
			it.err = nil
		}
		return false
	}
	return true
}

func (it *streamIterator[T]) Value() T {
	return it.value
}

func (it *streamIterator[T]) Err() error {
	return it.err
}

func (it *streamIterator[T]) Close() error {
	// Don't close the underlying stream as it's owned by the caller
	return nil
}

type payloadSource struct {
	r *RecordReader
}

func (s payloadSource) Next() ([]byte, error) {
	payload, err := s.r.ReadNext()
	if err != nil {
		return nil, err
	}
	return bytes.Clone(payload), nil
}
