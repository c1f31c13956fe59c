package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"

	"github.com/ssargent/tfrecord/pkg/codec"
	"github.com/ssargent/tfrecord/pkg/example"
)

// RecordReader provides sequential access to the payloads of a record file
type RecordReader struct {
	file   *os.File
	source io.ReadCloser
	reader *codec.Reader
	config ReaderConfig
	log    zerolog.Logger
	closed bool
}

// OpenReader opens the file named in config for reading
func OpenReader(config ReaderConfig) (*RecordReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	size := config.BufferSize
	if size <= 0 {
		size = DefaultReadBufferSize
	}

	source, err := decompress(bufio.NewReaderSize(file, size), config.Compression)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("open %s: %w", config.FilePath, err)
	}

	var r io.Reader = source
	if config.Compression != CompressionNone {
		r = bufio.NewReaderSize(source, size)
	}

	reader := codec.NewReader(r, config.CheckIntegrity)
	reader.SetMaxRecordSize(config.MaxRecordSize)

	log := loggerOrNop(config.Logger).With().Str("path", config.FilePath).Logger()
	log.Debug().
		Bool("check_integrity", config.CheckIntegrity).
		Str("compression", string(config.Compression)).
		Int("buffer_size", size).
		Msg("opened record file")

	return &RecordReader{
		file:   file,
		source: source,
		reader: reader,
		config: config,
		log:    log,
	}, nil
}

// ReadNext returns the next payload, or io.EOF at the end of the file.
// The payload is only valid until the next call.
func (r *RecordReader) ReadNext() ([]byte, error) {
	if r.closed {
		return nil, ErrClosed
	}

	payload, err := r.reader.ReadNext()
	if err != nil {
		if err != io.EOF {
			r.config.Metrics.ReadError(ErrorKind(err))
			r.log.Warn().Err(err).Int64("offset", r.reader.Offset()).Msg("read record failed")
		}
		return nil, err
	}

	r.config.Metrics.RecordRead(len(payload))
	return payload, nil
}

// Offset returns the position in the uncompressed record stream just past
// the last record read
func (r *RecordReader) Offset() int64 {
	return r.reader.Offset()
}

// Path returns the file path
func (r *RecordReader) Path() string {
	return r.config.FilePath
}

// Close closes the reader and its file
func (r *RecordReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true

	err := r.source.Close()
	if closeErr := r.file.Close(); err == nil {
		err = closeErr
	}
	return err
}

// ErrorKind names the failure class of a read error. It is used as the
// metrics label and in log output.
func ErrorKind(err error) string {
	var csErr *codec.ChecksumError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &csErr):
		return "checksum_" + csErr.Field
	case errors.Is(err, codec.ErrTruncated):
		return "truncated"
	case errors.Is(err, codec.ErrRecordTooLarge):
		return "too_large"
	case errors.Is(err, example.ErrProjectionMiss):
		return "projection_miss"
	case errors.Is(err, example.ErrEmptyFeature):
		return "empty_feature"
	case errors.Is(err, example.ErrDecode):
		return "decode"
	default:
		return "io"
	}
}

// Recoverable reports whether reading may continue after err. Payload
// checksum mismatches and per-record decode failures only affect a single
// record; every other error ends the stream.
func Recoverable(err error) bool {
	var csErr *codec.ChecksumError
	if errors.As(err, &csErr) {
		return csErr.Field == codec.FieldPayload
	}
	return errors.Is(err, example.ErrDecode) ||
		errors.Is(err, example.ErrEmptyFeature) ||
		errors.Is(err, example.ErrProjectionMiss)
}
