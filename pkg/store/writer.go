package store

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ssargent/tfrecord/pkg/codec"
	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/metrics"
)

// RecordWriter writes framed records to a file. It is safe for concurrent use.
type RecordWriter struct {
	file     *os.File
	buffered *bufio.Writer
	comp     compressor
	writer   *codec.Writer
	config   WriterConfig
	log      zerolog.Logger
	mutex    sync.Mutex
	closed   bool
}

// CreateWriter creates or truncates the file named in config
func CreateWriter(config WriterConfig) (*RecordWriter, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	file, err := os.OpenFile(config.FilePath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}

	size := config.BufferSize
	if size <= 0 {
		size = DefaultWriteBufferSize
	}

	buffered := bufio.NewWriterSize(file, size)
	comp, err := compress(buffered, config.Compression)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("create %s: %w", config.FilePath, err)
	}

	log := loggerOrNop(config.Logger).With().Str("path", config.FilePath).Logger()
	log.Debug().
		Bool("overlapped", config.Overlapped).
		Str("compression", string(config.Compression)).
		Int("buffer_size", size).
		Msg("created record file")

	return &RecordWriter{
		file:     file,
		buffered: buffered,
		comp:     comp,
		writer:   codec.NewWriter(comp),
		config:   config,
		log:      log,
	}, nil
}

// Write appends one record. With WriterConfig.Overlapped set the payload
// checksum is computed while the payload is being written.
func (w *RecordWriter) Write(payload []byte) error {
	return w.write(payload, w.config.Overlapped)
}

// WriteOverlapped appends one record, computing the payload checksum
// concurrently with writing the header and payload.
func (w *RecordWriter) WriteOverlapped(payload []byte) error {
	return w.write(payload, true)
}

// WriteExample encodes features as an Example and appends it
func (w *RecordWriter) WriteExample(features example.Features) error {
	payload, err := example.Marshal(features)
	if err != nil {
		return err
	}
	return w.Write(payload)
}

// WriteSequenceExample encodes seq as a SequenceExample and appends it
func (w *RecordWriter) WriteSequenceExample(seq example.SequenceExample) error {
	payload, err := example.MarshalSequence(seq)
	if err != nil {
		return err
	}
	return w.Write(payload)
}

func (w *RecordWriter) write(payload []byte, overlapped bool) error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}

	start := time.Now()
	mode := metrics.ModePlain
	var err error
	if overlapped {
		mode = metrics.ModeOverlapped
		err = w.writer.WriteOverlapped(payload)
	} else {
		err = w.writer.Write(payload)
	}
	if err != nil {
		w.log.Error().Err(err).Int64("offset", w.writer.Size()).Msg("write record failed")
		return err
	}

	w.config.Metrics.RecordWritten(mode, len(payload), time.Since(start))
	return nil
}

// Flush pushes buffered records to the file without syncing it
func (w *RecordWriter) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}
	return w.flush()
}

// Sync forces a fsync to disk
func (w *RecordWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrClosed
	}
	if err := w.flush(); err != nil {
		return err
	}
	return w.file.Sync()
}

func (w *RecordWriter) flush() error {
	if err := w.comp.Flush(); err != nil {
		return err
	}
	return w.buffered.Flush()
}

// Close finishes the compressed stream, syncs and closes the file
func (w *RecordWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true

	err := w.comp.Close()
	if err == nil {
		err = w.buffered.Flush()
	}
	if err == nil {
		err = w.file.Sync()
	}
	if closeErr := w.file.Close(); err == nil {
		err = closeErr
	}

	w.log.Debug().Err(err).Int64("size", w.writer.Size()).Msg("closed record file")
	return err
}

// Size returns the number of uncompressed record bytes written so far
func (w *RecordWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.writer.Size()
}

// Path returns the file path
func (w *RecordWriter) Path() string {
	return w.config.FilePath
}
