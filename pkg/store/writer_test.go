package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/pkg/codec"
	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/metrics"
)

func TestCreateWriter(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_test")
	filePath := filepath.Join(tmpDir, "test.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: filePath})
	require.NoError(t, err)
	assert.NotNil(t, writer)

	// Verify file was created
	assert.FileExists(t, filePath)
	assert.Equal(t, int64(0), writer.Size())
	assert.Equal(t, filePath, writer.Path())

	assert.NoError(t, writer.Close())
}

func TestCreateWriter_DirectoryCreation(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_dir_test")
	nestedDir := filepath.Join(tmpDir, "nested", "deep", "path")

	writer, err := CreateWriter(WriterConfig{FilePath: filepath.Join(nestedDir, "test.tfrecord")})
	require.NoError(t, err)

	// Verify directory was created
	assert.DirExists(t, nestedDir)
	assert.NoError(t, writer.Close())
}

func TestCreateWriter_InvalidPath(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_invalid_test")
	blocker := filepath.Join(tmpDir, "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0644))

	writer, err := CreateWriter(WriterConfig{FilePath: filepath.Join(blocker, "test.tfrecord")})
	assert.Error(t, err)
	assert.Nil(t, writer)
}

func TestCreateWriter_UnknownCompression(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_compression_test")

	writer, err := CreateWriter(WriterConfig{
		FilePath:    filepath.Join(tmpDir, "test.tfrecord"),
		Compression: Compression("lz4"),
	})
	assert.ErrorIs(t, err, ErrUnknownCompression)
	assert.Nil(t, writer)
}

func TestCreateWriter_TruncatesExisting(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_truncate_test")

	path := writeRecords(t, tmpDir, WriterConfig{}, []byte("old"), []byte("older"))
	writeRecords(t, tmpDir, WriterConfig{FilePath: path}, []byte("new"))

	payloads, err := readRecords(t, ReaderConfig{FilePath: path, CheckIntegrity: true})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("new")}, payloads)
}

func TestRecordWriter_RoundTrip(t *testing.T) {
	payloads := [][]byte{
		[]byte("first"),
		{},
		bytes.Repeat([]byte("abc"), 10000),
		[]byte("last"),
	}

	for _, compression := range []Compression{CompressionNone, CompressionGzip, CompressionZlib} {
		for _, overlapped := range []bool{false, true} {
			name := fmt.Sprintf("%s/overlapped=%v", compression, overlapped)
			if compression == CompressionNone {
				name = fmt.Sprintf("none/overlapped=%v", overlapped)
			}

			t.Run(name, func(t *testing.T) {
				tmpDir := tempDir(t, "record_writer_roundtrip_test")
				path := writeRecords(t, tmpDir, WriterConfig{
					Compression: compression,
					Overlapped:  overlapped,
					BufferSize:  512,
				}, payloads...)

				got, err := readRecords(t, ReaderConfig{
					FilePath:       path,
					CheckIntegrity: true,
					Compression:    compression,
					BufferSize:     256,
				})
				require.NoError(t, err)
				require.Len(t, got, len(payloads))
				for i := range payloads {
					assert.Equal(t, payloads[i], got[i])
				}
			})
		}
	}
}

func TestRecordWriter_UncompressedSizeMatchesFile(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_size_test")
	path := filepath.Join(tmpDir, "test.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: path})
	require.NoError(t, err)
	require.NoError(t, writer.Write([]byte("12345")))
	require.NoError(t, writer.WriteOverlapped([]byte("67")))
	assert.Equal(t, int64(codec.EncodedSize(5)+codec.EncodedSize(2)), writer.Size())
	require.NoError(t, writer.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, int64(codec.EncodedSize(5)+codec.EncodedSize(2)), info.Size())
}

func TestRecordWriter_FlushMakesRecordsVisible(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_flush_test")
	path := filepath.Join(tmpDir, "test.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: path})
	require.NoError(t, err)
	defer writer.Close()

	require.NoError(t, writer.Write([]byte("buffered")))
	require.NoError(t, writer.Flush())

	payloads, err := readRecords(t, ReaderConfig{FilePath: path, CheckIntegrity: true})
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("buffered")}, payloads)

	require.NoError(t, writer.Sync())
}

func TestRecordWriter_Closed(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_closed_test")

	writer, err := CreateWriter(WriterConfig{FilePath: filepath.Join(tmpDir, "test.tfrecord")})
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	assert.ErrorIs(t, writer.Write([]byte("late")), ErrClosed)
	assert.ErrorIs(t, writer.Flush(), ErrClosed)
	assert.ErrorIs(t, writer.Sync(), ErrClosed)
	assert.NoError(t, writer.Close())
}

func TestRecordWriter_ConcurrentWrites(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_concurrent_test")
	path := filepath.Join(tmpDir, "test.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: path, Overlapped: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				assert.NoError(t, writer.Write([]byte(fmt.Sprintf("g%d-%d", g, i))))
			}
		}(g)
	}
	wg.Wait()
	require.NoError(t, writer.Close())

	payloads, err := readRecords(t, ReaderConfig{FilePath: path, CheckIntegrity: true})
	require.NoError(t, err)
	assert.Len(t, payloads, 400)
}

func TestRecordWriter_WriteExample(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_example_test")
	path := filepath.Join(tmpDir, "test.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: path})
	require.NoError(t, err)

	require.NoError(t, writer.WriteExample(example.Features{"a": example.Int64Feature(1)}))
	require.NoError(t, writer.WriteSequenceExample(example.SequenceExample{
		Context: example.Features{"len": example.Int64Feature(2)},
	}))
	assert.ErrorIs(t, writer.WriteExample(example.Features{"bad": {}}), example.ErrEmptyFeature)
	require.NoError(t, writer.Close())

	payloads, err := readRecords(t, ReaderConfig{FilePath: path, CheckIntegrity: true})
	require.NoError(t, err)
	require.Len(t, payloads, 2)

	features, err := example.Unmarshal(payloads[0])
	require.NoError(t, err)
	assert.Equal(t, example.Features{"a": example.Int64Feature(1)}, features)
}

func TestRecordWriter_Metrics(t *testing.T) {
	tmpDir := tempDir(t, "record_writer_metrics_test")
	reg := prometheus.NewRegistry()

	writeRecords(t, tmpDir, WriterConfig{Metrics: metrics.NewMetrics(reg)},
		[]byte("one"), []byte("two"), []byte("three"))

	assert.Equal(t, 3.0, metricValue(t, reg, "tfrecord_records_written_total", map[string]string{"mode": metrics.ModePlain}))
	assert.Equal(t, 11.0, metricValue(t, reg, "tfrecord_payload_bytes_written_total", nil))
}
