package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/tfrecord/pkg/codec"
	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/metrics"
)

// writeIndexed writes n Examples whose "idx" feature counts from zero
func writeIndexed(t *testing.T, dir string, n int) string {
	t.Helper()

	path := filepath.Join(dir, "indexed.tfrecord")
	writer, err := CreateWriter(WriterConfig{FilePath: path})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		require.NoError(t, writer.WriteExample(example.Features{
			"idx":   example.Int64Feature(int64(i)),
			"label": example.BytesFeature([]byte("x")),
		}))
	}
	require.NoError(t, writer.Close())
	return path
}

func indexes(t *testing.T, stream *Stream[example.Features]) []int64 {
	t.Helper()

	var out []int64
	for features, err := range stream.All() {
		require.NoError(t, err)
		out = append(out, features["idx"].Int64s[0])
	}
	return out
}

func TestOpenExamples_Projection(t *testing.T) {
	tmpDir := tempDir(t, "stream_projection_test")
	path := writeIndexed(t, tmpDir, 3)

	stream, err := OpenExamples(ExampleReaderConfig{
		ReaderConfig: ReaderConfig{FilePath: path, CheckIntegrity: true},
		Projection:   example.Keys("idx"),
	})
	require.NoError(t, err)
	defer stream.Close()

	for i := int64(0); i < 3; i++ {
		features, err := stream.Next()
		require.NoError(t, err)
		assert.Equal(t, example.Features{"idx": example.Int64Feature(i)}, features)
	}

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenExamples_ProjectionMissContinues(t *testing.T) {
	tmpDir := tempDir(t, "stream_projection_miss_test")
	path := filepath.Join(tmpDir, "data.tfrecord")
	reg := prometheus.NewRegistry()

	writer, err := CreateWriter(WriterConfig{FilePath: path})
	require.NoError(t, err)
	require.NoError(t, writer.WriteExample(example.Features{"a": example.Int64Feature(1)}))
	require.NoError(t, writer.WriteExample(example.Features{"b": example.Int64Feature(2)}))
	require.NoError(t, writer.WriteExample(example.Features{"a": example.Int64Feature(3)}))
	require.NoError(t, writer.Close())

	stream, err := OpenExamples(ExampleReaderConfig{
		ReaderConfig: ReaderConfig{FilePath: path, CheckIntegrity: true, Metrics: metrics.NewMetrics(reg)},
		Projection:   example.Keys("a"),
	})
	require.NoError(t, err)
	defer stream.Close()

	var (
		values []int64
		errs   []error
	)
	for features, err := range stream.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		values = append(values, features["a"].Int64s[0])
	}

	assert.Equal(t, []int64{1, 3}, values)
	require.Len(t, errs, 1)

	var projErr *example.ProjectionError
	require.ErrorAs(t, errs[0], &projErr)
	assert.Equal(t, "a", projErr.Key)
	assert.Equal(t, 1.0, metricValue(t, reg, "tfrecord_read_errors_total", map[string]string{"kind": "projection_miss"}))
}

func TestOpenExamples_ShuffleIsDeterministic(t *testing.T) {
	tmpDir := tempDir(t, "stream_shuffle_test")
	path := writeIndexed(t, tmpDir, 100)

	read := func(seed uint64) []int64 {
		stream, err := OpenExamples(ExampleReaderConfig{
			ReaderConfig: ReaderConfig{FilePath: path, CheckIntegrity: true},
			Shuffle:      ShuffleConfig{Capacity: 10, Seed: &seed},
		})
		require.NoError(t, err)
		defer stream.Close()
		return indexes(t, stream)
	}

	first := read(42)
	assert.Equal(t, first, read(42))
	assert.ElementsMatch(t, sequence(100), first)
	assert.NotEqual(t, sequence(100), first)
}

func TestOpenExamples_NoShuffleKeepsOrder(t *testing.T) {
	tmpDir := tempDir(t, "stream_order_test")
	path := writeIndexed(t, tmpDir, 20)

	stream, err := OpenExamples(ExampleReaderConfig{ReaderConfig: ReaderConfig{FilePath: path}})
	require.NoError(t, err)
	defer stream.Close()

	assert.Equal(t, sequence(20), indexes(t, stream))
}

func TestStream_ShuffleGauge(t *testing.T) {
	tmpDir := tempDir(t, "stream_gauge_test")
	path := writeIndexed(t, tmpDir, 100)
	reg := prometheus.NewRegistry()

	seed := uint64(7)
	stream, err := OpenExamples(ExampleReaderConfig{
		ReaderConfig: ReaderConfig{FilePath: path, Metrics: metrics.NewMetrics(reg)},
		Shuffle:      ShuffleConfig{Capacity: 10, Seed: &seed},
	})
	require.NoError(t, err)

	_, err = stream.Next()
	require.NoError(t, err)
	assert.Equal(t, 10.0, metricValue(t, reg, "tfrecord_shuffle_buffer_records", nil))

	require.NoError(t, stream.Close())
	assert.Equal(t, 0.0, metricValue(t, reg, "tfrecord_shuffle_buffer_records", nil))
}

func TestStream_Iterator(t *testing.T) {
	tmpDir := tempDir(t, "stream_iterator_test")
	path := writeIndexed(t, tmpDir, 5)

	stream, err := OpenExamples(ExampleReaderConfig{ReaderConfig: ReaderConfig{FilePath: path}})
	require.NoError(t, err)
	defer stream.Close()

	it := stream.Iterator()
	defer it.Close()

	count := 0
	for it.Next() {
		assert.Equal(t, int64(count), it.Value()["idx"].Int64s[0])
		count++
	}
	assert.NoError(t, it.Err())
	assert.Equal(t, 5, count)
	assert.False(t, it.Next())
}

func TestStream_StopsOnFatalError(t *testing.T) {
	tmpDir := tempDir(t, "stream_fatal_test")
	path := writeIndexed(t, tmpDir, 3)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.NoError(t, os.Truncate(path, info.Size()-1))

	stream, err := OpenExamples(ExampleReaderConfig{ReaderConfig: ReaderConfig{FilePath: path, CheckIntegrity: true}})
	require.NoError(t, err)
	defer stream.Close()

	var (
		count int
		errs  []error
	)
	for _, err := range stream.All() {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		count++
	}
	assert.Equal(t, 2, count)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], codec.ErrTruncated)

	it := stream.Iterator()
	assert.False(t, it.Next())
	assert.ErrorIs(t, it.Err(), codec.ErrTruncated)
}

func TestOpenSequenceExamples(t *testing.T) {
	tmpDir := tempDir(t, "stream_sequence_test")
	path := filepath.Join(tmpDir, "seq.tfrecord")

	writer, err := CreateWriter(WriterConfig{FilePath: path, Overlapped: true})
	require.NoError(t, err)
	require.NoError(t, writer.WriteSequenceExample(example.SequenceExample{
		Context: example.Features{
			"length": example.Int64Feature(2),
			"id":     example.BytesFeature([]byte("s1")),
		},
		FeatureLists: example.FeatureLists{
			"tokens": {example.Int64Feature(4), example.Int64Feature(5)},
		},
	}))
	require.NoError(t, writer.Close())

	stream, err := OpenSequenceExamples(SequenceReaderConfig{
		ReaderConfig: ReaderConfig{FilePath: path, CheckIntegrity: true},
		Projection: example.SequenceProjection{
			Context:      example.Keys("length"),
			FeatureLists: example.All(),
		},
	})
	require.NoError(t, err)
	defer stream.Close()

	seq, err := stream.Next()
	require.NoError(t, err)
	assert.Equal(t, example.Features{"length": example.Int64Feature(2)}, seq.Context)
	assert.Equal(t, example.FeatureLists{
		"tokens": {example.Int64Feature(4), example.Int64Feature(5)},
	}, seq.FeatureLists)

	_, err = stream.Next()
	assert.Equal(t, io.EOF, err)
}

func TestOpenPayloads_OwnsPayloads(t *testing.T) {
	tmpDir := tempDir(t, "stream_payloads_test")
	path := writeRecords(t, tmpDir, WriterConfig{}, []byte("one"), []byte("two"), []byte("three"))

	stream, err := OpenPayloads(ReaderConfig{FilePath: path, CheckIntegrity: true}, ShuffleConfig{})
	require.NoError(t, err)
	defer stream.Close()

	var payloads [][]byte
	for p, err := range stream.All() {
		require.NoError(t, err)
		payloads = append(payloads, p)
	}
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two"), []byte("three")}, payloads)
}

func sequence(n int) []int64 {
	out := make([]int64, n)
	for i := range out {
		out[i] = int64(i)
	}
	return out
}
