package store

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

// writeRecords creates a record file holding payloads and returns its path
func writeRecords(t *testing.T, dir string, config WriterConfig, payloads ...[]byte) string {
	t.Helper()

	if config.FilePath == "" {
		config.FilePath = filepath.Join(dir, "data.tfrecord")
	}

	writer, err := CreateWriter(config)
	require.NoError(t, err)
	for _, p := range payloads {
		require.NoError(t, writer.Write(p))
	}
	require.NoError(t, writer.Close())

	return config.FilePath
}

// readRecords reads every payload up to the first error
func readRecords(t *testing.T, config ReaderConfig) ([][]byte, error) {
	t.Helper()

	reader, err := OpenReader(config)
	require.NoError(t, err)
	defer reader.Close()

	var payloads [][]byte
	for {
		p, err := reader.ReadNext()
		if err == io.EOF {
			return payloads, nil
		}
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, append([]byte{}, p...))
	}
}

func tempDir(t *testing.T, name string) string {
	t.Helper()

	dir, err := os.MkdirTemp("", name)
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}

// metricValue sums the counter or gauge samples of name whose labels
// include the given ones
func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for k, v := range labels {
				found := false
				for _, l := range m.GetLabel() {
					if l.GetName() == k && l.GetValue() == v {
						found = true
					}
				}
				if !found {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}
