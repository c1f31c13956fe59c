// Package di provides dependency injection container
package di

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/segmentio/ksuid"

	"github.com/ssargent/tfrecord/pkg/config"
	"github.com/ssargent/tfrecord/pkg/logger"
	"github.com/ssargent/tfrecord/pkg/metrics"
	"github.com/ssargent/tfrecord/pkg/store"
)

// Container holds all the dependencies for the application
type Container struct {
	config   *config.Config
	logger   *logger.Logger
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	runID    ksuid.KSUID
}

// NewContainer creates a new dependency injection container with default
// configuration and a fresh metrics registry
func NewContainer() *Container {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Container{
		config:   config.DefaultConfig(),
		logger:   logger.NewDefault(),
		registry: registry,
		metrics:  metrics.NewMetrics(registry),
		runID:    ksuid.New(),
	}
}

// Configure replaces the configuration and the logger. The logger gets the
// run id attached to every entry.
func (c *Container) Configure(cfg *config.Config, log *logger.Logger) {
	c.config = cfg
	c.logger = log.WithRunID(c.runID.String())
}

// Config returns the active configuration
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the application logger
func (c *Container) Logger() *logger.Logger {
	return c.logger
}

// Metrics returns the record I/O metrics
func (c *Container) Metrics() *metrics.Metrics {
	return c.metrics
}

// Gatherer returns the registry behind Metrics
func (c *Container) Gatherer() prometheus.Gatherer {
	return c.registry
}

// RunID identifies this process in logs
func (c *Container) RunID() ksuid.KSUID {
	return c.runID
}

// ReaderConfig builds a store reader configuration for path from the
// configured reader defaults
func (c *Container) ReaderConfig(path string) (store.ReaderConfig, error) {
	compression, err := store.ParseCompression(c.config.Reader.Compression)
	if err != nil {
		return store.ReaderConfig{}, fmt.Errorf("reader: %w", err)
	}

	return store.ReaderConfig{
		FilePath:       path,
		CheckIntegrity: c.config.Reader.CheckIntegrity,
		BufferSize:     c.config.Reader.BufferSize,
		Compression:    compression,
		MaxRecordSize:  c.config.Reader.MaxRecordSize,
		Metrics:        c.metrics,
		Logger:         c.logger.Zerolog(),
	}, nil
}

// WriterConfig builds a store writer configuration for path from the
// configured writer defaults
func (c *Container) WriterConfig(path string) (store.WriterConfig, error) {
	compression, err := store.ParseCompression(c.config.Writer.Compression)
	if err != nil {
		return store.WriterConfig{}, fmt.Errorf("writer: %w", err)
	}

	return store.WriterConfig{
		FilePath:    path,
		BufferSize:  c.config.Writer.BufferSize,
		Compression: compression,
		Overlapped:  c.config.Writer.Overlapped,
		Metrics:     c.metrics,
		Logger:      c.logger.Zerolog(),
	}, nil
}

// ShuffleConfig returns the configured shuffle buffer settings
func (c *Container) ShuffleConfig() store.ShuffleConfig {
	return store.ShuffleConfig{
		Capacity: c.config.Shuffle.Capacity,
		Seed:     c.config.Shuffle.Seed,
	}
}

// Close releases resources held by the container
func (c *Container) Close() error {
	return c.logger.Close()
}
