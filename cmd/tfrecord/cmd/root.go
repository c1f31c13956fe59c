/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/ssargent/tfrecord/pkg/api"
	"github.com/ssargent/tfrecord/pkg/config"
	"github.com/ssargent/tfrecord/pkg/di"
	"github.com/ssargent/tfrecord/pkg/logger"
)

var (
	container     *di.Container
	metricsServer *api.Server
)

// SetContainer injects the dependency container
func SetContainer(c *di.Container) {
	container = c
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tfrecord",
	Short: "Inspect, verify and write TFRecord files",
	Long: `tfrecord reads and writes files of length-prefixed, CRC32C-checksummed
records, the container format used for TensorFlow training data.

Records holding Example or SequenceExample messages can be printed as JSON
lines, optionally restricted to a set of feature keys and shuffled through a
bounded buffer.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (default "+config.GetDefaultConfigPath()+" when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("pretty", false, "Human readable log output")
	rootCmd.PersistentFlags().String("metrics-addr", "", "Serve Prometheus metrics on host:port while the command runs")
}

// setup loads the configuration, applies flag overrides and wires the
// logger, GOMAXPROCS and the optional metrics endpoint
func setup(cmd *cobra.Command, _ []string) error {
	if container == nil {
		container = di.NewContainer()
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("pretty") {
		cfg.Logging.Pretty, _ = flags.GetBool("pretty")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:           cfg.Logging.Level,
		TimeFieldFormat: time.RFC3339,
		PrettyPrint:     cfg.Logging.Pretty,
		FileName:        cfg.Logging.File,
	}, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	container.Configure(cfg, log)

	if _, err := maxprocs.Set(maxprocs.Logger(container.Logger().Printf)); err != nil {
		container.Logger().Warn().Err(err).Msg("failed to set GOMAXPROCS")
	}

	if cfg.Metrics.Addr != "" {
		metricsServer, err = api.StartServer(api.ServerConfig{
			Addr:     cfg.Metrics.Addr,
			Gatherer: container.Gatherer(),
			Logger:   container.Logger().Zerolog(),
		})
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}

	container.Logger().Debug().Str("command", cmd.CommandPath()).Msg("starting")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(ctx); err != nil {
			container.Logger().Warn().Err(err).Msg("failed to stop metrics server")
		}
		metricsServer = nil
	}
	return container.Close()
}

// loadConfig reads the file named by --config, or the default config file
// when it exists, or falls back to built-in defaults
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.LoadConfig(path)
	}

	path = config.GetDefaultConfigPath()
	if config.ConfigExists(path) {
		return config.LoadConfig(path)
	}
	return config.DefaultConfig(), nil
}
