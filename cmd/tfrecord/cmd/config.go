package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/tfrecord/pkg/config"
)

// configCmd groups configuration commands
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the tfrecord configuration file",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write a default configuration file",
	Long: `Write the default configuration to path, or to the platform default
location. An existing file is left untouched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GetDefaultConfigPath()
		if len(args) == 1 {
			path = args[0]
		}

		existed := config.ConfigExists(path)
		if _, err := config.BootstrapConfig(path); err != nil {
			return err
		}

		if existed {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration already exists at %s\n", path)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote default configuration to %s\n", path)
		}
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the configuration in effect",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := yaml.Marshal(container.Config())
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}
