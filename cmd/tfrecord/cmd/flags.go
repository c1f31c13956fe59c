package cmd

import (
	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/store"
)

// readOverrides holds reader flags that were set explicitly and take
// precedence over the configuration file
type readOverrides struct {
	noCheck     bool
	compression *string
	shuffle     *int
	seed        *uint64
}

func addReadFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("no-check", false, "Skip checksum verification")
	cmd.Flags().String("compression", "", "Input compression: none, gzip, zlib")
}

func addShuffleFlags(cmd *cobra.Command) {
	cmd.Flags().Int("shuffle", 0, "Shuffle through a buffer holding this many records")
	cmd.Flags().Uint64("seed", 0, "Shuffle seed (default random)")
}

func readOverridesFromFlags(cmd *cobra.Command) readOverrides {
	var o readOverrides
	flags := cmd.Flags()

	if flags.Changed("no-check") {
		o.noCheck, _ = flags.GetBool("no-check")
	}
	if flags.Changed("compression") {
		v, _ := flags.GetString("compression")
		o.compression = &v
	}
	if flags.Changed("shuffle") {
		v, _ := flags.GetInt("shuffle")
		o.shuffle = &v
	}
	if flags.Changed("seed") {
		v, _ := flags.GetUint64("seed")
		o.seed = &v
	}
	return o
}

// readerConfig builds the store configuration for path
func (o readOverrides) readerConfig(path string) (store.ReaderConfig, store.ShuffleConfig, error) {
	rc, err := container.ReaderConfig(path)
	if err != nil {
		return rc, store.ShuffleConfig{}, err
	}
	sc := container.ShuffleConfig()

	if o.noCheck {
		rc.CheckIntegrity = false
	}
	if o.compression != nil {
		if rc.Compression, err = store.ParseCompression(*o.compression); err != nil {
			return rc, sc, err
		}
	}
	if o.shuffle != nil {
		sc.Capacity = *o.shuffle
	}
	if o.seed != nil {
		sc.Seed = o.seed
	}
	return rc, sc, nil
}

// verifyOverrides holds the verify flags that take precedence over the
// configuration file. Verification always checks integrity and never shuffles.
type verifyOverrides struct {
	compression *string
}

func verifyOverridesFromFlags(cmd *cobra.Command) verifyOverrides {
	var o verifyOverrides
	if cmd.Flags().Changed("compression") {
		v, _ := cmd.Flags().GetString("compression")
		o.compression = &v
	}
	return o
}

func (o verifyOverrides) readerConfig(path string) (store.ReaderConfig, error) {
	rc, err := container.ReaderConfig(path)
	if err != nil {
		return rc, err
	}
	if o.compression != nil {
		if rc.Compression, err = store.ParseCompression(*o.compression); err != nil {
			return rc, err
		}
	}
	return rc, nil
}
