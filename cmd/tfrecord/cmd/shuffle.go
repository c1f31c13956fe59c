package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/store"
)

// defaultShuffleCapacity applies when neither --shuffle nor the config sets a size
const defaultShuffleCapacity = 10000

var errSameFile = errors.New("input and output are the same file")

// shuffleCmd represents the shuffle command
var shuffleCmd = &cobra.Command{
	Use:   "shuffle <input> <output>",
	Short: "Copy records to a new file in shuffled order",
	Long: `Copy the raw records of input to output through a bounded shuffle
buffer. Payloads are not decoded. The same seed and buffer size always
produce the same output order. --shuffle 0 copies records in file order.

Example:
  tfrecord shuffle --shuffle 50000 --seed 1 train.tfrecord train-shuffled.tfrecord`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		outCompression, _ := cmd.Flags().GetString("out-compression")
		return runShuffle(args[0], args[1], outCompression, readOverridesFromFlags(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(shuffleCmd)

	addReadFlags(shuffleCmd)
	addShuffleFlags(shuffleCmd)
	shuffleCmd.Flags().String("out-compression", "", "Output compression: none, gzip, zlib (default from config)")
}

func runShuffle(in, out, outCompression string, read readOverrides, w io.Writer) error {
	same, err := samePath(in, out)
	if err != nil {
		return err
	}
	if same {
		return fmt.Errorf("%s: %w", out, errSameFile)
	}

	rc, sc, err := read.readerConfig(in)
	if err != nil {
		return err
	}
	if read.shuffle == nil && sc.Capacity == 0 {
		sc.Capacity = defaultShuffleCapacity
	}

	wc, err := container.WriterConfig(out)
	if err != nil {
		return err
	}
	if outCompression != "" {
		if wc.Compression, err = store.ParseCompression(outCompression); err != nil {
			return err
		}
	}

	stream, err := store.OpenPayloads(rc, sc)
	if err != nil {
		return err
	}
	defer stream.Close()

	writer, err := store.CreateWriter(wc)
	if err != nil {
		return err
	}

	var n int64
	for payload, err := range stream.All() {
		if err != nil {
			writer.Close()
			return fmt.Errorf("%s: %w", in, err)
		}
		if err := writer.Write(payload); err != nil {
			writer.Close()
			return fmt.Errorf("%s: %w", out, err)
		}
		n++
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("%s: %w", out, err)
	}

	fmt.Fprintf(w, "shuffled %d records into %s\n", n, out)
	return nil
}

// samePath reports whether a and b name the same file, either by path or,
// when both exist, by identity.
func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	if absA == absB {
		return true, nil
	}

	infoA, errA := os.Stat(absA)
	infoB, errB := os.Stat(absB)
	if errA != nil || errB != nil {
		return false, nil
	}
	return os.SameFile(infoA, infoB), nil
}
