package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/store"
)

// countCmd represents the count command
var countCmd = &cobra.Command{
	Use:   "count <file>...",
	Short: "Count the records in one or more files",
	Long: `Count the records of each file without decoding them.

Example:
  tfrecord count train-*.tfrecord`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCount(args, readOverridesFromFlags(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(countCmd)
	addReadFlags(countCmd)
}

func runCount(paths []string, read readOverrides, out io.Writer) error {
	var total int64
	for _, path := range paths {
		n, err := countFile(path, read)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		total += n

		if len(paths) > 1 {
			fmt.Fprintf(out, "%d\t%s\n", n, path)
		}
	}

	if len(paths) > 1 {
		fmt.Fprintf(out, "%d\ttotal\n", total)
	} else {
		fmt.Fprintf(out, "%d\n", total)
	}
	return nil
}

func countFile(path string, read readOverrides) (int64, error) {
	rc, _, err := read.readerConfig(path)
	if err != nil {
		return 0, err
	}

	reader, err := store.OpenReader(rc)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	var n int64
	for {
		_, err := reader.ReadNext()
		if err == io.EOF {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		n++
	}
}
