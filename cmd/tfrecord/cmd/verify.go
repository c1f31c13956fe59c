package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/store"
)

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <file>...",
	Short: "Check the framing and checksums of every record",
	Long: `Read each file end to end with checksum verification and report damaged
records. With --repair, an uncompressed file that ends in a partial or
unreadable record is truncated after the last complete one.

Examples:
  tfrecord verify train.tfrecord
  tfrecord verify --repair interrupted.tfrecord`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		repair, _ := cmd.Flags().GetBool("repair")
		return runVerify(args, repair, verifyOverridesFromFlags(cmd), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(verifyCmd)

	verifyCmd.Flags().String("compression", "", "Input compression: none, gzip, zlib")
	verifyCmd.Flags().Bool("repair", false, "Truncate a damaged tail of an uncompressed file")
}

// errVerifyFailed is returned when at least one file has damaged records
var errVerifyFailed = errors.New("verification failed")

func runVerify(paths []string, repair bool, read verifyOverrides, out io.Writer) error {
	failed := false
	for _, path := range paths {
		rc, err := read.readerConfig(path)
		if err != nil {
			return err
		}

		var result *store.VerifyResult
		if repair {
			result, err = store.Repair(rc)
		} else {
			result, err = store.Verify(rc)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		status := "ok"
		if result.Truncated {
			status = "repaired"
		}
		if result.RecordsCorrupted > 0 || (result.Failure != nil && !result.Truncated) {
			status = "damaged"
			failed = true
		}

		fmt.Fprintf(out, "%s: %s, %d records valid, %d corrupt", path, status, result.RecordsValidated, result.RecordsCorrupted)
		if result.Failure != nil {
			fmt.Fprintf(out, ", stopped at offset %d: %v", result.LastFrameOffset, result.Failure)
		}
		if result.Truncated {
			fmt.Fprintf(out, ", truncated %d -> %d bytes", result.FileSizeBefore, result.FileSizeAfter)
		}
		fmt.Fprintln(out)
	}

	if failed {
		return errVerifyFailed
	}
	return nil
}
