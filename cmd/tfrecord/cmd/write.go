package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/store"
)

// writeCmd represents the write command
var writeCmd = &cobra.Command{
	Use:   "write <output>",
	Short: "Write JSON lines as Example records",
	Long: `Read one JSON object per line, in the format printed by cat, and write
each as an Example (or, with --sequence, a SequenceExample) record.

Examples:
  tfrecord cat in.tfrecord --keys label | tfrecord write labels.tfrecord
  tfrecord write --input examples.jsonl --compression gzip out.tfrecord.gz`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		input, _ := cmd.Flags().GetString("input")
		sequence, _ := cmd.Flags().GetBool("sequence")

		wc, err := container.WriterConfig(args[0])
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("compression") {
			v, _ := cmd.Flags().GetString("compression")
			if wc.Compression, err = store.ParseCompression(v); err != nil {
				return err
			}
		}
		if cmd.Flags().Changed("overlapped") {
			wc.Overlapped, _ = cmd.Flags().GetBool("overlapped")
		}

		in := cmd.InOrStdin()
		if input != "" && input != "-" {
			f, err := os.Open(input)
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}

		n, err := runWrite(in, wc, sequence)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %d records to %s\n", n, args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	writeCmd.Flags().StringP("input", "i", "-", "JSON lines input file")
	writeCmd.Flags().Bool("sequence", false, "Lines hold SequenceExamples")
	writeCmd.Flags().String("compression", "", "Output compression: none, gzip, zlib")
	writeCmd.Flags().Bool("overlapped", false, "Compute checksums concurrently with writing")
}

func runWrite(in io.Reader, wc store.WriterConfig, sequence bool) (int64, error) {
	writer, err := store.CreateWriter(wc)
	if err != nil {
		return 0, err
	}

	n, err := writeLines(in, writer, sequence)
	if closeErr := writer.Close(); err == nil {
		err = closeErr
	}
	return n, err
}

func writeLines(in io.Reader, writer *store.RecordWriter, sequence bool) (int64, error) {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 64<<20)

	var n, line int64
	for scanner.Scan() {
		line++
		if len(scanner.Bytes()) == 0 {
			continue
		}

		if err := writeLine(scanner.Bytes(), writer, sequence); err != nil {
			return n, fmt.Errorf("line %d: %w", line, err)
		}
		n++
	}
	return n, scanner.Err()
}

func writeLine(data []byte, writer *store.RecordWriter, sequence bool) error {
	if sequence {
		var in jsonSequence
		if err := json.Unmarshal(data, &in); err != nil {
			return err
		}
		seq, err := fromJSONSequence(in)
		if err != nil {
			return err
		}
		return writer.WriteSequenceExample(seq)
	}

	var in map[string]jsonFeature
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	features, err := fromJSONFeatures(in)
	if err != nil {
		return err
	}
	return writer.WriteExample(features)
}
