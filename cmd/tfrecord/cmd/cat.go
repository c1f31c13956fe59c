package cmd

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/tfrecord/pkg/example"
	"github.com/ssargent/tfrecord/pkg/store"
)

type catOptions struct {
	path        string
	sequence    bool
	keys        []string
	contextKeys []string
	listKeys    []string
	limit       int
	skipErrors  bool
	read        readOverrides
}

// catCmd represents the cat command
var catCmd = &cobra.Command{
	Use:   "cat <file>",
	Short: "Print records as JSON lines",
	Long: `Print the Example or SequenceExample records of a file, one JSON object
per line.

Examples:
  tfrecord cat train.tfrecord --keys image,label
  tfrecord cat train.tfrecord.gz --compression gzip --shuffle 1000 --seed 7
  tfrecord cat seq.tfrecord --sequence --context-keys length --list-keys tokens`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := catOptions{
			path: args[0],
			read: readOverridesFromFlags(cmd),
		}
		opts.sequence, _ = cmd.Flags().GetBool("sequence")
		opts.keys, _ = cmd.Flags().GetStringSlice("keys")
		opts.contextKeys, _ = cmd.Flags().GetStringSlice("context-keys")
		opts.listKeys, _ = cmd.Flags().GetStringSlice("list-keys")
		opts.limit, _ = cmd.Flags().GetInt("limit")
		opts.skipErrors, _ = cmd.Flags().GetBool("skip-errors")

		return runCat(opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(catCmd)

	addReadFlags(catCmd)
	addShuffleFlags(catCmd)
	catCmd.Flags().Bool("sequence", false, "Records are SequenceExamples")
	catCmd.Flags().StringSlice("keys", nil, "Feature keys to print (default all)")
	catCmd.Flags().StringSlice("context-keys", nil, "Context keys to print with --sequence (default all)")
	catCmd.Flags().StringSlice("list-keys", nil, "Feature list keys to print with --sequence (default all)")
	catCmd.Flags().Int("limit", 0, "Stop after this many records (0 = no limit)")
	catCmd.Flags().Bool("skip-errors", false, "Skip records that fail checksum, decoding or projection")
}

func projection(keys []string) example.Projection {
	if len(keys) == 0 {
		return example.All()
	}
	return example.Keys(keys...)
}

func runCat(opts catOptions, out io.Writer) error {
	rc, sc, err := opts.read.readerConfig(opts.path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)

	if opts.sequence {
		stream, err := store.OpenSequenceExamples(store.SequenceReaderConfig{
			ReaderConfig: rc,
			Projection: example.SequenceProjection{
				Context:      projection(opts.contextKeys),
				FeatureLists: projection(opts.listKeys),
			},
			Shuffle: sc,
		})
		if err != nil {
			return err
		}
		defer stream.Close()

		return printStream(stream, opts, func(seq example.SequenceExample) error {
			return enc.Encode(toJSONSequence(seq))
		})
	}

	stream, err := store.OpenExamples(store.ExampleReaderConfig{
		ReaderConfig: rc,
		Projection:   projection(opts.keys),
		Shuffle:      sc,
	})
	if err != nil {
		return err
	}
	defer stream.Close()

	return printStream(stream, opts, func(features example.Features) error {
		return enc.Encode(toJSONFeatures(features))
	})
}

func printStream[T any](stream *store.Stream[T], opts catOptions, emit func(T) error) error {
	log := container.Logger()

	printed, skipped := 0, 0
	for record, err := range stream.All() {
		if err != nil {
			if opts.skipErrors && store.Recoverable(err) {
				skipped++
				log.Warn().Err(err).Str("kind", store.ErrorKind(err)).Msg("skipping record")
				continue
			}
			return fmt.Errorf("%s: %w", opts.path, err)
		}

		if err := emit(record); err != nil {
			return err
		}
		printed++
		if opts.limit > 0 && printed >= opts.limit {
			break
		}
	}

	log.Debug().Int("printed", printed).Int("skipped", skipped).Msg("cat finished")
	return nil
}
