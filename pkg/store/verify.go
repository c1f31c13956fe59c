package store

import (
	"errors"
	"io"
	"os"
	"time"

	"github.com/ssargent/tfrecord/pkg/codec"
)

// VerifyResult holds the outcome of a file integrity check
type VerifyResult struct {
	RecordsValidated int64         // Records with intact framing and checksums
	RecordsCorrupted int64         // Records skipped for a payload checksum mismatch
	LastFrameOffset  int64         // End of the last complete record frame
	FileSizeBefore   int64         // File size when the check started
	FileSizeAfter    int64         // File size after repair
	Failure          error         // Error that ended the scan early, if any
	Truncated        bool          // Whether Repair cut the file
	Duration         time.Duration // Time spent
}

// OK reports whether every record was intact
func (r *VerifyResult) OK() bool {
	return r.Failure == nil && r.RecordsCorrupted == 0
}

// Verify scans the whole file with integrity checking enabled. It only
// returns an error when the file cannot be opened; record level failures
// are reported in the result.
func Verify(config ReaderConfig) (*VerifyResult, error) {
	startTime := time.Now()

	info, err := os.Stat(config.FilePath)
	if err != nil {
		return nil, err
	}

	config.CheckIntegrity = true
	reader, err := OpenReader(config)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	result := &VerifyResult{
		FileSizeBefore: info.Size(),
		FileSizeAfter:  info.Size(),
	}

	for {
		_, err := reader.ReadNext()
		if err == io.EOF {
			break
		}
		if err != nil && !Recoverable(err) {
			result.Failure = err
			break
		}

		if err != nil {
			result.RecordsCorrupted++
		} else {
			result.RecordsValidated++
		}
		result.LastFrameOffset = reader.Offset()
	}

	result.Duration = time.Since(startTime)
	reader.log.Info().
		Int64("validated", result.RecordsValidated).
		Int64("corrupted", result.RecordsCorrupted).
		Err(result.Failure).
		Dur("duration", result.Duration).
		Msg("verified record file")

	return result, nil
}

// Repair verifies an uncompressed file and truncates it after the last
// complete record when the file ends in a torn frame: a partial record or a
// length that fails its checksum. Any other failure is reported and the file
// is left alone. Records with a payload checksum mismatch are counted but
// kept in place.
func Repair(config ReaderConfig) (*VerifyResult, error) {
	if config.Compression != CompressionNone {
		return nil, ErrRepairCompressed
	}

	// A size limit would make intact records look like damage.
	config.MaxRecordSize = 0

	result, err := Verify(config)
	if err != nil {
		return nil, err
	}
	if !tornTail(result.Failure) {
		return result, nil
	}

	file, err := os.OpenFile(config.FilePath, os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}

	if err := file.Truncate(result.LastFrameOffset); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return nil, err
	}
	if err := file.Close(); err != nil {
		return nil, err
	}

	result.FileSizeAfter = result.LastFrameOffset
	result.Truncated = true

	log := loggerOrNop(config.Logger)
	log.Warn().
		Str("path", config.FilePath).
		Int64("size_before", result.FileSizeBefore).
		Int64("size_after", result.FileSizeAfter).
		Str("reason", ErrorKind(result.Failure)).
		Msg("truncated record file")

	return result, nil
}

// tornTail reports whether err means nothing past the last complete frame
// can be read back.
func tornTail(err error) bool {
	var csErr *codec.ChecksumError
	if errors.As(err, &csErr) {
		return csErr.Field == codec.FieldLength
	}
	return errors.Is(err, codec.ErrTruncated)
}
