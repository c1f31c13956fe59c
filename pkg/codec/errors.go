package codec

import (
	"errors"
	"fmt"
)

var (
	ErrTruncated        = errors.New("truncated record")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrRecordTooLarge   = errors.New("record too large")
)

// Checksummed record fields.
const (
	FieldLength  = "length"
	FieldPayload = "payload"
)

// ChecksumError describes a failed integrity check. It matches
// ErrChecksumMismatch with errors.Is.
type ChecksumError struct {
	Field    string // FieldLength or FieldPayload
	Offset   int64  // Offset of the record in the stream
	Stored   uint32 // Masked CRC read from the stream
	Computed uint32 // Masked CRC of the bytes actually read
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("%s checksum mismatch at offset %d: stored %#08x, computed %#08x",
		e.Field, e.Offset, e.Stored, e.Computed)
}

func (e *ChecksumError) Unwrap() error {
	return ErrChecksumMismatch
}

// IOError wraps a failure of the underlying reader or writer.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *IOError) Unwrap() error {
	return e.Err
}

func truncated(field string, offset int64, got, want int) error {
	return fmt.Errorf("%w: %s at offset %d: got %d of %d bytes", ErrTruncated, field, offset, got, want)
}

func recordTooLarge(offset int64, length uint64) error {
	return fmt.Errorf("%w: length %d at offset %d", ErrRecordTooLarge, length, offset)
}
