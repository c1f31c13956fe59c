package codec

import (
	"encoding/binary"
	"errors"
	"io"
	"math"

	"github.com/ssargent/tfrecord/pkg/checksum"
)

const (
	lengthSize   = 8
	checksumSize = 4
	headerSize   = lengthSize + checksumSize

	// FramingSize is the number of bytes a record adds around its payload.
	FramingSize = headerSize + checksumSize

	// maxLength keeps the doubled arena size representable as an int.
	maxLength = math.MaxInt / 2
)

// Reader reads framed records from a sequential byte stream.
type Reader struct {
	r              io.Reader
	checkIntegrity bool
	maxRecordSize  uint64
	header         [headerSize]byte
	footer         [checksumSize]byte
	payload        arena
	offset         int64
	err            error // sticky; set once the stream cannot be resumed
}

// NewReader creates a reader over r. When checkIntegrity is false the stored
// checksums are read but never verified.
func NewReader(r io.Reader, checkIntegrity bool) *Reader {
	return &Reader{
		r:              r,
		checkIntegrity: checkIntegrity,
	}
}

// SetMaxRecordSize rejects records whose length field exceeds n with
// ErrRecordTooLarge. Zero means no limit.
func (r *Reader) SetMaxRecordSize(n uint64) {
	r.maxRecordSize = n
}

// ReadNext reads the next record and returns its payload. It returns io.EOF
// when the stream ends on a record boundary.
//
// The payload is only valid until the next call. A payload checksum mismatch
// is returned as *ChecksumError with the reader positioned at the next record,
// so the caller may keep reading. Every other error is sticky.
func (r *Reader) ReadNext() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	start := r.offset

	n, err := io.ReadFull(r.r, r.header[:lengthSize])
	r.offset += int64(n)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, r.fail(io.EOF)
		}
		return nil, r.fail(r.readError("read length", FieldLength, start, n, lengthSize, err))
	}

	n, err = io.ReadFull(r.r, r.header[lengthSize:])
	r.offset += int64(n)
	if err != nil {
		return nil, r.fail(r.readError("read length checksum", "length checksum", start, n, checksumSize, err))
	}

	lengthBytes := r.header[:lengthSize]
	if r.checkIntegrity {
		stored := binary.LittleEndian.Uint32(r.header[lengthSize:])
		if computed := checksum.Mask(lengthBytes); computed != stored {
			// The length cannot be trusted, so there is no way to find the next record.
			return nil, r.fail(&ChecksumError{Field: FieldLength, Offset: start, Stored: stored, Computed: computed})
		}
	}

	length := binary.LittleEndian.Uint64(lengthBytes)
	if length > maxLength || (r.maxRecordSize > 0 && length > r.maxRecordSize) {
		return nil, r.fail(recordTooLarge(start, length))
	}

	n, err = r.payload.fill(r.r, int(length))
	r.offset += int64(n)
	if err != nil {
		return nil, r.fail(r.readError("read payload", FieldPayload, start, n, int(length), err))
	}
	payload := r.payload.bytes()

	n, err = io.ReadFull(r.r, r.footer[:])
	r.offset += int64(n)
	if err != nil {
		return nil, r.fail(r.readError("read payload checksum", "payload checksum", start, n, checksumSize, err))
	}

	if r.checkIntegrity {
		stored := binary.LittleEndian.Uint32(r.footer[:])
		if computed := checksum.Mask(payload); computed != stored {
			return nil, &ChecksumError{Field: FieldPayload, Offset: start, Stored: stored, Computed: computed}
		}
	}

	return r.payload.bytes(), nil
}

// Offset returns the number of bytes consumed from the stream.
func (r *Reader) Offset() int64 {
	return r.offset
}

// BufferCap returns the current capacity of the payload buffer.
func (r *Reader) BufferCap() int {
	return r.payload.capacity()
}

func (r *Reader) fail(err error) error {
	r.err = err
	return err
}

// readError classifies a failed io.ReadFull. Any end of input past the first
// byte of the length field means the record was cut short.
func (r *Reader) readError(op, field string, offset int64, got, want int, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return truncated(field, offset, got, want)
	}
	return &IOError{Op: op, Err: err}
}
