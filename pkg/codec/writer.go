package codec

import (
	"encoding/binary"
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/ssargent/tfrecord/pkg/checksum"
)

// Writer writes framed records to a byte sink.
type Writer struct {
	w      io.Writer
	header [headerSize]byte
	footer [checksumSize]byte
	size   int64
}

// NewWriter creates a writer over w. Buffering is left to the caller.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Write frames payload and writes it to the sink.
func (w *Writer) Write(payload []byte) error {
	if err := w.writeHeaderAndPayload(payload); err != nil {
		return err
	}
	return w.writeFooter(checksum.Mask(payload))
}

// WriteOverlapped writes the same bytes as Write, but computes the payload
// checksum concurrently with writing the header and payload. The checksum
// goroutine is always joined before WriteOverlapped returns.
func (w *Writer) WriteOverlapped(payload []byte) error {
	var (
		g   errgroup.Group
		sum uint32
	)
	g.Go(func() error {
		sum = checksum.Mask(payload)
		return nil
	})

	err := w.writeHeaderAndPayload(payload)
	// Wait never fails: the checksum task cannot return an error.
	_ = g.Wait()
	if err != nil {
		return err
	}

	return w.writeFooter(sum)
}

// Size returns the number of bytes written so far.
func (w *Writer) Size() int64 {
	return w.size
}

func (w *Writer) writeHeaderAndPayload(payload []byte) error {
	putHeader(w.header[:], len(payload))

	if err := w.write(w.header[:], "write header"); err != nil {
		return err
	}
	return w.write(payload, "write payload")
}

func (w *Writer) writeFooter(sum uint32) error {
	binary.LittleEndian.PutUint32(w.footer[:], sum)
	return w.write(w.footer[:], "write payload checksum")
}

func (w *Writer) write(p []byte, op string) error {
	n, err := w.w.Write(p)
	w.size += int64(n)
	if err != nil {
		return &IOError{Op: op, Err: err}
	}
	if n != len(p) {
		return &IOError{Op: op, Err: io.ErrShortWrite}
	}
	return nil
}

func putHeader(dst []byte, length int) {
	binary.LittleEndian.PutUint64(dst[:lengthSize], uint64(length))
	binary.LittleEndian.PutUint32(dst[lengthSize:headerSize], checksum.Mask(dst[:lengthSize]))
}

// Encode returns payload framed as a single record.
func Encode(payload []byte) []byte {
	return AppendRecord(make([]byte, 0, EncodedSize(len(payload))), payload)
}

// AppendRecord appends the framed record for payload to dst.
func AppendRecord(dst, payload []byte) []byte {
	var header [headerSize]byte
	putHeader(header[:], len(payload))

	dst = append(dst, header[:]...)
	dst = append(dst, payload...)
	return binary.LittleEndian.AppendUint32(dst, checksum.Mask(payload))
}

// EncodedSize returns the size of a framed record with an n byte payload.
func EncodedSize(n int) int {
	return FramingSize + n
}
