// Package codec implements framing for the record-file format.
//
// A record file is a plain concatenation of records with no file header and no
// trailing delimiter. Each record wraps an opaque payload with its length and two
// masked CRC32C checksums (see package checksum).
//
// # Record Format
//
//	[Length(8)][LengthCRC(4)][Payload(Length)][PayloadCRC(4)]
//
// Fields:
//   - Length: 64-bit unsigned payload length (little-endian)
//   - LengthCRC: masked CRC32C of the 8 length bytes (little-endian)
//   - Payload: Length bytes, usually a serialized Example message
//   - PayloadCRC: masked CRC32C of the payload bytes (little-endian)
//
// The total record size is: 16 bytes (framing) + len(payload)
//
// # Reading
//
// Reader.ReadNext returns one payload per call and io.EOF once the stream ends
// cleanly, that is when not a single byte of the next length field is available.
// A stream that ends anywhere inside a record yields ErrTruncated instead.
//
//	r := codec.NewReader(bufio.NewReader(f), true)
//	for {
//	    payload, err := r.ReadNext()
//	    if err == io.EOF {
//	        break
//	    }
//	    if errors.Is(err, codec.ErrChecksumMismatch) {
//	        continue // the caller decides whether corruption is fatal
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    consume(payload)
//	}
//
// The returned payload aliases a buffer owned by the Reader and is only valid
// until the next call to ReadNext. The buffer is reused across records and only
// grows, to twice the required size, when a record does not fit.
//
// # Writing
//
// Writer.Write emits one framed record. Writer.WriteOverlapped produces the same
// bytes but computes the payload checksum on a separate goroutine while the
// header and payload are being written, which helps with large payloads on slow
// sinks.
//
// # Error Handling
//
// Every failure is a distinct, inspectable error:
//   - ErrTruncated: the stream ended inside a record
//   - ErrChecksumMismatch (*ChecksumError): a length or payload checksum did not match
//   - ErrRecordTooLarge: the length field exceeds the configured maximum
//   - *IOError: the underlying reader or writer failed
//
// # Thread Safety
//
// Reader and Writer are not safe for concurrent use.
package codec
