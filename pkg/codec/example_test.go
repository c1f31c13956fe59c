package codec_test

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/ssargent/tfrecord/pkg/codec"
)

// ExampleWriter demonstrates writing records and reading them back
func ExampleWriter() {
	var buf bytes.Buffer
	w := codec.NewWriter(&buf)

	for _, p := range []string{"first", "second", ""} {
		if err := w.Write([]byte(p)); err != nil {
			log.Fatal(err)
		}
	}

	fmt.Printf("Wrote %d bytes\n", w.Size())

	r := codec.NewReader(&buf, true)
	for {
		payload, err := r.ReadNext()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Fatal(err)
		}
		fmt.Printf("Payload: %q\n", payload)
	}

	// Output:
	// Wrote 59 bytes
	// Payload: "first"
	// Payload: "second"
	// Payload: ""
}

// ExampleChecksumError demonstrates detecting a corrupted payload
func ExampleChecksumError() {
	record := codec.Encode([]byte("payload"))
	record[14] ^= 0x01

	_, err := codec.NewReader(bytes.NewReader(record), true).ReadNext()

	var csErr *codec.ChecksumError
	if errors.As(err, &csErr) {
		fmt.Printf("corrupted %s at offset %d\n", csErr.Field, csErr.Offset)
	}

	// Output:
	// corrupted payload at offset 0
}
