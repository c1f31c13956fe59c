// Package checksum implements the masked CRC32C used by the record-file format.
//
// The record format never stores a raw CRC32C. Every checksum on disk is the
// Castagnoli CRC of the covered bytes, rotated right by 15 bits and offset by a
// fixed delta:
//
//	masked = ((crc >> 15) | (crc << 17)) + 0xa282ead8  (mod 2^32)
//
// Readers and writers of the format must agree on this transform bit for bit.
package checksum

import "hash/crc32"

// MaskDelta is added to the rotated CRC.
const MaskDelta uint32 = 0xa282ead8

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32C returns the unmasked Castagnoli CRC of data.
func CRC32C(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

// Mask computes the masked CRC32C of data.
func Mask(data []byte) uint32 {
	return MaskCRC(CRC32C(data))
}

// MaskCRC applies the masking transform to an already computed CRC32C.
func MaskCRC(crc uint32) uint32 {
	return ((crc >> 15) | (crc << 17)) + MaskDelta
}

// Unmask reverses MaskCRC.
func Unmask(masked uint32) uint32 {
	rot := masked - MaskDelta
	return (rot >> 17) | (rot << 15)
}

// Verify reports whether the masked CRC32C of data equals expected.
func Verify(data []byte, expected uint32) bool {
	return Mask(data) == expected
}
