// Package archive provides a small zstd-compressed container used to persist
// workspace indexes. Each container is a fixed header followed by a single
// zstd stream; the header records both sizes and an xxhash64 checksum of the
// uncompressed content.
package archive

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Magic bytes identifying an archive header.
var Magic = [4]byte{0x54, 0x58, 0x57, 0x53} // "TXWS"

// Version is the current container version.
const Version = 1

// HeaderSize is the fixed binary size of an archive header.
const HeaderSize = 32 // 4 + 2 + 2 + 8 + 8 + 8 bytes

// ErrChecksum is returned when decompressed content does not match the
// checksum stored in the header.
var ErrChecksum = errors.New("archive checksum mismatch")

// Header represents the header of an archive file.
type Header struct {
	Magic            [4]byte
	Version          uint16
	Flags            uint16 // reserved
	Length           uint64 // Uncompressed size
	CompressedLength uint64 // Compressed size
	Checksum         uint64 // xxhash64 of the uncompressed content
}

// Size returns the binary size of the header.
func (h *Header) Size() int {
	return HeaderSize
}

// Validate checks the header for validity.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return fmt.Errorf("invalid magic: expected %x, got %x", Magic, h.Magic)
	}
	if h.Version != Version {
		return fmt.Errorf("unsupported version: %d", h.Version)
	}
	if h.Length == 0 {
		return fmt.Errorf("uncompressed size is zero")
	}
	if h.CompressedLength == 0 {
		return fmt.Errorf("compressed size is zero")
	}
	return nil
}

// MarshalBinary encodes the header to binary format.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	h.EncodeTo(buf)
	return buf, nil
}

// EncodeTo writes the header to the given buffer.
// The buffer must be at least HeaderSize bytes.
func (h *Header) EncodeTo(buf []byte) {
	copy(buf[0:4], h.Magic[:])
	binary.LittleEndian.PutUint16(buf[4:6], h.Version)
	binary.LittleEndian.PutUint16(buf[6:8], h.Flags)
	binary.LittleEndian.PutUint64(buf[8:16], h.Length)
	binary.LittleEndian.PutUint64(buf[16:24], h.CompressedLength)
	binary.LittleEndian.PutUint64(buf[24:32], h.Checksum)
}

// UnmarshalBinary decodes and validates the header.
func (h *Header) UnmarshalBinary(data []byte) error {
	if len(data) < HeaderSize {
		return fmt.Errorf("header data too short: need %d, got %d", HeaderSize, len(data))
	}
	h.DecodeFrom(data)
	return h.Validate()
}

// DecodeFrom reads the header from the given buffer.
// Does not validate - use UnmarshalBinary for validation.
func (h *Header) DecodeFrom(data []byte) {
	copy(h.Magic[:], data[0:4])
	h.Version = binary.LittleEndian.Uint16(data[4:6])
	h.Flags = binary.LittleEndian.Uint16(data[6:8])
	h.Length = binary.LittleEndian.Uint64(data[8:16])
	h.CompressedLength = binary.LittleEndian.Uint64(data[16:24])
	h.Checksum = binary.LittleEndian.Uint64(data[24:32])
}

// NewHeader creates a new archive header.
func NewHeader(uncompressedSize, compressedSize, checksum uint64) *Header {
	return &Header{
		Magic:            Magic,
		Version:          Version,
		Length:           uncompressedSize,
		CompressedLength: compressedSize,
		Checksum:         checksum,
	}
}
