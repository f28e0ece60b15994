// Package tex reads and writes the fixed-layout header of MHW TEX texture
// files.
//
// The layout is not self-describing: every field sits at a fixed offset from
// the start of the file. Known fields are read with absolute seeks; blocks
// whose meaning is unknown are written back verbatim from the constants below.
//
//	0x00  magic "TEX\0" + version preamble (20 bytes)
//	0x14  mip count, width, height, depth (int32 each)
//	0x24  format code (int32)
//	0x28  reserved block (28 bytes)
//	0x44  new-DDS flag (int32)
//	0x48  reserved (16 bytes)
//	0x58  8 x int32 -1
//	0x78  width (int32)
//	0x7C  3 x {uint16 pitch, uint16 width, 8 reserved bytes}
//	0xA0  reserved (24 bytes)
//	0xB8  mip table: mip count x {uint32 offset, uint32 size}
package tex

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// Magic is the TEX signature at offset 0 ("TEX\0").
const Magic = 0x00584554

// Field offsets.
const (
	offsetMipCount  = 0x14
	offsetFormat    = 0x24
	offsetFlag      = 0x44
	offsetMipTable  = 0xB8
	mipEntrySize    = 8
	pitchGroupCount = 3
)

// HeaderSize is the size of the fixed header, which is also where the mip
// table starts.
const HeaderSize = offsetMipTable

var (
	// magicPreamble is the signature followed by version fields.
	magicPreamble = []byte{
		0x54, 0x45, 0x58, 0x00, 0x10, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0x02, 0x00, 0x00, 0x00,
	}

	// reservedBlock follows the format code. Meaning unknown.
	reservedBlock = []byte{
		0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
		0xFF, 0xFF, 0xFF, 0xFF, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00,
	}
)

// Sizes of the zero-filled reserved runs.
const (
	reservedAfterFlag   = 16
	sentinelCount       = 8
	reservedPitchGroup  = 8
	reservedBeforeTable = 24
)

// MipEntry is one row of the TEX mip table.
type MipEntry struct {
	Offset uint32
	Size   uint32 // unused by the game, written as zero
}

// Header is the parsed form of a TEX header.
type Header struct {
	Magic    uint32
	MipCount int32
	Width    int32
	Height   int32
	Depth    int32
	Format   texture.PixelFormat
	NewDDS   bool
	MipTable []MipEntry

	// Offset is the payload offset, read as a 64-bit value at 0xB8.
	Offset int64
}

// Parse reads a TEX header from r.
func Parse(r io.ReadSeeker) (*Header, error) {
	h := &Header{}

	if err := readAt(r, 0, &h.Magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if h.Magic != Magic {
		return nil, &texture.BadMagicError{Expected: Magic, Actual: h.Magic}
	}

	dims := struct{ MipCount, Width, Height, Depth int32 }{}
	if err := readAt(r, offsetMipCount, &dims); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	h.MipCount, h.Width, h.Height, h.Depth = dims.MipCount, dims.Width, dims.Height, dims.Depth

	var code int32
	if err := readAt(r, offsetFormat, &code); err != nil {
		return nil, fmt.Errorf("read format: %w", err)
	}
	format, err := texture.ResolveTexCode(code)
	if err != nil {
		return nil, err
	}
	h.Format = format

	var flag int32
	if err := readAt(r, offsetFlag, &flag); err != nil {
		return nil, fmt.Errorf("read flag: %w", err)
	}
	h.NewDDS = flag == 1

	if err := readAt(r, offsetMipTable, &h.Offset); err != nil {
		return nil, fmt.Errorf("read payload offset: %w", err)
	}

	if err := h.Validate(); err != nil {
		return nil, err
	}

	h.MipTable = make([]MipEntry, h.MipCount)
	if err := readAt(r, offsetMipTable, h.MipTable); err != nil {
		return nil, fmt.Errorf("read mip table: %w", err)
	}

	return h, nil
}

// Validate checks the header invariants.
func (h *Header) Validate() error {
	if h.Magic != Magic {
		return &texture.BadMagicError{Expected: Magic, Actual: h.Magic}
	}
	if h.MipCount < 1 || h.MipCount > texture.MaxMipLevels {
		return fmt.Errorf("%w: mip count %d", texture.ErrInvalidHeader, h.MipCount)
	}
	if h.Width <= 0 || h.Height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", texture.ErrInvalidHeader, h.Width, h.Height)
	}
	if h.Offset < 0 {
		return fmt.Errorf("%w: payload offset %d", texture.ErrInvalidHeader, h.Offset)
	}
	return nil
}

// MipChain regenerates the mip layout for a TEX file of the given shape. The
// first level starts right after the mip table.
func MipChain(format texture.PixelFormat, width, height, mipCount int32, raw bool) ([]texture.MipLevel, error) {
	base := int64(HeaderSize) + int64(mipCount)*mipEntrySize
	return texture.MipChain(width, height, mipCount, format.StorageClass(), raw, base)
}

// Write serializes a TEX file: the fixed header, a mip table built from
// levels, then payload verbatim.
func Write(w io.Writer, format texture.PixelFormat, width, height int32, raw bool, levels []texture.MipLevel, payload []byte) error {
	var buf bytes.Buffer
	buf.Grow(HeaderSize + len(levels)*mipEntrySize)

	le := binary.LittleEndian
	buf.Write(magicPreamble)
	for _, v := range []int32{int32(len(levels)), width, height, 1, format.Code()} {
		binary.Write(&buf, le, v)
	}
	buf.Write(reservedBlock)

	var flag int32
	if format.IsNewDDS() {
		flag = 1
	}
	binary.Write(&buf, le, flag)
	buf.Write(make([]byte, reservedAfterFlag))

	for i := 0; i < sentinelCount; i++ {
		binary.Write(&buf, le, int32(-1))
	}
	binary.Write(&buf, le, width)

	pitch := width / 2
	if raw || format == texture.FormatR8G8Unorm {
		pitch = width
	}
	for i := 0; i < pitchGroupCount; i++ {
		binary.Write(&buf, le, int16(pitch))
		binary.Write(&buf, le, int16(width))
		buf.Write(make([]byte, reservedPitchGroup))
	}
	buf.Write(make([]byte, reservedBeforeTable))

	for _, l := range levels {
		binary.Write(&buf, le, MipEntry{Offset: uint32(l.Offset)})
	}

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if _, err := w.Write(payload); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	return nil
}

func readAt(r io.ReadSeeker, offset int64, v any) error {
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	return binary.Read(r, binary.LittleEndian, v)
}
