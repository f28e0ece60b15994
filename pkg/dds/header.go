// Package dds reads and writes the DirectDraw Surface headers needed to carry
// MHW texture payloads, including the DX10 extended header.
//
// Only the fields the TEX conversion needs are interpreted. The writer always
// emits the same canonical header so that a TEX → DDS → TEX round trip is
// byte-identical.
package dds

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// DDS header constants
const (
	DDS_MAGIC                    = 0x20534444 // "DDS "
	DDS_HEADER_SIZE              = 124
	DDS_HEADER_FLAGS_CAPS        = 0x1
	DDS_HEADER_FLAGS_HEIGHT      = 0x2
	DDS_HEADER_FLAGS_WIDTH       = 0x4
	DDS_HEADER_FLAGS_PITCH       = 0x8
	DDS_HEADER_FLAGS_PIXELFORMAT = 0x1000
	DDS_HEADER_FLAGS_MIPMAPCOUNT = 0x20000
	DDS_HEADER_FLAGS_LINEARSIZE  = 0x80000

	DDS_SURFACE_FLAGS_COMPLEX = 0x8
	DDS_SURFACE_FLAGS_TEXTURE = 0x1000
	DDS_SURFACE_FLAGS_MIPMAP  = 0x400000

	DDS_PIXELFORMAT_SIZE = 32
	DDS_FOURCC           = 0x4

	D3D10_RESOURCE_DIMENSION_TEXTURE2D = 3
)

// Field offsets from the start of the file.
const (
	offsetFlags       = 0x08
	offsetHeight      = 0x0C
	offsetPitch       = 0x14 // pitch, depth, mip count
	offsetFourCC      = 0x54
	offsetDXGI        = 0x80
	reservedFieldSize = 11 * 4 // dwReserved1
	pixelMaskSize     = 5 * 4  // dwRGBBitCount and the four masks
	capsTailSize      = 4 * 4  // dwCaps2..4, dwReserved2
)

// Payload offsets: the DX10 extended header adds 20 bytes.
const (
	PayloadOffset     = 0x80
	PayloadOffsetDX10 = 0x94
)

// Canonical flags written for every surface.
const (
	headerFlags = DDS_HEADER_FLAGS_CAPS | DDS_HEADER_FLAGS_HEIGHT | DDS_HEADER_FLAGS_WIDTH |
		DDS_HEADER_FLAGS_PIXELFORMAT | DDS_HEADER_FLAGS_MIPMAPCOUNT | DDS_HEADER_FLAGS_LINEARSIZE
	surfaceFlags = DDS_SURFACE_FLAGS_COMPLEX | DDS_SURFACE_FLAGS_TEXTURE | DDS_SURFACE_FLAGS_MIPMAP
)

// Header holds the DDS fields used by the converter.
type Header struct {
	Magic             uint32
	Flags             uint32
	Height            uint32
	Width             uint32
	PitchOrLinearSize uint32
	Depth             uint32
	MipMapCount       uint32
	FourCC            texture.FourCC

	// Format is the resolved pixel format. For the generic DX10 tag it is
	// taken from DX10.DXGIFormat.
	Format texture.PixelFormat

	// DX10 is set only when FourCC is the generic DX10 marker.
	DX10 *DX10Header
}

// DX10Header is the DDS_HEADER_DXT10 extension (20 bytes).
type DX10Header struct {
	DXGIFormat        uint32
	ResourceDimension uint32
	MiscFlag          uint32
	ArraySize         uint32
	MiscFlags2        uint32
}

// IsRaw reports whether the surface is flagged as uncompressed (pitch flag).
func (h *Header) IsRaw() bool {
	return h.Flags&DDS_HEADER_FLAGS_PITCH != 0
}

// PayloadOffset returns where pixel data starts. The DX10 extended header is
// skipped only for compressed surfaces.
func (h *Header) PayloadOffset() int64 {
	if h.Format.UsesDX10() && !h.IsRaw() {
		return PayloadOffsetDX10
	}
	return PayloadOffset
}

// Parse reads a DDS header from r and resolves its pixel format.
//
// The DX10 tag alone cannot tell BC7, BC7 sRGB and BC6H (among others) apart:
// it resolves provisionally to BC7 UNORM, and in that case the DXGI code of the
// extended header decides the real format among the formats written with the
// DX10 tag.
func Parse(r io.ReadSeeker) (*Header, error) {
	h := &Header{}

	if err := readAt(r, 0, &h.Magic); err != nil {
		return nil, fmt.Errorf("read magic: %w", err)
	}
	if h.Magic != DDS_MAGIC {
		return nil, &texture.BadMagicError{Expected: DDS_MAGIC, Actual: h.Magic}
	}

	if err := readAt(r, offsetFlags, &h.Flags); err != nil {
		return nil, fmt.Errorf("read flags: %w", err)
	}
	dims := struct{ Height, Width uint32 }{}
	if err := readAt(r, offsetHeight, &dims); err != nil {
		return nil, fmt.Errorf("read dimensions: %w", err)
	}
	h.Height, h.Width = dims.Height, dims.Width

	sizes := struct{ PitchOrLinearSize, Depth, MipMapCount uint32 }{}
	if err := readAt(r, offsetPitch, &sizes); err != nil {
		return nil, fmt.Errorf("read mip count: %w", err)
	}
	h.PitchOrLinearSize, h.Depth, h.MipMapCount = sizes.PitchOrLinearSize, sizes.Depth, sizes.MipMapCount
	if h.MipMapCount == 0 {
		h.MipMapCount = 1
	}

	if err := readAt(r, offsetFourCC, &h.FourCC); err != nil {
		return nil, fmt.Errorf("read fourcc: %w", err)
	}
	format, err := texture.ResolveFourCC(h.FourCC)
	if err != nil {
		return nil, err
	}

	if format == texture.FormatBC7Unorm {
		dx10 := &DX10Header{}
		if err := readAt(r, offsetDXGI, dx10); err != nil {
			return nil, fmt.Errorf("read dx10 header: %w", err)
		}
		if format, err = texture.ResolveDXGI(dx10.DXGIFormat); err != nil {
			return nil, err
		}
		// Formats with their own legacy tag are never written behind DX10.
		if !format.UsesDX10() {
			return nil, fmt.Errorf("%w: dxgi code %d (%s) under the DX10 tag", texture.ErrUnknownTexFormat, dx10.DXGIFormat, format)
		}
		h.DX10 = dx10
	}
	h.Format = format

	if err := h.Validate(); err != nil {
		return nil, err
	}
	return h, nil
}

// Validate checks the fields the converter relies on.
func (h *Header) Validate() error {
	if h.Magic != DDS_MAGIC {
		return &texture.BadMagicError{Expected: DDS_MAGIC, Actual: h.Magic}
	}
	if h.Width == 0 || h.Height == 0 || h.Width > 1<<30 || h.Height > 1<<30 {
		return fmt.Errorf("%w: dimensions %dx%d", texture.ErrInvalidHeader, h.Width, h.Height)
	}
	if h.MipMapCount > texture.MaxMipLevels {
		return fmt.Errorf("%w: mip count %d", texture.ErrInvalidHeader, h.MipMapCount)
	}
	return nil
}

// NewHeader builds the canonical header for a surface of the given format.
func NewHeader(format texture.PixelFormat, width, height, mipCount uint32) *Header {
	h := &Header{
		Magic:             DDS_MAGIC,
		Flags:             headerFlags,
		Height:            height,
		Width:             width,
		PitchOrLinearSize: linearSize(format, width, height),
		Depth:             1,
		MipMapCount:       mipCount,
		FourCC:            format.FourCC(),
		Format:            format,
	}
	if code, ok := format.DXGI(); ok {
		h.DX10 = &DX10Header{
			DXGIFormat:        code,
			ResourceDimension: D3D10_RESOURCE_DIMENSION_TEXTURE2D,
			ArraySize:         1,
		}
	}
	return h
}

// linearSize mirrors what the game stores in dwPitchOrLinearSize. It is not
// authoritative and is never read back.
func linearSize(format texture.PixelFormat, width, height uint32) uint32 {
	switch format.StorageClass() {
	case texture.ClassQuarterByte:
		return width * height / 2
	case texture.ClassTwoBytes:
		return width * height * 2
	default:
		return width * height
	}
}

// Size returns the encoded size of the header, DX10 extension included.
func (h *Header) Size() int {
	if h.DX10 != nil {
		return PayloadOffsetDX10
	}
	return PayloadOffset
}

// MarshalBinary encodes the header.
func (h *Header) MarshalBinary() ([]byte, error) {
	buf := bytes.NewBuffer(make([]byte, 0, h.Size()))
	le := binary.LittleEndian

	for _, v := range []uint32{h.Magic, DDS_HEADER_SIZE, h.Flags, h.Height, h.Width, h.PitchOrLinearSize, h.Depth, h.MipMapCount} {
		binary.Write(buf, le, v)
	}
	buf.Write(make([]byte, reservedFieldSize))

	// DDS_PIXELFORMAT
	binary.Write(buf, le, uint32(DDS_PIXELFORMAT_SIZE))
	binary.Write(buf, le, uint32(DDS_FOURCC))
	buf.Write(h.FourCC[:])
	buf.Write(make([]byte, pixelMaskSize))

	binary.Write(buf, le, uint32(surfaceFlags))
	buf.Write(make([]byte, capsTailSize))

	if h.DX10 != nil {
		if err := binary.Write(buf, le, h.DX10); err != nil {
			return nil, fmt.Errorf("write dx10 header: %w", err)
		}
	}
	return buf.Bytes(), nil
}

// Write emits the canonical header for format followed by payload verbatim.
func Write(w io.Writer, format texture.PixelFormat, width, height, mipCount uint32, payload []byte) error {
	header, err := NewHeader(format, width, height, mipCount).MarshalBinary()
	if err != nil {
		return err
	}
	if _, err := w.Write(header); err != nil {
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
