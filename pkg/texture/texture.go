// Package texture provides the pixel format registry shared by the TEX and DDS
// header codecs.
//
// Monster Hunter: World stores textures in a fixed-layout TEX container whose
// format field is a small numeric code. The same textures round-trip through
// standard DDS files, where the format is named by a four-character tag and,
// for formats the legacy tag scheme cannot express, by a DXGI code carried in
// the DX10 extended header.
//
// Every supported format is described once in the formats table below; all
// lookups (TEX code, FourCC, DXGI code, storage class) go through it.
package texture

import "fmt"

// PixelFormat identifies a supported pixel layout. Its value is the TEX
// format code stored on the wire at offset 0x24 of a TEX header.
type PixelFormat int32

// TEX format codes.
const (
	FormatUnknown           PixelFormat = 0
	FormatR8G8B8A8Unorm     PixelFormat = 7
	FormatR8G8B8A8UnormSRGB PixelFormat = 9 // LUTs
	FormatR8G8Unorm         PixelFormat = 19
	FormatBC1Unorm          PixelFormat = 22
	FormatBC1UnormSRGB      PixelFormat = 23
	FormatBC4Unorm          PixelFormat = 24
	FormatBC5Unorm          PixelFormat = 26
	FormatBC6HUF16          PixelFormat = 28
	FormatBC7Unorm          PixelFormat = 30
	FormatBC7UnormSRGB      PixelFormat = 31
)

// DXGI_FORMAT values carried in the DX10 extended header.
const (
	DXGI_FORMAT_UNKNOWN             = 0
	DXGI_FORMAT_R8G8B8A8_UNORM      = 28
	DXGI_FORMAT_R8G8B8A8_UNORM_SRGB = 29
	DXGI_FORMAT_R8G8_UNORM          = 49
	DXGI_FORMAT_BC1_UNORM           = 71
	DXGI_FORMAT_BC1_UNORM_SRGB      = 72
	DXGI_FORMAT_BC4_UNORM           = 80
	DXGI_FORMAT_BC5_UNORM           = 83
	DXGI_FORMAT_BC6H_UF16           = 95
	DXGI_FORMAT_BC7_UNORM           = 98
	DXGI_FORMAT_BC7_UNORM_SRGB      = 99
)

// FourCC is a four-character DDS pixel format tag.
type FourCC [4]byte

// Known tags. FourCCDX10 is the generic marker: the actual format is named by
// the DXGI code in the DX10 extended header.
var (
	FourCCDX10 = FourCC{'D', 'X', '1', '0'}
	FourCCDXT1 = FourCC{'D', 'X', 'T', '1'}
	FourCCBC4U = FourCC{'B', 'C', '4', 'U'}
	FourCCBC5U = FourCC{'B', 'C', '5', 'U'}
	FourCCSRGB = FourCC{'S', 'R', 'G', 'B'}
)

// String returns the tag as text.
func (f FourCC) String() string {
	return string(f[:])
}

// StorageClass groups formats by their bytes-per-pixel equivalent, which is
// what the size and offset arithmetic of both containers depends on.
type StorageClass uint8

const (
	// ClassQuarterByte formats pack 4 bits per pixel (BC1, BC4).
	ClassQuarterByte StorageClass = iota
	// ClassOneByte formats use 8 bits per pixel (BC5, BC6H, BC7).
	ClassOneByte
	// ClassTwoBytes formats use 16 bits per pixel (R8G8).
	ClassTwoBytes
	// ClassFourBytesRaw formats are uncompressed RGBA8. They are sized at four
	// bytes per pixel only when the surface is flagged raw.
	ClassFourBytesRaw
)

func (c StorageClass) String() string {
	switch c {
	case ClassQuarterByte:
		return "4bpp"
	case ClassOneByte:
		return "8bpp"
	case ClassTwoBytes:
		return "16bpp"
	case ClassFourBytesRaw:
		return "32bpp-raw"
	default:
		return fmt.Sprintf("StorageClass(%d)", uint8(c))
	}
}

type formatInfo struct {
	format PixelFormat
	name   string
	tag    string
	fourCC FourCC
	dxgi   uint32
	class  StorageClass
	newDDS bool
}

// formats is the closed, versioned list of supported formats in TEX-code order.
var formats = []formatInfo{
	{FormatR8G8B8A8Unorm, "R8G8B8A8_UNORM", "R8G8B8A8_", FourCCDX10, DXGI_FORMAT_R8G8B8A8_UNORM, ClassFourBytesRaw, false},
	{FormatR8G8B8A8UnormSRGB, "R8G8B8A8_UNORM_SRGB", "SR8G8B8A8_", FourCCDX10, DXGI_FORMAT_R8G8B8A8_UNORM_SRGB, ClassFourBytesRaw, false},
	{FormatR8G8Unorm, "R8G8_UNORM", "R8G8_", FourCCDX10, DXGI_FORMAT_R8G8_UNORM, ClassTwoBytes, false},
	{FormatBC1Unorm, "BC1_UNORM", "DXT1L_", FourCCDXT1, DXGI_FORMAT_BC1_UNORM, ClassQuarterByte, false},
	{FormatBC1UnormSRGB, "BC1_UNORM_SRGB", "BC1S_", FourCCDX10, DXGI_FORMAT_BC1_UNORM_SRGB, ClassQuarterByte, false},
	{FormatBC4Unorm, "BC4_UNORM", "BC4_", FourCCBC4U, DXGI_FORMAT_BC4_UNORM, ClassQuarterByte, false},
	{FormatBC5Unorm, "BC5_UNORM", "BC5_", FourCCBC5U, DXGI_FORMAT_BC5_UNORM, ClassOneByte, false},
	{FormatBC6HUF16, "BC6H_UF16", "BC6_", FourCCDX10, DXGI_FORMAT_BC6H_UF16, ClassOneByte, true},
	{FormatBC7Unorm, "BC7_UNORM", "BC7L_", FourCCDX10, DXGI_FORMAT_BC7_UNORM, ClassOneByte, true},
	{FormatBC7UnormSRGB, "BC7_UNORM_SRGB", "BC7S_", FourCCDX10, DXGI_FORMAT_BC7_UNORM_SRGB, ClassOneByte, true},
}

var (
	byCode   = make(map[PixelFormat]*formatInfo, len(formats))
	byDXGI   = make(map[uint32]*formatInfo, len(formats))
	byFourCC = make(map[FourCC]PixelFormat)
)

func init() {
	for i := range formats {
		info := &formats[i]
		byCode[info.format] = info
		byDXGI[info.dxgi] = info
		if info.fourCC != FourCCDX10 {
			byFourCC[info.fourCC] = info.format
		}
	}
	// Legacy tag, accepted on read only.
	byFourCC[FourCCSRGB] = FormatR8G8B8A8UnormSRGB
	// Provisional: callers must re-resolve through the DX10 header.
	byFourCC[FourCCDX10] = FormatBC7Unorm
}

// Formats returns every supported format in TEX-code order.
func Formats() []PixelFormat {
	out := make([]PixelFormat, len(formats))
	for i, info := range formats {
		out[i] = info.format
	}
	return out
}

// ResolveTexCode maps a TEX format code to its PixelFormat.
func ResolveTexCode(code int32) (PixelFormat, error) {
	if info, ok := byCode[PixelFormat(code)]; ok {
		return info.format, nil
	}
	return FormatUnknown, fmt.Errorf("%w: tex code %d", ErrUnknownTexFormat, code)
}

// ResolveFourCC maps a DDS pixel format tag to its PixelFormat. The generic
// DX10 tag resolves to FormatBC7Unorm as a provisional default; the caller
// must re-resolve it with ResolveDXGI using the DX10 extended header.
func ResolveFourCC(tag FourCC) (PixelFormat, error) {
	if format, ok := byFourCC[tag]; ok {
		return format, nil
	}
	return FormatUnknown, fmt.Errorf("%w: fourcc %q", ErrUnknownTexFormat, tag.String())
}

// ResolveDXGI maps a DXGI format code from the DX10 extended header to its
// PixelFormat.
func ResolveDXGI(code uint32) (PixelFormat, error) {
	if info, ok := byDXGI[code]; ok {
		return info.format, nil
	}
	return FormatUnknown, fmt.Errorf("%w: dxgi code %d", ErrUnknownTexFormat, code)
}

// Valid reports whether f is in the registry.
func (f PixelFormat) Valid() bool {
	_, ok := byCode[f]
	return ok
}

// Code returns the TEX format code.
func (f PixelFormat) Code() int32 {
	return int32(f)
}

// FourCC returns the DDS tag written for f.
func (f PixelFormat) FourCC() FourCC {
	if info, ok := byCode[f]; ok {
		return info.fourCC
	}
	return FourCC{'U', 'N', 'K', 'N'}
}

// UsesDX10 reports whether f is written with the generic DX10 tag and
// therefore needs the DX10 extended header.
func (f PixelFormat) UsesDX10() bool {
	info, ok := byCode[f]
	return ok && info.fourCC == FourCCDX10
}

// DXGI returns the DXGI code for f. ok is false when f does not use the DX10
// tag, in which case the code is not written anywhere.
func (f PixelFormat) DXGI() (code uint32, ok bool) {
	info, found := byCode[f]
	if !found || info.fourCC != FourCCDX10 {
		return DXGI_FORMAT_UNKNOWN, false
	}
	return info.dxgi, true
}

// StorageClass returns the storage class of f. Unknown formats report
// ClassOneByte, the fallback of the size arithmetic.
func (f PixelFormat) StorageClass() StorageClass {
	if info, ok := byCode[f]; ok {
		return info.class
	}
	return ClassOneByte
}

// IsNewDDS reports whether f belongs to the formats the game flags as
// "new DDS" in the TEX header (BC6H and BC7).
func (f PixelFormat) IsNewDDS() bool {
	info, ok := byCode[f]
	return ok && info.newDDS
}

// Tag returns the short file-name tag used for f in extracted file names.
func (f PixelFormat) Tag() string {
	if info, ok := byCode[f]; ok {
		return info.tag
	}
	return "UNKN_"
}

// String returns the DXGI-style name of f.
func (f PixelFormat) String() string {
	if info, ok := byCode[f]; ok {
		return info.name
	}
	return fmt.Sprintf("UNKNOWN(%d)", int32(f))
}
