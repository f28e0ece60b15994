package convert

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goopsie/mhwTexTools/pkg/dds"
	"github.com/goopsie/mhwTexTools/pkg/tex"
	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// makeDDS builds a canonical DDS file with a deterministic payload sized for
// the full mip chain.
func makeDDS(tb testing.TB, format texture.PixelFormat, width, height, mips int32) ([]byte, []byte) {
	tb.Helper()
	levels, err := texture.MipChain(width, height, mips, format.StorageClass(), false, 0)
	if err != nil {
		tb.Fatalf("mip chain: %v", err)
	}
	payload := make([]byte, texture.ChainSize(levels))
	for i := range payload {
		payload[i] = byte(i*31 + int(format))
	}

	var buf bytes.Buffer
	if err := dds.Write(&buf, format, uint32(width), uint32(height), uint32(mips), payload); err != nil {
		tb.Fatalf("write dds: %v", err)
	}
	return buf.Bytes(), payload
}

func TestRoundTrip(t *testing.T) {
	for _, format := range texture.Formats() {
		t.Run(format.String(), func(t *testing.T) {
			ddsIn, payload := makeDDS(t, format, 128, 64, 4)

			texOut, err := DDSToTex(bytes.NewReader(ddsIn))
			if err != nil {
				t.Fatalf("dds to tex: %v", err)
			}
			texPayloadOffset := tex.HeaderSize + 4*8
			if !bytes.Equal(texOut[texPayloadOffset:], payload) {
				t.Error("tex payload differs from dds payload")
			}

			ddsOut, err := TexToDDS(bytes.NewReader(texOut))
			if err != nil {
				t.Fatalf("tex to dds: %v", err)
			}
			if !bytes.Equal(ddsOut, ddsIn) {
				t.Error("dds -> tex -> dds is not byte-identical")
			}

			texAgain, err := DDSToTex(bytes.NewReader(ddsOut))
			if err != nil {
				t.Fatalf("dds to tex: %v", err)
			}
			if !bytes.Equal(texAgain, texOut) {
				t.Error("tex -> dds -> tex is not byte-identical")
			}
		})
	}
}

func TestDDSToTexMipTable(t *testing.T) {
	ddsIn, _ := makeDDS(t, texture.FormatBC1Unorm, 128, 128, 4)
	texOut, err := DDSToTex(bytes.NewReader(ddsIn))
	if err != nil {
		t.Fatal(err)
	}

	base := uint32(tex.HeaderSize + 4*8)
	want := []uint32{base, base + 8192, base + 8192 + 2048, base + 8192 + 2048 + 512}
	for i, w := range want {
		got := binary.LittleEndian.Uint32(texOut[tex.HeaderSize+i*8:])
		if got != w {
			t.Errorf("mip %d offset: got %d, want %d", i, got, w)
		}
	}
}

func TestDDSToTexBC6H(t *testing.T) {
	ddsIn, payload := makeDDS(t, texture.FormatBC6HUF16, 32, 32, 2)
	texOut, err := DDSToTex(bytes.NewReader(ddsIn))
	if err != nil {
		t.Fatal(err)
	}

	h, err := tex.Parse(bytes.NewReader(texOut))
	if err != nil {
		t.Fatal(err)
	}
	if h.Format != texture.FormatBC6HUF16 || !h.NewDDS {
		t.Errorf("got format %v newDDS=%v", h.Format, h.NewDDS)
	}
	// Payload starts after the DX10 header, not at 0x80.
	if !bytes.Equal(texOut[h.Offset:], payload) {
		t.Error("payload read from the wrong offset")
	}
}

func TestDDSToTexRaw(t *testing.T) {
	const size = 16
	var buf bytes.Buffer
	payload := bytes.Repeat([]byte{0x11, 0x22, 0x33, 0x44}, size*size+8*8+4*4)
	if err := dds.Write(&buf, texture.FormatR8G8B8A8Unorm, size, size, 3, nil); err != nil {
		t.Fatal(err)
	}
	// Uncompressed game files carry the legacy SRGB tag and no DX10 header.
	header := bytes.Clone(buf.Bytes()[:dds.PayloadOffset])
	flags := binary.LittleEndian.Uint32(header[0x08:])
	binary.LittleEndian.PutUint32(header[0x08:], flags|dds.DDS_HEADER_FLAGS_PITCH)
	copy(header[0x54:], "SRGB")
	ddsIn := append(header, payload...)

	texOut, err := DDSToTex(bytes.NewReader(ddsIn))
	if err != nil {
		t.Fatal(err)
	}

	base := uint32(tex.HeaderSize + 3*8)
	want := []uint32{base, base + size*size*4, base + size*size*4 + 8*8*4}
	for i, w := range want {
		if got := binary.LittleEndian.Uint32(texOut[tex.HeaderSize+i*8:]); got != w {
			t.Errorf("mip %d offset: got %d, want %d", i, got, w)
		}
	}
	if pitch := binary.LittleEndian.Uint16(texOut[0x7C:]); pitch != size {
		t.Errorf("pitch: got %d, want %d", pitch, size)
	}
	if !bytes.Equal(texOut[base:], payload) {
		t.Error("raw payload not copied from 0x80")
	}
}

func TestConversionErrors(t *testing.T) {
	ddsIn, _ := makeDDS(t, texture.FormatBC5Unorm, 16, 16, 1)
	texIn, err := DDSToTex(bytes.NewReader(ddsIn))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("UnknownTexCode", func(t *testing.T) {
		data := bytes.Clone(texIn)
		binary.LittleEndian.PutUint32(data[0x24:], 999)
		out, err := TexToDDS(bytes.NewReader(data))
		if !errors.Is(err, texture.ErrUnknownTexFormat) {
			t.Errorf("expected ErrUnknownTexFormat, got %v", err)
		}
		if out != nil {
			t.Error("partial output produced")
		}
	})

	t.Run("TexOffsetPastEnd", func(t *testing.T) {
		data := bytes.Clone(texIn)
		binary.LittleEndian.PutUint64(data[tex.HeaderSize:], 1<<20)
		out, err := TexToDDS(bytes.NewReader(data))
		if !errors.Is(err, texture.ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
		if out != nil {
			t.Error("header-only output produced")
		}
	})

	t.Run("TexNoPayload", func(t *testing.T) {
		h, err := tex.Parse(bytes.NewReader(texIn))
		if err != nil {
			t.Fatal(err)
		}
		if _, err := TexToDDS(bytes.NewReader(texIn[:h.Offset])); !errors.Is(err, texture.ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
	})

	t.Run("DDSNoPayload", func(t *testing.T) {
		if _, err := DDSToTex(bytes.NewReader(ddsIn[:dds.PayloadOffset])); !errors.Is(err, texture.ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
	})

	t.Run("TexBadMagic", func(t *testing.T) {
		data := bytes.Clone(texIn)
		data[0] = 'X'
		if _, err := TexToDDS(bytes.NewReader(data)); !texture.IsBadMagic(err) {
			t.Errorf("expected BadMagicError, got %v", err)
		}
	})

	t.Run("DDSBadMagic", func(t *testing.T) {
		data := bytes.Clone(ddsIn)
		data[3] = 0
		out, err := DDSToTex(bytes.NewReader(data))
		if !texture.IsBadMagic(err) {
			t.Errorf("expected BadMagicError, got %v", err)
		}
		if out != nil {
			t.Error("partial output produced")
		}
	})
}

func TestConvert(t *testing.T) {
	ddsIn, _ := makeDDS(t, texture.FormatBC7Unorm, 16, 16, 1)

	texOut, dir, err := Convert(bytes.NewReader(ddsIn))
	if err != nil || dir != DDSToTexDirection {
		t.Fatalf("dds input: dir=%v err=%v", dir, err)
	}

	ddsOut, dir, err := Convert(bytes.NewReader(texOut))
	if err != nil || dir != TexToDDSDirection {
		t.Fatalf("tex input: dir=%v err=%v", dir, err)
	}
	if !bytes.Equal(ddsOut, ddsIn) {
		t.Error("round trip mismatch")
	}

	if _, _, err := Convert(bytes.NewReader([]byte("PNG\x00garbage"))); !texture.IsBadMagic(err) {
		t.Errorf("expected BadMagicError, got %v", err)
	}
}

func TestConvertFile(t *testing.T) {
	dir := t.TempDir()
	ddsIn, _ := makeDDS(t, texture.FormatBC1Unorm, 32, 32, 2)

	in := filepath.Join(dir, "stamp.dds")
	out := filepath.Join(dir, "stamp.tex")
	if err := os.WriteFile(in, ddsIn, 0644); err != nil {
		t.Fatal(err)
	}

	if err := ConvertFile(in, out); err != nil {
		t.Fatalf("convert: %v", err)
	}
	texOut, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := tex.Parse(bytes.NewReader(texOut)); err != nil {
		t.Errorf("output does not parse: %v", err)
	}

	t.Run("NoPartialOutput", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.dds")
		badOut := filepath.Join(dir, "bad.tex")
		if err := os.WriteFile(bad, ddsIn[:0x50], 0644); err != nil {
			t.Fatal(err)
		}
		if err := ConvertFile(bad, badOut); err == nil {
			t.Fatal("expected error for truncated input")
		}
		if _, err := os.Stat(badOut); !os.IsNotExist(err) {
			t.Error("output file created on failure")
		}
	})
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{TexToDDSDirection, DDSToTexDirection} {
		got, err := ParseDirection(d.String())
		if err != nil || got != d {
			t.Errorf("ParseDirection(%q) = %v, %v", d.String(), got, err)
		}
	}
	if _, err := ParseDirection("png2tex"); err == nil {
		t.Error("expected error for unknown direction")
	}
	if TexToDDSDirection.SourceExt() != ".tex" || TexToDDSDirection.TargetExt() != ".dds" {
		t.Error("tex2dds extensions")
	}
}
