// Package convert transcodes textures between the MHW TEX container and DDS.
//
// Conversions copy the pixel payload byte for byte; only headers and the TEX
// mip table are rewritten. Every conversion builds its whole output in memory,
// so a failure never leaves partial output behind.
package convert

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/goopsie/mhwTexTools/pkg/dds"
	"github.com/goopsie/mhwTexTools/pkg/tex"
	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// Direction selects which way a conversion goes.
type Direction int

const (
	TexToDDSDirection Direction = iota
	DDSToTexDirection
)

// ParseDirection parses the CLI spelling of a direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "tex2dds":
		return TexToDDSDirection, nil
	case "dds2tex":
		return DDSToTexDirection, nil
	}
	return 0, fmt.Errorf("unknown direction %q (expected tex2dds or dds2tex)", s)
}

func (d Direction) String() string {
	if d == DDSToTexDirection {
		return "dds2tex"
	}
	return "tex2dds"
}

// SourceExt is the file extension read in this direction.
func (d Direction) SourceExt() string {
	if d == DDSToTexDirection {
		return ".dds"
	}
	return ".tex"
}

// TargetExt is the file extension written in this direction.
func (d Direction) TargetExt() string {
	if d == DDSToTexDirection {
		return ".tex"
	}
	return ".dds"
}

func (d Direction) convert(r io.ReadSeeker) ([]byte, error) {
	if d == DDSToTexDirection {
		return DDSToTex(r)
	}
	return TexToDDS(r)
}

// TexToDDS converts a TEX stream to a complete DDS file.
func TexToDDS(r io.ReadSeeker) ([]byte, error) {
	h, err := tex.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse tex header: %w", err)
	}

	payload, err := readPayload(r, h.Offset)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(dds.PayloadOffsetDX10 + len(payload))
	if err := dds.Write(&buf, h.Format, uint32(h.Width), uint32(h.Height), uint32(h.MipCount), payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DDSToTex converts a DDS stream to a complete TEX file. The TEX mip table is
// regenerated from the dimensions and mip count.
func DDSToTex(r io.ReadSeeker) ([]byte, error) {
	h, err := dds.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse dds header: %w", err)
	}

	payload, err := readPayload(r, h.PayloadOffset())
	if err != nil {
		return nil, err
	}

	raw := h.IsRaw()
	width, height, mips := int32(h.Width), int32(h.Height), int32(h.MipMapCount)
	levels, err := tex.MipChain(h.Format, width, height, mips, raw)
	if err != nil {
		return nil, fmt.Errorf("compute mip chain: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(tex.HeaderSize + len(levels)*8 + len(payload))
	if err := tex.Write(&buf, h.Format, width, height, raw, levels, payload); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Convert sniffs the container magic of r and converts it to the other
// container.
func Convert(r io.ReadSeeker) ([]byte, Direction, error) {
	magic, err := readMagic(r)
	if err != nil {
		return nil, 0, err
	}
	switch magic {
	case tex.Magic:
		out, err := TexToDDS(r)
		return out, TexToDDSDirection, err
	case dds.DDS_MAGIC:
		out, err := DDSToTex(r)
		return out, DDSToTexDirection, err
	}
	return nil, 0, &texture.BadMagicError{Expected: dds.DDS_MAGIC, Actual: magic}
}

// ConvertFile converts the file at in and writes the result to out. The
// direction is chosen from the input magic.
func ConvertFile(in, out string) error {
	data, err := os.ReadFile(in)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	converted, _, err := Convert(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, converted, 0644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func readPayload(r io.ReadSeeker, offset int64) ([]byte, error) {
	size, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	if offset >= size {
		return nil, fmt.Errorf("%w: payload offset %#x beyond end of input (%d bytes)", texture.ErrInvalidHeader, offset, size)
	}
	if _, err := r.Seek(offset, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek payload: %w", err)
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	return payload, nil
}

func readMagic(r io.ReadSeeker) (uint32, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, fmt.Errorf("seek magic: %w", err)
	}
	var magic uint32
	if err := binary.Read(r, binary.LittleEndian, &magic); err != nil {
		return 0, fmt.Errorf("read magic: %w", err)
	}
	return magic, nil
}
