package convert

import (
	"fmt"
	"io"

	"github.com/goopsie/mhwTexTools/pkg/dds"
	"github.com/goopsie/mhwTexTools/pkg/tex"
	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// Description summarizes a texture header.
type Description struct {
	Container     string // "TEX" or "DDS"
	Format        texture.PixelFormat
	Width         int32
	Height        int32
	MipCount      int32
	Raw           bool
	PayloadOffset int64
	PayloadSize   int64

	// Levels holds the mip table: read from the file for TEX, computed for DDS.
	Levels []texture.MipLevel
}

// Inspect parses the header of a TEX or DDS stream without converting it.
func Inspect(r io.ReadSeeker) (*Description, error) {
	magic, err := readMagic(r)
	if err != nil {
		return nil, err
	}

	var d *Description
	switch magic {
	case tex.Magic:
		d, err = inspectTex(r)
	case dds.DDS_MAGIC:
		d, err = inspectDDS(r)
	default:
		return nil, &texture.BadMagicError{Expected: dds.DDS_MAGIC, Actual: magic}
	}
	if err != nil {
		return nil, err
	}

	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("seek end: %w", err)
	}
	d.PayloadSize = max(end-d.PayloadOffset, 0)
	return d, nil
}

func inspectTex(r io.ReadSeeker) (*Description, error) {
	h, err := tex.Parse(r)
	if err != nil {
		return nil, err
	}

	levels, err := tex.MipChain(h.Format, h.Width, h.Height, h.MipCount, false)
	if err != nil {
		return nil, err
	}
	for i, entry := range h.MipTable {
		levels[i].Offset = int64(entry.Offset)
	}

	return &Description{
		Container:     "TEX",
		Format:        h.Format,
		Width:         h.Width,
		Height:        h.Height,
		MipCount:      h.MipCount,
		PayloadOffset: h.Offset,
		Levels:        levels,
	}, nil
}

func inspectDDS(r io.ReadSeeker) (*Description, error) {
	h, err := dds.Parse(r)
	if err != nil {
		return nil, err
	}

	width, height, mips := int32(h.Width), int32(h.Height), int32(h.MipMapCount)
	levels, err := tex.MipChain(h.Format, width, height, mips, h.IsRaw())
	if err != nil {
		return nil, err
	}

	return &Description{
		Container:     "DDS",
		Format:        h.Format,
		Width:         width,
		Height:        height,
		MipCount:      mips,
		Raw:           h.IsRaw(),
		PayloadOffset: h.PayloadOffset(),
		Levels:        levels,
	}, nil
}
