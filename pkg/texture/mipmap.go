package texture

import (
	"fmt"
	"math"
)

// MaxMipLevels bounds the mip count accepted from either container.
const MaxMipLevels = 32

// Minimum mip dimensions: compressed formats stop at one 4x4 block, raw
// surfaces at 2x2.
const (
	minBlockDim = 4
	minRawDim   = 2
)

// MipLevel is one entry of a mip chain. Offset is absolute in the TEX file.
type MipLevel struct {
	Width  int32
	Height int32
	Offset int64
	Size   int64
}

// LevelSize returns the byte size of a single level of the given dimensions.
func LevelSize(width, height int32, class StorageClass, raw bool) int64 {
	pixels := int64(width) * int64(height)
	switch {
	case class == ClassQuarterByte:
		return pixels / 2
	case class == ClassTwoBytes:
		return pixels * 2
	case raw:
		return pixels * 4
	default:
		return pixels
	}
}

// MipChain computes the per-level layout of a mip chain whose first level
// starts at base. After each level both dimensions are halved, then clamped to
// 2 for raw surfaces and 4 otherwise.
//
// TEX persists these offsets explicitly while DDS only keeps the mip count, so
// writing TEX from DDS regenerates them here; the result must match what the
// game wrote byte for byte.
func MipChain(width, height, mipCount int32, class StorageClass, raw bool, base int64) ([]MipLevel, error) {
	if mipCount < 1 || mipCount > MaxMipLevels {
		return nil, fmt.Errorf("%w: mip count %d", ErrInvalidHeader, mipCount)
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d", ErrInvalidHeader, width, height)
	}

	floor := int32(minBlockDim)
	if raw {
		floor = minRawDim
	}

	levels := make([]MipLevel, mipCount)
	w, h, offset := width, height, base
	for i := range levels {
		size := LevelSize(w, h, class, raw)
		levels[i] = MipLevel{Width: w, Height: h, Offset: offset, Size: size}
		offset += size

		w = max(w/2, floor)
		h = max(h/2, floor)
	}

	// Offsets are stored as 32-bit fields in the TEX mip table.
	if last := levels[len(levels)-1]; last.Offset > math.MaxInt32 {
		return nil, fmt.Errorf("%w: mip offset %d exceeds 32-bit range", ErrInvalidHeader, last.Offset)
	}

	return levels, nil
}

// ChainSize returns the total payload size of a mip chain.
func ChainSize(levels []MipLevel) int64 {
	var total int64
	for _, l := range levels {
		total += l.Size
	}
	return total
}
