package texture

import (
	"errors"
	"testing"
)

func TestMipChain(t *testing.T) {
	const base = 0xB8 + 4*8

	t.Run("QuarterByte128", func(t *testing.T) {
		levels, err := MipChain(128, 128, 4, ClassQuarterByte, false, base)
		if err != nil {
			t.Fatal(err)
		}

		wantSizes := []int64{128 * 128 / 2, 64 * 64 / 2, 32 * 32 / 2, 16 * 16 / 2}
		wantOffsets := []int64{base, base + 8192, base + 8192 + 2048, base + 8192 + 2048 + 512}
		for i, l := range levels {
			if l.Size != wantSizes[i] {
				t.Errorf("level %d size: got %d, want %d", i, l.Size, wantSizes[i])
			}
			if l.Offset != wantOffsets[i] {
				t.Errorf("level %d offset: got %d, want %d", i, l.Offset, wantOffsets[i])
			}
			if i > 0 && l.Offset <= levels[i-1].Offset {
				t.Errorf("level %d offset not increasing", i)
			}
		}
		if got := ChainSize(levels); got != 8192+2048+512+128 {
			t.Errorf("ChainSize = %d", got)
		}
	})

	t.Run("FloorClampCompressed", func(t *testing.T) {
		levels, err := MipChain(8, 8, 4, ClassOneByte, false, 0)
		if err != nil {
			t.Fatal(err)
		}
		wantDims := []int32{8, 4, 4, 4}
		for i, l := range levels {
			if l.Width != wantDims[i] || l.Height != wantDims[i] {
				t.Errorf("level %d: got %dx%d, want %dx%d", i, l.Width, l.Height, wantDims[i], wantDims[i])
			}
		}
	})

	t.Run("FloorClampRaw", func(t *testing.T) {
		levels, err := MipChain(8, 8, 4, ClassFourBytesRaw, true, 0)
		if err != nil {
			t.Fatal(err)
		}
		wantDims := []int32{8, 4, 2, 2}
		wantSizes := []int64{256, 64, 16, 16}
		for i, l := range levels {
			if l.Width != wantDims[i] || l.Size != wantSizes[i] {
				t.Errorf("level %d: got width %d size %d, want %d/%d", i, l.Width, l.Size, wantDims[i], wantSizes[i])
			}
		}
	})

	t.Run("NonSquare", func(t *testing.T) {
		levels, err := MipChain(256, 64, 3, ClassOneByte, false, 0)
		if err != nil {
			t.Fatal(err)
		}
		last := levels[2]
		if last.Width != 64 || last.Height != 16 {
			t.Errorf("last level: got %dx%d, want 64x16", last.Width, last.Height)
		}
	})

	t.Run("Invalid", func(t *testing.T) {
		cases := []struct {
			name          string
			width, height int32
			mips          int32
		}{
			{"ZeroMips", 16, 16, 0},
			{"TooManyMips", 16, 16, MaxMipLevels + 1},
			{"ZeroWidth", 0, 16, 1},
			{"NegativeHeight", 16, -4, 1},
		}
		for _, c := range cases {
			t.Run(c.name, func(t *testing.T) {
				_, err := MipChain(c.width, c.height, c.mips, ClassOneByte, false, 0)
				if !errors.Is(err, ErrInvalidHeader) {
					t.Errorf("expected ErrInvalidHeader, got %v", err)
				}
			})
		}
	})

	t.Run("OffsetOverflow", func(t *testing.T) {
		_, err := MipChain(1<<16, 1<<16, 2, ClassOneByte, false, 0)
		if !errors.Is(err, ErrInvalidHeader) {
			t.Errorf("expected ErrInvalidHeader, got %v", err)
		}
	})
}

func TestLevelSize(t *testing.T) {
	tests := []struct {
		class StorageClass
		raw   bool
		want  int64
	}{
		{ClassQuarterByte, false, 32},
		{ClassQuarterByte, true, 32},
		{ClassOneByte, false, 64},
		{ClassTwoBytes, false, 128},
		{ClassFourBytesRaw, false, 64},
		{ClassFourBytesRaw, true, 256},
	}
	for _, tt := range tests {
		if got := LevelSize(8, 8, tt.class, tt.raw); got != tt.want {
			t.Errorf("LevelSize(8, 8, %v, %v) = %d, want %d", tt.class, tt.raw, got, tt.want)
		}
	}
}

func BenchmarkMipChain(b *testing.B) {
	for i := 0; i < b.N; i++ {
		if _, err := MipChain(4096, 4096, 13, ClassOneByte, false, 0xB8+13*8); err != nil {
			b.Fatal(err)
		}
	}
}
