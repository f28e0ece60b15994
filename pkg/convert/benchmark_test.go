package convert

import (
	"bytes"
	"testing"

	"github.com/goopsie/mhwTexTools/pkg/texture"
)

// BenchmarkConvert measures header rewriting on a 2048x2048 BC7 texture.
func BenchmarkConvert(b *testing.B) {
	ddsIn, _ := makeDDS(b, texture.FormatBC7Unorm, 2048, 2048, 12)
	texIn, err := DDSToTex(bytes.NewReader(ddsIn))
	if err != nil {
		b.Fatal(err)
	}

	b.Run("DDSToTex", func(b *testing.B) {
		b.SetBytes(int64(len(ddsIn)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := DDSToTex(bytes.NewReader(ddsIn)); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("TexToDDS", func(b *testing.B) {
		b.SetBytes(int64(len(texIn)))
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := TexToDDS(bytes.NewReader(texIn)); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Inspect", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if _, err := Inspect(bytes.NewReader(texIn)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
