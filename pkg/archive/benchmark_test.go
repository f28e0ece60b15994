package archive

import (
	"bytes"
	"testing"

	"github.com/DataDog/zstd"
	"github.com/cespare/xxhash/v2"
)

func indexLikeData(size int) []byte {
	line := []byte(`{"collection":"stamp_042","name":"stamp_042_03","checksum":"9f2c1d0e7a6b5c4d"},`)
	data := make([]byte, 0, size)
	for len(data) < size {
		data = append(data, line...)
	}
	return data[:size]
}

// BenchmarkCompression compares compression levels on index-shaped content.
func BenchmarkCompression(b *testing.B) {
	data := indexLikeData(256 * 1024)

	b.Run("Compress_BestSpeed", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := zstd.CompressLevel(nil, data, zstd.BestSpeed); err != nil {
				b.Fatal(err)
			}
		}
	})

	b.Run("Compress_Default", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := zstd.CompressLevel(nil, data, zstd.DefaultCompression); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkChecksum measures the content checksum.
func BenchmarkChecksum(b *testing.B) {
	data := indexLikeData(1024 * 1024)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		xxhash.Sum64(data)
	}
}

// BenchmarkHeader benchmarks header operations.
func BenchmarkHeader(b *testing.B) {
	header := NewHeader(1024*1024, 512*1024, 0x1234)

	b.Run("EncodeTo", func(b *testing.B) {
		buf := make([]byte, HeaderSize)
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			header.EncodeTo(buf)
		}
	})

	data, _ := header.MarshalBinary()

	b.Run("Unmarshal", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			h := &Header{}
			if err := h.UnmarshalBinary(data); err != nil {
				b.Fatal(err)
			}
		}
	})
}

// BenchmarkEncodeDecode benchmarks the full encode/decode cycle.
func BenchmarkEncodeDecode(b *testing.B) {
	data := indexLikeData(1024 * 1024)

	b.Run("Encode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			var buf bytes.Buffer
			if err := Encode(&seekableBuffer{Buffer: &buf}, data); err != nil {
				b.Fatal(err)
			}
		}
	})

	var buf bytes.Buffer
	_ = Encode(&seekableBuffer{Buffer: &buf}, data)
	encoded := buf.Bytes()

	b.Run("Decode", func(b *testing.B) {
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			if _, err := ReadAll(bytes.NewReader(encoded)); err != nil {
				b.Fatal(err)
			}
		}
	})
}
