// Package modpack writes MHW mod archives: ZIP files whose entries sit under
// the game's native asset path so they can be dropped into the game folder.
package modpack

import (
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

// DefaultPrefix is where chat sticker textures live in the game tree.
const DefaultPrefix = "nativePC/ui/chat/tex/stamp/"

// Writer adds files to a mod archive.
type Writer struct {
	zw      *zip.Writer
	prefix  string
	entries []string
}

// NewWriter creates a mod archive writer on w. Entry names are joined to
// prefix with forward slashes.
func NewWriter(w io.Writer, prefix string) *Writer {
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, flate.BestCompression)
	})
	return &Writer{zw: zw, prefix: prefix}
}

// Add writes data as a Deflate-compressed entry.
func (w *Writer) Add(name string, data []byte) error {
	entry := path.Join(strings.TrimSuffix(w.prefix, "/"), path.Base(name))
	fw, err := w.zw.CreateHeader(&zip.FileHeader{
		Name:   entry,
		Method: zip.Deflate,
	})
	if err != nil {
		return fmt.Errorf("create entry %s: %w", entry, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write entry %s: %w", entry, err)
	}
	w.entries = append(w.entries, entry)
	return nil
}

// Entries returns the entry names written so far.
func (w *Writer) Entries() []string {
	return w.entries
}

// Close writes the central directory. It does not close the underlying
// writer.
func (w *Writer) Close() error {
	if err := w.zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	return nil
}
