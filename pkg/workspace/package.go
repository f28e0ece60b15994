package workspace

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goopsie/mhwTexTools/pkg/convert"
	"github.com/goopsie/mhwTexTools/pkg/modpack"
)

// PackageOption configures Package.
type PackageOption func(*packageConfig)

type packageConfig struct {
	prefix      string
	collections bool
}

// WithArchivePrefix sets the path under which entries are stored in the
// mod archive.
func WithArchivePrefix(prefix string) PackageOption {
	return func(c *packageConfig) {
		c.prefix = prefix
	}
}

// WithCollections packages every sticker of a collection that has at least
// one modified sticker, instead of only the modified stickers.
func WithCollections(enabled bool) PackageOption {
	return func(c *packageConfig) {
		c.collections = enabled
	}
}

// PackageResult describes what Package produced.
type PackageResult struct {
	Files   []string // loose TEX files
	Archive string   // mod archive path, empty if nothing was packaged
	Entries []string // archive entry names
	Errors  []*convert.FileError
}

// Package converts modified stickers back to TEX. Loose files go to
// distDir/<name>/ and a mod archive to distDir/<name>.zip. Stickers that
// fail to convert are reported and skipped.
func (ws *Workspace) Package(distDir string, opts ...PackageOption) (*PackageResult, error) {
	cfg := &packageConfig{prefix: modpack.DefaultPrefix}
	for _, opt := range opts {
		opt(cfg)
	}

	stickers, err := ws.packageSet(cfg.collections)
	if err != nil {
		return nil, err
	}

	result := &PackageResult{}
	if len(stickers) == 0 {
		return result, nil
	}

	outDir := filepath.Join(distDir, ws.Name())
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// The zip only reaches disk once complete.
	var zipBuf bytes.Buffer
	mp := modpack.NewWriter(&zipBuf, cfg.prefix)
	for _, s := range stickers {
		in := filepath.Join(ws.root, s.Name)
		data, err := ws.packageSticker(in)
		if err != nil {
			result.Errors = append(result.Errors, &convert.FileError{Path: in, Err: err})
			continue
		}

		name := strings.TrimSuffix(s.Name, filepath.Ext(s.Name)) + ".tex"
		out := filepath.Join(outDir, name)
		if err := os.WriteFile(out, data, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", out, err)
		}
		if err := mp.Add(name, data); err != nil {
			return nil, err
		}
		result.Files = append(result.Files, out)
	}

	if err := mp.Close(); err != nil {
		return nil, err
	}
	zipPath := filepath.Join(distDir, ws.Name()+".zip")
	if err := os.WriteFile(zipPath, zipBuf.Bytes(), 0644); err != nil {
		return nil, fmt.Errorf("write archive: %w", err)
	}
	result.Archive = zipPath
	result.Entries = mp.Entries()
	return result, nil
}

func (ws *Workspace) packageSet(collections bool) ([]Sticker, error) {
	if !collections {
		return ws.Modified()
	}

	byCollection, err := ws.ModifiedCollections()
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(byCollection))
	for name := range byCollection {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []Sticker
	for _, name := range names {
		out = append(out, byCollection[name]...)
	}
	return out, nil
}

func (ws *Workspace) packageSticker(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sticker: %w", err)
	}
	return convert.DDSToTex(bytes.NewReader(data))
}
