// Package workspace manages sticker editing workspaces: a directory of DDS
// files extracted from game TEX files, plus an index recording the checksum
// of every extracted file so edits can be detected and repackaged.
package workspace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/goopsie/mhwTexTools/pkg/archive"
	"github.com/goopsie/mhwTexTools/pkg/convert"
)

// IndexFile is the name of the index stored at the workspace root.
const IndexFile = "workspace.idx"

// IndexVersion is the current index version.
const IndexVersion = 1

var (
	// ErrExists is returned by Create when the root already holds a workspace.
	ErrExists = errors.New("workspace already exists")

	// ErrDuplicateSticker is returned by Create when two source files would be
	// extracted to the same workspace file.
	ErrDuplicateSticker = errors.New("duplicate sticker name")
)

// Sticker is one extracted texture.
type Sticker struct {
	Collection string `json:"collection"`
	Name       string `json:"name"`   // file name inside the workspace
	Source     string `json:"source"` // original TEX file name
	Checksum   string `json:"checksum"`
}

// Index is the persisted workspace state.
type Index struct {
	Version  int       `json:"version"`
	Stickers []Sticker `json:"stickers"`
}

// Workspace is an opened workspace.
type Workspace struct {
	root  string
	index *Index
}

// Create extracts every TEX file under sourceDir into root as DDS and writes
// a new index.
func Create(root, sourceDir string) (*Workspace, error) {
	if _, err := os.Stat(filepath.Join(root, IndexFile)); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, root)
	}
	sources, err := ScanTextures(sourceDir)
	if err != nil {
		return nil, err
	}
	if err := checkDuplicateNames(sources); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("create workspace dir: %w", err)
	}

	ws := &Workspace{root: root, index: &Index{Version: IndexVersion}}
	for _, src := range sources {
		sticker, err := ws.extract(src)
		if err != nil {
			return nil, fmt.Errorf("extract %s: %w", src, err)
		}
		ws.index.Stickers = append(ws.index.Stickers, sticker)
	}

	if err := ws.save(); err != nil {
		return nil, err
	}
	return ws, nil
}

// Open loads the workspace at root.
func Open(root string) (*Workspace, error) {
	index, err := readIndex(filepath.Join(root, IndexFile))
	if err != nil {
		return nil, err
	}
	return &Workspace{root: root, index: index}, nil
}

// List opens every immediate subdirectory of dir that holds a workspace.
func List(dir string) ([]*Workspace, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir: %w", err)
	}

	var out []*Workspace
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		root := filepath.Join(dir, entry.Name())
		if _, err := os.Stat(filepath.Join(root, IndexFile)); err != nil {
			continue
		}
		ws, err := Open(root)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", root, err)
		}
		out = append(out, ws)
	}
	return out, nil
}

// ScanTextures returns every .tex file under dir in lexical order.
func ScanTextures(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".tex") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	return files, nil
}

// Root returns the workspace directory.
func (ws *Workspace) Root() string {
	return ws.root
}

// Name returns the workspace directory name.
func (ws *Workspace) Name() string {
	return filepath.Base(ws.root)
}

// Stickers returns the indexed stickers.
func (ws *Workspace) Stickers() []Sticker {
	return ws.index.Stickers
}

// CollectionCount returns the number of distinct collections.
func (ws *Workspace) CollectionCount() int {
	seen := make(map[string]struct{})
	for _, s := range ws.index.Stickers {
		seen[s.Collection] = struct{}{}
	}
	return len(seen)
}

// Modified returns the stickers whose file no longer matches the recorded
// checksum. Missing files are skipped.
func (ws *Workspace) Modified() ([]Sticker, error) {
	var modified []Sticker
	for _, s := range ws.index.Stickers {
		changed, err := ws.changed(s)
		if err != nil {
			return nil, err
		}
		if changed {
			modified = append(modified, s)
		}
	}
	return modified, nil
}

// ModifiedCollections returns, for every collection with at least one
// modified sticker, all stickers of that collection.
func (ws *Workspace) ModifiedCollections() (map[string][]Sticker, error) {
	modified, err := ws.Modified()
	if err != nil {
		return nil, err
	}

	out := make(map[string][]Sticker)
	for _, m := range modified {
		if _, ok := out[m.Collection]; ok {
			continue
		}
		out[m.Collection] = ws.collection(m.Collection)
	}
	return out, nil
}

func (ws *Workspace) collection(name string) []Sticker {
	var out []Sticker
	for _, s := range ws.index.Stickers {
		if s.Collection == name {
			out = append(out, s)
		}
	}
	return out
}

func (ws *Workspace) changed(s Sticker) (bool, error) {
	sum, err := fileChecksum(filepath.Join(ws.root, s.Name))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sum != s.Checksum, nil
}

func (ws *Workspace) extract(src string) (Sticker, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return Sticker{}, fmt.Errorf("read source: %w", err)
	}
	converted, err := convert.TexToDDS(bytes.NewReader(data))
	if err != nil {
		return Sticker{}, err
	}

	base := filepath.Base(src)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	name := stem + ".dds"
	if err := os.WriteFile(filepath.Join(ws.root, name), converted, 0644); err != nil {
		return Sticker{}, fmt.Errorf("write dds: %w", err)
	}

	return Sticker{
		Collection: CollectionOf(stem),
		Name:       name,
		Source:     base,
		Checksum:   checksum(converted),
	}, nil
}

// checkDuplicateNames rejects sources that share a file name, since the
// workspace is flat. Names are compared case-insensitively.
func checkDuplicateNames(sources []string) error {
	seen := make(map[string]string, len(sources))
	for _, src := range sources {
		key := strings.ToLower(filepath.Base(src))
		if prev, ok := seen[key]; ok {
			return fmt.Errorf("%w: %s and %s", ErrDuplicateSticker, prev, src)
		}
		seen[key] = src
	}
	return nil
}

// CollectionOf returns the collection a sticker file stem belongs to: the
// part before the last underscore.
func CollectionOf(stem string) string {
	if i := strings.LastIndex(stem, "_"); i > 0 {
		return stem[:i]
	}
	return stem
}

func (ws *Workspace) save() error {
	data, err := json.MarshalIndent(ws.index, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal index: %w", err)
	}

	f, err := os.Create(filepath.Join(ws.root, IndexFile))
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer f.Close()

	if err := archive.Encode(f, data); err != nil {
		return fmt.Errorf("encode index: %w", err)
	}
	return nil
}

func readIndex(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	data, err := archive.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read index: %w", err)
	}

	index := &Index{}
	if err := json.Unmarshal(data, index); err != nil {
		return nil, fmt.Errorf("parse index: %w", err)
	}
	if index.Version != IndexVersion {
		return nil, fmt.Errorf("unsupported index version %d", index.Version)
	}
	sort.SliceStable(index.Stickers, func(i, j int) bool {
		return index.Stickers[i].Name < index.Stickers[j].Name
	})
	return index, nil
}

func checksum(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func fileChecksum(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}
	return fmt.Sprintf("%016x", h.Sum64()), nil
}
