package lib

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"

	"github.com/gingerrexayers/treesum-go/internal/treesum/types"
)

// NewManifest wraps entries into a manifest for alg, sorting them by path.
// The entries slice is sorted in place.
func NewManifest(alg Algorithm, entries []types.Entry) *types.Manifest {
	SortEntries(entries)
	if entries == nil {
		entries = []types.Entry{}
	}
	return &types.Manifest{
		Version:   types.ManifestVersion,
		Algorithm: string(alg),
		Entries:   entries,
	}
}

// SortEntries orders entries by path, the canonical manifest order.
func SortEntries(entries []types.Entry) {
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Path < entries[j].Path
	})
}

// EncodeManifest renders m as indented JSON followed by a newline.
func EncodeManifest(m *types.Manifest) ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteManifest encodes m to w.
func WriteManifest(w io.Writer, m *types.Manifest) error {
	data, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// SaveManifest atomically writes m to path.
func SaveManifest(path string, m *types.Manifest) error {
	data, err := EncodeManifest(m)
	if err != nil {
		return err
	}
	return WriteFileAtomic(path, data, 0644)
}

// ParseManifest decodes a manifest. Comments and trailing commas are
// accepted, so annotated manifests still load.
func ParseManifest(data []byte) (*types.Manifest, error) {
	stripped := jsonc.ToJSON(data)

	dec := json.NewDecoder(bytes.NewReader(stripped))
	var m types.Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	switch {
	case m.Version == "":
		return nil, fmt.Errorf("parsing manifest: missing %q", "version")
	case m.Algorithm == "":
		return nil, fmt.Errorf("parsing manifest: missing %q", "algorithm")
	case m.Entries == nil:
		return nil, fmt.Errorf("parsing manifest: missing %q", "entries")
	}
	return &m, nil
}

// LoadManifest reads and parses the manifest at path.
func LoadManifest(path string) (*types.Manifest, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	m, err := ParseManifest(content)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}
