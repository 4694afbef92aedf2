package lib

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gingerrexayers/treesum-go/internal/treesum/types"
)

func u64(v uint64) *uint64 { return &v }

func TestNewManifestSortsEntries(t *testing.T) {
	m := NewManifest(MD5, []types.Entry{
		{Path: "b/z.txt", Hash: "2"},
		{Path: "a.txt", Hash: "1"},
		{Path: "b/a.txt", Hash: "3"},
	})

	assert.Equal(t, types.ManifestVersion, m.Version)
	assert.Equal(t, "md5", m.Algorithm)
	require.Len(t, m.Entries, 3)
	assert.Equal(t, "a.txt", m.Entries[0].Path)
	assert.Equal(t, "b/a.txt", m.Entries[1].Path)
	assert.Equal(t, "b/z.txt", m.Entries[2].Path)
}

func TestEncodeManifestOmitsAbsentMetadata(t *testing.T) {
	m := NewManifest(SHA256, []types.Entry{{Path: "a.txt", Hash: "abc"}})

	data, err := EncodeManifest(m)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `"version": "1.0"`)
	assert.Contains(t, out, `"algorithm": "sha256"`)
	assert.Contains(t, out, `"path": "a.txt"`)
	assert.NotContains(t, out, "modified")
	assert.NotContains(t, out, "size")
	assert.NotContains(t, out, "null")
}

func TestEncodeManifestWithMetadata(t *testing.T) {
	m := NewManifest(CRC32, []types.Entry{{Path: "a.txt", Hash: "0d4a1185", Modified: u64(1700000000), Size: u64(11)}})

	data, err := EncodeManifest(m)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"modified": 1700000000`)
	assert.Contains(t, string(data), `"size": 11`)
}

func TestEncodeEmptyManifest(t *testing.T) {
	data, err := EncodeManifest(NewManifest(SHA256, nil))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"entries": []`)
}

func TestParseManifest(t *testing.T) {
	input := `{
  // written by hand
  "version": "1.0",
  "algorithm": "xxh3",
  "entries": [
    { "path": "a.txt", "hash": "0123456789abcdef" },
    /* recorded with metadata */
    { "path": "b.txt", "hash": "fedcba9876543210", "modified": 42, "size": 7, },
  ],
}`
	m, err := ParseManifest([]byte(input))
	require.NoError(t, err)

	assert.Equal(t, "xxh3", m.Algorithm)
	require.Len(t, m.Entries, 2)
	assert.False(t, m.Entries[0].HasMetadata())
	require.True(t, m.Entries[1].HasMetadata())
	assert.Equal(t, uint64(42), *m.Entries[1].Modified)
	assert.Equal(t, uint64(7), *m.Entries[1].Size)
}

func TestParseManifestErrors(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  string
	}{
		{"not json", `this is not json`, "parsing manifest"},
		{"missing entries", `{"version": "1.0", "algorithm": "sha256"}`, `"entries"`},
		{"missing algorithm", `{"version": "1.0", "entries": []}`, `"algorithm"`},
		{"missing version", `{"algorithm": "sha256", "entries": []}`, `"version"`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tc.input))
			assert.ErrorContains(t, err, tc.want)
		})
	}
}

func TestSaveAndLoadManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sums.json")
	original := NewManifest(Blake2, []types.Entry{
		{Path: "x/y.bin", Hash: strings.Repeat("a", 64)},
		{Path: "a.bin", Hash: strings.Repeat("b", 64), Modified: u64(1), Size: u64(2)},
	})

	require.NoError(t, SaveManifest(path, original))

	loaded, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, original, loaded)

	// Only the manifest itself remains; no temporary files are left behind.
	dirEntries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, dirEntries, 1)
	assert.Equal(t, "sums.json", dirEntries[0].Name())
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, err := LoadManifest(filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, fs.ErrNotExist)
}
