package types

// ManifestVersion is written into every manifest produced by this tool.
const ManifestVersion = "1.0"

// Entry records the digest of a single file. Modified and Size are either
// both set or both nil; they are only captured when metadata was requested
// at generation time.
type Entry struct {
	Path     string  `json:"path"`
	Hash     string  `json:"hash"`
	Modified *uint64 `json:"modified,omitempty"`
	Size     *uint64 `json:"size,omitempty"`
}

// HasMetadata reports whether the entry carries modification time and size.
func (e Entry) HasMetadata() bool {
	return e.Modified != nil && e.Size != nil
}

// Manifest is the persisted description of a directory tree. Entries are
// sorted by Path and paths are unique.
type Manifest struct {
	Version   string  `json:"version"`
	Algorithm string  `json:"algorithm"`
	Entries   []Entry `json:"entries"`
}

// Status is the classification of a single verified entry.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusFailed:
		return "FAILED"
	case StatusSkipped:
		return "SKIPPED"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the result of verifying one manifest entry against the target tree.
type Outcome struct {
	Path    string
	Status  Status
	Message string
}

// Summary aggregates verification outcomes.
type Summary struct {
	OK      int
	Failed  int
	Skipped int
	Total   int
}

// Success is true when no entry failed. Skipped entries do not count against it.
func (s Summary) Success() bool {
	return s.Failed == 0
}
