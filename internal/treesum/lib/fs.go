package lib

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temporary file next to dst and renames it
// into place, so readers never observe a partially written dst.
func WriteFileAtomic(dst string, data []byte, perm os.FileMode) (retErr error) {
	const errCtx = "writing file atomically"

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	tmpPath := tmp.Name()

	defer func() {
		if retErr != nil {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	// Ensure the data is written to stable storage before it becomes visible.
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("%s: %w", errCtx, err)
	}
	return nil
}
