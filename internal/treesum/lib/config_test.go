package lib

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupIgnoreTest creates a temporary directory holding an ignore file with
// the provided content.
func setupIgnoreTest(t *testing.T, ignoreContent string) string {
	t.Helper()
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, IgnoreFilename), []byte(ignoreContent), 0644)
	require.NoError(t, err, "Failed to create ignore file")
	return tmpDir
}

func TestIgnoreRules(t *testing.T) {
	testCases := []struct {
		name            string
		ignoreContent   string
		pathToCheck     string
		isDir           bool
		shouldBeIgnored bool
	}{
		{
			name:            "Specific file match",
			ignoreContent:   "secret.txt",
			pathToCheck:     "secret.txt",
			shouldBeIgnored: true,
		},
		{
			name:            "Glob pattern match (*.log)",
			ignoreContent:   "*.log",
			pathToCheck:     "system.log",
			shouldBeIgnored: true,
		},
		{
			name:            "Glob pattern in subdir",
			ignoreContent:   "*.log",
			pathToCheck:     "logs/system.log",
			shouldBeIgnored: true,
		},
		{
			name:            "Directory pattern match (build/)",
			ignoreContent:   "build/",
			pathToCheck:     "build/asset.js",
			shouldBeIgnored: true,
		},
		{
			name:            "Negation pattern (!)",
			ignoreContent:   "*.log\n!important.log",
			pathToCheck:     "important.log",
			shouldBeIgnored: false,
		},
		{
			name:            "Negation pattern should not affect other matches",
			ignoreContent:   "*.log\n!important.log",
			pathToCheck:     "unimportant.log",
			shouldBeIgnored: true,
		},
		{
			name:            "Comment and empty lines should be ignored",
			ignoreContent:   "# This is a comment\n\n  \n\n*.tmp",
			pathToCheck:     "some.tmp",
			shouldBeIgnored: true,
		},
		{
			name:            "Path not in ignore list",
			ignoreContent:   "*.log",
			pathToCheck:     "src/main.go",
			shouldBeIgnored: false,
		},
		{
			name:            "Path with Windows-style separators in pattern",
			ignoreContent:   "dist\\main.js",
			pathToCheck:     "dist/main.js",
			shouldBeIgnored: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testDir := setupIgnoreTest(t, tc.ignoreContent)

			rules, err := LoadIgnoreRules(testDir, nil)
			require.NoError(t, err)
			require.NotNil(t, rules)

			assert.Equal(t, tc.shouldBeIgnored, rules.Ignored(tc.pathToCheck, tc.isDir),
				"Path '%s' with ignore content:\n---\n%s\n---", tc.pathToCheck, tc.ignoreContent)
		})
	}
}

func TestIgnoreRulesMissingFile(t *testing.T) {
	rules, err := LoadIgnoreRules(t.TempDir(), nil)
	require.NoError(t, err)
	assert.Nil(t, rules)

	// Nil rules ignore nothing.
	assert.False(t, rules.Ignored("anything.txt", false))
}
