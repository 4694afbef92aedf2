package commands

import (
	"bytes"
	"runtime"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
	"github.com/gingerrexayers/treesum-go/internal/treesum/types"
)

func TestWorkerCount(t *testing.T) {
	cpus := runtime.NumCPU()
	testCases := []struct {
		name       string
		configured int
		jobs       int
		want       int
	}{
		{"explicit size", 4, 100, 4},
		{"capped at job count", 16, 3, 3},
		{"zero uses cpus", 0, cpus + 10, cpus},
		{"negative uses cpus", -1, cpus + 10, cpus},
		{"no jobs", 8, 0, 0},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, workerCount(tc.configured, tc.jobs))
		})
	}
}

func TestRunOptionsDefaults(t *testing.T) {
	var opts RunOptions
	assert.Equal(t, lib.SHA256, opts.algorithm())
	assert.NotNil(t, opts.logger())
	assert.NotNil(t, opts.stdout())
	assert.NotNil(t, opts.stderr())
}

func TestPrintOutcome(t *testing.T) {
	failed := types.Outcome{Path: "a.txt", Status: types.StatusFailed, Message: "File not found"}
	skipped := types.Outcome{Path: "b.txt", Status: types.StatusSkipped, Message: "File is newer on target"}
	ok := types.Outcome{Path: "c.txt", Status: types.StatusOK}

	var quiet bytes.Buffer
	for _, o := range []types.Outcome{failed, skipped, ok} {
		printOutcome(&quiet, o, false)
	}
	assert.Equal(t, "FAILED: a.txt - File not found\n", quiet.String())

	var verbose bytes.Buffer
	for _, o := range []types.Outcome{failed, skipped, ok} {
		printOutcome(&verbose, o, true)
	}
	assert.Equal(t, "FAILED: a.txt - File not found\n"+
		"SKIPPED: b.txt - File is newer on target\n"+
		"OK: c.txt\n", verbose.String())
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	printSummary(&buf, types.Summary{OK: 1234, Failed: 1, Skipped: 2, Total: 1237})

	assert.Equal(t, "\nSummary:\n"+
		"  OK:      1,234\n"+
		"  Failed:  1\n"+
		"  Skipped: 2\n"+
		"  Total:   1,237\n", buf.String())
}

func TestProgressFinalLine(t *testing.T) {
	var buf bytes.Buffer
	var done atomic.Int64
	p := startProgress(&buf, "Verified", 3, &done)
	done.Store(3)
	p.Stop()

	assert.Contains(t, buf.String(), "Verified: 3/3")
	assert.False(t, isTerminal(&buf))
}
