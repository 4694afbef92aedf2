// Package commands contains the top-level operations behind the treesum
// command line: generating a manifest for a directory and verifying a
// directory against a manifest.
package commands

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
)

// ErrVerificationFailed is returned by VerifyDirectory when at least one
// manifest entry failed verification.
var ErrVerificationFailed = errors.New("verification failed")

// RunOptions carries the command-line configuration for a generate or verify run.
type RunOptions struct {
	Algorithm lib.Algorithm
	// Output is the manifest destination; empty means Stdout.
	Output   string
	Excludes []string
	// SkipNewer enables the newer-on-target policy during verification. At
	// generation time it also turns on IncludeMetadata, since the policy
	// needs recorded modification times.
	SkipNewer       bool
	IncludeMetadata bool
	FollowSymlinks  bool
	IgnoreFile      bool
	// Threads is the worker pool size; 0 uses the number of CPUs.
	Threads int
	Verbose bool

	Logger *slog.Logger
	// Stdout receives manifest data, Stderr receives status output.
	Stdout io.Writer
	Stderr io.Writer
}

func (o RunOptions) logger() *slog.Logger {
	if o.Logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.Logger
}

func (o RunOptions) stdout() io.Writer {
	if o.Stdout == nil {
		return os.Stdout
	}
	return o.Stdout
}

func (o RunOptions) stderr() io.Writer {
	if o.Stderr == nil {
		return os.Stderr
	}
	return o.Stderr
}

func (o RunOptions) algorithm() lib.Algorithm {
	if o.Algorithm == "" {
		return lib.DefaultAlgorithm
	}
	return o.Algorithm
}

// workerCount resolves a configured pool size against the number of jobs.
func workerCount(configured, jobs int) int {
	workers := configured
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > jobs {
		workers = jobs
	}
	return workers
}
