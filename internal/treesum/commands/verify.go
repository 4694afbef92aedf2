package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
	"github.com/gingerrexayers/treesum-go/internal/treesum/types"
)

// VerifyOptions configures Verify.
type VerifyOptions struct {
	Algorithm lib.Algorithm
	SkipNewer bool
	// Workers is the pool size; 0 uses the number of CPUs.
	Workers int
	Logger  *slog.Logger
	// Processed, when set, is incremented once per verified entry.
	Processed *atomic.Int64
}

// VerifyEntry checks a single manifest entry against the file at path.
func VerifyEntry(path string, entry types.Entry, alg lib.Algorithm, skipNewer bool) types.Outcome {
	failed := func(format string, args ...any) types.Outcome {
		return types.Outcome{Path: entry.Path, Status: types.StatusFailed, Message: fmt.Sprintf(format, args...)}
	}

	info, statErr := os.Stat(path)
	if errors.Is(statErr, fs.ErrNotExist) {
		return failed("File not found")
	}

	if skipNewer && entry.Modified != nil {
		if statErr != nil {
			return failed("Cannot read metadata: %v", statErr)
		}
		if unixSeconds(info) > *entry.Modified {
			return types.Outcome{Path: entry.Path, Status: types.StatusSkipped, Message: "File is newer on target"}
		}
	}

	actual, err := lib.GetFileHash(path, alg)
	if err != nil {
		return failed("Cannot compute hash: %v", err)
	}
	if actual != entry.Hash {
		return failed("Hash mismatch: expected %s, got %s", entry.Hash, actual)
	}
	return types.Outcome{Path: entry.Path, Status: types.StatusOK}
}

// Verify re-hashes every entry of m below root in parallel. Each outcome is
// passed to emit as soon as it is known; emit is always called from the
// calling goroutine, never concurrently. The returned summary is complete
// once Verify returns.
func Verify(m *types.Manifest, root string, opts VerifyOptions, emit func(types.Outcome)) types.Summary {
	alg := opts.Algorithm
	if alg == "" {
		alg = lib.ResolveAlgorithm(m.Algorithm, opts.Logger)
	}
	processed := opts.Processed
	if processed == nil {
		processed = new(atomic.Int64)
	}

	numJobs := len(m.Entries)
	jobs := make(chan types.Entry, numJobs)
	results := make(chan types.Outcome, numJobs)

	var okCount, failCount, skipCount atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workerCount(opts.Workers, numJobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for entry := range jobs {
				fullPath := filepath.Join(root, filepath.FromSlash(entry.Path))
				outcome := VerifyEntry(fullPath, entry, alg, opts.SkipNewer)
				switch outcome.Status {
				case types.StatusOK:
					okCount.Add(1)
				case types.StatusFailed:
					failCount.Add(1)
				case types.StatusSkipped:
					skipCount.Add(1)
				}
				processed.Add(1)
				results <- outcome
			}
		}()
	}

	for _, entry := range m.Entries {
		jobs <- entry
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	for outcome := range results {
		if emit != nil {
			emit(outcome)
		}
	}

	return types.Summary{
		OK:      int(okCount.Load()),
		Failed:  int(failCount.Load()),
		Skipped: int(skipCount.Load()),
		Total:   numJobs,
	}
}

// VerifyDirectory verifies root against the manifest stored at manifestPath.
// It returns ErrVerificationFailed when any entry failed.
func VerifyDirectory(manifestPath, root string, opts RunOptions) error {
	logger := opts.logger()
	stderr := opts.stderr()

	manifest, err := lib.LoadManifest(manifestPath)
	if err != nil {
		return fmt.Errorf("failed to load manifest: %w", err)
	}

	// The manifest records the algorithm its digests were made with.
	alg := lib.ResolveAlgorithm(manifest.Algorithm, logger)
	if opts.Algorithm != "" && opts.Algorithm != alg {
		logger.Debug("using manifest algorithm", "requested", string(opts.Algorithm), "manifest", string(alg))
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("could not resolve absolute path for %s: %w", root, err)
	}

	fmt.Fprintf(stderr, "Verifying %s files using %s algorithm\n",
		humanize.Comma(int64(len(manifest.Entries))), manifest.Algorithm)

	var processed atomic.Int64
	progress := startProgress(stderr, "Verified", len(manifest.Entries), &processed)
	summary := Verify(manifest, absRoot, VerifyOptions{
		Algorithm: alg,
		SkipNewer: opts.SkipNewer,
		Workers:   opts.Threads,
		Logger:    logger,
		Processed: &processed,
	}, func(o types.Outcome) {
		printOutcome(stderr, o, opts.Verbose)
	})
	progress.Stop()

	printSummary(stderr, summary)

	if !summary.Success() {
		return fmt.Errorf("%w: %d of %d entries failed", ErrVerificationFailed, summary.Failed, summary.Total)
	}
	return nil
}

// printOutcome writes one status line. Failures are always shown; OK and
// skipped entries only in verbose mode.
func printOutcome(w io.Writer, o types.Outcome, verbose bool) {
	switch o.Status {
	case types.StatusFailed:
		fmt.Fprintf(w, "%s: %s - %s\n", o.Status, o.Path, o.Message)
	case types.StatusSkipped:
		if verbose {
			fmt.Fprintf(w, "%s: %s - %s\n", o.Status, o.Path, o.Message)
		}
	case types.StatusOK:
		if verbose {
			fmt.Fprintf(w, "%s: %s\n", o.Status, o.Path)
		}
	}
}

func printSummary(w io.Writer, s types.Summary) {
	fmt.Fprintln(w, "\nSummary:")
	fmt.Fprintf(w, "  OK:      %s\n", humanize.Comma(int64(s.OK)))
	fmt.Fprintf(w, "  Failed:  %s\n", humanize.Comma(int64(s.Failed)))
	fmt.Fprintf(w, "  Skipped: %s\n", humanize.Comma(int64(s.Skipped)))
	fmt.Fprintf(w, "  Total:   %s\n", humanize.Comma(int64(s.Total)))
}
