package commands

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/dustin/go-humanize"

	"github.com/gingerrexayers/treesum-go/internal/treesum/lib"
	"github.com/gingerrexayers/treesum-go/internal/treesum/types"
)

// GenerateOptions configures Generate.
type GenerateOptions struct {
	Algorithm       lib.Algorithm
	IncludeMetadata bool
	// Workers is the pool size; 0 uses the number of CPUs.
	Workers int
	Logger  *slog.Logger
	// Processed, when set, is incremented once per file whether or not the
	// file could be hashed. It exists for progress reporting only.
	Processed *atomic.Int64
}

// GenerateStats summarizes a Generate run.
type GenerateStats struct {
	Entries int
	Errors  int64
	// Bytes is the total size of the files that made it into the manifest.
	Bytes uint64
}

// fileProcessResult is the outcome of processing a single file in a worker.
type fileProcessResult struct {
	Entry types.Entry
	Size  uint64
	Err   error
	File  lib.FileRecord
}

// Generate hashes every record in parallel and returns the sorted manifest.
// Files that cannot be read are left out and counted in the stats; a single
// bad file never fails the run.
func Generate(records []lib.FileRecord, opts GenerateOptions) (*types.Manifest, GenerateStats) {
	alg := opts.Algorithm
	if alg == "" {
		alg = lib.DefaultAlgorithm
	}
	logger := opts.Logger
	if logger == nil {
		logger = RunOptions{}.logger()
	}
	processed := opts.Processed
	if processed == nil {
		processed = new(atomic.Int64)
	}

	numJobs := len(records)
	jobs := make(chan lib.FileRecord, numJobs)
	results := make(chan fileProcessResult, numJobs)

	var errCount atomic.Int64
	var wg sync.WaitGroup
	for w := 0; w < workerCount(opts.Workers, numJobs); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				entry, size, err := processFile(rec, alg, opts.IncludeMetadata)
				if err != nil {
					errCount.Add(1)
				}
				processed.Add(1)
				results <- fileProcessResult{Entry: entry, Size: size, Err: err, File: rec}
			}
		}()
	}

	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	entries := make([]types.Entry, 0, numJobs)
	var stats GenerateStats
	for res := range results {
		if res.Err != nil {
			logger.Warn("error processing file", "path", res.File.AbsPath, "error", res.Err)
			continue
		}
		entries = append(entries, res.Entry)
		stats.Bytes += res.Size
	}

	stats.Entries = len(entries)
	stats.Errors = errCount.Load()
	return lib.NewManifest(alg, entries), stats
}

// processFile hashes one file and, when requested, records its modification
// time and size from the same open handle.
func processFile(rec lib.FileRecord, alg lib.Algorithm, includeMetadata bool) (types.Entry, uint64, error) {
	f, err := os.Open(rec.AbsPath)
	if err != nil {
		return types.Entry{}, 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return types.Entry{}, 0, err
	}

	sum, err := lib.HashReader(f, alg)
	if err != nil {
		return types.Entry{}, 0, err
	}

	size := uint64(info.Size())
	entry := types.Entry{Path: rec.RelPath, Hash: sum}
	if includeMetadata {
		modified := unixSeconds(info)
		entry.Modified = &modified
		entry.Size = &size
	}
	return entry, size, nil
}

// unixSeconds returns the modification time in whole seconds since the
// epoch. Times before the epoch are clamped to zero.
func unixSeconds(info os.FileInfo) uint64 {
	secs := info.ModTime().Unix()
	if secs < 0 {
		return 0
	}
	return uint64(secs)
}

// GenerateDirectory scans targetDirectory, builds its manifest and writes it
// to opts.Output, or to opts.Stdout when no output path is set.
func GenerateDirectory(targetDirectory string, opts RunOptions) error {
	logger := opts.logger()
	stderr := opts.stderr()

	absTargetPath, err := filepath.Abs(targetDirectory)
	if err != nil {
		return fmt.Errorf("could not resolve absolute path for %s: %w", targetDirectory, err)
	}
	if _, err := os.Stat(absTargetPath); os.IsNotExist(err) {
		return fmt.Errorf("target directory does not exist: %s", absTargetPath)
	}

	fmt.Fprintf(stderr, "Scanning directory: %s\n", targetDirectory)
	files, err := lib.Scan(absTargetPath, lib.ScanOptions{
		Excludes:       opts.Excludes,
		FollowSymlinks: opts.FollowSymlinks,
		IgnoreFile:     opts.IgnoreFile,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("error finding files: %w", err)
	}
	fmt.Fprintf(stderr, "Found %s files to process\n", humanize.Comma(int64(len(files))))

	var processed atomic.Int64
	progress := startProgress(stderr, "Processed", len(files), &processed)
	manifest, stats := Generate(files, GenerateOptions{
		Algorithm:       opts.algorithm(),
		IncludeMetadata: opts.IncludeMetadata || opts.SkipNewer,
		Workers:         opts.Threads,
		Logger:          logger,
		Processed:       &processed,
	})
	progress.Stop()

	if opts.Output != "" {
		if err := lib.SaveManifest(opts.Output, manifest); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
		fmt.Fprintf(stderr, "Checksums written to: %s\n", opts.Output)
	} else if err := lib.WriteManifest(opts.stdout(), manifest); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	logger.Debug("generation complete",
		"entries", stats.Entries,
		"bytes", humanize.Bytes(stats.Bytes),
		"algorithm", manifest.Algorithm)
	if stats.Errors > 0 {
		fmt.Fprintf(stderr, "Warning: %d errors occurred during processing\n", stats.Errors)
	}
	return nil
}
