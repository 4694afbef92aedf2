// Package lib contains the core, reusable services for the treesum application.
package lib

import (
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/crypto/blake2s"
)

// Algorithm is the canonical lowercase name of a supported digest algorithm.
type Algorithm string

const (
	SHA256 Algorithm = "sha256"
	MD5    Algorithm = "md5"
	CRC32  Algorithm = "crc32"
	Blake2 Algorithm = "blake2"
	XXH3   Algorithm = "xxh3"
)

// DefaultAlgorithm is used when no algorithm is configured and as the
// fallback for manifests naming an algorithm we do not know.
const DefaultAlgorithm = SHA256

// ChunkSize is the size of the buffer files are streamed through.
const ChunkSize = 64 * 1024

var (
	// ErrUnknownAlgorithm is returned by ParseAlgorithm for unsupported names.
	ErrUnknownAlgorithm = errors.New("unknown hash algorithm")
	// ErrDigestFinalized is returned when a digest is used after Finalize.
	ErrDigestFinalized = errors.New("digest already finalized")
)

// Algorithms lists every supported algorithm in the order they are documented.
var Algorithms = []Algorithm{SHA256, MD5, CRC32, Blake2, XXH3}

// ParseAlgorithm converts a user-supplied name into an Algorithm. Matching is
// case-insensitive.
func ParseAlgorithm(name string) (Algorithm, error) {
	candidate := Algorithm(strings.ToLower(strings.TrimSpace(name)))
	for _, alg := range Algorithms {
		if alg == candidate {
			return alg, nil
		}
	}
	return "", fmt.Errorf("%w: %q (want one of %s)", ErrUnknownAlgorithm, name, algorithmList())
}

// ResolveAlgorithm is the lenient variant of ParseAlgorithm used for names
// read from a persisted manifest. Unknown names log a warning and resolve to
// DefaultAlgorithm instead of failing.
func ResolveAlgorithm(name string, logger *slog.Logger) Algorithm {
	alg, err := ParseAlgorithm(name)
	if err != nil {
		loggerOrDiscard(logger).Warn("unknown algorithm in manifest, using default",
			"algorithm", name, "default", string(DefaultAlgorithm))
		return DefaultAlgorithm
	}
	return alg
}

func algorithmList() string {
	names := make([]string, len(Algorithms))
	for i, alg := range Algorithms {
		names[i] = string(alg)
	}
	return strings.Join(names, "|")
}

// HexWidth returns the number of hex characters in a digest produced by alg.
func (alg Algorithm) HexWidth() int {
	switch alg {
	case SHA256, Blake2:
		return 64
	case MD5:
		return 32
	case CRC32:
		return 8
	case XXH3:
		return 16
	default:
		return 0
	}
}

// StreamingDigest accumulates bytes and produces a hex digest exactly once.
type StreamingDigest interface {
	io.Writer
	Finalize() (string, error)
}

// New returns a fresh accumulator for alg. Unknown algorithms get SHA-256,
// matching ResolveAlgorithm.
func (alg Algorithm) New() StreamingDigest {
	switch alg {
	case MD5:
		return &hashDigest{h: md5.New()}
	case CRC32:
		return &crc32Digest{h: crc32.NewIEEE()}
	case Blake2:
		// New256 only fails for keys longer than 32 bytes.
		h, _ := blake2s.New256(nil)
		return &hashDigest{h: h}
	case XXH3:
		return &xxh3Digest{h: xxh3.New()}
	default:
		return &hashDigest{h: sha256.New()}
	}
}

// hashDigest covers the byte-oriented algorithms whose canonical form is the
// plain hex encoding of Sum.
type hashDigest struct {
	h    hash.Hash
	done bool
}

func (d *hashDigest) Write(p []byte) (int, error) {
	if d.done {
		return 0, ErrDigestFinalized
	}
	return d.h.Write(p)
}

func (d *hashDigest) Finalize() (string, error) {
	if d.done {
		return "", ErrDigestFinalized
	}
	d.done = true
	return hex.EncodeToString(d.h.Sum(nil)), nil
}

type crc32Digest struct {
	h    hash.Hash32
	done bool
}

func (d *crc32Digest) Write(p []byte) (int, error) {
	if d.done {
		return 0, ErrDigestFinalized
	}
	return d.h.Write(p)
}

func (d *crc32Digest) Finalize() (string, error) {
	if d.done {
		return "", ErrDigestFinalized
	}
	d.done = true
	return fmt.Sprintf("%08x", d.h.Sum32()), nil
}

type xxh3Digest struct {
	h    *xxh3.Hasher
	done bool
}

func (d *xxh3Digest) Write(p []byte) (int, error) {
	if d.done {
		return 0, ErrDigestFinalized
	}
	return d.h.Write(p)
}

func (d *xxh3Digest) Finalize() (string, error) {
	if d.done {
		return "", ErrDigestFinalized
	}
	d.done = true
	return fmt.Sprintf("%016x", d.h.Sum64()), nil
}

// bufferPool hands out ChunkSize read buffers so that concurrent workers
// reuse memory instead of allocating one per file.
var bufferPool = sync.Pool{
	New: func() any {
		buf := make([]byte, ChunkSize)
		return &buf
	},
}

// GetHash calculates the digest of an in-memory byte slice.
func GetHash(content []byte, alg Algorithm) string {
	d := alg.New()
	_, _ = d.Write(content)
	sum, _ := d.Finalize()
	return sum
}

// HashReader streams r through alg in ChunkSize pieces and returns the
// lowercase hex digest.
func HashReader(r io.Reader, alg Algorithm) (string, error) {
	bufPtr := bufferPool.Get().(*[]byte)
	defer bufferPool.Put(bufPtr)

	d := alg.New()
	// Reads stay bounded by ChunkSize; io.CopyBuffer may bypass buf.
	buf := *bufPtr
	for {
		n, err := r.Read(buf)
		if n > 0 {
			if _, werr := d.Write(buf[:n]); werr != nil {
				return "", werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return d.Finalize()
}

// GetFileHash calculates the digest of a file's contents by streaming it
// from disk.
func GetFileHash(filePath string, alg Algorithm) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", filePath, err)
	}
	defer file.Close()

	sum, err := HashReader(file, alg)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", filePath, err)
	}
	return sum, nil
}
