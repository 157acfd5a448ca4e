package compare

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"fmt"
	"hash"
	"io"
	"sync"

	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// Partial hashing configuration
const (
	// Minimum file size to enable partial hashing (1MB)
	PartialHashThreshold = 1 * 1024 * 1024
	// Size of partial hash to compute (256KB)
	PartialHashSize = 256 * 1024
)

// Algorithm names a digest function
type Algorithm string

const (
	// SHA256 is the default digest
	SHA256 Algorithm = "sha256"
	// MD5 is faster and adequate as a prefilter, since matches are confirmed byte-by-byte
	MD5 Algorithm = "md5"
)

// Hasher computes content fingerprints used to split size buckets.
// Digests live only for the duration of one scan.
type Hasher struct {
	algorithm  Algorithm
	bufferSize int
	bufferPool *sync.Pool
}

// NewHasher creates a hasher for the given algorithm
func NewHasher(algorithm Algorithm, bufferSize int) (*Hasher, error) {
	switch algorithm {
	case "":
		algorithm = SHA256
	case SHA256, MD5:
	default:
		return nil, &models.ValidationError{Field: "hash", Message: "must be 'sha256' or 'md5'"}
	}

	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &Hasher{
		algorithm:  algorithm,
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}, nil
}

// NeedsPartial reports whether files of this size get a partial digest first
func NeedsPartial(size int64) bool {
	return size >= PartialHashThreshold
}

// Digest computes the digest of the whole file
func (h *Hasher) Digest(ctx context.Context, backend storage.Backend, path string) (string, int64, error) {
	return h.digest(ctx, backend, path, -1)
}

// PartialDigest computes the digest of the first PartialHashSize bytes
func (h *Hasher) PartialDigest(ctx context.Context, backend storage.Backend, path string) (string, int64, error) {
	return h.digest(ctx, backend, path, PartialHashSize)
}

// digest hashes up to limit bytes (all of them when limit < 0)
func (h *Hasher) digest(ctx context.Context, backend storage.Backend, path string, limit int64) (string, int64, error) {
	reader, err := backend.Read(ctx, path)
	if err != nil {
		return "", 0, err
	}
	defer reader.Close()

	var src io.Reader = reader
	if limit >= 0 {
		src = io.LimitReader(reader, limit)
	}

	hasher := h.newHash()

	// Get buffer from pool
	bufPtr := h.bufferPool.Get().(*[]byte)
	buffer := *bufPtr
	defer h.bufferPool.Put(bufPtr)

	var totalRead int64
	for {
		// Check context cancellation
		select {
		case <-ctx.Done():
			return "", totalRead, ctx.Err()
		default:
		}

		n, err := src.Read(buffer)
		if n > 0 {
			hasher.Write(buffer[:n])
			totalRead += int64(n)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", totalRead, &models.IOError{Op: "read", Path: path, Err: err}
		}
	}

	return fmt.Sprintf("%x", hasher.Sum(nil)), totalRead, nil
}

func (h *Hasher) newHash() hash.Hash {
	if h.algorithm == MD5 {
		return md5.New()
	}
	return sha256.New()
}

// Name returns the digest algorithm
func (h *Hasher) Name() string {
	return string(h.algorithm)
}
