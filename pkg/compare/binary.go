package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/dupnorris/pkg/models"
	"github.com/sdejongh/dupnorris/pkg/storage"
)

// BinaryComparator compares files byte-by-byte
type BinaryComparator struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare compares two files byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, backend storage.Backend, pathA, pathB string) (*Comparison, error) {
	infoA, err := backend.Stat(ctx, pathA)
	if err != nil {
		return c.failed(pathA, pathB, err)
	}
	infoB, err := backend.Stat(ctx, pathB)
	if err != nil {
		return c.failed(pathA, pathB, err)
	}

	// Hard links share their content
	if storage.SameFile(infoA, infoB) {
		return &Comparison{
			PathA:  pathA,
			PathB:  pathB,
			Result: Same,
			Reason: "same underlying file",
		}, nil
	}

	if infoA.Size != infoB.Size {
		return &Comparison{
			PathA:  pathA,
			PathB:  pathB,
			Result: Different,
			Reason: fmt.Sprintf("size mismatch: %d != %d", infoA.Size, infoB.Size),
		}, nil
	}

	readerA, err := backend.Read(ctx, pathA)
	if err != nil {
		return c.failed(pathA, pathB, err)
	}
	defer readerA.Close()

	readerB, err := backend.Read(ctx, pathB)
	if err != nil {
		return c.failed(pathA, pathB, err)
	}
	defer readerB.Close()

	// Get buffers from pool
	bufPtrA := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtrA)
	bufA := *bufPtrA

	bufPtrB := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(bufPtrB)
	bufB := *bufPtrB

	var compared int64
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		nA, errA := io.ReadFull(readerA, bufA)
		if errA != nil && !isEnd(errA) {
			return c.failed(pathA, pathB, &models.IOError{Op: "read", Path: pathA, Err: errA})
		}
		nB, errB := io.ReadFull(readerB, bufB)
		if errB != nil && !isEnd(errB) {
			return c.failed(pathA, pathB, &models.IOError{Op: "read", Path: pathB, Err: errB})
		}

		if nA != nB {
			// The file changed size after Stat
			return &Comparison{
				PathA:         pathA,
				PathB:         pathB,
				Result:        Different,
				Reason:        fmt.Sprintf("length differs after offset %d", compared),
				BytesCompared: compared,
			}, nil
		}

		if !bytes.Equal(bufA[:nA], bufB[:nB]) {
			offset := compared
			for i := 0; i < nA; i++ {
				if bufA[i] != bufB[i] {
					offset += int64(i)
					break
				}
			}
			return &Comparison{
				PathA:         pathA,
				PathB:         pathB,
				Result:        Different,
				Reason:        fmt.Sprintf("content differs at byte offset %d", offset),
				BytesCompared: compared + int64(nA),
			}, nil
		}

		compared += int64(nA)

		// A short read means both files ended
		if nA < len(bufA) {
			break
		}
	}

	return &Comparison{
		PathA:         pathA,
		PathB:         pathB,
		Result:        Same,
		Reason:        fmt.Sprintf("binary content matches (%d bytes)", compared),
		BytesCompared: compared,
	}, nil
}

func (c *BinaryComparator) failed(pathA, pathB string, err error) (*Comparison, error) {
	return &Comparison{
		PathA:  pathA,
		PathB:  pathB,
		Result: Error,
		Reason: "comparison failed",
		Error:  err,
	}, err
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEnd(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}
