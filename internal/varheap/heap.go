// Package varheap provides an in-memory heap for variable-length payloads.
//
// It stands in for the storage engine's variable-length mechanism in tests
// and in the command line tool: a record stores the 8-byte handle returned
// by Put and resolves it later with Get.
package varheap

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/compound/internal/conv"
)

// ErrUnknownHandle is returned by Get for a handle that was never issued.
var ErrUnknownHandle = errors.New("varheap: unknown handle")

// Heap is an in-memory variable-length store. Handle 0 is the empty
// payload; other handles are 1-based positions in insertion order.
// Thread-safe for concurrent reads and writes.
type Heap struct {
	mu    sync.RWMutex
	blobs [][]byte
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{}
}

// Put stores a copy of b and returns its handle.
func (h *Heap) Put(b []byte) (uint64, error) {
	if len(b) == 0 {
		return 0, nil
	}

	// Copy to prevent external mutation
	copied := make([]byte, len(b))
	copy(copied, b)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.blobs = append(h.blobs, copied)
	return uint64(len(h.blobs)), nil
}

// Get returns the payload stored under handle.
func (h *Heap) Get(handle uint64) ([]byte, error) {
	if handle == 0 {
		return nil, nil
	}
	i, err := conv.Uint64ToInt(handle)
	if err != nil {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, handle)
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if i > len(h.blobs) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownHandle, handle)
	}
	return h.blobs[i-1], nil
}

// Len returns the number of stored payloads.
func (h *Heap) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.blobs)
}
