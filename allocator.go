package linframe

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/paveg/linframe/internal/errors"
)

// Allocator hands out variable ids. Ids are strictly positive and increase
// monotonically; each variable receives one contiguous block. An Allocator
// is safe for concurrent use.
type Allocator struct {
	last atomic.Uint32
}

// NewAllocator creates an allocator whose first id is 1.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Reserve returns the first id of a block of n fresh ids.
func (a *Allocator) Reserve(n int) (uint32, error) {
	if n < 0 {
		return 0, errors.NewDomainError("Reserve", fmt.Sprintf("cannot reserve %d ids", n))
	}
	for {
		last := a.last.Load()
		if uint64(last)+uint64(n) > math.MaxUint32 {
			return 0, errors.NewDomainError("Reserve", "variable ids exhausted")
		}
		if a.last.CompareAndSwap(last, last+uint32(n)) {
			return last + 1, nil
		}
	}
}

// Issued returns the number of ids handed out so far.
func (a *Allocator) Issued() int {
	return int(a.last.Load())
}
