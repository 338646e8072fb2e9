package dataframe

import (
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/paveg/linframe/internal/config"
	"github.com/paveg/linframe/internal/parallel"
	"github.com/paveg/linframe/internal/series"
)

const (
	hashMapLoadFactor     = 0.75
	hashMapGrowthFactor   = 2
	hashMapCapacityFactor = 1.5
)

// hashIndex maps encoded row keys to the rows carrying them. Groups are
// numbered in first-insertion order, which is what gives group-bys and
// distinct their maintain-order semantics.
type hashIndex struct {
	buckets [][]int // group ids per bucket
	groups  []hashGroup
	mask    uint64
}

type hashGroup struct {
	key  string
	rows []int
}

func newHashIndex(estimatedSize int) *hashIndex {
	capacity := nextPowerOfTwo(int(float64(estimatedSize) * hashMapCapacityFactor))
	return &hashIndex{
		buckets: make([][]int, capacity),
		mask:    uint64(capacity - 1), //nolint:gosec // capacity is at least 1
	}
}

// put records row under key and returns the group id.
func (h *hashIndex) put(key string, row int) int {
	bucket := xxhash.Sum64String(key) & h.mask
	for _, g := range h.buckets[bucket] {
		if h.groups[g].key == key {
			h.groups[g].rows = append(h.groups[g].rows, row)
			return g
		}
	}

	id := len(h.groups)
	h.groups = append(h.groups, hashGroup{key: key, rows: []int{row}})
	h.buckets[bucket] = append(h.buckets[bucket], id)

	if float64(len(h.groups)) > float64(len(h.buckets))*hashMapLoadFactor {
		h.resize()
	}
	return id
}

// get returns the rows recorded under key.
func (h *hashIndex) get(key string) ([]int, bool) {
	bucket := xxhash.Sum64String(key) & h.mask
	for _, g := range h.buckets[bucket] {
		if h.groups[g].key == key {
			return h.groups[g].rows, true
		}
	}
	return nil, false
}

func (h *hashIndex) resize() {
	capacity := len(h.buckets) * hashMapGrowthFactor
	buckets := make([][]int, capacity)
	mask := uint64(capacity - 1) //nolint:gosec // capacity is positive
	for id, g := range h.groups {
		bucket := xxhash.Sum64String(g.key) & mask
		buckets[bucket] = append(buckets[bucket], id)
	}
	h.buckets = buckets
	h.mask = mask
}

func nextPowerOfTwo(n int) int {
	if n <= 1 {
		return 1
	}
	power := 1
	for power < n {
		power <<= 1
	}
	return power
}

// encodeKeys returns one binary key per row over cols. Large frames are
// encoded chunk by chunk on a worker pool.
func encodeKeys(cols []series.ISeries, rows int) []string {
	keys := make([]string, rows)
	encode := func(r parallel.Range) {
		var buf []byte
		for i := r.Start; i < r.End; i++ {
			buf = buf[:0]
			for _, col := range cols {
				buf = col.AppendKey(buf, i)
			}
			keys[i] = string(buf)
		}
	}

	cfg := config.GetGlobalConfig()
	if rows < cfg.ParallelThreshold {
		encode(parallel.Range{Start: 0, End: rows})
		return keys
	}

	wp := parallel.NewWorkerPool(cfg.Workers())
	parallel.ProcessIndexed(wp, parallel.Split(rows, cfg.ChunkFor(rows)), func(_ int, r parallel.Range) struct{} {
		encode(r)
		return struct{}{}
	})
	return keys
}

// index builds a hashIndex over the named columns.
func (df *DataFrame) index(op string, names []string) (*hashIndex, error) {
	cols, err := df.lookup(op, names)
	if err != nil {
		return nil, err
	}
	idx := newHashIndex(df.rows)
	for row, key := range encodeKeys(cols, df.rows) {
		idx.put(key, row)
	}
	return idx, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
