// Package series holds the rolling-window metric buffers and the derived
// metric calculations. Everything here is a pure function over ascending
// batches of block rows; callers own the series values between calls.
package series

import "sort"

// Point is one (block number, value) sample.
type Point struct {
	Block uint64
	Value float64
}

// Series is an ordered sequence of points, strictly increasing in block
// number with no duplicate keys.
type Series []Point

// Blocks returns the block-number column of the series.
func (s Series) Blocks() []uint64 {
	out := make([]uint64, len(s))
	for i, p := range s {
		out[i] = p.Block
	}
	return out
}

// Values returns the value column of the series.
func (s Series) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Merge folds an ascending incoming batch into an existing series and trims
// the result to the last capacity points. The incoming batch is treated as
// authoritative for its key range: any buffered points at or above the
// batch's first key are discarded before the batch is appended. This keeps
// keys strictly increasing across overlapping fetches and also refreshes
// the carried-forward boundary point of derived series once its successor
// arrives.
//
// A capacity <= 0 means unbounded. An empty incoming batch is a no-op.
// Gaps present in the batch itself are preserved, never filled in.
func Merge(existing, incoming Series, capacity int) Series {
	if len(incoming) == 0 {
		return existing
	}

	cut := sort.Search(len(existing), func(i int) bool {
		return existing[i].Block >= incoming[0].Block
	})

	merged := make(Series, 0, cut+len(incoming))
	merged = append(merged, existing[:cut]...)
	merged = append(merged, incoming...)

	if capacity > 0 && len(merged) > capacity {
		merged = merged[len(merged)-capacity:]
	}
	return merged
}
