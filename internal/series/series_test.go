package series

import (
	"testing"
)

func TestMerge(t *testing.T) {
	tests := []struct {
		name     string
		existing Series
		incoming Series
		capacity int
		want     Series
	}{
		{
			name:     "append_to_empty",
			existing: nil,
			incoming: Series{{1, 10}, {2, 20}},
			capacity: 5,
			want:     Series{{1, 10}, {2, 20}},
		},
		{
			name:     "empty_incoming_is_noop",
			existing: Series{{1, 10}},
			incoming: nil,
			capacity: 5,
			want:     Series{{1, 10}},
		},
		{
			name:     "disjoint_append",
			existing: Series{{1, 10}, {2, 20}},
			incoming: Series{{3, 30}, {4, 40}},
			capacity: 10,
			want:     Series{{1, 10}, {2, 20}, {3, 30}, {4, 40}},
		},
		{
			name:     "eviction_keeps_last_capacity",
			existing: Series{{1, 10}, {2, 20}, {3, 30}},
			incoming: Series{{4, 40}, {5, 50}},
			capacity: 3,
			want:     Series{{3, 30}, {4, 40}, {5, 50}},
		},
		{
			// Overlapping fetch at block 3 must not leave a duplicate,
			// not even transiently.
			name:     "overlap_deduplicates",
			existing: Series{{1, 10}, {2, 20}, {3, 30}},
			incoming: Series{{3, 30}, {4, 40}, {5, 50}},
			capacity: 3,
			want:     Series{{3, 30}, {4, 40}, {5, 50}},
		},
		{
			// The incoming batch is authoritative: a re-fetched key takes
			// the new value (carried-forward boundary points get fixed up).
			name:     "overlap_refreshes_values",
			existing: Series{{1, 10}, {2, 20}, {3, 999}},
			incoming: Series{{3, 30}, {4, 40}},
			capacity: 10,
			want:     Series{{1, 10}, {2, 20}, {3, 30}, {4, 40}},
		},
		{
			name:     "incoming_replaces_everything",
			existing: Series{{5, 50}, {6, 60}},
			incoming: Series{{2, 20}, {3, 30}},
			capacity: 10,
			want:     Series{{2, 20}, {3, 30}},
		},
		{
			name:     "zero_capacity_is_unbounded",
			existing: Series{{1, 10}, {2, 20}},
			incoming: Series{{3, 30}, {4, 40}},
			capacity: 0,
			want:     Series{{1, 10}, {2, 20}, {3, 30}, {4, 40}},
		},
		{
			// Gaps in the chain itself are preserved, not synthesized over.
			name:     "gaps_preserved",
			existing: Series{{1, 10}},
			incoming: Series{{5, 50}, {9, 90}},
			capacity: 10,
			want:     Series{{1, 10}, {5, 50}, {9, 90}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.existing, tt.incoming, tt.capacity)
			assertSeriesEqual(t, got, tt.want)

			if tt.capacity > 0 && len(got) > tt.capacity {
				t.Errorf("len = %d exceeds capacity %d", len(got), tt.capacity)
			}
			assertStrictlyIncreasing(t, got)
		})
	}
}

func TestMergeRepeatedFetches(t *testing.T) {
	// Simulate live tailing: every fetch returns the newest 3 blocks and
	// overlaps the previous one. The window must stay bounded, ordered,
	// and duplicate-free throughout.
	var s Series
	const capacity = 3

	for head := uint64(3); head <= 20; head++ {
		batch := Series{
			{head - 2, float64(head - 2)},
			{head - 1, float64(head - 1)},
			{head, float64(head)},
		}
		s = Merge(s, batch, capacity)

		if len(s) > capacity {
			t.Fatalf("head %d: len = %d exceeds capacity", head, len(s))
		}
		assertStrictlyIncreasing(t, s)
	}

	assertSeriesEqual(t, s, Series{{18, 18}, {19, 19}, {20, 20}})
}

func TestSeriesColumns(t *testing.T) {
	s := Series{{7, 1.5}, {9, 2.5}}

	blocks := s.Blocks()
	if len(blocks) != 2 || blocks[0] != 7 || blocks[1] != 9 {
		t.Errorf("Blocks() = %v, want [7 9]", blocks)
	}

	values := s.Values()
	if len(values) != 2 || values[0] != 1.5 || values[1] != 2.5 {
		t.Errorf("Values() = %v, want [1.5 2.5]", values)
	}
}

func assertSeriesEqual(t *testing.T, got, want Series) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d (got %v)", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("point %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func assertStrictlyIncreasing(t *testing.T, s Series) {
	t.Helper()
	for i := 1; i < len(s); i++ {
		if s[i].Block <= s[i-1].Block {
			t.Errorf("blocks not strictly increasing at %d: %d then %d", i, s[i-1].Block, s[i].Block)
		}
	}
}
