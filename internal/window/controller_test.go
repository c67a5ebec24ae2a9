package window

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/config"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/series"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/store"
)

// fakeSource serves canned batches and counts row queries.
type fakeSource struct {
	batches [][]store.BlockRow // successive LatestBlocks responses
	rows    []store.BlockRow   // BlocksInRange backing data
	latest  uint64
	err     error

	calls      int
	queryCount int
}

func (f *fakeSource) LatestBlocks(_ context.Context, n int) ([]store.BlockRow, error) {
	f.queryCount++
	if f.err != nil {
		return nil, f.err
	}
	batch := f.batches[f.calls]
	if f.calls < len(f.batches)-1 {
		f.calls++
	}
	if len(batch) > n {
		batch = batch[len(batch)-n:]
	}
	return batch, nil
}

func (f *fakeSource) BlocksInRange(_ context.Context, start, stop uint64) ([]store.BlockRow, error) {
	f.queryCount++
	if f.err != nil {
		return nil, f.err
	}
	var out []store.BlockRow
	for _, r := range f.rows {
		if r.Number >= start && r.Number <= stop {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeSource) LatestBlockNumber(context.Context) (uint64, error) {
	if f.err != nil {
		return 0, f.err
	}
	return f.latest, nil
}

func mkRows(numbers ...uint64) []store.BlockRow {
	rows := make([]store.BlockRow, len(numbers))
	for i, n := range numbers {
		rows[i] = store.BlockRow{
			Number:    n,
			Timestamp: int64(100 + n*6),
			TxCount:   n * 2,
			GasUsed:   n * 21000,
			SizeBytes: n * 1024,
		}
	}
	return rows
}

func TestRefreshOverlappingFetches(t *testing.T) {
	src := &fakeSource{batches: [][]store.BlockRow{
		mkRows(1, 2, 3),
		mkRows(3, 4, 5),
	}}
	ctrl := New(src, 3, series.FormulaBlock)

	frame, err := ctrl.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3}, frame.TxCounts.Blocks())

	// Second fetch overlaps at block 3: the window must hold exactly
	// [3 4 5] with no duplicate key, for every series.
	frame, err = ctrl.Refresh(context.Background())
	require.NoError(t, err)
	for _, ns := range frame.Ordered() {
		require.Equal(t, []uint64{3, 4, 5}, ns.Series.Blocks(), ns.Label)
	}
}

func TestRefreshFillsDerivedBoundary(t *testing.T) {
	src := &fakeSource{batches: [][]store.BlockRow{
		mkRows(1, 2, 3),
		mkRows(2, 3, 4),
	}}
	ctrl := New(src, 10, series.FormulaBlock)

	frame, err := ctrl.Refresh(context.Background())
	require.NoError(t, err)

	// Block 3 is the boundary: its TPS is carried forward from block 2.
	carried := frame.TPS[len(frame.TPS)-1].Value
	require.Equal(t, frame.TPS[len(frame.TPS)-2].Value, carried)

	// Once block 4 arrives, block 3 gets a genuine value: txs(3)/gap.
	frame, err = ctrl.Refresh(context.Background())
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2, 3, 4}, frame.TPS.Blocks())
	require.Equal(t, 6.0/6.0, frame.TPS[2].Value)
}

func TestRefreshErrorKeepsWindow(t *testing.T) {
	src := &fakeSource{batches: [][]store.BlockRow{mkRows(1, 2, 3)}}
	ctrl := New(src, 3, series.FormulaBlock)

	_, err := ctrl.Refresh(context.Background())
	require.NoError(t, err)

	src.err = errors.New("connection refused")
	_, err = ctrl.Refresh(context.Background())
	require.Error(t, err)

	// The failed cycle must not disturb the buffered window.
	require.Equal(t, []uint64{1, 2, 3}, ctrl.Frame().TxCounts.Blocks())
}

func TestRefreshEmptyStore(t *testing.T) {
	src := &fakeSource{batches: [][]store.BlockRow{nil}}
	ctrl := New(src, 3, series.FormulaBlock)

	frame, err := ctrl.Refresh(context.Background())
	require.NoError(t, err)
	require.Empty(t, frame.TxCounts)
}

func TestLoadInvalidRange(t *testing.T) {
	src := &fakeSource{rows: mkRows(1, 2, 3, 4, 5)}
	ctrl := New(src, 0, series.FormulaBlock)

	_, err := ctrl.Load(context.Background(), 5, 3)
	require.ErrorIs(t, err, config.ErrInvalidRange)

	// The bad range must be rejected before any row query.
	require.Zero(t, src.queryCount)
}

func TestLoadResolvesStopSentinel(t *testing.T) {
	src := &fakeSource{rows: mkRows(1, 2, 3, 4, 5), latest: 4}
	ctrl := New(src, 0, series.FormulaBlock)

	frame, err := ctrl.Load(context.Background(), 2, -1)
	require.NoError(t, err)
	require.Equal(t, []uint64{2, 3, 4}, frame.TxCounts.Blocks())
}

func TestLoadSentinelBehindStart(t *testing.T) {
	src := &fakeSource{rows: mkRows(1, 2, 3), latest: 3}
	ctrl := New(src, 0, series.FormulaBlock)

	_, err := ctrl.Load(context.Background(), 10, -1)
	require.ErrorIs(t, err, config.ErrInvalidRange)
}

func TestLoadIdempotent(t *testing.T) {
	src := &fakeSource{rows: mkRows(1, 2, 3, 4, 5)}
	ctrl := New(src, 0, series.FormulaBlock)

	first, err := ctrl.Load(context.Background(), 1, 5)
	require.NoError(t, err)
	second, err := ctrl.Load(context.Background(), 1, 5)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestLoadComputesAllSeries(t *testing.T) {
	src := &fakeSource{rows: mkRows(1, 2, 3)}
	ctrl := New(src, 0, series.FormulaBlock)

	frame, err := ctrl.Load(context.Background(), 1, 3)
	require.NoError(t, err)

	for _, ns := range frame.Ordered() {
		require.Len(t, ns.Series, 3, ns.Label)
	}

	// Spot-check the derived values: 6s gaps, txs = 2*number.
	require.Equal(t, 6.0, frame.BlockTimes[0].Value)
	require.Equal(t, 2.0/6.0, frame.TPS[0].Value)
	// SizeBytes = number*1024 bytes, so SizeKB = number.
	require.Equal(t, 2.0, frame.SizeKB[1].Value)
}
