// Package window owns the dashboard's refresh cycles: it pulls block rows
// from the store, folds them into the rolling six-series window, and hands
// complete frames to the renderer. All window state lives on the Controller
// and is threaded through each call; nothing is package-global.
package window

import (
	"context"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/config"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/render"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/series"
	"github.com/lucgerrits/eth-indexer-dashboard/internal/store"
)

// Source is the slice of the block store the controller needs.
type Source interface {
	LatestBlocks(ctx context.Context, n int) ([]store.BlockRow, error)
	BlocksInRange(ctx context.Context, start, stop uint64) ([]store.BlockRow, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
}

// Controller runs one refresh or load cycle per call. For live mode it
// keeps the rolling window between calls; a range load is stateless.
type Controller struct {
	src      Source
	capacity int
	formula  series.TPSFormula

	frame render.Frame
}

// New returns a controller with an empty window. capacity bounds every
// series in live mode.
func New(src Source, capacity int, formula series.TPSFormula) *Controller {
	return &Controller{src: src, capacity: capacity, formula: formula}
}

// Frame returns the current window contents.
func (c *Controller) Frame() *render.Frame {
	return &c.frame
}

// Refresh runs one live cycle: a single query for the newest window of
// rows, fanned out into all six series at once. The fetched batch is merged
// key-aware into the rolling window, so re-fetching already-buffered block
// numbers never introduces duplicates. On fetch failure the window is left
// untouched and the error is returned; the next tick retries naturally.
func (c *Controller) Refresh(ctx context.Context) (*render.Frame, error) {
	rows, err := c.src.LatestBlocks(ctx, c.capacity)
	if err != nil {
		return nil, errors.Wrap(err, "refreshing window")
	}
	if len(rows) == 0 {
		log.Debug("store returned no blocks, keeping current window")
		return &c.frame, nil
	}

	c.frame.Timestamps = series.Merge(c.frame.Timestamps, series.Timestamps(rows), c.capacity)
	c.frame.TxCounts = series.Merge(c.frame.TxCounts, series.TxCounts(rows), c.capacity)
	c.frame.GasUsed = series.Merge(c.frame.GasUsed, series.GasUsed(rows), c.capacity)
	c.frame.SizeKB = series.Merge(c.frame.SizeKB, series.SizeKB(rows), c.capacity)
	c.frame.TPS = series.Merge(c.frame.TPS, series.TPS(rows, c.formula), c.capacity)
	c.frame.BlockTimes = series.Merge(c.frame.BlockTimes, series.BlockTimes(rows), c.capacity)

	return &c.frame, nil
}

// Load runs one historical cycle over [start, stop]. A negative stop is the
// "latest" sentinel and is resolved against the store; an explicit stop
// below start fails with config.ErrInvalidRange before any row query is
// issued. The resulting frame is computed from the full batch in one pass,
// so identical bounds against an unchanged store yield identical frames.
func (c *Controller) Load(ctx context.Context, start uint64, stop int64) (*render.Frame, error) {
	if stop >= 0 && uint64(stop) < start {
		return nil, errors.Wrapf(config.ErrInvalidRange, "start=%d stop=%d", start, stop)
	}

	resolved := uint64(stop)
	if stop < 0 {
		latest, err := c.src.LatestBlockNumber(ctx)
		if err != nil {
			return nil, errors.Wrap(err, "resolving latest block for range")
		}
		if latest < start {
			return nil, errors.Wrapf(config.ErrInvalidRange, "start=%d latest=%d", start, latest)
		}
		resolved = latest
	}

	rows, err := c.src.BlocksInRange(ctx, start, resolved)
	if err != nil {
		return nil, errors.Wrap(err, "loading block range")
	}

	log.WithFields(log.Fields{
		"start": start,
		"stop":  resolved,
		"rows":  len(rows),
	}).Debug("loaded historical range")

	return &render.Frame{
		Timestamps: series.Timestamps(rows),
		TxCounts:   series.TxCounts(rows),
		GasUsed:    series.GasUsed(rows),
		SizeKB:     series.SizeKB(rows),
		TPS:        series.TPS(rows, c.formula),
		BlockTimes: series.BlockTimes(rows),
	}, nil
}
