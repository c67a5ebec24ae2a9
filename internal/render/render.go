// Package render turns a frame of six metric series into terminal or JSON
// output. Commands keep fetching and series logic separate from rendering
// by handing a complete frame to a Renderer.
package render

import "github.com/lucgerrits/eth-indexer-dashboard/internal/series"

// Axis labels shared by every renderer.
const (
	XLabel         = "Block Number"
	LabelTimestamp = "Timestamp"
	LabelTxCount   = "Transaction Count"
	LabelGasUsed   = "Gas Used"
	LabelTPS       = "TPS (transaction/sec)"
	LabelBlockTime = "Blocktime (sec)"
	LabelSizeKB    = "Block Size (KB)"
)

// Frame is one complete view of the dashboard: the six series plotted
// against block number. A redraw replaces the previous frame entirely.
type Frame struct {
	Timestamps series.Series
	TxCounts   series.Series
	GasUsed    series.Series
	TPS        series.Series
	BlockTimes series.Series
	SizeKB     series.Series
}

// NamedSeries pairs a series with its y-axis label, in the fixed
// presentation order of the dashboard.
type NamedSeries struct {
	Label  string
	Series series.Series
}

// Ordered returns the frame's series in presentation order.
func (f *Frame) Ordered() []NamedSeries {
	return []NamedSeries{
		{LabelTimestamp, f.Timestamps},
		{LabelTxCount, f.TxCounts},
		{LabelGasUsed, f.GasUsed},
		{LabelTPS, f.TPS},
		{LabelBlockTime, f.BlockTimes},
		{LabelSizeKB, f.SizeKB},
	}
}

// Span returns the lowest and highest block numbers present in the frame,
// and false when the frame is empty.
func (f *Frame) Span() (lo, hi uint64, ok bool) {
	for _, ns := range f.Ordered() {
		if len(ns.Series) == 0 {
			continue
		}
		first, last := ns.Series[0].Block, ns.Series[len(ns.Series)-1].Block
		if !ok {
			lo, hi, ok = first, last, true
			continue
		}
		if first < lo {
			lo = first
		}
		if last > hi {
			hi = last
		}
	}
	return lo, hi, ok
}

// Renderer draws one frame, replacing whatever was drawn before.
type Renderer interface {
	Render(f *Frame) error
}
