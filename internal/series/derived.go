package series

import (
	"fmt"

	"github.com/lucgerrits/eth-indexer-dashboard/internal/store"
)

// TPSFormula selects how per-block throughput is derived from adjacent
// rows. Both variants are defensible readings of "throughput between two
// blocks", so the choice is configuration rather than a silent default.
type TPSFormula string

const (
	// FormulaBlock divides the earlier row's transaction count by the gap
	// to the next block: throughput realized during the interval starting
	// at that block.
	FormulaBlock TPSFormula = "block"

	// FormulaDelta divides the change in transaction count between the two
	// rows by the gap, clamped at zero when the count decreases.
	FormulaDelta TPSFormula = "delta"
)

// ParseTPSFormula validates a formula name from configuration.
func ParseTPSFormula(s string) (TPSFormula, error) {
	switch TPSFormula(s) {
	case FormulaBlock, FormulaDelta:
		return TPSFormula(s), nil
	}
	return "", fmt.Errorf("unknown tps formula %q (expected %s or %s)", s, FormulaBlock, FormulaDelta)
}

// Timestamps extracts the raw timestamp series from an ascending batch.
func Timestamps(rows []store.BlockRow) Series {
	out := make(Series, len(rows))
	for i, r := range rows {
		out[i] = Point{Block: r.Number, Value: float64(r.Timestamp)}
	}
	return out
}

// TxCounts extracts the raw transaction-count series.
func TxCounts(rows []store.BlockRow) Series {
	out := make(Series, len(rows))
	for i, r := range rows {
		out[i] = Point{Block: r.Number, Value: float64(r.TxCount)}
	}
	return out
}

// GasUsed extracts the raw gas-used series.
func GasUsed(rows []store.BlockRow) Series {
	out := make(Series, len(rows))
	for i, r := range rows {
		out[i] = Point{Block: r.Number, Value: float64(r.GasUsed)}
	}
	return out
}

// SizeKB extracts the block-size series in kibibytes (bytes / 1024).
func SizeKB(rows []store.BlockRow) Series {
	out := make(Series, len(rows))
	for i, r := range rows {
		out[i] = Point{Block: r.Number, Value: float64(r.SizeBytes) / 1024}
	}
	return out
}

// BlockTimes computes the inter-block time series: for each adjacent pair,
// the timestamp delta in seconds, attached to the earlier block. The final
// row has no successor yet, so it carries the previous point's value
// forward. A single-row batch yields an empty series.
func BlockTimes(rows []store.BlockRow) Series {
	if len(rows) < 2 {
		return nil
	}

	out := make(Series, 0, len(rows))
	for i := 0; i < len(rows)-1; i++ {
		delta := float64(rows[i+1].Timestamp - rows[i].Timestamp)
		out = append(out, Point{Block: rows[i].Number, Value: delta})
	}

	// Boundary: no successor for the newest block yet.
	out = append(out, Point{
		Block: rows[len(rows)-1].Number,
		Value: out[len(out)-1].Value,
	})
	return out
}

// TPS computes the transactions-per-second series for an ascending batch
// using the selected formula. A non-positive timestamp delta clamps the
// value to zero instead of dividing by it. The final row mirrors
// BlockTimes' carry-forward boundary. A single-row batch yields an empty
// series.
func TPS(rows []store.BlockRow, formula TPSFormula) Series {
	if len(rows) < 2 {
		return nil
	}

	out := make(Series, 0, len(rows))
	for i := 0; i < len(rows)-1; i++ {
		delta := float64(rows[i+1].Timestamp - rows[i].Timestamp)

		var tps float64
		if delta > 0 {
			switch formula {
			case FormulaDelta:
				diff := float64(rows[i+1].TxCount) - float64(rows[i].TxCount)
				if diff > 0 {
					tps = diff / delta
				}
			default:
				tps = float64(rows[i].TxCount) / delta
			}
		}
		out = append(out, Point{Block: rows[i].Number, Value: tps})
	}

	out = append(out, Point{
		Block: rows[len(rows)-1].Number,
		Value: out[len(out)-1].Value,
	})
	return out
}
