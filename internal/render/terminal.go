package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

const clearScreen = "\033[2J\033[H"

var sparkLevels = []rune("▁▂▃▄▅▆▇█")

var (
	cyan = color.New(color.FgCyan).SprintFunc()
	bold = color.New(color.Bold).SprintFunc()
	dim  = color.New(color.Faint).SprintFunc()
)

// Terminal renders frames as a colored summary table with one sparkline per
// metric. Each render clears the screen first (except the very first one,
// so startup errors stay visible) and redraws the whole dashboard.
type Terminal struct {
	Out      io.Writer
	Interval time.Duration // shown in the header when > 0 (live mode)

	drawn bool
}

// DisableColors turns off ANSI colors globally, for piped output.
func DisableColors() {
	color.NoColor = true
}

// Render draws the frame to the terminal.
func (t *Terminal) Render(f *Frame) error {
	if t.drawn {
		fmt.Fprint(t.Out, clearScreen)
	}
	t.drawn = true

	lo, hi, ok := f.Span()
	if !ok {
		fmt.Fprintln(t.Out, "No blocks available yet.")
		return nil
	}

	if t.Interval > 0 {
		fmt.Fprintf(t.Out, "%s  blocks %d-%d  (refresh %s, Ctrl+C to exit)\n\n",
			bold("Block metrics"), lo, hi, t.Interval)
	} else {
		fmt.Fprintf(t.Out, "%s  blocks %d-%d\n\n", bold("Block metrics"), lo, hi)
	}

	headerFmt := color.New(color.FgCyan, color.Underline).SprintfFunc()
	tbl := table.New(XLabel+" vs.", "Latest", "Min", "Max", "Avg", "Trend")
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(t.Out)

	for _, ns := range f.Ordered() {
		if len(ns.Series) == 0 {
			tbl.AddRow(ns.Label, dim("—"), dim("—"), dim("—"), dim("—"), "")
			continue
		}
		values := ns.Series.Values()
		min, max, avg := summarize(values)
		tbl.AddRow(
			ns.Label,
			formatValue(ns.Label, values[len(values)-1]),
			formatValue(ns.Label, min),
			formatValue(ns.Label, max),
			formatValue(ns.Label, avg),
			cyan(sparkline(values, 40)),
		)
	}

	tbl.Print()
	fmt.Fprintln(t.Out)
	return nil
}

func summarize(values []float64) (min, max, avg float64) {
	min, max = values[0], values[0]
	var sum float64
	for _, v := range values {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
		sum += v
	}
	return min, max, sum / float64(len(values))
}

// formatValue picks a precision per metric: timestamps and counters are
// whole numbers, derived rates keep two decimals.
func formatValue(label string, v float64) string {
	switch label {
	case LabelTimestamp, LabelTxCount, LabelGasUsed:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

// sparkline compresses values into at most width block characters scaled
// between the series min and max.
func sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}
	if len(values) > width {
		values = resample(values, width)
	}

	min, max, _ := summarize(values)
	span := max - min

	var b strings.Builder
	for _, v := range values {
		idx := 0
		if span > 0 {
			idx = int((v - min) / span * float64(len(sparkLevels)-1))
		}
		if idx >= len(sparkLevels) {
			idx = len(sparkLevels) - 1
		}
		b.WriteRune(sparkLevels[idx])
	}
	return b.String()
}

// resample reduces values to width buckets by averaging each bucket.
func resample(values []float64, width int) []float64 {
	out := make([]float64, width)
	per := float64(len(values)) / float64(width)
	for i := 0; i < width; i++ {
		start := int(math.Floor(float64(i) * per))
		end := int(math.Floor(float64(i+1) * per))
		if end <= start {
			end = start + 1
		}
		if end > len(values) {
			end = len(values)
		}
		var sum float64
		for _, v := range values[start:end] {
			sum += v
		}
		out[i] = sum / float64(end-start)
	}
	return out
}
