package render

import (
	"encoding/json"
	"io"
)

// JSON renders a frame as a single JSON document, mainly for piping range
// loads into other tooling.
type JSON struct {
	Out io.Writer
}

type jsonSeries struct {
	Label        string    `json:"label"`
	BlockNumbers []uint64  `json:"blockNumbers"`
	Values       []float64 `json:"values"`
}

type jsonFrame struct {
	XLabel string       `json:"xLabel"`
	Series []jsonSeries `json:"series"`
}

// Render writes the frame as indented JSON. Series order is fixed, so an
// identical frame always produces identical bytes.
func (j *JSON) Render(f *Frame) error {
	doc := jsonFrame{XLabel: XLabel}
	for _, ns := range f.Ordered() {
		doc.Series = append(doc.Series, jsonSeries{
			Label:        ns.Label,
			BlockNumbers: ns.Series.Blocks(),
			Values:       ns.Series.Values(),
		})
	}

	enc := json.NewEncoder(j.Out)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
