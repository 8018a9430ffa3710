package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/rfwavelabs/epclink-planner/core"
)

// groupingCSVHeader is the column layout of a grouping export.
var groupingCSVHeader = []string{
	"group", "prefix", "prefix_bytes", "suffix_bytes", "epc_count",
	"payload_bytes", "compression_pct", "suffixes_per_sf7_frame",
	"suffixes_per_sf12_frame",
}

// WriteGroupingCSV exports the prefix-compression analysis as CSV, one
// record per group after a header row.
func WriteGroupingCSV(w io.Writer, summary core.GroupingSummary) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(groupingCSVHeader); err != nil {
		return fmt.Errorf("WriteGroupingCSV: %w", err)
	}

	for i, g := range summary.Groups {
		record := []string{
			strconv.Itoa(i + 1),
			g.Prefix,
			strconv.Itoa(g.PrefixBytes),
			strconv.Itoa(g.SuffixBytes),
			strconv.Itoa(len(g.EPCs)),
			strconv.Itoa(g.PayloadBytes),
			strconv.FormatFloat(g.CompressionPct, 'f', 1, 64),
			strconv.Itoa(g.SuffixesPerSF7Frame),
			strconv.Itoa(g.SuffixesPerSF12Frame),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("WriteGroupingCSV: group %d: %w", i+1, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("WriteGroupingCSV: %w", err)
	}
	return nil
}
