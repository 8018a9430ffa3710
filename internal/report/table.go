// Package report renders planner output for terminals: the cross-SF
// comparison table and the prefix-compression summary.
package report

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/model"
)

// WriteComparison renders one row per scenario, in the order given
// (the comparator already sorts by spreading factor).
func WriteComparison(w io.Writer, results []model.ScenarioResult) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"SF", "BW (kHz)", "CR", "EPCs/Pkt", "Packets",
		"Pkt ToA (ms)", "Total Airtime (s)", "Max EPCs/Day",
	})
	table.SetAutoFormatHeaders(false)

	for _, row := range results {
		table.Append([]string{
			fmt.Sprintf("%d", row.Config.SpreadingFactor),
			fmt.Sprintf("%d", row.Config.BandwidthHz/1000),
			row.Config.CodingRate.String(),
			fmt.Sprintf("%d", row.Result.EPCsPerPacket),
			fmt.Sprintf("%d", row.Result.PacketCount),
			fmt.Sprintf("%.3f", float64(row.PacketAirtime.Microseconds())/1000),
			fmt.Sprintf("%.3f", row.Result.TotalAirtime.Seconds()),
			fmt.Sprintf("%d", row.Result.MaxEPCsPerDay),
		})
	}
	table.Render()
}

// WriteGrouping renders the prefix-compression analysis: one row per
// group plus an aggregate footer.
func WriteGrouping(w io.Writer, summary core.GroupingSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{
		"Group", "Prefix", "Prefix B", "Suffix B", "EPCs",
		"Payload B", "Saved %", "Fit SF7", "Fit SF12",
	})
	table.SetAutoFormatHeaders(false)

	for i, g := range summary.Groups {
		table.Append([]string{
			fmt.Sprintf("%d", i+1),
			g.Prefix,
			fmt.Sprintf("%d", g.PrefixBytes),
			fmt.Sprintf("%d", g.SuffixBytes),
			fmt.Sprintf("%d", len(g.EPCs)),
			fmt.Sprintf("%d", g.PayloadBytes),
			fmt.Sprintf("%.1f", g.CompressionPct),
			fmt.Sprintf("%d", g.SuffixesPerSF7Frame),
			fmt.Sprintf("%d", g.SuffixesPerSF12Frame),
		})
	}
	table.Render()

	fmt.Fprintf(w, "Total EPCs: %d | Groups: %d\n", summary.TotalEPCs, len(summary.Groups))
	fmt.Fprintf(w, "Uncompressed: %dB | Compressed: %dB | Savings: %dB (%.1f%%)\n",
		summary.UncompressedBytes, summary.CompressedBytes, summary.SavingsBytes, summary.SavingsPct)
}
