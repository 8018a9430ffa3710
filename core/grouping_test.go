package core

import (
	"testing"

	"github.com/rfwavelabs/epclink-planner/model"
)

func mustEPC(t *testing.T, hex string) model.EPC {
	t.Helper()
	epc, err := model.ParseEPC(hex)
	if err != nil {
		t.Fatalf("ParseEPC(%q): %v", hex, err)
	}
	return epc
}

func TestAnalyzeGroups_SharedPrefix(t *testing.T) {
	p := NewPlanner(EU868())

	// Three EPCs sharing a long leading prefix, one unrelated singleton.
	epcs := []model.EPC{
		mustEPC(t, "30340789ABCDEF0000000001"),
		mustEPC(t, "30340789ABCDEF0000000002"),
		mustEPC(t, "30340789ABCDEF1111111111"),
		mustEPC(t, "FFFF00000000000000000000"),
	}

	summary := p.AnalyzeGroups(epcs, DefaultMinPrefixHexLen)
	if len(summary.Groups) != 2 {
		t.Fatalf("group count = %d, want 2", len(summary.Groups))
	}

	g := summary.Groups[0]
	if len(g.EPCs) != 3 {
		t.Fatalf("first group size = %d, want 3", len(g.EPCs))
	}
	// The third EPC diverges after 14 hex chars, so the group prefix is
	// the shortest shared run across members: "30340789ABCDEF", 7 bytes.
	if g.Prefix != "30340789ABCDEF" {
		t.Errorf("prefix = %q, want \"30340789ABCDEF\"", g.Prefix)
	}
	if g.PrefixBytes != 7 || g.SuffixBytes != 5 {
		t.Errorf("prefix/suffix bytes = %d/%d, want 7/5", g.PrefixBytes, g.SuffixBytes)
	}
	// 2-byte header + 7-byte prefix + 3 * 5-byte suffixes = 24 bytes
	// against 36 uncompressed: 33.3% saved.
	if g.PayloadBytes != 24 {
		t.Errorf("payload bytes = %d, want 24", g.PayloadBytes)
	}
	if g.CompressionPct != 33.3 {
		t.Errorf("compression = %v%%, want 33.3%%", g.CompressionPct)
	}

	single := summary.Groups[1]
	if len(single.EPCs) != 1 || single.Prefix != "" || single.CompressionPct != 0 {
		t.Errorf("singleton group mis-shaped: %+v", single)
	}
	if single.PayloadBytes != groupHeaderBytes+model.EPCSize {
		t.Errorf("singleton payload = %d, want %d", single.PayloadBytes, groupHeaderBytes+model.EPCSize)
	}
}

func TestAnalyzeGroups_FrameCapacities(t *testing.T) {
	p := NewPlanner(EU868())

	// Two members, 8-byte prefix, 4-byte suffixes.
	epcs := []model.EPC{
		mustEPC(t, "0011223344556677AAAAAAAA"),
		mustEPC(t, "0011223344556677BBBBBBBB"),
	}

	summary := p.AnalyzeGroups(epcs, DefaultMinPrefixHexLen)
	if len(summary.Groups) != 1 {
		t.Fatalf("group count = %d, want 1", len(summary.Groups))
	}
	g := summary.Groups[0]
	if g.PrefixBytes != 8 || g.SuffixBytes != 4 {
		t.Fatalf("prefix/suffix bytes = %d/%d, want 8/4", g.PrefixBytes, g.SuffixBytes)
	}

	// SF7 frame: (222 - 10) / 4 = 53 suffixes; SF12: (51 - 10) / 4 = 10.
	if g.SuffixesPerSF7Frame != 53 {
		t.Errorf("SF7 capacity = %d, want 53", g.SuffixesPerSF7Frame)
	}
	if g.SuffixesPerSF12Frame != 10 {
		t.Errorf("SF12 capacity = %d, want 10", g.SuffixesPerSF12Frame)
	}
}

func TestAnalyzeGroups_SummaryTotals(t *testing.T) {
	p := NewPlanner(EU868())

	epcs := []model.EPC{
		mustEPC(t, "0011223344556677AAAAAAAA"),
		mustEPC(t, "0011223344556677BBBBBBBB"),
		mustEPC(t, "FFFF00000000000000000000"),
	}

	summary := p.AnalyzeGroups(epcs, DefaultMinPrefixHexLen)
	if summary.TotalEPCs != 3 {
		t.Errorf("total EPCs = %d, want 3", summary.TotalEPCs)
	}
	if summary.UncompressedBytes != 36 {
		t.Errorf("uncompressed = %d, want 36", summary.UncompressedBytes)
	}
	// Group one: 2 + 8 + 2*4 = 18; singleton: 2 + 12 = 14.
	if summary.CompressedBytes != 32 {
		t.Errorf("compressed = %d, want 32", summary.CompressedBytes)
	}
	if summary.SavingsBytes != 4 {
		t.Errorf("savings = %d, want 4", summary.SavingsBytes)
	}
	// 4/36 = 11.1%.
	if summary.SavingsPct != 11.1 {
		t.Errorf("savings pct = %v, want 11.1", summary.SavingsPct)
	}
}

func TestAnalyzeGroups_OrderPreservedWithinGroup(t *testing.T) {
	p := NewPlanner(EU868())

	epcs := []model.EPC{
		mustEPC(t, "ABCDEF000000000000000001"),
		mustEPC(t, "12345600000000000000FFFF"),
		mustEPC(t, "ABCDEF000000000000000002"),
	}

	summary := p.AnalyzeGroups(epcs, DefaultMinPrefixHexLen)
	if len(summary.Groups) != 2 {
		t.Fatalf("group count = %d, want 2", len(summary.Groups))
	}
	first := summary.Groups[0]
	if len(first.EPCs) != 2 {
		t.Fatalf("seed group size = %d, want 2", len(first.EPCs))
	}
	if first.EPCs[0] != epcs[0] || first.EPCs[1] != epcs[2] {
		t.Errorf("group members out of input order: %v", first.EPCs)
	}
}
