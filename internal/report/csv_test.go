package report

import (
	"encoding/csv"
	"strings"
	"testing"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/model"
)

func TestWriteGroupingCSV_RecordsPerGroup(t *testing.T) {
	p := core.NewPlanner(core.EU868())
	epcs := []model.EPC{}
	for _, h := range []string{
		"0011223344556677AAAAAAAA",
		"0011223344556677BBBBBBBB",
		"FFFF00000000000000000000",
	} {
		epc, err := model.ParseEPC(h)
		if err != nil {
			t.Fatalf("ParseEPC: %v", err)
		}
		epcs = append(epcs, epc)
	}

	var buf strings.Builder
	if err := WriteGroupingCSV(&buf, p.AnalyzeGroups(epcs, core.DefaultMinPrefixHexLen)); err != nil {
		t.Fatalf("WriteGroupingCSV: %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("parse output: %v", err)
	}
	// Header plus one record per group.
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if got := records[0][0]; got != "group" {
		t.Errorf("header starts with %q, want group", got)
	}

	// First group: 8-byte shared prefix over two members, 25% saved.
	want := []string{"1", "0011223344556677", "8", "4", "2", "18", "25.0", "53", "10"}
	for i, cell := range want {
		if records[1][i] != cell {
			t.Errorf("group 1 column %d = %q, want %q", i, records[1][i], cell)
		}
	}

	// Second group is a singleton: no prefix, whole EPC as suffix.
	want = []string{"2", "", "0", "12", "1", "14", "0.0", "18", "4"}
	for i, cell := range want {
		if records[2][i] != cell {
			t.Errorf("group 2 column %d = %q, want %q", i, records[2][i], cell)
		}
	}
}
