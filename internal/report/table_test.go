package report

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/model"
)

func fixtureEPCs(n int) []model.EPC {
	rng := rand.New(rand.NewSource(7))
	epcs := make([]model.EPC, n)
	for i := range epcs {
		rng.Read(epcs[i][:])
	}
	return epcs
}

func TestWriteComparison_ContainsScenarioRows(t *testing.T) {
	p := core.NewPlanner(core.EU868())
	results, err := p.Compare(fixtureEPCs(100), core.DefaultScenarios(), model.DefaultDutyCycleBudget())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	var buf strings.Builder
	WriteComparison(&buf, results)
	out := buf.String()

	for _, want := range []string{"SF", "Max EPCs/Day", "Total Airtime (s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing header %q:\n%s", want, out)
		}
	}
	// One row per spreading factor 7..12.
	for _, sf := range []string{"7", "8", "9", "10", "11", "12"} {
		if !strings.Contains(out, sf) {
			t.Errorf("output missing SF %s row:\n%s", sf, out)
		}
	}
	// Airtime is reported to millisecond precision.
	if !strings.Contains(out, ".") {
		t.Errorf("output missing decimal airtime values:\n%s", out)
	}
}

func TestWriteGrouping_ContainsSummaryLine(t *testing.T) {
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
	WriteGrouping(&buf, p.AnalyzeGroups(epcs, core.DefaultMinPrefixHexLen))
	out := buf.String()

	if !strings.Contains(out, "Total EPCs: 3 | Groups: 2") {
		t.Errorf("missing totals line:\n%s", out)
	}
	if !strings.Contains(out, "0011223344556677") {
		t.Errorf("missing group prefix:\n%s", out)
	}
	if !strings.Contains(out, "Savings: 4B (11.1%)") {
		t.Errorf("missing savings line:\n%s", out)
	}
}
