package core

import (
	"testing"

	"github.com/rfwavelabs/epclink-planner/model"
)

func TestCompare_SortedBySpreadingFactor(t *testing.T) {
	p := NewPlanner(EU868())
	epcs := testEPCs(t, 50)

	// Feed scenarios out of order; the comparison table must come back
	// SF-ascending.
	configs := []model.PHYConfig{
		model.DefaultPHYConfig(model.SF12),
		model.DefaultPHYConfig(model.SF7),
		model.DefaultPHYConfig(model.SF10),
	}

	results, err := p.Compare(epcs, configs, model.DefaultDutyCycleBudget())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("result count = %d, want 3", len(results))
	}

	wantOrder := []model.SpreadingFactor{model.SF7, model.SF10, model.SF12}
	for i, want := range wantOrder {
		if got := results[i].Config.SpreadingFactor; got != want {
			t.Errorf("result %d: SF%d, want SF%d", i, got, want)
		}
	}
}

func TestCompare_MatchesIndependentPlans(t *testing.T) {
	p := NewPlanner(EU868())
	epcs := testEPCs(t, 200)
	budget := model.DefaultDutyCycleBudget()
	configs := DefaultScenarios()

	results, err := p.Compare(epcs, configs, budget)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	// Scenarios are independent: each row must equal a standalone Plan
	// call with the same inputs.
	for _, row := range results {
		standalone, err := p.Plan(epcs, row.Config, budget)
		if err != nil {
			t.Fatalf("Plan SF%d: %v", row.Config.SpreadingFactor, err)
		}
		if row.Result != standalone {
			t.Errorf("SF%d: comparison row %+v differs from standalone plan %+v",
				row.Config.SpreadingFactor, row.Result, standalone)
		}
	}
}

func TestCompare_ReportsFullPacketAirtime(t *testing.T) {
	p := NewPlanner(EU868())
	epcs := testEPCs(t, 10)

	results, err := p.Compare(epcs, []model.PHYConfig{model.DefaultPHYConfig(model.SF7)}, model.DefaultDutyCycleBudget())
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}

	// SF7 full packet is 18 EPCs = 216 bytes.
	want, err := TimeOnAir(216, results[0].Config)
	if err != nil {
		t.Fatalf("TimeOnAir: %v", err)
	}
	if results[0].PacketAirtime != want {
		t.Errorf("packet airtime = %v, want %v", results[0].PacketAirtime, want)
	}
}

func TestCompare_AbortsOnBadScenario(t *testing.T) {
	p := NewPlanner(EU868())
	epcs := testEPCs(t, 10)

	bad := model.DefaultPHYConfig(model.SF7)
	bad.BandwidthHz = -1
	configs := []model.PHYConfig{model.DefaultPHYConfig(model.SF8), bad}

	if _, err := p.Compare(epcs, configs, model.DefaultDutyCycleBudget()); err == nil {
		t.Fatal("expected error for invalid scenario, got nil")
	}
}

func TestDefaultScenarios_CoversSF7ThroughSF12(t *testing.T) {
	configs := DefaultScenarios()
	if len(configs) != 6 {
		t.Fatalf("scenario count = %d, want 6", len(configs))
	}
	for i, cfg := range configs {
		if want := model.SpreadingFactor(7 + i); cfg.SpreadingFactor != want {
			t.Errorf("scenario %d: SF%d, want SF%d", i, cfg.SpreadingFactor, want)
		}
		if cfg.BandwidthHz != model.BW125kHz || !cfg.ExplicitHeader || !cfg.CRCEnabled {
			t.Errorf("scenario %d: unexpected defaults %+v", i, cfg)
		}
	}
}
