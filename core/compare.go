package core

import (
	"fmt"
	"sort"

	"github.com/rfwavelabs/epclink-planner/model"
)

// Compare runs one independent plan per PHY configuration and returns
// the results sorted by spreading factor ascending. Scenarios share no
// state, so a failure names the config that caused it and aborts the
// whole comparison rather than returning a partial table.
func (p *Planner) Compare(epcs []model.EPC, configs []model.PHYConfig, budget model.DutyCycleBudget) ([]model.ScenarioResult, error) {
	results := make([]model.ScenarioResult, 0, len(configs))

	for _, cfg := range configs {
		planResult, err := p.Plan(epcs, cfg, budget)
		if err != nil {
			return nil, fmt.Errorf("scenario SF%d/BW%d: %w", cfg.SpreadingFactor, cfg.BandwidthHz, err)
		}

		maxPayload, err := p.Band.MaxPayloadBytes(cfg.SpreadingFactor)
		if err != nil {
			return nil, err
		}
		fullPayload := (maxPayload / model.EPCSize) * model.EPCSize
		packetToA, err := TimeOnAir(fullPayload, cfg)
		if err != nil {
			return nil, err
		}

		results = append(results, model.ScenarioResult{
			Config:        cfg,
			Result:        planResult,
			PacketAirtime: packetToA,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Config.SpreadingFactor < results[j].Config.SpreadingFactor
	})
	return results, nil
}

// DefaultScenarios returns one default EU868 uplink configuration per
// spreading factor from SF7 through SF12.
func DefaultScenarios() []model.PHYConfig {
	configs := make([]model.PHYConfig, 0, 6)
	for sf := model.SF7; sf <= model.SF12; sf++ {
		configs = append(configs, model.DefaultPHYConfig(sf))
	}
	return configs
}
