package core

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/rfwavelabs/epclink-planner/model"
)

// ScenarioSet is what a scenario file loads into: the PHY configurations
// to compare and the duty-cycle budget they share.
type ScenarioSet struct {
	Configs []model.PHYConfig
	Budget  model.DutyCycleBudget
}

// internal JSON shapes - kept unexported so we're free to evolve them.
type scenarioFileJSON struct {
	DutyCycle *float64          `json:"duty_cycle"`
	Scenarios []scenarioCfgJSON `json:"scenarios"`
}

type scenarioCfgJSON struct {
	SpreadingFactor int    `json:"spreading_factor"`
	BandwidthHz     int64  `json:"bandwidth_hz"`
	CodingRate      string `json:"coding_rate"`      // "4/5" .. "4/8"
	PreambleSymbols int    `json:"preamble_symbols"` // optional; defaults to 8
	ImplicitHeader  bool   `json:"implicit_header"`  // optional; explicit is the norm
	DisableCRC      bool   `json:"disable_crc"`      // optional; CRC on is the norm
	LDRO            string `json:"ldro"`             // "", "auto", "on", "off"
}

// LoadScenarioSet reads a JSON scenario file from r and returns the
// configurations it describes. It fails on JSON or structural errors and
// on values the PHY validation would reject later anyway, so a bad file
// is reported at load time with the scenario index.
func LoadScenarioSet(r io.Reader) (*ScenarioSet, error) {
	var payload scenarioFileJSON
	dec := json.NewDecoder(r)
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("LoadScenarioSet: decode failed: %w", err)
	}

	set := &ScenarioSet{Budget: model.DefaultDutyCycleBudget()}
	if payload.DutyCycle != nil {
		if *payload.DutyCycle <= 0 || *payload.DutyCycle > 1 {
			return nil, fmt.Errorf("LoadScenarioSet: duty_cycle must be in (0,1], got %v", *payload.DutyCycle)
		}
		set.Budget = model.DutyCycleBudget{Fraction: *payload.DutyCycle, Window: 24 * time.Hour}
	}

	for i, sc := range payload.Scenarios {
		cfg, err := sc.toConfig()
		if err != nil {
			return nil, fmt.Errorf("LoadScenarioSet: scenario %d: %w", i, err)
		}
		if err := ValidatePHYConfig(cfg); err != nil {
			return nil, fmt.Errorf("LoadScenarioSet: scenario %d: %w", i, err)
		}
		set.Configs = append(set.Configs, cfg)
	}

	if len(set.Configs) == 0 {
		return nil, fmt.Errorf("LoadScenarioSet: no scenarios in file")
	}
	return set, nil
}

func (sc scenarioCfgJSON) toConfig() (model.PHYConfig, error) {
	cfg := model.PHYConfig{
		SpreadingFactor: model.SpreadingFactor(sc.SpreadingFactor),
		BandwidthHz:     sc.BandwidthHz,
		PreambleSymbols: sc.PreambleSymbols,
		ExplicitHeader:  !sc.ImplicitHeader,
		CRCEnabled:      !sc.DisableCRC,
	}
	if cfg.BandwidthHz == 0 {
		cfg.BandwidthHz = model.BW125kHz
	}
	if cfg.PreambleSymbols == 0 {
		cfg.PreambleSymbols = model.DefaultPreambleSymbols
	}

	switch sc.CodingRate {
	case "", "4/5":
		cfg.CodingRate = model.CR4_5
	case "4/6":
		cfg.CodingRate = model.CR4_6
	case "4/7":
		cfg.CodingRate = model.CR4_7
	case "4/8":
		cfg.CodingRate = model.CR4_8
	default:
		return cfg, fmt.Errorf("unknown coding_rate %q", sc.CodingRate)
	}

	switch sc.LDRO {
	case "", "auto":
		cfg.LDRO = model.LDROAuto
	case "on":
		cfg.LDRO = model.LDROOn
	case "off":
		cfg.LDRO = model.LDROOff
	default:
		return cfg, fmt.Errorf("unknown ldro mode %q", sc.LDRO)
	}

	return cfg, nil
}
