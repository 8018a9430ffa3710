package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/internal/codec"
	"github.com/rfwavelabs/epclink-planner/internal/epcfile"
	"github.com/rfwavelabs/epclink-planner/internal/logging"
	"github.com/rfwavelabs/epclink-planner/internal/report"
	"github.com/rfwavelabs/epclink-planner/model"
)

func main() {
	epcPath := flag.String("epcs", "", "path to a file with one hex EPC per line")
	generate := flag.Int("generate", 1000, "number of synthetic EPCs when no -epcs file is given")
	seed := flag.Int64("seed", 1, "seed for synthetic EPC generation")
	scenarioPath := flag.String("scenarios", "", "path to a scenario JSON file (overrides -sf/-bw/-cr)")
	sfList := flag.String("sf", "7,8,9,10,11,12", "comma-separated spreading factors to compare")
	bandwidth := flag.Int64("bw", 125000, "bandwidth in Hz")
	codingRate := flag.String("cr", "4/5", "coding rate: 4/5, 4/6, 4/7 or 4/8")
	dutyCycle := flag.Float64("duty-cycle", 0, "duty cycle fraction override, e.g. 0.01 for 1%")
	groups := flag.Bool("groups", false, "also print a prefix-grouping analysis of the EPC population")
	groupsOut := flag.String("groups-out", "", "write the prefix-grouping analysis to this CSV file")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	epcs, err := loadEPCs(ctx, *epcPath, *generate, *seed, log)
	if err != nil {
		log.Error(ctx, "failed to load EPCs", logging.Err(err))
		os.Exit(1)
	}

	configs, budget, err := buildScenarios(*scenarioPath, *sfList, *bandwidth, *codingRate)
	if err != nil {
		log.Error(ctx, "failed to build scenarios", logging.Err(err))
		os.Exit(1)
	}
	if *dutyCycle > 0 {
		if *dutyCycle > 1 {
			log.Error(ctx, "duty cycle fraction must be in (0,1]", logging.Float64("duty_cycle", *dutyCycle))
			os.Exit(1)
		}
		budget = model.DutyCycleBudget{Fraction: *dutyCycle, Window: 24 * time.Hour}
	}

	planner := core.NewPlanner(core.EU868())
	results, err := planner.Compare(epcs, configs, budget)
	if err != nil {
		log.Error(ctx, "comparison failed", logging.Err(err))
		os.Exit(1)
	}

	fmt.Printf("EPCs: %d | duty cycle: %.2f%% over %s\n\n",
		len(epcs), budget.Fraction*100, budget.Window)
	report.WriteComparison(os.Stdout, results)

	// Frame the fastest scenario's packets so the run reports actual
	// wire bytes, framing header included.
	if packets, err := planner.Packets(epcs, results[0].Config); err == nil {
		if frames, err := codec.FramePackets(packets, time.Now()); err == nil {
			encoded := 0
			for _, frame := range frames {
				encoded += len(frame)
			}
			fmt.Printf("Wire frames at SF%d: %d frames, %d B encoded\n",
				results[0].Config.SpreadingFactor, len(frames), encoded)
		}
	}

	if *groups || *groupsOut != "" {
		summary := planner.AnalyzeGroups(epcs, core.DefaultMinPrefixHexLen)
		if *groups {
			fmt.Println()
			report.WriteGrouping(os.Stdout, summary)
		}
		if *groupsOut != "" {
			if err := exportGroupsCSV(*groupsOut, summary); err != nil {
				log.Error(ctx, "failed to export grouping CSV",
					logging.String("path", *groupsOut), logging.Err(err))
				os.Exit(1)
			}
			log.Info(ctx, "wrote grouping CSV",
				logging.String("path", *groupsOut), logging.Int("groups", len(summary.Groups)))
		}
	}
}

func exportGroupsCSV(path string, summary core.GroupingSummary) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteGroupingCSV(f, summary); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadEPCs(ctx context.Context, path string, generate int, seed int64, log logging.Logger) ([]model.EPC, error) {
	if path != "" {
		return epcfile.ReadFile(ctx, path, log)
	}
	if generate <= 0 {
		return nil, fmt.Errorf("-generate must be positive when no -epcs file is given")
	}
	log.Info(ctx, "generating synthetic EPCs",
		logging.Int("count", generate), logging.Int64("seed", seed))
	return epcfile.Generate(generate, seed), nil
}

// buildScenarios resolves the scenario set: a JSON file wins, otherwise
// one config per -sf entry with the shared -bw and -cr flags.
func buildScenarios(path, sfList string, bandwidth int64, codingRate string) ([]model.PHYConfig, model.DutyCycleBudget, error) {
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, model.DutyCycleBudget{}, err
		}
		defer f.Close()

		set, err := core.LoadScenarioSet(f)
		if err != nil {
			return nil, model.DutyCycleBudget{}, err
		}
		return set.Configs, set.Budget, nil
	}

	cr, err := parseCodingRate(codingRate)
	if err != nil {
		return nil, model.DutyCycleBudget{}, err
	}

	var configs []model.PHYConfig
	for _, part := range strings.Split(sfList, ",") {
		sf, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, model.DutyCycleBudget{}, fmt.Errorf("bad -sf entry %q: %w", part, err)
		}
		cfg := model.DefaultPHYConfig(model.SpreadingFactor(sf))
		cfg.BandwidthHz = bandwidth
		cfg.CodingRate = cr
		if err := core.ValidatePHYConfig(cfg); err != nil {
			return nil, model.DutyCycleBudget{}, err
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		return nil, model.DutyCycleBudget{}, fmt.Errorf("-sf produced no spreading factors")
	}
	return configs, model.DefaultDutyCycleBudget(), nil
}

func parseCodingRate(s string) (model.CodingRate, error) {
	switch s {
	case "4/5":
		return model.CR4_5, nil
	case "4/6":
		return model.CR4_6, nil
	case "4/7":
		return model.CR4_7, nil
	case "4/8":
		return model.CR4_8, nil
	default:
		return 0, fmt.Errorf("unknown coding rate %q", s)
	}
}
