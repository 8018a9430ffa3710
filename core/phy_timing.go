package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/rfwavelabs/epclink-planner/model"
)

// ErrInvalidConfig is returned when a PHY configuration fails basic
// validation (non-positive bandwidth, spreading factor outside 7-12).
var ErrInvalidConfig = errors.New("invalid PHY config")

// ValidatePHYConfig performs the eager input validation every timing
// entry point relies on.
func ValidatePHYConfig(cfg model.PHYConfig) error {
	if cfg.BandwidthHz <= 0 {
		return fmt.Errorf("%w: bandwidth must be positive, got %d Hz", ErrInvalidConfig, cfg.BandwidthHz)
	}
	if cfg.SpreadingFactor < model.SF7 || cfg.SpreadingFactor > model.SF12 {
		return fmt.Errorf("%w: spreading factor must be in [7,12], got %d", ErrInvalidConfig, cfg.SpreadingFactor)
	}
	if cfg.CodingRate < model.CR4_5 || cfg.CodingRate > model.CR4_8 {
		return fmt.Errorf("%w: coding rate must be 4/5..4/8, got %d", ErrInvalidConfig, cfg.CodingRate)
	}
	if cfg.PreambleSymbols < 0 {
		return fmt.Errorf("%w: preamble length must be non-negative, got %d", ErrInvalidConfig, cfg.PreambleSymbols)
	}
	return nil
}

// SymbolDuration returns the duration of one LoRa symbol, 2^SF / BW.
func SymbolDuration(cfg model.PHYConfig) (time.Duration, error) {
	if err := ValidatePHYConfig(cfg); err != nil {
		return 0, err
	}
	// Exact for the standard 125/250/500 kHz bandwidths: one second in
	// nanoseconds divides evenly by all of them.
	return time.Second * time.Duration(cfg.SpreadingFactor.ChipsPerSymbol()) /
		time.Duration(cfg.BandwidthHz), nil
}

// PreambleDuration returns the time spent on the preamble:
// (preambleSymbols + 4.25) symbols. The 4.25-symbol offset is the fixed
// sync-word and start-of-frame overhead mandated by the LoRa PHY and must
// not be tuned.
func PreambleDuration(cfg model.PHYConfig) (time.Duration, error) {
	symDur, err := SymbolDuration(cfg)
	if err != nil {
		return 0, err
	}
	preamble := cfg.PreambleSymbols
	if preamble == 0 {
		preamble = model.DefaultPreambleSymbols
	}
	// Work in quarter-symbols so the +4.25 stays exact integer math.
	return symDur * time.Duration(4*preamble+17) / 4, nil
}

// ldroEnabled resolves the tri-state LDRO setting: explicit override
// wins, otherwise the optimisation is mandated once the symbol duration
// exceeds 16 ms.
func ldroEnabled(cfg model.PHYConfig, symDur time.Duration) bool {
	switch cfg.LDRO {
	case model.LDROOn:
		return true
	case model.LDROOff:
		return false
	default:
		return symDur > model.LDROThreshold
	}
}

// PayloadSymbolCount returns the number of symbols needed for a payload
// of the given size, per the SX1276 datasheet (p.31):
//
//	n = 8 + max(ceil((8*PL - 4*SF + 28 + 16*CRC - 20*H) / (4*(SF - 2*DE))) * (CR + 4), 0)
//
// where H is 1 when the header is implicit (absent) and 0 when explicit,
// CRC is 1 when the payload CRC is on, and DE is 1 when low-data-rate
// optimisation is active. The inner term is clamped to zero before the
// coding-rate multiplication so tiny payloads at high SF never go
// negative, and the ceiling is exact integer arithmetic.
func PayloadSymbolCount(payloadBytes int, cfg model.PHYConfig) (int, error) {
	if err := ValidatePHYConfig(cfg); err != nil {
		return 0, err
	}
	if payloadBytes < 0 {
		return 0, fmt.Errorf("%w: payload size must be non-negative, got %d", ErrInvalidConfig, payloadBytes)
	}

	symDur, err := SymbolDuration(cfg)
	if err != nil {
		return 0, err
	}

	sf := int(cfg.SpreadingFactor)
	crc := 0
	if cfg.CRCEnabled {
		crc = 1
	}
	implicitHeader := 0
	if !cfg.ExplicitHeader {
		implicitHeader = 1
	}
	de := 0
	if ldroEnabled(cfg, symDur) {
		de = 1
	}

	num := 8*payloadBytes - 4*sf + 28 + 16*crc - 20*implicitHeader
	den := 4 * (sf - 2*de)

	extra := 0
	if num > 0 {
		// Integer ceiling; den is always positive for SF in [7,12].
		extra = (num + den - 1) / den * cfg.CodingRate.Denominator()
	}
	return 8 + extra, nil
}

// TimeOnAir returns the full time-on-air of a packet with the given
// application payload size: preamble plus payload symbols. Pure function
// of its arguments; identical inputs yield bit-identical durations.
func TimeOnAir(payloadBytes int, cfg model.PHYConfig) (time.Duration, error) {
	symbols, err := PayloadSymbolCount(payloadBytes, cfg)
	if err != nil {
		return 0, err
	}
	symDur, err := SymbolDuration(cfg)
	if err != nil {
		return 0, err
	}
	preamble, err := PreambleDuration(cfg)
	if err != nil {
		return 0, err
	}
	return preamble + time.Duration(symbols)*symDur, nil
}
