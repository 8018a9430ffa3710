package model

import "time"

// SpreadingFactor controls the number of chips per symbol (2^SF). Higher
// spreading factors trade data rate for range: each increment doubles the
// symbol duration.
type SpreadingFactor int

// Spreading factors modelled for the EU868 band.
const (
	SF7 SpreadingFactor = iota + 7
	SF8
	SF9
	SF10
	SF11
	SF12
)

// ChipsPerSymbol returns 2^SF.
func (sf SpreadingFactor) ChipsPerSymbol() int64 {
	return 1 << sf
}

// CodingRate is the LoRa forward-error-correction rate. A coding rate of
// 4/5 adds one parity bit for every four data bits; the stored value is
// the numerator offset, so CR4_5 == 1 and the denominator is 4 + value.
type CodingRate int

const (
	// 4/5 coding rate.
	CR4_5 CodingRate = 1
	// 4/6 coding rate.
	CR4_6 CodingRate = 2
	// 4/7 coding rate.
	CR4_7 CodingRate = 3
	// 4/8 coding rate.
	CR4_8 CodingRate = 4
)

// Denominator returns the denominator of the 4/x rate, e.g. 5 for CR4_5.
func (cr CodingRate) Denominator() int {
	return 4 + int(cr)
}

func (cr CodingRate) String() string {
	switch cr {
	case CR4_5:
		return "4/5"
	case CR4_6:
		return "4/6"
	case CR4_7:
		return "4/7"
	case CR4_8:
		return "4/8"
	default:
		return "unknown"
	}
}

// Common LoRa bandwidths in Hz.
const (
	BW125kHz = 125000
	BW250kHz = 250000
	BW500kHz = 500000
)

// DefaultPreambleSymbols is the standard LoRaWAN uplink preamble length.
const DefaultPreambleSymbols = 8

// LDROThreshold is the symbol duration above which low-data-rate
// optimisation is mandated by the PHY.
const LDROThreshold = 16 * time.Millisecond

// LDROMode is a tri-state low-data-rate optimisation setting. The zero
// value defers to the 16 ms symbol-duration rule.
type LDROMode int

const (
	// LDROAuto enables LDRO whenever the symbol duration exceeds LDROThreshold.
	LDROAuto LDROMode = iota
	// LDROOn forces low-data-rate optimisation regardless of symbol duration.
	LDROOn
	// LDROOff disables low-data-rate optimisation regardless of symbol duration.
	LDROOff
)

// PHYConfig captures the LoRa PHY parameters of one planning scenario.
// Instances are immutable by convention: one config per scenario, passed
// by value into the timing model and planner.
type PHYConfig struct {
	SpreadingFactor SpreadingFactor `json:"SpreadingFactor"`
	BandwidthHz     int64           `json:"BandwidthHz"`
	CodingRate      CodingRate      `json:"CodingRate"`

	// PreambleSymbols is the programmed preamble length, excluding the
	// fixed 4.25-symbol sync offset. 0 means DefaultPreambleSymbols.
	PreambleSymbols int `json:"PreambleSymbols,omitempty"`

	// ExplicitHeader selects the explicit (variable-length) PHY header.
	// LoRaWAN uplinks always use explicit headers.
	ExplicitHeader bool `json:"ExplicitHeader"`

	// CRCEnabled appends the 16-bit payload CRC.
	CRCEnabled bool `json:"CRCEnabled"`

	// LDRO controls low-data-rate optimisation. Leave as LDROAuto to
	// follow the 16 ms symbol-duration rule.
	LDRO LDROMode `json:"LDRO,omitempty"`
}

// DefaultPHYConfig returns an EU868-style uplink configuration at the
// given spreading factor: 125 kHz, CR 4/5, explicit header, CRC on,
// automatic LDRO.
func DefaultPHYConfig(sf SpreadingFactor) PHYConfig {
	return PHYConfig{
		SpreadingFactor: sf,
		BandwidthHz:     BW125kHz,
		CodingRate:      CR4_5,
		PreambleSymbols: DefaultPreambleSymbols,
		ExplicitHeader:  true,
		CRCEnabled:      true,
		LDRO:            LDROAuto,
	}
}

// DutyCycleBudget is the regulatory on-air allowance: a fraction of a
// fixed observation window during which the transmitter may occupy the
// channel. Configuration input; never mutated.
type DutyCycleBudget struct {
	// Fraction of the window that may be spent on air, e.g. 0.01 for the
	// 1% sub-GHz ISM limit.
	Fraction float64 `json:"Fraction"`

	// Window is the observation period the fraction applies to.
	Window time.Duration `json:"Window"`
}

// DefaultDutyCycleBudget is the common 1%-of-24h sub-GHz ISM budget.
func DefaultDutyCycleBudget() DutyCycleBudget {
	return DutyCycleBudget{Fraction: 0.01, Window: 24 * time.Hour}
}

// AllowedAirtime returns the total on-air time permitted per window.
func (b DutyCycleBudget) AllowedAirtime() time.Duration {
	return time.Duration(b.Fraction * float64(b.Window))
}
