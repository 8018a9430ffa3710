package core

import (
	"errors"
	"fmt"

	"github.com/rfwavelabs/epclink-planner/model"
)

// ErrUnsupportedSF is returned when a spreading factor has no entry in
// the band's max-payload table.
var ErrUnsupportedSF = errors.New("unsupported spreading factor")

// Band carries the regulatory parameters of one LoRaWAN regional band
// that the planner needs: the per-spreading-factor maximum application
// payload and the duty-cycle fraction the band mandates. Modelled as
// explicit data passed into the planner so every computation stays a pure
// function of its arguments.
type Band struct {
	Name string

	// MaxPayload maps spreading factor to the maximum application-layer
	// payload in bytes (the regional-parameters "N" column, i.e. with
	// the 8-byte FHDR overhead already subtracted).
	MaxPayload map[model.SpreadingFactor]int

	// DutyCycleFraction is the band's regulatory duty-cycle ceiling.
	DutyCycleFraction float64
}

// EU868 returns the EU 863-870 MHz band. Payload limits follow the
// LoRaWAN regional parameters for the 125 kHz data rates: DR0-DR2
// (SF12-SF10) carry at most 51 bytes, DR3 (SF9) 115 bytes, DR4-DR5
// (SF8-SF7) 222 bytes. Duty cycle is the 1% sub-band limit.
func EU868() Band {
	return Band{
		Name: "EU 863-870",
		MaxPayload: map[model.SpreadingFactor]int{
			model.SF7:  222,
			model.SF8:  222,
			model.SF9:  115,
			model.SF10: 51,
			model.SF11: 51,
			model.SF12: 51,
		},
		DutyCycleFraction: 0.01,
	}
}

// MaxPayloadBytes looks up the maximum application payload for the given
// spreading factor. Spreading factors outside the band's table yield
// ErrUnsupportedSF.
func (b Band) MaxPayloadBytes(sf model.SpreadingFactor) (int, error) {
	size, ok := b.MaxPayload[sf]
	if !ok {
		return 0, fmt.Errorf("%w: SF%d has no max-payload entry in band %q", ErrUnsupportedSF, sf, b.Name)
	}
	return size, nil
}
