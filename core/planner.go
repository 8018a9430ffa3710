package core

import (
	"errors"
	"fmt"
	"time"

	"github.com/rfwavelabs/epclink-planner/model"
)

// ErrPayloadTooSmall is returned when the PHY's maximum payload cannot
// carry even a single EPC. This is a hard failure: the planner never
// silently truncates identifiers.
var ErrPayloadTooSmall = errors.New("max payload too small for one EPC")

// Planner partitions an ordered EPC list into packets that respect the
// band's per-SF payload limits, sums their airtime, and derives the
// duty-cycle-limited daily throughput. It holds no mutable state; every
// method is a pure function of its arguments and the band table.
type Planner struct {
	Band Band
}

// NewPlanner returns a planner over the given regional band.
func NewPlanner(band Band) *Planner {
	return &Planner{Band: band}
}

// PackEPCs greedily fills packets with floor(maxPayloadBytes / 12) EPCs
// each, preserving input order within and across packets. The final
// packet may be partial. If a single EPC does not fit, the call fails
// with ErrPayloadTooSmall before any packet is produced.
func PackEPCs(epcs []model.EPC, maxPayloadBytes int) ([]model.Packet, error) {
	perPacket := maxPayloadBytes / model.EPCSize
	if perPacket < 1 {
		return nil, fmt.Errorf("%w: max payload %d bytes, EPC needs %d",
			ErrPayloadTooSmall, maxPayloadBytes, model.EPCSize)
	}

	packets := make([]model.Packet, 0, (len(epcs)+perPacket-1)/perPacket)
	for start := 0; start < len(epcs); start += perPacket {
		end := start + perPacket
		if end > len(epcs) {
			end = len(epcs)
		}
		// Copy the slice so packets stay valid if the caller mutates
		// the input list afterwards.
		chunk := make([]model.EPC, end-start)
		copy(chunk, epcs[start:end])
		packets = append(packets, model.Packet{EPCs: chunk})
	}
	return packets, nil
}

// Packets validates the configuration and returns the packet partition
// the plan arithmetic is based on, for callers that go on to frame the
// packets into wire payloads.
func (p *Planner) Packets(epcs []model.EPC, cfg model.PHYConfig) ([]model.Packet, error) {
	if err := ValidatePHYConfig(cfg); err != nil {
		return nil, err
	}
	maxPayload, err := p.Band.MaxPayloadBytes(cfg.SpreadingFactor)
	if err != nil {
		return nil, err
	}
	packets, err := PackEPCs(epcs, maxPayload)
	if err != nil {
		return nil, fmt.Errorf("SF%d: %w", cfg.SpreadingFactor, err)
	}
	return packets, nil
}

// TotalAirtime sums the time-on-air of every packet under the given PHY
// configuration. Each packet is costed at its actual payload size, so a
// partial final packet contributes less than a full one.
func TotalAirtime(packets []model.Packet, cfg model.PHYConfig) (time.Duration, error) {
	var total time.Duration
	for i, pkt := range packets {
		toa, err := TimeOnAir(pkt.PayloadBytes(), cfg)
		if err != nil {
			return 0, fmt.Errorf("packet %d: %w", i, err)
		}
		total += toa
	}
	return total, nil
}

// MaxEPCsPerDay returns the duty-cycle-limited sustainable EPC
// throughput for the configuration: the number of worst-case full
// packets that fit into the allowed daily airtime, times the EPCs each
// carries. Floored to whole packets, so the result never overstates what
// the regulation permits.
func (p *Planner) MaxEPCsPerDay(cfg model.PHYConfig, budget model.DutyCycleBudget) (int64, error) {
	if err := ValidatePHYConfig(cfg); err != nil {
		return 0, err
	}
	maxPayload, err := p.Band.MaxPayloadBytes(cfg.SpreadingFactor)
	if err != nil {
		return 0, err
	}

	perPacket := maxPayload / model.EPCSize
	if perPacket < 1 {
		return 0, fmt.Errorf("%w: max payload %d bytes at SF%d",
			ErrPayloadTooSmall, maxPayload, cfg.SpreadingFactor)
	}

	fullPacketToA, err := TimeOnAir(perPacket*model.EPCSize, cfg)
	if err != nil {
		return 0, err
	}

	allowed := budget.AllowedAirtime()
	if allowed <= 0 || fullPacketToA <= 0 {
		return 0, nil
	}

	packetsPerDay := int64(allowed / fullPacketToA)
	return packetsPerDay * int64(perPacket), nil
}

// Plan runs the full pipeline for one scenario: validate the PHY
// configuration, partition the EPC list, sum the airtime, and derive the
// daily capacity. All validation happens before any arithmetic; the
// first failure aborts the run.
func (p *Planner) Plan(epcs []model.EPC, cfg model.PHYConfig, budget model.DutyCycleBudget) (model.PlanResult, error) {
	var result model.PlanResult

	if err := ValidatePHYConfig(cfg); err != nil {
		return result, err
	}
	maxPayload, err := p.Band.MaxPayloadBytes(cfg.SpreadingFactor)
	if err != nil {
		return result, err
	}

	packets, err := PackEPCs(epcs, maxPayload)
	if err != nil {
		return result, fmt.Errorf("SF%d: %w", cfg.SpreadingFactor, err)
	}

	totalAirtime, err := TotalAirtime(packets, cfg)
	if err != nil {
		return result, err
	}

	perDay, err := p.MaxEPCsPerDay(cfg, budget)
	if err != nil {
		return result, err
	}

	result = model.PlanResult{
		PacketCount:   len(packets),
		EPCsPerPacket: maxPayload / model.EPCSize,
		TotalAirtime:  totalAirtime,
		MaxEPCsPerDay: perDay,
	}
	return result, nil
}
