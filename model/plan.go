package model

import "time"

// Packet is one planned transmission: the EPCs assigned to it and the
// resulting application payload size. Packets are derived values; only
// the planner produces them, by slicing an EPC list against the PHY's
// maximum payload size.
type Packet struct {
	EPCs []EPC `json:"EPCs"`
}

// PayloadBytes is the application payload size of the packet. The last
// packet of a plan is usually partial and therefore smaller.
func (p Packet) PayloadBytes() int {
	return len(p.EPCs) * EPCSize
}

// PlanResult is the numeric outcome of one planning run. Pure output
// value with no identity beyond the run that produced it.
type PlanResult struct {
	// PacketCount is the number of transmissions needed for the full
	// EPC list.
	PacketCount int `json:"PacketCount"`

	// EPCsPerPacket is the capacity of a full packet.
	EPCsPerPacket int `json:"EPCsPerPacket"`

	// TotalAirtime is the summed time-on-air of all packets, including
	// the (shorter) partial final packet.
	TotalAirtime time.Duration `json:"TotalAirtime"`

	// MaxEPCsPerDay is the duty-cycle-limited sustainable throughput,
	// assuming worst-case full packets.
	MaxEPCsPerDay int64 `json:"MaxEPCsPerDay"`
}

// ScenarioResult pairs a PlanResult with the PHY configuration that
// produced it, for cross-SF comparison tables.
type ScenarioResult struct {
	Config PHYConfig  `json:"Config"`
	Result PlanResult `json:"Result"`

	// PacketAirtime is the time-on-air of one full packet under Config,
	// the per-transmission figure the duty-cycle maths is built on.
	PacketAirtime time.Duration `json:"PacketAirtime"`
}
