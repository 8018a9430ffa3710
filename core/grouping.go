package core

import (
	"math"

	"github.com/rfwavelabs/epclink-planner/model"
)

// DefaultMinPrefixHexLen is the minimum shared leading hex characters
// for two EPCs to be grouped together.
const DefaultMinPrefixHexLen = 6

// groupHeaderBytes is the encoded overhead of one prefix group: a group
// marker byte plus the prefix length byte.
const groupHeaderBytes = 2

// PrefixGroup is one set of EPCs sharing a common leading prefix,
// together with the payload arithmetic for prefix-compressed encoding:
// the group is sent as header + prefix + one suffix per member instead
// of full 12-byte identifiers.
type PrefixGroup struct {
	// Prefix is the shared leading hex string, empty for singleton
	// groups (which gain nothing from compression).
	Prefix string `json:"Prefix"`

	PrefixBytes int `json:"PrefixBytes"`
	SuffixBytes int `json:"SuffixBytes"`

	// EPCs are the members, in input order.
	EPCs []model.EPC `json:"EPCs"`

	// PayloadBytes is the compressed encoded size of the whole group:
	// header + prefix + len(EPCs) suffixes.
	PayloadBytes int `json:"PayloadBytes"`

	// CompressionPct is the saving over sending full EPCs, in percent,
	// rounded to one decimal.
	CompressionPct float64 `json:"CompressionPct"`

	// SuffixesPerSF7Frame and SuffixesPerSF12Frame are how many member
	// suffixes fit into one frame at the band's SF7 and SF12 payload
	// limits, after the group header and prefix overhead.
	SuffixesPerSF7Frame  int `json:"SuffixesPerSF7Frame"`
	SuffixesPerSF12Frame int `json:"SuffixesPerSF12Frame"`
}

// GroupingSummary aggregates a whole analysis run.
type GroupingSummary struct {
	Groups []PrefixGroup `json:"Groups"`

	TotalEPCs         int     `json:"TotalEPCs"`
	UncompressedBytes int     `json:"UncompressedBytes"`
	CompressedBytes   int     `json:"CompressedBytes"`
	SavingsBytes      int     `json:"SavingsBytes"`
	SavingsPct        float64 `json:"SavingsPct"`
}

// commonLeadingHexLen returns the number of leading hex characters two
// EPC strings share.
func commonLeadingHexLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// AnalyzeGroups greedily partitions the EPC list into prefix groups: the
// first ungrouped EPC seeds a group, and every later EPC sharing at
// least minPrefixHexLen leading hex characters with the seed joins it.
// minPrefixHexLen <= 0 selects DefaultMinPrefixHexLen. The band supplies
// the per-frame capacity figures.
func (p *Planner) AnalyzeGroups(epcs []model.EPC, minPrefixHexLen int) GroupingSummary {
	if minPrefixHexLen <= 0 {
		minPrefixHexLen = DefaultMinPrefixHexLen
	}

	sf7Limit := p.Band.MaxPayload[model.SF7]
	sf12Limit := p.Band.MaxPayload[model.SF12]

	hexes := make([]string, len(epcs))
	for i, e := range epcs {
		hexes[i] = e.String()
	}

	grouped := make([]bool, len(epcs))
	var groups []PrefixGroup

	for i := range epcs {
		if grouped[i] {
			continue
		}
		grouped[i] = true
		members := []model.EPC{epcs[i]}
		prefixLen := model.EPCHexLen

		for j := i + 1; j < len(epcs); j++ {
			if grouped[j] {
				continue
			}
			shared := commonLeadingHexLen(hexes[i], hexes[j])
			if shared >= minPrefixHexLen {
				grouped[j] = true
				members = append(members, epcs[j])
				if shared < prefixLen {
					prefixLen = shared
				}
			}
		}

		groups = append(groups, p.buildGroup(hexes[i], prefixLen, members, sf7Limit, sf12Limit))
	}

	summary := GroupingSummary{Groups: groups}
	for _, g := range groups {
		summary.TotalEPCs += len(g.EPCs)
		summary.CompressedBytes += g.PayloadBytes
	}
	summary.UncompressedBytes = summary.TotalEPCs * model.EPCSize
	summary.SavingsBytes = summary.UncompressedBytes - summary.CompressedBytes
	if summary.UncompressedBytes > 0 {
		summary.SavingsPct = round1(float64(summary.SavingsBytes) / float64(summary.UncompressedBytes) * 100)
	}
	return summary
}

func (p *Planner) buildGroup(seedHex string, prefixLen int, members []model.EPC, sf7Limit, sf12Limit int) PrefixGroup {
	if len(members) == 1 {
		// Singleton: no shared prefix, the EPC is sent whole behind the
		// group header.
		return PrefixGroup{
			SuffixBytes:          model.EPCSize,
			EPCs:                 members,
			PayloadBytes:         groupHeaderBytes + model.EPCSize,
			CompressionPct:       0,
			SuffixesPerSF7Frame:  frameCapacity(sf7Limit, groupHeaderBytes, model.EPCSize),
			SuffixesPerSF12Frame: frameCapacity(sf12Limit, groupHeaderBytes, model.EPCSize),
		}
	}

	// Keep the prefix byte-aligned so prefix + suffix always re-compose
	// into exactly 12 bytes.
	prefixLen -= prefixLen % 2
	prefixBytes := prefixLen / 2
	suffixBytes := model.EPCSize - prefixBytes

	payload := groupHeaderBytes + prefixBytes + len(members)*suffixBytes
	uncompressed := len(members) * model.EPCSize

	overhead := groupHeaderBytes + prefixBytes
	return PrefixGroup{
		Prefix:               seedHex[:prefixLen],
		PrefixBytes:          prefixBytes,
		SuffixBytes:          suffixBytes,
		EPCs:                 members,
		PayloadBytes:         payload,
		CompressionPct:       round1(float64(uncompressed-payload) / float64(uncompressed) * 100),
		SuffixesPerSF7Frame:  frameCapacity(sf7Limit, overhead, suffixBytes),
		SuffixesPerSF12Frame: frameCapacity(sf12Limit, overhead, suffixBytes),
	}
}

// frameCapacity returns how many suffixes of the given size fit into a
// frame limit after fixed overhead, never negative.
func frameCapacity(limit, overhead, suffixBytes int) int {
	if suffixBytes <= 0 || limit <= overhead {
		return 0
	}
	return (limit - overhead) / suffixBytes
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
