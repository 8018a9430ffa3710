// Package codec frames EPC lists into LoRa application payloads and
// back. The wire layout is a fixed 4-byte header followed by packed
// 12-byte EPCs:
//
//	byte 0    packet id
//	byte 1    EPC count
//	bytes 2-3 truncated Unix timestamp, big-endian
package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"time"

	"github.com/rfwavelabs/epclink-planner/model"
)

// HeaderSize is the fixed framing overhead per payload.
const HeaderSize = 4

// MaxEPCsPerPayload is bounded by the one-byte count field.
const MaxEPCsPerPayload = 255

var (
	// ErrTooManyEPCs is returned when a payload would need more EPCs
	// than the count byte can express.
	ErrTooManyEPCs = errors.New("too many EPCs for one payload")
	// ErrPayloadTruncated is returned when a decoded payload is shorter
	// than its header promises.
	ErrPayloadTruncated = errors.New("payload truncated")
)

// Header is the decoded framing metadata of one payload.
type Header struct {
	PacketID uint8
	EPCCount uint8
	// Timestamp is the low 16 bits of the Unix time the payload was
	// built, enough to order packets within a batch window.
	Timestamp uint16
}

// Encode frames the EPCs into a payload with the given packet id,
// stamping the truncated Unix time of at.
func Encode(packetID uint8, epcs []model.EPC, at time.Time) ([]byte, error) {
	if len(epcs) > MaxEPCsPerPayload {
		return nil, fmt.Errorf("%w: %d", ErrTooManyEPCs, len(epcs))
	}

	payload := make([]byte, HeaderSize, HeaderSize+len(epcs)*model.EPCSize)
	payload[0] = packetID
	payload[1] = uint8(len(epcs))
	binary.BigEndian.PutUint16(payload[2:4], uint16(at.Unix()))

	for _, epc := range epcs {
		payload = append(payload, epc[:]...)
	}
	return payload, nil
}

// Decode parses a payload produced by Encode. A payload shorter than
// its header's EPC count is rejected rather than partially decoded.
func Decode(payload []byte) (Header, []model.EPC, error) {
	if len(payload) < HeaderSize {
		return Header{}, nil, fmt.Errorf("%w: %d bytes, header needs %d", ErrPayloadTruncated, len(payload), HeaderSize)
	}

	hdr := Header{
		PacketID:  payload[0],
		EPCCount:  payload[1],
		Timestamp: binary.BigEndian.Uint16(payload[2:4]),
	}

	body := payload[HeaderSize:]
	want := int(hdr.EPCCount) * model.EPCSize
	if len(body) < want {
		return hdr, nil, fmt.Errorf("%w: header promises %d EPCs (%d bytes), body has %d",
			ErrPayloadTruncated, hdr.EPCCount, want, len(body))
	}

	epcs := make([]model.EPC, hdr.EPCCount)
	for i := range epcs {
		epc, err := model.EPCFromBytes(body[i*model.EPCSize : (i+1)*model.EPCSize])
		if err != nil {
			return hdr, nil, fmt.Errorf("EPC %d: %w", i, err)
		}
		epcs[i] = epc
	}
	return hdr, epcs, nil
}

// FramePackets encodes a planned packet sequence into wire payloads,
// assigning sequential packet ids that wrap at 256. The timestamp of at
// is stamped into every frame so a batch shares one ordering window.
func FramePackets(packets []model.Packet, at time.Time) ([][]byte, error) {
	frames := make([][]byte, 0, len(packets))
	for i, pkt := range packets {
		frame, err := Encode(uint8(i%256), pkt.EPCs, at)
		if err != nil {
			return nil, fmt.Errorf("packet %d: %w", i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}
