package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// EPCSize is the length in bytes of an Electronic Product Code
// (96-bit SGTIN-96 style identifier).
const EPCSize = 12

// EPCHexLen is the length of an EPC rendered as a hex string.
const EPCHexLen = 2 * EPCSize

// ErrMalformedEPC is returned when an input cannot be decoded into a
// 12-byte EPC (wrong length or non-hex characters).
var ErrMalformedEPC = errors.New("malformed EPC")

// EPC is a 96-bit RFID Electronic Product Code. It is a value type and
// immutable once constructed.
type EPC [EPCSize]byte

// ParseEPC decodes a 24-character hexadecimal string into an EPC.
// Surrounding whitespace is tolerated; anything else that is not exactly
// 12 bytes of hex is ErrMalformedEPC.
func ParseEPC(s string) (EPC, error) {
	var epc EPC

	s = strings.TrimSpace(s)
	if len(s) != EPCHexLen {
		return epc, fmt.Errorf("%w: expected %d hex characters, got %d", ErrMalformedEPC, EPCHexLen, len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return epc, fmt.Errorf("%w: %v", ErrMalformedEPC, err)
	}

	copy(epc[:], raw)
	return epc, nil
}

// EPCFromBytes copies a 12-byte slice into an EPC.
func EPCFromBytes(b []byte) (EPC, error) {
	var epc EPC
	if len(b) != EPCSize {
		return epc, fmt.Errorf("%w: expected %d bytes, got %d", ErrMalformedEPC, EPCSize, len(b))
	}
	copy(epc[:], b)
	return epc, nil
}

// String renders the EPC as its canonical upper-case hex form.
func (e EPC) String() string {
	return strings.ToUpper(hex.EncodeToString(e[:]))
}

// Bytes returns a copy of the EPC's raw bytes.
func (e EPC) Bytes() []byte {
	out := make([]byte, EPCSize)
	copy(out, e[:])
	return out
}
