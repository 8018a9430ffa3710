package model

import (
	"errors"
	"testing"
)

func TestParseEPC_Canonical(t *testing.T) {
	epc, err := ParseEPC("30340789abcdef0000000001")
	if err != nil {
		t.Fatalf("ParseEPC: %v", err)
	}
	if got := epc.String(); got != "30340789ABCDEF0000000001" {
		t.Errorf("String() = %q, want upper-case canonical form", got)
	}
	if got := len(epc.Bytes()); got != EPCSize {
		t.Errorf("Bytes() length = %d, want %d", got, EPCSize)
	}
}

func TestParseEPC_TrimsWhitespace(t *testing.T) {
	if _, err := ParseEPC("  30340789ABCDEF0000000001\n"); err != nil {
		t.Errorf("surrounding whitespace should be tolerated: %v", err)
	}
}

func TestParseEPC_Malformed(t *testing.T) {
	cases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"too short", "30340789ABCDEF00000001"},
		{"too long", "30340789ABCDEF000000000100"},
		{"non hex", "30340789ABCDEF000000000G"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ParseEPC(tc.input); !errors.Is(err, ErrMalformedEPC) {
				t.Errorf("got err %v, want ErrMalformedEPC", err)
			}
		})
	}
}

func TestEPCFromBytes_LengthChecked(t *testing.T) {
	if _, err := EPCFromBytes(make([]byte, EPCSize)); err != nil {
		t.Errorf("12 bytes should parse: %v", err)
	}
	if _, err := EPCFromBytes(make([]byte, EPCSize-1)); !errors.Is(err, ErrMalformedEPC) {
		t.Errorf("11 bytes: got err %v, want ErrMalformedEPC", err)
	}
	if _, err := EPCFromBytes(make([]byte, EPCSize+1)); !errors.Is(err, ErrMalformedEPC) {
		t.Errorf("13 bytes: got err %v, want ErrMalformedEPC", err)
	}
}
