package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/internal/logging"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := NewServer(core.NewPlanner(core.EU868()), nil, logging.Noop())
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func testEPCHexes(n int) []string {
	hexes := make([]string, n)
	for i := range hexes {
		hexes[i] = fmt.Sprintf("3034%020X", i)
	}
	return hexes
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	buf, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(buf))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestPlanEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/plan", planRequest{
		EPCs:     testEPCHexes(40),
		Scenario: phyConfigJSON{SpreadingFactor: 7},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got planResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	// 40 EPCs at SF7 pack 18 per frame: 18+18+4.
	if got.PacketCount != 3 {
		t.Errorf("packet_count = %d, want 3", got.PacketCount)
	}
	if got.EPCsPerPacket != 18 {
		t.Errorf("epcs_per_packet = %d, want 18", got.EPCsPerPacket)
	}
	if got.MaxEPCsPerDay != 45288 {
		t.Errorf("max_epcs_per_day = %d, want 45288", got.MaxEPCsPerDay)
	}
	// Three 4-byte frame headers plus 40 packed EPCs.
	if want := 3*4 + 40*12; got.EncodedBytes != want {
		t.Errorf("encoded_payload_bytes = %d, want %d", got.EncodedBytes, want)
	}
}

func TestPlanRejectsMalformedEPC(t *testing.T) {
	ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/v1/plan", planRequest{
		EPCs:     []string{"not-hex"},
		Scenario: phyConfigJSON{SpreadingFactor: 7},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var body errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Error == "" {
		t.Error("expected a non-empty error message")
	}
}

func TestPlanRejectsBadDutyCycle(t *testing.T) {
	ts := newTestServer(t)

	bad := 1.5
	resp := postJSON(t, ts.URL+"/v1/plan", planRequest{
		EPCs:      testEPCHexes(1),
		Scenario:  phyConfigJSON{SpreadingFactor: 7},
		DutyCycle: &bad,
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestCompareDefaultScenarios(t *testing.T) {
	ts := newTestServer(t)

	// No scenarios in the request: the server compares SF7 through SF12.
	resp := postJSON(t, ts.URL+"/v1/compare", compareRequest{
		EPCs: testEPCHexes(100),
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var rows []compareRow
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("got %d rows, want 6", len(rows))
	}
	for i, row := range rows {
		if want := 7 + i; row.SpreadingFactor != want {
			t.Errorf("row %d spreading_factor = %d, want %d", i, row.SpreadingFactor, want)
		}
	}
	for i := 1; i < len(rows); i++ {
		if rows[i].MaxEPCsPerDay >= rows[i-1].MaxEPCsPerDay {
			t.Errorf("max_epcs_per_day not decreasing at row %d: %d >= %d",
				i, rows[i].MaxEPCsPerDay, rows[i-1].MaxEPCsPerDay)
		}
	}
}

func TestMethodNotAllowed(t *testing.T) {
	ts := newTestServer(t)

	resp, err := http.Get(ts.URL + "/v1/plan")
	if err != nil {
		t.Fatalf("GET /v1/plan: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d, want 405", resp.StatusCode)
	}
}
