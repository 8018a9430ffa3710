// Package httpapi exposes the transmission planner over a small
// JSON-over-HTTP surface: one-shot planning, cross-SF comparison, and a
// health probe. Every request gets a request id, structured logs,
// Prometheus metrics and an OpenTelemetry span.
package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/rfwavelabs/epclink-planner/core"
	"github.com/rfwavelabs/epclink-planner/internal/codec"
	"github.com/rfwavelabs/epclink-planner/internal/logging"
	"github.com/rfwavelabs/epclink-planner/internal/observability"
	"github.com/rfwavelabs/epclink-planner/model"
)

const tracerName = "github.com/rfwavelabs/epclink-planner/internal/httpapi"

// Server wires the planner into HTTP handlers.
type Server struct {
	planner   *core.Planner
	collector *observability.PlannerCollector
	log       logging.Logger
}

// NewServer constructs the API server. collector may be nil (metrics
// off) and log may be nil (logs off).
func NewServer(planner *core.Planner, collector *observability.PlannerCollector, log logging.Logger) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{planner: planner, collector: collector, log: log}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/plan", s.instrument("/v1/plan", s.handlePlan))
	mux.Handle("/v1/compare", s.instrument("/v1/compare", s.handleCompare))
	mux.Handle("/healthz", s.instrument("/healthz", s.handleHealth))
	return mux
}

// ---- request/response shapes ----

type phyConfigJSON struct {
	SpreadingFactor int    `json:"spreading_factor"`
	BandwidthHz     int64  `json:"bandwidth_hz"`
	CodingRate      string `json:"coding_rate"`
	PreambleSymbols int    `json:"preamble_symbols"`
	ImplicitHeader  bool   `json:"implicit_header"`
	DisableCRC      bool   `json:"disable_crc"`
	LDRO            string `json:"ldro"`
}

func (c phyConfigJSON) toModel() (model.PHYConfig, error) {
	cfg := model.PHYConfig{
		SpreadingFactor: model.SpreadingFactor(c.SpreadingFactor),
		BandwidthHz:     c.BandwidthHz,
		PreambleSymbols: c.PreambleSymbols,
		ExplicitHeader:  !c.ImplicitHeader,
		CRCEnabled:      !c.DisableCRC,
	}
	if cfg.BandwidthHz == 0 {
		cfg.BandwidthHz = model.BW125kHz
	}
	if cfg.PreambleSymbols == 0 {
		cfg.PreambleSymbols = model.DefaultPreambleSymbols
	}

	switch c.CodingRate {
	case "", "4/5":
		cfg.CodingRate = model.CR4_5
	case "4/6":
		cfg.CodingRate = model.CR4_6
	case "4/7":
		cfg.CodingRate = model.CR4_7
	case "4/8":
		cfg.CodingRate = model.CR4_8
	default:
		return cfg, fmt.Errorf("unknown coding_rate %q", c.CodingRate)
	}

	switch c.LDRO {
	case "", "auto":
		cfg.LDRO = model.LDROAuto
	case "on":
		cfg.LDRO = model.LDROOn
	case "off":
		cfg.LDRO = model.LDROOff
	default:
		return cfg, fmt.Errorf("unknown ldro mode %q", c.LDRO)
	}
	return cfg, nil
}

type planRequest struct {
	EPCs      []string      `json:"epcs"`
	Scenario  phyConfigJSON `json:"scenario"`
	DutyCycle *float64      `json:"duty_cycle"`
}

type planResponse struct {
	PacketCount     int     `json:"packet_count"`
	EPCsPerPacket   int     `json:"epcs_per_packet"`
	TotalAirtimeSec float64 `json:"total_airtime_seconds"`
	MaxEPCsPerDay   int64   `json:"max_epcs_per_day"`

	// EncodedBytes is the wire size of all frames including the 4-byte
	// framing header each carries. Zero on comparison rows, which cost
	// scenarios without building frames.
	EncodedBytes int `json:"encoded_payload_bytes,omitempty"`
}

type compareRequest struct {
	EPCs      []string        `json:"epcs"`
	Scenarios []phyConfigJSON `json:"scenarios"`
	DutyCycle *float64        `json:"duty_cycle"`
}

type compareRow struct {
	SpreadingFactor  int     `json:"spreading_factor"`
	BandwidthHz      int64   `json:"bandwidth_hz"`
	CodingRate       string  `json:"coding_rate"`
	PacketAirtimeSec float64 `json:"packet_airtime_seconds"`
	planResponse
}

type errorResponse struct {
	Error string `json:"error"`
}

// ---- handlers ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) (int, error) {
	if r.Method != http.MethodGet {
		return http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	return http.StatusOK, nil
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) (int, error) {
	if r.Method != http.MethodPost {
		return http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method)
	}

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return http.StatusBadRequest, fmt.Errorf("decode request: %w", err)
	}

	epcs, err := parseEPCs(req.EPCs)
	if err != nil {
		return http.StatusBadRequest, err
	}
	cfg, err := req.Scenario.toModel()
	if err != nil {
		return http.StatusBadRequest, err
	}
	budget, err := budgetFrom(req.DutyCycle)
	if err != nil {
		return http.StatusBadRequest, err
	}

	result, err := s.planner.Plan(epcs, cfg, budget)
	s.collector.ObservePlan(len(epcs), result, err)
	if err != nil {
		return statusFor(err), err
	}

	// Frame the partition the plan was costed on, so the response
	// reports the exact wire bytes a device would transmit.
	packets, err := s.planner.Packets(epcs, cfg)
	if err != nil {
		return statusFor(err), err
	}
	frames, err := codec.FramePackets(packets, time.Now())
	if err != nil {
		return http.StatusInternalServerError, err
	}
	encoded := 0
	for _, frame := range frames {
		encoded += len(frame)
	}

	writeJSON(w, http.StatusOK, planResponse{
		PacketCount:     result.PacketCount,
		EPCsPerPacket:   result.EPCsPerPacket,
		TotalAirtimeSec: result.TotalAirtime.Seconds(),
		MaxEPCsPerDay:   result.MaxEPCsPerDay,
		EncodedBytes:    encoded,
	})
	return http.StatusOK, nil
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) (int, error) {
	if r.Method != http.MethodPost {
		return http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method)
	}

	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return http.StatusBadRequest, fmt.Errorf("decode request: %w", err)
	}

	epcs, err := parseEPCs(req.EPCs)
	if err != nil {
		return http.StatusBadRequest, err
	}
	budget, err := budgetFrom(req.DutyCycle)
	if err != nil {
		return http.StatusBadRequest, err
	}

	configs := make([]model.PHYConfig, 0, len(req.Scenarios))
	for i, sc := range req.Scenarios {
		cfg, err := sc.toModel()
		if err != nil {
			return http.StatusBadRequest, fmt.Errorf("scenario %d: %w", i, err)
		}
		configs = append(configs, cfg)
	}
	if len(configs) == 0 {
		configs = core.DefaultScenarios()
	}

	results, err := s.planner.Compare(epcs, configs, budget)
	if err != nil {
		return statusFor(err), err
	}

	rows := make([]compareRow, 0, len(results))
	for _, row := range results {
		rows = append(rows, compareRow{
			SpreadingFactor:  int(row.Config.SpreadingFactor),
			BandwidthHz:      row.Config.BandwidthHz,
			CodingRate:       row.Config.CodingRate.String(),
			PacketAirtimeSec: row.PacketAirtime.Seconds(),
			planResponse: planResponse{
				PacketCount:     row.Result.PacketCount,
				EPCsPerPacket:   row.Result.EPCsPerPacket,
				TotalAirtimeSec: row.Result.TotalAirtime.Seconds(),
				MaxEPCsPerDay:   row.Result.MaxEPCsPerDay,
			},
		})
	}
	writeJSON(w, http.StatusOK, rows)
	return http.StatusOK, nil
}

// ---- plumbing ----

type handlerFunc func(http.ResponseWriter, *http.Request) (int, error)

// instrument wraps a handler with request-id logging, metrics, and a
// span. Handler errors are rendered as JSON with the status the handler
// chose.
func (s *Server) instrument(route string, h handlerFunc) http.Handler {
	tracer := otel.Tracer(tracerName)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx, log := logging.WithRequestLogger(r.Context(), s.log)
		ctx, span := tracer.Start(ctx, route)
		defer span.End()
		r = r.WithContext(ctx)

		code, err := h(w, r)
		elapsed := time.Since(start)

		span.SetAttributes(
			attribute.String("http.route", route),
			attribute.Int("http.status_code", code),
		)
		s.collector.ObserveHTTP(route, code, elapsed.Seconds())

		if err != nil {
			span.RecordError(err)
			log.Warn(ctx, "request failed",
				logging.String("route", route),
				logging.Int("status", code),
				logging.Err(err),
			)
			writeJSON(w, code, errorResponse{Error: err.Error()})
			return
		}

		log.Info(ctx, "request handled",
			logging.String("route", route),
			logging.Int("status", code),
			logging.Duration("elapsed", elapsed),
		)
	})
}

func parseEPCs(hexes []string) ([]model.EPC, error) {
	if len(hexes) == 0 {
		return nil, fmt.Errorf("%w: empty EPC list", model.ErrMalformedEPC)
	}
	epcs := make([]model.EPC, 0, len(hexes))
	for i, h := range hexes {
		epc, err := model.ParseEPC(h)
		if err != nil {
			return nil, fmt.Errorf("epc %d: %w", i, err)
		}
		epcs = append(epcs, epc)
	}
	return epcs, nil
}

func budgetFrom(fraction *float64) (model.DutyCycleBudget, error) {
	if fraction == nil {
		return model.DefaultDutyCycleBudget(), nil
	}
	if *fraction <= 0 || *fraction > 1 {
		return model.DutyCycleBudget{}, fmt.Errorf("duty_cycle must be in (0,1], got %v", *fraction)
	}
	return model.DutyCycleBudget{Fraction: *fraction, Window: 24 * time.Hour}, nil
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, model.ErrMalformedEPC),
		errors.Is(err, core.ErrInvalidConfig),
		errors.Is(err, core.ErrUnsupportedSF),
		errors.Is(err, core.ErrPayloadTooSmall):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
