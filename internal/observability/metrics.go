package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rfwavelabs/epclink-planner/model"
)

// PlannerCollector bundles Prometheus metrics for the planning surface
// and provides helpers to wire them into HTTP handlers.
type PlannerCollector struct {
	gatherer prometheus.Gatherer

	PlanRuns       *prometheus.CounterVec
	PlanAirtime    prometheus.Histogram
	PacketsPerPlan prometheus.Histogram
	EPCsLoaded     prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec
}

// NewPlannerCollector registers planner Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewPlannerCollector(reg prometheus.Registerer) (*PlannerCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planner_plans_total",
		Help: "Total number of planning runs, labeled by outcome (ok or error).",
	}, []string{"outcome"})
	runs, err := registerCounterVec(reg, runs, "planner_plans_total")
	if err != nil {
		return nil, err
	}

	airtime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_plan_airtime_seconds",
		Help:    "Total computed time-on-air per planning run, in seconds.",
		Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300, 900, 3600},
	})
	airtime, err = registerHistogram(reg, airtime, "planner_plan_airtime_seconds")
	if err != nil {
		return nil, err
	}

	packets := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planner_packets_per_plan",
		Help:    "Number of packets a planning run partitioned its EPC list into.",
		Buckets: []float64{1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
	packets, err = registerHistogram(reg, packets, "planner_packets_per_plan")
	if err != nil {
		return nil, err
	}

	loaded := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "planner_epcs_loaded",
		Help: "Number of EPCs supplied to the most recent planning run.",
	})
	loaded, err = registerGauge(reg, loaded, "planner_epcs_loaded")
	if err != nil {
		return nil, err
	}

	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "httpapi_requests_total",
		Help: "Total number of handled HTTP API requests, labeled by route and status code.",
	}, []string{"route", "code"})
	httpRequests, err = registerCounterVec(reg, httpRequests, "httpapi_requests_total")
	if err != nil {
		return nil, err
	}

	httpDurations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "httpapi_request_duration_seconds",
		Help:    "HTTP API request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route"})
	httpDurations, err = registerHistogramVec(reg, httpDurations, "httpapi_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &PlannerCollector{
		gatherer:       gatherer,
		PlanRuns:       runs,
		PlanAirtime:    airtime,
		PacketsPerPlan: packets,
		EPCsLoaded:     loaded,
		HTTPRequests:   httpRequests,
		HTTPDurations:  httpDurations,
	}, nil
}

// ObservePlan records the outcome of a planning run. A nil collector is
// safe so library callers can pass through unconditionally.
func (c *PlannerCollector) ObservePlan(epcCount int, result model.PlanResult, err error) {
	if c == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	if c.PlanRuns != nil {
		c.PlanRuns.WithLabelValues(outcome).Inc()
	}
	if c.EPCsLoaded != nil {
		c.EPCsLoaded.Set(float64(epcCount))
	}
	if err != nil {
		return
	}
	if c.PlanAirtime != nil {
		c.PlanAirtime.Observe(result.TotalAirtime.Seconds())
	}
	if c.PacketsPerPlan != nil {
		c.PacketsPerPlan.Observe(float64(result.PacketCount))
	}
}

// ObserveHTTP records one handled HTTP request.
func (c *PlannerCollector) ObserveHTTP(route string, code int, seconds float64) {
	if c == nil {
		return
	}
	if c.HTTPRequests != nil {
		c.HTTPRequests.WithLabelValues(route, fmt.Sprintf("%d", code)).Inc()
	}
	if c.HTTPDurations != nil {
		c.HTTPDurations.WithLabelValues(route).Observe(seconds)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PlannerCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, hist prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(hist); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return hist, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
