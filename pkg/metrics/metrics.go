// Package metrics exposes Prometheus collectors for profile publishing
// and simulated battery state.
//
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/openfmb-sim/battery-sim-go/pkg/schema"
)

const namespace = "battery_sim"

// Metrics holds the simulator collectors.
type Metrics struct {
	profiles *prometheus.CounterVec
	bytes    *prometheus.HistogramVec
	errors   *prometheus.CounterVec
	controls *prometheus.CounterVec
	soc      *prometheus.GaugeVec
	power    *prometheus.GaugeVec
	islanded *prometheus.GaugeVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		profiles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profiles_total",
			Help:      "Profiles built and encoded, by kind",
		}, []string{"kind"}),
		bytes: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "profile_bytes",
			Help:      "Encoded envelope size in bytes, by kind",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 8),
		}, []string{"kind"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "build_errors_total",
			Help:      "Profiles that failed to build, encode or publish, by kind",
		}, []string{"kind"}),
		controls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "controls_applied_total",
			Help:      "Control profiles applied, by control type",
		}, []string{"control_type"}),
		soc: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "state_of_charge_ratio",
			Help:      "Simulated state of charge (0-1)",
		}, []string{"device"}),
		power: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "real_power_kw",
			Help:      "Simulated real power in kW (positive = charging)",
		}, []string{"device"}),
		islanded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "islanded",
			Help:      "1 if the simulated battery is islanded",
		}, []string{"device"}),
	}

	for _, c := range []prometheus.Collector{m.profiles, m.bytes, m.errors, m.controls, m.soc, m.power, m.islanded} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering metrics: %w", err)
		}
	}
	return m, nil
}

// ObserveProfile records a successfully encoded profile.
func (m *Metrics) ObserveProfile(kind schema.ProfileKind, size int) {
	if m == nil {
		return
	}
	m.profiles.WithLabelValues(kind.String()).Inc()
	m.bytes.WithLabelValues(kind.String()).Observe(float64(size))
}

// ObserveError records a failed profile.
func (m *Metrics) ObserveError(kind schema.ProfileKind) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(kind.String()).Inc()
}

// ObserveControl records an applied control.
func (m *Metrics) ObserveControl(controlType string) {
	if m == nil {
		return
	}
	m.controls.WithLabelValues(controlType).Inc()
}

// SetBatteryState updates the battery gauges for a device.
func (m *Metrics) SetBatteryState(device string, soc, powerKW float64, islanded bool) {
	if m == nil {
		return
	}
	m.soc.WithLabelValues(device).Set(soc)
	m.power.WithLabelValues(device).Set(powerKW)
	v := 0.0
	if islanded {
		v = 1
	}
	m.islanded.WithLabelValues(device).Set(v)
}
