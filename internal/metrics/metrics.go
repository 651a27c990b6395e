// Package metrics publishes a finished report in Prometheus textfile format
// so a CI node exporter can pick up the verdicts.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/shivam-909/leakcheck/internal/scenario"
)

// Exporter holds the leak check metrics in a private registry.
type Exporter struct {
	registry *prometheus.Registry

	resident      *prometheus.GaugeVec
	growth        *prometheus.GaugeVec
	verdict       *prometheus.GaugeVec
	processed     *prometheus.CounterVec
	processErrors *prometheus.CounterVec
}

func NewExporter() *Exporter {
	x := &Exporter{registry: prometheus.NewRegistry()}

	x.resident = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leakcheck_resident_kb",
		Help: "Memory sampled at each checkpoint, in kilobytes",
	}, []string{"scenario", "checkpoint"})

	x.growth = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leakcheck_growth_kb",
		Help: "Memory growth of a scenario over its baseline, in kilobytes",
	}, []string{"scenario", "engine"})

	x.verdict = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "leakcheck_verdict",
		Help: "Scenario verdict: 0 pass, 1 warn, 2 fail",
	}, []string{"scenario", "engine"})

	x.processed = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leakcheck_processed_total",
		Help: "Process calls that returned a result",
	}, []string{"scenario"})

	x.processErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "leakcheck_process_errors_total",
		Help: "Process calls that failed and were skipped",
	}, []string{"scenario"})

	x.registry.MustRegister(x.resident, x.growth, x.verdict, x.processed, x.processErrors)
	return x
}

func (x *Exporter) Registry() *prometheus.Registry {
	return x.registry
}

// Observe records every series of rep.
func (x *Exporter) Observe(rep *scenario.Report) {
	for _, s := range rep.Series {
		for _, c := range s.Checks {
			x.resident.WithLabelValues(s.Scenario, c.Label).Set(float64(c.ResidentKB))
		}
		x.processed.WithLabelValues(s.Scenario).Add(float64(s.Processed))
		x.processErrors.WithLabelValues(s.Scenario).Add(float64(s.ProcessErrors))
		x.growth.WithLabelValues(s.Scenario, s.Engine).Set(float64(s.Outcome.DeltaKB))
		x.verdict.WithLabelValues(s.Scenario, s.Engine).Set(float64(s.Outcome.Verdict))
	}
}

// WriteTextfile writes the registry to path, replacing it atomically.
func (x *Exporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, x.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}

// Export is Observe followed by WriteTextfile on a fresh exporter.
func Export(path string, rep *scenario.Report) error {
	x := NewExporter()
	x.Observe(rep)
	return x.WriteTextfile(path)
}
