package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// Registry holds every cipherlens collector so a run can be exported as a
// textfile without the Go runtime collectors of the default registry.
var Registry = prometheus.NewRegistry()

var (
	AdapterRunsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherlens_adapter_runs_total",
			Help: "Total number of adapter runs by tool and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: success or a failure kind
	)

	AdapterDurationSeconds = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cipherlens_adapter_duration_seconds",
			Help:    "Adapter execution time from invocation to termination",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	AdapterFindingsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherlens_adapter_findings_total",
			Help: "Findings reported by successful adapters by severity",
		},
		[]string{"kind", "severity"},
	)

	VerdictsTotal = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "cipherlens_verdicts_total",
			Help: "Completed analyses by risk level",
		},
		[]string{"level"},
	)

	RiskScore = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "cipherlens_risk_score",
			Help:    "Distribution of computed risk scores",
			Buckets: []float64{0.2, 0.5, 0.8, 1},
		},
	)
)

// RecordToolResult records one adapter's terminal state.
func RecordToolResult(res model.ToolResult) {
	outcome := "success"
	if !res.Success {
		outcome = string(res.FailureKind)
		if outcome == "" {
			outcome = "failed"
		}
	}
	kind := string(res.Kind)
	AdapterRunsTotal.WithLabelValues(kind, outcome).Inc()
	AdapterDurationSeconds.WithLabelValues(kind).Observe(res.ExecutionTimeSeconds)
	if res.Success {
		for _, f := range res.Findings {
			AdapterFindingsTotal.WithLabelValues(kind, string(f.Severity)).Inc()
		}
	}
}

// RecordVerdict records the final verdict of a report. Inconclusive reports
// carry no meaningful score and are only counted.
func RecordVerdict(r *model.AnalysisReport) {
	VerdictsTotal.WithLabelValues(string(r.RiskLevel)).Inc()
	if !r.Inconclusive {
		RiskScore.Observe(r.RiskScore)
	}
}

// WriteTextfile writes the registry in the node_exporter textfile format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
