package model

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ParseSeverity accepts only the shared vocabulary. Tool-native scales are
// translated by each adapter's table, not here.
func ParseSeverity(s string) (Severity, bool) {
	switch Severity(strings.ToLower(strings.TrimSpace(s))) {
	case SeverityHigh:
		return SeverityHigh, true
	case SeverityMedium:
		return SeverityMedium, true
	case SeverityLow:
		return SeverityLow, true
	default:
		return "", false
	}
}

func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	default:
		return 0
	}
}

func SeverityGTE(a, b Severity) bool {
	return a.Rank() >= b.Rank()
}

// Shared finding vocabulary. Types outside this list are passed through verbatim.
const (
	VulnReentrancy      = "reentrancy"
	VulnIntegerOverflow = "integer-overflow"
	VulnUncheckedCall   = "unchecked-call"
	VulnAccessControl   = "access-control"
	VulnFrontRunning    = "front-running"
	VulnDenialOfService = "denial-of-service"
	VulnCompilerVersion = "compiler-version"
	VulnMLVulnerable    = "ml-vulnerable"
)

type Finding struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Confidence  *float64 `json:"confidence,omitempty"`
	Description string   `json:"description"`
	LineNumber  *int     `json:"line_number,omitempty"`
}

// EffectiveConfidence is the value used for scoring; an absent confidence counts as 1.0.
func (f Finding) EffectiveConfidence() float64 {
	if f.Confidence == nil {
		return 1.0
	}
	return *f.Confidence
}

func Confidence(v float64) *float64 { return &v }

// Line returns a line pointer, or nil for non-positive lines.
func Line(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

type ToolKind string

const (
	ToolStatic   ToolKind = "static"
	ToolSymbolic ToolKind = "symbolic"
	ToolML       ToolKind = "ml"
)

// AllTools is the canonical ordering used by reports and summaries.
var AllTools = []ToolKind{ToolStatic, ToolSymbolic, ToolML}

func (k ToolKind) Label() string {
	switch k {
	case ToolStatic:
		return "static analysis"
	case ToolSymbolic:
		return "symbolic execution"
	case ToolML:
		return "ML classifier"
	default:
		return string(k)
	}
}

type FailureKind string

const (
	FailureTimeout         FailureKind = "timeout"
	FailureNotInstalled    FailureKind = "not_installed"
	FailureExec            FailureKind = "exec_failed"
	FailureMalformedOutput FailureKind = "malformed_output"
	FailureUnreachable     FailureKind = "unreachable"
	FailureNotConfigured   FailureKind = "not_configured"
	FailurePanic           FailureKind = "panic"
)

func (k FailureKind) Phrase() string {
	switch k {
	case FailureTimeout:
		return "timed out"
	case FailureNotInstalled:
		return "not installed"
	case FailureExec:
		return "execution failed"
	case FailureMalformedOutput:
		return "returned malformed output"
	case FailureUnreachable:
		return "service unreachable"
	case FailureNotConfigured:
		return "not configured"
	case FailurePanic:
		return "crashed"
	default:
		return "failed"
	}
}

type ToolResult struct {
	ToolName             string      `json:"tool_name"`
	Kind                 ToolKind    `json:"kind"`
	Success              bool        `json:"success"`
	Findings             []Finding   `json:"findings"`
	ExecutionTimeSeconds float64     `json:"execution_time_seconds"`
	ErrorMessage         string      `json:"error_message,omitempty"`
	FailureKind          FailureKind `json:"failure_kind,omitempty"`
	Summary              string      `json:"summary"`
}

// Options selects which tools run for a request.
type Options struct {
	IncludeStatic   bool `json:"include_static"`
	IncludeSymbolic bool `json:"include_symbolic"`
	IncludeML       bool `json:"include_ml"`
}

func AllOptions() Options {
	return Options{IncludeStatic: true, IncludeSymbolic: true, IncludeML: true}
}

// Requested returns the selected tools in canonical order.
func (o Options) Requested() []ToolKind {
	var out []ToolKind
	if o.IncludeStatic {
		out = append(out, ToolStatic)
	}
	if o.IncludeSymbolic {
		out = append(out, ToolSymbolic)
	}
	if o.IncludeML {
		out = append(out, ToolML)
	}
	return out
}

type Request struct {
	Code         string `json:"code"`
	ContractName string `json:"contract_name"`
	Options
}

type RiskLevel string

const (
	RiskSafe     RiskLevel = "Safe"
	RiskLow      RiskLevel = "Low Risk"
	RiskModerate RiskLevel = "Moderate Risk"
	RiskHigh     RiskLevel = "High Risk"

	// RiskInconclusive is outside the ranked order; it marks a request where no tool succeeded.
	RiskInconclusive RiskLevel = "Inconclusive"
)

// Rank orders the four ranked levels; Inconclusive and unknown values return -1.
func (l RiskLevel) Rank() int {
	switch l {
	case RiskSafe:
		return 0
	case RiskLow:
		return 1
	case RiskModerate:
		return 2
	case RiskHigh:
		return 3
	default:
		return -1
	}
}

func ParseRiskLevel(s string) (RiskLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "safe":
		return RiskSafe, true
	case "low", "low risk":
		return RiskLow, true
	case "moderate", "moderate risk":
		return RiskModerate, true
	case "high", "high risk":
		return RiskHigh, true
	default:
		return "", false
	}
}

// ToolScore explains one successful tool's contribution to the risk score.
type ToolScore struct {
	Kind             ToolKind `json:"kind"`
	RawScore         float64  `json:"raw_score"`
	ConfiguredWeight float64  `json:"configured_weight"`
	EffectiveWeight  float64  `json:"effective_weight"`
	Contribution     float64  `json:"contribution"`
}

type AnalysisReport struct {
	ContractName              string                  `json:"contract_name"`
	AnalysisID                string                  `json:"analysis_id"`
	Timestamp                 time.Time               `json:"timestamp"`
	ToolResults               map[ToolKind]ToolResult `json:"tool_results"`
	RiskScore                 float64                 `json:"risk_score"`
	RiskLevel                 RiskLevel               `json:"risk_level"`
	Inconclusive              bool                    `json:"inconclusive"`
	ScoreBreakdown            []ToolScore             `json:"score_breakdown"`
	Summary                   string                  `json:"summary"`
	Recommendations           []string                `json:"recommendations"`
	TotalExecutionTimeSeconds float64                 `json:"total_execution_time_seconds"`
}
