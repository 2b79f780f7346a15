package analyzer

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// Analyzer wraps one external detector. Run never returns an error: every
// failure is folded into a ToolResult with Success=false. The deadline of ctx
// is the tool's timeout.
type Analyzer interface {
	Name() string
	Kind() model.ToolKind
	Run(ctx context.Context, code, contractName string) model.ToolResult
	Status(ctx context.Context) Status
}

// Status is a capability probe for one tool.
type Status struct {
	Tool      string         `json:"tool"`
	Kind      model.ToolKind `json:"kind"`
	Available bool           `json:"available"`
	Detail    string         `json:"detail,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Succeeded builds a successful result. A nil findings slice is stored as empty.
func Succeeded(kind model.ToolKind, name string, findings []model.Finding, elapsed time.Duration) model.ToolResult {
	if findings == nil {
		findings = []model.Finding{}
	}
	return model.ToolResult{
		ToolName:             name,
		Kind:                 kind,
		Success:              true,
		Findings:             findings,
		ExecutionTimeSeconds: elapsed.Seconds(),
		Summary:              Summarize(findings),
	}
}

// Failed builds a failed result with no findings.
func Failed(kind model.ToolKind, name string, fk model.FailureKind, msg string, elapsed time.Duration) model.ToolResult {
	if strings.TrimSpace(msg) == "" {
		msg = fk.Phrase()
	}
	return model.ToolResult{
		ToolName:             name,
		Kind:                 kind,
		Success:              false,
		Findings:             []model.Finding{},
		ExecutionTimeSeconds: elapsed.Seconds(),
		ErrorMessage:         msg,
		FailureKind:          fk,
		Summary:              "failed: " + fk.Phrase(),
	}
}

// Summarize renders counts like "3 findings (1 high, 2 low)".
func Summarize(findings []model.Finding) string {
	if len(findings) == 0 {
		return "no findings"
	}
	counts := map[model.Severity]int{}
	for _, f := range findings {
		counts[f.Severity]++
	}
	var parts []string
	for _, sev := range []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, sev))
		}
	}
	noun := "findings"
	if len(findings) == 1 {
		noun = "finding"
	}
	return fmt.Sprintf("%d %s (%s)", len(findings), noun, strings.Join(parts, ", "))
}

// timeoutMessage describes an expired deadline in the tool's own terms.
func timeoutMessage(ctx context.Context, name string, start time.Time) string {
	if dl, ok := ctx.Deadline(); ok {
		return fmt.Sprintf("%s timed out after %s", name, dl.Sub(start).Round(time.Millisecond))
	}
	return name + " was cancelled"
}
