package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// MythrilSWCTypes maps SWC registry ids (without the "SWC-" prefix) onto the
// shared vocabulary. Unlisted ids are kept as "SWC-<id>".
var MythrilSWCTypes = map[string]string{
	"101": model.VulnIntegerOverflow,
	"102": model.VulnCompilerVersion,
	"103": model.VulnCompilerVersion,
	"104": model.VulnUncheckedCall,
	"105": model.VulnAccessControl,
	"106": model.VulnAccessControl,
	"107": model.VulnReentrancy,
	"112": model.VulnAccessControl,
	"113": model.VulnDenialOfService,
	"114": model.VulnFrontRunning,
	"115": model.VulnAccessControl,
	"128": model.VulnDenialOfService,
}

// MythrilSeverities maps mythril's severity column; unknown values become medium.
var MythrilSeverities = map[string]model.Severity{
	"High":   model.SeverityHigh,
	"Medium": model.SeverityMedium,
	"Low":    model.SeverityLow,
}

type mythIssue struct {
	SwcID       string `json:"swc-id"`
	Title       string `json:"title"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Function    string `json:"function"`
	LineNo      int    `json:"lineno"`
}

type mythOut struct {
	Success *bool       `json:"success"`
	Error   *string     `json:"error"`
	Issues  []mythIssue `json:"issues"`
}

// NormalizeMythril translates a `myth analyze -o json` report. Mythril does
// not score its own confidence, so findings carry none.
func NormalizeMythril(raw []byte) ([]model.Finding, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrNotJSON
	}
	var o mythOut
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if o.Success != nil && !*o.Success {
		msg := "unknown error"
		if o.Error != nil && strings.TrimSpace(*o.Error) != "" {
			msg = strings.TrimSpace(*o.Error)
		}
		return nil, &ReportError{Tool: "mythril", Message: msg}
	}
	out := make([]model.Finding, 0, len(o.Issues))
	for _, i := range o.Issues {
		sev, ok := MythrilSeverities[i.Severity]
		if !ok {
			sev = model.SeverityMedium
		}
		out = append(out, model.Finding{
			Type:        mythrilType(i.SwcID),
			Severity:    sev,
			Description: mythrilDescription(i),
			LineNumber:  model.Line(i.LineNo),
		})
	}
	return out, nil
}

func mythrilType(swc string) string {
	id := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(swc)), "SWC-")
	if id == "" {
		return "unknown"
	}
	if t, ok := MythrilSWCTypes[id]; ok {
		return t
	}
	return "SWC-" + id
}

func mythrilDescription(i mythIssue) string {
	desc := strings.TrimSpace(i.Description)
	title := strings.TrimSpace(i.Title)
	switch {
	case desc != "" && title != "" && !strings.HasPrefix(desc, title):
		desc = title + ": " + desc
	case desc == "":
		desc = title
	}
	if desc == "" {
		desc = "No description available"
	}
	if i.Function != "" {
		desc += " (in " + i.Function + ")"
	}
	return desc
}
