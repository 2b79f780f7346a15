package report

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/scoring"
)

const sarifSchema = "https://json.schemastore.org/sarif-2.1.0.json"

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations"`
	Results     []sarifResult     `json:"results"`
	Properties  map[string]any    `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID   string       `json:"id"`
	Help sarifMessage `json:"help"`
}

type sarifInvocation struct {
	ExecutionSuccessful bool                `json:"executionSuccessful"`
	Notifications       []sarifNotification `json:"toolExecutionNotifications,omitempty"`
}

type sarifNotification struct {
	Level   string       `json:"level"`
	Message sarifMessage `json:"message"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints"`
	BaselineState       string            `json:"baselineState,omitempty"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	Physical sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt     `json:"artifactLocation"`
	Region           *sarifRegion `json:"region,omitempty"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func sarifLevel(sev model.Severity) string {
	switch sev {
	case model.SeverityHigh:
		return "error"
	case model.SeverityMedium:
		return "warning"
	default:
		return "note"
	}
}

// ToSARIF renders the report as one SARIF 2.1.0 run. Failed tools become
// execution notifications; the verdict goes into run properties. With a
// baseline each result carries a baselineState of "new" or "unchanged".
func ToSARIF(r *model.AnalysisReport, baseline *Baseline) ([]byte, error) {
	uri := r.ContractName + ".sol"
	ruleSeen := map[string]bool{}
	var rules []sarifRule
	results := []sarifResult{}
	for _, f := range Findings(r) {
		if !ruleSeen[f.Type] {
			ruleSeen[f.Type] = true
			rules = append(rules, sarifRule{ID: f.Type, Help: sarifMessage{Text: scoring.Remedy(f.Type)}})
		}
		loc := sarifLoc{Physical: sarifPhys{ArtifactLocation: sarifArt{URI: uri}}}
		if line := f.Line(); line > 0 {
			loc.Physical.Region = &sarifRegion{StartLine: line}
		}
		props := map[string]any{"tool": f.Tool}
		if f.Confidence != nil {
			props["confidence"] = *f.Confidence
		}
		res := sarifResult{
			RuleID:              f.Type,
			Level:               sarifLevel(f.Severity),
			Message:             sarifMessage{Text: fmt.Sprintf("[%s] %s", f.Tool, f.Description)},
			Locations:           []sarifLoc{loc},
			PartialFingerprints: map[string]string{"cipherlens/v1": f.Fingerprint()},
			Properties:          props,
		}
		if baseline != nil {
			res.BaselineState = "new"
			if baseline.Known(f) {
				res.BaselineState = "unchanged"
			}
		}
		results = append(results, res)
	}
	sort.Slice(rules, func(i, j int) bool { return rules[i].ID < rules[j].ID })
	if rules == nil {
		rules = []sarifRule{}
	}

	inv := sarifInvocation{ExecutionSuccessful: !r.Inconclusive}
	for _, k := range model.AllTools {
		res, ok := r.ToolResults[k]
		if !ok || res.Success {
			continue
		}
		inv.Notifications = append(inv.Notifications, sarifNotification{
			Level:   "error",
			Message: sarifMessage{Text: fmt.Sprintf("%s: %s", res.ToolName, res.ErrorMessage)},
		})
	}

	s := sarif{
		Schema:  sarifSchema,
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:        sarifTool{Driver: sarifDriver{Name: "cipherlens", Rules: rules}},
			Invocations: []sarifInvocation{inv},
			Results:     results,
			Properties: map[string]any{
				"analysisId":   r.AnalysisID,
				"riskScore":    r.RiskScore,
				"riskLevel":    r.RiskLevel,
				"inconclusive": r.Inconclusive,
			},
		}},
	}
	return json.MarshalIndent(s, "", "  ")
}
