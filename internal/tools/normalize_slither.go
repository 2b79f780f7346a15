package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// ErrNotJSON means the tool printed something that is not its JSON report.
var ErrNotJSON = errors.New("output is not a JSON report")

// ReportError is a failure the tool declared inside its own report.
type ReportError struct {
	Tool    string
	Message string
}

func (e *ReportError) Error() string {
	return fmt.Sprintf("%s reported failure: %s", e.Tool, e.Message)
}

// SlitherCheckTypes maps slither detector names onto the shared vocabulary.
// Checks not listed keep their slither name.
var SlitherCheckTypes = map[string]string{
	"reentrancy-eth":           model.VulnReentrancy,
	"reentrancy-no-eth":        model.VulnReentrancy,
	"reentrancy-benign":        model.VulnReentrancy,
	"reentrancy-events":        model.VulnReentrancy,
	"reentrancy-unlimited-gas": model.VulnReentrancy,
	"unchecked-transfer":       model.VulnUncheckedCall,
	"unchecked-send":           model.VulnUncheckedCall,
	"unchecked-lowlevel":       model.VulnUncheckedCall,
	"low-level-calls":          model.VulnUncheckedCall,
	"tx-origin":                model.VulnAccessControl,
	"suicidal":                 model.VulnAccessControl,
	"arbitrary-send-eth":       model.VulnAccessControl,
	"arbitrary-send-erc20":     model.VulnAccessControl,
	"controlled-delegatecall":  model.VulnAccessControl,
	"unprotected-upgrade":      model.VulnAccessControl,
	"controlled-array-length":  model.VulnIntegerOverflow,
	"calls-loop":               model.VulnDenialOfService,
	"msg-value-loop":           model.VulnDenialOfService,
	"costly-loop":              model.VulnDenialOfService,
	"solc-version":             model.VulnCompilerVersion,
	"pragma":                   model.VulnCompilerVersion,
}

// SlitherImpacts maps slither's impact column; unknown impacts become medium.
var SlitherImpacts = map[string]model.Severity{
	"High":          model.SeverityHigh,
	"Medium":        model.SeverityMedium,
	"Low":           model.SeverityLow,
	"Informational": model.SeverityLow,
	"Optimization":  model.SeverityLow,
}

// SlitherConfidences maps slither's confidence column; unknown values leave confidence absent.
var SlitherConfidences = map[string]float64{
	"High":   0.85,
	"Medium": 0.7,
	"Low":    0.6,
}

// SlitherTextRules recognise findings in slither's human-readable stderr,
// used when no JSON report was produced. A line matches when it contains every needle.
var SlitherTextRules = []struct {
	Needles    []string
	Type       string
	Severity   model.Severity
	Confidence float64
}{
	{[]string{"Reentrancy in"}, model.VulnReentrancy, model.SeverityHigh, 0.9},
	{[]string{"Low level call in"}, model.VulnUncheckedCall, model.SeverityMedium, 0.8},
	{[]string{"Version constraint", "contains known severe issues"}, model.VulnCompilerVersion, model.SeverityMedium, 0.7},
}

type slitherSourceMapping struct {
	Filename string `json:"filename_relative"`
	Lines    []int  `json:"lines"`
}

type slitherDetection struct {
	Check       string `json:"check"`
	Impact      string `json:"impact"`
	Confidence  string `json:"confidence"`
	Description string `json:"description"`
	Elements    []struct {
		SourceMapping slitherSourceMapping `json:"source_mapping"`
	} `json:"elements"`
}

type slitherOut struct {
	Success *bool   `json:"success"`
	Error   *string `json:"error"`
	Results struct {
		Detectors []slitherDetection `json:"detectors"`
	} `json:"results"`
}

// NormalizeSlither translates a `slither --json -` report.
func NormalizeSlither(raw []byte) ([]model.Finding, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '{' {
		return nil, ErrNotJSON
	}
	var o slitherOut
	if err := json.Unmarshal(raw, &o); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotJSON, err)
	}
	if o.Success != nil && !*o.Success {
		msg := "unknown error"
		if o.Error != nil && strings.TrimSpace(*o.Error) != "" {
			msg = strings.TrimSpace(*o.Error)
		}
		return nil, &ReportError{Tool: "slither", Message: msg}
	}
	out := make([]model.Finding, 0, len(o.Results.Detectors))
	for _, d := range o.Results.Detectors {
		out = append(out, slitherFinding(d))
	}
	return out, nil
}

func slitherFinding(d slitherDetection) model.Finding {
	typ, ok := SlitherCheckTypes[strings.ToLower(d.Check)]
	if !ok {
		typ = d.Check
	}
	if typ == "" {
		typ = "unknown"
	}
	sev, ok := SlitherImpacts[d.Impact]
	if !ok {
		sev = model.SeverityMedium
	}
	f := model.Finding{
		Type:        typ,
		Severity:    sev,
		Description: strings.TrimSpace(d.Description),
	}
	if c, ok := SlitherConfidences[d.Confidence]; ok {
		f.Confidence = model.Confidence(c)
	}
	if f.Description == "" {
		f.Description = "slither detector " + d.Check
	}
	for _, e := range d.Elements {
		if len(e.SourceMapping.Lines) > 0 {
			f.LineNumber = model.Line(e.SourceMapping.Lines[0])
			break
		}
	}
	return f
}

// NormalizeSlitherText scans slither's plain-text output with SlitherTextRules.
func NormalizeSlitherText(raw []byte) []model.Finding {
	var out []model.Finding
	for _, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, r := range SlitherTextRules {
			if containsAll(line, r.Needles) {
				out = append(out, model.Finding{
					Type:        r.Type,
					Severity:    r.Severity,
					Confidence:  model.Confidence(r.Confidence),
					Description: line,
				})
				break
			}
		}
	}
	return out
}

func containsAll(s string, needles []string) bool {
	for _, n := range needles {
		if !strings.Contains(s, n) {
			return false
		}
	}
	return true
}
