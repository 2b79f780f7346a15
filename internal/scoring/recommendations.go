package scoring

import (
	"fmt"
	"sort"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// GenericRemediation is given for finding types missing from Remediations.
const GenericRemediation = "manual review recommended"

// Remediations maps a finding type onto its fix.
var Remediations = map[string]string{
	model.VulnReentrancy:      "Apply checks-effects-interactions: update state before external calls, or guard the function with a reentrancy lock",
	model.VulnIntegerOverflow: "Use Solidity >=0.8 checked arithmetic or a SafeMath library, and bound user-controlled lengths",
	model.VulnUncheckedCall:   "Check the return value of low-level calls, send and ERC20 transfers, or use SafeERC20",
	model.VulnAccessControl:   "Restrict privileged functions with explicit owner or role checks against msg.sender, never tx.origin",
	model.VulnFrontRunning:    "Avoid order-dependent logic: use commit-reveal, slippage bounds or deadlines",
	model.VulnDenialOfService: "Avoid external calls and unbounded iteration inside loops; prefer pull-payment patterns",
	model.VulnCompilerVersion: "Pin a recent, audited compiler version instead of a floating pragma",
	model.VulnMLVulnerable:    "The classifier flagged this contract without a specific pattern; have it reviewed manually",
}

var levelAdvice = map[model.RiskLevel][]string{
	model.RiskHigh: {
		"Immediate security review required",
		"Consider professional security audit",
		"Do not deploy to mainnet without fixes",
	},
	model.RiskModerate: {
		"Address identified vulnerabilities before deployment",
		"Consider additional testing",
		"Review access control mechanisms",
	},
	model.RiskLow: {
		"Review and fix minor issues",
		"Consider best practices improvements",
		"Monitor for future vulnerabilities",
	},
	model.RiskSafe: {
		"Contract appears secure",
		"Continue following security best practices",
		"Regular security reviews recommended",
	},
	model.RiskInconclusive: {
		"No verdict could be reached; fix the failing tools and re-run the analysis",
		"Do not treat this contract as reviewed",
	},
}

// Remedy returns the remediation for a finding type.
func Remedy(findingType string) string {
	if r, ok := Remediations[findingType]; ok {
		return r
	}
	return GenericRemediation
}

// recommend lists level advice, one remediation per finding type (most severe
// first), then per-tool advice.
func recommend(kinds []model.ToolKind, results map[model.ToolKind]model.ToolResult, v Verdict) []string {
	out := append([]string{}, levelAdvice[v.Level]...)

	worst := map[string]model.Severity{}
	for _, k := range kinds {
		res := results[k]
		if !res.Success {
			continue
		}
		for _, f := range res.Findings {
			if f.Severity.Rank() > worst[f.Type].Rank() {
				worst[f.Type] = f.Severity
			}
		}
	}
	types := make([]string, 0, len(worst))
	for t := range worst {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool {
		ri, rj := worst[types[i]].Rank(), worst[types[j]].Rank()
		if ri != rj {
			return ri > rj
		}
		return types[i] < types[j]
	})
	for _, t := range types {
		out = append(out, fmt.Sprintf("[%s] %s: %s", worst[t], t, Remedy(t)))
	}

	var failed []string
	for _, k := range kinds {
		res := results[k]
		if !res.Success {
			failed = append(failed, k.Label())
			continue
		}
		if hasHigh(res.Findings) {
			out = append(out, fmt.Sprintf("Address high-severity %s findings immediately", k.Label()))
		}
	}
	if len(failed) > 0 && !v.Inconclusive {
		out = append(out, fmt.Sprintf("Score covers %d of %d requested tools; re-run once %s is available",
			len(kinds)-len(failed), len(kinds), joinAnd(failed)))
	}
	return out
}

func hasHigh(fs []model.Finding) bool {
	for _, f := range fs {
		if f.Severity == model.SeverityHigh {
			return true
		}
	}
	return false
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	}
	s := items[0]
	for _, it := range items[1 : len(items)-1] {
		s += ", " + it
	}
	return s + " and " + items[len(items)-1]
}
