package scoring

import (
	"fmt"
	"strings"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

var severityOrder = []model.Severity{model.SeverityHigh, model.SeverityMedium, model.SeverityLow}

func summarize(kinds []model.ToolKind, results map[model.ToolKind]model.ToolResult, v Verdict) string {
	counts := map[model.Severity]int{}
	total, succeeded := 0, 0
	var failures []string
	for _, k := range kinds {
		res := results[k]
		if !res.Success {
			failures = append(failures, failureReason(k, res))
			continue
		}
		succeeded++
		for _, f := range res.Findings {
			counts[f.Severity]++
			total++
		}
	}

	var b strings.Builder
	if v.Inconclusive {
		if succeeded == 0 {
			b.WriteString("Analysis inconclusive: no requested tool completed successfully")
		} else {
			b.WriteString("Analysis inconclusive: the tools that completed carry no scoring weight")
		}
		if len(failures) > 0 {
			fmt.Fprintf(&b, "; %s", failedClause(failures))
		}
		b.WriteString(". The risk score is not meaningful and must not be read as Safe.")
		return b.String()
	}

	if total == 0 {
		b.WriteString("No issues found")
	} else {
		var parts []string
		for _, sev := range severityOrder {
			if n := counts[sev]; n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", n, sev))
			}
		}
		fmt.Fprintf(&b, "Found %s severity issue(s)", strings.Join(parts, ", "))
	}
	fmt.Fprintf(&b, " across %d of %d tools", succeeded, len(kinds))
	if len(failures) > 0 {
		fmt.Fprintf(&b, "; %s", failedClause(failures))
	}
	b.WriteString(".")
	return b.String()
}

func failedClause(failures []string) string {
	noun := "tools"
	if len(failures) == 1 {
		noun = "tool"
	}
	return fmt.Sprintf("%d %s failed (%s)", len(failures), noun, strings.Join(failures, ", "))
}

func failureReason(k model.ToolKind, res model.ToolResult) string {
	return k.Label() + " " + res.FailureKind.Phrase()
}
