package report

import (
	"github.com/google/uuid"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/engine"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/scoring"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/solidity"
)

// NewAnalysisID returns a random id; identical source submitted twice gets two ids.
func NewAnalysisID() string { return "analysis_" + uuid.NewString() }

// Assemble packages the run and its verdict. Failed tools stay in ToolResults
// with their error messages. Total time is the run's wall-clock span.
func Assemble(contractName string, run *engine.Run, v scoring.Verdict) *model.AnalysisReport {
	results := make(map[model.ToolKind]model.ToolResult, len(run.Results))
	for k, r := range run.Results {
		results[k] = r
	}
	breakdown := v.Breakdown
	if breakdown == nil {
		breakdown = []model.ToolScore{}
	}
	recs := v.Recommendations
	if recs == nil {
		recs = []string{}
	}
	return &model.AnalysisReport{
		ContractName:              solidity.SanitizeName(contractName),
		AnalysisID:                NewAnalysisID(),
		Timestamp:                 run.Started.UTC(),
		ToolResults:               results,
		RiskScore:                 v.Score,
		RiskLevel:                 v.Level,
		Inconclusive:              v.Inconclusive,
		ScoreBreakdown:            breakdown,
		Summary:                   v.Summary,
		Recommendations:           recs,
		TotalExecutionTimeSeconds: run.Elapsed.Seconds(),
	}
}

// Findings flattens successful tools' findings in canonical tool order.
func Findings(r *model.AnalysisReport) []Located {
	var out []Located
	for _, k := range model.AllTools {
		res, ok := r.ToolResults[k]
		if !ok || !res.Success {
			continue
		}
		for _, f := range res.Findings {
			out = append(out, Located{Tool: res.ToolName, Kind: k, Finding: f})
		}
	}
	return out
}

// Located is a finding together with the tool that reported it.
type Located struct {
	Tool string
	Kind model.ToolKind
	model.Finding
}

// Line returns the finding's line or 0.
func (l Located) Line() int {
	if l.LineNumber == nil {
		return 0
	}
	return *l.LineNumber
}
