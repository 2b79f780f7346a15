package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

func newScorer(t *testing.T) *Scorer {
	t.Helper()
	s, err := New(config.DefaultScoring())
	require.NoError(t, err)
	return s
}

func ok(kind model.ToolKind, findings ...model.Finding) model.ToolResult {
	if findings == nil {
		findings = []model.Finding{}
	}
	return model.ToolResult{ToolName: string(kind), Kind: kind, Success: true, Findings: findings}
}

func failed(kind model.ToolKind, fk model.FailureKind) model.ToolResult {
	return model.ToolResult{ToolName: string(kind), Kind: kind, FailureKind: fk, ErrorMessage: fk.Phrase(), Findings: []model.Finding{}}
}

func high() model.Finding {
	return model.Finding{Type: model.VulnReentrancy, Severity: model.SeverityHigh, Description: "re-entrant withdraw"}
}

func TestNewRejectsInvalidScoring(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.Weights = config.Weights{}
	_, err := New(cfg)
	require.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestToolScore(t *testing.T) {
	s := newScorer(t)
	assert.Equal(t, 0.0, s.ToolScore(nil))
	assert.Equal(t, 1.0, s.ToolScore([]model.Finding{high()}))
	assert.InDelta(t, 0.35, s.ToolScore([]model.Finding{
		{Severity: model.SeverityMedium, Confidence: model.Confidence(0.3)}, // 0.15
		{Severity: model.SeverityLow},                                       // 0.2
	}), 1e-9)
	// saturates
	assert.Equal(t, 1.0, s.ToolScore([]model.Finding{high(), high(), high()}))
}

func TestLevelBands(t *testing.T) {
	s := newScorer(t)
	for score, want := range map[float64]model.RiskLevel{
		0:    model.RiskSafe,
		0.19: model.RiskSafe,
		0.2:  model.RiskLow,
		0.49: model.RiskLow,
		0.5:  model.RiskModerate,
		0.79: model.RiskModerate,
		0.8:  model.RiskHigh,
		1:    model.RiskHigh,
	} {
		assert.Equal(t, want, s.Level(score), "score %v", score)
	}
}

func TestZeroFindingsIsSafe(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   ok(model.ToolStatic),
		model.ToolSymbolic: ok(model.ToolSymbolic),
		model.ToolML:       ok(model.ToolML),
	})
	assert.False(t, v.Inconclusive)
	assert.Equal(t, 0.0, v.Score)
	assert.Equal(t, model.RiskSafe, v.Level)
	assert.Equal(t, "No issues found across 3 of 3 tools.", v.Summary)
	require.Len(t, v.Breakdown, 3)
	for _, b := range v.Breakdown {
		assert.Equal(t, 0.0, b.RawScore)
	}
	assert.Equal(t, "Contract appears secure", v.Recommendations[0])
}

func TestSingleHighFindingWithOthersFailing(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   ok(model.ToolStatic, high()),
		model.ToolSymbolic: failed(model.ToolSymbolic, model.FailureTimeout),
		model.ToolML:       failed(model.ToolML, model.FailureUnreachable),
	})
	assert.Equal(t, 1.0, v.Score)
	assert.Equal(t, model.RiskHigh, v.Level)
	require.Len(t, v.Breakdown, 1)
	assert.Equal(t, 1.0, v.Breakdown[0].EffectiveWeight)
	assert.Equal(t, 0.4, v.Breakdown[0].ConfiguredWeight)
	assert.Equal(t, "Found 1 high severity issue(s) across 1 of 3 tools; 2 tools failed "+
		"(symbolic execution timed out, ML classifier service unreachable).", v.Summary)
}

func TestMLOnlyEffectiveWeight(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   failed(model.ToolStatic, model.FailureNotInstalled),
		model.ToolSymbolic: failed(model.ToolSymbolic, model.FailureNotInstalled),
		model.ToolML: ok(model.ToolML, model.Finding{
			Type: model.VulnMLVulnerable, Severity: model.SeverityMedium, Confidence: model.Confidence(0.8),
		}),
	})
	require.Len(t, v.Breakdown, 1)
	assert.Equal(t, model.ToolML, v.Breakdown[0].Kind)
	assert.Equal(t, 1.0, v.Breakdown[0].EffectiveWeight)
	assert.InDelta(t, 0.4, v.Score, 1e-9)
	assert.Equal(t, model.RiskLow, v.Level)
}

func TestRenormalisationAcrossTwoTools(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   ok(model.ToolStatic, high()),
		model.ToolSymbolic: failed(model.ToolSymbolic, model.FailureTimeout),
		model.ToolML:       ok(model.ToolML),
	})
	// 0.4/0.6 * 1.0 + 0.2/0.6 * 0
	assert.InDelta(t, 2.0/3.0, v.Score, 1e-9)
	assert.Equal(t, model.RiskModerate, v.Level)
	assert.Equal(t, "Found 1 high severity issue(s) across 2 of 3 tools; 1 tool failed (symbolic execution timed out).", v.Summary)
}

func TestAllFailIsInconclusiveNotSafe(t *testing.T) {
	s := newScorer(t)
	v := s.Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   failed(model.ToolStatic, model.FailureNotInstalled),
		model.ToolSymbolic: failed(model.ToolSymbolic, model.FailureTimeout),
		model.ToolML:       failed(model.ToolML, model.FailureUnreachable),
	})
	assert.True(t, v.Inconclusive)
	assert.Equal(t, 0.0, v.Score)
	assert.Equal(t, model.RiskInconclusive, v.Level)
	assert.Empty(t, v.Breakdown)
	assert.Contains(t, v.Summary, "3 tools failed (static analysis not installed, symbolic execution timed out, ML classifier service unreachable)")

	safe := s.Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   ok(model.ToolStatic),
		model.ToolSymbolic: ok(model.ToolSymbolic),
		model.ToolML:       ok(model.ToolML),
	})
	assert.NotEqual(t, v.Level, safe.Level)
	assert.NotEqual(t, v.Summary, safe.Summary)
	assert.NotEqual(t, v.Inconclusive, safe.Inconclusive)
}

func TestZeroWeightSuccessIsInconclusive(t *testing.T) {
	cfg := config.DefaultScoring()
	cfg.Weights.ML = 0
	s, err := New(cfg)
	require.NoError(t, err)

	v := s.Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic: failed(model.ToolStatic, model.FailureTimeout),
		model.ToolML:     ok(model.ToolML, high()),
	})
	assert.True(t, v.Inconclusive)
	assert.Equal(t, 0.0, v.Score)
	assert.Contains(t, v.Summary, "carry no scoring weight")
}

func TestScoreIsDeterministic(t *testing.T) {
	s := newScorer(t)
	results := map[model.ToolKind]model.ToolResult{
		model.ToolStatic:   ok(model.ToolStatic, high(), model.Finding{Type: "naming-convention", Severity: model.SeverityLow}),
		model.ToolSymbolic: ok(model.ToolSymbolic, model.Finding{Type: model.VulnAccessControl, Severity: model.SeverityMedium}),
		model.ToolML:       failed(model.ToolML, model.FailureTimeout),
	}
	first := s.Score(results)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, s.Score(results))
	}
}

func TestAddingHighFindingNeverLowersScore(t *testing.T) {
	s := newScorer(t)
	findings := []model.Finding{{Type: model.VulnUncheckedCall, Severity: model.SeverityLow, Confidence: model.Confidence(0.5)}}
	prevTool := s.ToolScore(findings)
	prev := s.Score(map[model.ToolKind]model.ToolResult{model.ToolSymbolic: ok(model.ToolSymbolic, findings...), model.ToolML: ok(model.ToolML)}).Score
	for i := 0; i < 4; i++ {
		findings = append(findings, model.Finding{Type: model.VulnReentrancy, Severity: model.SeverityHigh, Confidence: model.Confidence(0.3)})
		tool := s.ToolScore(findings)
		score := s.Score(map[model.ToolKind]model.ToolResult{model.ToolSymbolic: ok(model.ToolSymbolic, findings...), model.ToolML: ok(model.ToolML)}).Score
		assert.GreaterOrEqual(t, tool, prevTool)
		assert.GreaterOrEqual(t, score, prev)
		prevTool, prev = tool, score
	}
}

func TestRecommendations(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolStatic: ok(model.ToolStatic,
			model.Finding{Type: "SWC-110", Severity: model.SeverityLow},
			high(),
			model.Finding{Type: model.VulnReentrancy, Severity: model.SeverityLow},
		),
		model.ToolSymbolic: failed(model.ToolSymbolic, model.FailureTimeout),
	})
	assert.Equal(t, model.RiskHigh, v.Level)
	assert.Equal(t, []string{
		"Immediate security review required",
		"Consider professional security audit",
		"Do not deploy to mainnet without fixes",
		"[high] reentrancy: " + Remediations[model.VulnReentrancy],
		"[low] SWC-110: manual review recommended",
		"Address high-severity static analysis findings immediately",
		"Score covers 1 of 2 requested tools; re-run once symbolic execution is available",
	}, v.Recommendations)
}

func TestInconclusiveRecommendations(t *testing.T) {
	v := newScorer(t).Score(map[model.ToolKind]model.ToolResult{
		model.ToolML: failed(model.ToolML, model.FailureNotConfigured),
	})
	assert.Equal(t, levelAdvice[model.RiskInconclusive], v.Recommendations)
}

func TestRemedy(t *testing.T) {
	assert.Equal(t, GenericRemediation, Remedy("brand-new-detector"))
	assert.NotEqual(t, GenericRemediation, Remedy(model.VulnFrontRunning))
}

func TestJoinAnd(t *testing.T) {
	assert.Equal(t, "a", joinAnd([]string{"a"}))
	assert.Equal(t, "a and b", joinAnd([]string{"a", "b"}))
	assert.Equal(t, "a, b and c", joinAnd([]string{"a", "b", "c"}))
}
