package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// Scorer turns per-tool results into one verdict. It is safe for concurrent use.
type Scorer struct {
	cfg config.Scoring
}

// New validates cfg once; a Scorer never sees weights it cannot use.
func New(cfg config.Scoring) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrInvalidConfig, err)
	}
	return &Scorer{cfg: cfg}, nil
}

type Verdict struct {
	Score           float64
	Level           model.RiskLevel
	Inconclusive    bool
	Breakdown       []model.ToolScore
	Summary         string
	Recommendations []string
}

// ToolScore sums severity weight times confidence over findings, saturating at 1.
func (s *Scorer) ToolScore(findings []model.Finding) float64 {
	score := 0.0
	for _, f := range findings {
		score += s.cfg.SeverityWeights.For(f.Severity) * f.EffectiveConfidence()
		if score >= 1 {
			return 1
		}
	}
	return clamp01(score)
}

// Level bands a score with the configured thresholds.
func (s *Scorer) Level(score float64) model.RiskLevel {
	t := s.cfg.Thresholds
	switch {
	case score >= t.High:
		return model.RiskHigh
	case score >= t.Moderate:
		return model.RiskModerate
	case score >= t.Low:
		return model.RiskLow
	default:
		return model.RiskSafe
	}
}

// Score weighs successful tools only, with weights renormalised over them.
// With no successful tool, or successful tools whose weights sum to zero, the
// verdict is Inconclusive with a score of 0.
func (s *Scorer) Score(results map[model.ToolKind]model.ToolResult) Verdict {
	kinds := orderedKinds(results)

	sumW := 0.0
	for _, k := range kinds {
		if results[k].Success {
			sumW += s.cfg.Weights.For(k)
		}
	}

	v := Verdict{Breakdown: []model.ToolScore{}}
	score := 0.0
	for _, k := range kinds {
		res := results[k]
		if !res.Success {
			continue
		}
		ts := model.ToolScore{
			Kind:             k,
			RawScore:         s.ToolScore(res.Findings),
			ConfiguredWeight: s.cfg.Weights.For(k),
		}
		if sumW > 0 {
			ts.EffectiveWeight = ts.ConfiguredWeight / sumW
			ts.Contribution = ts.EffectiveWeight * ts.RawScore
		}
		score += ts.Contribution
		v.Breakdown = append(v.Breakdown, ts)
	}

	if sumW <= 0 {
		v.Inconclusive = true
		v.Level = model.RiskInconclusive
	} else {
		// rounding keeps scores like 0.7999999999 from falling out of their band
		v.Score = round(clamp01(score))
		v.Level = s.Level(v.Score)
	}
	v.Summary = summarize(kinds, results, v)
	v.Recommendations = recommend(kinds, results, v)
	return v
}

// orderedKinds lists the canonical tools first, then any others by name.
func orderedKinds(results map[model.ToolKind]model.ToolResult) []model.ToolKind {
	var out []model.ToolKind
	known := map[model.ToolKind]bool{}
	for _, k := range model.AllTools {
		known[k] = true
		if _, ok := results[k]; ok {
			out = append(out, k)
		}
	}
	var extra []model.ToolKind
	for k := range results {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(out, extra...)
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func round(v float64) float64 { return math.Round(v*1e9) / 1e9 }
