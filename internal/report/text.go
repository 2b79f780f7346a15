package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

// ToJSON renders the report in its transport shape.
func ToJSON(r *model.AnalysisReport) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// WriteText renders the human-readable table report.
func WriteText(w io.Writer, r *model.AnalysisReport) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Contract:   %s\n", r.ContractName)
	fmt.Fprintf(&b, "Analysis:   %s (%s)\n", r.AnalysisID, r.Timestamp.Format("2006-01-02 15:04:05Z07:00"))
	if r.Inconclusive {
		fmt.Fprintf(&b, "Risk:       %s\n", r.RiskLevel)
	} else {
		fmt.Fprintf(&b, "Risk:       %s (score %.2f)\n", r.RiskLevel, r.RiskScore)
	}
	fmt.Fprintf(&b, "Elapsed:    %.2fs\n\n", r.TotalExecutionTimeSeconds)
	fmt.Fprintf(&b, "%s\n\n", r.Summary)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TOOL\tSTATUS\tTIME\tRESULT")
	for _, k := range model.AllTools {
		res, ok := r.ToolResults[k]
		if !ok {
			continue
		}
		status, detail := "ok", res.Summary
		if !res.Success {
			status, detail = "failed", res.ErrorMessage
		}
		fmt.Fprintf(tw, "%s (%s)\t%s\t%.2fs\t%s\n", res.ToolName, k.Label(), status, res.ExecutionTimeSeconds, detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.ScoreBreakdown) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SCORE\tRAW\tWEIGHT\tEFFECTIVE\tCONTRIBUTION")
		for _, s := range r.ScoreBreakdown {
			fmt.Fprintf(tw, "%s\t%.2f\t%.2f\t%.2f\t%.2f\n", s.Kind, s.RawScore, s.ConfiguredWeight, s.EffectiveWeight, s.Contribution)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if fs := Findings(r); len(fs) > 0 {
		fmt.Fprintln(w)
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SEVERITY\tTYPE\tLINE\tCONF\tTOOL\tDESCRIPTION")
		for _, f := range fs {
			line, conf := "-", "-"
			if f.Line() > 0 {
				line = fmt.Sprint(f.Line())
			}
			if f.Confidence != nil {
				conf = fmt.Sprintf("%.2f", *f.Confidence)
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", f.Severity, f.Type, line, conf, f.Tool, firstLine(f.Description))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
