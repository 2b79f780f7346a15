package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/report"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/scoring"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/util"
)

const snippetLines = 6

type viewer struct {
	report   *model.AnalysisReport
	source   string
	findings []report.Located
	cursor   int
	detail   bool
}

func newViewer(r *model.AnalysisReport, source string) viewer {
	return viewer{report: r, source: source, findings: report.Findings(r)}
}

func (m viewer) Init() tea.Cmd { return nil }

func (m viewer) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		if m.detail && key.String() == "esc" {
			m.detail = false
			return m, nil
		}
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.findings)-1 {
			m.cursor++
		}
	case "enter", " ":
		if len(m.findings) > 0 {
			m.detail = !m.detail
		}
	}
	return m, nil
}

func (m viewer) View() string {
	r := m.report
	var b strings.Builder
	if r.Inconclusive {
		fmt.Fprintf(&b, "%s  %s\n", r.ContractName, r.RiskLevel)
	} else {
		fmt.Fprintf(&b, "%s  %s (%.2f)\n", r.ContractName, r.RiskLevel, r.RiskScore)
	}
	fmt.Fprintf(&b, "%s\n\n", r.Summary)

	for _, k := range model.AllTools {
		res, ok := r.ToolResults[k]
		if !ok {
			continue
		}
		if res.Success {
			fmt.Fprintf(&b, "  ok   %-14s %s\n", res.ToolName, res.Summary)
		} else {
			fmt.Fprintf(&b, "  FAIL %-14s %s\n", res.ToolName, res.ErrorMessage)
		}
	}

	fmt.Fprintf(&b, "\nFindings (%d)\n", len(m.findings))
	for i, f := range m.findings {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		line := "-"
		if f.Line() > 0 {
			line = fmt.Sprint(f.Line())
		}
		fmt.Fprintf(&b, "%s[%-6s] %-18s line %-4s %s\n", cursor, f.Severity, f.Type, line, f.Tool)
	}

	if m.detail && m.cursor < len(m.findings) {
		f := m.findings[m.cursor]
		fmt.Fprintf(&b, "\n%s\n", f.Description)
		if f.Confidence != nil {
			fmt.Fprintf(&b, "confidence %.2f\n", *f.Confidence)
		}
		fmt.Fprintf(&b, "fix: %s\n", scoring.Remedy(f.Type))
		if f.Line() > 0 && m.source != "" {
			if snip := util.ExtractSnippet(m.source, f.Line(), f.Line(), snippetLines); snip != "" {
				fmt.Fprintf(&b, "\n%s\n", snip)
			}
		}
	}

	b.WriteString("\nup/down move  enter details  q quit\n")
	return b.String()
}

// Run opens the interactive report viewer. source is used for code snippets
// and may be empty.
func Run(r *model.AnalysisReport, source string) error {
	_, err := tea.NewProgram(newViewer(r, source)).Run()
	return err
}
