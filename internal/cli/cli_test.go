package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/analyzer"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/engine"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

const contract = `pragma solidity ^0.8.0;
contract Vault {
    function withdraw() public {
        (bool ok, ) = msg.sender.call{value: 1 ether}("");
        require(ok);
    }
}
`

type fakeAnalyzer struct {
	kind     model.ToolKind
	findings []model.Finding
	fail     model.FailureKind
}

func (f fakeAnalyzer) Name() string         { return "fake-" + string(f.kind) }
func (f fakeAnalyzer) Kind() model.ToolKind { return f.kind }
func (f fakeAnalyzer) Run(context.Context, string, string) model.ToolResult {
	if f.fail != "" {
		return analyzer.Failed(f.kind, f.Name(), f.fail, "", time.Millisecond)
	}
	return analyzer.Succeeded(f.kind, f.Name(), f.findings, time.Millisecond)
}
func (f fakeAnalyzer) Status(context.Context) analyzer.Status {
	if f.fail != "" {
		return analyzer.Status{Tool: f.Name(), Error: f.fail.Phrase()}
	}
	return analyzer.Status{Tool: f.Name(), Available: true, Detail: "1.0.0"}
}

func reentrancy() model.Finding {
	return model.Finding{Type: model.VulnReentrancy, Severity: model.SeverityHigh, Description: "Reentrancy in Vault.withdraw()", LineNumber: model.Line(4)}
}

// testRoot wires the commands onto a bare root with a default config file.
func testRoot(t *testing.T, analyzers ...analyzer.Analyzer) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), config.FileName)
	b, err := config.Marshal(config.Default())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(cfgPath, b, 0o644))

	g := &Global{ConfigPath: cfgPath}
	for _, a := range analyzers {
		g.EngineOptions = append(g.EngineOptions, engine.WithAnalyzer(a))
	}
	root := &cobra.Command{Use: "cipherlens", SilenceUsage: true, SilenceErrors: true}
	AddCommands(root, g)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	return root, &out
}

func allFakes(static ...model.Finding) []analyzer.Analyzer {
	return []analyzer.Analyzer{
		fakeAnalyzer{kind: model.ToolStatic, findings: static},
		fakeAnalyzer{kind: model.ToolSymbolic},
		fakeAnalyzer{kind: model.ToolML},
	}
}

func writeContract(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "Vault.sol")
	require.NoError(t, os.WriteFile(p, []byte(contract), 0o644))
	return p
}

func TestAnalyzeJSON(t *testing.T) {
	root, out := testRoot(t, allFakes(reentrancy())...)
	root.SetArgs([]string{"analyze", writeContract(t), "--format", "json"})
	require.NoError(t, root.Execute())

	var rep model.AnalysisReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "Vault", rep.ContractName)
	assert.Len(t, rep.ToolResults, 3)
	// 0.4 / 1.0 * 1.0
	assert.InDelta(t, 0.4, rep.RiskScore, 1e-9)
	assert.Equal(t, model.RiskLow, rep.RiskLevel)
}

func TestAnalyzeFromStdinWithSkippedTools(t *testing.T) {
	root, out := testRoot(t, allFakes()...)
	root.SetIn(strings.NewReader(contract))
	root.SetArgs([]string{"analyze", "--no-static", "--no-symbolic", "-f", "json", "--name", "FromStdin"})
	require.NoError(t, root.Execute())

	var rep model.AnalysisReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &rep))
	assert.Equal(t, "FromStdin", rep.ContractName)
	assert.Len(t, rep.ToolResults, 1)
	assert.Contains(t, rep.ToolResults, model.ToolML)
	assert.Equal(t, model.RiskSafe, rep.RiskLevel)
}

func TestAnalyzeRejectsZeroTools(t *testing.T) {
	root, _ := testRoot(t, allFakes()...)
	root.SetArgs([]string{"analyze", writeContract(t), "--no-static", "--no-symbolic", "--no-ml"})
	err := root.Execute()
	require.ErrorIs(t, err, engine.ErrNoToolsRequested)
	assert.Equal(t, ExitFailure, ExitCode(err))
}

func TestAnalyzeRejectsNonSolidity(t *testing.T) {
	root, _ := testRoot(t, allFakes()...)
	root.SetIn(strings.NewReader("just some plain words here"))
	root.SetArgs([]string{"analyze"})
	require.ErrorIs(t, root.Execute(), engine.ErrInvalidInput)
}

func TestAnalyzeFailOn(t *testing.T) {
	root, _ := testRoot(t, allFakes(reentrancy())...)
	root.SetArgs([]string{"analyze", writeContract(t), "--fail-on", "low"})
	err := root.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitThreshold, ExitCode(err))

	root, _ = testRoot(t, allFakes(reentrancy())...)
	root.SetArgs([]string{"analyze", writeContract(t), "--fail-on", "high"})
	assert.NoError(t, root.Execute())
}

func TestAnalyzeFailOnInconclusive(t *testing.T) {
	root, out := testRoot(t,
		fakeAnalyzer{kind: model.ToolStatic, fail: model.FailureNotInstalled},
		fakeAnalyzer{kind: model.ToolSymbolic, fail: model.FailureTimeout},
		fakeAnalyzer{kind: model.ToolML, fail: model.FailureUnreachable},
	)
	root.SetArgs([]string{"analyze", writeContract(t), "--fail-on", "high"})
	err := root.Execute()
	assert.Equal(t, ExitThreshold, ExitCode(err))
	assert.Contains(t, out.String(), "Risk:       Inconclusive")
	assert.Contains(t, out.String(), "3 tools failed")
}

func TestAnalyzeBadFlags(t *testing.T) {
	root, _ := testRoot(t, allFakes()...)
	root.SetArgs([]string{"analyze", writeContract(t), "--format", "xml"})
	assert.ErrorContains(t, root.Execute(), "unknown format")

	root, _ = testRoot(t, allFakes()...)
	root.SetArgs([]string{"analyze", writeContract(t), "--fail-on", "critical"})
	assert.ErrorContains(t, root.Execute(), "unknown --fail-on level")
}

func TestAnalyzeWritesOutAndMetrics(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "report.sarif")
	prom := filepath.Join(dir, "cipherlens.prom")

	root, stdout := testRoot(t, allFakes(reentrancy())...)
	root.SetArgs([]string{"analyze", writeContract(t), "-f", "sarif", "-o", out, "--metrics-file", prom})
	require.NoError(t, root.Execute())
	assert.Empty(t, stdout.String())

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"version": "2.1.0"`)

	m, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(m), "cipherlens_verdicts_total")
	assert.Contains(t, string(m), "cipherlens_adapter_runs_total")
}

func TestAnalyzeBaseline(t *testing.T) {
	base := filepath.Join(t.TempDir(), "baseline.json")
	src := writeContract(t)

	root, _ := testRoot(t, allFakes(reentrancy())...)
	root.SetArgs([]string{"analyze", src, "--write-baseline", base})
	require.NoError(t, root.Execute())

	more := model.Finding{Type: model.VulnAccessControl, Severity: model.SeverityMedium, Description: "tx.origin used for auth"}
	root, out := testRoot(t, allFakes(reentrancy(), more)...)
	root.SetArgs([]string{"analyze", src, "--baseline", base})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "Baseline: 1 new, 1 known")
}

func TestStatus(t *testing.T) {
	root, out := testRoot(t,
		fakeAnalyzer{kind: model.ToolStatic},
		fakeAnalyzer{kind: model.ToolSymbolic, fail: model.FailureNotInstalled},
		fakeAnalyzer{kind: model.ToolML},
	)
	root.SetArgs([]string{"status", "--json"})
	require.NoError(t, root.Execute())

	var sts []analyzer.Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &sts))
	require.Len(t, sts, 3)
	assert.True(t, sts[0].Available)
	assert.False(t, sts[1].Available)
	assert.Equal(t, "not installed", sts[1].Error)
	assert.Equal(t, model.ToolML, sts[2].Kind)
}

func TestInit(t *testing.T) {
	dir := t.TempDir()
	root, out := testRoot(t)
	root.SetArgs([]string{"init", "--dir", dir})
	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), config.FileName)

	cfg, path, err := config.Load("", dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, config.FileName), path)
	assert.Equal(t, config.Default(), cfg)

	root, _ = testRoot(t)
	root.SetArgs([]string{"init", "--dir", dir})
	assert.ErrorContains(t, root.Execute(), "already exists")

	root, _ = testRoot(t)
	root.SetArgs([]string{"init", "--dir", dir, "--force"})
	assert.NoError(t, root.Execute())
}

func TestMappings(t *testing.T) {
	root, out := testRoot(t)
	root.SetArgs([]string{"mappings"})
	require.NoError(t, root.Execute())
	s := out.String()
	assert.Contains(t, s, "# mythril swc -> type")
	assert.Contains(t, s, "reentrancy-eth")
	assert.Contains(t, s, "# finding type -> remediation")
	assert.Contains(t, s, "manual review recommended")
}

func TestContractNameFromPath(t *testing.T) {
	assert.Equal(t, "Vault", contractNameFromPath("/tmp/x/Vault.sol"))
	assert.Equal(t, "", contractNameFromPath("-"))
}
