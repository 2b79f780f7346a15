package analyzer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

const slitherJSON = `{"success": true, "error": null, "results": {"detectors": [
  {"check": "reentrancy-eth", "impact": "High", "confidence": "Medium",
   "description": "Reentrancy in Bank.withdraw()", "elements": [{"source_mapping": {"lines": [8]}}]},
  {"check": "tx-origin", "impact": "Medium", "confidence": "Medium",
   "description": "Bank.withdraw() uses tx.origin for authorization", "elements": [{"source_mapping": {"lines": [7]}}]}
]}}`

func staticWith(bin string) *Static {
	return NewStatic(config.StaticTool{Binary: bin, Timeout: time.Minute})
}

func TestStaticReportWinsOverExitCode(t *testing.T) {
	out := fixture(t, slitherJSON)
	bin := fakeTool(t, `test -f "$1" || exit 9
cat `+out+`
exit 255`)

	res := staticWith(bin).Run(context.Background(), bankSource, "Bank")
	require.True(t, res.Success, res.ErrorMessage)
	assert.Equal(t, "slither", res.ToolName)
	assert.Equal(t, model.ToolStatic, res.Kind)
	require.Len(t, res.Findings, 2)
	assert.Equal(t, model.VulnReentrancy, res.Findings[0].Type)
	assert.Equal(t, model.VulnAccessControl, res.Findings[1].Type)
	assert.Equal(t, "2 findings (1 high, 1 medium)", res.Summary)
	assert.Empty(t, res.ErrorMessage)
}

func TestStaticNamesSourceFileAfterContract(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeTool(t, `basename "$1" > `+argsFile+`
echo '{"success": true, "results": {}}'`)

	res := staticWith(bin).Run(context.Background(), bankSource, "My Bank!")
	require.True(t, res.Success)
	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Equal(t, "MyBank.sol\n", string(b))
}

func TestStaticPassesMatchingSolc(t *testing.T) {
	solcDir := t.TempDir()
	art := filepath.Join(solcDir, "solc-0.8.19")
	require.NoError(t, os.MkdirAll(art, 0o755))
	solc := filepath.Join(art, "solc-0.8.19")
	require.NoError(t, os.WriteFile(solc, []byte("#!/bin/sh\n"), 0o755))

	argsFile := filepath.Join(t.TempDir(), "args")
	bin := fakeTool(t, `echo "$@" > `+argsFile+`
echo '{"success": true, "results": {}}'`)

	s := NewStatic(config.StaticTool{Binary: bin, Timeout: time.Minute, SolcDir: solcDir})
	res := s.Run(context.Background(), bankSource, "Bank")
	require.True(t, res.Success)
	b, err := os.ReadFile(argsFile)
	require.NoError(t, err)
	assert.Contains(t, string(b), "--json - --disable-color --solc "+solc)
}

func TestStaticTextFallback(t *testing.T) {
	bin := fakeTool(t, `echo "Reentrancy in Bank.withdraw() (Bank.sol#6-11):" >&2
exit 1`)

	res := staticWith(bin).Run(context.Background(), bankSource, "Bank")
	require.True(t, res.Success)
	require.Len(t, res.Findings, 1)
	assert.Equal(t, model.VulnReentrancy, res.Findings[0].Type)
	assert.Equal(t, 0.9, *res.Findings[0].Confidence)
}

func TestStaticCleanRunWithoutReport(t *testing.T) {
	bin := fakeTool(t, "exit 0")
	res := staticWith(bin).Run(context.Background(), bankSource, "Bank")
	require.True(t, res.Success)
	assert.Empty(t, res.Findings)
	assert.Equal(t, "no findings", res.Summary)
}

func TestStaticFailures(t *testing.T) {
	tests := []struct {
		name    string
		script  string
		kind    model.FailureKind
		message string
	}{
		{"crash", `echo "Error: solc not found" >&2; exit 1`, model.FailureExec, "slither exited with code 1: Error: solc not found"},
		{"garbage", `echo "not a report"`, model.FailureMalformedOutput, "could not be parsed"},
		{"declared failure", `echo '{"success": false, "error": "Invalid compilation", "results": {}}'; exit 1`, model.FailureExec, "Invalid compilation"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := staticWith(fakeTool(t, tt.script)).Run(context.Background(), bankSource, "Bank")
			assert.False(t, res.Success)
			assert.Equal(t, tt.kind, res.FailureKind)
			assert.Contains(t, res.ErrorMessage, tt.message)
			assert.Empty(t, res.Findings)
		})
	}
}

func TestStaticNotInstalled(t *testing.T) {
	res := staticWith("cipherlens-no-such-slither").Run(context.Background(), bankSource, "Bank")
	assert.False(t, res.Success)
	assert.Equal(t, model.FailureNotInstalled, res.FailureKind)
	assert.Contains(t, res.ErrorMessage, "not installed")
	assert.GreaterOrEqual(t, res.ExecutionTimeSeconds, 0.0)
}

func TestStaticTimeout(t *testing.T) {
	bin := fakeTool(t, "sleep 5")
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	start := time.Now()
	res := staticWith(bin).Run(ctx, bankSource, "Bank")
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.False(t, res.Success)
	assert.Equal(t, model.FailureTimeout, res.FailureKind)
	assert.Contains(t, res.ErrorMessage, "slither timed out after")
	assert.GreaterOrEqual(t, res.ExecutionTimeSeconds, 0.3)
}

func TestStaticStatus(t *testing.T) {
	st := staticWith(fakeTool(t, `echo "0.10.4"`)).Status(context.Background())
	assert.True(t, st.Available)
	assert.Equal(t, "0.10.4", st.Detail)

	st = staticWith("cipherlens-no-such-slither").Status(context.Background())
	assert.False(t, st.Available)
	assert.NotEmpty(t, st.Error)
}
