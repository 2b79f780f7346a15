package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/solidity"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/tools"
)

// writeSource stores code as <dir>/<name>.sol in a fresh temp dir. The caller
// removes the returned dir.
func writeSource(prefix, code, contractName string) (dir, file string, err error) {
	dir, err = os.MkdirTemp("", prefix)
	if err != nil {
		return "", "", fmt.Errorf("create work dir: %w", err)
	}
	file = filepath.Join(dir, solidity.SanitizeName(contractName)+".sol")
	if err := os.WriteFile(file, []byte(code), 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return "", "", fmt.Errorf("write source: %w", err)
	}
	return dir, file, nil
}

// processFailure classifies the failures shared by every process adapter.
// ok is false when the process ran to completion, whatever its exit code.
func processFailure(ctx context.Context, name string, res tools.Result, start time.Time) (model.FailureKind, string, bool) {
	switch {
	case res.TimedOut():
		return model.FailureTimeout, timeoutMessage(ctx, name, start), true
	case errors.Is(res.Err, context.Canceled):
		return model.FailureTimeout, name + " was cancelled", true
	case res.Missing():
		return model.FailureNotInstalled, fmt.Sprintf("%s is not installed or not on PATH (%s)", name, res.Tool), true
	case res.Err != nil && res.ExitCode < 0:
		return model.FailureExec, fmt.Sprintf("%s did not complete: %v", name, res.Err), true
	}
	return "", "", false
}

func probe(ctx context.Context, kind model.ToolKind, name, binary string, args ...string) Status {
	st := Status{Tool: name, Kind: kind}
	v, err := tools.Version(ctx, binary, args...)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	st.Available = true
	st.Detail = v
	return st
}
