package analyzer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/tools"
)

// Symbolic runs mythril.
type Symbolic struct {
	cfg config.SymbolicTool
}

func NewSymbolic(cfg config.SymbolicTool) *Symbolic { return &Symbolic{cfg: cfg} }

func (s *Symbolic) Name() string         { return "mythril" }
func (s *Symbolic) Kind() model.ToolKind { return model.ToolSymbolic }

func (s *Symbolic) Run(ctx context.Context, code, contractName string) model.ToolResult {
	start := time.Now()
	dir, file, err := writeSource("cipherlens-mythril-", code, contractName)
	if err != nil {
		return Failed(s.Kind(), s.Name(), model.FailureExec, err.Error(), time.Since(start))
	}
	defer os.RemoveAll(dir)

	args := []string{"analyze", file, "-o", "json",
		"--execution-timeout", strconv.Itoa(executionTimeout(ctx, s.cfg.Timeout))}
	if s.cfg.MaxDepth > 0 {
		args = append(args, "--max-depth", strconv.Itoa(s.cfg.MaxDepth))
	}

	res := tools.Run(ctx, s.cfg.Binary, args...)
	elapsed := time.Since(start)
	if fk, msg, failed := processFailure(ctx, s.Name(), res, start); failed {
		return Failed(s.Kind(), s.Name(), fk, msg, elapsed)
	}

	// mythril exits 1 when it reports issues
	findings, err := tools.NormalizeMythril(res.Stdout)
	var reportErr *tools.ReportError
	switch {
	case err == nil:
		return Succeeded(s.Kind(), s.Name(), findings, elapsed)
	case errors.As(err, &reportErr):
		return Failed(s.Kind(), s.Name(), model.FailureExec, reportErr.Error(), elapsed)
	case res.ExitCode != 0:
		return Failed(s.Kind(), s.Name(), model.FailureExec,
			fmt.Sprintf("mythril exited with code %d: %s", res.ExitCode, res.StderrTail("no output")), elapsed)
	default:
		return Failed(s.Kind(), s.Name(), model.FailureMalformedOutput,
			fmt.Sprintf("mythril output could not be parsed: %v", err), elapsed)
	}
}

func (s *Symbolic) Status(ctx context.Context) Status {
	return probe(ctx, s.Kind(), s.Name(), s.cfg.Binary, "version")
}

// executionTimeout gives mythril its own budget just inside our deadline so it
// can report partial results instead of being killed.
func executionTimeout(ctx context.Context, fallback time.Duration) int {
	budget := fallback
	if dl, ok := ctx.Deadline(); ok {
		budget = time.Until(dl) - time.Second
	}
	secs := int(budget / time.Second)
	if secs < 1 {
		secs = 1
	}
	return secs
}
