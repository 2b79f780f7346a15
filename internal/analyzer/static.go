package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/solidity"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/tools"
)

// Static runs slither.
type Static struct {
	cfg config.StaticTool
}

func NewStatic(cfg config.StaticTool) *Static { return &Static{cfg: cfg} }

func (s *Static) Name() string         { return "slither" }
func (s *Static) Kind() model.ToolKind { return model.ToolStatic }

func (s *Static) Run(ctx context.Context, code, contractName string) model.ToolResult {
	start := time.Now()
	dir, file, err := writeSource("cipherlens-slither-", code, contractName)
	if err != nil {
		return Failed(s.Kind(), s.Name(), model.FailureExec, err.Error(), time.Since(start))
	}
	defer os.RemoveAll(dir)

	args := []string{file, "--json", "-", "--disable-color"}
	if v := solidity.PragmaVersion(code); v != "" {
		if solc := solidity.SolcPath(s.cfg.SolcDir, v); solc != "" {
			args = append(args, "--solc", solc)
		} else {
			log.Debug().Str("tool", s.Name()).Str("pragma", v).Msg("no matching solc artifact; using default solc")
		}
	}

	res := tools.Run(ctx, s.cfg.Binary, args...)
	elapsed := time.Since(start)
	if fk, msg, failed := processFailure(ctx, s.Name(), res, start); failed {
		return Failed(s.Kind(), s.Name(), fk, msg, elapsed)
	}

	// slither exits non-zero whenever detectors fire, so a report wins over the exit code
	findings, err := tools.NormalizeSlither(res.Stdout)
	var reportErr *tools.ReportError
	switch {
	case err == nil:
		return Succeeded(s.Kind(), s.Name(), findings, elapsed)
	case errors.As(err, &reportErr):
		return Failed(s.Kind(), s.Name(), model.FailureExec, reportErr.Error(), elapsed)
	}

	if text := tools.NormalizeSlitherText(res.Stderr); len(text) > 0 {
		return Succeeded(s.Kind(), s.Name(), text, elapsed)
	}
	if res.ExitCode == 0 {
		if len(bytes.TrimSpace(res.Stdout)) == 0 {
			return Succeeded(s.Kind(), s.Name(), nil, elapsed)
		}
		return Failed(s.Kind(), s.Name(), model.FailureMalformedOutput,
			fmt.Sprintf("slither output could not be parsed: %v", err), elapsed)
	}
	return Failed(s.Kind(), s.Name(), model.FailureExec,
		fmt.Sprintf("slither exited with code %d: %s", res.ExitCode, res.StderrTail("no output")), elapsed)
}

func (s *Static) Status(ctx context.Context) Status {
	return probe(ctx, s.Kind(), s.Name(), s.cfg.Binary, "--version")
}
