package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/analyzer"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/metrics"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/solidity"
)

var (
	// ErrInvalidInput rejects a request before any tool is dispatched.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoToolsRequested is an ErrInvalidInput.
	ErrNoToolsRequested = fmt.Errorf("%w: at least one tool must be requested", ErrInvalidInput)
)

const statusTimeout = 10 * time.Second

// Engine dispatches the requested analyzers concurrently.
type Engine struct {
	analyzers map[model.ToolKind]analyzer.Analyzer
	timeouts  map[model.ToolKind]time.Duration
}

type Option func(*Engine)

// WithAnalyzer replaces the analyzer registered for a.Kind().
func WithAnalyzer(a analyzer.Analyzer) Option {
	return func(e *Engine) { e.analyzers[a.Kind()] = a }
}

// WithTimeout overrides the timeout of one tool.
func WithTimeout(kind model.ToolKind, d time.Duration) Option {
	return func(e *Engine) { e.timeouts[kind] = d }
}

// New wires slither, mythril and the ML classifier from cfg.
func New(cfg config.Config, opts ...Option) *Engine {
	e := &Engine{
		analyzers: map[model.ToolKind]analyzer.Analyzer{
			model.ToolStatic:   analyzer.NewStatic(cfg.Tools.Static),
			model.ToolSymbolic: analyzer.NewSymbolic(cfg.Tools.Symbolic),
			model.ToolML:       analyzer.NewML(cfg.Tools.ML),
		},
		timeouts: map[model.ToolKind]time.Duration{},
	}
	for _, k := range model.AllTools {
		e.timeouts[k] = cfg.Timeout(k)
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Run is the terminal state of every requested tool for one request.
type Run struct {
	Results map[model.ToolKind]model.ToolResult
	Started time.Time
	Elapsed time.Duration
}

// Analyze validates req, runs the requested tools in parallel and waits until
// each has finished or hit its own timeout. Tool failures are recorded in the
// results; only input errors are returned.
func (e *Engine) Analyze(ctx context.Context, req model.Request) (*Run, error) {
	if err := solidity.Validate(req.Code); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	kinds := req.Options.Requested()
	if len(kinds) == 0 {
		return nil, ErrNoToolsRequested
	}

	run := &Run{Results: make(map[model.ToolKind]model.ToolResult, len(kinds)), Started: time.Now()}
	log.Debug().Str("contract", req.ContractName).Strs("tools", kindNames(kinds)).Msg("dispatching analyzers")

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, kind := range kinds {
		g.Go(func() error {
			res := e.runOne(ctx, kind, req.Code, req.ContractName)
			metrics.RecordToolResult(res)
			logResult(res)
			mu.Lock()
			run.Results[kind] = res
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait() // workers never fail; errors are data
	run.Elapsed = time.Since(run.Started)
	log.Debug().Dur("duration", run.Elapsed).Msg("all analyzers finished")
	return run, nil
}

func (e *Engine) runOne(ctx context.Context, kind model.ToolKind, code, contractName string) model.ToolResult {
	start := time.Now()
	a, ok := e.analyzers[kind]
	if !ok || a == nil {
		return analyzer.Failed(kind, string(kind), model.FailureNotConfigured, "no analyzer registered for "+kind.Label(), 0)
	}
	timeout := e.timeouts[kind]
	if timeout <= 0 {
		return analyzer.Failed(kind, a.Name(), model.FailureNotConfigured, "no timeout configured for "+a.Name(), 0)
	}

	tctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// buffered so an adapter that ignores ctx can still finish and exit
	done := make(chan model.ToolResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- analyzer.Failed(kind, a.Name(), model.FailurePanic,
					fmt.Sprintf("%s panicked: %v", a.Name(), r), time.Since(start))
			}
		}()
		done <- a.Run(tctx, code, contractName)
	}()

	select {
	case res := <-done:
		return conform(kind, a.Name(), res)
	case <-tctx.Done():
		select {
		case res := <-done:
			return conform(kind, a.Name(), res)
		default:
		}
		msg := fmt.Sprintf("%s timed out after %s", a.Name(), timeout)
		if errors.Is(tctx.Err(), context.Canceled) {
			msg = a.Name() + " was cancelled"
		}
		return analyzer.Failed(kind, a.Name(), model.FailureTimeout, msg, time.Since(start))
	}
}

// conform makes an adapter's result satisfy the shared model whatever the
// adapter returned: failed results carry no findings and a reason, severities
// are on the shared scale and confidences lie in [0,1].
func conform(kind model.ToolKind, name string, res model.ToolResult) model.ToolResult {
	res.Kind = kind
	if res.ToolName == "" {
		res.ToolName = name
	}
	if res.ExecutionTimeSeconds < 0 {
		res.ExecutionTimeSeconds = 0
	}
	if !res.Success {
		if res.FailureKind == "" {
			res.FailureKind = model.FailureExec
		}
		if strings.TrimSpace(res.ErrorMessage) == "" {
			res.ErrorMessage = res.FailureKind.Phrase()
		}
		res.Findings = []model.Finding{}
		if res.Summary == "" {
			res.Summary = "failed: " + res.FailureKind.Phrase()
		}
		return res
	}
	res.ErrorMessage = ""
	res.FailureKind = ""
	fs := make([]model.Finding, 0, len(res.Findings))
	for _, f := range res.Findings {
		if _, ok := model.ParseSeverity(string(f.Severity)); !ok {
			f.Severity = model.SeverityMedium
		}
		if f.Confidence != nil {
			f.Confidence = model.Confidence(min(1, max(0, *f.Confidence)))
		}
		if f.LineNumber != nil && *f.LineNumber <= 0 {
			f.LineNumber = nil
		}
		if strings.TrimSpace(f.Description) == "" {
			f.Description = "No description available"
		}
		if f.Type == "" {
			f.Type = "unknown"
		}
		fs = append(fs, f)
	}
	res.Findings = fs
	if res.Summary == "" {
		res.Summary = analyzer.Summarize(fs)
	}
	return res
}

func logResult(res model.ToolResult) {
	if res.Success {
		log.Debug().Str("tool", res.ToolName).Str("kind", string(res.Kind)).
			Int("findings", len(res.Findings)).Float64("duration", res.ExecutionTimeSeconds).
			Msg("analyzer finished")
		return
	}
	log.Warn().Str("tool", res.ToolName).Str("kind", string(res.Kind)).
		Str("failure_kind", string(res.FailureKind)).Float64("duration", res.ExecutionTimeSeconds).
		Msg(res.ErrorMessage)
}

func kindNames(kinds []model.ToolKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}

// Status probes every registered tool concurrently, in canonical order.
func (e *Engine) Status(ctx context.Context) []analyzer.Status {
	ctx, cancel := context.WithTimeout(ctx, statusTimeout)
	defer cancel()

	out := make([]analyzer.Status, len(model.AllTools))
	var g errgroup.Group
	for i, kind := range model.AllTools {
		a, ok := e.analyzers[kind]
		if !ok || a == nil {
			out[i] = analyzer.Status{Tool: string(kind), Kind: kind, Error: "no analyzer registered"}
			continue
		}
		g.Go(func() error {
			out[i] = a.Status(ctx)
			out[i].Kind = kind
			return nil
		})
	}
	_ = g.Wait()
	return out
}
