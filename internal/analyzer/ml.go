package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/solidity"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/util"
)

const maxResponseBytes = 1 << 20

// MLPatterns types a vulnerable verdict by what the source contains. Matching
// is case-insensitive; a pattern matches when any of its needles occurs.
var MLPatterns = []struct {
	Needles     []string
	Type        string
	Severity    model.Severity
	Description string
}{
	{[]string{"call.value", "msg.sender.call"}, model.VulnReentrancy, model.SeverityHigh, "Potential reentrancy vulnerability detected by ML model"},
	{[]string{"tx.origin"}, model.VulnAccessControl, model.SeverityMedium, "Use of tx.origin for authorization detected by ML model"},
	{[]string{"selfdestruct"}, model.VulnAccessControl, model.SeverityHigh, "Selfdestruct reachable in contract flagged by ML model"},
}

// ML calls the classifier scoring service.
type ML struct {
	cfg    config.MLTool
	client *http.Client
}

// NewML builds the adapter. Timeouts come from the request context, so the
// client itself has none.
func NewML(cfg config.MLTool) *ML {
	return &ML{cfg: cfg, client: &http.Client{}}
}

func (m *ML) Name() string         { return "ml-classifier" }
func (m *ML) Kind() model.ToolKind { return model.ToolML }

type predictRequest struct {
	Inputs string `json:"inputs"`
	Model  string `json:"model,omitempty"`
}

type prediction struct {
	Label string   `json:"label"`
	Score *float64 `json:"score"`
}

func (m *ML) Run(ctx context.Context, code, _ string) model.ToolResult {
	start := time.Now()
	fail := func(fk model.FailureKind, msg string) model.ToolResult {
		return Failed(m.Kind(), m.Name(), fk, msg, time.Since(start))
	}
	if strings.TrimSpace(m.cfg.Endpoint) == "" {
		return fail(model.FailureNotConfigured, "ML classifier endpoint is not configured")
	}

	input := solidity.NormalizeForModel(code)
	if m.cfg.MaxInputChars > 0 {
		input = solidity.Truncate(input, m.cfg.MaxInputChars)
	}
	body, err := json.Marshal(predictRequest{Inputs: input, Model: m.cfg.Model})
	if err != nil {
		return fail(model.FailureExec, fmt.Sprintf("encode request: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.url("/predict"), bytes.NewReader(body))
	if err != nil {
		return fail(model.FailureNotConfigured, fmt.Sprintf("invalid ML endpoint: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(model.FailureTimeout, timeoutMessage(ctx, m.Name(), start))
		}
		return fail(model.FailureUnreachable, fmt.Sprintf("ML service request failed: %v", err))
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fail(model.FailureTimeout, timeoutMessage(ctx, m.Name(), start))
		}
		return fail(model.FailureUnreachable, fmt.Sprintf("read ML response: %v", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fail(model.FailureUnreachable, fmt.Sprintf("ML service returned %s", resp.Status))
	}

	p, err := m.vulnerableProbability(raw)
	if err != nil {
		return fail(model.FailureMalformedOutput, err.Error())
	}
	log.Debug().Str("tool", m.Name()).Float64("p_vulnerable", p).Msg("ml prediction")

	if p < m.cfg.Threshold {
		return Succeeded(m.Kind(), m.Name(), nil, time.Since(start))
	}
	return Succeeded(m.Kind(), m.Name(), mlFindings(code, p), time.Since(start))
}

// vulnerableProbability accepts `{"label","score"}`, a list of those, or a
// list of lists (one per input). The vulnerable label's score wins when
// present. An unlabelled score is already p(vulnerable); a score under any
// other label is inverted. A label without a score counts as certain.
func (m *ML) vulnerableProbability(raw []byte) (float64, error) {
	preds, err := decodePredictions(raw)
	if err != nil {
		return 0, err
	}
	for _, p := range preds {
		if p.Label == m.cfg.VulnerableLabel {
			if p.Score == nil {
				return 1, nil
			}
			return *p.Score, nil
		}
	}
	first := preds[0]
	switch {
	case first.Label == "":
		return *first.Score, nil
	case first.Score == nil:
		return 0, nil
	default:
		return 1 - *first.Score, nil
	}
}

func decodePredictions(raw []byte) ([]prediction, error) {
	raw = bytes.TrimSpace(raw)
	var preds []prediction
	switch {
	case len(raw) == 0:
		return nil, errors.New("ML service returned an empty body")
	case raw[0] == '{':
		var p prediction
		if err := json.Unmarshal(raw, &p); err != nil {
			return nil, fmt.Errorf("decode ML response: %w", err)
		}
		preds = []prediction{p}
	case bytes.HasPrefix(raw, []byte("[[")):
		var nested [][]prediction
		if err := json.Unmarshal(raw, &nested); err != nil {
			return nil, fmt.Errorf("decode ML response: %w", err)
		}
		if len(nested) > 0 {
			preds = nested[0]
		}
	default:
		if err := json.Unmarshal(raw, &preds); err != nil {
			return nil, fmt.Errorf("decode ML response: %w", err)
		}
	}
	if len(preds) == 0 {
		return nil, errors.New("ML response carried no prediction")
	}
	for _, p := range preds {
		if p.Label == "" && p.Score == nil {
			return nil, errors.New("ML response prediction has neither label nor score")
		}
		if p.Score != nil && (*p.Score < 0 || *p.Score > 1) {
			return nil, errors.New("ML response score outside [0,1]")
		}
	}
	return preds, nil
}

func mlFindings(code string, p float64) []model.Finding {
	lower := strings.ToLower(code)
	var out []model.Finding
	for _, pat := range MLPatterns {
		for _, needle := range pat.Needles {
			start, _, ok := util.FindLineRange(lower, needle)
			if !ok {
				continue
			}
			out = append(out, model.Finding{
				Type:        pat.Type,
				Severity:    pat.Severity,
				Confidence:  model.Confidence(p),
				Description: pat.Description,
				LineNumber:  model.Line(start),
			})
			break
		}
	}
	if len(out) == 0 {
		out = append(out, model.Finding{
			Type:        model.VulnMLVulnerable,
			Severity:    model.SeverityMedium,
			Confidence:  model.Confidence(p),
			Description: "ML model detected potential vulnerability",
		})
	}
	return out
}

func (m *ML) url(path string) string {
	return strings.TrimRight(m.cfg.Endpoint, "/") + path
}

func (m *ML) Status(ctx context.Context) Status {
	st := Status{Tool: m.Name(), Kind: m.Kind()}
	if strings.TrimSpace(m.cfg.Endpoint) == "" {
		st.Error = "endpoint not configured"
		return st
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.url("/health"), nil)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	resp, err := m.client.Do(req)
	if err != nil {
		st.Error = err.Error()
		return st
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		st.Error = "health check returned " + resp.Status
		return st
	}
	st.Available = true
	st.Detail = m.cfg.Endpoint
	return st
}
