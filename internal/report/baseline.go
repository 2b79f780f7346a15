package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/util"
)

// Baseline is a set of finding fingerprints from an earlier analysis. It only
// labels findings as new or known; it never hides them from scoring.
type Baseline struct {
	GeneratedAt  time.Time       `json:"generatedAt"`
	Fingerprints map[string]bool `json:"fingerprints"`
}

// LoadBaseline reads a baseline written by WriteBaseline, or a bare JSON array
// of fingerprints.
func LoadBaseline(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}
	var fps []string
	if err := json.Unmarshal(data, &fps); err == nil {
		b := &Baseline{Fingerprints: make(map[string]bool, len(fps))}
		for _, f := range fps {
			b.Fingerprints[f] = true
		}
		return b, nil
	}
	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline %s: %w", path, err)
	}
	if b.Fingerprints == nil {
		b.Fingerprints = map[string]bool{}
	}
	return &b, nil
}

// WriteBaseline records the fingerprints of every finding in r.
func WriteBaseline(path string, r *model.AnalysisReport) error {
	b := Baseline{GeneratedAt: r.Timestamp, Fingerprints: map[string]bool{}}
	for _, f := range Findings(r) {
		b.Fingerprints[f.Fingerprint()] = true
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Known reports whether f was present in the baseline. A nil baseline knows nothing.
func (b *Baseline) Known(f Located) bool {
	return b != nil && b.Fingerprints[f.Fingerprint()]
}

// Fingerprint identifies the finding across analyses of the same source.
func (l Located) Fingerprint() string {
	return util.Fingerprint(l.Tool, l.Type, l.Line(), l.Description)
}
