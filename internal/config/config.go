package config

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
)

const FileName = ".cipherlens.yml"

// ErrInvalidConfig marks configuration that must be fixed before any request runs.
var ErrInvalidConfig = errors.New("invalid configuration")

const (
	envSlitherBin      = "CIPHERLENS_SLITHER_BIN"
	envMythrilBin      = "CIPHERLENS_MYTHRIL_BIN"
	envMLEndpoint      = "CIPHERLENS_ML_ENDPOINT"
	envStaticTimeout   = "CIPHERLENS_STATIC_TIMEOUT"
	envSymbolicTimeout = "CIPHERLENS_SYMBOLIC_TIMEOUT"
	envMLTimeout       = "CIPHERLENS_ML_TIMEOUT"
	envSolcDir         = "CIPHERLENS_SOLC_DIR"
)

type StaticTool struct {
	Binary  string        `yaml:"binary"`
	Timeout time.Duration `yaml:"timeout"`
	SolcDir string        `yaml:"solc_dir,omitempty"`
}

type SymbolicTool struct {
	Binary   string        `yaml:"binary"`
	Timeout  time.Duration `yaml:"timeout"`
	MaxDepth int           `yaml:"max_depth"`
}

type MLTool struct {
	Endpoint        string        `yaml:"endpoint"`
	Model           string        `yaml:"model"`
	Timeout         time.Duration `yaml:"timeout"`
	Threshold       float64       `yaml:"threshold"`
	VulnerableLabel string        `yaml:"vulnerable_label"`
	MaxInputChars   int           `yaml:"max_input_chars"`
}

type Tools struct {
	Static   StaticTool   `yaml:"static"`
	Symbolic SymbolicTool `yaml:"symbolic"`
	ML       MLTool       `yaml:"ml"`
}

type Weights struct {
	Static   float64 `yaml:"static"`
	Symbolic float64 `yaml:"symbolic"`
	ML       float64 `yaml:"ml"`
}

func (w Weights) For(kind model.ToolKind) float64 {
	switch kind {
	case model.ToolStatic:
		return w.Static
	case model.ToolSymbolic:
		return w.Symbolic
	case model.ToolML:
		return w.ML
	default:
		return 0
	}
}

type Thresholds struct {
	High     float64 `yaml:"high"`
	Moderate float64 `yaml:"moderate"`
	Low      float64 `yaml:"low"`
}

type SeverityWeights struct {
	Low    float64 `yaml:"low"`
	Medium float64 `yaml:"medium"`
	High   float64 `yaml:"high"`
}

func (s SeverityWeights) For(sev model.Severity) float64 {
	switch sev {
	case model.SeverityHigh:
		return s.High
	case model.SeverityMedium:
		return s.Medium
	case model.SeverityLow:
		return s.Low
	default:
		return 0
	}
}

type Scoring struct {
	Weights         Weights         `yaml:"weights"`
	Thresholds      Thresholds      `yaml:"thresholds"`
	SeverityWeights SeverityWeights `yaml:"severity_weights"`
}

type Config struct {
	Tools   Tools   `yaml:"tools"`
	Scoring Scoring `yaml:"scoring"`
}

func Default() Config {
	return Config{
		Tools: Tools{
			Static:   StaticTool{Binary: "slither", Timeout: 60 * time.Second},
			Symbolic: SymbolicTool{Binary: "myth", Timeout: 90 * time.Second, MaxDepth: 10},
			ML: MLTool{
				Endpoint:        "http://127.0.0.1:8001",
				Model:           "rastogivinayak/cipher-lens",
				Timeout:         30 * time.Second,
				Threshold:       0.35,
				VulnerableLabel: "LABEL_0",
				MaxInputChars:   512,
			},
		},
		Scoring: DefaultScoring(),
	}
}

func DefaultScoring() Scoring {
	return Scoring{
		Weights:         Weights{Static: 0.4, Symbolic: 0.4, ML: 0.2},
		Thresholds:      Thresholds{High: 0.80, Moderate: 0.50, Low: 0.20},
		SeverityWeights: SeverityWeights{Low: 0.2, Medium: 0.5, High: 1.0},
	}
}

// Timeout returns the configured per-tool timeout.
func (c Config) Timeout(kind model.ToolKind) time.Duration {
	switch kind {
	case model.ToolStatic:
		return c.Tools.Static.Timeout
	case model.ToolSymbolic:
		return c.Tools.Symbolic.Timeout
	case model.ToolML:
		return c.Tools.ML.Timeout
	default:
		return 0
	}
}

// Load resolves the configuration. An explicit path must exist; otherwise the
// file is searched upwards from startDir and defaults apply when none is found.
// Env overrides (including a .env file in the working directory) are applied last.
// The returned path is empty when no file was used.
func Load(explicitPath, startDir string) (Config, string, error) {
	cfg := Default()

	path := explicitPath
	if path == "" {
		path = find(startDir)
	}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return cfg, path, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, path, fmt.Errorf("%w: parse %s: %v", ErrInvalidConfig, path, err)
		}
	}

	// .env is optional; a missing file is not an error
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, path, fmt.Errorf("%w: load .env: %v", ErrInvalidConfig, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, path, err
	}

	if err := cfg.Validate(); err != nil {
		return cfg, path, err
	}
	return cfg, path, nil
}

func find(startDir string) string {
	if startDir == "" {
		return ""
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached root
			return ""
		}
		dir = parent
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(envSlitherBin); v != "" {
		c.Tools.Static.Binary = v
	}
	if v := os.Getenv(envMythrilBin); v != "" {
		c.Tools.Symbolic.Binary = v
	}
	if v := os.Getenv(envMLEndpoint); v != "" {
		c.Tools.ML.Endpoint = v
	}
	if v := os.Getenv(envSolcDir); v != "" {
		c.Tools.Static.SolcDir = v
	}
	for env, dst := range map[string]*time.Duration{
		envStaticTimeout:   &c.Tools.Static.Timeout,
		envSymbolicTimeout: &c.Tools.Symbolic.Timeout,
		envMLTimeout:       &c.Tools.ML.Timeout,
	} {
		v := os.Getenv(env)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, env, err)
		}
		*dst = d
	}
	return nil
}

// Validate rejects settings that would make scoring or dispatch meaningless.
func (c Config) Validate() error {
	var problems []string

	if c.Tools.Static.Timeout <= 0 {
		problems = append(problems, "tools.static.timeout must be positive")
	}
	if c.Tools.Symbolic.Timeout <= 0 {
		problems = append(problems, "tools.symbolic.timeout must be positive")
	}
	if c.Tools.ML.Timeout <= 0 {
		problems = append(problems, "tools.ml.timeout must be positive")
	}
	if !inRange(c.Tools.ML.Threshold, 0, 1) {
		problems = append(problems, "tools.ml.threshold must be within [0,1]")
	}
	if c.Tools.ML.MaxInputChars < 0 {
		problems = append(problems, "tools.ml.max_input_chars must not be negative")
	}
	if c.Tools.Symbolic.MaxDepth < 0 {
		problems = append(problems, "tools.symbolic.max_depth must not be negative")
	}

	if err := c.Scoring.Validate(); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}

func (s Scoring) Validate() error {
	var problems []string

	w := s.Weights
	sum := 0.0
	for name, v := range map[string]float64{"static": w.Static, "symbolic": w.Symbolic, "ml": w.ML} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			problems = append(problems, fmt.Sprintf("scoring.weights.%s must be a non-negative number", name))
			continue
		}
		sum += v
	}
	if sum <= 0 {
		problems = append(problems, "scoring.weights must sum to a positive value")
	}

	t := s.Thresholds
	if !(t.Low > 0 && t.Low < t.Moderate && t.Moderate < t.High && t.High <= 1) {
		problems = append(problems, "scoring.thresholds must satisfy 0 < low < moderate < high <= 1")
	}

	sw := s.SeverityWeights
	if !(sw.Low > 0 && sw.Low <= sw.Medium && sw.Medium <= sw.High && sw.High <= 1) {
		problems = append(problems, "scoring.severity_weights must satisfy 0 < low <= medium <= high <= 1")
	}

	if len(problems) > 0 {
		// map iteration above is unordered
		sort.Strings(problems)
		return fmt.Errorf("%s", strings.Join(problems, "; "))
	}
	return nil
}

func inRange(v, lo, hi float64) bool {
	return !math.IsNaN(v) && v >= lo && v <= hi
}

// Marshal renders the config as YAML, used by `init`.
func Marshal(c Config) ([]byte, error) {
	return yaml.Marshal(c)
}
