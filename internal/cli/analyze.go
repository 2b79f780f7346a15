package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/engine"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/metrics"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/model"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/report"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/scoring"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/tui"
)

const maxSourceBytes = 4 << 20

func newAnalyzeCmd(g *Global) *cobra.Command {
	var (
		name        string
		format      string
		outputFile  string
		failOn      string
		metricsFile string
		baseline    string
		writeBase   string
		noStatic    bool
		noSymbolic  bool
		noML        bool
		useTUI      bool
	)
	cmd := &cobra.Command{
		Use:   "analyze [file.sol|-]",
		Short: "Analyze a Solidity contract with static, symbolic and ML detectors",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format = strings.ToLower(format)
			switch format {
			case "table", "json", "sarif":
			default:
				return fmt.Errorf("unknown format %q (want table|json|sarif)", format)
			}
			var threshold model.RiskLevel
			if failOn != "" {
				lvl, ok := model.ParseRiskLevel(failOn)
				if !ok {
					return fmt.Errorf("unknown --fail-on level %q (want safe|low|moderate|high)", failOn)
				}
				threshold = lvl
			}

			path := "-"
			if len(args) > 0 {
				path = args[0]
			}
			code, err := readSource(cmd.InOrStdin(), path)
			if err != nil {
				return err
			}
			if name == "" {
				name = contractNameFromPath(path)
			}
			var known *report.Baseline
			if baseline != "" {
				if known, err = report.LoadBaseline(baseline); err != nil {
					return err
				}
			}

			cfg, err := g.loadConfig()
			if err != nil {
				return err
			}
			scorer, err := scoring.New(cfg.Scoring)
			if err != nil {
				return err
			}
			eng := engine.New(cfg, g.EngineOptions...)

			run, err := eng.Analyze(cmd.Context(), model.Request{
				Code:         code,
				ContractName: name,
				Options: model.Options{
					IncludeStatic:   !noStatic,
					IncludeSymbolic: !noSymbolic,
					IncludeML:       !noML,
				},
			})
			if err != nil {
				return err
			}
			rep := report.Assemble(name, run, scorer.Score(run.Results))
			metrics.RecordVerdict(rep)
			log.Info().Str("analysis_id", rep.AnalysisID).Str("contract", rep.ContractName).
				Str("risk_level", string(rep.RiskLevel)).Float64("risk_score", rep.RiskScore).
				Float64("duration", rep.TotalExecutionTimeSeconds).Msg("analysis complete")

			if metricsFile != "" {
				if err := metrics.WriteTextfile(metricsFile); err != nil {
					return fmt.Errorf("write metrics: %w", err)
				}
			}

			if useTUI {
				if err := tui.Run(rep, code); err != nil {
					return err
				}
			} else if err := render(cmd.OutOrStdout(), rep, known, format, outputFile); err != nil {
				return err
			}
			if writeBase != "" {
				if err := report.WriteBaseline(writeBase, rep); err != nil {
					return fmt.Errorf("write baseline: %w", err)
				}
			}

			if failOn != "" && meetsThreshold(rep, threshold) {
				return &ExitError{Code: ExitThreshold, Err: fmt.Errorf("risk level %s meets --fail-on %s", rep.RiskLevel, threshold)}
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&name, "name", "n", "", "Contract name (defaults to the file name)")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format: table|json|sarif")
	cmd.Flags().StringVarP(&outputFile, "out", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "Exit 2 when the risk level is at or above this level (safe|low|moderate|high); Inconclusive always fails")
	cmd.Flags().StringVar(&metricsFile, "metrics-file", "", "Write prometheus textfile metrics for this run")
	cmd.Flags().StringVar(&baseline, "baseline", "", "Mark findings present in this baseline file as unchanged")
	cmd.Flags().StringVar(&writeBase, "write-baseline", "", "Write the fingerprints of this run's findings to a baseline file")
	cmd.Flags().BoolVar(&noStatic, "no-static", false, "Skip static analysis (slither)")
	cmd.Flags().BoolVar(&noSymbolic, "no-symbolic", false, "Skip symbolic execution (mythril)")
	cmd.Flags().BoolVar(&noML, "no-ml", false, "Skip the ML classifier")
	cmd.Flags().BoolVar(&useTUI, "tui", false, "Open the interactive report viewer")
	return cmd
}

func readSource(stdin io.Reader, path string) (string, error) {
	var r io.Reader
	if path == "-" {
		r = stdin
	} else {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open source: %w", err)
		}
		defer f.Close()
		r = f
	}
	b, err := io.ReadAll(io.LimitReader(r, maxSourceBytes+1))
	if err != nil {
		return "", fmt.Errorf("read source: %w", err)
	}
	if len(b) > maxSourceBytes {
		return "", fmt.Errorf("%w: source larger than %d bytes", engine.ErrInvalidInput, maxSourceBytes)
	}
	return string(b), nil
}

func contractNameFromPath(path string) string {
	if path == "-" {
		return ""
	}
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func render(w io.Writer, rep *model.AnalysisReport, known *report.Baseline, format, outputFile string) error {
	var data []byte
	var err error
	switch format {
	case "json":
		data, err = report.ToJSON(rep)
	case "sarif":
		data, err = report.ToSARIF(rep, known)
	default:
		var b strings.Builder
		err = report.WriteText(&b, rep)
		if known != nil {
			fresh, all := 0, report.Findings(rep)
			for _, f := range all {
				if !known.Known(f) {
					fresh++
				}
			}
			fmt.Fprintf(&b, "\nBaseline: %d new, %d known\n", fresh, len(all)-fresh)
		}
		data = []byte(b.String())
	}
	if err != nil {
		return fmt.Errorf("render %s report: %w", format, err)
	}
	if format != "table" {
		data = append(data, '\n')
	}
	if outputFile != "" {
		return os.WriteFile(outputFile, data, 0o644)
	}
	_, err = w.Write(data)
	return err
}

func meetsThreshold(rep *model.AnalysisReport, threshold model.RiskLevel) bool {
	if rep.Inconclusive {
		return true
	}
	return rep.RiskLevel.Rank() >= threshold.Rank()
}
