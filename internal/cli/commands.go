package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/config"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/engine"
)

// Global holds the persistent flags shared by every command.
type Global struct {
	ConfigPath string
	LogLevel   string
	LogFormat  string

	// EngineOptions are applied to every engine the commands build.
	EngineOptions []engine.Option
}

// ExitError carries a process exit code out of a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// Exit codes.
const (
	ExitFailure   = 1
	ExitThreshold = 2
)

// ExitCode maps a command error onto the process exit status.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ExitFailure
}

func AddCommands(root *cobra.Command, g *Global) {
	root.AddCommand(newAnalyzeCmd(g))
	root.AddCommand(newStatusCmd(g))
	root.AddCommand(newInitCmd())
	root.AddCommand(newMappingsCmd())
}

func (g *Global) loadConfig() (config.Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		wd = ""
	}
	cfg, _, err := config.Load(g.ConfigPath, wd)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
