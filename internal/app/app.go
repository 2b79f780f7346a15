package app

import (
	"github.com/spf13/cobra"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/cli"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/logging"
)

// Version is set at build time with -ldflags "-X .../internal/app.Version=...".
var Version = "dev"

func BuildRoot() *cobra.Command {
	return buildRoot(&cli.Global{})
}

func buildRoot(g *cli.Global) *cobra.Command {
	root := &cobra.Command{
		Use:           "cipherlens",
		Short:         "Smart contract vulnerability analysis across static, symbolic and ML detectors",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Init(logging.Config{Format: g.LogFormat, Level: g.LogLevel, Component: "cipherlens"})
		},
	}
	root.PersistentFlags().StringVar(&g.ConfigPath, "config", "", "Path to a config file (default: search for .cipherlens.yml upwards)")
	root.PersistentFlags().StringVar(&g.LogLevel, "log-level", "info", "Log level: debug|info|warn|error")
	root.PersistentFlags().StringVar(&g.LogFormat, "log-format", "auto", "Log format: auto|json|console")
	cli.AddCommands(root, g)
	return root
}
