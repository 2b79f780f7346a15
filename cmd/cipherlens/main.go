package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/app"
	"github.com/vinayakrastogi/CipherLens-smartContractVulnebrityDetector/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.BuildRoot().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "cipherlens:", err)
		stop()
		os.Exit(cli.ExitCode(err))
	}
}
