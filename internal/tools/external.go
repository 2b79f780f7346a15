package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNotInstalled is returned when the tool binary cannot be found.
var ErrNotInstalled = errors.New("tool not installed")

// waitDelay bounds how long Wait blocks on inherited pipes after the process
// is killed, so a grandchild holding stdout cannot outlive the deadline.
const waitDelay = 500 * time.Millisecond

type Result struct {
	Tool     string
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Err      error
	Duration time.Duration
}

// TimedOut reports whether the run was stopped by its context deadline.
func (r Result) TimedOut() bool { return errors.Is(r.Err, context.DeadlineExceeded) }

func (r Result) Missing() bool { return errors.Is(r.Err, ErrNotInstalled) }

// StderrTail returns the last non-empty stderr line, or fallback.
func (r Result) StderrTail(fallback string) string {
	lines := strings.Split(strings.TrimSpace(string(r.Stderr)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if l := strings.TrimSpace(lines[i]); l != "" {
			return l
		}
	}
	return fallback
}

// Run executes binary under ctx. The process is killed when ctx ends. A
// non-zero exit is reported through ExitCode and Err; callers decide whether
// the tool's exit code means failure.
func Run(ctx context.Context, binary string, args ...string) Result {
	start := time.Now()
	res := Result{Tool: binary, ExitCode: -1}

	path, err := exec.LookPath(binary)
	if err != nil {
		res.Err = fmt.Errorf("%w: %s: %v", ErrNotInstalled, binary, err)
		res.Duration = time.Since(start)
		return res
	}

	var stdout, stderr bytes.Buffer
	// binary comes from configuration and args are built by the adapters
	cmd := exec.CommandContext(ctx, path, args...) // #nosec G204
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay

	err = cmd.Run()
	res.Duration = time.Since(start)
	res.Stdout = stdout.Bytes()
	res.Stderr = stderr.Bytes()
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		res.Err = fmt.Errorf("%s: %w", binary, ctxErr)
		return res
	}
	if err != nil {
		res.Err = fmt.Errorf("%s: %w", binary, err)
	}
	return res
}

// Version runs a version probe and returns the first line of its output.
func Version(ctx context.Context, binary string, args ...string) (string, error) {
	res := Run(ctx, binary, args...)
	if res.Err != nil {
		return "", res.Err
	}
	out := strings.TrimSpace(string(res.Stdout))
	if out == "" {
		out = strings.TrimSpace(string(res.Stderr))
	}
	if i := strings.IndexByte(out, '\n'); i >= 0 {
		out = strings.TrimSpace(out[:i])
	}
	if out == "" {
		return "unknown", nil
	}
	return out, nil
}
