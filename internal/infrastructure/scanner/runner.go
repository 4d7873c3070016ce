// Package scanner runs external security tools and the built-in probe suite
// and turns their reports into findings.
package scanner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
)

// Runner executes a process and captures its output
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (stdout []byte, stderr []byte, err error)
}

// ExecRunner runs processes on the host with os/exec
type ExecRunner struct{}

// NewExecRunner creates a Runner backed by os/exec
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run starts name with args and waits for it. The process is killed when ctx is done.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, []byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if ctxErr := ctx.Err(); ctxErr != nil && err != nil {
		err = ctxErr
	}
	return stdout.Bytes(), stderr.Bytes(), err
}

// ExitCoder is implemented by errors carrying a process exit code
type ExitCoder interface {
	ExitCode() int
}

// exitCode returns the exit code carried by err, or -1
func exitCode(err error) int {
	var coder ExitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return -1
}
