package scanner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/logger"
)

// maxStderr bounds how much stderr is kept in error messages
const maxStderr = 2048

// outputDirMode lets a container running under another uid write its report
const outputDirMode os.FileMode = 0o777

// CommandScanner runs an external tool through a Runner
type CommandScanner struct {
	tool    Tool
	runner  Runner
	timeout time.Duration
	logger  logger.Logger
}

// NewCommandScanner creates a scans.Scanner for tool. A zero timeout disables the deadline.
func NewCommandScanner(tool Tool, runner Runner, timeout time.Duration, logger logger.Logger) *CommandScanner {
	return &CommandScanner{
		tool:    tool,
		runner:  runner,
		timeout: timeout,
		logger:  logger,
	}
}

func (s *CommandScanner) Name() string {
	return s.tool.Name
}

func (s *CommandScanner) Kind() scans.Kind {
	return s.tool.Kind
}

// Scan runs the tool against target and parses its report
func (s *CommandScanner) Scan(ctx context.Context, target string) ([]*findings.Finding, error) {
	report, err := s.run(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.Parse(report)
}

// Parse converts a raw report of this tool into findings
func (s *CommandScanner) Parse(report []byte) ([]*findings.Finding, error) {
	list, err := s.tool.Parse(report)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s report: %w", s.tool.Name, err)
	}
	return list, nil
}

func (s *CommandScanner) run(ctx context.Context, target string) ([]byte, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	if err := scans.ValidateTarget(target); err != nil {
		return nil, err
	}

	var outDir string
	if s.tool.OutputFile != "" {
		dir, err := os.MkdirTemp("", "scan-warden-"+s.tool.Name+"-")
		if err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
		defer func() {
			if err := os.RemoveAll(dir); err != nil {
				s.logger.Warn("Failed to remove ", dir, ": ", err)
			}
		}()
		// containers write as their own user (zap runs as uid 1000)
		if err := os.Chmod(dir, outputDirMode); err != nil {
			return nil, fmt.Errorf("failed to open output directory to the container: %w", err)
		}
		outDir = dir
	}

	args, err := s.tool.Args(target, outDir)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Running ", s.tool.Name, ": ", s.tool.Binary, " ", args)
	start := time.Now()
	stdout, stderr, err := s.runner.Run(ctx, s.tool.Binary, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s did not finish: %w", s.tool.Name, err)
		}
		code := exitCode(err)
		if !s.tool.allows(code) {
			return nil, fmt.Errorf("%s failed with exit code %d: %w\nstderr: %s", s.tool.Name, code, err, tail(stderr, maxStderr))
		}
	}
	s.logger.Debug(s.tool.Name, " finished in ", time.Since(start))

	if s.tool.OutputFile == "" {
		if len(bytes.TrimSpace(stdout)) == 0 {
			return nil, fmt.Errorf("%s produced no output\nstderr: %s", s.tool.Name, tail(stderr, maxStderr))
		}
		return stdout, nil
	}

	report, err := os.ReadFile(filepath.Join(outDir, s.tool.OutputFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s report: %w", s.tool.Name, err)
	}
	return report, nil
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(bytes.TrimSpace(b))
}
