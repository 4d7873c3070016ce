package scanner

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/adapters"
)

// Tool names
const (
	ToolSemgrep = "semgrep"
	ToolTrivy   = "trivy"
	ToolKICS    = "kics"
	ToolSnyk    = "snyk"
	ToolZAP     = "zap"
	ToolGosec   = "gosec"
	ToolProbe   = "probe"
	ToolSARIF   = "sarif"
)

// Container images used for tools that run through docker
const (
	KICSImage = "checkmarx/kics:latest"
	ZAPImage  = "zaproxy/zap-stable"
)

// Tool describes how an external tool is invoked and parsed
type Tool struct {
	Name   string
	Kind   scans.Kind
	Binary string
	// Args builds the command line. outDir is a fresh directory for tools writing report files,
	// writable by the container user.
	Args func(target, outDir string) ([]string, error)
	// OutputFile is read from outDir instead of stdout when set
	OutputFile string
	// ExitCodes other than zero that mean the tool ran and reported findings
	ExitCodes []int
	Parse     adapters.Parser
}

func (t Tool) allows(code int) bool {
	if code == 0 {
		return true
	}
	for _, c := range t.ExitCodes {
		if c == code {
			return true
		}
	}
	return false
}

// DefaultTools returns the external tools known out of the box
func DefaultTools() []Tool {
	return []Tool{
		{
			Name:   ToolSemgrep,
			Kind:   scans.KindSAST,
			Binary: "semgrep",
			Args: func(target, _ string) ([]string, error) {
				return []string{"scan", "--config=auto", "--json", "--quiet", "--", target}, nil
			},
			ExitCodes: []int{1},
			Parse:     adapters.ParseSemgrep,
		},
		{
			Name:   ToolTrivy,
			Kind:   scans.KindSCA,
			Binary: "trivy",
			Args: func(target, _ string) ([]string, error) {
				return []string{"fs", "-f", "json", "-q", "--scanners", "vuln,misconfig", "--", target}, nil
			},
			Parse: adapters.ParseTrivy,
		},
		{
			Name:   ToolKICS,
			Kind:   scans.KindIAC,
			Binary: "docker",
			Args: func(target, outDir string) ([]string, error) {
				absPath, err := filepath.Abs(target)
				if err != nil {
					return nil, fmt.Errorf("failed to resolve absolute path of %s: %w", target, err)
				}
				return []string{
					"run", "--rm",
					"-v", fmt.Sprintf("%s:/scan", absPath),
					"-v", fmt.Sprintf("%s:/output", outDir),
					KICSImage,
					"scan", "-p", "/scan",
					"--report-formats", "json",
					"--output-path", "/output",
				}, nil
			},
			OutputFile: "results.json",
			// kics exits with 20..60 depending on the highest severity found
			ExitCodes: []int{20, 30, 40, 50, 60},
			Parse:     adapters.ParseKICS,
		},
		{
			Name:   ToolSnyk,
			Kind:   scans.KindSCA,
			Binary: "snyk",
			// snyk hands arguments after "--" to the build tool, so the target stays positional
			Args: func(target, _ string) ([]string, error) {
				return []string{"test", "--json", target}, nil
			},
			ExitCodes: []int{1},
			Parse:     adapters.ParseSnyk,
		},
		{
			Name:   ToolZAP,
			Kind:   scans.KindDAST,
			Binary: "docker",
			Args: func(target, outDir string) ([]string, error) {
				if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
					return nil, fmt.Errorf("zap target must be an http(s) URL: %s", target)
				}
				return []string{
					"run", "--rm",
					"-v", fmt.Sprintf("%s:/zap/wrk:rw", outDir),
					ZAPImage,
					"zap-baseline.py", "-t", target, "-J", "report.json",
				}, nil
			},
			OutputFile: "report.json",
			ExitCodes:  []int{1, 2},
			Parse:      adapters.ParseZAP,
		},
		{
			Name:   ToolGosec,
			Kind:   scans.KindSAST,
			Binary: "gosec",
			Args: func(target, _ string) ([]string, error) {
				return []string{"-fmt=json", "-quiet", gosecPattern(target)}, nil
			},
			ExitCodes: []int{1},
			Parse:     adapters.ParseGosec,
		},
	}
}

// gosecPattern turns a directory into a recursive package pattern
func gosecPattern(target string) string {
	p := filepath.ToSlash(filepath.Clean(target))
	if !filepath.IsAbs(target) && !strings.HasPrefix(p, ".") {
		p = "./" + p
	}
	return strings.TrimSuffix(p, "/") + "/..."
}
