// Package probe implements a small built-in DAST suite that attacks a live
// HTTP target with injection, cross-site scripting and authentication bypass
// payloads and inspects its security headers.
package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// ToolName is the tool recorded on probe findings
const ToolName = "probe"

// maxBodySize bounds how much of a response is inspected
const maxBodySize = 1 << 20

// Check is one probe run against a target base URL
type Check interface {
	Name() string
	Run(ctx context.Context, client *http.Client, target string) ([]*findings.Finding, error)
}

// Options configures which inputs the checks attack
type Options struct {
	// Params are query parameters that receive injection payloads
	Params []string
	// ProtectedPaths require a valid bearer token
	ProtectedPaths []string
	// LoginPath accepts a JSON username/password body
	LoginPath string
	// Concurrency bounds parallel checks, values below 1 mean one at a time
	Concurrency int
}

// ParseTarget validates an absolute http(s) base URL
func ParseTarget(target string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(target))
	if err != nil {
		return nil, fmt.Errorf("invalid probe target %q: %w", target, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid probe target %q: absolute http(s) URL required", target)
	}
	return u, nil
}

// resolve joins a path and optional query onto the target
func resolve(target, path string, query url.Values) (string, error) {
	base, err := ParseTarget(target)
	if err != nil {
		return "", err
	}
	u := *base
	if path != "" {
		u.Path = strings.TrimSuffix(base.Path, "/") + "/" + strings.TrimPrefix(path, "/")
	}
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

type response struct {
	status int
	header http.Header
	body   string
}

func do(ctx context.Context, client *http.Client, method, rawURL string, body io.Reader, header http.Header) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	for k, values := range header {
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s failed: %w", method, rawURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response of %s: %w", rawURL, err)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: string(data)}, nil
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// newFinding fills the fields shared by all probe findings. location identifies
// the attacked endpoint and input and feeds the fingerprint.
func newFinding(ruleID, title, message string, severity findings.Severity, cwe, location, help string) *findings.Finding {
	return &findings.Finding{
		Tool:      ToolName,
		Category:  findings.CategoryDAST,
		RuleID:    ruleID,
		Title:     title,
		Message:   message,
		Severity:  severity,
		CWE:       []string{cwe},
		FilePath:  location,
		StartLine: 1,
		EndLine:   1,
		HelpURI:   help,
	}
}
