package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

const headersHelp = "https://owasp.org/www-project-secure-headers/"

type headersCheck struct{}

// NewSecurityHeadersCheck inspects the response headers of the target root
func NewSecurityHeadersCheck() Check {
	return &headersCheck{}
}

func (c *headersCheck) Name() string {
	return "headers"
}

func (c *headersCheck) Run(ctx context.Context, client *http.Client, target string) ([]*findings.Finding, error) {
	u, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}
	resp, err := do(ctx, client, http.MethodGet, u.String(), nil, nil)
	if err != nil {
		return nil, err
	}
	return evaluateHeaders(resp.header, u.Scheme == "https"), nil
}

func evaluateHeaders(h http.Header, https bool) []*findings.Finding {
	var out []*findings.Finding
	missing := func(header, cwe string, sev findings.Severity) {
		out = append(out, newFinding(
			"probe.headers."+strings.ToLower(header),
			fmt.Sprintf("Missing %s header", header),
			fmt.Sprintf("The response does not set %s", header),
			sev, cwe, "/", headersHelp,
		))
	}

	csp := h.Get("Content-Security-Policy")
	if csp == "" {
		missing("Content-Security-Policy", "CWE-693", findings.SeverityLow)
	}
	if https && h.Get("Strict-Transport-Security") == "" {
		missing("Strict-Transport-Security", "CWE-319", findings.SeverityLow)
	}
	if !strings.EqualFold(strings.TrimSpace(h.Get("X-Content-Type-Options")), "nosniff") {
		missing("X-Content-Type-Options", "CWE-693", findings.SeverityLow)
	}
	if h.Get("X-Frame-Options") == "" && !strings.Contains(strings.ToLower(csp), "frame-ancestors") {
		missing("X-Frame-Options", "CWE-1021", findings.SeverityLow)
	}

	for _, header := range []string{"Server", "X-Powered-By"} {
		if v := h.Get(header); v != "" && strings.ContainsAny(v, "0123456789") {
			out = append(out, newFinding(
				"probe.headers.disclosure."+strings.ToLower(header),
				fmt.Sprintf("%s header discloses version", header),
				fmt.Sprintf("%s: %s", header, v),
				findings.SeverityInfo, "CWE-200", "/", headersHelp,
			))
		}
	}
	return out
}
