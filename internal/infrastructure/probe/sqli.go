package probe

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// SQL injection payloads; the first mirrors a stacked query, the last a comment based login bypass
var sqliPayloads = []string{
	"test'; DROP TABLE users; --",
	"' OR '1'='1",
	"admin' --",
}

// database error messages leaking into a response
var sqlErrorSignatures = []string{
	"sqlite3.operationalerror",
	"sqlite_error",
	"unrecognized token",
	"near \"",
	"syntax error at or near",
	"unterminated quoted string",
	"pq: ",
	"you have an error in your sql syntax",
	"warning: mysql",
	"mysql_fetch",
	"ora-01756",
	"quoted string not properly terminated",
	"sqlstate[",
}

type sqliCheck struct {
	params []string
}

// NewSQLInjectionCheck sends injection payloads through each param and looks for database errors
func NewSQLInjectionCheck(params []string) Check {
	return &sqliCheck{params: params}
}

func (c *sqliCheck) Name() string {
	return "sqli"
}

func (c *sqliCheck) Run(ctx context.Context, client *http.Client, target string) ([]*findings.Finding, error) {
	var out []*findings.Finding

	for _, param := range c.params {
		for _, payload := range sqliPayloads {
			rawURL, err := resolve(target, "", url.Values{param: {payload}})
			if err != nil {
				return out, err
			}
			resp, err := do(ctx, client, http.MethodGet, rawURL, nil, nil)
			if err != nil {
				return out, err
			}

			if sig := matchSQLError(resp.body); sig != "" {
				out = append(out, newFinding(
					"probe.sqli",
					fmt.Sprintf("SQL injection in parameter %s", param),
					fmt.Sprintf("Payload %q produced a database error (%q) with status %d", payload, sig, resp.status),
					findings.SeverityHigh,
					"CWE-89",
					"?"+param,
					"https://owasp.org/www-community/attacks/SQL_Injection",
				))
				break
			}
		}
	}
	return out, nil
}

func matchSQLError(body string) string {
	lower := strings.ToLower(body)
	for _, sig := range sqlErrorSignatures {
		if strings.Contains(lower, sig) {
			return sig
		}
	}
	return ""
}
