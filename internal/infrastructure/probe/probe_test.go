//go:build unit
// +build unit

package probe

import (
	"context"
	"errors"
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/pkg/testutil"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const serverSecret = "a-long-random-server-secret-0123456789"

// newTargetServer returns a server whose /search endpoint and /api/data endpoint
// are vulnerable or hardened depending on vulnerable
func newTargetServer(t *testing.T, vulnerable bool) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("q")
		if !vulnerable {
			w.Header().Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			fmt.Fprintf(w, "<html><body>Results for %s</body></html>", html.EscapeString(q))
			return
		}
		w.Header().Set("Server", "Werkzeug/2.3.7")
		if strings.Contains(q, "'") && !strings.Contains(q, "<script>") {
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprint(w, `sqlite3.OperationalError: near "DROP": syntax error`)
			return
		}
		fmt.Fprintf(w, "<html><body>Results for %s</body></html>", q)
	})
	mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
		if vulnerable {
			fmt.Fprint(w, `{"data":"secret"}`)
			return
		}
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		_, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
			return []byte(serverSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprint(w, `{"data":"secret"}`)
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		if vulnerable {
			fmt.Fprint(w, `{"token":"abc"}`)
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid credentials"}`)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func ruleIDs(list []*findings.Finding) []string {
	ids := make([]string, 0, len(list))
	for _, f := range list {
		ids = append(ids, f.RuleID)
	}
	return ids
}

func TestParseTarget(t *testing.T) {
	_, err := ParseTarget("http://localhost:5000")
	assert.NoError(t, err)

	for _, target := range []string{"", "localhost:5000", "ftp://example.com", "/relative"} {
		_, err := ParseTarget(target)
		assert.Error(t, err, target)
	}
}

func TestResolve(t *testing.T) {
	got, err := resolve("http://example.com/app/", "/api/data", nil)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com/app/api/data", got)

	got, err = resolve("http://example.com", "", map[string][]string{"q": {"a b"}})
	require.NoError(t, err)
	assert.Equal(t, "http://example.com?q=a+b", got)
}

func TestSQLInjectionCheck(t *testing.T) {
	t.Run("error based injection is reported once per param", func(t *testing.T) {
		srv := newTargetServer(t, true)
		got, err := NewSQLInjectionCheck([]string{"q"}).Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "probe.sqli", got[0].RuleID)
		assert.Equal(t, findings.SeverityHigh, got[0].Severity)
		assert.Equal(t, []string{"CWE-89"}, got[0].CWE)
		assert.Equal(t, "?q", got[0].FilePath)
		assert.Equal(t, ToolName, got[0].Tool)
		assert.Equal(t, findings.CategoryDAST, got[0].Category)
	})

	t.Run("hardened endpoint is clean", func(t *testing.T) {
		srv := newTargetServer(t, false)
		got, err := NewSQLInjectionCheck([]string{"q"}).Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestReflectedXSSCheck(t *testing.T) {
	t.Run("unescaped reflection is reported", func(t *testing.T) {
		srv := newTargetServer(t, true)
		got, err := NewReflectedXSSCheck([]string{"q"}).Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "probe.xss", got[0].RuleID)
		assert.Equal(t, []string{"CWE-79"}, got[0].CWE)
	})

	t.Run("escaped reflection is safe", func(t *testing.T) {
		srv := newTargetServer(t, false)
		got, err := NewReflectedXSSCheck([]string{"q"}).Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestContainsInjectedScript(t *testing.T) {
	assert.True(t, containsInjectedScript("<p>hi</p><script>alert('xss')</script>"))
	assert.False(t, containsInjectedScript("<p>&lt;script&gt;alert('xss')&lt;/script&gt;</p>"))
	assert.False(t, containsInjectedScript("<textarea><script>alert('xss')</script></textarea>"))
	assert.False(t, containsInjectedScript("<script>console.log('ok')</script>"))
}

func TestAuthBypassCheck(t *testing.T) {
	t.Run("endpoint without authentication", func(t *testing.T) {
		srv := newTargetServer(t, true)
		got, err := NewAuthBypassCheck([]string{"/api/data"}, "/login").Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)

		ids := ruleIDs(got)
		assert.Contains(t, ids, "probe.auth.no-authorization-header")
		assert.Contains(t, ids, "probe.auth.alg-none-token")
		assert.Contains(t, ids, "probe.auth.expired-token")
		assert.Contains(t, ids, "probe.auth.login-injection")
		for _, f := range got {
			assert.Equal(t, findings.SeverityCritical, f.Severity)
		}
	})

	t.Run("endpoint that validates tokens", func(t *testing.T) {
		srv := newTargetServer(t, false)
		got, err := NewAuthBypassCheck([]string{"/api/data"}, "/login").Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("endpoint that accepts a default secret", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			_, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return []byte("your-secret-key-here"), nil
			}, jwt.WithValidMethods([]string{"HS256"}))
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		got, err := NewAuthBypassCheck([]string{"/api/data"}, "").Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, []string{"CWE-798"}, got[0].CWE)
		assert.Contains(t, got[0].Title, "your-secret-key-here")
	})

	t.Run("endpoint that ignores expiry", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/data", func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			_, err := jwt.Parse(raw, func(*jwt.Token) (interface{}, error) {
				return []byte("changeme"), nil
			}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithoutClaimsValidation())
			if err != nil {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.WriteHeader(http.StatusOK)
		})
		srv := httptest.NewServer(mux)
		defer srv.Close()

		got, err := NewAuthBypassCheck([]string{"/api/data"}, "").Run(context.Background(), srv.Client(), srv.URL)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.ElementsMatch(t, []string{"probe.auth.default-secret-token", "probe.auth.expired-token"}, ruleIDs(got))
		for _, f := range got {
			assert.Contains(t, f.Title, "changeme")
		}
	})
}

func TestEvaluateHeaders(t *testing.T) {
	t.Run("missing headers over https", func(t *testing.T) {
		h := http.Header{}
		h.Set("X-Powered-By", "PHP/8.1.2")
		got := evaluateHeaders(h, true)

		ids := ruleIDs(got)
		assert.ElementsMatch(t, []string{
			"probe.headers.content-security-policy",
			"probe.headers.strict-transport-security",
			"probe.headers.x-content-type-options",
			"probe.headers.x-frame-options",
			"probe.headers.disclosure.x-powered-by",
		}, ids)
	})

	t.Run("hardened plain http", func(t *testing.T) {
		h := http.Header{}
		h.Set("Content-Security-Policy", "default-src 'self'; frame-ancestors 'none'")
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Server", "nginx")
		assert.Empty(t, evaluateHeaders(h, false))
	})
}

type failingCheck struct{}

func (failingCheck) Name() string { return "failing" }

func (failingCheck) Run(context.Context, *http.Client, string) ([]*findings.Finding, error) {
	return nil, errors.New("boom")
}

func TestSuite(t *testing.T) {
	log := testutil.SetupTestLogger(t)

	t.Run("default checks against a vulnerable target", func(t *testing.T) {
		srv := newTargetServer(t, true)
		suite := NewSuite(Options{
			Params:         []string{"q"},
			ProtectedPaths: []string{"/api/data"},
			LoginPath:      "/login",
			Concurrency:    2,
		}, 5*time.Second, log)
		assert.Equal(t, []string{"headers", "sqli", "xss", "auth"}, suite.Checks())

		got, err := suite.Run(context.Background(), srv.URL)
		require.NoError(t, err)

		ids := ruleIDs(got)
		assert.Contains(t, ids, "probe.sqli")
		assert.Contains(t, ids, "probe.xss")
		assert.Contains(t, ids, "probe.auth.no-authorization-header")
		assert.Contains(t, ids, "probe.headers.content-security-policy")
		assert.Contains(t, ids, "probe.headers.disclosure.server")
	})

	t.Run("only header check without inputs", func(t *testing.T) {
		suite := NewSuite(Options{}, time.Second, log)
		assert.Equal(t, []string{"headers"}, suite.Checks())
	})

	t.Run("invalid target", func(t *testing.T) {
		_, err := NewSuite(Options{}, time.Second, log).Run(context.Background(), "not a url")
		assert.Error(t, err)
	})

	t.Run("check error is returned with partial findings", func(t *testing.T) {
		srv := newTargetServer(t, true)
		suite := NewSuiteWithChecks(srv.Client(), 1, log, NewSecurityHeadersCheck(), failingCheck{})
		got, err := suite.Run(context.Background(), srv.URL)
		assert.EqualError(t, err, "boom")
		assert.NotEmpty(t, got)
	})
}
