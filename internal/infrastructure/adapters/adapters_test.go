//go:build unit
// +build unit

package adapters

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const semgrepFixture = `{
  "results": [
    {
      "check_id": "python.flask.security.injection.tainted-sql-string",
      "path": "./src/chatbot_core.py",
      "start": {"line": 42},
      "end": {"line": 44},
      "extra": {
        "message": "User data flows into a SQL string",
        "severity": "ERROR",
        "metadata": {
          "cwe": ["CWE-89: Improper Neutralization of Special Elements used in an SQL Command"],
          "references": ["https://owasp.org/Top10/A03_2021-Injection"]
        }
      }
    },
    {
      "check_id": "python.lang.best-practice.open-never-closed",
      "path": "src/util.py",
      "start": {"line": 0},
      "end": {"line": 0},
      "extra": {"message": "file not closed", "severity": "INFO", "metadata": {"cwe": null}}
    }
  ]
}`

func TestParseSemgrep(t *testing.T) {
	out, err := ParseSemgrep([]byte(semgrepFixture))
	require.NoError(t, err)
	require.Len(t, out, 2)

	f := out[0]
	assert.Equal(t, "semgrep", f.Tool)
	assert.Equal(t, findings.CategorySAST, f.Category)
	assert.Equal(t, findings.SeverityHigh, f.Severity)
	assert.Equal(t, "src/chatbot_core.py", f.FilePath)
	assert.Equal(t, 42, f.StartLine)
	assert.Equal(t, 44, f.EndLine)
	assert.Equal(t, []string{"CWE-89"}, f.CWE)
	assert.Equal(t, "https://owasp.org/Top10/A03_2021-Injection", f.HelpURI)

	assert.Equal(t, findings.SeverityInfo, out[1].Severity)
	assert.Equal(t, 1, out[1].StartLine)
	assert.Nil(t, out[1].CWE)
}

func TestParseSemgrep_Invalid(t *testing.T) {
	_, err := ParseSemgrep([]byte("not json"))
	require.Error(t, err)
}

const trivyFixture = `{
  "Results": [
    {
      "Target": "requirements.txt",
      "Vulnerabilities": [
        {
          "VulnerabilityID": "CVE-2023-30861",
          "PkgName": "flask",
          "InstalledVersion": "2.0.1",
          "FixedVersion": "2.2.5",
          "Title": "Possible disclosure of permanent session cookie",
          "Severity": "HIGH",
          "PrimaryURL": "https://avd.aquasec.com/nvd/cve-2023-30861",
          "CweIDs": ["CWE-539"],
          "CVSS": {
            "ghsa": {"V3Vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:N/A:N", "V3Score": 7.5},
            "nvd": {"V3Vector": "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", "V3Score": 9.8}
          }
        }
      ]
    },
    {
      "Target": "../scan/Dockerfile",
      "Misconfigurations": [
        {
          "ID": "DS002",
          "Title": "Image user should not be 'root'",
          "Message": "Specify at least 1 USER command",
          "Severity": "HIGH",
          "References": ["https://avd.aquasec.com/misconfig/ds002"],
          "CauseMetadata": {"StartLine": 0, "EndLine": 0}
        }
      ]
    }
  ]
}`

func TestParseTrivy(t *testing.T) {
	out, err := ParseTrivy([]byte(trivyFixture))
	require.NoError(t, err)
	require.Len(t, out, 2)

	vuln := out[0]
	assert.Equal(t, findings.CategorySCA, vuln.Category)
	assert.Equal(t, "CVE-2023-30861", vuln.RuleID)
	assert.Equal(t, "flask@2.0.1: Possible disclosure of permanent session cookie", vuln.Title)
	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H", vuln.CVSSVector)
	assert.Equal(t, 9.8, vuln.CVSSScore)
	assert.Contains(t, vuln.Message, "Fixed in 2.2.5")
	assert.Equal(t, []string{"CWE-539"}, vuln.CWE)

	misconfig := out[1]
	assert.Equal(t, findings.CategoryIAC, misconfig.Category)
	assert.Equal(t, "Dockerfile", misconfig.FilePath)
	assert.Equal(t, 1, misconfig.StartLine)
	assert.Equal(t, "https://avd.aquasec.com/misconfig/ds002", misconfig.HelpURI)
}

func TestTrivyVector_FallsBackToVendor(t *testing.T) {
	vector, score := trivyVector(map[string]trivyCVSS{
		"redhat": {V3Vector: "CVSS:3.1/AV:L/AC:L/PR:L/UI:N/S:U/C:H/I:N/A:N", V3Score: 5.5},
	})
	assert.Equal(t, "CVSS:3.1/AV:L/AC:L/PR:L/UI:N/S:U/C:H/I:N/A:N", vector)
	assert.Equal(t, 5.5, score)

	vector, score = trivyVector(nil)
	assert.Empty(t, vector)
	assert.Zero(t, score)
}

func TestParseKICS(t *testing.T) {
	tests := []struct {
		name   string
		report string
	}{
		{
			name: "lower case root key",
			report: `{"queries": [{"query_name": "Privileged Container", "query_id": "dd29336b", "query_url": "https://docs.kics.io",
				"severity": "HIGH", "description": "Containers should not run privileged", "cwe": "250",
				"files": [{"file_name": "../../scan/k8s/deploy.yaml", "line": 21}]}]}`,
		},
		{
			name: "upper case root key",
			report: `{"Queries": [{"query_name": "Privileged Container", "query_id": "dd29336b", "query_url": "https://docs.kics.io",
				"severity": "HIGH", "description": "Containers should not run privileged", "cwe": "250",
				"files": [{"file_name": "../../scan/k8s/deploy.yaml", "line": 21}]}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ParseKICS([]byte(tt.report))
			require.NoError(t, err)
			require.Len(t, out, 1)

			f := out[0]
			assert.Equal(t, "kics", f.Tool)
			assert.Equal(t, findings.CategoryIAC, f.Category)
			assert.Equal(t, "k8s/deploy.yaml", f.FilePath)
			assert.Equal(t, 21, f.StartLine)
			assert.Equal(t, findings.SeverityHigh, f.Severity)
			assert.Equal(t, []string{"CWE-250"}, f.CWE)
		})
	}
}

func TestParseKICS_Invalid(t *testing.T) {
	_, err := ParseKICS([]byte("{"))
	require.Error(t, err)
}

func TestParseSnyk(t *testing.T) {
	single := `{
	  "displayTargetFile": "package-lock.json",
	  "vulnerabilities": [{
	    "id": "SNYK-JS-LODASH-567746",
	    "title": "Prototype Pollution",
	    "severity": "high",
	    "cvssScore": 7.2,
	    "CVSSv3": "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:H/I:H/A:H",
	    "packageName": "lodash",
	    "version": "4.17.15",
	    "from": ["app@1.0.0", "lodash@4.17.15"],
	    "identifiers": {"CWE": ["CWE-1321"], "CVE": ["CVE-2020-8203"]}
	  }]
	}`

	out, err := ParseSnyk([]byte(single))
	require.NoError(t, err)
	require.Len(t, out, 1)

	f := out[0]
	assert.Equal(t, "snyk", f.Tool)
	assert.Equal(t, findings.CategorySCA, f.Category)
	assert.Equal(t, "lodash@4.17.15: Prototype Pollution", f.Title)
	assert.Equal(t, 7.2, f.CVSSScore)
	assert.Equal(t, "CVSS:3.1/AV:N/AC:L/PR:H/UI:N/S:U/C:H/I:H/A:H", f.CVSSVector)
	assert.Equal(t, []string{"CWE-1321"}, f.CWE)
	assert.Contains(t, f.Message, "app@1.0.0 > lodash@4.17.15")
	assert.Equal(t, "https://security.snyk.io/vuln/SNYK-JS-LODASH-567746", f.HelpURI)

	multi := `[{"displayTargetFile": "a/package-lock.json", "vulnerabilities": [{"id": "A", "severity": "low", "packageName": "x", "version": "1"}]},
	           {"displayTargetFile": "b/go.mod", "vulnerabilities": [{"id": "B", "severity": "medium", "packageName": "y", "version": "2"}]}]`
	out, err = ParseSnyk([]byte(multi))
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b/go.mod", out[1].FilePath)
	assert.Equal(t, findings.SeverityMedium, out[1].Severity)
}

func TestParseZAP(t *testing.T) {
	report := `{"site": [{"@name": "http://localhost:5000", "alerts": [
	  {"pluginid": "10038", "alertRef": "10038-1", "alert": "Content Security Policy (CSP) Header Not Set",
	   "riskcode": "2", "desc": "<p>CSP is an added layer of security</p>", "solution": "<p>Set the header</p>",
	   "reference": "<p>https://developer.mozilla.org/en-US/docs/Web/Security/CSP</p><p>https://owasp.org</p>",
	   "cweid": "693", "instances": [{"uri": "http://localhost:5000/", "method": "GET", "param": ""}]},
	  {"pluginid": "10036", "alert": "Server Leaks Version Information", "riskcode": "1", "cweid": "200", "instances": []},
	  {"pluginid": "10027", "alert": "Information Disclosure - Suspicious Comments", "riskcode": "0", "cweid": "-1"},
	  {"pluginid": "40012", "alert": "Cross Site Scripting (Reflected)", "riskcode": "3", "cweid": "79",
	   "instances": [{"uri": "http://localhost:5000/search?q=x", "method": "GET", "param": "q"}]}
	]}]}`

	out, err := ParseZAP([]byte(report))
	require.NoError(t, err)
	require.Len(t, out, 4)

	csp := out[0]
	assert.Equal(t, findings.CategoryDAST, csp.Category)
	assert.Equal(t, "10038-1", csp.RuleID)
	assert.Equal(t, findings.SeverityMedium, csp.Severity)
	assert.Equal(t, "http://localhost:5000", csp.FilePath)
	assert.Equal(t, []string{"CWE-693"}, csp.CWE)
	assert.Equal(t, "https://developer.mozilla.org/en-US/docs/Web/Security/CSP", csp.HelpURI)
	assert.Contains(t, csp.Message, "Solution: Set the header")
	assert.Contains(t, csp.Message, "GET http://localhost:5000/")

	assert.Equal(t, "10036", out[1].RuleID)
	assert.Equal(t, findings.SeverityLow, out[1].Severity)
	assert.Equal(t, findings.SeverityInfo, out[2].Severity)
	assert.Nil(t, out[2].CWE)
	assert.Equal(t, findings.SeverityHigh, out[3].Severity)
	assert.Contains(t, out[3].Message, "(param q)")
}

func TestParseGosec(t *testing.T) {
	report := `{"Issues": [
	  {"severity": "HIGH", "confidence": "HIGH", "cwe": {"id": "89", "url": "https://cwe.mitre.org/data/definitions/89.html"},
	   "rule_id": "G201", "details": "SQL string formatting", "file": "./internal/db/query.go", "line": "12-14"},
	  {"severity": "MEDIUM", "confidence": "LOW", "cwe": {"id": "22"}, "rule_id": "G304",
	   "details": "Potential file inclusion via variable", "file": "main.go", "line": "7"}
	]}`

	out, err := ParseGosec([]byte(report))
	require.NoError(t, err)
	require.Len(t, out, 2)

	assert.Equal(t, "G201", out[0].RuleID)
	assert.Equal(t, "internal/db/query.go", out[0].FilePath)
	assert.Equal(t, 12, out[0].StartLine)
	assert.Equal(t, 14, out[0].EndLine)
	assert.Equal(t, []string{"CWE-89"}, out[0].CWE)
	assert.Equal(t, findings.SeverityHigh, out[0].Severity)

	assert.Equal(t, 7, out[1].StartLine)
	assert.Equal(t, 7, out[1].EndLine)
	assert.Contains(t, out[1].Message, "confidence LOW")
}

func TestParseGosec_TruncatesOnRuneBoundary(t *testing.T) {
	details := strings.Repeat("€", 200)
	report := `{"Issues": [{"severity": "LOW", "confidence": "HIGH", "rule_id": "G104", "details": "` + details + `", "file": "main.go", "line": "3"}]}`

	out, err := ParseGosec([]byte(report))
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.True(t, utf8.ValidString(out[0].Title))
	assert.LessOrEqual(t, len(out[0].Title), 512)
	assert.Equal(t, strings.Repeat("€", 170), out[0].Title)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "ab", truncate("abc", 2))
	assert.Equal(t, "ü", truncate("üü", 3))
	assert.Equal(t, "", truncate("€", 2))
	assert.Equal(t, "a\uFFFDb", truncate("a\xffb", 10))
}

func TestParseSARIF(t *testing.T) {
	report := `{
	  "version": "2.1.0",
	  "runs": [{
	    "tool": {"driver": {"name": "CodeQL", "rules": [
	      {"id": "py/sql-injection", "shortDescription": {"text": "SQL query built from user-controlled sources"},
	       "helpUri": "https://codeql.github.com/py-sql-injection",
	       "properties": {"security-severity": "8.8", "tags": ["security", "external/cwe/cwe-089"]}}
	    ]}},
	    "results": [
	      {"ruleId": "py/sql-injection", "level": "error", "message": {"text": "This query depends on a user-provided value."},
	       "locations": [{"physicalLocation": {"artifactLocation": {"uri": "file://./src/chatbot_core.py"}, "region": {"startLine": 30}}}]},
	      {"ruleId": "py/unused-import", "level": "note", "message": {"text": "Import is not used."}}
	    ]
	  }]
	}`

	out, err := ParseSARIF([]byte(report))
	require.NoError(t, err)
	require.Len(t, out, 2)

	sqli := out[0]
	assert.Equal(t, "codeql", sqli.Tool)
	assert.Equal(t, "SQL query built from user-controlled sources", sqli.Title)
	assert.Equal(t, 8.8, sqli.CVSSScore)
	assert.Equal(t, []string{"CWE-89"}, sqli.CWE)
	assert.Equal(t, "src/chatbot_core.py", sqli.FilePath)
	assert.Equal(t, 30, sqli.StartLine)
	assert.Equal(t, 30, sqli.EndLine)
	assert.Equal(t, findings.SeverityHigh, sqli.Severity)

	unused := out[1]
	assert.Equal(t, "py/unused-import", unused.Title)
	assert.Equal(t, findings.SeverityLow, unused.Severity)
	assert.Zero(t, unused.CVSSScore)
	assert.Equal(t, 1, unused.StartLine)
}

func TestParseSARIF_RejectsOtherVersions(t *testing.T) {
	_, err := ParseSARIF([]byte(`{"version": "1.0.0", "runs": [{"tool": {"driver": {"name": "x"}}}]}`))
	require.Error(t, err)
}

func TestNormalizeCWE(t *testing.T) {
	tests := map[string]string{
		"CWE-79":               "CWE-79",
		"cwe-079":              "CWE-79",
		"89":                   "CWE-89",
		"external/cwe/cwe-022": "CWE-22",
		"CWE-89: SQL":          "CWE-89",
		"-1":                   "",
		"0":                    "",
		"security":             "",
		"":                     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeCWE(in), in)
	}
}

func TestParseLineRange(t *testing.T) {
	start, end := parseLineRange("12-14")
	assert.Equal(t, 12, start)
	assert.Equal(t, 14, end)

	start, end = parseLineRange("")
	assert.Equal(t, 1, start)
	assert.Equal(t, 1, end)
}
