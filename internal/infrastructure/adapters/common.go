// Package adapters converts the JSON reports of external security tools
// into normalized findings. Parsers fill the descriptive fields only; identity,
// status and timestamps are assigned when findings are ingested.
package adapters

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// Parser converts a raw tool report into findings
type Parser func(report []byte) ([]*findings.Finding, error)

var cweRe = regexp.MustCompile(`(?i)CWE-?(\d+)`)

// safeLine clamps line numbers to the 1-based range
func safeLine(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// normalizeCWE turns "CWE-89: Improper...", "external/cwe/cwe-089" or "89" into "CWE-89"
func normalizeCWE(v string) string {
	v = strings.TrimSpace(v)
	if m := cweRe.FindStringSubmatch(v); m != nil {
		v = m[1]
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return ""
	}
	return "CWE-" + strconv.Itoa(n)
}

// toCWE accepts a string, a list of strings or null
func toCWE(v interface{}) []string {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = []string{t}
	case []string:
		raw = t
	case []interface{}:
		for _, e := range t {
			if s, ok := e.(string); ok {
				raw = append(raw, s)
			}
		}
	}
	return cweList(raw...)
}

func cweList(values ...string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, v := range values {
		cwe := normalizeCWE(v)
		if cwe == "" || seen[cwe] {
			continue
		}
		seen[cwe] = true
		out = append(out, cwe)
	}
	return out
}

// parseLineRange reads "12" or "12-14"
func parseLineRange(s string) (int, int) {
	s = strings.TrimSpace(s)
	startStr, endStr, found := strings.Cut(s, "-")
	start, _ := strconv.Atoi(strings.TrimSpace(startStr))
	end := start
	if found {
		if e, err := strconv.Atoi(strings.TrimSpace(endStr)); err == nil {
			end = e
		}
	}
	return safeLine(start), safeLine(end)
}

// truncate cuts s to at most n bytes without splitting a rune. Invalid UTF-8
// from the tool is replaced so the text can be stored.
func truncate(s string, n int) string {
	s = strings.ToValidUTF8(s, "\uFFFD")
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

// sortedKeys returns map keys in a stable order
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
