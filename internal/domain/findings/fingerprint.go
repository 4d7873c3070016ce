package findings

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
)

const fingerprintSeparator = "\x1f"

// Fingerprint identifies the same issue across scans. Line numbers are left out
// so that code moving within a file does not create a new finding.
func Fingerprint(tool, ruleID, target, filePath, title string) string {
	parts := []string{
		normalizeToken(tool),
		normalizeToken(ruleID),
		normalizeToken(target),
		NormalizePath(filePath),
		normalizeToken(title),
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, fingerprintSeparator)))
	return hex.EncodeToString(sum[:])
}

// NormalizePath strips relative and container mount prefixes from a reported path
func NormalizePath(p string) string {
	p = filepath.ToSlash(strings.TrimSpace(p))
	for strings.HasPrefix(p, "../") {
		p = strings.TrimPrefix(p, "../")
	}
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/scan/")
	p = strings.TrimPrefix(p, "scan/")
	return p
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
