package findings

import (
	"errors"
	"fmt"
	"strings"

	gocvss30 "github.com/pandatix/go-cvss/30"
	gocvss31 "github.com/pandatix/go-cvss/31"
)

// ErrUnsupportedVector is returned for vectors that are not CVSS v3.x
var ErrUnsupportedVector = errors.New("unsupported CVSS vector")

// Score computes the base score of a CVSS v3.0 or v3.1 vector
func Score(vector string) (float64, error) {
	vector = strings.TrimSpace(vector)

	switch {
	case strings.HasPrefix(vector, "CVSS:3.1/"):
		cvss, err := gocvss31.ParseVector(vector)
		if err != nil {
			return 0, fmt.Errorf("failed to parse CVSS 3.1 vector: %w", err)
		}
		return cvss.BaseScore(), nil
	case strings.HasPrefix(vector, "CVSS:3.0/"):
		cvss, err := gocvss30.ParseVector(vector)
		if err != nil {
			return 0, fmt.Errorf("failed to parse CVSS 3.0 vector: %w", err)
		}
		return cvss.BaseScore(), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedVector, vector)
	}
}

// ApplyScore settles the severity of a finding.
// A parsable vector wins over a bare score, a bare score wins over the tool label.
func ApplyScore(f *Finding) {
	if f.CVSSVector != "" {
		if score, err := Score(f.CVSSVector); err == nil {
			f.CVSSScore = score
			f.Severity = SeverityFromScore(score)
			return
		}
	}
	if f.CVSSScore > 0 {
		f.Severity = SeverityFromScore(f.CVSSScore)
	}
}
