package reports

import (
	"sort"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
)

// DefaultTopN is the number of open findings highlighted in a summary
const DefaultTopN = 10

// Summary aggregates the tracked findings for reporting
type Summary struct {
	GeneratedAt time.Time                                     `json:"generated_at"`
	Total       int                                           `json:"total"`
	BySeverity  map[findings.Severity]map[findings.Status]int `json:"by_severity"`
	ByTool      map[string]int                                `json:"by_tool"`
	ByCategory  map[findings.Category]int                     `json:"by_category"`
	TopOpen     []*findings.Finding                           `json:"top_open"`
	SLA         *sla.Report                                   `json:"sla"`
}

// Summarize builds a Summary over all findings
func Summarize(all []*findings.Finding, policy *sla.Policy, now time.Time, topN int) *Summary {
	s := &Summary{
		GeneratedAt: now,
		Total:       len(all),
		BySeverity:  make(map[findings.Severity]map[findings.Status]int),
		ByTool:      make(map[string]int),
		ByCategory:  make(map[findings.Category]int),
	}

	var open []*findings.Finding
	for _, f := range all {
		if s.BySeverity[f.Severity] == nil {
			s.BySeverity[f.Severity] = make(map[findings.Status]int)
		}
		s.BySeverity[f.Severity][f.Status]++
		s.ByTool[f.Tool]++
		s.ByCategory[f.Category]++
		if f.Status == findings.StatusOpen {
			open = append(open, f)
		}
	}

	SortByPriority(open)
	if topN > 0 && len(open) > topN {
		open = open[:topN]
	}
	s.TopOpen = open
	s.SLA = policy.Evaluate(all, now)

	return s
}

// SortByPriority orders findings by severity, then CVSS score, then age (oldest first)
func SortByPriority(fs []*findings.Finding) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.CVSSScore != b.CVSSScore {
			return a.CVSSScore > b.CVSSScore
		}
		return a.FirstSeen.Before(b.FirstSeen)
	})
}
