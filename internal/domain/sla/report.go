package sla

import (
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// SeverityStats holds SLA figures for one severity
type SeverityStats struct {
	Severity       findings.Severity `json:"severity"`
	Window         time.Duration     `json:"window"`
	Open           int               `json:"open"`
	Overdue        int               `json:"overdue"`
	ResolvedInTime int               `json:"resolved_in_time"`
	ResolvedLate   int               `json:"resolved_late"`
	CompliancePct  float64           `json:"compliance_pct"`
	MeanTimeToFix  time.Duration     `json:"mean_time_to_fix"`
}

// Report is the SLA compliance snapshot at a point in time
type Report struct {
	GeneratedAt   time.Time       `json:"generated_at"`
	Severities    []SeverityStats `json:"severities"`
	TotalOverdue  int             `json:"total_overdue"`
	CompliancePct float64         `json:"compliance_pct"`
}

// Evaluate computes SLA compliance for the given findings.
// Accepted and false positive findings are excluded.
func (p *Policy) Evaluate(all []*findings.Finding, now time.Time) *Report {
	type acc struct {
		stats    SeverityStats
		fixTotal time.Duration
	}

	buckets := make(map[findings.Severity]*acc, len(findings.Severities))
	for _, sev := range findings.Severities {
		window, _ := p.Window(sev)
		buckets[sev] = &acc{stats: SeverityStats{Severity: sev, Window: window}}
	}

	for _, f := range all {
		b, ok := buckets[f.Severity]
		if !ok {
			continue
		}
		switch f.Status {
		case findings.StatusOpen:
			b.stats.Open++
			if f.IsOverdue(now) {
				b.stats.Overdue++
			}
		case findings.StatusResolved:
			if f.ResolvedAt == nil {
				continue
			}
			b.fixTotal += f.ResolvedAt.Sub(f.FirstSeen)
			if f.DueAt != nil && f.ResolvedAt.After(*f.DueAt) {
				b.stats.ResolvedLate++
			} else {
				b.stats.ResolvedInTime++
			}
		}
	}

	report := &Report{GeneratedAt: now}
	var inTime, considered int
	for _, sev := range findings.Severities {
		b := buckets[sev]
		resolved := b.stats.ResolvedInTime + b.stats.ResolvedLate
		b.stats.CompliancePct = compliance(b.stats.ResolvedInTime, resolved+b.stats.Overdue)
		if resolved > 0 {
			b.stats.MeanTimeToFix = b.fixTotal / time.Duration(resolved)
		}
		inTime += b.stats.ResolvedInTime
		considered += resolved + b.stats.Overdue
		report.TotalOverdue += b.stats.Overdue
		report.Severities = append(report.Severities, b.stats)
	}
	report.CompliancePct = compliance(inTime, considered)

	return report
}

func compliance(ok, total int) float64 {
	if total == 0 {
		return 100
	}
	return float64(ok) * 100 / float64(total)
}
