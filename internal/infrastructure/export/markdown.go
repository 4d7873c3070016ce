package export

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
)

var tableStatuses = []findings.Status{
	findings.StatusOpen,
	findings.StatusResolved,
	findings.StatusAccepted,
	findings.StatusFalsePositive,
}

// RenderMarkdown writes a human readable report
func RenderMarkdown(summary *reports.Summary, list []*findings.Finding) ([]byte, error) {
	if summary == nil {
		return nil, fmt.Errorf("summary is required for markdown reports")
	}

	var b bytes.Buffer
	fmt.Fprintf(&b, "# Security Findings Report\n\nGenerated: %s\n\nTotal findings: %d\n\n",
		summary.GeneratedAt.UTC().Format(time.RFC3339), summary.Total)

	b.WriteString("## Findings by severity\n\n| Severity |")
	for _, st := range tableStatuses {
		fmt.Fprintf(&b, " %s |", st)
	}
	b.WriteString("\n|---|")
	b.WriteString(strings.Repeat("---|", len(tableStatuses)))
	b.WriteString("\n")
	for _, sev := range findings.Severities {
		fmt.Fprintf(&b, "| %s |", sev)
		for _, st := range tableStatuses {
			fmt.Fprintf(&b, " %d |", summary.BySeverity[sev][st])
		}
		b.WriteString("\n")
	}

	b.WriteString("\n## Findings by tool\n\n| Tool | Count |\n|---|---|\n")
	tools := make([]string, 0, len(summary.ByTool))
	for tool := range summary.ByTool {
		tools = append(tools, tool)
	}
	sort.Strings(tools)
	for _, tool := range tools {
		fmt.Fprintf(&b, "| %s | %d |\n", escapeCell(tool), summary.ByTool[tool])
	}

	if summary.SLA != nil {
		fmt.Fprintf(&b, "\n## SLA compliance\n\nOverall compliance: %.1f%%, overdue: %d\n\n",
			summary.SLA.CompliancePct, summary.SLA.TotalOverdue)
		b.WriteString("| Severity | Window | Open | Overdue | Resolved in time | Resolved late | Compliance |\n")
		b.WriteString("|---|---|---|---|---|---|---|\n")
		for _, s := range summary.SLA.Severities {
			window := "none"
			if s.Window > 0 {
				window = s.Window.String()
			}
			fmt.Fprintf(&b, "| %s | %s | %d | %d | %d | %d | %.1f%% |\n",
				s.Severity, window, s.Open, s.Overdue, s.ResolvedInTime, s.ResolvedLate, s.CompliancePct)
		}
	}

	if len(summary.TopOpen) > 0 {
		b.WriteString("\n## Top open findings\n\n| Severity | CVSS | Tool | Title | Location | Due |\n|---|---|---|---|---|---|\n")
		for _, f := range summary.TopOpen {
			writeFindingRow(&b, f)
		}
	}

	if len(list) > 0 {
		b.WriteString("\n## All findings\n\n| Severity | CVSS | Tool | Title | Location | Due |\n|---|---|---|---|---|---|\n")
		for _, f := range list {
			writeFindingRow(&b, f)
		}
	}

	return b.Bytes(), nil
}

func writeFindingRow(b *bytes.Buffer, f *findings.Finding) {
	due := "-"
	if f.DueAt != nil {
		due = f.DueAt.UTC().Format("2006-01-02")
	}
	location := f.FilePath
	if f.StartLine > 0 {
		location = fmt.Sprintf("%s:%d", f.FilePath, f.StartLine)
	}
	fmt.Fprintf(b, "| %s | %.1f | %s | %s | %s | %s |\n",
		f.Severity, f.CVSSScore, escapeCell(f.Tool), escapeCell(f.Title), escapeCell(location), due)
}

// escapeCell keeps pipes and newlines from breaking table rows
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}
