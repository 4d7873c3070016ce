package sla

import (
	"fmt"
	"sync"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
)

// Default remediation windows
const (
	DefaultCritical = 24 * time.Hour
	DefaultHigh     = 7 * 24 * time.Hour
	DefaultMedium   = 30 * 24 * time.Hour
	DefaultLow      = 90 * 24 * time.Hour
)

// Policy maps a severity to its remediation window.
// A severity without a window has no due date.
type Policy struct {
	mu      sync.RWMutex
	windows map[findings.Severity]time.Duration
}

// DefaultPolicy returns the standard remediation windows. INFO findings are not tracked.
func DefaultPolicy() *Policy {
	return &Policy{
		windows: map[findings.Severity]time.Duration{
			findings.SeverityCritical: DefaultCritical,
			findings.SeverityHigh:     DefaultHigh,
			findings.SeverityMedium:   DefaultMedium,
			findings.SeverityLow:      DefaultLow,
		},
	}
}

// NewPolicy builds a policy from explicit windows. Non-positive windows disable tracking for that severity.
func NewPolicy(windows map[findings.Severity]time.Duration) *Policy {
	p := &Policy{windows: make(map[findings.Severity]time.Duration, len(windows))}
	for sev, d := range windows {
		if d > 0 {
			p.windows[sev] = d
		}
	}
	return p
}

// Override replaces the window of a single severity
func (p *Policy) Override(sev findings.Severity, window time.Duration) error {
	if sev.Rank() == 0 && sev != findings.SeverityInfo {
		return fmt.Errorf("unknown severity %q", sev)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if window <= 0 {
		delete(p.windows, sev)
		return nil
	}
	p.windows[sev] = window
	return nil
}

// Window returns the remediation window of a severity
func (p *Policy) Window(sev findings.Severity) (time.Duration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.windows[sev]
	return d, ok
}

// DueAt returns the remediation deadline or nil when the severity is untracked
func (p *Policy) DueAt(sev findings.Severity, firstSeen time.Time) *time.Time {
	d, ok := p.Window(sev)
	if !ok {
		return nil
	}
	due := firstSeen.Add(d)
	return &due
}
