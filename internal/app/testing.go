//go:build integration
// +build integration

package app

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/connector"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/cryptography"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/export"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/persistence"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/scanner"
	"github.com/MGTheTrain/scan-warden/internal/infrastructure/throttle"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/testutil"

	"github.com/stretchr/testify/require"
)

// Test constants
const (
	TestTool        = "stub"
	TestTarget      = "./src"
	TestWorkers     = 2
	TestToolVersion = "test"
)

// StubScanner returns a fixed set of findings on every scan
type StubScanner struct {
	mu       sync.Mutex
	name     string
	kind     scans.Kind
	findings []findings.Finding
	err      error
	calls    int
}

// NewStubScanner creates a SAST stub scanner
func NewStubScanner(name string) *StubScanner {
	return &StubScanner{name: name, kind: scans.KindSAST}
}

// Name returns the tool name
func (s *StubScanner) Name() string { return s.name }

// Kind returns the scan kind
func (s *StubScanner) Kind() scans.Kind { return s.kind }

// SetFindings replaces the findings reported by the next scans
func (s *StubScanner) SetFindings(list ...findings.Finding) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.findings = list
}

// SetError makes the next scans fail
func (s *StubScanner) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// Calls returns the number of scans run
func (s *StubScanner) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// Scan returns copies of the configured findings
func (s *StubScanner) Scan(ctx context.Context, target string) ([]*findings.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.copies(), nil
}

// Parse accepts the literal report "ok" and rejects everything else
func (s *StubScanner) Parse(report []byte) ([]*findings.Finding, error) {
	if string(report) != "ok" {
		return nil, errors.New("not a stub report")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copies(), nil
}

func (s *StubScanner) copies() []*findings.Finding {
	list := make([]*findings.Finding, 0, len(s.findings))
	for i := range s.findings {
		f := s.findings[i]
		list = append(list, &f)
	}
	return list
}

// NewTestFinding creates raw scanner output as it arrives from an adapter
func NewTestFinding(ruleID, filePath string, severity findings.Severity) findings.Finding {
	return findings.Finding{
		Tool:      TestTool,
		Category:  findings.CategorySAST,
		RuleID:    ruleID,
		Title:     "Issue " + ruleID,
		Severity:  severity,
		FilePath:  filePath,
		StartLine: 10,
	}
}

// TestServices holds all application services and dependencies for testing
type TestServices struct {
	IngestService   findings.IngestService
	FindingService  findings.FindingService
	ScanService     scans.ScanService
	ScheduleService scans.ScheduleService
	ReportService   reports.ReportService

	Scanner   *StubScanner
	Registry  *scanner.Registry
	Policy    *sla.Policy
	Connector *connector.LocalReportConnector
	DBContext *persistence.TestContext
}

// SetupTestServices initializes all application services on a sqlite database
func SetupTestServices(t *testing.T) *TestServices {
	t.Helper()

	logger := testutil.SetupTestLogger(t)
	dbContext := persistence.SetupTestDB(t, config.SqliteDbType)

	stub := NewStubScanner(TestTool)
	registry := scanner.NewRegistry(stub)
	policy := sla.DefaultPolicy()

	reportConnector, err := connector.NewLocalReportConnector(t.TempDir(), logger)
	require.NoError(t, err, "Failed to create report connector")

	privateKey, err := cryptography.GenerateKeys()
	require.NoError(t, err)
	signer, err := cryptography.NewECDSASigner(privateKey, nil, logger)
	require.NoError(t, err, "Failed to create signer")

	ingestService, err := NewIngestService(dbContext.FindingRepo, policy, logger)
	require.NoError(t, err, "Failed to create IngestService")

	findingService, err := NewFindingService(dbContext.FindingRepo, policy, logger)
	require.NoError(t, err, "Failed to create FindingService")

	scanService, err := NewScanService(registry, dbContext.ScanRepo, ingestService, throttle.NoopThrottle{}, TestWorkers, logger)
	require.NoError(t, err, "Failed to create ScanService")
	t.Cleanup(scanService.Wait)

	scheduleService, err := NewScheduleService(dbContext.ScheduleRepo, registry, nil, logger)
	require.NoError(t, err, "Failed to create ScheduleService")

	reportService, err := NewReportService(
		dbContext.FindingRepo,
		dbContext.ReportRepo,
		reportConnector,
		export.NewRenderer(TestToolVersion),
		signer,
		policy,
		logger,
	)
	require.NoError(t, err, "Failed to create ReportService")

	return &TestServices{
		IngestService:   ingestService,
		FindingService:  findingService,
		ScanService:     scanService,
		ScheduleService: scheduleService,
		ReportService:   reportService,
		Scanner:         stub,
		Registry:        registry,
		Policy:          policy,
		Connector:       reportConnector,
		DBContext:       dbContext,
	}
}
