//go:build integration
// +build integration

package persistence

import (
	"strings"
	"testing"
	"time"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/config"
	"github.com/MGTheTrain/scan-warden/internal/pkg/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// Test constants
const (
	TestToolSemgrep = "semgrep"
	TestToolTrivy   = "trivy"
	TestTarget      = "./src"
)

// TestContext holds test database and repositories
type TestContext struct {
	DB           *gorm.DB
	FindingRepo  findings.FindingRepository
	ScanRepo     scans.ScanRepository
	ScheduleRepo scans.ScheduleRepository
	ReportRepo   reports.ReportRepository
}

// SetupTestDB initializes a migrated test database with automatic cleanup
func SetupTestDB(t *testing.T, dbType string) *TestContext {
	t.Helper()

	var settings config.DatabaseSettings
	cleanupFunc := func() {}

	switch dbType {
	case config.SqliteDbType:
		settings = config.DatabaseSettings{
			Type: config.SqliteDbType,
			DSN:  ":memory:",
		}

	case config.PostgresDbType:
		uniqueDBName := "test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:16]
		settings = config.DatabaseSettings{
			Type:   config.PostgresDbType,
			DSN:    "user=postgres password=postgres host=localhost port=5432 sslmode=disable",
			DBName: uniqueDBName,
		}
		cleanupFunc = func() {
			adminDSN := "user=postgres password=postgres host=localhost port=5432 dbname=postgres sslmode=disable"
			_ = DropDatabase(adminDSN, uniqueDBName)
		}

	default:
		t.Fatalf("Unsupported database type: %s", dbType)
	}

	db, err := NewDBConnection(settings)
	require.NoError(t, err, "Failed to create database connection")

	t.Cleanup(func() {
		_ = CloseDB(db)
		cleanupFunc()
	})

	require.NoError(t, Migrate(db), "Failed to migrate schema")

	log := testutil.SetupTestLogger(t)

	findingRepo, err := NewGormFindingRepository(db, log)
	require.NoError(t, err)
	scanRepo, err := NewGormScanRepository(db, log)
	require.NoError(t, err)
	scheduleRepo, err := NewGormScheduleRepository(db, log)
	require.NoError(t, err)
	reportRepo, err := NewGormReportRepository(db, log)
	require.NoError(t, err)

	return &TestContext{
		DB:           db,
		FindingRepo:  findingRepo,
		ScanRepo:     scanRepo,
		ScheduleRepo: scheduleRepo,
		ReportRepo:   reportRepo,
	}
}

// CreateTestFinding creates an open finding with default values
func CreateTestFinding(t *testing.T, tool, title string, severity findings.Severity) *findings.Finding {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	return &findings.Finding{
		ID:          uuid.NewString(),
		ScanID:      uuid.NewString(),
		Tool:        tool,
		Category:    findings.CategorySAST,
		RuleID:      "rule-" + strings.ToLower(string(severity)),
		Title:       title,
		Severity:    severity,
		Target:      TestTarget,
		FilePath:    "app/main.py",
		StartLine:   1,
		Fingerprint: findings.Fingerprint(tool, "rule-"+strings.ToLower(string(severity)), TestTarget, "app/main.py", title),
		Status:      findings.StatusOpen,
		FirstSeen:   now,
		LastSeen:    now,
	}
}

// CreateTestScanJob creates a queued manual scan job
func CreateTestScanJob(t *testing.T, tool string) *scans.ScanJob {
	t.Helper()

	return &scans.ScanJob{
		ID:       uuid.NewString(),
		Tool:     tool,
		Kind:     scans.KindSAST,
		Target:   TestTarget,
		Status:   scans.StatusQueued,
		Trigger:  scans.TriggerManual,
		QueuedAt: time.Now().UTC(),
	}
}
