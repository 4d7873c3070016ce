//go:build unit
// +build unit

package v1

import (
	"context"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/domain/sla"

	"github.com/stretchr/testify/mock"
)

// MockScanService is a mock implementation of ScanService
type MockScanService struct {
	mock.Mock
}

func (m *MockScanService) Trigger(ctx context.Context, tool, target string, trigger scans.Trigger, scheduleID *string) (*scans.ScanJob, error) {
	args := m.Called(ctx, tool, target, trigger, scheduleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scans.ScanJob), args.Error(1)
}

func (m *MockScanService) Run(ctx context.Context, job *scans.ScanJob) error {
	args := m.Called(ctx, job)
	return args.Error(0)
}

func (m *MockScanService) Import(ctx context.Context, tool, target string, report []byte) (*scans.ScanJob, error) {
	args := m.Called(ctx, tool, target, report)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scans.ScanJob), args.Error(1)
}

func (m *MockScanService) List(ctx context.Context, query *scans.ScanQuery) ([]*scans.ScanJob, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scans.ScanJob), args.Error(1)
}

func (m *MockScanService) GetByID(ctx context.Context, jobID string) (*scans.ScanJob, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scans.ScanJob), args.Error(1)
}

func (m *MockScanService) Tools() []string {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]string)
}

func (m *MockScanService) Wait() {
	m.Called()
}

// MockFindingService is a mock implementation of FindingService
type MockFindingService struct {
	mock.Mock
}

func (m *MockFindingService) List(ctx context.Context, query *findings.FindingQuery) ([]*findings.Finding, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*findings.Finding), args.Error(1)
}

func (m *MockFindingService) GetByID(ctx context.Context, findingID string) (*findings.Finding, error) {
	args := m.Called(ctx, findingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*findings.Finding), args.Error(1)
}

func (m *MockFindingService) Counts(ctx context.Context) ([]findings.SeverityStatusCount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]findings.SeverityStatusCount), args.Error(1)
}

func (m *MockFindingService) UpdateStatus(ctx context.Context, findingID string, status findings.Status, justification string) (*findings.Finding, error) {
	args := m.Called(ctx, findingID, status, justification)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*findings.Finding), args.Error(1)
}

// MockReportService is a mock implementation of ReportService
type MockReportService struct {
	mock.Mock
}

func (m *MockReportService) Summary(ctx context.Context) (*reports.Summary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.Summary), args.Error(1)
}

func (m *MockReportService) SLA(ctx context.Context) (*sla.Report, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sla.Report), args.Error(1)
}

func (m *MockReportService) Generate(ctx context.Context, format string, query *findings.FindingQuery) (*reports.ReportMeta, error) {
	args := m.Called(ctx, format, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.ReportMeta), args.Error(1)
}

func (m *MockReportService) List(ctx context.Context) ([]*reports.ReportMeta, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reports.ReportMeta), args.Error(1)
}

func (m *MockReportService) GetByID(ctx context.Context, reportID string) (*reports.ReportMeta, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reports.ReportMeta), args.Error(1)
}

func (m *MockReportService) Download(ctx context.Context, reportID string) ([]byte, error) {
	args := m.Called(ctx, reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockReportService) Verify(ctx context.Context, reportID string) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

func (m *MockReportService) DeleteByID(ctx context.Context, reportID string) error {
	args := m.Called(ctx, reportID)
	return args.Error(0)
}

// MockScheduleService is a mock implementation of ScheduleService
type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) Create(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*scans.Schedule, error) {
	args := m.Called(ctx, name, tool, target, cronExpr, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scans.Schedule), args.Error(1)
}

func (m *MockScheduleService) Upsert(ctx context.Context, name, tool, target, cronExpr string, enabled bool) (*scans.Schedule, error) {
	args := m.Called(ctx, name, tool, target, cronExpr, enabled)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*scans.Schedule), args.Error(1)
}

func (m *MockScheduleService) List(ctx context.Context) ([]*scans.Schedule, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*scans.Schedule), args.Error(1)
}

func (m *MockScheduleService) DeleteByID(ctx context.Context, scheduleID string) error {
	args := m.Called(ctx, scheduleID)
	return args.Error(0)
}
