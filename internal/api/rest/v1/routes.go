package v1

import (
	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/domain/scans"

	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up all the API routes for version 1.
func SetupRoutes(r *gin.Engine,
	scanService scans.ScanService,
	findingService findings.FindingService,
	reportService reports.ReportService,
	scheduleService scans.ScheduleService) {

	v1 := r.Group(BasePath)

	// Scan Routes
	scanHandler := NewScanHandler(scanService)
	v1.POST("/scans", scanHandler.Trigger)
	v1.POST("/scans/import", scanHandler.Import)
	v1.GET("/scans", scanHandler.List)
	v1.GET("/scans/:id", scanHandler.GetByID)
	v1.GET("/tools", scanHandler.Tools)

	// Finding Routes
	findingHandler := NewFindingHandler(findingService)
	v1.GET("/findings", findingHandler.List)
	v1.GET("/findings/stats", findingHandler.Stats)
	v1.GET("/findings/:id", findingHandler.GetByID)
	v1.PATCH("/findings/:id", findingHandler.UpdateStatus)

	// Report Routes
	reportHandler := NewReportHandler(reportService)
	v1.GET("/summary", reportHandler.Summary)
	v1.GET("/sla", reportHandler.SLA)
	v1.POST("/reports", reportHandler.Generate)
	v1.GET("/reports", reportHandler.List)
	v1.GET("/reports/:id", reportHandler.GetByID)
	v1.GET("/reports/:id/file", reportHandler.DownloadByID)
	v1.GET("/reports/:id/verify", reportHandler.VerifyByID)
	v1.DELETE("/reports/:id", reportHandler.DeleteByID)

	// Schedule Routes
	scheduleHandler := NewScheduleHandler(scheduleService)
	v1.POST("/schedules", scheduleHandler.Create)
	v1.GET("/schedules", scheduleHandler.List)
	v1.DELETE("/schedules/:id", scheduleHandler.DeleteByID)
}
