package v1

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/MGTheTrain/scan-warden/internal/domain/reports"
	"github.com/MGTheTrain/scan-warden/internal/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// ReportHandler defines the interface for handling summary, SLA and report operations
type ReportHandler interface {
	Summary(ctx *gin.Context)
	SLA(ctx *gin.Context)
	Generate(ctx *gin.Context)
	List(ctx *gin.Context)
	GetByID(ctx *gin.Context)
	DownloadByID(ctx *gin.Context)
	VerifyByID(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

// reportHandler struct holds the services
type reportHandler struct {
	reportService reports.ReportService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService reports.ReportService) ReportHandler {
	return &reportHandler{reportService: reportService}
}

// Summary handles the GET request to aggregate the tracked findings
// @Summary Aggregate findings
// @Description Counts per severity, status, tool and category, the top open findings and the SLA snapshot.
// @Tags Report
// @Produce json
// @Success 200 {object} reports.Summary
// @Router /summary [get]
func (handler *reportHandler) Summary(ctx *gin.Context) {
	summary, err := handler.reportService.Summary(ctx)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("failed to summarize findings: %v", err))
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

// SLA handles the GET request to evaluate remediation deadlines
// @Summary Evaluate SLA compliance
// @Tags Report
// @Produce json
// @Success 200 {object} sla.Report
// @Router /sla [get]
func (handler *reportHandler) SLA(ctx *gin.Context) {
	report, err := handler.reportService.SLA(ctx)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("failed to evaluate SLA: %v", err))
		return
	}

	ctx.JSON(http.StatusOK, report)
}

// Generate handles the POST request to render, sign and archive a report
// @Summary Generate a signed report
// @Tags Report
// @Accept json
// @Produce json
// @Param requestBody body GenerateReportRequest true "Report request"
// @Success 201 {object} ReportMetaResponse
// @Failure 400 {object} ErrorResponse
// @Router /reports [post]
func (handler *reportHandler) Generate(ctx *gin.Context) {
	var request GenerateReportRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("invalid report request: %v", err))
		return
	}

	if err := request.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	meta, err := handler.reportService.Generate(ctx, request.Format, request.Query())
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error generating report: %v", err))
		return
	}

	ctx.JSON(http.StatusCreated, toReportMetaResponse(meta))
}

// List handles the GET request to list archived reports
// @Summary List archived reports
// @Tags Report
// @Produce json
// @Success 200 {array} ReportMetaResponse
// @Router /reports [get]
func (handler *reportHandler) List(ctx *gin.Context) {
	metas, err := handler.reportService.List(ctx)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("list query failed: %v", err))
		return
	}

	listResponse := []ReportMetaResponse{}
	for _, meta := range metas {
		listResponse = append(listResponse, toReportMetaResponse(meta))
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// GetByID handles the GET request to retrieve report metadata by ID
// @Summary Retrieve report metadata by ID
// @Tags Report
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} ReportMetaResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [get]
func (handler *reportHandler) GetByID(ctx *gin.Context) {
	reportID := ctx.Param("id")

	meta, err := handler.reportService.GetByID(ctx, reportID)
	if err != nil {
		abortLookup(ctx, err, "report", reportID)
		return
	}

	ctx.JSON(http.StatusOK, toReportMetaResponse(meta))
}

// DownloadByID handles the GET request to download an archived report
// @Summary Download an archived report
// @Tags Report
// @Produce application/json
// @Produce text/markdown
// @Param id path string true "Report ID"
// @Success 200 {file} file "Report content"
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id}/file [get]
func (handler *reportHandler) DownloadByID(ctx *gin.Context) {
	reportID := ctx.Param("id")

	meta, err := handler.reportService.GetByID(ctx, reportID)
	if err != nil {
		abortLookup(ctx, err, "report", reportID)
		return
	}

	data, err := handler.reportService.Download(ctx, reportID)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("could not download report with id %s: %v", reportID, err))
		return
	}

	ctx.Header("Content-Disposition", httputil.AttachmentDisposition(meta.Name))
	ctx.Data(http.StatusOK, httputil.ContentType(meta.Format), data)
}

// VerifyByID handles the GET request to check the integrity of an archived report
// @Summary Verify the signature of an archived report
// @Tags Report
// @Produce json
// @Param id path string true "Report ID"
// @Success 200 {object} VerifyResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} VerifyResponse
// @Router /reports/{id}/verify [get]
func (handler *reportHandler) VerifyByID(ctx *gin.Context) {
	reportID := ctx.Param("id")

	err := handler.reportService.Verify(ctx, reportID)
	switch {
	case err == nil:
		ctx.JSON(http.StatusOK, VerifyResponse{ID: reportID, Verified: true})
	case errors.Is(err, reports.ErrSignatureMismatch):
		ctx.JSON(http.StatusConflict, VerifyResponse{ID: reportID, Verified: false, Message: err.Error()})
	default:
		abortWithError(ctx, statusFor(err), fmt.Sprintf("could not verify report with id %s: %v", reportID, err))
	}
}

// DeleteByID handles the DELETE request to remove an archived report
// @Summary Delete an archived report
// @Tags Report
// @Param id path string true "Report ID"
// @Success 204 {object} InfoResponse
// @Failure 404 {object} ErrorResponse
// @Router /reports/{id} [delete]
func (handler *reportHandler) DeleteByID(ctx *gin.Context) {
	reportID := ctx.Param("id")

	if err := handler.reportService.DeleteByID(ctx, reportID); err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error deleting report with id %s", reportID))
		return
	}

	ctx.JSON(http.StatusNoContent, InfoResponse{Message: fmt.Sprintf("deleted report with id %s", reportID)})
}
