package v1

import (
	"fmt"
	"io"
	"net/http"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"
	"github.com/MGTheTrain/scan-warden/internal/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// MaxImportSize bounds uploaded tool reports
const MaxImportSize = 64 << 20

// ReportFormField is the multipart field carrying an imported tool report
const ReportFormField = "file"

// ScanHandler defines the interface for handling scan-related operations
type ScanHandler interface {
	Trigger(ctx *gin.Context)
	Import(ctx *gin.Context)
	List(ctx *gin.Context)
	GetByID(ctx *gin.Context)
	Tools(ctx *gin.Context)
}

// scanHandler struct holds the services
type scanHandler struct {
	scanService scans.ScanService
}

// NewScanHandler creates a new ScanHandler
func NewScanHandler(scanService scans.ScanService) ScanHandler {
	return &scanHandler{scanService: scanService}
}

// Trigger handles the POST request to queue a scan
// @Summary Queue a scan
// @Description Queue a scan of a target with a registered tool. The job runs asynchronously.
// @Tags Scan
// @Accept json
// @Produce json
// @Param requestBody body TriggerScanRequest true "Scan request"
// @Success 202 {object} ScanJobResponse
// @Failure 400 {object} ErrorResponse
// @Failure 429 {object} ErrorResponse
// @Router /scans [post]
func (handler *scanHandler) Trigger(ctx *gin.Context) {
	var request TriggerScanRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("invalid scan request: %v", err))
		return
	}

	if err := request.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	job, err := handler.scanService.Trigger(ctx, request.Tool, request.Target, scans.TriggerManual, nil)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error queuing scan: %v", err))
		return
	}

	ctx.JSON(http.StatusAccepted, toScanJobResponse(job))
}

// Import handles the POST request to ingest an existing tool report
// @Summary Import a tool report
// @Description Parse a report produced by a registered tool and ingest its findings.
// @Tags Scan
// @Accept multipart/form-data
// @Produce json
// @Param tool formData string true "Tool that produced the report"
// @Param target formData string true "Scanned target"
// @Param file formData file true "Tool report"
// @Success 201 {object} ScanJobResponse
// @Failure 400 {object} ErrorResponse
// @Router /scans/import [post]
func (handler *scanHandler) Import(ctx *gin.Context) {
	var request ImportScanRequest

	if err := ctx.ShouldBind(&request); err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("invalid import request: %v", err))
		return
	}

	if err := request.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	fileHeader, err := ctx.FormFile(ReportFormField)
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("missing %s file: %v", ReportFormField, err))
		return
	}
	if fileHeader.Size > MaxImportSize {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("report exceeds %d bytes", MaxImportSize))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("failed to open report: %v", err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImportSize))
	if err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("failed to read report: %v", err))
		return
	}

	job, err := handler.scanService.Import(ctx, request.Tool, request.Target, data)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error importing report: %v", err))
		return
	}

	ctx.JSON(http.StatusCreated, toScanJobResponse(job))
}

// List handles the GET request to list scan jobs with optional query parameters
// @Summary List scan jobs
// @Description Fetch scan jobs filtered by tool, kind, status and target, with pagination and sorting options.
// @Tags Scan
// @Produce json
// @Param tool query string false "Tool"
// @Param kind query string false "Kind (SAST, SCA, DAST, IAC)"
// @Param status query string false "Status"
// @Param target query string false "Target"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} ScanJobResponse
// @Failure 400 {object} ErrorResponse
// @Router /scans [get]
func (handler *scanHandler) List(ctx *gin.Context) {
	query := scans.NewScanQuery()
	query.Tool = ctx.Query("tool")
	query.Kind = ctx.Query("kind")
	query.Status = ctx.Query("status")
	query.Target = ctx.Query("target")
	query.SortBy = ctx.Query("sortBy")
	query.SortOrder = ctx.Query("sortOrder")

	if limit := ctx.Query("limit"); len(limit) > 0 {
		query.Limit = httputil.ConvertToInt(limit)
	}

	if offset := ctx.Query("offset"); len(offset) > 0 {
		query.Offset = httputil.ConvertToInt(offset)
	}

	if err := query.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	jobs, err := handler.scanService.List(ctx, query)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("list query failed: %v", err))
		return
	}

	listResponse := []ScanJobResponse{}
	for _, job := range jobs {
		listResponse = append(listResponse, toScanJobResponse(job))
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// GetByID handles the GET request to retrieve a scan job by ID
// @Summary Retrieve a scan job by ID
// @Tags Scan
// @Produce json
// @Param id path string true "Scan ID"
// @Success 200 {object} ScanJobResponse
// @Failure 404 {object} ErrorResponse
// @Router /scans/{id} [get]
func (handler *scanHandler) GetByID(ctx *gin.Context) {
	jobID := ctx.Param("id")

	job, err := handler.scanService.GetByID(ctx, jobID)
	if err != nil {
		abortLookup(ctx, err, "scan", jobID)
		return
	}

	ctx.JSON(http.StatusOK, toScanJobResponse(job))
}

// Tools handles the GET request to list registered scanners
// @Summary List registered scanner tools
// @Tags Scan
// @Produce json
// @Success 200 {object} ToolsResponse
// @Router /tools [get]
func (handler *scanHandler) Tools(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, ToolsResponse{Tools: handler.scanService.Tools()})
}
