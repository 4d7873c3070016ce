package v1

import (
	"fmt"
	"net/http"

	"github.com/MGTheTrain/scan-warden/internal/domain/findings"
	"github.com/MGTheTrain/scan-warden/internal/pkg/httputil"

	"github.com/gin-gonic/gin"
)

// FindingHandler defines the interface for handling finding-related operations
type FindingHandler interface {
	List(ctx *gin.Context)
	GetByID(ctx *gin.Context)
	UpdateStatus(ctx *gin.Context)
	Stats(ctx *gin.Context)
}

// findingHandler struct holds the services
type findingHandler struct {
	findingService findings.FindingService
}

// NewFindingHandler creates a new FindingHandler
func NewFindingHandler(findingService findings.FindingService) FindingHandler {
	return &findingHandler{findingService: findingService}
}

// List handles the GET request to list findings with optional query parameters
// @Summary List findings
// @Description Fetch findings filtered by tool, category, severity, status, target and overdue flag.
// @Tags Finding
// @Produce json
// @Param tool query string false "Tool"
// @Param category query string false "Category (SAST, DAST, SCA, IAC)"
// @Param severity query string false "Severity"
// @Param status query string false "Status"
// @Param target query string false "Target"
// @Param overdue query bool false "Only open findings past their due date"
// @Param limit query int false "Limit the number of results"
// @Param offset query int false "Offset the results"
// @Param sortBy query string false "Sort by a specific field"
// @Param sortOrder query string false "Sort order (asc/desc)"
// @Success 200 {array} findings.Finding
// @Failure 400 {object} ErrorResponse
// @Router /findings [get]
func (handler *findingHandler) List(ctx *gin.Context) {
	query := findings.NewFindingQuery()
	query.Tool = ctx.Query("tool")
	query.Category = ctx.Query("category")
	query.Severity = ctx.Query("severity")
	query.Status = ctx.Query("status")
	query.Target = ctx.Query("target")
	query.Overdue = httputil.ParseBool(ctx.Query("overdue"))
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

	list, err := handler.findingService.List(ctx, query)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("list query failed: %v", err))
		return
	}
	if list == nil {
		list = []*findings.Finding{}
	}

	ctx.JSON(http.StatusOK, list)
}

// GetByID handles the GET request to retrieve a finding by ID
// @Summary Retrieve a finding by ID
// @Tags Finding
// @Produce json
// @Param id path string true "Finding ID"
// @Success 200 {object} findings.Finding
// @Failure 404 {object} ErrorResponse
// @Router /findings/{id} [get]
func (handler *findingHandler) GetByID(ctx *gin.Context) {
	findingID := ctx.Param("id")

	f, err := handler.findingService.GetByID(ctx, findingID)
	if err != nil {
		abortLookup(ctx, err, "finding", findingID)
		return
	}

	ctx.JSON(http.StatusOK, f)
}

// UpdateStatus handles the PATCH request to move a finding through its lifecycle
// @Summary Update the status of a finding
// @Description Resolve, accept, mark as false positive or reopen a finding. Accepting and marking as false positive need a justification.
// @Tags Finding
// @Accept json
// @Produce json
// @Param id path string true "Finding ID"
// @Param requestBody body UpdateFindingRequest true "Status change"
// @Success 200 {object} findings.Finding
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /findings/{id} [patch]
func (handler *findingHandler) UpdateStatus(ctx *gin.Context) {
	findingID := ctx.Param("id")

	var request UpdateFindingRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("invalid status update: %v", err))
		return
	}

	if err := request.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	f, err := handler.findingService.UpdateStatus(ctx, findingID, findings.Status(request.Status), request.Justification)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error updating finding %s: %v", findingID, err))
		return
	}

	ctx.JSON(http.StatusOK, f)
}

// Stats handles the GET request to count findings per severity and status
// @Summary Count findings per severity and status
// @Tags Finding
// @Produce json
// @Success 200 {array} SeverityCountResponse
// @Router /findings/stats [get]
func (handler *findingHandler) Stats(ctx *gin.Context) {
	counts, err := handler.findingService.Counts(ctx)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("failed to count findings: %v", err))
		return
	}

	listResponse := []SeverityCountResponse{}
	for _, c := range counts {
		listResponse = append(listResponse, SeverityCountResponse{
			Severity: string(c.Severity),
			Status:   string(c.Status),
			Count:    c.Count,
		})
	}

	ctx.JSON(http.StatusOK, listResponse)
}
