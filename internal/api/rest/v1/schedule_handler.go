package v1

import (
	"fmt"
	"net/http"

	"github.com/MGTheTrain/scan-warden/internal/domain/scans"

	"github.com/gin-gonic/gin"
)

// ScheduleHandler defines the interface for handling schedule-related operations
type ScheduleHandler interface {
	Create(ctx *gin.Context)
	List(ctx *gin.Context)
	DeleteByID(ctx *gin.Context)
}

// scheduleHandler struct holds the services
type scheduleHandler struct {
	scheduleService scans.ScheduleService
}

// NewScheduleHandler creates a new ScheduleHandler
func NewScheduleHandler(scheduleService scans.ScheduleService) ScheduleHandler {
	return &scheduleHandler{scheduleService: scheduleService}
}

// Create handles the POST request to register a recurring scan or report
// @Summary Create a schedule
// @Description Register a cron schedule. Tool "report" generates a report in the format given as target.
// @Tags Schedule
// @Accept json
// @Produce json
// @Param requestBody body CreateScheduleRequest true "Schedule"
// @Success 201 {object} ScheduleResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /schedules [post]
func (handler *scheduleHandler) Create(ctx *gin.Context) {
	var request CreateScheduleRequest

	if err := ctx.ShouldBindJSON(&request); err != nil {
		abortWithError(ctx, http.StatusBadRequest, fmt.Sprintf("invalid schedule: %v", err))
		return
	}

	if err := request.Validate(); err != nil {
		abortWithError(ctx, http.StatusBadRequest, err.Error())
		return
	}

	schedule, err := handler.scheduleService.Create(ctx, request.Name, request.Tool, request.Target, request.Cron, request.IsEnabled())
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error creating schedule: %v", err))
		return
	}

	ctx.JSON(http.StatusCreated, toScheduleResponse(schedule))
}

// List handles the GET request to list schedules
// @Summary List schedules
// @Tags Schedule
// @Produce json
// @Success 200 {array} ScheduleResponse
// @Router /schedules [get]
func (handler *scheduleHandler) List(ctx *gin.Context) {
	list, err := handler.scheduleService.List(ctx)
	if err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("list query failed: %v", err))
		return
	}

	listResponse := []ScheduleResponse{}
	for _, schedule := range list {
		listResponse = append(listResponse, toScheduleResponse(schedule))
	}

	ctx.JSON(http.StatusOK, listResponse)
}

// DeleteByID handles the DELETE request to remove a schedule
// @Summary Delete a schedule
// @Tags Schedule
// @Param id path string true "Schedule ID"
// @Success 204 {object} InfoResponse
// @Failure 404 {object} ErrorResponse
// @Router /schedules/{id} [delete]
func (handler *scheduleHandler) DeleteByID(ctx *gin.Context) {
	scheduleID := ctx.Param("id")

	if err := handler.scheduleService.DeleteByID(ctx, scheduleID); err != nil {
		abortWithError(ctx, statusFor(err), fmt.Sprintf("error deleting schedule with id %s", scheduleID))
		return
	}

	ctx.JSON(http.StatusNoContent, InfoResponse{Message: fmt.Sprintf("deleted schedule with id %s", scheduleID)})
}
