// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/dto"
)

// AppointmentController handles appointment endpoints.
type AppointmentController struct {
	listUseCase      *finance.ListAppointmentsUseCase
	recomputeUseCase *finance.RecomputeAppointmentStatusUseCase
}

// NewAppointmentController creates a new appointment controller instance.
func NewAppointmentController(
	listUseCase *finance.ListAppointmentsUseCase,
	recomputeUseCase *finance.RecomputeAppointmentStatusUseCase,
) *AppointmentController {
	return &AppointmentController{
		listUseCase:      listUseCase,
		recomputeUseCase: recomputeUseCase,
	}
}

// List handles GET /appointments?doctor=&start_time=&end_time=&patient_search= requests.
func (c *AppointmentController) List(ctx *gin.Context) {
	var query dto.AppointmentListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		invalidRequestBody(ctx, err)
		return
	}

	startFrom, err := parseFilterTime("start_time", query.StartTime)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}
	endUntil, err := parseFilterTime("end_time", query.EndTime)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	appointments, err := c.listUseCase.Execute(ctx.Request.Context(), finance.ListAppointmentsInput{
		DoctorID:      query.Doctor,
		StartFrom:     startFrom,
		EndUntil:      endUntil,
		PatientSearch: query.PatientSearch,
	})
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToAppointmentListResponse(appointments))
}

// RecomputeStatus handles POST /appointments/:id/recompute-status requests.
func (c *AppointmentController) RecomputeStatus(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "Invalid appointment ID format")
	if !ok {
		return
	}

	change, err := c.recomputeUseCase.Execute(ctx.Request.Context(), finance.RecomputeAppointmentStatusInput{
		AppointmentID: id,
	})
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToStatusChangeResponse(change))
}

// parseIDParam parses a positive numeric path parameter, responding 400 when it is malformed.
func parseIDParam(ctx *gin.Context, name, message string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error: message,
		})
		return 0, false
	}
	return uint(id), true
}
