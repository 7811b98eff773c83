// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/dto"
)

// ReportController handles daily report endpoints.
type ReportController struct {
	recordUseCase   *finance.RecordEventUseCase
	getUseCase      *finance.GetReportUseCase
	getRangeUseCase *finance.GetReportsInRangeUseCase
}

// NewReportController creates a new report controller instance.
func NewReportController(
	recordUseCase *finance.RecordEventUseCase,
	getUseCase *finance.GetReportUseCase,
	getRangeUseCase *finance.GetReportsInRangeUseCase,
) *ReportController {
	return &ReportController{
		recordUseCase:   recordUseCase,
		getUseCase:      getUseCase,
		getRangeUseCase: getRangeUseCase,
	}
}

// RecordProfit handles POST /reports/profits requests.
func (c *ReportController) RecordProfit(ctx *gin.Context) {
	var req dto.RecordProfitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequestBody(ctx, err)
		return
	}

	date, err := parseReportDate("date", req.Date)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	output, err := c.recordUseCase.RecordProfit(ctx.Request.Context(), date, req.AppointmentID, req.Amount)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordEventResponse(output))
}

// RecordConsumption handles POST /reports/consumptions requests.
func (c *ReportController) RecordConsumption(ctx *gin.Context) {
	var req dto.RecordConsumptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequestBody(ctx, err)
		return
	}

	date, err := parseReportDate("date", req.Date)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	output, err := c.recordUseCase.RecordConsumption(ctx.Request.Context(), date, req.Title, req.Description, req.Amount)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordEventResponse(output))
}

// RecordSalary handles POST /reports/salaries requests.
func (c *ReportController) RecordSalary(ctx *gin.Context) {
	var req dto.RecordSalaryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		invalidRequestBody(ctx, err)
		return
	}

	date, err := parseReportDate("date", req.Date)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	output, err := c.recordUseCase.RecordSalary(ctx.Request.Context(), date, req.DoctorID, req.Amount, req.Title, req.Description)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.ToRecordEventResponse(output))
}

// Get handles GET /reports/:date requests.
func (c *ReportController) Get(ctx *gin.Context) {
	date, err := parseReportDate("date", ctx.Param("date"))
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	view, err := c.getUseCase.Execute(ctx.Request.Context(), finance.GetReportInput{Date: date})
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReportResponse(view))
}

// GetRange handles GET /reports?start_date=&end_date= requests.
func (c *ReportController) GetRange(ctx *gin.Context) {
	var query dto.ReportRangeQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		invalidRequestBody(ctx, err)
		return
	}

	startDate, err := parseReportDate("start_date", query.StartDate)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}
	endDate, err := parseReportDate("end_date", query.EndDate)
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	rangeReport, err := c.getRangeUseCase.Execute(ctx.Request.Context(), finance.GetReportsInRangeInput{
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToRangeReportResponse(rangeReport))
}
