// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dental-clinic/backend/internal/application/usecase/finance"
	domainerror "github.com/dental-clinic/backend/internal/domain/error"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/dto"
	"github.com/dental-clinic/backend/internal/integration/entrypoint/middleware"
)

// DoctorController handles doctor balance endpoints.
type DoctorController struct {
	ledgerUseCase    *finance.GetDoctorLedgerUseCase
	reconcileUseCase *finance.ReconcileBalancesUseCase
}

// NewDoctorController creates a new doctor controller instance.
func NewDoctorController(
	ledgerUseCase *finance.GetDoctorLedgerUseCase,
	reconcileUseCase *finance.ReconcileBalancesUseCase,
) *DoctorController {
	return &DoctorController{
		ledgerUseCase:    ledgerUseCase,
		reconcileUseCase: reconcileUseCase,
	}
}

// Ledger handles GET /doctors/:id/ledger requests.
func (c *DoctorController) Ledger(ctx *gin.Context) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, dto.ErrorResponse{
			Error: "User not authenticated",
			Code:  string(domainerror.ErrCodeMissingToken),
		})
		return
	}
	role, _ := middleware.GetUserRoleFromContext(ctx)

	doctorID, ok := parseIDParam(ctx, "id", "Invalid doctor ID format")
	if !ok {
		return
	}

	ledger, err := c.ledgerUseCase.Execute(ctx.Request.Context(), finance.GetDoctorLedgerInput{
		DoctorID:      doctorID,
		RequesterID:   userID,
		RequesterRole: role,
	})
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToDoctorLedgerResponse(ledger))
}

// ReconcileBalances handles GET /doctors/balances/reconcile requests.
func (c *DoctorController) ReconcileBalances(ctx *gin.Context) {
	output, err := c.reconcileUseCase.Execute(ctx.Request.Context())
	if err != nil {
		handleFinanceError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.ToReconcileBalancesResponse(output))
}
