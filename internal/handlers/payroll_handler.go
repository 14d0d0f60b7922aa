package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"payroll-backend/internal/dto"
	"payroll-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PayrollHandler exposes the gasless settlement pipeline.
type PayrollHandler struct {
	settlementService *services.SettlementService
	escrowAddress     string
}

func NewPayrollHandler(settlementService *services.SettlementService, escrowAddress string) *PayrollHandler {
	return &PayrollHandler{
		settlementService: settlementService,
		escrowAddress:     escrowAddress,
	}
}

// GetEscrowAddress returns the address transfer authorizations must target.
// GET /api/payroll/escrow
func (h *PayrollHandler) GetEscrowAddress(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"address": h.escrowAddress,
	})
}

// CreatePayroll runs one gasless settlement attempt.
// POST /api/payroll/create
func (h *PayrollHandler) CreatePayroll(c *gin.Context) {
	var req dto.CreatePayrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.settlementService.CreatePayroll(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		var settlementErr *services.SettlementError
		if errors.As(err, &settlementErr) {
			c.JSON(settlementErr.HTTPStatus(), dto.ErrorResponse{
				Error:   settlementErr.Code,
				Details: settlementErr.Detail,
			})
			return
		}

		logrus.WithField("error", err.Error()).Error("Settlement failed with unclassified error")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Settlement failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ListSettlements returns recent settlement records for reconciliation.
// Filter with ?status=needs_intervention to see attempts where funds reached
// escrow but registration failed.
// GET /api/payroll/settlements (admin)
func (h *PayrollHandler) ListSettlements(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	status := c.Query("status")

	settlements, err := h.settlementService.ListSettlements(status, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Failed to list settlements",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"count":       len(settlements),
		"settlements": settlements,
	})
}
