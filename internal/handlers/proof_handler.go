package handlers

import (
	"errors"
	"net/http"

	"payroll-backend/internal/dto"
	"payroll-backend/internal/services"
	"payroll-backend/internal/zk"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// ProofHandler exposes the proof construction pipeline.
type ProofHandler struct {
	proofService *services.ProofService
}

func NewProofHandler(proofService *services.ProofService) *ProofHandler {
	return &ProofHandler{proofService: proofService}
}

// GenerateProof builds commitments and a settlement proof for one batch.
// POST /api/proof/generate
func (h *ProofHandler) GenerateProof(c *gin.Context) {
	var req dto.GenerateProofRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{
			Error:   "Invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.proofService.GenerateProof(c.Request.Context(), &req)
	if err != nil {
		var invalidInput *zk.InvalidInputError
		if errors.As(err, &invalidInput) {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Error:   "Invalid proof input",
				Details: invalidInput.Reason,
			})
			return
		}

		logrus.WithField("error", err.Error()).Error("Proof generation failed")
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{
			Error:   "Proof generation failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, resp)
}
