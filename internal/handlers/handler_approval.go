package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type approvalHandler struct {
	approvalService portssvc.ApprovalSvcFacade
}

func registerApprovalRoutes(rg *gin.RouterGroup, approvalService portssvc.ApprovalSvcFacade) {
	h := &approvalHandler{approvalService: approvalService}

	approvals := rg.Group("/approvals")
	{
		approvals.POST("/", h.recordDecision)
		approvals.GET("/:kind/:id", h.getApproval)
	}
}

// recordDecision godoc
// @Summary Record an approval decision
// @Description Stores the workflow status of a document. Postings require APPROVED or SKIPPED.
// @Tags approvals
// @Accept  json
// @Produce  json
// @Param   decision body dto.RecordApprovalRequest true "Decision"
// @Success 200 {object} domain.Approval
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Document not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /approvals/ [post]
func (h *approvalHandler) recordDecision(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.RecordApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "RecordApproval", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	approval, err := h.approvalService.RecordDecision(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record approval")
		return
	}

	logger.Info("Approval recorded",
		slog.String("document_kind", string(approval.DocumentKind)),
		slog.String("document_id", approval.DocumentID),
		slog.String("status", string(approval.Status)),
	)
	c.JSON(http.StatusOK, approval)
}

// getApproval godoc
// @Summary Get the approval state of a document
// @Tags approvals
// @Produce  json
// @Param   kind path string true "Document kind, e.g. INVOICE_AR"
// @Param   id path string true "Document ID"
// @Success 200 {object} domain.Approval
// @Security BearerAuth
// @Router /approvals/{kind}/{id} [get]
func (h *approvalHandler) getApproval(c *gin.Context) {
	approval, err := h.approvalService.GetApproval(c.Request.Context(), domain.SourceKind(c.Param("kind")), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve approval")
		return
	}
	c.JSON(http.StatusOK, approval)
}
