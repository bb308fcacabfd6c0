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

// paymentHandler serves receipts (AR) or disbursements (AP).
type paymentHandler struct {
	kind           domain.InvoiceKind
	paymentService portssvc.PaymentSvcFacade
}

func newPaymentHandler(kind domain.InvoiceKind, ps portssvc.PaymentSvcFacade) *paymentHandler {
	return &paymentHandler{kind: kind, paymentService: ps}
}

func registerPaymentRoutes(rg *gin.RouterGroup, kind domain.InvoiceKind, paymentService portssvc.PaymentSvcFacade) {
	h := newPaymentHandler(kind, paymentService)

	payments := rg.Group(kindPrefix(kind) + "/payments")
	{
		payments.POST("/", h.createPayment)
		payments.GET("/:id/", h.getPayment)
		payments.PATCH("/:id/", h.updatePayment)
		payments.POST("/:id/post/", h.postPayment)
	}
}

// paymentPostingStatus treats an unposted draft like a fresh write.
func paymentPostingStatus(r *domain.PaymentPostingResult) int {
	if r.Entry != nil && r.Replayed {
		return http.StatusOK
	}
	return http.StatusCreated
}

// createPayment godoc
// @Summary Create a payment
// @Description Creates a draft payment with its allocations, posting it at once when postImmediately is set
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   payment body dto.CreatePaymentRequest true "Payment and allocations"
// @Success 201 {object} domain.PaymentPostingResult
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 422 {object} dto.ErrorResponse "Allocation exceeds the outstanding balance"
// @Failure 424 {object} dto.ErrorResponse "Role unmapped or rate missing"
// @Security BearerAuth
// @Router /ar/payments/ [post]
// @Router /ap/payments/ [post]
func (h *paymentHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreatePayment", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	logger.Info("Received request to create payment",
		slog.String("kind", string(h.kind)),
		slog.String("amount", req.Amount.String()),
		slog.String("currency_code", req.CurrencyCode),
		slog.Int("allocation_count", len(req.Allocations)),
		slog.Bool("post_immediately", req.PostImmediately),
	)

	result, err := h.paymentService.CreatePayment(c.Request.Context(), h.kind, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create payment")
		return
	}

	logger.Info("Payment created", slog.String("payment_id", result.Payment.PaymentID), slog.String("status", string(result.Payment.Status)))
	c.JSON(http.StatusCreated, result)
}

// getPayment godoc
// @Summary Get a payment
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 200 {object} domain.Payment
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Security BearerAuth
// @Router /ar/payments/{id}/ [get]
// @Router /ap/payments/{id}/ [get]
func (h *paymentHandler) getPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPayment(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve payment")
		return
	}
	c.JSON(http.StatusOK, payment)
}

// updatePayment godoc
// @Summary Edit a draft payment
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Payment ID"
// @Param   payment body dto.UpdatePaymentRequest true "Fields to change"
// @Success 200 {object} domain.Payment
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Payment is posted"
// @Security BearerAuth
// @Router /ar/payments/{id}/ [patch]
// @Router /ap/payments/{id}/ [patch]
func (h *paymentHandler) updatePayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "UpdatePayment", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	payment, err := h.paymentService.UpdatePayment(c.Request.Context(), h.kind, paymentID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update payment")
		return
	}

	logger.Info("Payment updated", slog.String("payment_id", paymentID))
	c.JSON(http.StatusOK, payment)
}

// postPayment godoc
// @Summary Allocate and post a payment
// @Description Applies the allocations, posts the settlement entry with any realized FX difference and closes settled invoices
// @Tags payments
// @Produce  json
// @Param   id path string true "Payment ID"
// @Success 201 {object} domain.PaymentPostingResult
// @Success 200 {object} domain.PaymentPostingResult "Replayed"
// @Failure 404 {object} dto.ErrorResponse "Payment not found"
// @Failure 422 {object} dto.ErrorResponse "Over allocation"
// @Security BearerAuth
// @Router /ar/payments/{id}/post/ [post]
// @Router /ap/payments/{id}/post/ [post]
func (h *paymentHandler) postPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	paymentID := c.Param("id")

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.paymentService.PostPayment(c.Request.Context(), h.kind, paymentID, userID)
	if err != nil {
		respondError(c, err, "Failed to post payment")
		return
	}

	logger.Info("Payment posted", slog.String("payment_id", paymentID), slog.Bool("replayed", result.Replayed))
	c.JSON(paymentPostingStatus(result), result)
}
