package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// invoiceHandler serves one invoice register, AR or AP.
type invoiceHandler struct {
	kind           domain.InvoiceKind
	invoiceService portssvc.InvoiceSvcFacade
	ledgerService  portssvc.LedgerSvcFacade
}

func newInvoiceHandler(kind domain.InvoiceKind, is portssvc.InvoiceSvcFacade, ls portssvc.LedgerSvcFacade) *invoiceHandler {
	return &invoiceHandler{
		kind:           kind,
		invoiceService: is,
		ledgerService:  ls,
	}
}

// kindPrefix is "/ar" or "/ap".
func kindPrefix(kind domain.InvoiceKind) string {
	return "/" + strings.ToLower(string(kind))
}

// registerInvoiceRoutes registers the invoice register of kind.
func registerInvoiceRoutes(rg *gin.RouterGroup, kind domain.InvoiceKind, invoiceService portssvc.InvoiceSvcFacade, ledgerService portssvc.LedgerSvcFacade) {
	h := newInvoiceHandler(kind, invoiceService, ledgerService)

	invoices := rg.Group(kindPrefix(kind) + "/invoices")
	{
		invoices.POST("/", h.createInvoice)
		invoices.GET("/", h.listOpenInvoices)
		invoices.GET("/:id/", h.getInvoice)
		invoices.PATCH("/:id/", h.updateInvoice)
		invoices.POST("/:id/post-gl/", h.postInvoice)
	}
}

// createInvoice godoc
// @Summary Create a draft invoice
// @Description Registers a draft AR or AP invoice and derives its tax split
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   invoice body dto.CreateInvoiceRequest true "Invoice details"
// @Success 201 {object} domain.Invoice
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 404 {object} dto.ErrorResponse "Currency not found"
// @Security BearerAuth
// @Router /ar/invoices/ [post]
// @Router /ap/invoices/ [post]
func (h *invoiceHandler) createInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreateInvoice", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), h.kind, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create invoice")
		return
	}

	logger.Info("Invoice created", slog.String("kind", string(h.kind)), slog.String("invoice_id", invoice.InvoiceID))
	c.JSON(http.StatusCreated, invoice)
}

// getInvoice godoc
// @Summary Get an invoice
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 200 {object} domain.Invoice
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Security BearerAuth
// @Router /ar/invoices/{id}/ [get]
// @Router /ap/invoices/{id}/ [get]
func (h *invoiceHandler) getInvoice(c *gin.Context) {
	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), h.kind, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve invoice")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// listOpenInvoices godoc
// @Summary List open invoices
// @Description Posted invoices with an outstanding balance, by due date
// @Tags invoices
// @Produce  json
// @Param   counterparty_id query string false "Counterparty filter"
// @Success 200 {array} domain.Invoice
// @Security BearerAuth
// @Router /ar/invoices/ [get]
// @Router /ap/invoices/ [get]
func (h *invoiceHandler) listOpenInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.ListOpenInvoices(c.Request.Context(), h.kind, c.Query("counterparty_id"))
	if err != nil {
		respondError(c, err, "Failed to list invoices")
		return
	}
	if invoices == nil {
		invoices = []domain.Invoice{}
	}
	c.JSON(http.StatusOK, invoices)
}

// updateInvoice godoc
// @Summary Edit a draft invoice
// @Tags invoices
// @Accept  json
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Param   invoice body dto.UpdateInvoiceRequest true "Fields to change"
// @Success 200 {object} domain.Invoice
// @Failure 400 {object} dto.ErrorResponse "Invalid input"
// @Failure 409 {object} dto.ErrorResponse "Invoice is posted"
// @Security BearerAuth
// @Router /ar/invoices/{id}/ [patch]
// @Router /ap/invoices/{id}/ [patch]
func (h *invoiceHandler) updateInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "UpdateInvoice", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), h.kind, invoiceID, req, userID)
	if err != nil {
		respondError(c, err, "Failed to update invoice")
		return
	}

	logger.Info("Invoice updated", slog.String("invoice_id", invoiceID))
	c.JSON(http.StatusOK, invoice)
}

// postInvoice godoc
// @Summary Post an invoice to the general ledger
// @Description Idempotent: re-posting an unchanged invoice returns the original entry with replayed set
// @Tags invoices
// @Produce  json
// @Param   id path string true "Invoice ID"
// @Success 201 {object} dto.PostingResponse
// @Success 200 {object} dto.PostingResponse "Replayed"
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Failure 409 {object} dto.ErrorResponse "Not approved or changed after posting"
// @Failure 424 {object} dto.ErrorResponse "Role unmapped or rate missing"
// @Security BearerAuth
// @Router /ar/invoices/{id}/post-gl/ [post]
// @Router /ap/invoices/{id}/post-gl/ [post]
func (h *invoiceHandler) postInvoice(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	invoiceID := c.Param("id")

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	result, err := h.ledgerService.PostInvoice(c.Request.Context(), h.kind, invoiceID, userID)
	if err != nil {
		respondError(c, err, "Failed to post invoice")
		return
	}

	logger.Info("Invoice posted", slog.String("invoice_id", invoiceID), slog.String("entry_id", result.Entry.EntryID), slog.Bool("replayed", result.Replayed))
	c.JSON(postingStatus(result), dto.ToPostingResponse(result))
}
