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

// taxHandler serves corporate tax accruals and their filing lifecycle.
type taxHandler struct {
	taxService portssvc.TaxSvcFacade
}

func registerTaxRoutes(rg *gin.RouterGroup, taxService portssvc.TaxSvcFacade) {
	h := &taxHandler{taxService: taxService}

	corporate := rg.Group("/tax/corporate")
	{
		corporate.POST("/accrual/", h.accrue)
		corporate.GET("/breakdown/", h.breakdown)
		corporate.GET("/filings/:id/", h.getFiling)
		corporate.POST("/filings/:id/file/", h.transition("file"))
		corporate.POST("/filings/:id/paid/", h.transition("paid"))
		corporate.POST("/filings/:id/reverse/", h.transition("reverse"))
	}
}

// accrue godoc
// @Summary Accrue corporate tax for a period
// @Description Computes tax on period profit, posts Dr TAX_CORP_EXP / Cr TAX_CORP_PAYABLE and returns the ACCRUED filing
// @Tags tax
// @Accept  json
// @Produce  json
// @Param   request body dto.TaxAccrualRequest true "Period and optional rate"
// @Success 201 {object} domain.TaxFiling
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Failure 409 {object} dto.ErrorResponse "Period already accrued"
// @Failure 422 {object} dto.ErrorResponse "No taxable profit"
// @Security BearerAuth
// @Router /tax/corporate/accrual/ [post]
func (h *taxHandler) accrue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TaxAccrualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "TaxAccrual", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	filing, err := h.taxService.Accrue(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to accrue corporate tax")
		return
	}

	logger.Info("Corporate tax accrued", slog.String("filing_id", filing.FilingID), slog.String("tax_amount", filing.TaxAmount.String()))
	c.JSON(http.StatusCreated, filing)
}

// getFiling godoc
// @Summary Get a tax filing
// @Tags tax
// @Produce  json
// @Param   id path string true "Filing ID"
// @Success 200 {object} domain.TaxFiling
// @Failure 404 {object} dto.ErrorResponse "Filing not found"
// @Security BearerAuth
// @Router /tax/corporate/filings/{id}/ [get]
func (h *taxHandler) getFiling(c *gin.Context) {
	filing, err := h.taxService.GetFiling(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve tax filing")
		return
	}
	c.JSON(http.StatusOK, filing)
}

// transition godoc
// @Summary Move a tax filing through its lifecycle
// @Description file: ACCRUED to FILED. paid: FILED to PAID. reverse: FILED to REVERSED with an offsetting entry.
// @Tags tax
// @Produce  json
// @Param   id path string true "Filing ID"
// @Success 200 {object} domain.TaxFiling
// @Failure 404 {object} dto.ErrorResponse "Filing not found"
// @Failure 409 {object} dto.ErrorResponse "Transition not allowed"
// @Security BearerAuth
// @Router /tax/corporate/filings/{id}/file/ [post]
// @Router /tax/corporate/filings/{id}/paid/ [post]
// @Router /tax/corporate/filings/{id}/reverse/ [post]
func (h *taxHandler) transition(action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		logger := middleware.GetLoggerFromCtx(c.Request.Context())
		filingID := c.Param("id")

		userID, ok := requireUser(c)
		if !ok {
			return
		}

		var (
			filing *domain.TaxFiling
			err    error
		)
		switch action {
		case "file":
			filing, err = h.taxService.File(c.Request.Context(), filingID, userID)
		case "paid":
			filing, err = h.taxService.MarkPaid(c.Request.Context(), filingID, userID)
		default:
			filing, err = h.taxService.Reverse(c.Request.Context(), filingID, userID)
		}
		if err != nil {
			respondError(c, err, "Failed to update tax filing")
			return
		}

		logger.Info("Tax filing updated", slog.String("filing_id", filingID), slog.String("action", action), slog.String("status", string(filing.Status)))
		c.JSON(http.StatusOK, filing)
	}
}

// breakdown godoc
// @Summary Income and expense breakdown
// @Description Aggregates posted income and expense lines for the inclusive period
// @Tags tax
// @Produce  json
// @Param   period_start query string true "Start (YYYY-MM-DD)"
// @Param   period_end query string true "End (YYYY-MM-DD)"
// @Success 200 {object} domain.TaxBreakdown
// @Failure 400 {object} dto.ErrorResponse "Invalid period"
// @Security BearerAuth
// @Router /tax/corporate/breakdown/ [get]
func (h *taxHandler) breakdown(c *gin.Context) {
	start, err := requiredDateQuery(c, "period_start")
	if err != nil {
		respondError(c, err, "Failed to build tax breakdown")
		return
	}
	end, err := requiredDateQuery(c, "period_end")
	if err != nil {
		respondError(c, err, "Failed to build tax breakdown")
		return
	}

	breakdown, err := h.taxService.Breakdown(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err, "Failed to build tax breakdown")
		return
	}
	c.JSON(http.StatusOK, breakdown)
}
