package handlers

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// exchangeRateHandler handles HTTP requests related to exchange rates.
type exchangeRateHandler struct {
	exchangeRateService portssvc.ExchangeRateSvcFacade
}

// newExchangeRateHandler creates a new exchangeRateHandler.
func newExchangeRateHandler(ers portssvc.ExchangeRateSvcFacade) *exchangeRateHandler {
	return &exchangeRateHandler{
		exchangeRateService: ers,
	}
}

// registerExchangeRateRoutes registers routes related to exchange rates.
func registerExchangeRateRoutes(rg *gin.RouterGroup, exchangeRateService portssvc.ExchangeRateSvcFacade) {
	h := newExchangeRateHandler(exchangeRateService)

	exchangeRates := rg.Group("/exchange-rates")
	{
		exchangeRates.POST("/", h.createExchangeRate)
		exchangeRates.GET("/convert", h.convert)
		exchangeRates.GET("/:currency", h.listExchangeRates)
	}
}

// createExchangeRate godoc
// @Summary Create a new exchange rate
// @Description Records base units per one unit of a currency from the effective date onwards
// @Tags exchange rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateExchangeRateRequest true "Exchange Rate details"
// @Success 201 {object} dto.ExchangeRateResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid input format or validation error"
// @Failure 409 {object} dto.ErrorResponse "A rate already exists for that date"
// @Failure 500 {object} dto.ErrorResponse "Failed to create exchange rate"
// @Security BearerAuth
// @Router /exchange-rates/ [post]
func (h *exchangeRateHandler) createExchangeRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateExchangeRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, "CreateExchangeRate", err)
		return
	}

	userID, ok := requireUser(c)
	if !ok {
		return
	}

	logger.Info("Received request to create exchange rate",
		slog.String("currency_code", req.CurrencyCode),
		slog.String("rate", req.RateToBase.String()),
		slog.Time("effective_date", req.EffectiveDate),
	)

	rate, err := h.exchangeRateService.CreateExchangeRate(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create exchange rate")
		return
	}

	logger.Info("Exchange rate created successfully", slog.String("exchange_rate_id", rate.ExchangeRateID))
	c.JSON(http.StatusCreated, dto.ToExchangeRateResponse(rate))
}

// listExchangeRates godoc
// @Summary List rates for a currency
// @Description Returns every recorded rate for the currency, newest first
// @Tags exchange rates
// @Produce  json
// @Param   currency path string true "Currency code"
// @Success 200 {array} dto.ExchangeRateResponse
// @Failure 404 {object} dto.ErrorResponse "Currency not found"
// @Security BearerAuth
// @Router /exchange-rates/{currency} [get]
func (h *exchangeRateHandler) listExchangeRates(c *gin.Context) {
	rates, err := h.exchangeRateService.ListExchangeRates(c.Request.Context(), strings.ToUpper(c.Param("currency")))
	if err != nil {
		respondError(c, err, "Failed to list exchange rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToExchangeRateResponses(rates))
}

// convert godoc
// @Summary Convert an amount between currencies
// @Description Converts at the rates effective on as_of and rounds half-to-even to the target currency
// @Tags exchange rates
// @Produce  json
// @Param   amount query string true "Amount"
// @Param   from query string true "Source currency"
// @Param   to query string true "Target currency"
// @Param   as_of query string false "Rate date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} dto.ConvertResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid query parameters"
// @Failure 424 {object} dto.ErrorResponse "No rate available"
// @Security BearerAuth
// @Router /exchange-rates/convert [get]
func (h *exchangeRateHandler) convert(c *gin.Context) {
	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil {
		respondError(c, apperrors.NewValidationError("amount %q is not a decimal number", c.Query("amount")), "Failed to convert amount")
		return
	}
	from := strings.ToUpper(c.Query("from"))
	to := strings.ToUpper(c.Query("to"))
	if from == "" || to == "" {
		respondError(c, apperrors.NewValidationError("from and to are required"), "Failed to convert amount")
		return
	}
	asOf, err := dateQuery(c, "as_of")
	if err != nil {
		respondError(c, err, "Failed to convert amount")
		return
	}

	converted, err := h.exchangeRateService.Convert(c.Request.Context(), amount, from, to, asOf)
	if err != nil {
		respondError(c, err, "Failed to convert amount")
		return
	}

	c.JSON(http.StatusOK, dto.ConvertResponse{
		Amount:       amount,
		FromCurrency: from,
		ToCurrency:   to,
		AsOf:         asOf.Format(time.DateOnly),
		Converted:    converted,
	})
}
