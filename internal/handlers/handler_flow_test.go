package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/core/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/SscSPs/gl_engine/internal/handlers"
	"github.com/SscSPs/gl_engine/internal/middleware"
	"github.com/SscSPs/gl_engine/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flowSecret = "flow-secret-key-that-is-long-enough"

// api drives the real services over the in-memory store through HTTP.
type api struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func newAPI(t *testing.T) *api {
	t.Helper()
	gin.SetMode(gin.TestMode)
	store := memory.NewStore()
	require.NoError(t, services.SeedLedger(context.Background(), store, "AED"))
	container := services.NewServiceContainer(store, nil, services.NewRateCache(nil, time.Hour, nil))

	router := gin.New()
	v1 := router.Group("/api/v1", middleware.AuthMiddleware(flowSecret))
	handlers.RegisterAPIRoutes(v1, container)

	return &api{t: t, router: router, token: generateTestToken(t, flowSecret, "clerk-1")}
}

func (a *api) call(method, url string, body any) *httptest.ResponseRecorder {
	a.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(a.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+a.token)
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (a *api) postedInvoice(number, currency, amount string) domain.Invoice {
	a.t.Helper()
	w := a.call(http.MethodPost, "/api/v1/ar/invoices/", map[string]any{
		"number":         number,
		"counterpartyID": "cust-1",
		"currencyCode":   currency,
		"issueDate":      "2024-01-01T00:00:00Z",
		"dueDate":        "2024-01-31T00:00:00Z",
		"amount":         amount,
		"taxRate":        "0.05",
	})
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[domain.Invoice](a.t, w)

	w = a.call(http.MethodPost, "/api/v1/ar/invoices/"+inv.InvoiceID+"/post-gl/", nil)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	return inv
}

func TestFlow_InvoicePostingIsIdempotent(t *testing.T) {
	a := newAPI(t)
	inv := a.postedInvoice("INV-1", "AED", "1000")
	assert.Equal(t, "1050", inv.Total.String())

	w := a.call(http.MethodGet, "/api/v1/ar/invoices/"+inv.InvoiceID+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	posted := decode[domain.Invoice](t, w)
	require.NotNil(t, posted.JournalEntryID)

	w = a.call(http.MethodPost, "/api/v1/ar/invoices/"+inv.InvoiceID+"/post-gl/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	replay := decode[dto.PostingResponse](t, w)
	assert.True(t, replay.Replayed)
	assert.Equal(t, *posted.JournalEntryID, replay.EntryID)

	w = a.call(http.MethodPatch, "/api/v1/ar/invoices/"+inv.InvoiceID+"/", map[string]any{"amount": "2000"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "POSTED_DOCUMENT_MUTATED", decode[dto.ErrorResponse](t, w).Code)
}

func TestFlow_PaymentClosesInvoiceAndClearsAging(t *testing.T) {
	a := newAPI(t)
	inv := a.postedInvoice("INV-2", "AED", "1000")

	w := a.call(http.MethodGet, "/api/v1/ar/aging/?as_of=2024-03-15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	before := decode[domain.AgingReport](t, w)
	assert.Equal(t, "1050", before.Total.String())

	w = a.call(http.MethodPost, "/api/v1/ar/payments/", map[string]any{
		"counterpartyID":  "cust-1",
		"paymentDate":     "2024-02-10T00:00:00Z",
		"amount":          "1050",
		"currencyCode":    "AED",
		"allocations":     []map[string]any{{"invoiceID": inv.InvoiceID, "amount": "1050"}},
		"postImmediately": true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	result := decode[domain.PaymentPostingResult](t, w)
	assert.Equal(t, domain.PaymentPosted, result.Payment.Status)
	require.Len(t, result.Invoices, 1)
	assert.Equal(t, domain.InvoiceClosed, result.Invoices[0].Status)

	w = a.call(http.MethodPatch, "/api/v1/ar/payments/"+result.Payment.PaymentID+"/", map[string]any{"reference": "late edit"})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "POSTED_PAYMENT_IMMUTABLE", decode[dto.ErrorResponse](t, w).Code)

	w = a.call(http.MethodGet, "/api/v1/ar/aging/?as_of=2024-03-15", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[domain.AgingReport](t, w).Total.IsZero())
}

func TestFlow_OverAllocationLeavesInvoiceUntouched(t *testing.T) {
	a := newAPI(t)
	inv := a.postedInvoice("INV-3", "AED", "1000")

	w := a.call(http.MethodPost, "/api/v1/ar/payments/", map[string]any{
		"counterpartyID": "cust-1",
		"paymentDate":    "2024-02-10T00:00:00Z",
		"amount":         "2000",
		"currencyCode":   "AED",
		"allocations":    []map[string]any{{"invoiceID": inv.InvoiceID, "amount": "2000"}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	draft := decode[domain.PaymentPostingResult](t, w)

	w = a.call(http.MethodPost, "/api/v1/ar/payments/"+draft.Payment.PaymentID+"/post/", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "OVER_ALLOCATION", body.Code)
	assert.Equal(t, "business", body.Class)

	w = a.call(http.MethodGet, "/api/v1/ar/invoices/"+inv.InvoiceID+"/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1050", decode[domain.Invoice](t, w).Outstanding.String())
}

func TestFlow_MissingRateIsAConfigurationError(t *testing.T) {
	a := newAPI(t)
	w := a.call(http.MethodPost, "/api/v1/currencies/", map[string]any{"currencyCode": "USD", "symbol": "$", "name": "US Dollar"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.call(http.MethodPost, "/api/v1/ar/invoices/", map[string]any{
		"number":         "INV-USD",
		"counterpartyID": "cust-1",
		"currencyCode":   "USD",
		"issueDate":      "2024-01-01T00:00:00Z",
		"dueDate":        "2024-01-31T00:00:00Z",
		"amount":         "100",
		"taxRate":        "0",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[domain.Invoice](t, w)

	w = a.call(http.MethodPost, "/api/v1/ar/invoices/"+inv.InvoiceID+"/post-gl/", nil)
	assert.Equal(t, http.StatusFailedDependency, w.Code)
	body := decode[dto.ErrorResponse](t, w)
	assert.Equal(t, "NO_RATE_AVAILABLE", body.Code)
	assert.Equal(t, "configuration", body.Class)

	w = a.call(http.MethodPost, "/api/v1/exchange-rates/", map[string]any{
		"currencyCode":  "USD",
		"rateToBase":    "3.6725",
		"effectiveDate": "2024-01-01T00:00:00Z",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = a.call(http.MethodGet, "/api/v1/exchange-rates/convert?amount=100&from=USD&to=AED&as_of=2024-01-15", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "367.25", decode[dto.ConvertResponse](t, w).Converted.String())

	w = a.call(http.MethodPost, "/api/v1/ar/invoices/"+inv.InvoiceID+"/post-gl/", nil)
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())
}

func TestFlow_ReferenceEndpoints(t *testing.T) {
	a := newAPI(t)

	w := a.call(http.MethodGet, "/api/v1/chart-of-accounts/roles/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.RoleMapping](t, w), len(domain.AllRoles()))

	w = a.call(http.MethodPut, "/api/v1/chart-of-accounts/roles/NOT_A_ROLE", map[string]any{"accountCode": "1000"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodGet, "/api/v1/accounts/4000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.Income, decode[dto.AccountResponse](t, w).AccountType)

	w = a.call(http.MethodGet, "/api/v1/settings/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "AED", decode[domain.EngineSettings](t, w).BaseCurrency)

	w = a.call(http.MethodPut, "/api/v1/settings/", map[string]any{"agingBoundaries": []int{30, 0}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodGet, "/api/v1/ar/aging/?boundaries=30,0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodGet, "/api/v1/tax/corporate/breakdown/?period_start=2024-01-01", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = a.call(http.MethodGet, "/api/v1/approvals/INVOICE_AR/never-submitted", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.ApprovalSkipped, decode[domain.Approval](t, w).Status)
}
