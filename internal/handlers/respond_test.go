package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorResponse_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		class  string
	}{
		{"imbalanced", &apperrors.ImbalancedEntryError{}, http.StatusUnprocessableEntity, "IMBALANCED_ENTRY", "business"},
		{"over allocation", &apperrors.OverAllocationError{InvoiceID: "i"}, http.StatusUnprocessableEntity, "OVER_ALLOCATION", "business"},
		{"unknown account", &apperrors.UnknownAccountError{Role: "AR", Reason: "unmapped"}, http.StatusFailedDependency, "UNKNOWN_ACCOUNT", "configuration"},
		{"no rate", &apperrors.NoRateAvailableError{Currency: "USD", AsOf: time.Now()}, http.StatusFailedDependency, "NO_RATE_AVAILABLE", "configuration"},
		{"mutated", &apperrors.PostedDocumentMutatedError{SourceKind: "INVOICE_AR", SourceID: "i"}, http.StatusConflict, "POSTED_DOCUMENT_MUTATED", "conflict"},
		{"not approved", &apperrors.DocumentNotApprovedError{}, http.StatusConflict, "DOCUMENT_NOT_APPROVED", "conflict"},
		{"invalid period", &apperrors.InvalidPeriodError{}, http.StatusBadRequest, "INVALID_PERIOD", "validation"},
		{"wrapped engine error", fmt.Errorf("posting: %w", &apperrors.PostedPaymentImmutableError{PaymentID: "p"}), http.StatusConflict, "POSTED_PAYMENT_IMMUTABLE", "conflict"},
		{"validation sentinel", apperrors.NewValidationError("bad %s", "input"), http.StatusBadRequest, "VALIDATION_FAILED", "validation"},
		{"not found", apperrors.NewNotFoundError("invoice", "x"), http.StatusNotFound, "NOT_FOUND", ""},
		{"duplicate", fmt.Errorf("%w: rate", apperrors.ErrDuplicate), http.StatusConflict, "DUPLICATE", "conflict"},
		{"forbidden", apperrors.ErrForbidden, http.StatusForbidden, "FORBIDDEN", ""},
		{"infrastructure", apperrors.NewAppError(500, "failed to begin transaction", errors.New("dial tcp")), http.StatusInternalServerError, "INTERNAL", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := errorResponse(tt.err, "Something failed")
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, body.Code)
			assert.Equal(t, tt.class, body.Class)
		})
	}
}

func TestErrorResponse_HidesInternalDetail(t *testing.T) {
	_, body := errorResponse(errors.New("pq: password authentication failed"), "Failed to post invoice")
	assert.Equal(t, "Failed to post invoice", body.Error)
	assert.Nil(t, body.Details)
}

func TestBoundariesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	parse := func(raw string) ([]int, error) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/aging?boundaries="+raw, nil)
		b, err := boundariesQuery(c, "boundaries")
		return b, err
	}

	b, err := parse("0,30,60,90")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 30, 60, 90}, b)

	b, err = parse("")
	require.NoError(t, err)
	assert.Nil(t, b)

	_, err = parse("0,thirty")
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = parse("60,30")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDateQuery_DefaultsToToday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	fixed := time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)
	restore := today
	today = func() time.Time { return fixed }
	defer func() { today = restore }()

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/aging", nil)
	got, err := dateQuery(c, "as_of")
	require.NoError(t, err)
	assert.Equal(t, fixed, got)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/aging?as_of=2024-02-30", nil)
	_, err = dateQuery(c, "as_of")
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
