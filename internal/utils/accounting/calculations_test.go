package accounting

import (
	"errors"
	"testing"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSplitTax_ExclusiveRounding(t *testing.T) {
	net, tax, total := SplitTax(d("33.33"), d("0.05"), false, 2)
	assert.Equal(t, "33.33", net.StringFixed(2))
	assert.Equal(t, "1.67", tax.StringFixed(2))
	assert.Equal(t, "35.00", total.StringFixed(2))
	assert.True(t, net.Add(tax).Equal(total))
}

func TestSplitTax_Inclusive(t *testing.T) {
	net, tax, total := SplitTax(d("35.00"), d("0.05"), true, 2)
	assert.Equal(t, "33.33", net.StringFixed(2))
	assert.Equal(t, "1.67", tax.StringFixed(2))
	assert.True(t, net.Add(tax).Equal(total))

	net, tax, total = SplitTax(d("100.00"), d("0.05"), true, 2)
	assert.Equal(t, "95.24", net.StringFixed(2))
	assert.Equal(t, "4.76", tax.StringFixed(2))
	assert.Equal(t, "100.00", total.StringFixed(2))
}

func TestCalculateSignedAmount(t *testing.T) {
	debit := domain.JournalLine{AccountCode: "x", Debit: d("10"), Credit: decimal.Zero}
	credit := debit.Swapped()

	tests := []struct {
		name string
		line domain.JournalLine
		typ  domain.AccountType
		want string
	}{
		{"debit asset", debit, domain.Asset, "10"},
		{"credit asset", credit, domain.Asset, "-10"},
		{"credit income", credit, domain.Income, "10"},
		{"debit income", debit, domain.Income, "-10"},
		{"debit expense", debit, domain.Expense, "10"},
		{"credit liability", credit, domain.Liability, "10"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CalculateSignedAmount(tt.line, tt.typ)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}

	_, err := CalculateSignedAmount(debit, domain.AccountType("OTHER"))
	assert.Error(t, err)
}

func TestValidateEntryLines(t *testing.T) {
	balanced := []domain.JournalLine{
		{AccountCode: "1000", Debit: d("100.00"), Credit: decimal.Zero},
		{AccountCode: "4000", Debit: decimal.Zero, Credit: d("100.00")},
	}
	assert.NoError(t, ValidateEntryLines(balanced, 2))

	t.Run("too few lines", func(t *testing.T) {
		err := ValidateEntryLines(balanced[:1], 2)
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("imbalanced", func(t *testing.T) {
		lines := []domain.JournalLine{balanced[0], {AccountCode: "4000", Debit: decimal.Zero, Credit: d("99.99")}}
		err := ValidateEntryLines(lines, 2)
		var imb *apperrors.ImbalancedEntryError
		require.True(t, errors.As(err, &imb))
		assert.Equal(t, "100", imb.Debits.String())
		assert.Equal(t, "99.99", imb.Credits.String())
	})

	t.Run("zero line", func(t *testing.T) {
		lines := append([]domain.JournalLine{{AccountCode: "5000", Debit: decimal.Zero, Credit: decimal.Zero}}, balanced...)
		assert.ErrorIs(t, ValidateEntryLines(lines, 2), apperrors.ErrValidation)
	})

	t.Run("two sided line", func(t *testing.T) {
		lines := []domain.JournalLine{{AccountCode: "1000", Debit: d("1"), Credit: d("1")}, balanced[1]}
		assert.ErrorIs(t, ValidateEntryLines(lines, 2), apperrors.ErrValidation)
	})

	t.Run("sub minor unit", func(t *testing.T) {
		lines := []domain.JournalLine{
			{AccountCode: "1000", Debit: d("100.005"), Credit: decimal.Zero},
			{AccountCode: "4000", Debit: decimal.Zero, Credit: d("100.005")},
		}
		assert.ErrorIs(t, ValidateEntryLines(lines, 2), apperrors.ErrValidation)
	})
}

func TestConvertAtRate(t *testing.T) {
	assert.Equal(t, "3670.00", ConvertAtRate(d("1000.00"), d("3.67"), 2).StringFixed(2))
	assert.Equal(t, "0.12", ConvertAtRate(d("0.05"), d("2.5"), 2).StringFixed(2))
}
