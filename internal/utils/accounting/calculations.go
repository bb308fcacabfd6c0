package accounting

import (
	"fmt"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the correct sign to a line amount based on the account type.
// DEBIT to ASSET/EXPENSE and CREDIT to LIABILITY/EQUITY/INCOME are positive.
func CalculateSignedAmount(line domain.JournalLine, accountType domain.AccountType) (decimal.Decimal, error) {
	net := line.Debit.Sub(line.Credit)
	switch accountType {
	case domain.Asset, domain.Expense:
		return net, nil
	case domain.Liability, domain.Equity, domain.Income:
		return net.Neg(), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown account type '%s' encountered for account %s", accountType, line.AccountCode)
	}
}

// ValidateEntryLines checks the shape of every line and that the entry
// balances exactly. places is the minor-unit count of the entry currency.
func ValidateEntryLines(lines []domain.JournalLine, places int32) error {
	if len(lines) < 2 {
		return apperrors.NewValidationError("journal entry must have at least two lines")
	}

	debits, credits := decimal.Zero, decimal.Zero
	for i, l := range lines {
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return apperrors.NewValidationError("line %d on account %s has a negative amount", i+1, l.AccountCode)
		}
		if l.Debit.IsZero() == l.Credit.IsZero() {
			return apperrors.NewValidationError("line %d on account %s must have exactly one non-zero side", i+1, l.AccountCode)
		}
		amount := l.Amount()
		if !amount.Equal(amount.Truncate(places)) {
			return apperrors.NewValidationError("line %d amount %s exceeds %d decimal places", i+1, amount.String(), places)
		}
		debits = debits.Add(l.Debit)
		credits = credits.Add(l.Credit)
	}

	if !debits.Equal(credits) {
		return &apperrors.ImbalancedEntryError{Debits: debits, Credits: credits}
	}
	return nil
}

// SplitTax derives the net, tax and total of an amount at rate.
// With inclusive=false amount is the tax-exclusive subtotal; otherwise it is
// the gross. Net and tax always sum exactly to the total.
func SplitTax(amount, rate decimal.Decimal, inclusive bool, places int32) (net, tax, total decimal.Decimal) {
	if inclusive {
		total = amount.RoundBank(places)
		net = total.Div(decimal.NewFromInt(1).Add(rate)).RoundBank(places)
		return net, total.Sub(net), total
	}
	net = amount.RoundBank(places)
	tax = net.Mul(rate).RoundBank(places)
	return net, tax, net.Add(tax)
}

// ConvertAtRate converts amount at rate and rounds half-to-even to places.
func ConvertAtRate(amount, rate decimal.Decimal, places int32) decimal.Decimal {
	return amount.Mul(rate).RoundBank(places)
}
