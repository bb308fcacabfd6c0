package services

import (
	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/shopspring/decimal"
)

// lineSet accumulates entry lines, dropping zero amounts so no entry
// carries noise lines.
type lineSet struct {
	lines []domain.JournalLine
}

func (ls *lineSet) debit(account domain.Account, role domain.AccountRole, amount decimal.Decimal, memo string) *domain.JournalLine {
	return ls.add(account, role, amount, decimal.Zero, memo)
}

func (ls *lineSet) credit(account domain.Account, role domain.AccountRole, amount decimal.Decimal, memo string) *domain.JournalLine {
	return ls.add(account, role, decimal.Zero, amount, memo)
}

func (ls *lineSet) add(account domain.Account, role domain.AccountRole, debit, credit decimal.Decimal, memo string) *domain.JournalLine {
	if debit.IsZero() && credit.IsZero() {
		return nil
	}
	ls.lines = append(ls.lines, domain.JournalLine{
		AccountCode: account.Code,
		Role:        role,
		Debit:       debit,
		Credit:      credit,
		Memo:        memo,
	})
	return &ls.lines[len(ls.lines)-1]
}

// foreign tags the last added line with its document currency amount.
func foreign(line *domain.JournalLine, amount decimal.Decimal, currency, base string) {
	if line == nil || currency == base {
		return
	}
	a, c := amount, currency
	line.OriginalAmount = &a
	line.OriginalCurrency = &c
}

func tag(line *domain.JournalLine, key, value string) {
	if line == nil || value == "" {
		return
	}
	if line.Dimensions == nil {
		line.Dimensions = map[string]string{}
	}
	line.Dimensions[key] = value
}
