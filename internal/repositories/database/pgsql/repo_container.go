package pgsql

import (
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// NewRepositoryProvider builds every repository over db, which is either the
// pool or an open transaction.
func NewRepositoryProvider(db querier) portsrepo.RepositoryProvider {
	base := BaseRepository{db: db}

	return portsrepo.RepositoryProvider{
		AccountRepo:      &PgxAccountRepository{base},
		AccountRoleRepo:  &PgxAccountRoleRepository{base},
		CurrencyRepo:     &PgxCurrencyRepository{base},
		ExchangeRateRepo: &PgxExchangeRateRepository{base},
		JournalRepo:      &PgxJournalRepository{base},
		PostingKeyRepo:   &PgxPostingKeyRepository{base},
		InvoiceRepo:      &PgxInvoiceRepository{base},
		PaymentRepo:      &PgxPaymentRepository{base},
		TaxFilingRepo:    &PgxTaxFilingRepository{base},
		FixedAssetRepo:   &PgxFixedAssetRepository{base},
		ApprovalRepo:     &PgxApprovalRepository{base},
		SettingsRepo:     &PgxSettingsRepository{base},
	}
}
