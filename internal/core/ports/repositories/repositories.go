package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// A provider obtained inside UnitOfWork.WithinTx is bound to that transaction.
type RepositoryProvider struct {
	AccountRepo      AccountRepositoryFacade
	AccountRoleRepo  AccountRoleRepository
	CurrencyRepo     CurrencyRepositoryFacade
	ExchangeRateRepo ExchangeRateRepositoryFacade
	JournalRepo      JournalRepositoryFacade
	PostingKeyRepo   PostingKeyRepository
	InvoiceRepo      InvoiceRepositoryFacade
	PaymentRepo      PaymentRepositoryFacade
	TaxFilingRepo    TaxFilingRepositoryFacade
	FixedAssetRepo   FixedAssetRepositoryFacade
	ApprovalRepo     ApprovalRepositoryFacade
	SettingsRepo     SettingsRepository

	// Hooks is nil outside a transaction.
	Hooks *CommitHooks
}
