package services

// ServiceContainer holds instances of all the application services.
// This is the main entry point for accessing service functionality and
// is used throughout the application, particularly in the handlers.
type ServiceContainer struct {
	ChartOfAccounts ChartOfAccountsSvcFacade
	Currency        CurrencySvcFacade
	ExchangeRate    ExchangeRateSvcFacade
	Settings        SettingsSvcFacade
	Approval        ApprovalSvcFacade
	Ledger          LedgerSvcFacade
	Invoice         InvoiceSvcFacade
	Payment         PaymentSvcFacade
	Aging           AgingSvcFacade
	Tax             TaxSvcFacade
	Asset           AssetSvcFacade
}
