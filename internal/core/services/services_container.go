package services

import (
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/platform/metrics"
)

// NewServiceContainer wires every engine service over one unit of work.
// rateCache may be nil to disable rate caching.
func NewServiceContainer(uow portsrepo.UnitOfWork, recorder metrics.Recorder, rateCache *RateCache) *portssvc.ServiceContainer {
	if recorder == nil {
		recorder = metrics.Noop{}
	}

	coa := NewChartOfAccountsService(uow)
	currencies := NewCurrencyService(uow)
	settings := NewSettingsService(uow)
	rates := NewExchangeRateService(uow, settings, rateCache, recorder)
	approvals := NewApprovalService(uow)
	ledger := NewLedgerService(LedgerDeps{
		UnitOfWork: uow,
		Guard:      NewPostingGuard(),
		Accounts:   coa,
		Rates:      rates,
		Settings:   settings,
		Approvals:  approvals,
		Metrics:    recorder,
	})

	return &portssvc.ServiceContainer{
		ChartOfAccounts: coa,
		Currency:        currencies,
		ExchangeRate:    rates,
		Settings:        settings,
		Approval:        approvals,
		Ledger:          ledger,
		Invoice:         NewInvoiceService(uow),
		Payment:         NewPaymentService(uow, ledger, coa, rates, settings),
		Aging:           NewAgingService(uow, settings),
		Tax:             NewTaxService(uow, ledger, coa, settings),
		Asset:           NewAssetService(uow, ledger, coa, rates, settings, approvals),
	}
}
