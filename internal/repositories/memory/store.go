// Package memory is an in-process implementation of the repository ports.
// It backs the memory storage driver and the service tests.
package memory

import (
	"context"
	"sync"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// state is one consistent snapshot of every table.
type state struct {
	accounts    map[string]domain.Account
	roles       map[domain.AccountRole]domain.RoleMapping
	currencies  map[string]domain.Currency
	rates       map[string][]domain.ExchangeRate
	entries     map[string]domain.JournalEntry
	postingKeys map[string]domain.PostingRecord
	invoices    map[string]domain.Invoice
	payments    map[string]domain.Payment
	filings     map[string]domain.TaxFiling
	assets      map[string]domain.FixedAsset
	approvals   map[string]domain.Approval
	settings    *domain.EngineSettings
}

func newState() *state {
	return &state{
		accounts:    map[string]domain.Account{},
		roles:       map[domain.AccountRole]domain.RoleMapping{},
		currencies:  map[string]domain.Currency{},
		rates:       map[string][]domain.ExchangeRate{},
		entries:     map[string]domain.JournalEntry{},
		postingKeys: map[string]domain.PostingRecord{},
		invoices:    map[string]domain.Invoice{},
		payments:    map[string]domain.Payment{},
		filings:     map[string]domain.TaxFiling{},
		assets:      map[string]domain.FixedAsset{},
		approvals:   map[string]domain.Approval{},
	}
}

func (s *state) clone() *state {
	out := newState()
	for k, v := range s.accounts {
		out.accounts[k] = v
	}
	for k, v := range s.roles {
		out.roles[k] = v
	}
	for k, v := range s.currencies {
		out.currencies[k] = v
	}
	for k, v := range s.rates {
		out.rates[k] = append([]domain.ExchangeRate(nil), v...)
	}
	for k, v := range s.entries {
		out.entries[k] = cloneEntry(v)
	}
	for k, v := range s.postingKeys {
		out.postingKeys[k] = v
	}
	for k, v := range s.invoices {
		out.invoices[k] = v
	}
	for k, v := range s.payments {
		out.payments[k] = clonePayment(v)
	}
	for k, v := range s.filings {
		out.filings[k] = v
	}
	for k, v := range s.assets {
		out.assets[k] = v
	}
	for k, v := range s.approvals {
		out.approvals[k] = v
	}
	if s.settings != nil {
		c := cloneSettings(*s.settings)
		out.settings = &c
	}
	return out
}

func cloneEntry(e domain.JournalEntry) domain.JournalEntry {
	out := e
	out.Lines = make([]domain.JournalLine, len(e.Lines))
	for i, l := range e.Lines {
		if l.Dimensions != nil {
			dims := make(map[string]string, len(l.Dimensions))
			for k, v := range l.Dimensions {
				dims[k] = v
			}
			l.Dimensions = dims
		}
		out.Lines[i] = l
	}
	return out
}

func clonePayment(p domain.Payment) domain.Payment {
	out := p
	out.Allocations = append([]domain.PaymentAllocation(nil), p.Allocations...)
	return out
}

func cloneSettings(s domain.EngineSettings) domain.EngineSettings {
	out := s
	out.AgingBoundaries = append(domain.AgingBoundaries(nil), s.AgingBoundaries...)
	return out
}

// Store holds the committed state. WithinTx runs against a private copy
// and swaps it in on success, so a failed unit of work leaves nothing behind.
// Transactions are serialized, which stands in for row locks.
type Store struct {
	txMu sync.Mutex

	mu   sync.RWMutex
	data *state
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{data: newState()}
}

var _ portsrepo.UnitOfWork = (*Store)(nil)

// WithinTx implements portsrepo.UnitOfWork.
func (s *Store) WithinTx(ctx context.Context, fn portsrepo.TxFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.RLock()
	work := s.data.clone()
	s.mu.RUnlock()

	repos := s.provider(&view{work: work})
	repos.Hooks = &portsrepo.CommitHooks{}
	if err := fn(ctx, repos); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	s.data = work
	s.mu.Unlock()
	repos.Hooks.Run()
	return nil
}

// Repositories implements portsrepo.UnitOfWork.
func (s *Store) Repositories() portsrepo.RepositoryProvider {
	return s.provider(&view{store: s})
}

func (s *Store) provider(v *view) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:      &accountRepository{v},
		AccountRoleRepo:  &accountRoleRepository{v},
		CurrencyRepo:     &currencyRepository{v},
		ExchangeRateRepo: &exchangeRateRepository{v},
		JournalRepo:      &journalRepository{v},
		PostingKeyRepo:   &postingKeyRepository{v},
		InvoiceRepo:      &invoiceRepository{v},
		PaymentRepo:      &paymentRepository{v},
		TaxFilingRepo:    &taxFilingRepository{v},
		FixedAssetRepo:   &fixedAssetRepository{v},
		ApprovalRepo:     &approvalRepository{v},
		SettingsRepo:     &settingsRepository{v},
	}
}

// view routes repository calls either to a transaction's working copy or,
// outside a transaction, to the committed state.
type view struct {
	store *Store
	work  *state
}

func (v *view) read(fn func(*state) error) error {
	if v.work != nil {
		return fn(v.work)
	}
	v.store.mu.RLock()
	defer v.store.mu.RUnlock()
	return fn(v.store.data)
}

// write outside a transaction commits immediately. fn must validate before
// it mutates.
func (v *view) write(fn func(*state) error) error {
	if v.work != nil {
		return fn(v.work)
	}
	v.store.txMu.Lock()
	defer v.store.txMu.Unlock()
	v.store.mu.Lock()
	defer v.store.mu.Unlock()
	return fn(v.store.data)
}
