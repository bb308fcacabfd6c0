package memory

import (
	"context"
	"sort"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

type invoiceRepository struct{ v *view }

var _ portsrepo.InvoiceRepositoryFacade = (*invoiceRepository)(nil)

func (r *invoiceRepository) FindInvoiceByID(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error) {
	var out *domain.Invoice
	err := r.v.read(func(s *state) error {
		inv, ok := s.invoices[key(string(kind), invoiceID)]
		if !ok {
			return apperrors.NewNotFoundError("invoice", invoiceID)
		}
		out = &inv
		return nil
	})
	return out, err
}

func (r *invoiceRepository) FindInvoiceForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceID string) (*domain.Invoice, error) {
	return r.FindInvoiceByID(ctx, kind, invoiceID)
}

func (r *invoiceRepository) FindInvoicesForUpdate(ctx context.Context, kind domain.InvoiceKind, invoiceIDs []string) (map[string]domain.Invoice, error) {
	out := make(map[string]domain.Invoice, len(invoiceIDs))
	err := r.v.read(func(s *state) error {
		for _, id := range invoiceIDs {
			if inv, ok := s.invoices[key(string(kind), id)]; ok {
				out[id] = inv
			}
		}
		return nil
	})
	return out, err
}

func (r *invoiceRepository) ListOpenInvoices(ctx context.Context, filter portsrepo.InvoiceFilter) ([]domain.Invoice, error) {
	var out []domain.Invoice
	err := r.v.read(func(s *state) error {
		for _, inv := range s.invoices {
			if inv.Kind != filter.Kind || !inv.IsOpen() {
				continue
			}
			if filter.CounterpartyID != "" && inv.CounterpartyID != filter.CounterpartyID {
				continue
			}
			out = append(out, inv)
		}
		sort.Slice(out, func(i, j int) bool {
			if !out[i].DueDate.Equal(out[j].DueDate) {
				return out[i].DueDate.Before(out[j].DueDate)
			}
			return out[i].InvoiceID < out[j].InvoiceID
		})
		return nil
	})
	return out, err
}

func (r *invoiceRepository) SaveInvoice(ctx context.Context, invoice domain.Invoice) error {
	return r.v.write(func(s *state) error {
		k := key(string(invoice.Kind), invoice.InvoiceID)
		if _, ok := s.invoices[k]; ok {
			return apperrors.ErrDuplicate
		}
		s.invoices[k] = invoice
		return nil
	})
}

func (r *invoiceRepository) UpdateInvoice(ctx context.Context, invoice domain.Invoice) error {
	return r.v.write(func(s *state) error {
		k := key(string(invoice.Kind), invoice.InvoiceID)
		if _, ok := s.invoices[k]; !ok {
			return apperrors.NewNotFoundError("invoice", invoice.InvoiceID)
		}
		s.invoices[k] = invoice
		return nil
	})
}

type paymentRepository struct{ v *view }

var _ portsrepo.PaymentRepositoryFacade = (*paymentRepository)(nil)

func (r *paymentRepository) FindPaymentByID(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error) {
	var out *domain.Payment
	err := r.v.read(func(s *state) error {
		p, ok := s.payments[key(string(kind), paymentID)]
		if !ok {
			return apperrors.NewNotFoundError("payment", paymentID)
		}
		c := clonePayment(p)
		out = &c
		return nil
	})
	return out, err
}

func (r *paymentRepository) FindPaymentForUpdate(ctx context.Context, kind domain.InvoiceKind, paymentID string) (*domain.Payment, error) {
	return r.FindPaymentByID(ctx, kind, paymentID)
}

func (r *paymentRepository) SavePayment(ctx context.Context, payment domain.Payment) error {
	return r.v.write(func(s *state) error {
		k := key(string(payment.Kind), payment.PaymentID)
		if _, ok := s.payments[k]; ok {
			return apperrors.ErrDuplicate
		}
		s.payments[k] = clonePayment(payment)
		return nil
	})
}

func (r *paymentRepository) UpdatePayment(ctx context.Context, payment domain.Payment) error {
	return r.v.write(func(s *state) error {
		k := key(string(payment.Kind), payment.PaymentID)
		if _, ok := s.payments[k]; !ok {
			return apperrors.NewNotFoundError("payment", payment.PaymentID)
		}
		s.payments[k] = clonePayment(payment)
		return nil
	})
}

type taxFilingRepository struct{ v *view }

var _ portsrepo.TaxFilingRepositoryFacade = (*taxFilingRepository)(nil)

func (r *taxFilingRepository) FindFilingByID(ctx context.Context, filingID string) (*domain.TaxFiling, error) {
	var out *domain.TaxFiling
	err := r.v.read(func(s *state) error {
		f, ok := s.filings[filingID]
		if !ok {
			return apperrors.NewNotFoundError("tax filing", filingID)
		}
		out = &f
		return nil
	})
	return out, err
}

func (r *taxFilingRepository) FindFilingForUpdate(ctx context.Context, filingID string) (*domain.TaxFiling, error) {
	return r.FindFilingByID(ctx, filingID)
}

func (r *taxFilingRepository) FindActiveFilingForPeriod(ctx context.Context, start, end time.Time) (*domain.TaxFiling, error) {
	var out *domain.TaxFiling
	err := r.v.read(func(s *state) error {
		for _, f := range s.filings {
			if f.Status == domain.TaxReversed || !f.PeriodStart.Equal(start) || !f.PeriodEnd.Equal(end) {
				continue
			}
			found := f
			out = &found
			return nil
		}
		return apperrors.NewNotFoundError("tax filing", start.Format(time.DateOnly))
	})
	return out, err
}

func (r *taxFilingRepository) SaveFiling(ctx context.Context, filing domain.TaxFiling) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.filings[filing.FilingID]; ok {
			return apperrors.ErrDuplicate
		}
		s.filings[filing.FilingID] = filing
		return nil
	})
}

func (r *taxFilingRepository) UpdateFiling(ctx context.Context, filing domain.TaxFiling) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.filings[filing.FilingID]; !ok {
			return apperrors.NewNotFoundError("tax filing", filing.FilingID)
		}
		s.filings[filing.FilingID] = filing
		return nil
	})
}

type fixedAssetRepository struct{ v *view }

var _ portsrepo.FixedAssetRepositoryFacade = (*fixedAssetRepository)(nil)

func (r *fixedAssetRepository) FindAssetByID(ctx context.Context, assetID string) (*domain.FixedAsset, error) {
	var out *domain.FixedAsset
	err := r.v.read(func(s *state) error {
		a, ok := s.assets[assetID]
		if !ok {
			return apperrors.NewNotFoundError("asset", assetID)
		}
		out = &a
		return nil
	})
	return out, err
}

func (r *fixedAssetRepository) FindAssetForUpdate(ctx context.Context, assetID string) (*domain.FixedAsset, error) {
	return r.FindAssetByID(ctx, assetID)
}

func (r *fixedAssetRepository) ListAssetsByStatus(ctx context.Context, status domain.AssetStatus) ([]domain.FixedAsset, error) {
	var out []domain.FixedAsset
	err := r.v.read(func(s *state) error {
		for _, a := range s.assets {
			if a.Status == status {
				out = append(out, a)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].AssetID < out[j].AssetID })
		return nil
	})
	return out, err
}

func (r *fixedAssetRepository) SaveAsset(ctx context.Context, asset domain.FixedAsset) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.assets[asset.AssetID]; ok {
			return apperrors.ErrDuplicate
		}
		s.assets[asset.AssetID] = asset
		return nil
	})
}

func (r *fixedAssetRepository) UpdateAsset(ctx context.Context, asset domain.FixedAsset) error {
	return r.v.write(func(s *state) error {
		if _, ok := s.assets[asset.AssetID]; !ok {
			return apperrors.NewNotFoundError("asset", asset.AssetID)
		}
		s.assets[asset.AssetID] = asset
		return nil
	})
}
