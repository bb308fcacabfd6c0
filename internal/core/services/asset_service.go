package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var errFullyDepreciated = apperrors.NewValidationError("asset is fully depreciated")

type assetService struct {
	BaseService
	uow       portsrepo.UnitOfWork
	ledger    portssvc.LedgerSvcFacade
	accounts  portssvc.ChartOfAccountsSvcFacade
	rates     portssvc.ExchangeRateSvcFacade
	settings  portssvc.SettingsSvcFacade
	approvals portssvc.ApprovalSvcFacade
}

// NewAssetService creates the fixed asset engine.
func NewAssetService(uow portsrepo.UnitOfWork, ledger portssvc.LedgerSvcFacade, accounts portssvc.ChartOfAccountsSvcFacade, rates portssvc.ExchangeRateSvcFacade, settings portssvc.SettingsSvcFacade, approvals portssvc.ApprovalSvcFacade) portssvc.AssetSvcFacade {
	return &assetService{
		uow:       uow,
		ledger:    ledger,
		accounts:  accounts,
		rates:     rates,
		settings:  settings,
		approvals: approvals,
	}
}

var _ portssvc.AssetSvcFacade = (*assetService)(nil)

func (s *assetService) CreateAsset(ctx context.Context, req dto.CreateAssetRequest, userID string) (*domain.FixedAsset, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.NewValidationError("asset name is required")
	}
	if !req.Cost.IsPositive() {
		return nil, apperrors.NewValidationError("asset cost must be positive")
	}
	if req.SalvageValue.IsNegative() || req.SalvageValue.GreaterThanOrEqual(req.Cost) {
		return nil, apperrors.NewValidationError("salvage value must be at least zero and below cost")
	}
	if req.UsefulLifeMonths < 1 {
		return nil, apperrors.NewValidationError("useful life must be at least one month")
	}

	repos := s.uow.Repositories()
	currency, err := minorUnitsOf(ctx, repos, strings.ToUpper(req.CurrencyCode))
	if err != nil {
		return nil, err
	}
	if !currency.IsExact(req.Cost) || !currency.IsExact(req.SalvageValue) {
		return nil, apperrors.NewValidationError("asset amounts exceed %d decimal places", currency.MinorUnits)
	}

	asset := domain.FixedAsset{
		AssetID:                 uuid.NewString(),
		Name:                    req.Name,
		CurrencyCode:            currency.CurrencyCode,
		Cost:                    req.Cost,
		SalvageValue:            req.SalvageValue,
		UsefulLifeMonths:        req.UsefulLifeMonths,
		AcquisitionDate:         dateOnly(req.AcquisitionDate),
		Status:                  domain.AssetDraft,
		BaseCost:                decimal.Zero,
		BaseSalvage:             decimal.Zero,
		AccumulatedDepreciation: decimal.Zero,
		AuditFields:             newAuditFields(userID, time.Now().UTC()),
	}
	if err := repos.FixedAssetRepo.SaveAsset(ctx, asset); err != nil {
		s.LogError(ctx, err, "Failed to save asset", slog.String("name", req.Name))
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	s.LogInfo(ctx, "Asset registered", slog.String("asset_id", asset.AssetID), slog.String("cost", asset.Cost.String()))
	return &asset, nil
}

func (s *assetService) GetAsset(ctx context.Context, assetID string) (*domain.FixedAsset, error) {
	return s.uow.Repositories().FixedAssetRepo.FindAssetByID(ctx, assetID)
}

func (s *assetService) Capitalize(ctx context.Context, assetID string, req dto.CapitalizeAssetRequest, userID string) (*domain.AssetPostingResult, error) {
	funding := domain.RoleBank
	if req.FundingRole != "" {
		funding = domain.AccountRole(req.FundingRole)
	}
	if funding != domain.RoleBank && funding != domain.RoleAP {
		return nil, apperrors.NewValidationError("funding role must be BANK or AP, got '%s'", req.FundingRole)
	}

	var result *domain.AssetPostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		asset, err := repos.FixedAssetRepo.FindAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		date := asset.AcquisitionDate
		if req.Date != nil {
			date = dateOnly(*req.Date)
		}
		if asset.Status == domain.AssetDraft {
			if err := s.approvals.EnsureApproved(ctx, repos, domain.SourceAssetCapitalization, assetID); err != nil {
				return err
			}
		}

		fingerprint, err := fingerprintCapitalization(*asset, date, funding)
		if err != nil {
			return err
		}

		var baseCost, baseSalvage decimal.Decimal
		posting, err := s.ledger.PostInTx(ctx, repos, portssvc.DocumentPosting{
			Source:      domain.SourceRef{Kind: domain.SourceAssetCapitalization, ID: assetID},
			Fingerprint: fingerprint,
			UserID:      userID,
			Build: func(ctx context.Context) (*domain.JournalEntry, error) {
				if asset.Status != domain.AssetDraft {
					return nil, &apperrors.InvalidStateTransitionError{Entity: "asset", ID: assetID, From: string(asset.Status), To: string(domain.AssetActive)}
				}
				settings, err := s.settings.Current(ctx)
				if err != nil {
					return nil, err
				}
				base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
				if err != nil {
					return nil, err
				}
				rate, err := s.rates.RateToBase(ctx, repos, asset.CurrencyCode, asset.AcquisitionDate)
				if err != nil {
					return nil, err
				}
				baseCost = base.Round(asset.Cost.Mul(rate))
				baseSalvage = base.Round(asset.SalvageValue.Mul(rate))
				if baseCost.LessThan(settings.AssetCapitalizationThreshold) {
					return nil, apperrors.NewValidationError("asset cost %s is below the capitalization threshold %s",
						baseCost.String(), settings.AssetCapitalizationThreshold.String())
				}

				roles, err := s.accounts.ResolveAll(ctx, repos, domain.RoleFixedAsset, funding)
				if err != nil {
					return nil, err
				}
				memo := "Capitalization of " + asset.Name
				var ls lineSet
				line := ls.debit(roles[domain.RoleFixedAsset], domain.RoleFixedAsset, baseCost, memo)
				foreign(line, asset.Cost, asset.CurrencyCode, settings.BaseCurrency)
				tag(line, "asset", assetID)
				line = ls.credit(roles[funding], funding, baseCost, memo)
				foreign(line, asset.Cost, asset.CurrencyCode, settings.BaseCurrency)
				tag(line, "asset", assetID)
				return &domain.JournalEntry{EntryDate: date, Memo: memo, Lines: ls.lines}, nil
			},
		})
		if err != nil {
			return err
		}
		result = &domain.AssetPostingResult{Asset: asset, PostingResult: *posting}
		if posting.Replayed {
			return nil
		}

		asset.Status = domain.AssetActive
		asset.BaseCost = baseCost
		asset.BaseSalvage = baseSalvage
		asset.CapitalizationEntryID = &posting.Entry.EntryID
		touch(&asset.AuditFields, userID, time.Now().UTC())
		return repos.FixedAssetRepo.UpdateAsset(ctx, *asset)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to capitalize asset", slog.String("asset_id", assetID))
		return nil, err
	}
	return result, nil
}

func (s *assetService) Depreciate(ctx context.Context, assetID string, period string, userID string) (*domain.AssetPostingResult, error) {
	periodStart, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}

	var result *domain.AssetPostingResult
	err = s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		asset, err := repos.FixedAssetRepo.FindAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		fingerprint, err := fingerprintDepreciation(*asset, period)
		if err != nil {
			return err
		}

		var charge decimal.Decimal
		posting, err := s.ledger.PostInTx(ctx, repos, portssvc.DocumentPosting{
			Source:      domain.SourceRef{Kind: domain.SourceAssetDepreciation, ID: assetID + "/" + period},
			Fingerprint: fingerprint,
			UserID:      userID,
			Build: func(ctx context.Context) (*domain.JournalEntry, error) {
				if asset.Status != domain.AssetActive {
					return nil, &apperrors.InvalidStateTransitionError{Entity: "asset", ID: assetID, From: string(asset.Status), To: "DEPRECIATED"}
				}
				if periodStart.Before(monthStart(asset.AcquisitionDate)) {
					return nil, apperrors.NewValidationError("period %s precedes acquisition of asset %s", period, assetID)
				}
				if asset.LastDepreciatedPeriod != "" && period <= asset.LastDepreciatedPeriod {
					return nil, apperrors.NewValidationError("asset %s is already depreciated through %s", assetID, asset.LastDepreciatedPeriod)
				}

				settings, err := s.settings.Current(ctx)
				if err != nil {
					return nil, err
				}
				base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
				if err != nil {
					return nil, err
				}
				charge = asset.DepreciationCharge(base.MinorUnits)
				if charge.IsZero() {
					return nil, errFullyDepreciated
				}

				roles, err := s.accounts.ResolveAll(ctx, repos, domain.RoleDepreciationExp, domain.RoleAccumDepreciation)
				if err != nil {
					return nil, err
				}
				memo := fmt.Sprintf("Depreciation of %s for %s", asset.Name, period)
				var ls lineSet
				tag(ls.debit(roles[domain.RoleDepreciationExp], domain.RoleDepreciationExp, charge, memo), "asset", assetID)
				tag(ls.credit(roles[domain.RoleAccumDepreciation], domain.RoleAccumDepreciation, charge, memo), "asset", assetID)
				return &domain.JournalEntry{EntryDate: domain.PeriodEnd(periodStart), Memo: memo, Lines: ls.lines}, nil
			},
		})
		if err != nil {
			return err
		}
		result = &domain.AssetPostingResult{Asset: asset, PostingResult: *posting}
		if posting.Replayed {
			return nil
		}

		asset.AccumulatedDepreciation = asset.AccumulatedDepreciation.Add(charge)
		asset.DepreciatedMonths++
		asset.LastDepreciatedPeriod = period
		touch(&asset.AuditFields, userID, time.Now().UTC())
		return repos.FixedAssetRepo.UpdateAsset(ctx, *asset)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to depreciate asset", slog.String("asset_id", assetID), slog.String("period", period))
		return nil, err
	}
	return result, nil
}

// DepreciateAll runs one transaction per asset so one failure does not hold
// back the rest. Fully depreciated assets and assets acquired after the
// period are skipped.
func (s *assetService) DepreciateAll(ctx context.Context, period string, userID string) ([]domain.AssetPostingResult, error) {
	periodStart, err := domain.ParsePeriod(period)
	if err != nil {
		return nil, apperrors.NewValidationError("%s", err.Error())
	}
	assets, err := s.uow.Repositories().FixedAssetRepo.ListAssetsByStatus(ctx, domain.AssetActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list active assets: %w", err)
	}

	var results []domain.AssetPostingResult
	var errs []error
	for _, asset := range assets {
		if periodStart.Before(monthStart(asset.AcquisitionDate)) {
			continue
		}
		res, err := s.Depreciate(ctx, asset.AssetID, period, userID)
		if errors.Is(err, errFullyDepreciated) {
			continue
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("asset %s: %w", asset.AssetID, err))
			continue
		}
		results = append(results, *res)
	}

	s.LogInfo(ctx, "Depreciation run completed",
		slog.String("period", period),
		slog.Int("posted", len(results)),
		slog.Int("failed", len(errs)))
	return results, errors.Join(errs...)
}

func (s *assetService) Dispose(ctx context.Context, assetID string, req dto.DisposeAssetRequest, userID string) (*domain.AssetPostingResult, error) {
	if req.Proceeds.IsNegative() {
		return nil, apperrors.NewValidationError("disposal proceeds cannot be negative")
	}
	date := dateOnly(req.Date)

	var result *domain.AssetPostingResult
	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		asset, err := repos.FixedAssetRepo.FindAssetForUpdate(ctx, assetID)
		if err != nil {
			return err
		}
		switch asset.Status {
		case domain.AssetDraft:
			return &apperrors.InvalidStateTransitionError{Entity: "asset", ID: assetID, From: string(asset.Status), To: string(domain.AssetDisposed)}
		case domain.AssetActive:
			if err := s.approvals.EnsureApproved(ctx, repos, domain.SourceAssetDisposal, assetID); err != nil {
				return err
			}
		}

		fingerprint, err := fingerprintDisposal(*asset, date, req.Proceeds)
		if err != nil {
			return err
		}

		posting, err := s.ledger.PostInTx(ctx, repos, portssvc.DocumentPosting{
			Source:      domain.SourceRef{Kind: domain.SourceAssetDisposal, ID: assetID},
			Fingerprint: fingerprint,
			UserID:      userID,
			Build: func(ctx context.Context) (*domain.JournalEntry, error) {
				if asset.Status != domain.AssetActive {
					return nil, &apperrors.InvalidStateTransitionError{Entity: "asset", ID: assetID, From: string(asset.Status), To: string(domain.AssetDisposed)}
				}
				if date.Before(asset.AcquisitionDate) {
					return nil, apperrors.NewValidationError("disposal date precedes acquisition of asset %s", assetID)
				}
				return s.disposalEntry(ctx, repos, *asset, date, req.Proceeds)
			},
		})
		if err != nil {
			return err
		}
		result = &domain.AssetPostingResult{Asset: asset, PostingResult: *posting}
		if posting.Replayed {
			return nil
		}

		proceeds := req.Proceeds
		asset.Status = domain.AssetDisposed
		asset.DisposalEntryID = &posting.Entry.EntryID
		asset.DisposalProceeds = &proceeds
		touch(&asset.AuditFields, userID, time.Now().UTC())
		return repos.FixedAssetRepo.UpdateAsset(ctx, *asset)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to dispose asset", slog.String("asset_id", assetID))
		return nil, err
	}
	return result, nil
}

// disposalEntry removes the asset at base cost. Proceeds are in the base
// currency; the difference to net book value is the gain or loss.
func (s *assetService) disposalEntry(ctx context.Context, repos portsrepo.RepositoryProvider, asset domain.FixedAsset, date time.Time, proceeds decimal.Decimal) (*domain.JournalEntry, error) {
	settings, err := s.settings.Current(ctx)
	if err != nil {
		return nil, err
	}
	base, err := minorUnitsOf(ctx, repos, settings.BaseCurrency)
	if err != nil {
		return nil, err
	}
	if !base.IsExact(proceeds) {
		return nil, apperrors.NewValidationError("disposal proceeds exceed %d decimal places", base.MinorUnits)
	}

	roles, err := s.accounts.ResolveAll(ctx, repos,
		domain.RoleAccumDepreciation, domain.RoleBank, domain.RoleFixedAsset,
		domain.RoleDisposalGain, domain.RoleDisposalLoss)
	if err != nil {
		return nil, err
	}

	result := proceeds.Sub(asset.NetBookValue())
	memo := "Disposal of " + asset.Name
	var ls lineSet
	ls.debit(roles[domain.RoleAccumDepreciation], domain.RoleAccumDepreciation, asset.AccumulatedDepreciation, memo)
	ls.debit(roles[domain.RoleBank], domain.RoleBank, proceeds, memo)
	ls.credit(roles[domain.RoleFixedAsset], domain.RoleFixedAsset, asset.BaseCost, memo)
	switch {
	case result.IsPositive():
		ls.credit(roles[domain.RoleDisposalGain], domain.RoleDisposalGain, result, memo)
	case result.IsNegative():
		ls.debit(roles[domain.RoleDisposalLoss], domain.RoleDisposalLoss, result.Neg(), memo)
	}
	for i := range ls.lines {
		tag(&ls.lines[i], "asset", asset.AssetID)
	}
	return &domain.JournalEntry{EntryDate: date, Memo: memo, Lines: ls.lines}, nil
}

func monthStart(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
