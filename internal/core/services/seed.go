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
	"github.com/shopspring/decimal"
)

// SeedUserID is recorded as the author of seeded rows.
const SeedUserID = "system"

// DefaultCorporateTaxRate is the rate seeded into fresh settings.
var DefaultCorporateTaxRate = decimal.RequireFromString("0.09")

type seedAccount struct {
	name string
	typ  domain.AccountType
}

var defaultAccountNames = map[domain.AccountRole]seedAccount{
	domain.RoleBank:              {"Bank", domain.Asset},
	domain.RoleAR:                {"Accounts Receivable", domain.Asset},
	domain.RoleVATIn:             {"VAT Input", domain.Asset},
	domain.RoleFixedAsset:        {"Fixed Assets", domain.Asset},
	domain.RoleAccumDepreciation: {"Accumulated Depreciation", domain.Asset},
	domain.RoleAP:                {"Accounts Payable", domain.Liability},
	domain.RoleVATOut:            {"VAT Output", domain.Liability},
	domain.RoleTaxCorpPayable:    {"Corporate Tax Payable", domain.Liability},
	domain.RoleRevenue:           {"Revenue", domain.Income},
	domain.RoleFXGain:            {"Realised FX Gain", domain.Income},
	domain.RoleDisposalGain:      {"Gain on Asset Disposal", domain.Income},
	domain.RoleExpense:           {"Operating Expenses", domain.Expense},
	domain.RoleDepreciationExp:   {"Depreciation Expense", domain.Expense},
	domain.RoleFXLoss:            {"Realised FX Loss", domain.Expense},
	domain.RoleDisposalLoss:      {"Loss on Asset Disposal", domain.Expense},
	domain.RoleTaxCorpExpense:    {"Corporate Tax Expense", domain.Expense},
}

// SeedLedger installs the base currency, the default chart of accounts with
// its role mappings and the settings record. Existing rows are kept, so it
// can run on every start.
func SeedLedger(ctx context.Context, uow portsrepo.UnitOfWork, baseCurrency string) error {
	baseCurrency = strings.ToUpper(baseCurrency)
	now := time.Now().UTC()
	audit := newAuditFields(SeedUserID, now)

	err := uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		if _, err := repos.CurrencyRepo.FindCurrencyByCode(ctx, baseCurrency); errors.Is(err, apperrors.ErrNotFound) {
			if err := repos.CurrencyRepo.SaveCurrency(ctx, domain.Currency{
				CurrencyCode: baseCurrency,
				Symbol:       baseCurrency,
				Name:         baseCurrency,
				MinorUnits:   defaultMinorUnits,
				AuditFields:  audit,
			}); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		mappings, err := repos.AccountRoleRepo.FindRoleMappings(ctx)
		if err != nil {
			return err
		}
		mapped := make(map[domain.AccountRole]bool, len(mappings))
		for _, m := range mappings {
			mapped[m.Role] = true
		}

		for _, role := range domain.AllRoles() {
			code := domain.DefaultRoleAccounts[role]
			if _, err := repos.AccountRepo.FindAccountByCode(ctx, code); errors.Is(err, apperrors.ErrNotFound) {
				def := defaultAccountNames[role]
				if err := repos.AccountRepo.SaveAccount(ctx, domain.Account{
					Code:        code,
					Name:        def.name,
					AccountType: def.typ,
					IsActive:    true,
					AuditFields: audit,
				}); err != nil {
					return fmt.Errorf("failed to seed account %s: %w", code, err)
				}
			} else if err != nil {
				return err
			}
			if !mapped[role] {
				if err := repos.AccountRoleRepo.SaveRoleMapping(ctx, domain.RoleMapping{Role: role, AccountCode: code, AuditFields: audit}); err != nil {
					return fmt.Errorf("failed to seed role %s: %w", role, err)
				}
			}
		}

		current, err := repos.SettingsRepo.GetSettings(ctx)
		switch {
		case errors.Is(err, apperrors.ErrNotFound):
			return repos.SettingsRepo.SaveSettings(ctx, domain.EngineSettings{
				BaseCurrency:                 baseCurrency,
				AssetCapitalizationThreshold: decimal.Zero,
				CorporateTaxRate:             DefaultCorporateTaxRate,
				AgingBoundaries:              domain.DefaultAgingBoundaries,
				UpdatedAt:                    now,
				UpdatedBy:                    SeedUserID,
			})
		case err != nil:
			return err
		case current.BaseCurrency != baseCurrency:
			return apperrors.NewValidationError("ledger is already seeded with base currency %s", current.BaseCurrency)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed ledger: %w", err)
	}

	slog.InfoContext(ctx, "Ledger seeded", slog.String("base_currency", baseCurrency))
	return nil
}
