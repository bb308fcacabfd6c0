package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
)

type PgxFixedAssetRepository struct {
	BaseRepository
}

var _ portsrepo.FixedAssetRepositoryFacade = (*PgxFixedAssetRepository)(nil)

const fixedAssetColumns = `
	asset_id, name, currency_code, cost, salvage_value, useful_life_months, acquisition_date, status,
	base_cost, base_salvage, accumulated_depreciation, depreciated_months, last_depreciated_period,
	capitalization_entry_id, disposal_entry_id, disposal_proceeds,
	created_at, created_by, last_updated_at, last_updated_by`

func scanFixedAsset(row pgx.Row) (domain.FixedAsset, error) {
	var a domain.FixedAsset
	err := row.Scan(
		&a.AssetID,
		&a.Name,
		&a.CurrencyCode,
		&a.Cost,
		&a.SalvageValue,
		&a.UsefulLifeMonths,
		&a.AcquisitionDate,
		&a.Status,
		&a.BaseCost,
		&a.BaseSalvage,
		&a.AccumulatedDepreciation,
		&a.DepreciatedMonths,
		&a.LastDepreciatedPeriod,
		&a.CapitalizationEntryID,
		&a.DisposalEntryID,
		&a.DisposalProceeds,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	return a, err
}

func (r *PgxFixedAssetRepository) SaveAsset(ctx context.Context, a domain.FixedAsset) error {
	query := `
		INSERT INTO fixed_assets (` + fixedAssetColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.db.Exec(ctx, query,
		a.AssetID, a.Name, a.CurrencyCode, a.Cost, a.SalvageValue, a.UsefulLifeMonths, a.AcquisitionDate, a.Status,
		a.BaseCost, a.BaseSalvage, a.AccumulatedDepreciation, a.DepreciatedMonths, a.LastDepreciatedPeriod,
		a.CapitalizationEntryID, a.DisposalEntryID, a.DisposalProceeds,
		a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy,
	)
	if err != nil {
		return saveErr(err, "asset", a.AssetID)
	}
	return nil
}

func (r *PgxFixedAssetRepository) UpdateAsset(ctx context.Context, a domain.FixedAsset) error {
	query := `
		UPDATE fixed_assets
		SET status = $2, base_cost = $3, base_salvage = $4, accumulated_depreciation = $5,
		    depreciated_months = $6, last_depreciated_period = $7, capitalization_entry_id = $8,
		    disposal_entry_id = $9, disposal_proceeds = $10, last_updated_at = $11, last_updated_by = $12
		WHERE asset_id = $1;
	`
	tag, err := r.db.Exec(ctx, query,
		a.AssetID, a.Status, a.BaseCost, a.BaseSalvage, a.AccumulatedDepreciation,
		a.DepreciatedMonths, a.LastDepreciatedPeriod, a.CapitalizationEntryID,
		a.DisposalEntryID, a.DisposalProceeds, a.LastUpdatedAt, a.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update asset %s: %w", a.AssetID, err)
	}
	return expectOne(tag, "asset", a.AssetID)
}

func (r *PgxFixedAssetRepository) FindAssetByID(ctx context.Context, assetID string) (*domain.FixedAsset, error) {
	query := `SELECT ` + fixedAssetColumns + ` FROM fixed_assets WHERE asset_id = $1;`
	a, err := scanFixedAsset(r.db.QueryRow(ctx, query, assetID))
	if err != nil {
		return nil, notFound(err, "asset", assetID)
	}
	return &a, nil
}

func (r *PgxFixedAssetRepository) FindAssetForUpdate(ctx context.Context, assetID string) (*domain.FixedAsset, error) {
	query := `SELECT ` + fixedAssetColumns + ` FROM fixed_assets WHERE asset_id = $1 FOR UPDATE;`
	a, err := scanFixedAsset(r.db.QueryRow(ctx, query, assetID))
	if err != nil {
		return nil, notFound(err, "asset", assetID)
	}
	return &a, nil
}

func (r *PgxFixedAssetRepository) ListAssetsByStatus(ctx context.Context, status domain.AssetStatus) ([]domain.FixedAsset, error) {
	query := `SELECT ` + fixedAssetColumns + ` FROM fixed_assets WHERE status = $1 ORDER BY asset_id;`
	rows, err := r.db.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer rows.Close()

	var out []domain.FixedAsset
	for rows.Next() {
		a, err := scanFixedAsset(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan asset row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
