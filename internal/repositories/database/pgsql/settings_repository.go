package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
)

// PgxSettingsRepository keeps the single engine_settings row (id = 1).
type PgxSettingsRepository struct {
	BaseRepository
}

var _ portsrepo.SettingsRepository = (*PgxSettingsRepository)(nil)

func (r *PgxSettingsRepository) GetSettings(ctx context.Context) (*domain.EngineSettings, error) {
	return r.get(ctx, "")
}

func (r *PgxSettingsRepository) GetSettingsForUpdate(ctx context.Context) (*domain.EngineSettings, error) {
	return r.get(ctx, "FOR UPDATE")
}

func (r *PgxSettingsRepository) get(ctx context.Context, lock string) (*domain.EngineSettings, error) {
	query := `
		SELECT base_currency, asset_capitalization_threshold, corporate_tax_rate, aging_boundaries, updated_at, updated_by
		FROM engine_settings
		WHERE id = 1 ` + lock + `;
	`
	var s domain.EngineSettings
	var boundaries []int32
	err := r.db.QueryRow(ctx, query).Scan(
		&s.BaseCurrency,
		&s.AssetCapitalizationThreshold,
		&s.CorporateTaxRate,
		&boundaries,
		&s.UpdatedAt,
		&s.UpdatedBy,
	)
	if err != nil {
		return nil, notFound(err, "settings", "engine")
	}
	s.AgingBoundaries = make(domain.AgingBoundaries, len(boundaries))
	for i, b := range boundaries {
		s.AgingBoundaries[i] = int(b)
	}
	return &s, nil
}

func (r *PgxSettingsRepository) SaveSettings(ctx context.Context, s domain.EngineSettings) error {
	boundaries := make([]int32, len(s.AgingBoundaries))
	for i, b := range s.AgingBoundaries {
		boundaries[i] = int32(b)
	}

	query := `
		INSERT INTO engine_settings (id, base_currency, asset_capitalization_threshold, corporate_tax_rate, aging_boundaries, updated_at, updated_by)
		VALUES (1, $1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET asset_capitalization_threshold = EXCLUDED.asset_capitalization_threshold,
		    corporate_tax_rate = EXCLUDED.corporate_tax_rate,
		    aging_boundaries = EXCLUDED.aging_boundaries,
		    updated_at = EXCLUDED.updated_at,
		    updated_by = EXCLUDED.updated_by;
	`
	_, err := r.db.Exec(ctx, query, s.BaseCurrency, s.AssetCapitalizationThreshold, s.CorporateTaxRate, boundaries, s.UpdatedAt, s.UpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to save engine settings: %w", err)
	}
	return nil
}

type PgxApprovalRepository struct {
	BaseRepository
}

var _ portsrepo.ApprovalRepositoryFacade = (*PgxApprovalRepository)(nil)

func (r *PgxApprovalRepository) FindApproval(ctx context.Context, kind domain.SourceKind, documentID string) (*domain.Approval, error) {
	query := `
		SELECT document_kind, document_id, status, comment, created_at, created_by, last_updated_at, last_updated_by
		FROM approvals
		WHERE document_kind = $1 AND document_id = $2;
	`
	var a domain.Approval
	err := r.db.QueryRow(ctx, query, kind, documentID).Scan(
		&a.DocumentKind,
		&a.DocumentID,
		&a.Status,
		&a.Comment,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, notFound(err, "approval", documentID)
	}
	return &a, nil
}

// SaveApproval upserts the decision for a document.
func (r *PgxApprovalRepository) SaveApproval(ctx context.Context, a domain.Approval) error {
	query := `
		INSERT INTO approvals (document_kind, document_id, status, comment, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (document_kind, document_id) DO UPDATE
		SET status = EXCLUDED.status,
		    comment = EXCLUDED.comment,
		    last_updated_at = EXCLUDED.last_updated_at,
		    last_updated_by = EXCLUDED.last_updated_by;
	`
	_, err := r.db.Exec(ctx, query, a.DocumentKind, a.DocumentID, a.Status, a.Comment, a.CreatedAt, a.CreatedBy, a.LastUpdatedAt, a.LastUpdatedBy)
	if err != nil {
		return fmt.Errorf("failed to save approval for %s %s: %w", a.DocumentKind, a.DocumentID, err)
	}
	return nil
}
