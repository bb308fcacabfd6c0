package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// AssetSvcFacade posts fixed asset events to the ledger.
type AssetSvcFacade interface {
	// CreateAsset registers a draft asset.
	CreateAsset(ctx context.Context, req dto.CreateAssetRequest, userID string) (*domain.FixedAsset, error)

	// GetAsset retrieves an asset.
	GetAsset(ctx context.Context, assetID string) (*domain.FixedAsset, error)

	// Capitalize posts the capitalization entry of an approved draft asset.
	Capitalize(ctx context.Context, assetID string, req dto.CapitalizeAssetRequest, userID string) (*domain.AssetPostingResult, error)

	// Depreciate posts one month of straight-line depreciation. Repeating a period is a replay.
	Depreciate(ctx context.Context, assetID string, period string, userID string) (*domain.AssetPostingResult, error)

	// DepreciateAll depreciates every active asset for period.
	DepreciateAll(ctx context.Context, period string, userID string) ([]domain.AssetPostingResult, error)

	// Dispose posts the disposal entry including any gain or loss.
	Dispose(ctx context.Context, assetID string, req dto.DisposeAssetRequest, userID string) (*domain.AssetPostingResult, error)
}
