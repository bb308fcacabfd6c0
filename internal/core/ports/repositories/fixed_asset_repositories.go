package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// FixedAssetRepositoryFacade persists the fixed asset register.
type FixedAssetRepositoryFacade interface {
	// FindAssetByID retrieves an asset.
	FindAssetByID(ctx context.Context, assetID string) (*domain.FixedAsset, error)

	// FindAssetForUpdate reads and locks an asset.
	FindAssetForUpdate(ctx context.Context, assetID string) (*domain.FixedAsset, error)

	// ListAssetsByStatus returns assets in the given status ordered by id.
	ListAssetsByStatus(ctx context.Context, status domain.AssetStatus) ([]domain.FixedAsset, error)

	// SaveAsset persists a new asset.
	SaveAsset(ctx context.Context, asset domain.FixedAsset) error

	// UpdateAsset overwrites the mutable fields of an asset.
	UpdateAsset(ctx context.Context, asset domain.FixedAsset) error
}
