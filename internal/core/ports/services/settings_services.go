package services

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// SettingsSvcFacade mediates access to the engine settings record.
type SettingsSvcFacade interface {
	// Current returns the settings, loading them on first use.
	Current(ctx context.Context) (*domain.EngineSettings, error)

	// Update edits the settings under a row lock and refreshes the cache.
	Update(ctx context.Context, req dto.UpdateSettingsRequest, userID string) (*domain.EngineSettings, error)
}
