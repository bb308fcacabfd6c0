package repositories

import (
	"context"

	"github.com/SscSPs/gl_engine/internal/core/domain"
)

// SettingsRepository reads and writes the single engine settings record.
type SettingsRepository interface {
	// GetSettings returns the settings record.
	GetSettings(ctx context.Context) (*domain.EngineSettings, error)

	// GetSettingsForUpdate reads and locks the settings record.
	GetSettingsForUpdate(ctx context.Context) (*domain.EngineSettings, error)

	// SaveSettings overwrites the settings record.
	SaveSettings(ctx context.Context, settings domain.EngineSettings) error
}
