package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SscSPs/gl_engine/internal/apperrors"
	"github.com/SscSPs/gl_engine/internal/core/domain"
	portsrepo "github.com/SscSPs/gl_engine/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/gl_engine/internal/core/ports/services"
	"github.com/SscSPs/gl_engine/internal/dto"
)

// settingsService caches the singleton settings record. Reads take the
// read lock; a miss or an update takes the write lock.
type settingsService struct {
	BaseService
	uow portsrepo.UnitOfWork

	mu     sync.RWMutex
	cached *domain.EngineSettings
}

// NewSettingsService creates the settings service.
func NewSettingsService(uow portsrepo.UnitOfWork) portssvc.SettingsSvcFacade {
	return &settingsService{uow: uow}
}

var _ portssvc.SettingsSvcFacade = (*settingsService)(nil)

func (s *settingsService) Current(ctx context.Context) (*domain.EngineSettings, error) {
	s.mu.RLock()
	if s.cached != nil {
		out := copySettings(*s.cached)
		s.mu.RUnlock()
		return &out, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		loaded, err := s.uow.Repositories().SettingsRepo.GetSettings(ctx)
		if err != nil {
			s.LogError(ctx, err, "Failed to load engine settings")
			return nil, fmt.Errorf("failed to load engine settings: %w", err)
		}
		c := copySettings(*loaded)
		s.cached = &c
	}
	out := copySettings(*s.cached)
	return &out, nil
}

func (s *settingsService) Update(ctx context.Context, req dto.UpdateSettingsRequest, userID string) (*domain.EngineSettings, error) {
	var updated domain.EngineSettings

	err := s.uow.WithinTx(ctx, func(ctx context.Context, repos portsrepo.RepositoryProvider) error {
		current, err := repos.SettingsRepo.GetSettingsForUpdate(ctx)
		if err != nil {
			return err
		}
		updated = copySettings(*current)

		if req.AssetCapitalizationThreshold != nil {
			updated.AssetCapitalizationThreshold = *req.AssetCapitalizationThreshold
		}
		if req.CorporateTaxRate != nil {
			updated.CorporateTaxRate = *req.CorporateTaxRate
		}
		if req.AgingBoundaries != nil {
			updated.AgingBoundaries = append(domain.AgingBoundaries(nil), req.AgingBoundaries...)
		}
		if err := updated.Validate(); err != nil {
			return apperrors.NewValidationError("%s", err.Error())
		}
		updated.UpdatedAt = time.Now().UTC()
		updated.UpdatedBy = userID

		return repos.SettingsRepo.SaveSettings(ctx, updated)
	})
	if err != nil {
		s.LogRejection(ctx, err, "Failed to update engine settings", slog.String("user_id", userID))
		return nil, err
	}

	s.mu.Lock()
	c := copySettings(updated)
	s.cached = &c
	s.mu.Unlock()

	s.LogInfo(ctx, "Engine settings updated", slog.String("user_id", userID))
	return &updated, nil
}

func copySettings(in domain.EngineSettings) domain.EngineSettings {
	out := in
	out.AgingBoundaries = append(domain.AgingBoundaries(nil), in.AgingBoundaries...)
	return out
}
