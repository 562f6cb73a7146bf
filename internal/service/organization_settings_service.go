package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type organizationSettingsRepository interface {
	Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error)
	Upsert(ctx context.Context, settings *models.OrganizationSettings) error
}

type settingsCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// OrganizationSettingsServiceConfig tunes defaults and caching.
type OrganizationSettingsServiceConfig struct {
	DefaultRoomTracking bool
	CacheEnabled        bool
	CacheTTL            time.Duration
}

// OrganizationSettingsService resolves per-organization scheduling toggles.
type OrganizationSettingsService struct {
	repo      organizationSettingsRepository
	cache     settingsCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       OrganizationSettingsServiceConfig
}

// NewOrganizationSettingsService constructs the service. cache may be nil.
func NewOrganizationSettingsService(repo organizationSettingsRepository, cache settingsCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg OrganizationSettingsServiceConfig) *OrganizationSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &OrganizationSettingsService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger, cfg: cfg}
}

// Get returns the stored settings or the configured defaults.
func (s *OrganizationSettingsService) Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organization id is required")
	}

	if s.cacheEnabled() {
		var cached models.OrganizationSettings
		err := s.cache.Get(ctx, repository.SettingsCacheKey(organizationID), &cached)
		switch {
		case err == nil:
			s.metrics.RecordCacheLookup(true)
			return &cached, nil
		case errors.Is(err, appErrors.ErrCacheMiss):
			s.metrics.RecordCacheLookup(false)
		default:
			s.metrics.RecordCacheLookup(false)
			s.logger.Warn("settings cache get failed", zap.String("organization_id", organizationID), zap.Error(err))
		}
	}

	settings, err := s.repo.Get(ctx, organizationID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load organization settings")
		}
		settings = &models.OrganizationSettings{OrganizationID: organizationID, RoomTrackingEnabled: s.cfg.DefaultRoomTracking}
	}

	if s.cacheEnabled() {
		if err := s.cache.Set(ctx, repository.SettingsCacheKey(organizationID), settings, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("settings cache set failed", zap.String("organization_id", organizationID), zap.Error(err))
		}
	}
	return settings, nil
}

// Config returns the scheduler snapshot for an organization.
func (s *OrganizationSettingsService) Config(ctx context.Context, organizationID string) (models.OrganizationConfig, error) {
	settings, err := s.Get(ctx, organizationID)
	if err != nil {
		return models.OrganizationConfig{}, err
	}
	return settings.Config(), nil
}

// IsRoomTrackingEnabled reports whether rooms are required and checked for the organization.
func (s *OrganizationSettingsService) IsRoomTrackingEnabled(ctx context.Context, organizationID string) (bool, error) {
	cfg, err := s.Config(ctx, organizationID)
	if err != nil {
		return false, err
	}
	return cfg.RoomTrackingEnabled, nil
}

// Update stores new settings and drops the cached copy.
func (s *OrganizationSettingsService) Update(ctx context.Context, organizationID string, req dto.UpdateOrganizationSettingsRequest) (*models.OrganizationSettings, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organization id is required")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}

	settings := &models.OrganizationSettings{OrganizationID: organizationID, RoomTrackingEnabled: *req.RoomTrackingEnabled}
	if err := s.repo.Upsert(ctx, settings); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update organization settings")
	}

	if s.cacheEnabled() {
		if err := s.cache.Delete(ctx, repository.SettingsCacheKey(organizationID)); err != nil {
			s.logger.Warn("settings cache invalidate failed", zap.String("organization_id", organizationID), zap.Error(err))
		}
	}
	s.logger.Info("organization settings updated",
		zap.String("organization_id", organizationID),
		zap.Bool("room_tracking_enabled", settings.RoomTrackingEnabled))
	return settings, nil
}

func (s *OrganizationSettingsService) cacheEnabled() bool {
	return s.cfg.CacheEnabled && s.cache != nil
}
