package repository

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// OrganizationSettingsRepository persists per-organization scheduling settings.
type OrganizationSettingsRepository struct {
	db *sqlx.DB
}

// NewOrganizationSettingsRepository constructs the repository.
func NewOrganizationSettingsRepository(db *sqlx.DB) *OrganizationSettingsRepository {
	return &OrganizationSettingsRepository{db: db}
}

// Get fetches the settings row; missing rows surface as sql.ErrNoRows.
func (r *OrganizationSettingsRepository) Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error) {
	const query = `SELECT organization_id, room_tracking_enabled, updated_at FROM organization_settings WHERE organization_id = $1`
	var settings models.OrganizationSettings
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &settings, query, organizationID); err != nil {
		return nil, err
	}
	return &settings, nil
}

// Upsert inserts or updates the settings row.
func (r *OrganizationSettingsRepository) Upsert(ctx context.Context, settings *models.OrganizationSettings) error {
	const query = `INSERT INTO organization_settings (organization_id, room_tracking_enabled, updated_at)
VALUES (:organization_id, :room_tracking_enabled, :updated_at)
ON CONFLICT (organization_id)
DO UPDATE SET room_tracking_enabled = EXCLUDED.room_tracking_enabled, updated_at = EXCLUDED.updated_at`
	settings.UpdatedAt = time.Now().UTC()
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, settings); err != nil {
		return fmt.Errorf("upsert organization settings: %w", err)
	}
	return nil
}

// MemoryOrganizationSettingsRepository is the in-process counterpart used with the memory backend.
type MemoryOrganizationSettingsRepository struct {
	mutex sync.RWMutex
	table map[string]models.OrganizationSettings
}

// NewMemoryOrganizationSettingsRepository creates an empty store.
func NewMemoryOrganizationSettingsRepository() *MemoryOrganizationSettingsRepository {
	return &MemoryOrganizationSettingsRepository{table: make(map[string]models.OrganizationSettings)}
}

// Get returns sql.ErrNoRows for organizations without stored settings.
func (r *MemoryOrganizationSettingsRepository) Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	settings, ok := r.table[organizationID]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &settings, nil
}

// Upsert stores the settings.
func (r *MemoryOrganizationSettingsRepository) Upsert(ctx context.Context, settings *models.OrganizationSettings) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	settings.UpdatedAt = time.Now().UTC()
	r.table[settings.OrganizationID] = *settings
	return nil
}
