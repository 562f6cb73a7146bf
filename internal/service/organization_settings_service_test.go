package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type cacheStub struct {
	store   map[string][]byte
	gets    int
	deletes int
}

func newCacheStub() *cacheStub {
	return &cacheStub{store: map[string][]byte{}}
}

func (c *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	c.gets++
	raw, ok := c.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = raw
	return nil
}

func (c *cacheStub) Delete(ctx context.Context, key string) error {
	c.deletes++
	delete(c.store, key)
	return nil
}

type countingSettingsRepo struct {
	*repository.MemoryOrganizationSettingsRepository
	gets int
}

func (r *countingSettingsRepo) Get(ctx context.Context, organizationID string) (*models.OrganizationSettings, error) {
	r.gets++
	return r.MemoryOrganizationSettingsRepository.Get(ctx, organizationID)
}

func TestOrganizationSettingsDefaults(t *testing.T) {
	svc := NewOrganizationSettingsService(repository.NewMemoryOrganizationSettingsRepository(), nil, nil, nil, nil,
		OrganizationSettingsServiceConfig{DefaultRoomTracking: true})

	enabled, err := svc.IsRoomTrackingEnabled(context.Background(), testOrg)
	require.NoError(t, err)
	assert.True(t, enabled)

	_, err = svc.Get(context.Background(), " ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOrganizationSettingsReadThroughCache(t *testing.T) {
	repo := &countingSettingsRepo{MemoryOrganizationSettingsRepository: repository.NewMemoryOrganizationSettingsRepository()}
	cache := newCacheStub()
	svc := NewOrganizationSettingsService(repo, cache, NewMetricsService(), nil, nil,
		OrganizationSettingsServiceConfig{CacheEnabled: true, CacheTTL: time.Minute})
	ctx := context.Background()

	_, err := svc.Get(ctx, testOrg)
	require.NoError(t, err)
	_, err = svc.Get(ctx, testOrg)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.gets, "second read served from cache")

	enabled := true
	updated, err := svc.Update(ctx, testOrg, dto.UpdateOrganizationSettingsRequest{RoomTrackingEnabled: &enabled})
	require.NoError(t, err)
	assert.True(t, updated.RoomTrackingEnabled)
	assert.Equal(t, 1, cache.deletes)

	cfg, err := svc.Config(ctx, testOrg)
	require.NoError(t, err)
	assert.True(t, cfg.RoomTrackingEnabled)
	assert.Equal(t, 2, repo.gets, "update invalidates the cached copy")
}

func TestOrganizationSettingsUpdateValidation(t *testing.T) {
	svc := NewOrganizationSettingsService(repository.NewMemoryOrganizationSettingsRepository(), nil, nil, nil, nil, OrganizationSettingsServiceConfig{})

	_, err := svc.Update(context.Background(), testOrg, dto.UpdateOrganizationSettingsRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestRoomTrackingToggleAffectsScheduling(t *testing.T) {
	f := newLessonServiceFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, testOrg, lessonRequest("G1", "T1", "101", "MON", "09:00", "10:00"))
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, testOrg, lessonRequest("G2", "T2", "101", "MON", "09:00", "10:00"))
	require.NoError(t, err, "rooms are not checked while tracking is off")

	enabled := true
	_, err = f.settings.Update(ctx, testOrg, dto.UpdateOrganizationSettingsRequest{RoomTrackingEnabled: &enabled})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, testOrg, lessonRequest("G3", "T3", "101", "MON", "09:30", "10:30"))
	details := conflictDetails(t, err)
	assert.Contains(t, details, models.ConflictRoom)

	report, err := f.svc.Audit(ctx, testOrg)
	require.NoError(t, err)
	require.Len(t, report.Violations, 1)
	assert.Equal(t, models.ConflictRoom, report.Violations[0].Dimension)
}
