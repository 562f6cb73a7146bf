package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

func TestAvailabilityServiceCheck(t *testing.T) {
	f := newLessonServiceFixture(t, true)
	ctx := context.Background()
	availability := NewAvailabilityService(f.repo, f.settings, nil)

	booked, err := f.svc.Create(ctx, testOrg, lessonRequest("G1", "T1", "101", "MON", "09:00", "10:30"))
	require.NoError(t, err)

	slot := models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: 600, EndMinute: 660}
	free, err := availability.CheckAvailability(ctx, testOrg, models.ConflictTeacher, "T1", slot)
	require.NoError(t, err)
	assert.False(t, free)

	free, err = availability.CheckAvailability(ctx, testOrg, models.ConflictTeacher, "T2", slot)
	require.NoError(t, err)
	assert.True(t, free)

	free, err = availability.CheckAvailability(ctx, testOrg, models.ConflictRoom, "101", slot)
	require.NoError(t, err)
	assert.False(t, free)

	later := models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: 630, EndMinute: 700}
	free, err = availability.CheckAvailability(ctx, testOrg, models.ConflictGroup, "G1", later)
	require.NoError(t, err)
	assert.True(t, free, "back to back slot is free")

	_, err = f.svc.Cancel(ctx, testOrg, booked.ID)
	require.NoError(t, err)
	free, err = availability.CheckAvailability(ctx, testOrg, models.ConflictTeacher, "T1", slot)
	require.NoError(t, err)
	assert.True(t, free, "cancelled lessons free their slot")
}

func TestAvailabilityServiceRoomsFreeWithoutTracking(t *testing.T) {
	f := newLessonServiceFixture(t, false)
	ctx := context.Background()
	availability := NewAvailabilityService(f.repo, f.settings, nil)

	_, err := f.svc.Create(ctx, testOrg, lessonRequest("G1", "T1", "101", "MON", "09:00", "10:00"))
	require.NoError(t, err)

	free, err := availability.CheckAvailability(ctx, testOrg, models.ConflictRoom, "101",
		models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: 540, EndMinute: 600})
	require.NoError(t, err)
	assert.True(t, free)
}

func TestAvailabilityServiceQuery(t *testing.T) {
	f := newLessonServiceFixture(t, false)
	ctx := context.Background()
	availability := NewAvailabilityService(f.repo, f.settings, nil)

	booked, err := f.svc.Create(ctx, testOrg, lessonRequest("G1", "T1", "", "TUE", "09:00", "10:00"))
	require.NoError(t, err)

	resp, err := availability.Query(ctx, testOrg, dto.AvailabilityRequest{
		Dimension: "teacher", ResourceID: "T1", DayOfWeek: "tue", StartTime: "09:30", EndTime: "11:00",
	})
	require.NoError(t, err)
	assert.False(t, resp.Available)
	require.NotNil(t, resp.Conflict)
	assert.Equal(t, booked.ID, resp.Conflict.LessonID)

	_, err = availability.Query(ctx, testOrg, dto.AvailabilityRequest{
		Dimension: "course", ResourceID: "x", DayOfWeek: "TUE", StartTime: "09:30", EndTime: "11:00",
	})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = availability.Query(ctx, testOrg, dto.AvailabilityRequest{
		Dimension: "GROUP", ResourceID: "G1", DayOfWeek: "TUE", StartTime: "11:00", EndTime: "10:00",
	})
	assert.Equal(t, appErrors.ErrInvalidInterval.Code, appErrors.FromError(err).Code)
}

func TestAvailabilityServiceTrimsResourceID(t *testing.T) {
	f := newLessonServiceFixture(t, true)
	ctx := context.Background()
	availability := NewAvailabilityService(f.repo, f.settings, nil)

	_, err := f.svc.Create(ctx, testOrg, lessonRequest("G1", "T1", "101", "MON", "09:00", "10:00"))
	require.NoError(t, err)

	slot := models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: 570, EndMinute: 630}
	free, err := availability.CheckAvailability(ctx, testOrg, models.ConflictRoom, " 101 ", slot)
	require.NoError(t, err)
	assert.False(t, free)

	_, err = availability.CheckAvailability(ctx, testOrg, models.ConflictTeacher, "   ", slot)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
