package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type lessonLister interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error)
}

// AvailabilityService answers read-only "is this resource free" questions.
type AvailabilityService struct {
	lessons   lessonLister
	configs   organizationConfigProvider
	validator *validator.Validate
}

// NewAvailabilityService constructs the service.
func NewAvailabilityService(lessons lessonLister, configs organizationConfigProvider, validate *validator.Validate) *AvailabilityService {
	if validate == nil {
		validate = validator.New()
	}
	return &AvailabilityService{lessons: lessons, configs: configs, validator: validate}
}

// CheckAvailability reports whether the resource has no active lesson overlapping interval.
// Rooms are always free for organizations without room tracking.
func (s *AvailabilityService) CheckAvailability(ctx context.Context, organizationID string, dimension models.ConflictDimension, resourceID string, interval models.WeeklyInterval) (bool, error) {
	conflict, err := s.find(ctx, organizationID, dimension, resourceID, interval)
	if err != nil {
		return false, err
	}
	return conflict == nil, nil
}

// Query validates an HTTP availability request and returns the first blocking lesson, if any.
func (s *AvailabilityService) Query(ctx context.Context, organizationID string, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid availability query")
	}
	dimension, ok := models.ParseConflictDimension(req.Dimension)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "dimension must be one of TEACHER, GROUP, ROOM")
	}
	interval, err := parseInterval(req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	conflict, err := s.find(ctx, organizationID, dimension, req.ResourceID, interval)
	if err != nil {
		return nil, err
	}
	if conflict == nil {
		return &dto.AvailabilityResponse{Available: true}, nil
	}
	return &dto.AvailabilityResponse{
		Available: false,
		Conflict:  &dto.ConflictDetail{Message: conflict.Message, LessonID: conflict.LessonID},
	}, nil
}

func (s *AvailabilityService) find(ctx context.Context, organizationID string, dimension models.ConflictDimension, resourceID string, interval models.WeeklyInterval) (*models.Conflict, error) {
	if strings.TrimSpace(organizationID) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "organization id is required")
	}
	resourceID = strings.TrimSpace(resourceID)
	if resourceID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "resource id is required")
	}
	if err := interval.Validate(); err != nil {
		return nil, wrapInterval(err)
	}

	cfg, err := s.configs.Config(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	cfg.OrganizationID = organizationID

	candidate := models.Lesson{OrganizationID: organizationID, Interval: interval, Status: models.LessonStatusPlanned}
	switch dimension {
	case models.ConflictTeacher:
		candidate.TeacherID = resourceID
	case models.ConflictGroup:
		candidate.GroupID = resourceID
	case models.ConflictRoom:
		candidate.Room = resourceID
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown conflict dimension")
	}

	existing, err := s.lessons.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	report := DetectConflicts(candidate, existing, "", cfg)
	if conflict, ok := report[dimension]; ok {
		return &conflict, nil
	}
	return nil, nil
}
