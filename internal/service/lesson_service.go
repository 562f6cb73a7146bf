package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/repository"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/middleware/requestid"
)

type lessonRepository interface {
	ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error)
	FindByID(ctx context.Context, id string) (*models.Lesson, error)
	Create(ctx context.Context, lesson *models.Lesson) error
	Update(ctx context.Context, lesson *models.Lesson) error
	Delete(ctx context.Context, id string) error
}

// OrganizationLocker serializes the writers of one organization. fn runs while the
// lock is held and must do all of its storage work through the ctx it receives.
type OrganizationLocker interface {
	WithinOrganization(ctx context.Context, organizationID string, fn func(ctx context.Context) error) error
}

type organizationConfigProvider interface {
	Config(ctx context.Context, organizationID string) (models.OrganizationConfig, error)
}

// Scheduler operation names used for metrics and logs.
const (
	opCreate     = "create"
	opUpdate     = "update"
	opCancel     = "cancel"
	opReactivate = "reactivate"
	opDelete     = "delete"
)

// LessonService validates lessons, checks them for conflicts and commits accepted changes.
// The read-check-write sequence of every mutating call runs under the organization lock.
type LessonService struct {
	repo      lessonRepository
	locker    OrganizationLocker
	configs   organizationConfigProvider
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewLessonService instantiates LessonService. A nil locker falls back to an in-process mutex.
func NewLessonService(repo lessonRepository, locker OrganizationLocker, configs organizationConfigProvider, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *LessonService {
	if locker == nil {
		locker = repository.NewKeyedMutex(0)
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LessonService{repo: repo, locker: locker, configs: configs, metrics: metrics, validator: validate, logger: logger}
}

// List returns the organization's lessons ordered by day and start time.
func (s *LessonService) List(ctx context.Context, organizationID string, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error) {
	filtered, err := s.all(ctx, organizationID, filter)
	if err != nil {
		return nil, nil, err
	}

	total := len(filtered)
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	start := (page - 1) * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	return filtered[start:end], &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get loads one lesson of the organization.
func (s *LessonService) Get(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	return s.load(ctx, organizationID, id)
}

// Create validates the draft, checks it against the organization's active lessons and stores it.
func (s *LessonService) Create(ctx context.Context, organizationID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordOperation(opCreate, OutcomeInvalid)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if err := requireOrganization(organizationID); err != nil {
		return nil, err
	}

	interval, err := parseInterval(req.DayOfWeek, req.StartTime, req.EndTime)
	if err != nil {
		s.metrics.RecordOperation(opCreate, OutcomeInvalid)
		return nil, err
	}
	candidate := models.Lesson{
		OrganizationID: organizationID,
		GroupID:        strings.TrimSpace(req.GroupID),
		GroupName:      strings.TrimSpace(req.GroupName),
		CourseID:       strings.TrimSpace(req.CourseID),
		CourseName:     strings.TrimSpace(req.CourseName),
		TeacherID:      strings.TrimSpace(req.TeacherID),
		TeacherName:    strings.TrimSpace(req.TeacherName),
		Room:           strings.TrimSpace(req.Room),
		Interval:       interval,
		Status:         models.LessonStatusPlanned,
	}

	err = s.withinOrganization(ctx, organizationID, func(ctx context.Context) error {
		cfg, err := s.config(ctx, organizationID)
		if err != nil {
			return err
		}
		if err := validateLesson(candidate, cfg); err != nil {
			s.metrics.RecordOperation(opCreate, OutcomeInvalid)
			return err
		}
		if err := s.ensureNoConflict(ctx, opCreate, candidate, "", cfg); err != nil {
			return err
		}

		candidate.ID = uuid.NewString()
		if err := s.repo.Create(ctx, &candidate); err != nil {
			s.metrics.RecordOperation(opCreate, OutcomeError)
			s.log(ctx).Error("failed to store lesson", zap.String("organization_id", organizationID), zap.Error(err))
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create lesson")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.RecordOperation(opCreate, OutcomeAccepted)
	s.log(ctx).Info("lesson created",
		zap.String("organization_id", organizationID),
		zap.String("lesson_id", candidate.ID),
		zap.String("interval", candidate.Interval.String()))
	return &candidate, nil
}

// Update applies a patch and re-checks the result against every other lesson.
// A patch that leaves the lesson cancelled is never conflict checked.
func (s *LessonService) Update(ctx context.Context, organizationID, id string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	if err := s.validator.Struct(req); err != nil {
		s.metrics.RecordOperation(opUpdate, OutcomeInvalid)
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid lesson payload")
	}
	if err := requireOrganization(organizationID); err != nil {
		return nil, err
	}

	var updated *models.Lesson
	err := s.withinOrganization(ctx, organizationID, func(ctx context.Context) error {
		existing, err := s.load(ctx, organizationID, id)
		if err != nil {
			s.recordLoadFailure(opUpdate, err)
			return err
		}

		candidate, err := applyPatch(*existing, req)
		if err != nil {
			s.metrics.RecordOperation(opUpdate, OutcomeInvalid)
			return err
		}
		cfg, err := s.config(ctx, organizationID)
		if err != nil {
			return err
		}
		if err := validateLesson(candidate, cfg); err != nil {
			s.metrics.RecordOperation(opUpdate, OutcomeInvalid)
			return err
		}

		if candidate.Active() {
			if err := s.ensureNoConflict(ctx, opUpdate, candidate, candidate.ID, cfg); err != nil {
				return err
			}
		}
		updated, err = s.commit(ctx, opUpdate, &candidate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel marks the lesson CANCELLED. Freeing a slot can never conflict, so no check runs.
func (s *LessonService) Cancel(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	if err := requireOrganization(organizationID); err != nil {
		return nil, err
	}

	var cancelled *models.Lesson
	err := s.withinOrganization(ctx, organizationID, func(ctx context.Context) error {
		lesson, err := s.load(ctx, organizationID, id)
		if err != nil {
			s.recordLoadFailure(opCancel, err)
			return err
		}
		if lesson.Status == models.LessonStatusCancelled {
			s.metrics.RecordOperation(opCancel, OutcomeAccepted)
			cancelled = lesson
			return nil
		}
		lesson.Status = models.LessonStatusCancelled
		cancelled, err = s.commit(ctx, opCancel, lesson)
		return err
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// Reactivate moves a cancelled lesson back to PLANNED after a fresh conflict check,
// since its slot may have been taken while it was cancelled.
func (s *LessonService) Reactivate(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	if err := requireOrganization(organizationID); err != nil {
		return nil, err
	}

	var reactivated *models.Lesson
	err := s.withinOrganization(ctx, organizationID, func(ctx context.Context) error {
		lesson, err := s.load(ctx, organizationID, id)
		if err != nil {
			s.recordLoadFailure(opReactivate, err)
			return err
		}
		if lesson.Status == models.LessonStatusPlanned {
			s.metrics.RecordOperation(opReactivate, OutcomeAccepted)
			reactivated = lesson
			return nil
		}

		cfg, err := s.config(ctx, organizationID)
		if err != nil {
			return err
		}
		candidate := *lesson
		candidate.Status = models.LessonStatusPlanned
		if err := validateLesson(candidate, cfg); err != nil {
			s.metrics.RecordOperation(opReactivate, OutcomeInvalid)
			return err
		}
		if err := s.ensureNoConflict(ctx, opReactivate, candidate, candidate.ID, cfg); err != nil {
			return err
		}
		reactivated, err = s.commit(ctx, opReactivate, &candidate)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reactivated, nil
}

// Delete permanently removes a lesson. Unknown ids are a no-op.
func (s *LessonService) Delete(ctx context.Context, organizationID, id string) error {
	if err := requireOrganization(organizationID); err != nil {
		return err
	}

	return s.withinOrganization(ctx, organizationID, func(ctx context.Context) error {
		if _, err := s.load(ctx, organizationID, id); err != nil {
			if appErrors.Is(err, appErrors.ErrNotFound) {
				s.metrics.RecordOperation(opDelete, OutcomeAccepted)
				return nil
			}
			s.metrics.RecordOperation(opDelete, OutcomeError)
			return err
		}

		if err := s.repo.Delete(ctx, id); err != nil {
			s.metrics.RecordOperation(opDelete, OutcomeError)
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete lesson")
		}
		s.metrics.RecordOperation(opDelete, OutcomeAccepted)
		s.log(ctx).Info("lesson deleted", zap.String("organization_id", organizationID), zap.String("lesson_id", id))
		return nil
	})
}

// Timetable groups the filtered lessons into seven ordered day columns.
func (s *LessonService) Timetable(ctx context.Context, organizationID string, filter models.LessonFilter) ([]dto.TimetableDay, error) {
	lessons, err := s.all(ctx, organizationID, filter)
	if err != nil {
		return nil, err
	}

	columns := make(map[models.DayOfWeek][]models.Lesson, len(models.Weekdays))
	for _, lesson := range lessons {
		columns[lesson.Interval.DayOfWeek] = append(columns[lesson.Interval.DayOfWeek], lesson)
	}
	days := make([]dto.TimetableDay, 0, len(models.Weekdays))
	for _, day := range models.Weekdays {
		days = append(days, dto.TimetableDay{DayOfWeek: string(day), Lessons: dto.NewLessonResponses(columns[day])})
	}
	return days, nil
}

// Audit scans the stored planned lessons for pairs that break the non-overlap invariant.
func (s *LessonService) Audit(ctx context.Context, organizationID string) (*dto.AuditResponse, error) {
	cfg, err := s.config(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	lessons, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}

	checked := 0
	for _, lesson := range lessons {
		if lesson.Active() {
			checked++
		}
	}
	violations := AuditLessons(lessons, cfg)
	if len(violations) > 0 {
		s.log(ctx).Warn("schedule audit found violations",
			zap.String("organization_id", organizationID),
			zap.Int("violations", len(violations)))
	}
	return &dto.AuditResponse{OrganizationID: organizationID, Checked: checked, Violations: violations}, nil
}

func (s *LessonService) all(ctx context.Context, organizationID string, filter models.LessonFilter) ([]models.Lesson, error) {
	lessons, err := s.repo.ListByOrganization(ctx, organizationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list lessons")
	}
	filtered := make([]models.Lesson, 0, len(lessons))
	for _, lesson := range lessons {
		if filter.Matches(lesson) {
			filtered = append(filtered, lesson)
		}
	}
	models.SortLessons(filtered)
	return filtered, nil
}

func (s *LessonService) ensureNoConflict(ctx context.Context, operation string, candidate models.Lesson, excludeID string, cfg models.OrganizationConfig) error {
	existing, err := s.repo.ListByOrganization(ctx, candidate.OrganizationID)
	if err != nil {
		s.metrics.RecordOperation(operation, OutcomeError)
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check lesson conflicts")
	}

	start := time.Now()
	report := DetectConflicts(candidate, existing, excludeID, cfg)
	s.metrics.ObserveConflictCheck(time.Since(start))
	if report.Empty() {
		return nil
	}

	s.metrics.RecordOperation(operation, OutcomeConflict)
	s.metrics.RecordConflicts(report)
	dims := make([]string, 0, len(report))
	for _, dim := range report.Dimensions() {
		dims = append(dims, string(dim))
	}
	s.log(ctx).Info("lesson rejected",
		zap.String("operation", operation),
		zap.String("organization_id", candidate.OrganizationID),
		zap.String("interval", candidate.Interval.String()),
		zap.Strings("dimensions", dims))
	return wrapConflict(report)
}

func (s *LessonService) commit(ctx context.Context, operation string, lesson *models.Lesson) (*models.Lesson, error) {
	if err := s.repo.Update(ctx, lesson); err != nil {
		if errors.Is(err, repository.ErrStaleVersion) {
			s.metrics.RecordOperation(operation, OutcomeConflict)
			return nil, appErrors.Wrap(err, appErrors.ErrStaleLesson.Code, appErrors.ErrStaleLesson.Status, appErrors.ErrStaleLesson.Message)
		}
		s.metrics.RecordOperation(operation, OutcomeError)
		s.log(ctx).Error("failed to store lesson", zap.String("lesson_id", lesson.ID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update lesson")
	}
	s.metrics.RecordOperation(operation, OutcomeAccepted)
	s.log(ctx).Info("lesson updated",
		zap.String("operation", operation),
		zap.String("lesson_id", lesson.ID),
		zap.String("status", string(lesson.Status)),
		zap.String("interval", lesson.Interval.String()))
	return lesson, nil
}

func (s *LessonService) load(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lesson")
	}
	// lessons of other organizations are invisible
	if lesson.OrganizationID != organizationID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lesson not found")
	}
	return lesson, nil
}

func (s *LessonService) recordLoadFailure(operation string, err error) {
	if appErrors.Is(err, appErrors.ErrNotFound) {
		s.metrics.RecordOperation(operation, OutcomeNotFound)
		return
	}
	s.metrics.RecordOperation(operation, OutcomeError)
}

func (s *LessonService) config(ctx context.Context, organizationID string) (models.OrganizationConfig, error) {
	if err := requireOrganization(organizationID); err != nil {
		return models.OrganizationConfig{}, err
	}
	cfg, err := s.configs.Config(ctx, organizationID)
	if err != nil {
		return models.OrganizationConfig{}, err
	}
	cfg.OrganizationID = organizationID
	return cfg, nil
}

// withinOrganization runs fn under the organization lock. Errors that do not
// come from fn itself are lock or transaction failures.
func (s *LessonService) withinOrganization(ctx context.Context, organizationID string, fn func(ctx context.Context) error) error {
	err := s.locker.WithinOrganization(ctx, organizationID, fn)
	if err == nil {
		return nil
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return err
	}
	s.log(ctx).Error("organization schedule scope failed", zap.String("organization_id", organizationID), zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock or commit organization schedule")
}

func requireOrganization(organizationID string) error {
	if strings.TrimSpace(organizationID) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "organization id is required")
	}
	return nil
}

func (s *LessonService) log(ctx context.Context) *zap.Logger {
	if id := requestid.FromContext(ctx); id != "" {
		return s.logger.With(zap.String("request_id", id))
	}
	return s.logger
}

func validateLesson(lesson models.Lesson, cfg models.OrganizationConfig) error {
	var missing []string
	if lesson.GroupID == "" {
		missing = append(missing, "groupId")
	}
	if lesson.CourseID == "" {
		missing = append(missing, "courseId")
	}
	if lesson.TeacherID == "" {
		missing = append(missing, "teacherId")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrValidation, "missing required fields: "+strings.Join(missing, ", "))
	}
	if err := lesson.Interval.Validate(); err != nil {
		return wrapInterval(err)
	}
	if !lesson.Status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unknown lesson status")
	}
	// cancelled lessons hold no slot, so the room rule waits for reactivation
	if lesson.Active() && cfg.RoomTrackingEnabled && !lesson.HasRoom() {
		return appErrors.Clone(appErrors.ErrValidation, "room is required when room tracking is enabled")
	}
	return nil
}

func applyPatch(lesson models.Lesson, req dto.UpdateLessonRequest) (models.Lesson, error) {
	set := func(dst *string, src *string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
		}
	}
	set(&lesson.GroupID, req.GroupID)
	set(&lesson.GroupName, req.GroupName)
	set(&lesson.CourseID, req.CourseID)
	set(&lesson.CourseName, req.CourseName)
	set(&lesson.TeacherID, req.TeacherID)
	set(&lesson.TeacherName, req.TeacherName)
	set(&lesson.Room, req.Room)

	if req.DayOfWeek != nil || req.StartTime != nil || req.EndTime != nil {
		day := string(lesson.Interval.DayOfWeek)
		start := lesson.Interval.StartClock()
		end := lesson.Interval.EndClock()
		set(&day, req.DayOfWeek)
		set(&start, req.StartTime)
		set(&end, req.EndTime)
		interval, err := parseInterval(day, start, end)
		if err != nil {
			return models.Lesson{}, err
		}
		lesson.Interval = interval
	}
	if req.Status != nil {
		lesson.Status = models.LessonStatus(strings.ToUpper(strings.TrimSpace(*req.Status)))
	}
	return lesson, nil
}

func parseInterval(day, start, end string) (models.WeeklyInterval, error) {
	parsedDay, err := models.ParseDayOfWeek(day)
	if err != nil {
		return models.WeeklyInterval{}, wrapInterval(err)
	}
	interval, err := models.NewWeeklyIntervalFromClock(parsedDay, start, end)
	if err != nil {
		return models.WeeklyInterval{}, wrapInterval(err)
	}
	return interval, nil
}

func wrapInterval(err error) error {
	return appErrors.Wrap(err, appErrors.ErrInvalidInterval.Code, appErrors.ErrInvalidInterval.Status, err.Error())
}

func wrapConflict(report models.ConflictReport) error {
	domainErr := &models.LessonConflictError{Report: report}
	return appErrors.Wrap(domainErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "lesson conflicts with the existing schedule").
		WithDetails(dto.ConflictDetails(report))
}
