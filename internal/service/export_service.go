package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-timetable-api/internal/models"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/export"
)

var timetableHeaders = []string{"Day", "Start", "End", "Course", "Group", "Teacher", "Room", "Status"}

type timetableSource interface {
	List(ctx context.Context, organizationID string, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error)
}

// ExportResult is a rendered timetable file.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders an organization's timetable as CSV or PDF.
type ExportService struct {
	lessons timetableSource
	logger  *zap.Logger
	now     func() time.Time
}

// NewExportService constructs an ExportService.
func NewExportService(lessons timetableSource, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{lessons: lessons, logger: logger, now: time.Now}
}

// Export renders the filtered lessons in the requested format.
func (s *ExportService) Export(ctx context.Context, organizationID string, filter models.LessonFilter, rawFormat string) (*ExportResult, error) {
	format, err := export.ParseFormat(rawFormat)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	filter.Page, filter.PageSize = 1, 500
	var lessons []models.Lesson
	for {
		page, pagination, err := s.lessons.List(ctx, organizationID, filter)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, page...)
		if len(lessons) >= pagination.TotalCount || len(page) == 0 {
			break
		}
		filter.Page++
	}

	data := export.Dataset{Headers: timetableHeaders}
	for _, l := range lessons {
		data.Rows = append(data.Rows, map[string]string{
			"Day":     string(l.Interval.DayOfWeek),
			"Start":   l.Interval.StartClock(),
			"End":     l.Interval.EndClock(),
			"Course":  firstNonBlank(l.CourseName, l.CourseID),
			"Group":   firstNonBlank(l.GroupName, l.GroupID),
			"Teacher": firstNonBlank(l.TeacherName, l.TeacherID),
			"Room":    l.Room,
			"Status":  string(l.Status),
		})
	}

	title := fmt.Sprintf("Timetable %s", organizationID)
	payload, err := export.Render(format, data, title)
	if err != nil {
		s.logger.Error("timetable export failed", zap.String("organization_id", organizationID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render timetable")
	}

	filename := fmt.Sprintf("timetable_%s_%s.%s", sanitizeFilename(organizationID), s.now().UTC().Format("20060102"), format)
	return &ExportResult{Filename: filename, ContentType: format.ContentType(), Data: payload}, nil
}

func sanitizeFilename(raw string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, raw)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
