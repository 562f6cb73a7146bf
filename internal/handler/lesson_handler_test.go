package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
)

type lessonServiceMock struct {
	lesson       *models.Lesson
	err          error
	lastOrg      string
	lastFilter   models.LessonFilter
	createReq    dto.CreateLessonRequest
	deleteCalled bool
}

func (m *lessonServiceMock) List(ctx context.Context, organizationID string, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error) {
	m.lastOrg, m.lastFilter = organizationID, filter
	if m.err != nil {
		return nil, nil, m.err
	}
	return []models.Lesson{*m.lesson}, &models.Pagination{Page: 1, PageSize: 100, TotalCount: 1}, nil
}

func (m *lessonServiceMock) Get(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	m.lastOrg = organizationID
	return m.lesson, m.err
}

func (m *lessonServiceMock) Create(ctx context.Context, organizationID string, req dto.CreateLessonRequest) (*models.Lesson, error) {
	m.lastOrg, m.createReq = organizationID, req
	return m.lesson, m.err
}

func (m *lessonServiceMock) Update(ctx context.Context, organizationID, id string, req dto.UpdateLessonRequest) (*models.Lesson, error) {
	return m.lesson, m.err
}

func (m *lessonServiceMock) Cancel(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	return m.lesson, m.err
}

func (m *lessonServiceMock) Reactivate(ctx context.Context, organizationID, id string) (*models.Lesson, error) {
	return m.lesson, m.err
}

func (m *lessonServiceMock) Delete(ctx context.Context, organizationID, id string) error {
	m.deleteCalled = true
	return m.err
}

func (m *lessonServiceMock) Timetable(ctx context.Context, organizationID string, filter models.LessonFilter) ([]dto.TimetableDay, error) {
	return []dto.TimetableDay{{DayOfWeek: "MON"}}, m.err
}

func (m *lessonServiceMock) Audit(ctx context.Context, organizationID string) (*dto.AuditResponse, error) {
	return &dto.AuditResponse{OrganizationID: organizationID}, m.err
}

type availabilityServiceMock struct {
	resp *dto.AvailabilityResponse
	req  dto.AvailabilityRequest
}

func (m *availabilityServiceMock) Query(ctx context.Context, organizationID string, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error) {
	m.req = req
	return m.resp, nil
}

type exporterMock struct {
	format string
}

func (m *exporterMock) Export(ctx context.Context, organizationID string, filter models.LessonFilter, format string) (*service.ExportResult, error) {
	m.format = format
	return &service.ExportResult{Filename: "timetable.csv", ContentType: "text/csv; charset=utf-8", Data: []byte("Day\n")}, nil
}

func sampleLesson() *models.Lesson {
	return &models.Lesson{
		ID:             "l-1",
		OrganizationID: "org-1",
		GroupID:        "g1",
		CourseID:       "c1",
		TeacherID:      "t1",
		Interval:       models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: 540, EndMinute: 630},
		Status:         models.LessonStatusPlanned,
		Version:        1,
	}
}

func newLessonTestRouter(lessons *lessonServiceMock, availability *availabilityServiceMock, exporter *exporterMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r, "/api/v1", Handlers{
		Lessons:  NewLessonHandler(lessons, availability, exporter),
		Settings: NewOrganizationSettingsHandler(&settingsServiceMock{}),
		Metrics:  NewMetricsHandler(nil, nil),
	}, false)
	return r
}

func TestLessonHandlerCreate(t *testing.T) {
	mockSvc := &lessonServiceMock{lesson: sampleLesson()}
	r := newLessonTestRouter(mockSvc, nil, nil)

	body := []byte(`{"groupId":"g1","courseId":"c1","teacherId":"t1","dayOfWeek":"MON","startTime":"09:00","endTime":"10:30"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/lessons", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "org-1", mockSvc.lastOrg)
	assert.Equal(t, "09:00", mockSvc.createReq.StartTime)

	var envelope struct {
		Data dto.LessonResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "09:00", envelope.Data.StartTime)
	assert.Equal(t, "10:30", envelope.Data.EndTime)
}

func TestLessonHandlerCreateInvalidJSON(t *testing.T) {
	r := newLessonTestRouter(&lessonServiceMock{}, nil, nil)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/lessons", bytes.NewReader([]byte(`{`)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonHandlerConflictCarriesDetails(t *testing.T) {
	report := models.ConflictReport{
		models.ConflictTeacher: {Dimension: models.ConflictTeacher, Message: "teacher t1 already teaches c1", LessonID: "l-0"},
	}
	conflict := appErrors.Wrap(&models.LessonConflictError{Report: report}, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, "lesson conflicts with the existing schedule").
		WithDetails(dto.ConflictDetails(report))
	r := newLessonTestRouter(&lessonServiceMock{err: conflict}, nil, nil)

	body := []byte(`{"groupId":"g1","courseId":"c1","teacherId":"t1","dayOfWeek":"MON","startTime":"09:00","endTime":"10:30"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/organizations/org-1/lessons", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusConflict, w.Code)
	var envelope struct {
		Error struct {
			Code    string                       `json:"code"`
			Details map[string]map[string]string `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
	assert.Equal(t, "l-0", envelope.Error.Details["TEACHER"]["lessonId"])
	assert.Equal(t, "teacher t1 already teaches c1", envelope.Error.Details["TEACHER"]["message"])
}

func TestLessonHandlerListParsesFilter(t *testing.T) {
	mockSvc := &lessonServiceMock{lesson: sampleLesson()}
	r := newLessonTestRouter(mockSvc, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/lessons?teacherId=t1&dayOfWeek=tue&status=planned&page=2&limit=10", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.LessonFilter{TeacherID: "t1", DayOfWeek: models.Tuesday, Status: models.LessonStatusPlanned, Page: 2, PageSize: 10}, mockSvc.lastFilter)
}

func TestLessonHandlerListRejectsBadDay(t *testing.T) {
	r := newLessonTestRouter(&lessonServiceMock{lesson: sampleLesson()}, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/lessons?dayOfWeek=someday", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLessonHandlerGetNotFound(t *testing.T) {
	r := newLessonTestRouter(&lessonServiceMock{err: appErrors.Clone(appErrors.ErrNotFound, "lesson not found")}, nil, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/lessons/nope", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestLessonHandlerDeleteReturnsNoContent(t *testing.T) {
	mockSvc := &lessonServiceMock{}
	r := newLessonTestRouter(mockSvc, nil, nil)

	req, _ := http.NewRequest(http.MethodDelete, "/api/v1/organizations/org-1/lessons/any", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNoContent, w.Code)
	assert.True(t, mockSvc.deleteCalled)
}

func TestLessonHandlerCancelAndReactivate(t *testing.T) {
	r := newLessonTestRouter(&lessonServiceMock{lesson: sampleLesson()}, nil, nil)

	for _, path := range []string{"/api/v1/organizations/org-1/lessons/l-1/cancel", "/api/v1/organizations/org-1/lessons/l-1/reactivate"} {
		req, _ := http.NewRequest(http.MethodPost, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}

func TestLessonHandlerAvailability(t *testing.T) {
	availability := &availabilityServiceMock{resp: &dto.AvailabilityResponse{Available: true}}
	r := newLessonTestRouter(&lessonServiceMock{}, availability, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/availability?dimension=ROOM&resourceId=101&day=MON&start=09:00&end=10:00", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "101", availability.req.ResourceID)
	assert.Equal(t, "09:00", availability.req.StartTime)
	assert.Contains(t, w.Body.String(), `"available":true`)
}

func TestLessonHandlerExport(t *testing.T) {
	exporter := &exporterMock{}
	r := newLessonTestRouter(&lessonServiceMock{}, nil, exporter)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/organizations/org-1/timetable/export?format=csv", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", exporter.format)
	assert.Equal(t, `attachment; filename="timetable.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Day\n", w.Body.String())
}

func TestLessonHandlerTimetableAndAudit(t *testing.T) {
	r := newLessonTestRouter(&lessonServiceMock{}, nil, nil)

	for _, path := range []string{"/api/v1/organizations/org-1/timetable", "/api/v1/organizations/org-1/audit"} {
		req, _ := http.NewRequest(http.MethodGet, path, nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, path)
	}
}
