package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-timetable-api/internal/dto"
	"github.com/noah-isme/sma-timetable-api/internal/models"
	"github.com/noah-isme/sma-timetable-api/internal/service"
	appErrors "github.com/noah-isme/sma-timetable-api/pkg/errors"
	"github.com/noah-isme/sma-timetable-api/pkg/response"
)

type lessonService interface {
	List(ctx context.Context, organizationID string, filter models.LessonFilter) ([]models.Lesson, *models.Pagination, error)
	Get(ctx context.Context, organizationID, id string) (*models.Lesson, error)
	Create(ctx context.Context, organizationID string, req dto.CreateLessonRequest) (*models.Lesson, error)
	Update(ctx context.Context, organizationID, id string, req dto.UpdateLessonRequest) (*models.Lesson, error)
	Cancel(ctx context.Context, organizationID, id string) (*models.Lesson, error)
	Reactivate(ctx context.Context, organizationID, id string) (*models.Lesson, error)
	Delete(ctx context.Context, organizationID, id string) error
	Timetable(ctx context.Context, organizationID string, filter models.LessonFilter) ([]dto.TimetableDay, error)
	Audit(ctx context.Context, organizationID string) (*dto.AuditResponse, error)
}

type availabilityService interface {
	Query(ctx context.Context, organizationID string, req dto.AvailabilityRequest) (*dto.AvailabilityResponse, error)
}

type timetableExporter interface {
	Export(ctx context.Context, organizationID string, filter models.LessonFilter, format string) (*service.ExportResult, error)
}

// LessonHandler exposes lesson scheduling endpoints scoped to one organization.
type LessonHandler struct {
	lessons      lessonService
	availability availabilityService
	exporter     timetableExporter
}

// NewLessonHandler constructs the handler.
func NewLessonHandler(lessons lessonService, availability availabilityService, exporter timetableExporter) *LessonHandler {
	return &LessonHandler{lessons: lessons, availability: availability, exporter: exporter}
}

// List godoc
// @Summary List lessons
// @Tags Lessons
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param groupId query string false "Filter by group"
// @Param teacherId query string false "Filter by teacher"
// @Param courseId query string false "Filter by course"
// @Param room query string false "Filter by room"
// @Param dayOfWeek query string false "Filter by day (MON..SUN)"
// @Param status query string false "Filter by status"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/lessons [get]
func (h *LessonHandler) List(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	lessons, pagination, err := h.lessons.List(c.Request.Context(), c.Param("orgId"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewLessonResponses(lessons), pagination)
}

// Get godoc
// @Summary Get lesson
// @Tags Lessons
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /organizations/{orgId}/lessons/{id} [get]
func (h *LessonHandler) Get(c *gin.Context) {
	lesson, err := h.lessons.Get(c.Request.Context(), c.Param("orgId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewLessonResponse(*lesson), nil)
}

// Create godoc
// @Summary Create lesson
// @Description Rejected with 409 when the teacher, group or room is already booked during the interval.
// @Tags Lessons
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param payload body dto.CreateLessonRequest true "Lesson payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /organizations/{orgId}/lessons [post]
func (h *LessonHandler) Create(c *gin.Context) {
	var req dto.CreateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.lessons.Create(c.Request.Context(), c.Param("orgId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.NewLessonResponse(*lesson))
}

// Update godoc
// @Summary Update lesson
// @Tags Lessons
// @Accept json
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Lesson ID"
// @Param payload body dto.UpdateLessonRequest true "Lesson patch"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /organizations/{orgId}/lessons/{id} [patch]
func (h *LessonHandler) Update(c *gin.Context) {
	var req dto.UpdateLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.lessons.Update(c.Request.Context(), c.Param("orgId"), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewLessonResponse(*lesson), nil)
}

// Cancel godoc
// @Summary Cancel lesson
// @Tags Lessons
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/lessons/{id}/cancel [post]
func (h *LessonHandler) Cancel(c *gin.Context) {
	lesson, err := h.lessons.Cancel(c.Request.Context(), c.Param("orgId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewLessonResponse(*lesson), nil)
}

// Reactivate godoc
// @Summary Reactivate cancelled lesson
// @Tags Lessons
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param id path string true "Lesson ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /organizations/{orgId}/lessons/{id}/reactivate [post]
func (h *LessonHandler) Reactivate(c *gin.Context) {
	lesson, err := h.lessons.Reactivate(c.Request.Context(), c.Param("orgId"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.NewLessonResponse(*lesson), nil)
}

// Delete godoc
// @Summary Delete lesson
// @Tags Lessons
// @Param orgId path string true "Organization ID"
// @Param id path string true "Lesson ID"
// @Success 204
// @Router /organizations/{orgId}/lessons/{id} [delete]
func (h *LessonHandler) Delete(c *gin.Context) {
	if err := h.lessons.Delete(c.Request.Context(), c.Param("orgId"), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Timetable godoc
// @Summary Weekly timetable
// @Tags Timetable
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param groupId query string false "Filter by group"
// @Param teacherId query string false "Filter by teacher"
// @Param room query string false "Filter by room"
// @Param status query string false "Filter by status"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/timetable [get]
func (h *LessonHandler) Timetable(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	days, err := h.lessons.Timetable(c.Request.Context(), c.Param("orgId"), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// Export godoc
// @Summary Export timetable
// @Tags Timetable
// @Produce text/csv
// @Produce application/pdf
// @Param orgId path string true "Organization ID"
// @Param format query string false "csv or pdf"
// @Success 200 {file} file
// @Router /organizations/{orgId}/timetable/export [get]
func (h *LessonHandler) Export(c *gin.Context) {
	filter, err := lessonFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.exporter.Export(c.Request.Context(), c.Param("orgId"), filter, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.File(c, result.Filename, result.ContentType, result.Data)
}

// Audit godoc
// @Summary Audit stored lessons for overlaps
// @Tags Timetable
// @Produce json
// @Param orgId path string true "Organization ID"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/audit [get]
func (h *LessonHandler) Audit(c *gin.Context) {
	report, err := h.lessons.Audit(c.Request.Context(), c.Param("orgId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Availability godoc
// @Summary Check resource availability
// @Tags Timetable
// @Produce json
// @Param orgId path string true "Organization ID"
// @Param dimension query string true "TEACHER, GROUP or ROOM"
// @Param resourceId query string true "Teacher id, group id or room"
// @Param day query string true "Day of week"
// @Param start query string true "Start time HH:MM"
// @Param end query string true "End time HH:MM"
// @Success 200 {object} response.Envelope
// @Router /organizations/{orgId}/availability [get]
func (h *LessonHandler) Availability(c *gin.Context) {
	var req dto.AvailabilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	result, err := h.availability.Query(c.Request.Context(), c.Param("orgId"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func lessonFilterFromQuery(c *gin.Context) (models.LessonFilter, error) {
	filter := models.LessonFilter{
		GroupID:   c.Query("groupId"),
		TeacherID: c.Query("teacherId"),
		CourseID:  c.Query("courseId"),
		Room:      c.Query("room"),
	}
	if raw := c.Query("dayOfWeek"); raw != "" {
		day, err := models.ParseDayOfWeek(raw)
		if err != nil {
			return filter, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		filter.DayOfWeek = day
	}
	if raw := c.Query("status"); raw != "" {
		status := models.LessonStatus(strings.ToUpper(raw))
		if !status.Valid() {
			return filter, appErrors.Clone(appErrors.ErrValidation, "status must be PLANNED or CANCELLED")
		}
		filter.Status = status
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.PageSize = limit
	}
	return filter, nil
}
