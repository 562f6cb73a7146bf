package dto

import (
	"time"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// CreateLessonRequest is the draft of a new lesson. Times are zero-padded "HH:MM".
type CreateLessonRequest struct {
	GroupID     string `json:"groupId" validate:"required"`
	GroupName   string `json:"groupName"`
	CourseID    string `json:"courseId" validate:"required"`
	CourseName  string `json:"courseName"`
	TeacherID   string `json:"teacherId" validate:"required"`
	TeacherName string `json:"teacherName"`
	Room        string `json:"room" validate:"omitempty,max=64"`
	DayOfWeek   string `json:"dayOfWeek" validate:"required"`
	StartTime   string `json:"startTime" validate:"required,len=5"`
	EndTime     string `json:"endTime" validate:"required,len=5"`
}

// UpdateLessonRequest patches a lesson; nil fields keep their current value.
type UpdateLessonRequest struct {
	GroupID     *string `json:"groupId" validate:"omitempty,min=1"`
	GroupName   *string `json:"groupName"`
	CourseID    *string `json:"courseId" validate:"omitempty,min=1"`
	CourseName  *string `json:"courseName"`
	TeacherID   *string `json:"teacherId" validate:"omitempty,min=1"`
	TeacherName *string `json:"teacherName"`
	Room        *string `json:"room" validate:"omitempty,max=64"`
	DayOfWeek   *string `json:"dayOfWeek" validate:"omitempty,min=3,max=3"`
	StartTime   *string `json:"startTime" validate:"omitempty,len=5"`
	EndTime     *string `json:"endTime" validate:"omitempty,len=5"`
	Status      *string `json:"status" validate:"omitempty,oneof=PLANNED CANCELLED"`
}

// AvailabilityRequest asks whether one resource is free during an interval.
type AvailabilityRequest struct {
	Dimension  string `form:"dimension" json:"dimension" validate:"required"`
	ResourceID string `form:"resourceId" json:"resourceId" validate:"required"`
	DayOfWeek  string `form:"day" json:"dayOfWeek" validate:"required"`
	StartTime  string `form:"start" json:"startTime" validate:"required,len=5"`
	EndTime    string `form:"end" json:"endTime" validate:"required,len=5"`
}

// AvailabilityResponse answers an availability query.
type AvailabilityResponse struct {
	Available bool            `json:"available"`
	Conflict  *ConflictDetail `json:"conflict,omitempty"`
}

// ConflictDetail is the per-dimension payload clients render next to the offending field.
type ConflictDetail struct {
	Message  string `json:"message"`
	LessonID string `json:"lessonId"`
}

// ConflictDetails converts a report into the error details payload.
func ConflictDetails(report models.ConflictReport) map[models.ConflictDimension]ConflictDetail {
	details := make(map[models.ConflictDimension]ConflictDetail, len(report))
	for dim, conflict := range report {
		details[dim] = ConflictDetail{Message: conflict.Message, LessonID: conflict.LessonID}
	}
	return details
}

// LessonResponse is the client representation of a lesson.
type LessonResponse struct {
	ID             string    `json:"id"`
	OrganizationID string    `json:"organizationId"`
	GroupID        string    `json:"groupId"`
	GroupName      string    `json:"groupName,omitempty"`
	CourseID       string    `json:"courseId"`
	CourseName     string    `json:"courseName,omitempty"`
	TeacherID      string    `json:"teacherId"`
	TeacherName    string    `json:"teacherName,omitempty"`
	Room           string    `json:"room,omitempty"`
	DayOfWeek      string    `json:"dayOfWeek"`
	StartTime      string    `json:"startTime"`
	EndTime        string    `json:"endTime"`
	StartMinute    int       `json:"startMinute"`
	EndMinute      int       `json:"endMinute"`
	Status         string    `json:"status"`
	Version        int       `json:"version"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// NewLessonResponse maps a lesson into its response shape.
func NewLessonResponse(l models.Lesson) LessonResponse {
	return LessonResponse{
		ID:             l.ID,
		OrganizationID: l.OrganizationID,
		GroupID:        l.GroupID,
		GroupName:      l.GroupName,
		CourseID:       l.CourseID,
		CourseName:     l.CourseName,
		TeacherID:      l.TeacherID,
		TeacherName:    l.TeacherName,
		Room:           l.Room,
		DayOfWeek:      string(l.Interval.DayOfWeek),
		StartTime:      l.Interval.StartClock(),
		EndTime:        l.Interval.EndClock(),
		StartMinute:    l.Interval.StartMinute,
		EndMinute:      l.Interval.EndMinute,
		Status:         string(l.Status),
		Version:        l.Version,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

// NewLessonResponses maps a slice of lessons.
func NewLessonResponses(lessons []models.Lesson) []LessonResponse {
	out := make([]LessonResponse, 0, len(lessons))
	for _, l := range lessons {
		out = append(out, NewLessonResponse(l))
	}
	return out
}

// TimetableDay is one column of the weekly timetable.
type TimetableDay struct {
	DayOfWeek string           `json:"dayOfWeek"`
	Lessons   []LessonResponse `json:"lessons"`
}

// AuditResponse lists invariant violations found in stored data.
type AuditResponse struct {
	OrganizationID string                     `json:"organizationId"`
	Checked        int                        `json:"checked"`
	Violations     []models.ScheduleViolation `json:"violations"`
}

// UpdateOrganizationSettingsRequest changes scheduling toggles.
type UpdateOrganizationSettingsRequest struct {
	RoomTrackingEnabled *bool `json:"roomTrackingEnabled" validate:"required"`
}
