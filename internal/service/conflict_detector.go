package service

import (
	"fmt"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// DetectConflicts evaluates a candidate lesson against a snapshot of existing lessons.
// Lessons from other organizations, cancelled lessons and the lesson identified by
// excludeID never collide. Each dimension keeps the first colliding lesson only.
// The function performs no I/O and is safe to call concurrently on a stable snapshot.
func DetectConflicts(candidate models.Lesson, existing []models.Lesson, excludeID string, cfg models.OrganizationConfig) models.ConflictReport {
	report := models.ConflictReport{}
	checkRoom := cfg.RoomTrackingEnabled && candidate.HasRoom()

	for _, other := range existing {
		if other.OrganizationID != candidate.OrganizationID {
			continue
		}
		if !other.Active() {
			continue
		}
		if excludeID != "" && other.ID == excludeID {
			continue
		}
		if other.Interval.DayOfWeek != candidate.Interval.DayOfWeek {
			continue
		}
		if !candidate.Interval.Overlaps(other.Interval) {
			continue
		}

		if candidate.TeacherID != "" && other.TeacherID == candidate.TeacherID && !report.Has(models.ConflictTeacher) {
			report[models.ConflictTeacher] = newConflict(models.ConflictTeacher, other)
		}
		if candidate.GroupID != "" && other.GroupID == candidate.GroupID && !report.Has(models.ConflictGroup) {
			report[models.ConflictGroup] = newConflict(models.ConflictGroup, other)
		}
		if checkRoom && other.HasRoom() && other.Room == candidate.Room && !report.Has(models.ConflictRoom) {
			report[models.ConflictRoom] = newConflict(models.ConflictRoom, other)
		}

		if len(report) == len(models.ConflictDimensions) {
			break
		}
	}
	return report
}

// AuditLessons reports every pair of planned lessons that violates the non-overlap invariant.
// Each unordered pair is reported once per dimension.
func AuditLessons(lessons []models.Lesson, cfg models.OrganizationConfig) []models.ScheduleViolation {
	byDay := make(map[models.DayOfWeek][]models.Lesson, len(models.Weekdays))
	for _, lesson := range lessons {
		if !lesson.Active() || lesson.OrganizationID != cfg.OrganizationID {
			continue
		}
		byDay[lesson.Interval.DayOfWeek] = append(byDay[lesson.Interval.DayOfWeek], lesson)
	}

	var violations []models.ScheduleViolation
	for _, day := range models.Weekdays {
		dayLessons := byDay[day]
		models.SortLessons(dayLessons)
		for i := range dayLessons {
			for j := i + 1; j < len(dayLessons); j++ {
				a, b := dayLessons[i], dayLessons[j]
				if b.Interval.StartMinute >= a.Interval.EndMinute {
					break
				}
				report := DetectConflicts(a, []models.Lesson{b}, "", cfg)
				for _, dim := range report.Dimensions() {
					violations = append(violations, models.ScheduleViolation{
						Dimension:   dim,
						LessonID:    a.ID,
						CollidingID: b.ID,
						Message:     report[dim].Message,
					})
				}
			}
		}
	}
	return violations
}

func newConflict(dim models.ConflictDimension, other models.Lesson) models.Conflict {
	var message string
	switch dim {
	case models.ConflictTeacher:
		teacher := other.TeacherName
		if teacher == "" {
			teacher = other.TeacherID
		}
		message = fmt.Sprintf("teacher %s already teaches %s", teacher, other.Label())
	case models.ConflictGroup:
		message = fmt.Sprintf("group already attends %s", other.Label())
	case models.ConflictRoom:
		message = fmt.Sprintf("room %s is already booked for %s", other.Room, other.Label())
	}
	return models.Conflict{Dimension: dim, Message: message, LessonID: other.ID, Lesson: other}
}
