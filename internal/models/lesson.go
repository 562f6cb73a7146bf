package models

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// LessonStatus is the lifecycle state of a lesson.
type LessonStatus string

const (
	LessonStatusPlanned   LessonStatus = "PLANNED"
	LessonStatusCancelled LessonStatus = "CANCELLED"
)

// Valid reports whether the status is known.
func (s LessonStatus) Valid() bool {
	return s == LessonStatusPlanned || s == LessonStatusCancelled
}

// Lesson is one weekly occurrence of a course for a group.
type Lesson struct {
	ID             string         `db:"id" json:"id"`
	OrganizationID string         `db:"organization_id" json:"organization_id"`
	GroupID        string         `db:"group_id" json:"group_id"`
	GroupName      string         `db:"group_name" json:"group_name,omitempty"`
	CourseID       string         `db:"course_id" json:"course_id"`
	CourseName     string         `db:"course_name" json:"course_name,omitempty"`
	TeacherID      string         `db:"teacher_id" json:"teacher_id"`
	TeacherName    string         `db:"teacher_name" json:"teacher_name,omitempty"`
	Room           string         `db:"room" json:"room,omitempty"`
	Interval       WeeklyInterval `db:"-" json:"interval"`
	Status         LessonStatus   `db:"status" json:"status"`
	Version        int            `db:"version" json:"version"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Active reports whether the lesson takes part in conflict checks.
func (l Lesson) Active() bool {
	return l.Status != LessonStatusCancelled
}

// HasRoom reports whether a room has been assigned.
func (l Lesson) HasRoom() bool {
	return strings.TrimSpace(l.Room) != ""
}

// Label describes the lesson for conflict messages using names when available.
func (l Lesson) Label() string {
	course := firstNonEmpty(l.CourseName, l.CourseID)
	group := firstNonEmpty(l.GroupName, l.GroupID)
	return fmt.Sprintf("%s for %s on %s (lesson %s)", course, group, l.Interval, l.ID)
}

// LessonFilter narrows listings of an organization's lessons.
type LessonFilter struct {
	GroupID   string
	TeacherID string
	CourseID  string
	Room      string
	DayOfWeek DayOfWeek
	Status    LessonStatus
	Page      int
	PageSize  int
}

// Matches reports whether the lesson satisfies every populated field of the filter.
func (f LessonFilter) Matches(l Lesson) bool {
	if f.GroupID != "" && l.GroupID != f.GroupID {
		return false
	}
	if f.TeacherID != "" && l.TeacherID != f.TeacherID {
		return false
	}
	if f.CourseID != "" && l.CourseID != f.CourseID {
		return false
	}
	if f.Room != "" && l.Room != f.Room {
		return false
	}
	if f.DayOfWeek != "" && l.Interval.DayOfWeek != f.DayOfWeek {
		return false
	}
	if f.Status != "" && l.Status != f.Status {
		return false
	}
	return true
}

// SortLessons orders lessons by day, start minute, then id.
func SortLessons(lessons []Lesson) {
	sort.SliceStable(lessons, func(i, j int) bool {
		a, b := lessons[i].Interval, lessons[j].Interval
		if a.DayOfWeek != b.DayOfWeek {
			return a.DayOfWeek.Index() < b.DayOfWeek.Index()
		}
		if a.StartMinute != b.StartMinute {
			return a.StartMinute < b.StartMinute
		}
		return lessons[i].ID < lessons[j].ID
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
