package models

import (
	"fmt"
	"sort"
	"strings"
)

// ConflictDimension is an axis along which two lessons may not overlap.
type ConflictDimension string

const (
	ConflictTeacher ConflictDimension = "TEACHER"
	ConflictGroup   ConflictDimension = "GROUP"
	ConflictRoom    ConflictDimension = "ROOM"
)

// ConflictDimensions lists dimensions in reporting order.
var ConflictDimensions = []ConflictDimension{ConflictTeacher, ConflictGroup, ConflictRoom}

// ParseConflictDimension normalises a dimension name.
func ParseConflictDimension(raw string) (ConflictDimension, bool) {
	dim := ConflictDimension(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range ConflictDimensions {
		if dim == known {
			return dim, true
		}
	}
	return "", false
}

// Conflict describes the collision recorded for one dimension.
type Conflict struct {
	Dimension ConflictDimension `json:"dimension"`
	Message   string            `json:"message"`
	LessonID  string            `json:"lesson_id"`
	Lesson    Lesson            `json:"-"`
}

// ConflictReport maps each violated dimension to its first colliding lesson.
// An empty report means the candidate can be scheduled.
type ConflictReport map[ConflictDimension]Conflict

// Empty reports whether no dimension was violated.
func (r ConflictReport) Empty() bool {
	return len(r) == 0
}

// Has reports whether the dimension was violated.
func (r ConflictReport) Has(dim ConflictDimension) bool {
	_, ok := r[dim]
	return ok
}

// Dimensions returns the violated dimensions in reporting order.
func (r ConflictReport) Dimensions() []ConflictDimension {
	dims := make([]ConflictDimension, 0, len(r))
	for _, dim := range ConflictDimensions {
		if r.Has(dim) {
			dims = append(dims, dim)
		}
	}
	return dims
}

// Messages flattens the report into dimension → message, the shape clients render per field.
func (r ConflictReport) Messages() map[ConflictDimension]string {
	out := make(map[ConflictDimension]string, len(r))
	for dim, conflict := range r {
		out[dim] = conflict.Message
	}
	return out
}

// String renders the report deterministically.
func (r ConflictReport) String() string {
	parts := make([]string, 0, len(r))
	for _, dim := range r.Dimensions() {
		parts = append(parts, fmt.Sprintf("%s: %s", dim, r[dim].Message))
	}
	sort.Strings(parts)
	return strings.Join(parts, "; ")
}

// LessonConflictError is returned when a candidate lesson collides with existing ones.
type LessonConflictError struct {
	Report ConflictReport
}

// Error implements the error interface.
func (e *LessonConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return "lesson conflicts: " + e.Report.String()
}

// ScheduleViolation pairs two planned lessons that overlap on a dimension.
type ScheduleViolation struct {
	Dimension   ConflictDimension `json:"dimension"`
	LessonID    string            `json:"lesson_id"`
	CollidingID string            `json:"colliding_id"`
	Message     string            `json:"message"`
}
