package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConflictReportOrdering(t *testing.T) {
	report := ConflictReport{
		ConflictRoom:    {Dimension: ConflictRoom, Message: "room busy"},
		ConflictTeacher: {Dimension: ConflictTeacher, Message: "teacher busy"},
	}

	assert.False(t, report.Empty())
	assert.True(t, report.Has(ConflictRoom))
	assert.False(t, report.Has(ConflictGroup))
	assert.Equal(t, []ConflictDimension{ConflictTeacher, ConflictRoom}, report.Dimensions())
	assert.Equal(t, "ROOM: room busy; TEACHER: teacher busy", report.String())
	assert.Equal(t, "teacher busy", report.Messages()[ConflictTeacher])
}

func TestParseConflictDimension(t *testing.T) {
	dim, ok := ParseConflictDimension("room")
	assert.True(t, ok)
	assert.Equal(t, ConflictRoom, dim)

	_, ok = ParseConflictDimension("course")
	assert.False(t, ok)
}

func TestLessonConflictErrorMessage(t *testing.T) {
	err := &LessonConflictError{Report: ConflictReport{ConflictGroup: {Message: "group busy"}}}
	assert.Equal(t, "lesson conflicts: GROUP: group busy", err.Error())
}
