package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

type sourceStub struct {
	lessons []models.Lesson
	cfg     models.OrganizationConfig
	closed  bool
}

func (s *sourceStub) ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error) {
	return s.lessons, nil
}

func (s *sourceStub) Config(ctx context.Context, organizationID string) (models.OrganizationConfig, error) {
	return s.cfg, nil
}

func stubFactory(src *sourceStub) SourceFactory {
	return func(ctx context.Context) (LessonSource, func(), error) {
		return src, func() { src.closed = true }, nil
	}
}

func lessonAt(id, teacher, group string, start, end int) models.Lesson {
	return models.Lesson{
		ID:             id,
		OrganizationID: "org-1",
		TeacherID:      teacher,
		GroupID:        group,
		CourseID:       "math",
		Interval:       models.WeeklyInterval{DayOfWeek: models.Monday, StartMinute: start, EndMinute: end},
		Status:         models.LessonStatusPlanned,
	}
}

func run(t *testing.T, open SourceFactory, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(open, nil)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAuditCommandReportsViolations(t *testing.T) {
	src := &sourceStub{lessons: []models.Lesson{
		lessonAt("a", "t1", "g1", 540, 600),
		lessonAt("b", "t1", "g2", 570, 630),
	}}

	out, err := run(t, stubFactory(src), "audit", "--org", "org-1")

	require.ErrorIs(t, err, ErrViolations)
	assert.Contains(t, out, "TEACHER")
	assert.Contains(t, out, "2 planned lessons: 1 violations")
	assert.True(t, src.closed)
}

func TestAuditCommandCleanSchedule(t *testing.T) {
	src := &sourceStub{lessons: []models.Lesson{
		lessonAt("a", "t1", "g1", 540, 600),
		lessonAt("b", "t1", "g1", 600, 660),
	}}

	out, err := run(t, stubFactory(src), "audit", "--org", "org-1")

	require.NoError(t, err)
	assert.Contains(t, out, "no overlaps")
}

func TestAuditCommandRequiresOrg(t *testing.T) {
	_, err := run(t, stubFactory(&sourceStub{}), "audit")
	require.Error(t, err)
}

func TestCheckCommandReadsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lessons.json")
	payload := `[
		{"id":"x","groupId":"g1","courseId":"c1","teacherId":"t1","room":"A1","dayOfWeek":"TUE","startTime":"09:00","endTime":"10:00"},
		{"id":"y","groupId":"g2","courseId":"c2","teacherId":"t2","room":"A1","dayOfWeek":"TUE","startTime":"09:30","endTime":"10:30"},
		{"id":"z","groupId":"g2","courseId":"c2","teacherId":"t2","room":"A1","dayOfWeek":"TUE","startTime":"09:30","endTime":"10:30","status":"CANCELLED"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	out, err := run(t, nil, "check", "--file", path)
	require.NoError(t, err)
	assert.Contains(t, out, "checked 2 planned lessons")

	out, err = run(t, nil, "check", "--file", path, "--room-tracking")
	require.ErrorIs(t, err, ErrViolations)
	assert.Contains(t, out, "ROOM")
}

func TestCheckCommandRejectsBadInterval(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lessons.json")
	payload := `[{"groupId":"g1","courseId":"c1","teacherId":"t1","dayOfWeek":"MON","startTime":"10:00","endTime":"09:00"}]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	_, err := run(t, nil, "check", "--file", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entry 1")
}

func TestCheckCommandNormalizesRooms(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lessons.json")
	payload := `[
		{"id":"x","groupId":"g1","courseId":"c1","teacherId":"t1","room":" A1","dayOfWeek":"WED","startTime":"09:00","endTime":"10:00"},
		{"id":"y","groupId":"g2","courseId":"c2","teacherId":"t2","room":"A1 ","dayOfWeek":"WED","startTime":"09:30","endTime":"10:30"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(payload), 0o600))

	out, err := run(t, nil, "check", "--file", path, "--room-tracking")
	require.ErrorIs(t, err, ErrViolations)
	assert.Contains(t, out, "ROOM")
}
