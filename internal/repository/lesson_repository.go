package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// ErrStaleVersion is returned when an update targets an outdated lesson version.
var ErrStaleVersion = errors.New("lesson version is stale")

const lessonColumns = `id, organization_id, group_id, group_name, course_id, course_name, teacher_id, teacher_name, room, day_of_week, start_minute, end_minute, status, version, created_at, updated_at`

// lessonRow mirrors the lessons table; the interval is flattened into columns.
type lessonRow struct {
	ID             string    `db:"id"`
	OrganizationID string    `db:"organization_id"`
	GroupID        string    `db:"group_id"`
	GroupName      string    `db:"group_name"`
	CourseID       string    `db:"course_id"`
	CourseName     string    `db:"course_name"`
	TeacherID      string    `db:"teacher_id"`
	TeacherName    string    `db:"teacher_name"`
	Room           string    `db:"room"`
	DayOfWeek      string    `db:"day_of_week"`
	StartMinute    int       `db:"start_minute"`
	EndMinute      int       `db:"end_minute"`
	Status         string    `db:"status"`
	Version        int       `db:"version"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func toLessonRow(l *models.Lesson) lessonRow {
	return lessonRow{
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
		StartMinute:    l.Interval.StartMinute,
		EndMinute:      l.Interval.EndMinute,
		Status:         string(l.Status),
		Version:        l.Version,
		CreatedAt:      l.CreatedAt,
		UpdatedAt:      l.UpdatedAt,
	}
}

func (r lessonRow) toModel() models.Lesson {
	return models.Lesson{
		ID:             r.ID,
		OrganizationID: r.OrganizationID,
		GroupID:        r.GroupID,
		GroupName:      r.GroupName,
		CourseID:       r.CourseID,
		CourseName:     r.CourseName,
		TeacherID:      r.TeacherID,
		TeacherName:    r.TeacherName,
		Room:           r.Room,
		Interval: models.WeeklyInterval{
			DayOfWeek:   models.DayOfWeek(r.DayOfWeek),
			StartMinute: r.StartMinute,
			EndMinute:   r.EndMinute,
		},
		Status:    models.LessonStatus(r.Status),
		Version:   r.Version,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// LessonRepository provides Postgres persistence for lessons. Calls made with a
// context from ContextWithTx run on that transaction.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository creates a new lesson repository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// ListByOrganization returns planned and cancelled lessons of an organization.
func (r *LessonRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE organization_id = $1`
	var rows []lessonRow
	if err := sqlx.SelectContext(ctx, executor(ctx, r.db), &rows, query, organizationID); err != nil {
		return nil, fmt.Errorf("list lessons: %w", err)
	}
	lessons := make([]models.Lesson, 0, len(rows))
	for _, row := range rows {
		lessons = append(lessons, row.toModel())
	}
	return lessons, nil
}

// FindByID loads a lesson by id. Missing rows surface as sql.ErrNoRows.
func (r *LessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	query := `SELECT ` + lessonColumns + ` FROM lessons WHERE id = $1`
	var row lessonRow
	if err := sqlx.GetContext(ctx, executor(ctx, r.db), &row, query, id); err != nil {
		return nil, err
	}
	lesson := row.toModel()
	return &lesson, nil
}

// Create stores a new lesson record.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	if lesson.ID == "" {
		lesson.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if lesson.CreatedAt.IsZero() {
		lesson.CreatedAt = now
	}
	lesson.UpdatedAt = now
	if lesson.Version == 0 {
		lesson.Version = 1
	}

	const query = `INSERT INTO lessons (` + lessonColumns + `) VALUES (:id, :organization_id, :group_id, :group_name, :course_id, :course_name, :teacher_id, :teacher_name, :room, :day_of_week, :start_minute, :end_minute, :status, :version, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, toLessonRow(lesson)); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update writes the lesson if its version still matches the stored one and bumps the version.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	row := toLessonRow(lesson)
	row.UpdatedAt = time.Now().UTC()

	const query = `UPDATE lessons SET group_id = :group_id, group_name = :group_name, course_id = :course_id, course_name = :course_name, teacher_id = :teacher_id, teacher_name = :teacher_name, room = :room, day_of_week = :day_of_week, start_minute = :start_minute, end_minute = :end_minute, status = :status, version = version + 1, updated_at = :updated_at WHERE id = :id AND version = :version`
	res, err := sqlx.NamedExecContext(ctx, executor(ctx, r.db), query, row)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update lesson rows affected: %w", err)
	}
	if affected == 0 {
		return ErrStaleVersion
	}
	lesson.Version++
	lesson.UpdatedAt = row.UpdatedAt
	return nil
}

// Delete removes a lesson by id. Deleting a missing id is not an error.
func (r *LessonRepository) Delete(ctx context.Context, id string) error {
	if _, err := executor(ctx, r.db).ExecContext(ctx, `DELETE FROM lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete lesson: %w", err)
	}
	return nil
}
