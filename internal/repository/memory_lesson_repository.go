package repository

import (
	"context"
	"database/sql"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

// MemoryLessonRepository keeps lessons in process memory. It backs local runs and tests.
type MemoryLessonRepository struct {
	mutex sync.RWMutex
	table map[string]models.Lesson
}

// NewMemoryLessonRepository creates an empty in-memory store.
func NewMemoryLessonRepository() *MemoryLessonRepository {
	return &MemoryLessonRepository{table: make(map[string]models.Lesson)}
}

// ListByOrganization returns a copy of the organization's lessons.
func (r *MemoryLessonRepository) ListByOrganization(ctx context.Context, organizationID string) ([]models.Lesson, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lessons := make([]models.Lesson, 0)
	for _, lesson := range r.table {
		if lesson.OrganizationID == organizationID {
			lessons = append(lessons, lesson)
		}
	}
	return lessons, nil
}

// FindByID returns sql.ErrNoRows for unknown ids, like the Postgres repository.
func (r *MemoryLessonRepository) FindByID(ctx context.Context, id string) (*models.Lesson, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	lesson, ok := r.table[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &lesson, nil
}

// Create stores a new lesson.
func (r *MemoryLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

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
	r.table[lesson.ID] = *lesson
	return nil
}

// Update replaces the lesson when the caller holds the current version.
func (r *MemoryLessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	stored, ok := r.table[lesson.ID]
	if !ok || stored.Version != lesson.Version {
		return ErrStaleVersion
	}
	lesson.Version++
	lesson.CreatedAt = stored.CreatedAt
	lesson.UpdatedAt = time.Now().UTC()
	r.table[lesson.ID] = *lesson
	return nil
}

// Delete removes the lesson if present.
func (r *MemoryLessonRepository) Delete(ctx context.Context, id string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	delete(r.table, id)
	return nil
}
