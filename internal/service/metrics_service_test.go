package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/sma-timetable-api/internal/models"
)

func TestMetricsServiceExposesCounters(t *testing.T) {
	m := NewMetricsService()

	m.RecordOperation(opCreate, OutcomeConflict)
	m.RecordOperation(opCreate, OutcomeConflict)
	m.RecordConflicts(models.ConflictReport{models.ConflictRoom: {}, models.ConflictGroup: {}})
	m.RecordCacheLookup(true)
	m.RecordCacheLookup(false)
	m.ObserveConflictCheck(time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/health", http.StatusOK, time.Millisecond)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()

	assert.Contains(t, body, `scheduler_operations_total{operation="create",outcome="conflict"} 2`)
	assert.Contains(t, body, `scheduler_conflicts_total{dimension="ROOM"} 1`)
	assert.Contains(t, body, `scheduler_conflicts_total{dimension="GROUP"} 1`)
	assert.Contains(t, body, "cache_hits_total 1")
	assert.Contains(t, body, "cache_misses_total 1")
	assert.Contains(t, body, "scheduler_conflict_check_duration_seconds_count 1")
	assert.Contains(t, body, `http_requests_total{method="GET",path="/health",status="200"} 1`)
}

func TestMetricsServiceNilIsNoop(t *testing.T) {
	var m *MetricsService
	assert.NotPanics(t, func() {
		m.RecordOperation(opDelete, OutcomeAccepted)
		m.RecordConflicts(models.ConflictReport{models.ConflictTeacher: {}})
		m.RecordCacheLookup(true)
		m.ObserveConflictCheck(time.Second)
	})
	assert.Nil(t, m.Registry())

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
