package handler

import "github.com/gin-gonic/gin"

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Lessons  *LessonHandler
	Settings *OrganizationSettingsHandler
	Metrics  *MetricsHandler
}

// RegisterRoutes mounts the organization-scoped API under prefix and the probes at the root.
func RegisterRoutes(r *gin.Engine, prefix string, h Handlers, exposeMetrics bool) {
	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if exposeMetrics {
		r.GET("/metrics", h.Metrics.Prometheus)
	}

	org := r.Group(prefix + "/organizations/:orgId")
	{
		org.GET("/lessons", h.Lessons.List)
		org.POST("/lessons", h.Lessons.Create)
		org.GET("/lessons/:id", h.Lessons.Get)
		org.PATCH("/lessons/:id", h.Lessons.Update)
		org.DELETE("/lessons/:id", h.Lessons.Delete)
		org.POST("/lessons/:id/cancel", h.Lessons.Cancel)
		org.POST("/lessons/:id/reactivate", h.Lessons.Reactivate)

		org.GET("/timetable", h.Lessons.Timetable)
		org.GET("/timetable/export", h.Lessons.Export)
		org.GET("/audit", h.Lessons.Audit)
		org.GET("/availability", h.Lessons.Availability)

		org.GET("/settings", h.Settings.Get)
		org.PUT("/settings", h.Settings.Update)
	}
}
