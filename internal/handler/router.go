package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/dept-portal-api/internal/middleware"
	"github.com/noah-isme/dept-portal-api/internal/models"
)

// Routes bundles everything needed to mount the portal API.
type Routes struct {
	Announcements *AnnouncementHandler
	Feedback      *FeedbackHandler
	Metrics       *MetricsHandler
	// Authenticate resolves the caller's identity; normally middleware.JWT.
	Authenticate gin.HandlerFunc
	// PublicLimit throttles unauthenticated endpoints when set.
	PublicLimit gin.HandlerFunc
	Audit       middleware.AuditWriter
	Logger      *zap.Logger
}

// Register mounts health and readiness at the root and the API under prefix.
func (rt Routes) Register(r *gin.Engine, prefix string) {
	if rt.Metrics != nil {
		r.GET("/health", rt.Metrics.Health)
		r.GET("/ready", rt.Metrics.Ready)
		r.GET("/metrics", rt.Metrics.Prometheus)
	}

	api := r.Group(prefix)
	public := []gin.HandlerFunc{middleware.WithResponseMeta(), rt.Announcements.Public}
	if rt.PublicLimit != nil {
		public = append([]gin.HandlerFunc{rt.PublicLimit}, public...)
	}
	api.GET("/announcements/public", public...)

	secured := api.Group("")
	secured.Use(rt.Authenticate)

	audit := func(action, resource string) gin.HandlerFunc {
		return middleware.Audit(rt.Audit, rt.Logger, action, resource)
	}

	announcements := secured.Group("/announcements")
	announcements.GET("", rt.Announcements.List)
	announcements.POST("", audit(models.AuditActionAnnouncementCreate, "announcement"), rt.Announcements.Create)
	announcements.DELETE("/:id", audit(models.AuditActionAnnouncementDelete, "announcement"), rt.Announcements.Delete)
	announcements.PUT("/:id/status",
		middleware.RequireRoles(models.RoleChairman),
		audit(models.AuditActionAnnouncementStatus, "announcement"),
		rt.Announcements.UpdateStatus,
	)

	feedback := secured.Group("/feedback")
	feedback.GET("", rt.Feedback.List)
	feedback.POST("", audit(models.AuditActionFeedbackCreate, "feedback"), rt.Feedback.Create)
	feedback.DELETE("/:id", audit(models.AuditActionFeedbackDelete, "feedback"), rt.Feedback.Delete)

	if rt.Metrics != nil {
		secured.GET("/metrics/summary",
			middleware.RequireRoles(models.RoleChairman, models.RoleComputerOperator, models.RoleCoordinator),
			rt.Metrics.Summary,
		)
	}
}
