package access

import (
	"fmt"
	"strings"
	"time"

	"github.com/noah-isme/dept-portal-api/internal/models"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

// legalStatuses lists the statuses each type may hold. Announcements are never gated.
var legalStatuses = map[models.AnnouncementType][]models.AnnouncementStatus{
	models.AnnouncementTypeAnnouncement: {models.StatusApproved},
	models.AnnouncementTypeNotice:       {models.StatusPendingApproval, models.StatusApproved},
	models.AnnouncementTypeRoutine:      {models.StatusPendingFeedback, models.StatusPendingApproval, models.StatusApproved},
}

// InitialStatus computes the status a new item starts in. requested only matters
// for routines posted by teachers.
func InitialStatus(t models.AnnouncementType, role models.UserRole, requested models.AnnouncementStatus) models.AnnouncementStatus {
	switch {
	case t == models.AnnouncementTypeAnnouncement:
		return models.StatusApproved
	case role == models.RoleChairman:
		return models.StatusApproved
	case t == models.AnnouncementTypeRoutine && role == models.RoleTeacher:
		if requested == models.StatusPendingFeedback || requested == models.StatusPendingApproval {
			return requested
		}
		return models.StatusPendingFeedback
	default:
		return models.StatusPendingApproval
	}
}

// IsLegalStatus reports whether an item of type t may hold status s.
func IsLegalStatus(t models.AnnouncementType, s models.AnnouncementStatus) bool {
	for _, legal := range legalStatuses[t] {
		if legal == s {
			return true
		}
	}
	return false
}

// ApplyStatusChange returns a copy of item moved to newStatus. Only the chairman may call it.
// A non-empty comment replaces the item's administrative feedback.
func ApplyStatusChange(claims *models.JWTClaims, item *models.Announcement, newStatus, comment string, now time.Time) (*models.Announcement, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	if !CanChangeStatus(claims) {
		return nil, forbidden("change announcement status")
	}
	status, ok := models.ParseAnnouncementStatus(newStatus)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown status %q", newStatus))
	}
	if !IsLegalStatus(item.Type, status) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("status %s is not valid for %s", status, item.Type))
	}
	next := *item
	next.Status = status
	if trimmed := strings.TrimSpace(comment); trimmed != "" {
		next.Feedback = &trimmed
	}
	next.UpdatedAt = now
	return &next, nil
}
