package access

import (
	"strings"
	"time"

	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

// NewFeedback builds a feedback record stamped with the caller as sender.
// The sender column follows the role; anonymity is kept for display only.
func NewFeedback(claims *models.JWTClaims, message string, anonymous bool, target *string, now time.Time) (*models.Feedback, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message_content is required")
	}
	fb := &models.Feedback{
		MessageContent: message,
		IsAnonymous:    anonymous,
		SentAt:         now,
	}
	if target != nil && strings.TrimSpace(*target) != "" {
		t := strings.TrimSpace(*target)
		fb.TargetAnnouncementID = &t
	}
	sender := claims.UserID
	switch {
	case claims.Role == models.RoleBatch:
		fb.FromBatchID = &sender
	case claims.Role.IsStaff():
		fb.FromUserID = &sender
	default:
		return nil, forbidden("send feedback")
	}
	return fb, nil
}

type feedbackRule func(claims *models.JWTClaims) query.Expr

var feedbackRules = map[models.UserRole]feedbackRule{
	models.RoleBatch: func(claims *models.JWTClaims) query.Expr {
		return query.Eq{Field: FieldFromBatchID, Value: claims.UserID}
	},
	models.RoleTeacher: func(claims *models.JWTClaims) query.Expr {
		return query.Eq{Field: FieldFromUserID, Value: claims.UserID}
	},
	models.RoleChairman:         generalFeedback,
	models.RoleComputerOperator: generalFeedback,
	models.RoleCoordinator:      generalFeedback,
}

func generalFeedback(*models.JWTClaims) query.Expr {
	return query.IsNull{Field: FieldTargetAnnouncementID}
}

// BuildFeedbackFilter narrows the feedback listing. A target id bypasses the role table.
func BuildFeedbackFilter(claims *models.JWTClaims, target *string) (query.Expr, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	if target != nil && strings.TrimSpace(*target) != "" {
		return query.Eq{Field: FieldTargetAnnouncementID, Value: strings.TrimSpace(*target)}, nil
	}
	rule, ok := feedbackRules[claims.Role]
	if !ok {
		return nil, forbidden("list feedback")
	}
	return rule(claims), nil
}

// CanDeleteFeedback allows administration, the sender, and the author of the
// announcement the feedback targets.
func CanDeleteFeedback(claims *models.JWTClaims, fb *models.Feedback, owner *models.Announcement) bool {
	if claims == nil || fb == nil {
		return false
	}
	if claims.Role.IsAdministration() {
		return true
	}
	if isSender(claims, fb) {
		return true
	}
	return fb.TargetAnnouncementID != nil && owner != nil &&
		owner.ID == *fb.TargetAnnouncementID && owner.AuthorID == claims.UserID
}

// CanTraceSender reports whether the viewer may see who sent anonymous feedback.
func CanTraceSender(claims *models.JWTClaims, fb *models.Feedback) bool {
	if !fb.IsAnonymous {
		return true
	}
	if claims == nil {
		return false
	}
	return claims.Role.IsAdministration() || isSender(claims, fb)
}

func isSender(claims *models.JWTClaims, fb *models.Feedback) bool {
	if claims.Role == models.RoleBatch {
		return fb.FromBatchID != nil && *fb.FromBatchID == claims.UserID
	}
	return fb.FromUserID != nil && *fb.FromUserID == claims.UserID
}
