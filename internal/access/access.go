// Package access decides who may post, see, change and delete announcements and feedback.
// Every function is pure: it never touches storage and never mutates its inputs.
package access

import (
	"github.com/noah-isme/dept-portal-api/internal/models"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

// Filterable field names. Repositories map them onto columns.
const (
	FieldAuthorID             = "author_id"
	FieldTargetBatchID        = "target_batch_id"
	FieldType                 = "type"
	FieldStatus               = "status"
	FieldFromBatchID          = "from_batch_id"
	FieldFromUserID           = "from_user_id"
	FieldTargetAnnouncementID = "target_announcement_id"
)

func requireClaims(claims *models.JWTClaims) error {
	if claims == nil || claims.UserID == "" {
		return appErrors.ErrUnauthorized
	}
	return nil
}

func forbidden(action string) error {
	return appErrors.Clone(appErrors.ErrForbidden, "not allowed to "+action)
}
