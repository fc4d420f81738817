package access

import (
	"fmt"

	"github.com/noah-isme/dept-portal-api/internal/models"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

type roleSet map[models.UserRole]struct{}

func roles(rs ...models.UserRole) roleSet {
	set := make(roleSet, len(rs))
	for _, r := range rs {
		set[r] = struct{}{}
	}
	return set
}

func (s roleSet) has(r models.UserRole) bool {
	_, ok := s[r]
	return ok
}

var postingRoles = map[models.AnnouncementType]roleSet{
	models.AnnouncementTypeNotice:       roles(models.RoleChairman, models.RoleComputerOperator, models.RoleTeacher),
	models.AnnouncementTypeRoutine:      roles(models.RoleChairman, models.RoleComputerOperator, models.RoleTeacher),
	models.AnnouncementTypeAnnouncement: roles(models.RoleTeacher, models.RoleComputerOperator),
}

var statusChangeRoles = roles(models.RoleChairman)

// CanPost reports whether role may create an item of type t.
// An unknown type is invalid input, not a denial.
func CanPost(role models.UserRole, t models.AnnouncementType) (bool, error) {
	allowed, ok := postingRoles[t]
	if !ok {
		return false, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown announcement type %q", t))
	}
	return allowed.has(role), nil
}

// AuthorizePost is CanPost folded into a single error.
func AuthorizePost(claims *models.JWTClaims, t models.AnnouncementType) error {
	if err := requireClaims(claims); err != nil {
		return err
	}
	ok, err := CanPost(claims.Role, t)
	if err != nil {
		return err
	}
	if !ok {
		return forbidden(fmt.Sprintf("post %s", t))
	}
	return nil
}

// CanDeleteAnnouncement allows the author and the chairman.
func CanDeleteAnnouncement(claims *models.JWTClaims, item *models.Announcement) bool {
	if claims == nil || item == nil {
		return false
	}
	return claims.UserID == item.AuthorID || claims.Role == models.RoleChairman
}

// CanChangeStatus allows the chairman only.
func CanChangeStatus(claims *models.JWTClaims) bool {
	return claims != nil && statusChangeRoles.has(claims.Role)
}
