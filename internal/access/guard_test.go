package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/internal/models"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

func TestCanPost(t *testing.T) {
	want := map[models.AnnouncementType][]models.UserRole{
		models.AnnouncementTypeNotice:       {models.RoleChairman, models.RoleComputerOperator, models.RoleTeacher},
		models.AnnouncementTypeRoutine:      {models.RoleChairman, models.RoleComputerOperator, models.RoleTeacher},
		models.AnnouncementTypeAnnouncement: {models.RoleTeacher, models.RoleComputerOperator},
	}
	for typ, allowed := range want {
		for _, role := range allRoles {
			ok, err := CanPost(role, typ)
			require.NoError(t, err)
			assert.Equal(t, contains(allowed, role), ok, "role=%s type=%s", role, typ)
		}
	}
}

func TestCanPostUnknownTypeIsInvalidInput(t *testing.T) {
	ok, err := CanPost(models.RoleChairman, "MEMO")
	assert.False(t, ok)
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	err = AuthorizePost(&models.JWTClaims{UserID: "c", Role: models.RoleChairman}, "MEMO")
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))
}

func TestAuthorizePost(t *testing.T) {
	assert.NoError(t, AuthorizePost(&models.JWTClaims{UserID: "t", Role: models.RoleTeacher}, models.AnnouncementTypeAnnouncement))

	err := AuthorizePost(&models.JWTClaims{UserID: "c", Role: models.RoleChairman}, models.AnnouncementTypeAnnouncement)
	require.Error(t, err)
	assert.Equal(t, "not allowed to post ANNOUNCEMENT", appErrors.FromError(err).Message)

	err = AuthorizePost(&models.JWTClaims{UserID: "b", Role: models.RoleBatch}, models.AnnouncementTypeNotice)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	assert.True(t, appErrors.Is(AuthorizePost(nil, models.AnnouncementTypeNotice), appErrors.ErrUnauthorized))
}

func TestCanDeleteAnnouncement(t *testing.T) {
	item := &models.Announcement{ID: "a1", AuthorID: "teacher-a"}
	assert.True(t, CanDeleteAnnouncement(&models.JWTClaims{UserID: "teacher-a", Role: models.RoleTeacher}, item))
	assert.True(t, CanDeleteAnnouncement(&models.JWTClaims{UserID: "chair", Role: models.RoleChairman}, item))
	assert.False(t, CanDeleteAnnouncement(&models.JWTClaims{UserID: "teacher-b", Role: models.RoleTeacher}, item))
	assert.False(t, CanDeleteAnnouncement(&models.JWTClaims{UserID: "op", Role: models.RoleComputerOperator}, item))
	assert.False(t, CanDeleteAnnouncement(nil, item))
}

func TestCanChangeStatus(t *testing.T) {
	for _, role := range allRoles {
		assert.Equal(t, role == models.RoleChairman, CanChangeStatus(&models.JWTClaims{UserID: "x", Role: role}))
	}
	assert.False(t, CanChangeStatus(nil))
}

func contains(roles []models.UserRole, r models.UserRole) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
