package access

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
	appErrors "github.com/noah-isme/dept-portal-api/pkg/errors"
)

func TestNewFeedbackStampsExactlyOneSender(t *testing.T) {
	now := time.Now()
	for _, role := range allRoles {
		fb, err := NewFeedback(&models.JWTClaims{UserID: "caller", Role: role}, "hello", true, nil, now)
		require.NoError(t, err, role)
		if role == models.RoleBatch {
			require.NotNil(t, fb.FromBatchID)
			assert.Nil(t, fb.FromUserID)
			assert.Equal(t, "caller", *fb.FromBatchID)
		} else {
			require.NotNil(t, fb.FromUserID)
			assert.Nil(t, fb.FromBatchID)
			assert.Equal(t, "caller", *fb.FromUserID)
		}
		assert.True(t, fb.IsAnonymous)
		assert.Equal(t, "caller", fb.SenderID())
	}
}

func TestNewFeedbackValidation(t *testing.T) {
	_, err := NewFeedback(&models.JWTClaims{UserID: "t", Role: models.RoleTeacher}, "   ", false, nil, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrValidation))

	_, err = NewFeedback(&models.JWTClaims{UserID: "x", Role: "GUEST"}, "hi", false, nil, time.Now())
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	blank := " "
	fb, err := NewFeedback(&models.JWTClaims{UserID: "t", Role: models.RoleTeacher}, "hi", false, &blank, time.Now())
	require.NoError(t, err)
	assert.Nil(t, fb.TargetAnnouncementID)
}

func feedbackCorpus() []*models.Feedback {
	target := "routine-1"
	return []*models.Feedback{
		{ID: "f1", FromBatchID: strPtr("batch-x")},
		{ID: "f2", FromBatchID: strPtr("batch-y")},
		{ID: "f3", FromUserID: strPtr("teacher-y")},
		{ID: "f4", FromUserID: strPtr("teacher-b"), TargetAnnouncementID: &target},
		{ID: "f5", FromUserID: strPtr("teacher-y"), TargetAnnouncementID: &target},
	}
}

func matchingIDs(t *testing.T, claims *models.JWTClaims, target *string) []string {
	expr, err := BuildFeedbackFilter(claims, target)
	require.NoError(t, err)
	var ids []string
	for _, fb := range feedbackCorpus() {
		if query.Match(expr, fb) {
			ids = append(ids, fb.ID)
		}
	}
	return ids
}

func TestBuildFeedbackFilter(t *testing.T) {
	assert.Equal(t, []string{"f1"}, matchingIDs(t, &models.JWTClaims{UserID: "batch-x", Role: models.RoleBatch}, nil))
	assert.Equal(t, []string{"f3", "f5"}, matchingIDs(t, &models.JWTClaims{UserID: "teacher-y", Role: models.RoleTeacher}, nil))
	for _, role := range []models.UserRole{models.RoleChairman, models.RoleComputerOperator, models.RoleCoordinator} {
		assert.Equal(t, []string{"f1", "f2", "f3"}, matchingIDs(t, &models.JWTClaims{UserID: "admin", Role: role}, nil))
	}
	target := "routine-1"
	assert.Equal(t, []string{"f4", "f5"}, matchingIDs(t, &models.JWTClaims{UserID: "batch-x", Role: models.RoleBatch}, &target))
}

func TestBuildFeedbackFilterUnknownRole(t *testing.T) {
	_, err := BuildFeedbackFilter(&models.JWTClaims{UserID: "x", Role: "GUEST"}, nil)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	target := "routine-1"
	_, err = BuildFeedbackFilter(&models.JWTClaims{UserID: "x", Role: "GUEST"}, &target)
	assert.NoError(t, err)
}

func TestCanDeleteFeedback(t *testing.T) {
	target := "routine-1"
	peer := &models.Feedback{ID: "f", FromUserID: strPtr("teacher-b"), TargetAnnouncementID: &target}
	owner := &models.Announcement{ID: "routine-1", AuthorID: "teacher-a"}

	assert.True(t, CanDeleteFeedback(&models.JWTClaims{UserID: "teacher-b", Role: models.RoleTeacher}, peer, owner), "sender")
	assert.True(t, CanDeleteFeedback(&models.JWTClaims{UserID: "teacher-a", Role: models.RoleTeacher}, peer, owner), "receiver")
	assert.False(t, CanDeleteFeedback(&models.JWTClaims{UserID: "teacher-c", Role: models.RoleTeacher}, peer, owner))
	assert.False(t, CanDeleteFeedback(&models.JWTClaims{UserID: "teacher-a", Role: models.RoleTeacher}, peer, nil))
	for _, role := range []models.UserRole{models.RoleChairman, models.RoleComputerOperator, models.RoleCoordinator} {
		assert.True(t, CanDeleteFeedback(&models.JWTClaims{UserID: "admin", Role: role}, peer, nil), role)
	}

	general := &models.Feedback{ID: "g", FromBatchID: strPtr("batch-x")}
	assert.True(t, CanDeleteFeedback(&models.JWTClaims{UserID: "batch-x", Role: models.RoleBatch}, general, nil))
	assert.False(t, CanDeleteFeedback(&models.JWTClaims{UserID: "batch-y", Role: models.RoleBatch}, general, nil))
	assert.False(t, CanDeleteFeedback(&models.JWTClaims{UserID: "batch-x", Role: models.RoleTeacher}, general, nil))
}

func TestCanTraceSender(t *testing.T) {
	anon := &models.Feedback{IsAnonymous: true, FromBatchID: strPtr("batch-x")}
	assert.True(t, CanTraceSender(&models.JWTClaims{UserID: "chair", Role: models.RoleChairman}, anon))
	assert.True(t, CanTraceSender(&models.JWTClaims{UserID: "batch-x", Role: models.RoleBatch}, anon))
	assert.False(t, CanTraceSender(&models.JWTClaims{UserID: "teacher", Role: models.RoleTeacher}, anon))
	assert.True(t, CanTraceSender(nil, &models.Feedback{FromBatchID: strPtr("batch-x")}))
}
