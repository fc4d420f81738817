package access

import (
	"github.com/noah-isme/dept-portal-api/internal/models"
	"github.com/noah-isme/dept-portal-api/internal/query"
)

// PublicFeedLimit caps the unauthenticated notice feed.
const PublicFeedLimit = 10

type visibilityRule func(claims *models.JWTClaims) query.Expr

var visibilityRules = map[models.UserRole]visibilityRule{
	models.RoleBatch: func(claims *models.JWTClaims) query.Expr {
		return query.And{
			query.Eq{Field: FieldStatus, Value: string(models.StatusApproved)},
			query.Or{
				query.In{Field: FieldType, Values: []string{string(models.AnnouncementTypeNotice), string(models.AnnouncementTypeRoutine)}},
				query.Eq{Field: FieldTargetBatchID, Value: claims.UserID},
			},
		}
	},
	models.RoleChairman: func(*models.JWTClaims) query.Expr {
		return query.In{Field: FieldStatus, Values: []string{
			string(models.StatusApproved),
			string(models.StatusPendingApproval),
			"PENDING",
		}}
	},
	models.RoleTeacher: func(claims *models.JWTClaims) query.Expr {
		return query.Or{
			query.Eq{Field: FieldStatus, Value: string(models.StatusApproved)},
			query.And{
				query.Eq{Field: FieldStatus, Value: string(models.StatusPendingFeedback)},
				query.Eq{Field: FieldType, Value: string(models.AnnouncementTypeRoutine)},
			},
			query.Eq{Field: FieldAuthorID, Value: claims.UserID},
		}
	},
	models.RoleComputerOperator: unrestricted,
	models.RoleCoordinator:      unrestricted,
}

func unrestricted(*models.JWTClaims) query.Expr { return query.All{} }

// BuildFilter returns the predicate narrowing the announcement listing for the caller.
func BuildFilter(claims *models.JWTClaims) (query.Expr, error) {
	if err := requireClaims(claims); err != nil {
		return nil, err
	}
	rule, ok := visibilityRules[claims.Role]
	if !ok {
		return nil, forbidden("list announcements")
	}
	return rule(claims), nil
}

// BuildPublicFilter is the only predicate reachable without an identity claim.
func BuildPublicFilter() query.Expr {
	return query.And{
		query.Eq{Field: FieldType, Value: string(models.AnnouncementTypeNotice)},
		query.Eq{Field: FieldStatus, Value: string(models.StatusApproved)},
	}
}
