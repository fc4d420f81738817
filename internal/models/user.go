package models

// UserRole represents the roles carried by identity claims.
type UserRole string

const (
	RoleChairman         UserRole = "CHAIRMAN"
	RoleComputerOperator UserRole = "COMPUTER_OPERATOR"
	RoleCoordinator      UserRole = "COORDINATOR"
	RoleTeacher          UserRole = "TEACHER"
	RoleBatch            UserRole = "BATCH"
)

// IsStaff reports whether the role belongs to a department staff member.
func (r UserRole) IsStaff() bool {
	switch r {
	case RoleChairman, RoleComputerOperator, RoleCoordinator, RoleTeacher:
		return true
	}
	return false
}

// IsAdministration reports whether the role handles department administration.
func (r UserRole) IsAdministration() bool {
	switch r {
	case RoleChairman, RoleComputerOperator, RoleCoordinator:
		return true
	}
	return false
}

// Valid reports whether the role is one the portal understands.
func (r UserRole) Valid() bool {
	return r == RoleBatch || r.IsStaff()
}

// UserSummary is the display projection of a staff member from the users directory.
type UserSummary struct {
	ID       string   `db:"id" json:"id"`
	FullName string   `db:"full_name" json:"full_name"`
	Email    string   `db:"email" json:"email,omitempty"`
	Role     UserRole `db:"role" json:"role"`
}

// BatchSummary is the display projection of a batch from the batches directory.
type BatchSummary struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Session string `db:"session" json:"session,omitempty"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
