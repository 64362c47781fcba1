package account

import (
	"strings"
	"time"
)

const (
	RoleAdmin   = "admin"
	RoleFaculty = "faculty"
	RoleStaff   = "staff"
	RoleStudent = "student"

	RequestStatusPending  = "Pending"
	RequestStatusApproved = "Approved"
	RequestStatusRejected = "Rejected"
)

// User is an active account. Email identifies the account and is not editable.
type User struct {
	ID              int64      `json:"id" form:"readonly"`
	Email           string     `json:"email" form:"readonly"`
	FirstName       string     `json:"first_name" validate:"required"`
	LastName        string     `json:"last_name" validate:"required"`
	Department      string     `json:"department" validate:"required"`
	RequestedRole   string     `json:"requested_role" form:"readonly"`
	ApprovedAccRole *string    `json:"approved_acc_role" form:"readonly"`
	Status          string     `json:"status"`
	CreatedAt       *time.Time `json:"created_at,omitempty" form:"readonly"`
}

func (u User) GetID() int64 { return u.ID }

// AccountRequest is a sign-up awaiting an administrator decision.
// ApprovedAccRole stays nil until an explicit approval.
type AccountRequest struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Department      string     `json:"department"`
	RequestedRole   string     `json:"requested_role"`
	ApprovedAccRole *string    `json:"approved_acc_role"`
	Status          string     `json:"status"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
}

func (a AccountRequest) GetID() int64 { return a.ID }

// MapRoleToSystemRole maps the free-text role chosen at sign-up onto one of
// the roles the backend enforces. Unknown roles get the least privilege.
func MapRoleToSystemRole(requested string) string {
	switch strings.ToLower(strings.TrimSpace(requested)) {
	case "admin", "administrator", "system administrator":
		return RoleAdmin
	case "faculty", "teacher", "instructor", "professor", "dean", "department head":
		return RoleFaculty
	case "staff", "custodian", "property custodian", "employee", "personnel":
		return RoleStaff
	default:
		return RoleStudent
	}
}
